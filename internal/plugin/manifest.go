package plugin

import (
	"fmt"
	"regexp"
)

// Manifest describes a plugin's identity and static requirements. It is
// declared once per plugin type and never mutated at runtime.
type Manifest struct {
	// Name is the unique identifier within one grid instance.
	Name string `json:"name"`
	// Version is a semver string, informational.
	Version string `json:"version"`
	// Description is a short human-readable summary.
	Description string `json:"description"`

	// Requires lists plugins that must be attached for this plugin to
	// function. A missing entry is a hard registration error.
	Requires []string `json:"requires"`
	// Optional lists plugins this plugin cooperates with when present.
	Optional []string `json:"optional"`
	// Incompatible lists plugins that must not be attached together with
	// this one, each with a stated reason.
	Incompatible []Incompatibility `json:"incompatible"`
}

// Incompatibility names a conflicting plugin and why the pair cannot
// coexist.
type Incompatibility struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// namePattern validates plugin names.
var namePattern = regexp.MustCompile(`^[a-z][a-z0-9-]*[a-z0-9]$|^[a-z]$`)

// Validate checks the manifest for structural problems.
func (m Manifest) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidManifest)
	}
	if !namePattern.MatchString(m.Name) {
		return fmt.Errorf("%w: name %q must be lowercase alphanumeric with hyphens", ErrInvalidManifest, m.Name)
	}
	for _, dep := range m.Requires {
		if dep == m.Name {
			return fmt.Errorf("%w: %q requires itself", ErrInvalidManifest, m.Name)
		}
	}
	for _, inc := range m.Incompatible {
		if inc.Name == "" {
			return fmt.Errorf("%w: %q declares an unnamed incompatibility", ErrInvalidManifest, m.Name)
		}
		if inc.Name == m.Name {
			return fmt.Errorf("%w: %q declares itself incompatible", ErrInvalidManifest, m.Name)
		}
	}
	return nil
}

// ConflictsWith returns the declared incompatibility with the named plugin,
// if any.
func (m Manifest) ConflictsWith(name string) (Incompatibility, bool) {
	for _, inc := range m.Incompatible {
		if inc.Name == name {
			return inc, true
		}
	}
	return Incompatibility{}, false
}
