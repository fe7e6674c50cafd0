package plugin

import (
	"errors"
	"fmt"
)

// Plugin system errors.
var (
	// ErrInvalidManifest is returned when manifest validation fails.
	ErrInvalidManifest = errors.New("invalid plugin manifest")

	// ErrDuplicatePlugin is returned when a plugin name is already attached.
	ErrDuplicatePlugin = errors.New("plugin name already attached")

	// ErrDependencyMissing is returned when a required dependency is not
	// attached and not part of the same attach batch.
	ErrDependencyMissing = errors.New("required plugin dependency missing")

	// ErrIncompatiblePlugin is returned when a declared incompatibility is
	// present.
	ErrIncompatiblePlugin = errors.New("incompatible plugin attached")

	// ErrPluginNotFound is returned when a named plugin is not attached.
	ErrPluginNotFound = errors.New("plugin not found")

	// ErrAttachFailed is returned when a plugin's Attach hook fails.
	ErrAttachFailed = errors.New("plugin attach failed")
)

// RegistrationError is a fatal attach-time error. It names the plugin being
// registered and, where relevant, the other plugin involved.
type RegistrationError struct {
	// Plugin is the plugin whose registration was refused.
	Plugin string
	// Other is the missing dependency or the conflicting plugin.
	Other string
	// Reason is the declared incompatibility reason, when applicable.
	Reason string
	// Err is the underlying sentinel.
	Err error
}

// Error implements error.
func (e *RegistrationError) Error() string {
	switch {
	case errors.Is(e.Err, ErrDependencyMissing):
		return fmt.Sprintf("plugin %q: required dependency %q is not attached", e.Plugin, e.Other)
	case errors.Is(e.Err, ErrIncompatiblePlugin):
		if e.Reason != "" {
			return fmt.Sprintf("plugin %q is incompatible with %q: %s", e.Plugin, e.Other, e.Reason)
		}
		return fmt.Sprintf("plugin %q is incompatible with %q", e.Plugin, e.Other)
	case errors.Is(e.Err, ErrDuplicatePlugin):
		return fmt.Sprintf("plugin %q is already attached", e.Plugin)
	default:
		return fmt.Sprintf("plugin %q: registration failed: %v", e.Plugin, e.Err)
	}
}

// Unwrap returns the underlying sentinel.
func (e *RegistrationError) Unwrap() error {
	return e.Err
}
