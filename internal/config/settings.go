// Package config provides per-plugin settings built from JSON documents.
//
// A plugin ships a defaults document; the application supplies an override
// document. At attach time the two are merged (override leaves win, objects
// merge recursively, arrays replace wholesale) into an immutable Settings
// value the plugin reads with dotted paths.
package config

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// ErrInvalidJSON is returned when a settings document is not valid JSON.
var ErrInvalidJSON = errors.New("settings: invalid JSON document")

// Settings is an immutable, merged settings document.
type Settings struct {
	doc []byte
}

// Empty returns settings with no values; every lookup yields its fallback.
func Empty() *Settings {
	return &Settings{doc: []byte(`{}`)}
}

// New creates settings from a single JSON document.
func New(doc []byte) (*Settings, error) {
	if len(doc) == 0 {
		return Empty(), nil
	}
	if !gjson.ValidBytes(doc) {
		return nil, ErrInvalidJSON
	}
	out := make([]byte, len(doc))
	copy(out, doc)
	return &Settings{doc: out}, nil
}

// Merge builds settings from a defaults document and an override document.
// Either may be empty. Object values merge recursively; scalar and array
// values from the override replace the default.
func Merge(defaults, override []byte) (*Settings, error) {
	base, err := New(defaults)
	if err != nil {
		return nil, fmt.Errorf("defaults: %w", err)
	}
	if len(override) == 0 {
		return base, nil
	}
	if !gjson.ValidBytes(override) {
		return nil, fmt.Errorf("override: %w", ErrInvalidJSON)
	}

	ov := gjson.ParseBytes(override)
	if !ov.IsObject() {
		// A non-object override replaces the whole document.
		return New(override)
	}

	doc, err := mergeObject(base.doc, "", ov)
	if err != nil {
		return nil, err
	}
	return &Settings{doc: doc}, nil
}

// mergeObject writes every leaf of value into doc under prefix.
func mergeObject(doc []byte, prefix string, value gjson.Result) ([]byte, error) {
	var err error
	value.ForEach(func(key, val gjson.Result) bool {
		path := key.String()
		if prefix != "" {
			path = prefix + "." + path
		}
		if val.IsObject() && gjson.GetBytes(doc, path).IsObject() {
			doc, err = mergeObject(doc, path, val)
		} else {
			doc, err = sjson.SetRawBytes(doc, path, []byte(val.Raw))
		}
		return err == nil
	})
	if err != nil {
		return nil, fmt.Errorf("settings: merge at %q: %w", prefix, err)
	}
	return doc, nil
}

// Get returns the raw result at a dotted path.
func (s *Settings) Get(path string) gjson.Result {
	return gjson.GetBytes(s.doc, path)
}

// Has reports whether a value exists at the path.
func (s *Settings) Has(path string) bool {
	return s.Get(path).Exists()
}

// String returns the string at path, or fallback when absent.
func (s *Settings) String(path, fallback string) string {
	if r := s.Get(path); r.Exists() {
		return r.String()
	}
	return fallback
}

// Int returns the integer at path, or fallback when absent.
func (s *Settings) Int(path string, fallback int) int {
	if r := s.Get(path); r.Exists() {
		return int(r.Int())
	}
	return fallback
}

// Float returns the float at path, or fallback when absent.
func (s *Settings) Float(path string, fallback float64) float64 {
	if r := s.Get(path); r.Exists() {
		return r.Float()
	}
	return fallback
}

// Bool returns the boolean at path, or fallback when absent.
func (s *Settings) Bool(path string, fallback bool) bool {
	if r := s.Get(path); r.Exists() {
		return r.Bool()
	}
	return fallback
}

// Strings returns the string array at path, or nil when absent.
func (s *Settings) Strings(path string) []string {
	r := s.Get(path)
	if !r.Exists() || !r.IsArray() {
		return nil
	}
	arr := r.Array()
	out := make([]string, 0, len(arr))
	for _, v := range arr {
		out = append(out, v.String())
	}
	return out
}

// JSON returns a copy of the merged document.
func (s *Settings) JSON() []byte {
	out := make([]byte, len(s.doc))
	copy(out, s.doc)
	return out
}
