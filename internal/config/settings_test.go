package config

import (
	"errors"
	"testing"
)

func TestMergeOverrideWins(t *testing.T) {
	defaults := []byte(`{"rowHeight": 1, "detail": {"height": 5, "animate": true}}`)
	override := []byte(`{"detail": {"height": 8}}`)

	s, err := Merge(defaults, override)
	if err != nil {
		t.Fatalf("Merge() error: %v", err)
	}

	if got := s.Int("detail.height", 0); got != 8 {
		t.Errorf("detail.height = %d, want 8 (override)", got)
	}
	if got := s.Bool("detail.animate", false); !got {
		t.Error("detail.animate should survive from defaults")
	}
	if got := s.Int("rowHeight", 0); got != 1 {
		t.Errorf("rowHeight = %d, want 1 (default)", got)
	}
}

func TestMergeArrayReplacesWholesale(t *testing.T) {
	defaults := []byte(`{"columns": ["a", "b", "c"]}`)
	override := []byte(`{"columns": ["x"]}`)

	s, err := Merge(defaults, override)
	if err != nil {
		t.Fatalf("Merge() error: %v", err)
	}

	got := s.Strings("columns")
	if len(got) != 1 || got[0] != "x" {
		t.Errorf("columns = %v, want [x]", got)
	}
}

func TestMergeEmptyInputs(t *testing.T) {
	tests := []struct {
		name      string
		defaults  []byte
		override  []byte
		path      string
		wantInt   int
		wantExist bool
	}{
		{"both empty", nil, nil, "x", 0, false},
		{"defaults only", []byte(`{"x": 3}`), nil, "x", 3, true},
		{"override only", nil, []byte(`{"x": 7}`), "x", 7, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Merge(tt.defaults, tt.override)
			if err != nil {
				t.Fatalf("Merge() error: %v", err)
			}
			if s.Has(tt.path) != tt.wantExist {
				t.Errorf("Has(%q) = %v, want %v", tt.path, s.Has(tt.path), tt.wantExist)
			}
			if got := s.Int(tt.path, 0); got != tt.wantInt {
				t.Errorf("Int(%q) = %d, want %d", tt.path, got, tt.wantInt)
			}
		})
	}
}

func TestMergeInvalidJSON(t *testing.T) {
	if _, err := Merge([]byte(`{broken`), nil); !errors.Is(err, ErrInvalidJSON) {
		t.Errorf("expected ErrInvalidJSON for defaults, got %v", err)
	}
	if _, err := Merge(nil, []byte(`{broken`)); !errors.Is(err, ErrInvalidJSON) {
		t.Errorf("expected ErrInvalidJSON for override, got %v", err)
	}
}

func TestTypedFallbacks(t *testing.T) {
	s, err := New([]byte(`{"name": "grid", "count": 4, "ratio": 0.5, "on": true}`))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	if got := s.String("name", "x"); got != "grid" {
		t.Errorf("String = %q", got)
	}
	if got := s.String("missing", "x"); got != "x" {
		t.Errorf("String fallback = %q", got)
	}
	if got := s.Int("count", 0); got != 4 {
		t.Errorf("Int = %d", got)
	}
	if got := s.Float("ratio", 0); got != 0.5 {
		t.Errorf("Float = %v", got)
	}
	if got := s.Bool("on", false); !got {
		t.Error("Bool = false, want true")
	}
	if got := s.Bool("missing", true); !got {
		t.Error("Bool fallback = false, want true")
	}
}

func TestSettingsImmutableJSONCopy(t *testing.T) {
	s, err := New([]byte(`{"a": 1}`))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	doc := s.JSON()
	doc[0] = 'X'
	if got := s.Int("a", 0); got != 1 {
		t.Error("mutating the JSON copy must not affect the settings")
	}
}
