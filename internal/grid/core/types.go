// Package core provides shared model types for the grid subsystem.
// This package breaks import cycles between the grid host and the plugin
// contract.
package core

// Row is an opaque application-supplied record. The grid never inspects its
// shape; identity is established by a RowKeyFunc or by interface identity.
type Row = any

// RowKeyFunc extracts a stable identity from a row. The returned value must
// be comparable.
type RowKeyFunc func(Row) any

// CellFunc renders a row's value for one column as display text.
type CellFunc func(Row) string

// Kind classifies a column's content for alignment and default formatting.
type Kind int

const (
	// KindText is left-aligned free text.
	KindText Kind = iota
	// KindNumber is right-aligned numeric content.
	KindNumber
	// KindBool renders as a checkmark / blank.
	KindBool
	// KindUtility is plugin-injected chrome (drag handles, expanders).
	KindUtility
)

// Flags carries cross-plugin column markers. Downstream plugins recognize
// utility columns by these flags, never by key matching.
type Flags struct {
	// Utility marks a column inserted by a plugin rather than configured
	// by the application.
	Utility bool
	// LockPosition prevents reorder plugins from moving the column.
	LockPosition bool
	// SuppressMovable excludes the column from user-initiated moves.
	SuppressMovable bool
	// LockVisible prevents visibility plugins from hiding the column.
	LockVisible bool
}

// Column describes one column of the grid. Columns are immutable value
// objects for the duration of a render pass; transforms produce new values
// rather than mutating in place.
type Column struct {
	// Key is the field key, unique within an effective column list.
	Key string
	// Title is the header text.
	Title string
	// Width is the column width in cells. Zero means share leftover space.
	Width int
	// Kind classifies the column content.
	Kind Kind
	// Flags carries cross-plugin markers.
	Flags Flags
	// Meta is a free-form metadata bag for cross-plugin coordination.
	// Treat as copy-on-write: use WithMeta, never mutate a shared map.
	Meta map[string]string
	// Cell renders a row's value for this column. Nil renders blank.
	Cell CellFunc
}

// MetaValue returns the metadata value for key, or "" when absent.
func (c Column) MetaValue(key string) string {
	if c.Meta == nil {
		return ""
	}
	return c.Meta[key]
}

// WithMeta returns a copy of the column with the metadata key set. The
// original column's map is not modified.
func (c Column) WithMeta(key, value string) Column {
	meta := make(map[string]string, len(c.Meta)+1)
	for k, v := range c.Meta {
		meta[k] = v
	}
	meta[key] = value
	c.Meta = meta
	return c
}

// CloneColumns returns a shallow copy of the column slice. Transforms receive
// a fresh slice so an ill-behaved plugin cannot alias the pipeline's state.
func CloneColumns(cols []Column) []Column {
	out := make([]Column, len(cols))
	copy(out, cols)
	return out
}

// CloneRows returns a shallow copy of the row slice.
func CloneRows(rows []Row) []Row {
	out := make([]Row, len(rows))
	copy(out, rows)
	return out
}
