package grid

import (
	"github.com/dshills/gridstorm/internal/grid/core"
	"github.com/dshills/gridstorm/internal/log"
	"github.com/dshills/gridstorm/internal/plugin"
)

// Pipeline folds every attached plugin's column and row transforms over the
// base configuration, in attach order, producing the effective lists for a
// render pass.
type Pipeline struct {
	registry *plugin.Registry
	logger   *log.Logger
}

// NewPipeline creates a pipeline over the given registry.
func NewPipeline(registry *plugin.Registry, logger *log.Logger) *Pipeline {
	if logger == nil {
		logger = log.Discard()
	}
	return &Pipeline{
		registry: registry,
		logger:   logger.WithComponent("pipeline"),
	}
}

// Columns produces the effective column list. Each transformer receives the
// output of the previous one; a panicking transform is skipped and its
// input carries through. Duplicate field keys after folding are dropped,
// first occurrence wins.
func (p *Pipeline) Columns(base []core.Column) []core.Column {
	cols := core.CloneColumns(base)

	for _, pl := range p.registry.Plugins() {
		tr, ok := pl.(plugin.ColumnTransformer)
		if !ok {
			continue
		}
		name := pl.Manifest().Name
		plugin.Call(p.logger, name, "ProcessColumns", func() {
			if out := tr.ProcessColumns(cols); out != nil {
				cols = out
			}
		})
	}

	return p.dedupe(cols)
}

// Rows produces the effective row list.
func (p *Pipeline) Rows(base []core.Row) []core.Row {
	rows := core.CloneRows(base)

	for _, pl := range p.registry.Plugins() {
		tr, ok := pl.(plugin.RowTransformer)
		if !ok {
			continue
		}
		name := pl.Manifest().Name
		plugin.Call(p.logger, name, "ProcessRows", func() {
			if out := tr.ProcessRows(rows); out != nil {
				rows = out
			}
		})
	}

	return rows
}

// dedupe drops columns whose field key already appeared earlier in the
// list. A duplicate is a plugin bug (typically a utility column inserted
// twice); dropping keeps the effective list consistent.
func (p *Pipeline) dedupe(cols []core.Column) []core.Column {
	seen := make(map[string]bool, len(cols))
	out := cols[:0:len(cols)]
	for _, c := range cols {
		if seen[c.Key] {
			p.logger.Warn("duplicate column key %q dropped from effective list", c.Key)
			continue
		}
		seen[c.Key] = true
		out = append(out, c)
	}
	return out
}
