// Package luaext adapts Lua scripts to the plugin contract.
//
// A script declares a global manifest table and defines hook functions by
// well-known names (process_rows, extra_height, on_key, ...). Hooks the
// script does not define contribute nothing. The Lua state is sandboxed:
// only the base, table, string and math libraries are opened, and code
// loading functions are removed.
//
// Row values cross the boundary as plain data (strings, numbers, booleans,
// tables); rows the script passes through untouched keep their identity as
// userdata. Row indices are zero-based, matching the host API.
package luaext

import (
	"encoding/json"
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/gridstorm/internal/grid/core"
	"github.com/dshills/gridstorm/internal/log"
	"github.com/dshills/gridstorm/internal/plugin"
)

// Hook globals a script may define.
var hookNames = []string{
	"attach",
	"detach",
	"process_rows",
	"extra_height",
	"extra_height_before",
	"adjust_virtual_start",
	"on_key",
	"on_cell_click",
	"on_row_click",
	"on_scroll",
	"before_render",
	"after_render",
	"on_scroll_render",
	"on_plugin_query",
}

// Plugin hosts one Lua script as a grid plugin. The wrapped Lua state is
// not goroutine-safe; the mutex serializes all hook calls.
type Plugin struct {
	manifest plugin.Manifest
	defaults []byte

	mu     sync.Mutex
	L      *lua.LState
	hooks  map[string]*lua.LFunction
	host   plugin.Host
	logger *log.Logger
	closed bool
}

// Load compiles and runs a script, reads its manifest, and returns the
// plugin ready to attach. The script's top level runs once, here.
func Load(script string) (*Plugin, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(L)

	p := &Plugin{
		L:      L,
		hooks:  make(map[string]*lua.LFunction),
		logger: log.Discard(),
	}

	if err := L.DoString(script); err != nil {
		L.Close()
		return nil, fmt.Errorf("lua script: %w", err)
	}

	if err := p.readManifest(); err != nil {
		L.Close()
		return nil, err
	}
	if err := p.readDefaults(); err != nil {
		L.Close()
		return nil, err
	}

	for _, name := range hookNames {
		if fn, ok := L.GetGlobal(name).(*lua.LFunction); ok {
			p.hooks[name] = fn
		}
	}
	return p, nil
}

// openSafeLibraries opens base, table, string and math, then removes the
// code loading entry points the base library brings in.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		L.SetGlobal(name, lua.LNil)
	}
}

// readManifest parses the required global manifest table.
func (p *Plugin) readManifest() error {
	t, ok := p.L.GetGlobal("manifest").(*lua.LTable)
	if !ok {
		return fmt.Errorf("%w: script defines no manifest table", plugin.ErrInvalidManifest)
	}

	// Route through JSON so the manifest struct's own tags apply.
	doc, err := json.Marshal(toGo(t))
	if err != nil {
		return fmt.Errorf("%w: %v", plugin.ErrInvalidManifest, err)
	}
	var m plugin.Manifest
	if err := json.Unmarshal(doc, &m); err != nil {
		return fmt.Errorf("%w: %v", plugin.ErrInvalidManifest, err)
	}
	if err := m.Validate(); err != nil {
		return err
	}
	p.manifest = m
	return nil
}

// readDefaults captures the optional global defaults table as the plugin's
// default settings document.
func (p *Plugin) readDefaults() error {
	v := p.L.GetGlobal("defaults")
	if v == lua.LNil {
		return nil
	}
	t, ok := v.(*lua.LTable)
	if !ok {
		return fmt.Errorf("plugin %q: defaults must be a table", p.manifest.Name)
	}
	doc, err := json.Marshal(toGo(t))
	if err != nil {
		return fmt.Errorf("plugin %q: defaults: %w", p.manifest.Name, err)
	}
	p.defaults = doc
	return nil
}

// Manifest returns the script's manifest.
func (p *Plugin) Manifest() plugin.Manifest {
	return p.manifest
}

// DefaultSettings returns the script's defaults table as JSON, or nil.
func (p *Plugin) DefaultSettings() []byte {
	return p.defaults
}

// Attach installs the grid API module and runs the script's attach hook.
func (p *Plugin) Attach(host plugin.Host) error {
	p.mu.Lock()
	p.host = host
	p.logger = host.Logger().WithPlugin(p.manifest.Name)
	p.installGridModule()
	p.mu.Unlock()

	if _, ok := p.hooks["attach"]; !ok {
		return nil
	}
	if _, err := p.call("attach", 0); err != nil {
		return fmt.Errorf("plugin %q: attach: %w", p.manifest.Name, err)
	}
	return nil
}

// Detach runs the script's detach hook and closes the Lua state.
func (p *Plugin) Detach() {
	if _, ok := p.hooks["detach"]; ok {
		if _, err := p.call("detach", 0); err != nil {
			p.logger.Warn("detach hook failed: %v", err)
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	p.L.Close()
}

// installGridModule exposes the host surface to the script as the global
// grid table. Caller holds p.mu.
func (p *Plugin) installGridModule() {
	host := p.host
	name := p.manifest.Name
	logger := p.logger

	mod := p.L.SetFuncs(p.L.NewTable(), map[string]lua.LGFunction{
		"request_render": func(L *lua.LState) int {
			host.RequestRender()
			return 0
		},
		"request_columns": func(L *lua.LState) int {
			host.RequestColumnsPhase()
			return 0
		},
		"scroll_top": func(L *lua.LState) int {
			L.Push(lua.LNumber(host.ScrollTop()))
			return 1
		},
		"row_height": func(L *lua.LState) int {
			L.Push(lua.LNumber(host.RowHeight()))
			return 1
		},
		"total_rows": func(L *lua.LState) int {
			L.Push(lua.LNumber(host.TotalRows()))
			return 1
		},
		"visible_range": func(L *lua.LState) int {
			rng := host.VisibleRange()
			L.Push(lua.LNumber(rng.Start))
			L.Push(lua.LNumber(rng.End))
			return 2
		},
		"setting": func(L *lua.LState) int {
			path := L.CheckString(1)
			r := host.Settings(name).Get(path)
			if !r.Exists() {
				L.Push(lua.LNil)
				return 1
			}
			L.Push(toLua(L, r.Value()))
			return 1
		},
		"query": func(L *lua.LState) int {
			qt := L.CheckString(1)
			var ctx any
			if L.GetTop() >= 2 {
				ctx = toGo(L.Get(2))
			}
			responses := host.Query(plugin.Query{Type: plugin.QueryType(qt), Context: ctx})
			t := L.NewTable()
			for i, r := range responses {
				t.RawSetInt(i+1, toLua(L, r.Value))
			}
			L.Push(t)
			return 1
		},
		"log": func(L *lua.LState) int {
			logger.Info("%s", L.CheckString(1))
			return 0
		},
	})
	p.L.SetGlobal("grid", mod)
}

// call invokes a hook, returning its first result. Absent hooks report ok
// through the error being nil and a nil value.
func (p *Plugin) call(name string, nret int, args ...lua.LValue) (lua.LValue, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return lua.LNil, nil
	}
	fn, ok := p.hooks[name]
	if !ok {
		return lua.LNil, nil
	}

	top := p.L.GetTop()
	p.L.Push(fn)
	for _, a := range args {
		p.L.Push(a)
	}

	var callErr error
	func() {
		defer func() {
			if r := recover(); r != nil {
				callErr = fmt.Errorf("lua panic: %v", r)
			}
		}()
		callErr = p.L.PCall(len(args), nret, nil)
	}()
	if callErr != nil {
		return lua.LNil, callErr
	}

	n := p.L.GetTop() - top
	if n <= 0 {
		return lua.LNil, nil
	}
	ret := p.L.Get(top + 1)
	p.L.Pop(n)
	return ret, nil
}

// hookErr logs a failed hook; the hook then contributes nothing.
func (p *Plugin) hookErr(name string, err error) {
	if err != nil {
		p.logger.Error("hook %s failed: %v", name, err)
	}
}

// ProcessRows runs the script's row transform. Errors or a non-table
// result leave the rows unchanged.
func (p *Plugin) ProcessRows(rows []core.Row) []core.Row {
	if _, ok := p.hooks["process_rows"]; !ok {
		return rows
	}

	p.mu.Lock()
	in := p.L.NewTable()
	for i, r := range rows {
		in.RawSetInt(i+1, toLua(p.L, r))
	}
	p.mu.Unlock()

	ret, err := p.call("process_rows", 1, in)
	if err != nil {
		p.hookErr("process_rows", err)
		return rows
	}
	t, ok := ret.(*lua.LTable)
	if !ok {
		return rows
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]core.Row, 0, t.Len())
	for i := 1; i <= t.Len(); i++ {
		out = append(out, toGo(t.RawGetInt(i)))
	}
	return out
}

// ExtraHeight reports the script's total extra height contribution.
func (p *Plugin) ExtraHeight() int {
	return p.callInt("extra_height", 0)
}

// ExtraHeightBefore reports the extra height before the given row.
func (p *Plugin) ExtraHeightBefore(index int) int {
	return p.callInt("extra_height_before", 0, lua.LNumber(index))
}

// AdjustVirtualStart lets the script pull the window start backward.
func (p *Plugin) AdjustVirtualStart(start, scrollTop, rowHeight int) int {
	return p.callInt("adjust_virtual_start", start,
		lua.LNumber(start), lua.LNumber(scrollTop), lua.LNumber(rowHeight))
}

func (p *Plugin) callInt(name string, fallback int, args ...lua.LValue) int {
	ret, err := p.call(name, 1, args...)
	if err != nil {
		p.hookErr(name, err)
		return fallback
	}
	if n, ok := ret.(lua.LNumber); ok {
		return int(n)
	}
	return fallback
}

func (p *Plugin) callBool(name string, args ...lua.LValue) bool {
	ret, err := p.call(name, 1, args...)
	if err != nil {
		p.hookErr(name, err)
		return false
	}
	return lua.LVAsBool(ret)
}

// OnKeyDown routes a key press to the script's on_key hook.
func (p *Plugin) OnKeyDown(ev core.KeyEvent) bool {
	if _, ok := p.hooks["on_key"]; !ok {
		return false
	}
	p.mu.Lock()
	t := p.L.NewTable()
	if ev.Rune != 0 {
		t.RawSetString("rune", lua.LString(string(ev.Rune)))
	}
	t.RawSetString("name", lua.LString(ev.Name))
	t.RawSetString("shift", lua.LBool(ev.Mod.Has(core.ModShift)))
	t.RawSetString("ctrl", lua.LBool(ev.Mod.Has(core.ModCtrl)))
	t.RawSetString("alt", lua.LBool(ev.Mod.Has(core.ModAlt)))
	p.mu.Unlock()
	return p.callBool("on_key", t)
}

func (p *Plugin) cellEventTable(ev core.CellEvent) *lua.LTable {
	p.mu.Lock()
	defer p.mu.Unlock()
	t := p.L.NewTable()
	t.RawSetString("row_index", lua.LNumber(ev.RowIndex))
	t.RawSetString("column", lua.LString(ev.ColumnKey))
	t.RawSetString("row", toLua(p.L, ev.Row))
	return t
}

// OnCellClick routes a cell click to the script's on_cell_click hook.
func (p *Plugin) OnCellClick(ev core.CellEvent) bool {
	if _, ok := p.hooks["on_cell_click"]; !ok {
		return false
	}
	return p.callBool("on_cell_click", p.cellEventTable(ev))
}

// OnRowClick routes a row click to the script's on_row_click hook.
func (p *Plugin) OnRowClick(ev core.CellEvent) bool {
	if _, ok := p.hooks["on_row_click"]; !ok {
		return false
	}
	return p.callBool("on_row_click", p.cellEventTable(ev))
}

// OnScroll notifies the script of a scroll change.
func (p *Plugin) OnScroll(ev core.ScrollEvent) bool {
	if _, ok := p.hooks["on_scroll"]; !ok {
		return false
	}
	return p.callBool("on_scroll", lua.LNumber(ev.Top), lua.LNumber(ev.Delta))
}

// BeforeRender runs the script's before_render hook.
func (p *Plugin) BeforeRender() {
	_, err := p.call("before_render", 0)
	p.hookErr("before_render", err)
}

// AfterRender runs the script's after_render hook.
func (p *Plugin) AfterRender() {
	_, err := p.call("after_render", 0)
	p.hookErr("after_render", err)
}

// OnScrollRender runs the script's on_scroll_render hook.
func (p *Plugin) OnScrollRender() {
	_, err := p.call("on_scroll_render", 0)
	p.hookErr("on_scroll_render", err)
}

// OnPluginQuery routes a query to the script. A nil result means the
// script has no opinion.
func (p *Plugin) OnPluginQuery(q plugin.Query) (any, bool) {
	if _, ok := p.hooks["on_plugin_query"]; !ok {
		return nil, false
	}
	p.mu.Lock()
	ctx := toLua(p.L, q.Context)
	p.mu.Unlock()

	ret, err := p.call("on_plugin_query", 1, lua.LString(q.Type), ctx)
	if err != nil {
		p.hookErr("on_plugin_query", err)
		return nil, false
	}
	if ret == lua.LNil {
		return nil, false
	}
	return toGo(ret), true
}
