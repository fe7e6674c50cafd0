package luaext

import (
	"errors"
	"testing"

	"github.com/dshills/gridstorm/internal/grid"
	"github.com/dshills/gridstorm/internal/grid/core"
	"github.com/dshills/gridstorm/internal/plugin"
	"github.com/dshills/gridstorm/internal/render/backend"
)

const manifestHeader = `
manifest = { name = "lua-test", version = "1.0.0", description = "test plugin" }
`

func TestLoadRequiresManifest(t *testing.T) {
	_, err := Load(`x = 1`)
	if !errors.Is(err, plugin.ErrInvalidManifest) {
		t.Fatalf("err = %v, want ErrInvalidManifest", err)
	}
}

func TestLoadRejectsBadScript(t *testing.T) {
	if _, err := Load(`this is not lua`); err == nil {
		t.Fatal("expected a compile error")
	}
}

func TestLoadReadsManifest(t *testing.T) {
	p, err := Load(manifestHeader)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer p.Detach()

	m := p.Manifest()
	if m.Name != "lua-test" || m.Version != "1.0.0" {
		t.Errorf("manifest = %+v", m)
	}
}

func TestLoadValidatesManifest(t *testing.T) {
	_, err := Load(`manifest = { name = "Bad Name", version = "1.0.0" }`)
	if !errors.Is(err, plugin.ErrInvalidManifest) {
		t.Fatalf("err = %v, want ErrInvalidManifest", err)
	}
}

func TestSandboxRemovesLoaders(t *testing.T) {
	_, err := Load(manifestHeader + `
if dofile ~= nil or loadfile ~= nil or load ~= nil then
	error("loaders visible")
end
`)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
}

func TestProcessRowsFilters(t *testing.T) {
	p, err := Load(manifestHeader + `
function process_rows(rows)
	local out = {}
	for _, r in ipairs(rows) do
		if r ~= "drop" then
			out[#out + 1] = r
		end
	end
	return out
end
`)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer p.Detach()

	got := p.ProcessRows([]core.Row{"keep", "drop", "also"})
	if len(got) != 2 || got[0] != "keep" || got[1] != "also" {
		t.Errorf("rows = %v, want [keep also]", got)
	}
}

func TestProcessRowsAbsentHookPassesThrough(t *testing.T) {
	p, err := Load(manifestHeader)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer p.Detach()

	rows := []core.Row{"a", "b"}
	got := p.ProcessRows(rows)
	if len(got) != 2 {
		t.Errorf("rows = %v, want unchanged", got)
	}
}

func TestProcessRowsErrorLeavesRows(t *testing.T) {
	p, err := Load(manifestHeader + `
function process_rows(rows)
	error("boom")
end
`)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer p.Detach()

	got := p.ProcessRows([]core.Row{"a", "b"})
	if len(got) != 2 {
		t.Errorf("rows = %v, want input carried through", got)
	}
}

func TestHeightHooks(t *testing.T) {
	p, err := Load(manifestHeader + `
function extra_height()
	return 150
end
function extra_height_before(index)
	if index > 10 then
		return 150
	end
	return 0
end
`)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer p.Detach()

	if got := p.ExtraHeight(); got != 150 {
		t.Errorf("ExtraHeight = %d, want 150", got)
	}
	if got := p.ExtraHeightBefore(10); got != 0 {
		t.Errorf("ExtraHeightBefore(10) = %d, want 0", got)
	}
	if got := p.ExtraHeightBefore(11); got != 150 {
		t.Errorf("ExtraHeightBefore(11) = %d, want 150", got)
	}
}

func TestHeightHooksAbsentContributeZero(t *testing.T) {
	p, err := Load(manifestHeader)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer p.Detach()

	if got := p.ExtraHeight(); got != 0 {
		t.Errorf("ExtraHeight = %d, want 0", got)
	}
	if got := p.AdjustVirtualStart(7, 100, 14); got != 7 {
		t.Errorf("AdjustVirtualStart = %d, want naive start back", got)
	}
}

func TestOnKeyClaim(t *testing.T) {
	p, err := Load(manifestHeader + `
function on_key(ev)
	return ev.name == "enter"
end
`)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer p.Detach()

	if !p.OnKeyDown(core.KeyEvent{Name: "enter"}) {
		t.Error("enter must be claimed")
	}
	if p.OnKeyDown(core.KeyEvent{Name: "down"}) {
		t.Error("down must not be claimed")
	}
}

func TestSettingsReachLua(t *testing.T) {
	p, err := Load(manifestHeader + `
defaults = { pad = 3 }
function extra_height()
	return grid.setting("pad")
end
`)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	g := grid.New(backend.NewBuffer(20, 5))
	defer g.Close()
	if err := g.Attach(grid.Instance{Plugin: p, Config: []byte(`{"pad":5}`)}); err != nil {
		t.Fatalf("Attach: %v", err)
	}

	if got := p.ExtraHeight(); got != 5 {
		t.Errorf("ExtraHeight = %d, want override 5", got)
	}
}

func TestQueryResponder(t *testing.T) {
	p, err := Load(manifestHeader + `
function on_plugin_query(qtype, ctx)
	if qtype == "contextmenu.items" then
		return { { label = "Copy", command = "copy" } }
	end
	return nil
end
`)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	g := grid.New(backend.NewBuffer(20, 5))
	defer g.Close()
	if err := g.Attach(grid.Instance{Plugin: p}); err != nil {
		t.Fatalf("Attach: %v", err)
	}

	responses := g.Query(plugin.Query{Type: plugin.QueryContextMenu})
	if len(responses) != 1 {
		t.Fatalf("responses = %v, want one", responses)
	}
	items, ok := responses[0].Value.([]any)
	if !ok || len(items) != 1 {
		t.Fatalf("value = %#v, want one item", responses[0].Value)
	}
	item := items[0].(map[string]any)
	if item["label"] != "Copy" || item["command"] != "copy" {
		t.Errorf("item = %#v", item)
	}

	if vals := g.Query(plugin.Query{Type: "unknown.query"}); len(vals) != 0 {
		t.Errorf("unknown query must collect no responses, got %v", vals)
	}
}

func TestAttachHookRuns(t *testing.T) {
	p, err := Load(manifestHeader + `
attached = false
function attach()
	attached = true
	grid.log("hello")
end
function extra_height()
	if attached then return 1 end
	return 0
end
`)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	g := grid.New(backend.NewBuffer(20, 5))
	defer g.Close()
	if err := g.Attach(grid.Instance{Plugin: p}); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	if got := p.ExtraHeight(); got != 1 {
		t.Error("attach hook did not run")
	}
}

func TestDetachClosesState(t *testing.T) {
	p, err := Load(manifestHeader + `
function extra_height() return 9 end
`)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	p.Detach()
	if got := p.ExtraHeight(); got != 0 {
		t.Errorf("ExtraHeight after detach = %d, want 0", got)
	}
	p.Detach() // safe to repeat
}
