// Package main is a demo host for the gridstorm grid: a task list with an
// expandable-detail plugin, a reorder-handle plugin, and a Lua filter
// plugin.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/dshills/gridstorm/internal/grid"
	"github.com/dshills/gridstorm/internal/grid/core"
	"github.com/dshills/gridstorm/internal/log"
	"github.com/dshills/gridstorm/internal/plugin/luaext"
	"github.com/dshills/gridstorm/internal/render/backend"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		logPath     string
		logLevel    string
		rowCount    int
		hideDone    bool
		showVersion bool
	)
	flag.StringVar(&logPath, "log-file", "", "Write logs to this file")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.IntVar(&rowCount, "rows", 200, "Number of sample rows")
	flag.BoolVar(&hideDone, "hide-done", false, "Hide tasks with status done")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.Parse()

	if showVersion {
		fmt.Printf("gridstorm %s (%s)\n", version, commit)
		return 0
	}

	logger := log.Discard()
	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: open log file: %v\n", err)
			return 1
		}
		defer f.Close()
		logger = log.New(log.Config{
			Level:  log.ParseLevel(logLevel),
			Output: f,
			Prefix: "gridstorm",
		})
	}

	term, err := backend.NewTerminal()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: create terminal: %v\n", err)
		return 1
	}
	if err := term.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: init terminal: %v\n", err)
		return 1
	}
	defer term.Shutdown()

	g := grid.New(term,
		grid.WithLogger(logger),
		grid.WithRowKey(func(r core.Row) any {
			return r.(map[string]any)["id"]
		}),
	)
	defer g.Close()

	filter, err := luaext.Load(filterScript)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: load filter plugin: %v\n", err)
		return 1
	}

	detail := &detailPlugin{g: g, expanded: map[any]bool{}}
	instances := []grid.Instance{
		{Plugin: filter, Config: []byte(fmt.Sprintf(`{"hide_done":%v}`, hideDone))},
		{Plugin: detail},
		{Plugin: &handlePlugin{}},
	}
	if err := g.Attach(instances...); err != nil {
		term.Shutdown()
		fmt.Fprintf(os.Stderr, "Error: attach plugins: %v\n", err)
		return 1
	}

	g.SetColumns(taskColumns())
	g.SetRows(sampleTasks(rowCount))
	g.Flush()
	g.Select(0)

	for {
		ev, ok := term.PollEvent()
		if !ok {
			return 0
		}
		if ev.Type == backend.EventKey && (ev.Rune == 'q' || ev.Key == "escape") {
			return 0
		}
		g.HandleEvent(ev)
	}
}

func taskColumns() []core.Column {
	field := func(key string) core.CellFunc {
		return func(r core.Row) string {
			return fmt.Sprint(r.(map[string]any)[key])
		}
	}
	return []core.Column{
		{Key: "id", Title: "ID", Width: 6, Kind: core.KindNumber, Cell: field("id")},
		{Key: "title", Title: "Title", Cell: field("title")},
		{Key: "status", Title: "Status", Width: 10, Cell: field("status")},
		{Key: "priority", Title: "Pri", Width: 4, Kind: core.KindNumber, Cell: field("priority")},
	}
}

func sampleTasks(n int) []core.Row {
	statuses := []string{"open", "active", "done", "blocked"}
	rows := make([]core.Row, n)
	for i := range rows {
		rows[i] = map[string]any{
			"id":       int64(i + 1),
			"title":    fmt.Sprintf("Task %d: tune the flux capacitor", i+1),
			"status":   statuses[i%len(statuses)],
			"priority": int64(i%5 + 1),
			"notes":    fmt.Sprintf("Created for sprint %d. Press enter to collapse.", i/10+1),
		}
	}
	return rows
}

// filterScript hides done tasks when the hide_done setting is on. Row
// values are plain tables, so they survive the Lua round trip.
const filterScript = `
manifest = {
	name = "status-filter",
	version = "1.0.0",
	description = "Hides tasks whose status matches the configured filter",
}
defaults = { hide_done = false }

function process_rows(rows)
	if not grid.setting("hide_done") then
		return rows
	end
	local out = {}
	for _, r in ipairs(rows) do
		if r.status ~= "done" then
			out[#out + 1] = r
		end
	end
	return out
end
`
