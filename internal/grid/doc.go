// Package grid implements the plugin host: it ties the registry, the
// column/row pipeline, the virtualization window, the render scheduler, and
// the paint surface into one grid instance.
//
// A full render pass runs in fixed phase order: COLUMNS (fold every
// plugin's column transform), ROWS (fold row transforms, recompute the
// window), PAINT (draw header and windowed rows), AFTER (post-render
// hooks). Scroll-only updates skip the pipelines and fire OnScrollRender
// instead. All hooks run synchronously in attach order on the host loop's
// goroutine.
package grid
