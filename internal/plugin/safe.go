package plugin

import "github.com/dshills/gridstorm/internal/log"

// Call invokes a plugin hook, recovering panics so one broken plugin cannot
// abort a render pass for the others. A recovered panic is logged with the
// plugin and hook names and the hook is treated as contributing nothing.
func Call(logger *log.Logger, pluginName, hook string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("plugin hook panic: %s.%s: %v", pluginName, hook, r)
		}
	}()
	fn()
}

// CallBool is Call for hooks returning a handled flag. A panicking hook
// reports unhandled.
func CallBool(logger *log.Logger, pluginName, hook string, fn func() bool) (handled bool) {
	Call(logger, pluginName, hook, func() {
		handled = fn()
	})
	return handled
}

// CallInt is Call for hooks returning a numeric contribution. A panicking
// hook contributes the fallback.
func CallInt(logger *log.Logger, pluginName, hook string, fallback int, fn func() int) (v int) {
	v = fallback
	Call(logger, pluginName, hook, func() {
		v = fn()
	})
	return v
}
