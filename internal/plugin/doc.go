// Package plugin defines the contract between the grid and its plugins, and
// the registry that owns attached plugin instances.
//
// A plugin implements the Plugin interface (identity, attach, detach) plus
// any number of optional capability interfaces: column/row transforms,
// interaction hooks, height contributions, render-cycle observers, and the
// inter-plugin query hook. The registry validates declared dependencies and
// incompatibilities at attach time, resolves name lookup, and fans queries
// out to every responder.
//
// Hooks run synchronously in attach order. A panic inside any hook is
// recovered, logged with the plugin's name, and treated as no contribution;
// a single broken plugin never aborts a render pass for the others.
package plugin
