package plugin

import (
	"fmt"
	"sync"

	"github.com/dshills/gridstorm/internal/log"
)

// Registry owns the ordered collection of attached plugins for one grid
// instance. Attach order is significant: transforms fold, hooks fire, and
// queries fan out in exactly this order.
type Registry struct {
	mu      sync.RWMutex
	logger  *log.Logger
	plugins []Plugin
	byName  map[string]Plugin
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *log.Logger) *Registry {
	if logger == nil {
		logger = log.Discard()
	}
	return &Registry{
		logger: logger.WithComponent("registry"),
		byName: make(map[string]Plugin),
	}
}

// Attach validates and attaches a batch of plugins. Dependency and
// incompatibility constraints are checked against the union of already
// attached plugins and the batch itself, before any Attach hook runs; a
// validation failure attaches nothing from the batch.
//
// A plugin whose Attach hook fails (or panics) is not registered and the
// error is returned; batch members attached before it stay attached.
//
// Attach hooks run outside the registry lock, so a hook may call back into
// the registry (lookups, queries). A plugin becomes visible to lookups only
// after its own hook succeeds.
func (r *Registry) Attach(host Host, plugins ...Plugin) error {
	r.mu.Lock()
	if err := r.validateBatch(plugins); err != nil {
		r.mu.Unlock()
		return err
	}
	r.mu.Unlock()

	for _, p := range plugins {
		name := p.Manifest().Name
		if err := r.safeAttach(host, p); err != nil {
			return fmt.Errorf("plugin %q: %w: %v", name, ErrAttachFailed, err)
		}
		r.mu.Lock()
		r.plugins = append(r.plugins, p)
		r.byName[name] = p
		r.mu.Unlock()
		r.logger.Debug("attached plugin %q", name)
	}
	return nil
}

// validateBatch enforces registration constraints. Caller holds the lock.
func (r *Registry) validateBatch(batch []Plugin) error {
	// Union of attached names and batch names, for dependency resolution.
	names := make(map[string]Manifest, len(r.byName)+len(batch))
	for _, p := range r.plugins {
		m := p.Manifest()
		names[m.Name] = m
	}

	for _, p := range batch {
		m := p.Manifest()
		if err := m.Validate(); err != nil {
			return err
		}
		if _, exists := names[m.Name]; exists {
			return &RegistrationError{Plugin: m.Name, Err: ErrDuplicatePlugin}
		}
		names[m.Name] = m
	}

	for _, p := range batch {
		m := p.Manifest()

		for _, dep := range m.Requires {
			if _, ok := names[dep]; !ok {
				return &RegistrationError{Plugin: m.Name, Other: dep, Err: ErrDependencyMissing}
			}
		}

		// Incompatibility is symmetric: either side's declaration refuses
		// the pair.
		for otherName, other := range names {
			if otherName == m.Name {
				continue
			}
			if inc, ok := m.ConflictsWith(otherName); ok {
				return &RegistrationError{Plugin: m.Name, Other: otherName, Reason: inc.Reason, Err: ErrIncompatiblePlugin}
			}
			if inc, ok := other.ConflictsWith(m.Name); ok {
				return &RegistrationError{Plugin: m.Name, Other: otherName, Reason: inc.Reason, Err: ErrIncompatiblePlugin}
			}
		}
	}
	return nil
}

// safeAttach runs the Attach hook with panic recovery.
func (r *Registry) safeAttach(host Host, p Plugin) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("attach panic: %v", rec)
		}
	}()
	return p.Attach(host)
}

// Detach removes a plugin by name and runs its Detach hook. Returns
// ErrPluginNotFound when no such plugin is attached.
func (r *Registry) Detach(name string) error {
	r.mu.Lock()
	p, ok := r.byName[name]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrPluginNotFound, name)
	}
	delete(r.byName, name)
	for i, q := range r.plugins {
		if q == p {
			r.plugins = append(r.plugins[:i:i], r.plugins[i+1:]...)
			break
		}
	}
	r.mu.Unlock()

	r.safeDetach(name, p)
	return nil
}

// DetachAll detaches every plugin in reverse attach order. Safe to call
// repeatedly.
func (r *Registry) DetachAll() {
	r.mu.Lock()
	plugins := r.plugins
	r.plugins = nil
	r.byName = make(map[string]Plugin)
	r.mu.Unlock()

	for i := len(plugins) - 1; i >= 0; i-- {
		r.safeDetach(plugins[i].Manifest().Name, plugins[i])
	}
}

func (r *Registry) safeDetach(name string, p Plugin) {
	Call(r.logger, name, "Detach", p.Detach)
}

// ByName resolves an attached plugin by name.
func (r *Registry) ByName(name string) (Plugin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byName[name]
	return p, ok
}

// Plugins returns the attached plugins in attach order.
func (r *Registry) Plugins() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Plugin, len(r.plugins))
	copy(out, r.plugins)
	return out
}

// Names returns the attached plugin names in attach order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.plugins))
	for i, p := range r.plugins {
		out[i] = p.Manifest().Name
	}
	return out
}

// Len returns the number of attached plugins.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// Query fans the query out to every attached QueryResponder in attach
// order, collecting the responses of plugins that reported an opinion.
// A panicking responder contributes nothing.
func (r *Registry) Query(q Query) []Response {
	plugins := r.Plugins()

	var responses []Response
	for _, p := range plugins {
		responder, ok := p.(QueryResponder)
		if !ok {
			continue
		}
		name := p.Manifest().Name
		Call(r.logger, name, "OnPluginQuery", func() {
			if value, answered := responder.OnPluginQuery(q); answered {
				responses = append(responses, Response{Plugin: name, Value: value})
			}
		})
	}
	return responses
}

// Implementing returns, in attach order, every attached plugin that
// implements the capability interface T.
func Implementing[T any](r *Registry) []T {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []T
	for _, p := range r.plugins {
		if v, ok := p.(T); ok {
			out = append(out, v)
		}
	}
	return out
}
