// Package taskrun executes registered task callables against an execution
// context: the callable receives exactly the context values its declared
// signature accepts, and subprocess-style consumers get the context as
// environment variables.
package taskrun

import (
	"fmt"
	"log/slog"

	"github.com/vk/taskflowgo/internal/binder"
)

// Registry holds the task callables compiled into the binary, keyed by name.
type Registry struct {
	callables map[string]*binder.Callable
}

// NewRegistry creates an empty callable registry.
func NewRegistry() *Registry {
	return &Registry{callables: make(map[string]*binder.Callable)}
}

// Register adds a callable. Registering the same name twice is a programmer
// error and panics.
func (r *Registry) Register(c *binder.Callable) {
	if _, exists := r.callables[c.Name()]; exists {
		panic(fmt.Sprintf("callable with name '%s' already registered", c.Name()))
	}
	slog.Debug("Registering callable.", "name", c.Name())
	r.callables[c.Name()] = c
}

// Lookup returns the callable registered under name.
func (r *Registry) Lookup(name string) (*binder.Callable, bool) {
	c, ok := r.callables[name]
	return c, ok
}
