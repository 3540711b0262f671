// Package di wires the shared dependencies commands resolve at run time.
// It is the only place backend selection happens, so command code depends
// on interfaces alone.
package di

import (
	"github.com/samber/do/v2"
)

// Injector is the dependency injector commands resolve from.
type Injector = do.Injector

// Provider registers one dependency with the injector.
type Provider func(Injector) error

// Runtime is the shared dependency container for the command tree.
type Runtime struct {
	injector Injector
	initErr  error
}

// New constructs a runtime from the given providers.
func New(providers ...Provider) *Runtime {
	injector := do.New()
	runtime := &Runtime{injector: injector}

	for _, provider := range providers {
		err := provider(injector)
		if err != nil && runtime.initErr == nil {
			runtime.initErr = err
		}
	}

	return runtime
}

// Injector returns the underlying injector.
func (r *Runtime) Injector() Injector {
	return r.injector
}

// Invoke runs fn against the runtime's injector. A provider registration
// failure is reported before fn runs.
func (r *Runtime) Invoke(fn func(Injector) error) error {
	if r.initErr != nil {
		return r.initErr
	}

	return fn(r.injector)
}
