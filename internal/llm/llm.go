package llm

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Options are the per-query generation settings every provider understands.
type Options struct {
	Temperature float64
	MaxTokens   int
}

// Credentials carries what a provider constructor needs to build a client.
type Credentials struct {
	APIKey  string
	BaseURL string
}

// Provider is the capability a survey needs from an LLM backend: send a
// prompt, get text back. Failures are reported as *ProviderError so the
// caller can distinguish retryable kinds from fatal ones.
type Provider interface {
	Name() string
	Query(ctx context.Context, prompt, model string, opts Options) (string, error)
}

// Factory constructs a provider from credentials.
type Factory func(creds Credentials) (Provider, error)

// Registry maps provider names to constructors. New providers are added by
// registering a factory; nothing else needs to change.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds or replaces the factory for a provider name.
func (r *Registry) Register(name string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// New constructs the named provider.
func (r *Registry) New(name string, creds Credentials) (Provider, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown provider %q (available: %v)", name, r.Names())
	}
	return factory(creds)
}

// Names returns the registered provider names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
