package search

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pdiddy/carsearch/internal/httputil"
	"github.com/pdiddy/carsearch/pkg/types"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "carsearch/0.1"
)

// SourceFactory builds a Source from shared HTTP settings.
type SourceFactory func(client *httputil.Client) Source

// Registry maps source names to factories.
type Registry struct {
	factories map[string]SourceFactory
	mu        sync.RWMutex
}

// NewRegistry returns a Registry with the built-in sources registered.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]SourceFactory)}

	r.Register("carzone_ie", func(c *httputil.Client) Source { return &CarzoneSource{Client: c} })
	r.Register("donedeal_ie", func(c *httputil.Client) Source { return &DoneDealSource{Client: c} })

	return r
}

// Register adds or replaces the factory for name.
func (r *Registry) Register(name string, factory SourceFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Names returns the registered source names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.namesLocked()
}

// Select builds the sources named in names, in order, sharing one HTTP
// client configured from cfg. An empty names selects every registered
// source. Unknown names are skipped and reported as warnings; duplicates
// are built once.
func (r *Registry) Select(names []string, cfg types.HTTPConfig) ([]Source, []string) {
	if len(names) == 0 {
		names = r.Names()
	}

	client := newClient(cfg)

	r.mu.RLock()
	defer r.mu.RUnlock()

	var sources []Source
	var warnings []string
	seen := make(map[string]bool)
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		factory, ok := r.factories[name]
		if !ok {
			warnings = append(warnings, fmt.Sprintf("unknown source %q, ignoring (available: %s)",
				raw, strings.Join(r.namesLocked(), ", ")))
			continue
		}
		sources = append(sources, factory(client))
	}
	return sources, warnings
}

func (r *Registry) namesLocked() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func newClient(cfg types.HTTPConfig) *httputil.Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	return &httputil.Client{
		HTTP:      &http.Client{Timeout: timeout},
		UserAgent: ua,
	}
}

func clientOrDefault(c *httputil.Client) *httputil.Client {
	if c == nil {
		return newClient(types.HTTPConfig{})
	}
	return c
}
