package scraper

import (
	"sort"
	"strings"
)

// Registry maps verb names to scrapers. It is built once at startup and
// is read-only afterwards.
type Registry struct {
	scrapers map[string]Scraper
}

func NewRegistry(scrapers ...Scraper) *Registry {
	r := &Registry{scrapers: map[string]Scraper{}}
	for _, s := range scrapers {
		r.Register(s)
	}
	return r
}

func (r *Registry) Register(s Scraper) {
	r.scrapers[strings.ToLower(s.Name())] = s
}

// Alias makes s reachable under another verb.
func (r *Registry) Alias(alias string, s Scraper) {
	r.scrapers[strings.ToLower(alias)] = s
}

func (r *Registry) Get(name string) (Scraper, bool) {
	s, ok := r.scrapers[strings.ToLower(name)]
	return s, ok
}

// Names returns the registered verbs in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.scrapers))
	for name := range r.scrapers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
