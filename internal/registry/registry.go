// Package registry holds the adapters built from one configuration snapshot
// and resolves the ordered candidate list for a request.
package registry

import (
	"cmp"
	"log/slog"
	"slices"

	"github.com/zinc-sig/pst/internal/config"
	"github.com/zinc-sig/pst/internal/upload"
)

// BuildFunc constructs the adapter for one enabled provider entry
type BuildFunc func(p config.Provider) (upload.Adapter, error)

// Builder returns a BuildFunc backed by upload.NewAdapter
func Builder(opts upload.BuildOptions) BuildFunc {
	return func(p config.Provider) (upload.Adapter, error) {
		return upload.NewAdapter(p, opts)
	}
}

type entry struct {
	name     string
	priority int
	adapter  upload.Adapter
}

// Registry is read-only after construction and safe for concurrent use
type Registry struct {
	cfg     *config.Config
	entries []entry // enabled providers in declaration order
	byName  map[string]entry
	log     *slog.Logger
}

// New builds adapters for every enabled provider. The snapshot is kept so
// that forcing a disabled provider reports why it cannot be used.
func New(cfg *config.Config, build BuildFunc, log *slog.Logger) (*Registry, error) {
	if log == nil {
		log = slog.Default()
	}
	r := &Registry{
		cfg:    cfg,
		byName: make(map[string]entry, len(cfg.Providers)),
		log:    log,
	}

	for _, p := range cfg.Providers {
		if !p.IsEnabled() {
			continue
		}
		adapter, err := build(p)
		if err != nil {
			return nil, err
		}
		e := entry{name: p.Name, priority: p.Priority, adapter: adapter}
		r.entries = append(r.entries, e)
		r.byName[p.Name] = e
	}
	return r, nil
}

// HasGroup reports whether a provider group is defined
func (r *Registry) HasGroup(name string) bool {
	_, ok := r.cfg.Group(name)
	return ok
}

// Adapter returns the adapter built for an enabled provider
func (r *Registry) Adapter(name string) (upload.Adapter, bool) {
	e, ok := r.byName[name]
	return e.adapter, ok
}

// Resolve returns the ordered candidates for a payload.
//
// A forced provider yields a single candidate regardless of capabilities;
// an unknown or disabled one is an UnknownProvider error. A group keeps its
// own order and drops disabled or incompatible members; an undefined group
// is an UnknownGroup error. Otherwise enabled compatible providers are
// ordered by ascending priority, ties keeping declaration order. An empty
// list is not an error.
func (r *Registry) Resolve(size int64, kind upload.Kind, group, provider string) (CandidateList, error) {
	if provider != "" {
		e, ok := r.byName[provider]
		if !ok {
			if _, declared := r.cfg.Provider(provider); declared {
				return CandidateList{}, config.UnknownProvider(provider, "is disabled")
			}
			return CandidateList{}, config.UnknownProvider(provider, "is not configured")
		}
		r.log.Debug("using forced provider", "provider", provider)
		return newCandidateList([]upload.Adapter{e.adapter}), nil
	}

	if group != "" {
		g, ok := r.cfg.Group(group)
		if !ok {
			return CandidateList{}, config.UnknownGroup(group)
		}
		var out []upload.Adapter
		for _, name := range g.Providers {
			e, ok := r.byName[name]
			if !ok {
				if _, declared := r.cfg.Provider(name); !declared {
					return CandidateList{}, config.UnknownProvider(name, "is referenced by group "+group+" but not configured")
				}
				continue
			}
			if r.compatible(e, size, kind) {
				out = append(out, e.adapter)
			}
		}
		return newCandidateList(out), nil
	}

	ordered := slices.Clone(r.entries)
	slices.SortStableFunc(ordered, func(a, b entry) int {
		return cmp.Compare(a.priority, b.priority)
	})
	var out []upload.Adapter
	for _, e := range ordered {
		if r.compatible(e, size, kind) {
			out = append(out, e.adapter)
		}
	}
	return newCandidateList(out), nil
}

func (r *Registry) compatible(e entry, size int64, kind upload.Kind) bool {
	if e.adapter.Capabilities().Allows(size, kind) {
		return true
	}
	r.log.Debug("provider filtered out", "provider", e.name, "size", size, "kind", kind.String())
	return false
}

// CandidateList is an ordered, immutable list of adapters for one request
type CandidateList struct {
	adapters []upload.Adapter
}

func newCandidateList(adapters []upload.Adapter) CandidateList {
	return CandidateList{adapters: adapters}
}

// NewCandidateList copies adapters into a candidate list
func NewCandidateList(adapters ...upload.Adapter) CandidateList {
	return newCandidateList(slices.Clone(adapters))
}

// Len returns the number of candidates
func (c CandidateList) Len() int { return len(c.adapters) }

// At returns the i-th candidate
func (c CandidateList) At(i int) upload.Adapter { return c.adapters[i] }

// Names returns the candidate provider names in order
func (c CandidateList) Names() []string {
	names := make([]string, len(c.adapters))
	for i, a := range c.adapters {
		names[i] = a.Name()
	}
	return names
}
