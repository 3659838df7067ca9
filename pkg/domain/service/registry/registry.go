// Package registry maps persisted service records back to their live
// implementations.
//
// A record alone cannot act: it is data. Each service implementation
// registers a Reviver under its source discriminator, and the registry
// dispatches records to the reviver that knows how to rebuild the
// matching driver.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/servefab/servefab/pkg/domain"
	"github.com/servefab/servefab/pkg/domain/service"
	xe "github.com/servefab/servefab/pkg/errors"
)

// Reviver rebuilds a live Service from its persisted record.
//
// It is expected to reconstruct the concrete driver from the record's
// config and wrap it via service.FromRecord.
type Reviver func(rec domain.ServiceRecord) (*service.Service, error)

// Registry is a closed map from source discriminators to Revivers.
//
// Registration happens at startup (typically from package init of each
// implementation); Revive is safe for concurrent use afterwards.
type Registry struct {
	mu       sync.RWMutex
	revivers map[string]Reviver
}

func New() *Registry {
	return &Registry{revivers: map[string]Reviver{}}
}

// Register binds a Reviver to a source discriminator.
//
// Registering an empty source or registering the same source twice is a
// programming error and panics.
func (r *Registry) Register(source string, rev Reviver) {
	if source == "" {
		panic("registry: empty source")
	}
	if rev == nil {
		panic(fmt.Sprintf("registry: nil reviver for source %q", source))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.revivers[source]; ok {
		panic(fmt.Sprintf("registry: source %q registered twice", source))
	}
	r.revivers[source] = rev
}

// Revive dispatches rec to the Reviver registered for rec.Source.
//
// Returns
//
// - *service.Service: the revived service.
//
// - error: domain.ErrBadSource when no Reviver knows rec.Source,
// or whatever the Reviver itself returned.
func (r *Registry) Revive(rec domain.ServiceRecord) (*service.Service, error) {
	r.mu.RLock()
	rev, ok := r.revivers[rec.Source]
	r.mu.RUnlock()

	if !ok {
		return nil, xe.WrapWithNote(
			fmt.Sprintf("unknown service source %q (service %s)", rec.Source, rec.ID),
			domain.ErrBadSource,
		)
	}
	s, err := rev(rec)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	return s, nil
}

// Knows reports whether a Reviver is registered for source.
func (r *Registry) Knows(source string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.revivers[source]
	return ok
}

// Sources lists the registered source discriminators, sorted.
func (r *Registry) Sources() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sources := make([]string, 0, len(r.revivers))
	for s := range r.revivers {
		sources = append(sources, s)
	}
	sort.Strings(sources)
	return sources
}
