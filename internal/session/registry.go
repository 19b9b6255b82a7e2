// Package session keeps one form controller per browser session.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/MikhailRaia/shortener-form/internal/form"
	"github.com/rs/zerolog/log"
)

type entry struct {
	controller *form.Controller
	lastSeen   time.Time
}

// Registry maps session ids to controllers and forgets sessions idle for longer than ttl.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry
	factory func() *form.Controller
	ttl     time.Duration
	now     func() time.Time
}

func NewRegistry(factory func() *form.Controller, ttl time.Duration) *Registry {
	return &Registry{
		entries: make(map[string]*entry),
		factory: factory,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the controller of sessionID, creating an Idle one on first use.
func (r *Registry) Get(sessionID string) *form.Controller {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[sessionID]
	if !ok {
		e = &entry{controller: r.factory()}
		r.entries[sessionID] = e
		log.Debug().Str("session", sessionID).Msg("Session created")
	}
	e.lastSeen = r.now()

	return e.controller
}

// Evict drops sessions idle for longer than the ttl and reports how many were removed.
func (r *Registry) Evict() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	deadline := r.now().Add(-r.ttl)
	removed := 0
	for id, e := range r.entries {
		if e.lastSeen.Before(deadline) {
			delete(r.entries, id)
			removed++
		}
	}

	return removed
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.entries)
}

// Run evicts idle sessions every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := r.Evict(); removed > 0 {
				log.Info().Int("removed", removed).Int("active", r.Len()).Msg("Idle sessions evicted")
			}
		}
	}
}
