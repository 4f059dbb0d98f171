package registration

import (
	"context"
	"sync"
	"time"

	"github.com/stegportal/portal/internal/logger"
)

// Factory builds the controller for a new visitor.
type Factory func(visitorID string) *Controller

type entry struct {
	controller *Controller
	lastUsed   time.Time
}

// Registry keeps one open form per visitor. Forms nobody touched for idleTTL
// are dropped by Sweep, except those with a request in flight.
type Registry struct {
	newController Factory
	idleTTL       time.Duration
	now           func() time.Time

	mu    sync.Mutex
	forms map[string]*entry
}

func NewRegistry(newController Factory, idleTTL time.Duration) *Registry {
	return &Registry{
		newController: newController,
		idleTTL:       idleTTL,
		now:           time.Now,
		forms:         make(map[string]*entry),
	}
}

// Get returns the visitor's form, creating it on first use.
func (r *Registry) Get(visitorID string) *Controller {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.forms[visitorID]
	if !ok {
		e = &entry{controller: r.newController(visitorID)}
		r.forms[visitorID] = e
	}
	e.lastUsed = r.now()
	return e.controller
}

// Peek returns the visitor's form without creating or touching it.
func (r *Registry) Peek(visitorID string) (*Controller, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.forms[visitorID]
	if !ok {
		return nil, false
	}
	return e.controller, true
}

func (r *Registry) Drop(visitorID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.forms, visitorID)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.forms)
}

// Sweep removes idle forms and reports how many were removed.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-r.idleTTL)
	removed := 0
	for id, e := range r.forms {
		if e.lastUsed.After(cutoff) || e.controller.State() == Submitting {
			continue
		}
		delete(r.forms, id)
		removed++
	}
	return removed
}

// StartJanitor sweeps every interval until ctx is done. The returned channel
// is closed once the goroutine has exited.
func (r *Registry) StartJanitor(ctx context.Context, interval time.Duration) <-chan struct{} {
	done := make(chan struct{})
	ticker := time.NewTicker(interval)
	logger.Log.Info("started form registry janitor", "interval", interval, "idle_ttl", r.idleTTL)
	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := r.Sweep(); n > 0 {
					logger.Log.Debug("dropped idle forms", "count", n)
				}
			}
		}
	}()
	return done
}
