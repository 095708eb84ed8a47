package server

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/mutuals/pkg/errors"
	"github.com/matzehuels/mutuals/pkg/graph"
	"github.com/matzehuels/mutuals/pkg/selection"
)

// DefaultViewTTL is how long an untouched view is kept.
const DefaultViewTTL = 30 * time.Minute

// View is one viewer's selection. Events on a view are applied one at a time.
type View struct {
	ID string

	mu      sync.Mutex
	engine  *selection.Engine
	touched time.Time
}

// Handle applies ev under the view lock.
func (v *View) Handle(ctx context.Context, ev selection.Event) (selection.Output, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.touched = time.Now()
	return v.engine.Handle(ctx, ev)
}

// Current returns the view's last output.
func (v *View) Current() selection.Output {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.touched = time.Now()
	return v.engine.Current()
}

func (v *View) reset(m *graph.Model) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.engine.Reset(m)
}

func (v *View) idleSince(now time.Time) time.Duration {
	v.mu.Lock()
	defer v.mu.Unlock()
	return now.Sub(v.touched)
}

// Views is the set of live views and the model they run on. Creating a view
// and swapping the model take the same lock, so every view ends up on the
// model that was current after both happened.
type Views struct {
	mu    sync.RWMutex
	views map[string]*View
	model *graph.Model
	ttl   time.Duration
}

// NewViews creates an empty store. A ttl of zero uses DefaultViewTTL.
func NewViews(ttl time.Duration) *Views {
	if ttl <= 0 {
		ttl = DefaultViewTTL
	}
	return &Views{views: make(map[string]*View), ttl: ttl}
}

// Create starts a new Idle view on the current model.
func (s *Views) Create() (*View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.model == nil {
		return nil, errors.New(errors.ErrCodeInternal, "model not loaded")
	}
	v := &View{
		ID:      uuid.NewString(),
		engine:  selection.NewEngine(s.model),
		touched: time.Now(),
	}
	s.views[v.ID] = v
	return v, nil
}

// Model returns the model new views start on, or nil before the first load.
func (s *Views) Model() *graph.Model {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model
}

// Get returns the view with the given id.
func (s *Views) Get(id string) (*View, error) {
	s.mu.RLock()
	v, ok := s.views[id]
	s.mu.RUnlock()
	if !ok {
		return nil, errors.New(errors.ErrCodeViewNotFound, "view %q not found", id)
	}
	return v, nil
}

// Delete drops a view.
func (s *Views) Delete(id string) {
	s.mu.Lock()
	delete(s.views, id)
	s.mu.Unlock()
}

// Len returns the number of live views.
func (s *Views) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.views)
}

// SetModel makes m the current model and moves every live view to it,
// back in Idle.
func (s *Views) SetModel(m *graph.Model) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.model = m
	for _, v := range s.views {
		v.reset(m)
	}
}

// Sweep deletes views idle longer than the ttl and returns how many went.
func (s *Views) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, v := range s.views {
		if v.idleSince(now) > s.ttl {
			delete(s.views, id)
			n++
		}
	}
	return n
}
