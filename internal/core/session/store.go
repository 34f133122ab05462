// Package session holds the game state shared by the UI collaborators: which
// landmark is active, which ones were visited and whether dialogue is open.
//
// A Store is constructed explicitly and handed to every reader and writer.
// It learns about navigation from the event bus and about proximity from
// Observe, which the tick loop calls with the avatar position.
package session

import (
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/zeusync/orbwalk/internal/config"
	"github.com/zeusync/orbwalk/internal/core/events"
	"github.com/zeusync/orbwalk/internal/core/events/bus"
	"github.com/zeusync/orbwalk/internal/core/landmark"
	"github.com/zeusync/orbwalk/internal/core/observability/log"
)

// Snapshot is a copy of the session state.
type Snapshot struct {
	Active       string   `json:"active,omitempty"`
	Visited      []string `json:"visited"`
	DialogueOpen bool     `json:"dialogue_open"`
	AutoWalking  bool     `json:"auto_walking"`
}

type Store struct {
	mu       sync.RWMutex
	active   string
	visited  []string
	seen     map[string]struct{}
	dialogue bool
	walking  bool

	registry *landmark.Registry
	enter    float64
	exit     float64
	subs     []bus.Subscription
	log      log.Log
}

func NewStore(eb bus.EventBus, registry *landmark.Registry, cfg config.SessionConfig, logger log.Log) (*Store, error) {
	if logger == nil {
		logger = log.NewNop()
	}
	s := &Store{
		seen:     make(map[string]struct{}),
		registry: registry,
		enter:    cfg.InteractionAngle,
		exit:     cfg.ExitAngle,
		log:      logger.With(log.String("component", "session")),
	}

	handlers := map[string]bus.EventHandler{
		events.TypeRouteStarted:   s.onRouteStarted,
		events.TypeArrived:        s.onArrived,
		events.TypeRouteCancelled: s.onRouteEnded,
		events.TypeRouteAborted:   s.onRouteEnded,
	}
	for _, typ := range []string{events.TypeRouteStarted, events.TypeArrived, events.TypeRouteCancelled, events.TypeRouteAborted} {
		sub, err := eb.Subscribe(typ, handlers[typ])
		if err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("session: subscribe %s: %w", typ, err)
		}
		s.subs = append(s.subs, sub)
	}
	return s, nil
}

// Close detaches the store from the bus.
func (s *Store) Close() error {
	for _, sub := range s.subs {
		_ = sub.Cancel()
	}
	s.subs = nil
	return nil
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Active:       s.active,
		Visited:      append([]string{}, s.visited...),
		DialogueOpen: s.dialogue,
		AutoWalking:  s.walking,
	}
}

// SetDialogueOpen lets the UI close or reopen the dialogue for the active
// landmark. Opening without an active landmark is ignored.
func (s *Store) SetDialogueOpen(open bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if open && s.active == "" {
		return
	}
	s.dialogue = open
}

// Visited reports whether the landmark was reached at least once.
func (s *Store) Visited(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.seen[id]
	return ok
}

// Observe applies proximity with hysteresis. Nothing changes while
// auto-walking; arrival is reported by the bus instead. A landmark becomes
// active within the interaction angle and is released beyond the exit angle.
// It reports whether the snapshot changed.
func (s *Store) Observe(avatar mgl64.Vec3) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.walking || s.registry == nil {
		return false
	}

	if s.active != "" {
		lm, err := s.registry.Resolve(s.active)
		if err == nil && lm.Proximity(avatar) <= s.exit {
			return false
		}
		s.log.Debug("left landmark", log.String("landmark", s.active))
		s.active = ""
		s.dialogue = false
		return true
	}

	best, angle, found := s.registry.Nearest(avatar)
	if !found || angle > s.enter {
		return false
	}
	s.log.Debug("entered landmark", log.String("landmark", best.ID), log.Float64("angle", angle))
	s.activateLocked(best.ID)
	return true
}

func (s *Store) onRouteStarted(e bus.Event) error {
	p, ok := e.Data().(events.RouteStarted)
	if !ok {
		return unexpected(e)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.walking = true
	s.active = p.Target
	s.dialogue = false
	return nil
}

func (s *Store) onArrived(e bus.Event) error {
	p, ok := e.Data().(events.Arrived)
	if !ok {
		return unexpected(e)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.walking = false
	s.activateLocked(p.Target)
	s.log.Info("landmark reached", log.String("landmark", p.Target), log.Int("visited", len(s.visited)))
	return nil
}

func (s *Store) onRouteEnded(bus.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.walking = false
	s.active = ""
	s.dialogue = false
	return nil
}

func (s *Store) activateLocked(id string) {
	s.active = id
	s.dialogue = id != ""
	if id == "" {
		return
	}
	if _, ok := s.seen[id]; !ok {
		s.seen[id] = struct{}{}
		s.visited = append(s.visited, id)
	}
}

func unexpected(e bus.Event) error {
	return fmt.Errorf("session: unexpected %s payload %T", e.Type(), e.Data())
}
