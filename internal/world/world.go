// Package world assembles the navigation engine from configuration and
// drives it one tick at a time.
package world

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/orbwalk/internal/config"
	"github.com/zeusync/orbwalk/internal/core/events/bus"
	"github.com/zeusync/orbwalk/internal/core/landmark"
	"github.com/zeusync/orbwalk/internal/core/locomotion"
	"github.com/zeusync/orbwalk/internal/core/observability/log"
	"github.com/zeusync/orbwalk/internal/core/paths"
	"github.com/zeusync/orbwalk/internal/core/placement"
	"github.com/zeusync/orbwalk/internal/core/route"
	"github.com/zeusync/orbwalk/internal/core/session"
)

// Frame is the per-tick output handed to rendering collaborators.
type Frame struct {
	Tick            uint64     `json:"tick"`
	Orientation     mgl64.Quat `json:"orientation"`
	AngularVelocity mgl64.Vec3 `json:"angular_velocity"`
	Avatar          mgl64.Vec3 `json:"avatar"`
	Mode            string     `json:"mode"`
	Target          string     `json:"target,omitempty"`
	Cursor          int        `json:"cursor"`
	Waypoints       int        `json:"waypoints"`
	// Arrived names the landmark reached during this tick, if any.
	Arrived string `json:"arrived,omitempty"`
}

// Static is the immutable world description consumed once by renderers.
type Static struct {
	Radius      float64             `json:"radius"`
	Paths       paths.Network       `json:"paths"`
	Entities    []placement.Entity  `json:"entities"`
	Landmarks   []landmark.Landmark `json:"landmarks"`
	Placement   []CategoryStats     `json:"placement"`
	Fingerprint string              `json:"fingerprint"`
}

// CategoryStats summarizes how one placement category filled.
type CategoryStats struct {
	Category  string `json:"category"`
	Requested int    `json:"requested"`
	Placed    int    `json:"placed"`
	Attempts  int    `json:"attempts"`
}

type World struct {
	cfg config.Config
	log log.Log
	bus bus.EventBus

	network     paths.Network
	registry    *landmark.Registry
	results     []placement.Result
	entities    []placement.Entity
	fingerprint uint64

	controller *locomotion.Controller
	session    *session.Store
	observer   bus.EventBusObserver
	tick       atomic.Uint64
}

// New validates cfg and builds every component. Configuration problems fail
// here, before the first tick.
func New(ctx context.Context, cfg config.Config, logger log.Log, eb bus.EventBus) (*World, error) {
	if logger == nil {
		logger = log.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	network, err := paths.Generate(cfg.World.Radius, cfg.Paths.Segments, paths.CirclesFromConfig(cfg.Paths.Circles))
	if err != nil {
		return nil, fmt.Errorf("generate paths: %w", err)
	}
	index := paths.NewIndex(network)
	planner := route.NewPlanner(index, cfg.Route)

	registry, err := landmark.NewRegistry(cfg.World.Radius, cfg.Landmarks, index)
	if err != nil {
		return nil, fmt.Errorf("landmarks: %w", err)
	}

	engine := placement.NewEngine(cfg.World.Radius, index, cfg.Placement, logger)
	results, err := engine.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("placement: %w", err)
	}
	entities := placement.Flatten(results)

	w := &World{
		cfg:         cfg,
		log:         logger.With(log.String("component", "world")),
		bus:         eb,
		network:     network,
		registry:    registry,
		results:     results,
		entities:    entities,
		fingerprint: placement.Fingerprint(entities),
	}

	w.controller = locomotion.NewController(locomotion.Env{
		Params:  locomotion.ParamsFromConfig(cfg.Locomotion),
		Radius:  cfg.World.Radius,
		Planner: planner,
	}, eb, logger)

	w.session, err = session.NewStore(eb, registry, cfg.Session, logger)
	if err != nil {
		return nil, err
	}

	w.observer = &busLogger{log: w.log}
	eb.AddObserver(w.observer)

	w.log.Info("world ready",
		log.Float64("radius", cfg.World.Radius),
		log.Int("paths", len(network)),
		log.Int("path_points", network.Points()),
		log.Int("categories", len(engine.Categories())),
		log.Int("entities", len(entities)),
		log.Int("landmarks", registry.Len()),
		log.String("fingerprint", w.FingerprintHex()),
	)
	return w, nil
}

// Tick advances locomotion by dt seconds and updates the session. Only one
// goroutine may call Tick or TravelTo at a time.
func (w *World) Tick(in locomotion.Input, dt float64) Frame {
	snap, out := w.controller.Tick(in, dt)
	avatar := locomotion.Avatar(snap.Orientation, w.cfg.World.Radius)
	w.session.Observe(avatar)

	f := Frame{
		Tick:            w.tick.Add(1),
		Orientation:     snap.Orientation,
		AngularVelocity: snap.AngularVelocity,
		Avatar:          avatar,
		Mode:            snap.Mode().String(),
	}
	if aw, ok := snap.State.(*locomotion.AutoWalking); ok {
		f.Target = aw.Target.ID
		f.Cursor = aw.Cursor
		f.Waypoints = len(aw.Waypoints)
	}
	if out.Kind == locomotion.OutcomeArrived {
		f.Arrived = out.Target.ID
	}
	return f
}

// TravelTo starts auto-walking to the landmark with the given id.
func (w *World) TravelTo(id string) error {
	lm, err := w.registry.Resolve(id)
	if err != nil {
		return err
	}
	w.controller.TravelTo(locomotion.Target{ID: lm.ID, Point: lm.Position})
	return nil
}

// Close detaches the world from the bus.
func (w *World) Close() error {
	w.bus.RemoveObserver(w.observer)
	return w.session.Close()
}

func (w *World) Network() paths.Network         { return w.network }
func (w *World) Placements() []placement.Result { return w.results }
func (w *World) Entities() []placement.Entity   { return w.entities }
func (w *World) Landmarks() []landmark.Landmark { return w.registry.All() }
func (w *World) Session() *session.Store        { return w.session }
func (w *World) Radius() float64                { return w.cfg.World.Radius }
func (w *World) Fingerprint() uint64            { return w.fingerprint }

func (w *World) FingerprintHex() string {
	return fmt.Sprintf("%016x", w.fingerprint)
}

// Static describes the immutable parts of the world.
func (w *World) Static() Static {
	results := w.Placements()
	stats := make([]CategoryStats, len(results))
	for i, r := range results {
		stats[i] = CategoryStats{Category: r.Category, Requested: r.Requested, Placed: r.Placed, Attempts: r.Attempts}
	}
	return Static{
		Radius:      w.cfg.World.Radius,
		Paths:       w.network,
		Entities:    w.entities,
		Landmarks:   w.registry.All(),
		Placement:   stats,
		Fingerprint: w.FingerprintHex(),
	}
}
