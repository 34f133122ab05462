package locomotion

import (
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/zeusync/orbwalk/internal/core/events"
	"github.com/zeusync/orbwalk/internal/core/events/bus"
	"github.com/zeusync/orbwalk/internal/core/observability/log"
)

// Controller owns the locomotion snapshot. One goroutine drives Tick and
// TravelTo; any number may read through Snapshot. Transitions are published
// on the bus after the lock is released.
type Controller struct {
	mu   sync.RWMutex
	env  Env
	snap Snapshot

	bus bus.EventBus
	log log.Log
}

func NewController(env Env, eb bus.EventBus, logger log.Log) *Controller {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Controller{
		env:  env,
		snap: Initial(),
		bus:  eb,
		log:  logger.With(log.String("component", "locomotion")),
	}
}

// Tick runs one Step with the controller's state.
func (c *Controller) Tick(in Input, dt float64) (Snapshot, Outcome) {
	c.mu.Lock()
	next, out := Step(c.env, c.snap, in, dt)
	c.snap = next
	c.mu.Unlock()

	c.publish(out)
	return next, out
}

// TravelTo starts auto-walking toward target. It reports false when the
// controller is already walking to the same target.
func (c *Controller) TravelTo(target Target) bool {
	c.mu.Lock()
	next, outs := Begin(c.env, c.snap, target)
	c.snap = next
	c.mu.Unlock()

	c.publish(outs...)
	return len(outs) > 0
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

// Avatar is the avatar's current world-local position.
func (c *Controller) Avatar() mgl64.Vec3 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Avatar(c.snap.Orientation, c.env.Radius)
}

func (c *Controller) publish(outs ...Outcome) {
	evs := make([]bus.Event, 0, len(outs))
	for _, o := range outs {
		fields := []log.Field{
			log.String("target", o.Target.ID),
			log.Int("cursor", o.Cursor),
			log.Int("waypoints", o.Waypoints),
			log.Int("ticks", o.Ticks),
		}
		switch o.Kind {
		case OutcomeStarted:
			c.log.Info("route started", append(fields, log.Vec3("from", o.Position))...)
			evs = append(evs, bus.NewEvent(events.TypeRouteStarted, events.SourceLocomotion, events.RouteStarted{
				Target:      o.Target.ID,
				Destination: o.Target.Point,
				Waypoints:   o.Waypoints,
			}))
		case OutcomeArrived:
			c.log.Info("arrived", append(fields, log.Vec3("position", o.Position), log.Quat("orientation", o.Orientation))...)
			evs = append(evs, bus.NewEvent(events.TypeArrived, events.SourceLocomotion, events.Arrived{
				Target:   o.Target.ID,
				Position: o.Position,
				Ticks:    o.Ticks,
			}))
		case OutcomeCancelled:
			c.log.Debug("route cancelled", fields...)
			evs = append(evs, bus.NewEvent(events.TypeRouteCancelled, events.SourceLocomotion, events.RouteCancelled{
				Target: o.Target.ID,
				Cursor: o.Cursor,
			}))
		case OutcomeAborted:
			c.log.Warn("route aborted", fields...)
			evs = append(evs, bus.NewEvent(events.TypeRouteAborted, events.SourceLocomotion, events.RouteAborted{
				Target: o.Target.ID,
				Ticks:  o.Ticks,
			}))
		}
	}
	if len(evs) == 0 || c.bus == nil {
		return
	}
	if err := c.bus.PublishBatch(evs...); err != nil {
		c.log.Warn("event handler failed", log.Error(err))
	}
}
