// Package locomotion turns directional input and travel commands into the
// world orientation. The avatar never moves: it stays at the pole and the
// world rotates under it.
package locomotion

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/zeusync/orbwalk/internal/config"
	"github.com/zeusync/orbwalk/internal/core/geom"
	"github.com/zeusync/orbwalk/internal/core/paths"
	"github.com/zeusync/orbwalk/internal/core/route"
)

// Mode is the coarse locomotion state.
type Mode uint8

const (
	ModeManual Mode = iota
	ModeAutoWalking
)

func (m Mode) String() string {
	switch m {
	case ModeManual:
		return "manual"
	case ModeAutoWalking:
		return "auto_walking"
	default:
		return "unknown"
	}
}

// State is either Manual or *AutoWalking.
type State interface {
	Mode() Mode
	sealed()
}

// Manual is the initial state: orientation follows directional input.
type Manual struct{}

func (Manual) Mode() Mode { return ModeManual }
func (Manual) sealed()    {}

// AutoWalking follows a planned route toward Target. Values are treated as
// immutable; Step returns a fresh copy when anything changes.
type AutoWalking struct {
	Target      Target
	Waypoints   []mgl64.Vec3
	Cursor      int
	Destination paths.Closest
	// Ticks counts steps spent in this route.
	Ticks int
}

func (*AutoWalking) Mode() Mode { return ModeAutoWalking }
func (*AutoWalking) sealed()    {}

// Current returns the waypoint under the cursor.
func (a *AutoWalking) Current() mgl64.Vec3 {
	return a.Waypoints[a.Cursor]
}

// Last reports whether the cursor sits on the final waypoint.
func (a *AutoWalking) Last() bool {
	return a.Cursor >= len(a.Waypoints)-1
}

// Target is where a travel command leads. ID is an opaque label (a landmark
// id) carried into events; Point is the surface point to reach.
type Target struct {
	ID    string
	Point mgl64.Vec3
}

func (t Target) same(o Target) bool {
	if t.ID != "" || o.ID != "" {
		return t.ID == o.ID
	}
	return t.Point == o.Point
}

// Input is the per-frame directional vector.
type Input struct {
	Forward  bool `json:"forward"`
	Backward bool `json:"backward"`
	Left     bool `json:"left"`
	Right    bool `json:"right"`
}

// Any reports whether any direction is held.
func (in Input) Any() bool {
	return in.Forward || in.Backward || in.Left || in.Right
}

// Snapshot is everything the controller owns at the end of a tick.
type Snapshot struct {
	Orientation     mgl64.Quat
	State           State
	AngularVelocity mgl64.Vec3
}

// Initial is the resting snapshot: identity orientation, manual control.
func Initial() Snapshot {
	return Snapshot{Orientation: mgl64.QuatIdent(), State: Manual{}}
}

// Mode is shorthand for s.State.Mode(); a nil state reads as manual.
func (s Snapshot) Mode() Mode {
	if s.State == nil {
		return ModeManual
	}
	return s.State.Mode()
}

// OutcomeKind classifies what a Step or TravelTo did beyond moving.
type OutcomeKind uint8

const (
	OutcomeNone OutcomeKind = iota
	OutcomeStarted
	OutcomeArrived
	OutcomeCancelled
	OutcomeAborted
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeStarted:
		return "started"
	case OutcomeArrived:
		return "arrived"
	case OutcomeCancelled:
		return "cancelled"
	case OutcomeAborted:
		return "aborted"
	default:
		return "none"
	}
}

// Outcome reports a state transition.
type Outcome struct {
	Kind   OutcomeKind
	Target Target
	// Cursor and Waypoints describe the route at the time of the transition.
	Cursor    int
	Waypoints int
	Ticks     int
	Position  mgl64.Vec3
	// Orientation is the world rotation when the outcome was produced.
	Orientation mgl64.Quat
}

// Params are the tuning values the step function reads.
type Params struct {
	ManualSpeed   float64
	AutoWalkSpeed float64
	Reach         float64
	FinalReach    float64
	Stop          float64
	MaxTicks      int
	PitchAxis     mgl64.Vec3
	RollAxis      mgl64.Vec3
}

// ParamsFromConfig converts the locomotion config section.
func ParamsFromConfig(cfg config.LocomotionConfig) Params {
	return Params{
		ManualSpeed:   cfg.ManualSpeed,
		AutoWalkSpeed: cfg.AutoWalkSpeed,
		Reach:         cfg.ReachThreshold,
		FinalReach:    cfg.FinalReachThreshold,
		Stop:          cfg.StopThreshold,
		MaxTicks:      cfg.MaxAutoWalkTicks,
		PitchAxis:     mgl64.Vec3(cfg.PitchAxis),
		RollAxis:      mgl64.Vec3(cfg.RollAxis),
	}
}

// Env is the read-only context a step runs in.
type Env struct {
	Params  Params
	Radius  float64
	Planner *route.Planner
}

// Avatar returns the avatar's position in world-local coordinates: the pole
// carried back through the inverse of the world orientation.
func Avatar(orientation mgl64.Quat, radius float64) mgl64.Vec3 {
	return orientation.Inverse().Rotate(geom.Pole(radius))
}
