package locomotion

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/zeusync/orbwalk/internal/core/geom"
)

// Step advances the snapshot by one tick of dt seconds. It is a pure function:
// s is not modified and the same inputs always give the same result.
//
// Directional input while auto-walking cancels the route in the same tick and
// the input is then applied as a manual move. The returned orientation is
// always finite and unit length; a step that would break that keeps the
// previous orientation.
func Step(env Env, s Snapshot, in Input, dt float64) (Snapshot, Outcome) {
	if !(dt > 0) || math.IsInf(dt, 0) {
		dt = 0
	}
	prev := geom.Renormalize(s.Orientation)
	state := s.State
	if state == nil {
		state = Manual{}
	}

	var out Outcome
	if aw, ok := state.(*AutoWalking); ok && in.Any() {
		out = finish(OutcomeCancelled, aw, prev, env.Radius)
		state = Manual{}
	}

	var next mgl64.Quat
	switch st := state.(type) {
	case *AutoWalking:
		next, state, out = autoWalk(env, prev, st, dt)
	default:
		next = manual(env.Params, prev, in, dt)
	}

	if !geom.FiniteQuat(next) || next.Len() < geom.Epsilon {
		next = prev
	}
	next = geom.Renormalize(next)

	if out.Kind != OutcomeNone {
		out.Position = Avatar(next, env.Radius)
	}
	return Snapshot{
		Orientation:     next,
		State:           state,
		AngularVelocity: geom.AngularVelocity(prev, next, dt),
	}, out
}

// Begin plans a route from the avatar's current position to target and enters
// AutoWalking. Walking to the same target again is a no-op. A route to a
// different target is replaced and reported as cancelled before the start.
func Begin(env Env, s Snapshot, target Target) (Snapshot, []Outcome) {
	current, walking := s.State.(*AutoWalking)
	if walking && current.Target.same(target) {
		return s, nil
	}

	q := geom.Renormalize(s.Orientation)
	pos := Avatar(q, env.Radius)

	var outs []Outcome
	if walking {
		outs = append(outs, finish(OutcomeCancelled, current, q, env.Radius))
	}

	index := env.Planner.Index()
	dest := index.Closest(target.Point)
	r := env.Planner.Between(index.Closest(pos), dest)

	next := Snapshot{Orientation: q, AngularVelocity: s.AngularVelocity}
	if r.Len() == 0 {
		next.State = Manual{}
		return next, append(outs, Outcome{Kind: OutcomeAborted, Target: target, Position: pos})
	}

	next.State = &AutoWalking{
		Target:      target,
		Waypoints:   r.Waypoints,
		Destination: dest,
	}
	return next, append(outs, Outcome{
		Kind:      OutcomeStarted,
		Target:    target,
		Waypoints: r.Len(),
		Position:  pos,
	})
}

func manual(p Params, q mgl64.Quat, in Input, dt float64) mgl64.Quat {
	step := p.ManualSpeed * dt
	var pitch, roll float64
	if in.Forward {
		pitch += step
	}
	if in.Backward {
		pitch -= step
	}
	if in.Left {
		roll -= step
	}
	if in.Right {
		roll += step
	}
	if pitch == 0 && roll == 0 {
		return q
	}
	inc := geom.AxisAngle(p.PitchAxis, pitch).Mul(geom.AxisAngle(p.RollAxis, roll))
	return inc.Mul(q)
}

func autoWalk(env Env, q mgl64.Quat, aw *AutoWalking, dt float64) (mgl64.Quat, State, Outcome) {
	p := env.Params
	w := *aw
	w.Ticks++

	if p.MaxTicks > 0 && w.Ticks > p.MaxTicks || len(w.Waypoints) == 0 {
		return q, Manual{}, finish(OutcomeAborted, &w, q, env.Radius)
	}

	pos := Avatar(q, env.Radius)
	if geom.AngularDistance(pos, w.Destination.Point) <= p.Stop {
		return q, Manual{}, finish(OutcomeArrived, &w, q, env.Radius)
	}
	if !w.Last() && geom.AngularDistance(pos, w.Current()) <= p.Reach {
		w.Cursor++
	}

	// carry the waypoint, as currently seen, onto the pole
	target := geom.Between(q.Rotate(w.Current()), geom.Up).Mul(q)
	next, _ := geom.RotateToward(q, target, p.AutoWalkSpeed*dt)

	// on the final leg a looser reach also counts as arrival
	if w.Last() && geom.AngularDistance(Avatar(next, env.Radius), w.Destination.Point) <= p.FinalReach {
		return next, Manual{}, finish(OutcomeArrived, &w, next, env.Radius)
	}
	return next, &w, Outcome{}
}

func finish(kind OutcomeKind, aw *AutoWalking, q mgl64.Quat, radius float64) Outcome {
	return Outcome{
		Kind:        kind,
		Target:      aw.Target,
		Cursor:      aw.Cursor,
		Waypoints:   len(aw.Waypoints),
		Ticks:       aw.Ticks,
		Position:    Avatar(q, radius),
		Orientation: q,
	}
}
