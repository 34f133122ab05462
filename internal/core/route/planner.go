// Package route plans walks along the road network between two surface points.
//
// Planning is a heuristic for a small fixed set of intersecting circles: at
// most one switch between roads is made, at the sampled closest approach of the
// two roads. Larger networks need a real graph search over road crossings;
// that would change observable routes, so it is not attempted here.
package route

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/zeusync/orbwalk/internal/config"
	"github.com/zeusync/orbwalk/internal/core/geom"
	"github.com/zeusync/orbwalk/internal/core/paths"
)

// Route is an ordered waypoint list plus the snaps it was built from.
type Route struct {
	Waypoints   []mgl64.Vec3
	Source      paths.Closest
	Destination paths.Closest
	// Switched is true when the route changes roads.
	Switched bool
}

// Len returns the number of waypoints.
func (r Route) Len() int { return len(r.Waypoints) }

type Planner struct {
	index   *paths.Index
	samples int
	dedup   float64
}

func NewPlanner(index *paths.Index, cfg config.RouteConfig) *Planner {
	samples := cfg.CoarseSamples
	if samples < 1 {
		samples = 20
	}
	return &Planner{index: index, samples: samples, dedup: cfg.DedupEpsilon}
}

// Index exposes the spatial index the planner snaps with.
func (p *Planner) Index() *paths.Index {
	return p.index
}

// Plan snaps both ends onto the network and builds the walk between them.
func (p *Planner) Plan(source, destination mgl64.Vec3) Route {
	return p.Between(p.index.Closest(source), p.index.Closest(destination))
}

// Between builds the walk between two existing snaps. The result starts at
// src.Point and ends at dst.Point, and holds a single waypoint when both snap
// to the same place. It is empty only for an empty network.
func (p *Planner) Between(src, dst paths.Closest) Route {
	r := Route{Source: src, Destination: dst}
	network := p.index.Network()
	if src.PathIndex < 0 || dst.PathIndex < 0 || len(network) == 0 {
		return r
	}

	var raw []mgl64.Vec3
	if src.PathIndex == dst.PathIndex {
		raw = Arc(network[src.PathIndex], src.PointIndex, dst.PointIndex)
	} else {
		a, b := network[src.PathIndex], network[dst.PathIndex]
		ia, ib, _ := p.index.ClosestPair(src.PathIndex, dst.PathIndex, p.samples)
		raw = append(Arc(a, src.PointIndex, ia), Arc(b, ib, dst.PointIndex)...)
		r.Switched = true
	}

	r.Waypoints = dedupe(raw, p.dedup)
	return r
}

// ArcSteps returns how many index steps separate i and j on a circular path of
// n points along the shorter direction, and whether that direction is forward
// (increasing index). Equal arcs prefer forward.
func ArcSteps(n, i, j int) (steps int, forward bool) {
	if n <= 0 {
		return 0, true
	}
	fwd := ((j-i)%n + n) % n
	bwd := ((i-j)%n + n) % n
	if fwd <= bwd {
		return fwd, true
	}
	return bwd, false
}

// Arc returns every point from index i to index j inclusive along the shorter
// direction around the circular path.
func Arc(path paths.Path, i, j int) []mgl64.Vec3 {
	n := len(path)
	if n == 0 {
		return nil
	}
	steps, forward := ArcSteps(n, i, j)
	step := 1
	if !forward {
		step = n - 1
	}

	out := make([]mgl64.Vec3, 0, steps+1)
	for k, idx := 0, i; k <= steps; k, idx = k+1, (idx+step)%n {
		out = append(out, path[idx])
	}
	return out
}

// dedupe drops waypoints closer than eps radians to the previous kept one,
// then pins the tail to the last input point.
func dedupe(points []mgl64.Vec3, eps float64) []mgl64.Vec3 {
	if len(points) == 0 {
		return nil
	}
	out := make([]mgl64.Vec3, 1, len(points))
	out[0] = points[0]
	for _, w := range points[1:] {
		if geom.AngularDistance(out[len(out)-1], w) <= eps {
			continue
		}
		out = append(out, w)
	}
	out[len(out)-1] = points[len(points)-1]
	return out
}
