package paths

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/zeusync/orbwalk/internal/core/geom"
)

// Closest identifies the snapped location of a query and where it sits in the
// network, so callers can extract arcs from it.
type Closest struct {
	Point      mgl64.Vec3
	PathIndex  int
	PointIndex int
	// Angle is the angular distance from the query to Point.
	Angle float64
}

// Index answers nearest-point queries by angular distance.
//
// The scan is exhaustive: the network is a handful of circles with tens of
// points each. Ties go to the first point encountered in path order.
type Index struct {
	network Network
	units   [][]mgl64.Vec3
}

// NewIndex precomputes unit directions for every network point.
func NewIndex(network Network) *Index {
	units := make([][]mgl64.Vec3, len(network))
	for i, path := range network {
		units[i] = make([]mgl64.Vec3, len(path))
		for j, p := range path {
			units[i][j] = geom.Direction(p)
		}
	}
	return &Index{network: network, units: units}
}

// Network returns the indexed network.
func (x *Index) Network() Network {
	return x.network
}

// Closest returns the network point nearest to q. On an empty network it
// returns the zero Closest with PathIndex -1.
func (x *Index) Closest(q mgl64.Vec3) Closest {
	best := Closest{PathIndex: -1, PointIndex: -1, Angle: math.Inf(1)}
	dir := geom.Direction(q)

	for i, units := range x.units {
		for j, u := range units {
			d := geom.UnitAngle(dir, u)
			if d < best.Angle {
				best = Closest{Point: x.network[i][j], PathIndex: i, PointIndex: j, Angle: d}
			}
		}
	}
	return best
}

// Distance is the angular distance from q to the nearest network point.
func (x *Index) Distance(q mgl64.Vec3) float64 {
	return x.Closest(q).Angle
}

// ClosestPair finds indices (i on path a, j on path b) minimizing angular
// distance, sampling each path every stride points. It approximates where two
// roads cross or pass closest.
func (x *Index) ClosestPair(a, b, samples int) (i, j int, angle float64) {
	ua, ub := x.units[a], x.units[b]
	strideA := max(1, len(ua)/samples)
	strideB := max(1, len(ub)/samples)

	angle = math.Inf(1)
	for p := 0; p < len(ua); p += strideA {
		for q := 0; q < len(ub); q += strideB {
			if d := geom.UnitAngle(ua[p], ub[q]); d < angle {
				i, j, angle = p, q, d
			}
		}
	}
	return i, j, angle
}
