package route

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/orbwalk/internal/config"
	"github.com/zeusync/orbwalk/internal/core/geom"
	"github.com/zeusync/orbwalk/internal/core/paths"
)

func newPlanner(t *testing.T) (*Planner, paths.Network) {
	t.Helper()
	cfg := config.Default()
	network, err := paths.Generate(cfg.World.Radius, cfg.Paths.Segments, paths.CirclesFromConfig(cfg.Paths.Circles))
	require.NoError(t, err)
	return NewPlanner(paths.NewIndex(network), cfg.Route), network
}

func TestArcStepsPicksShorterDirection(t *testing.T) {
	tests := []struct {
		n, i, j int
		steps   int
		forward bool
	}{
		{60, 0, 0, 0, true},
		{60, 0, 10, 10, true},
		{60, 10, 0, 10, false},
		{60, 5, 55, 10, false},
		{60, 55, 5, 10, true},
		{60, 0, 30, 30, true}, // tie prefers forward
		{60, 30, 0, 30, true},
		{7, 6, 0, 1, true},
	}
	for _, tt := range tests {
		steps, forward := ArcSteps(tt.n, tt.i, tt.j)
		assert.Equal(t, tt.steps, steps, "n=%d i=%d j=%d", tt.n, tt.i, tt.j)
		assert.Equal(t, tt.forward, forward, "n=%d i=%d j=%d", tt.n, tt.i, tt.j)
	}
}

func TestArcLengthIsMinimalCircularDistance(t *testing.T) {
	_, network := newPlanner(t)
	path := network[0]
	n := len(path)

	for i := 0; i < n; i += 7 {
		for j := 0; j < n; j += 5 {
			d := ((j-i)%n + n) % n
			want := min(d, n-d)

			arc := Arc(path, i, j)
			require.Len(t, arc, want+1, "i=%d j=%d", i, j)
			assert.Equal(t, path[i], arc[0])
			assert.Equal(t, path[j], arc[len(arc)-1])
		}
	}
}

func TestArcWrapsBackward(t *testing.T) {
	_, network := newPlanner(t)
	path := network[0]

	arc := Arc(path, 2, 58)
	require.Len(t, arc, 5)
	assert.Equal(t, []mgl64.Vec3{path[2], path[1], path[0], path[59], path[58]}, arc)
}

func TestPlanSamePath(t *testing.T) {
	p, network := newPlanner(t)

	r := p.Plan(network[0][3], network[0][12])
	assert.False(t, r.Switched)
	require.Len(t, r.Waypoints, 10)
	assert.Equal(t, network[0][3], r.Waypoints[0])
	assert.Equal(t, network[0][12], r.Waypoints[9])

	for k := 1; k < len(r.Waypoints); k++ {
		assert.Greater(t, geom.AngularDistance(r.Waypoints[k-1], r.Waypoints[k]), config.Default().Route.DedupEpsilon)
	}
}

func TestPlanSamePointGivesSingleWaypoint(t *testing.T) {
	p, network := newPlanner(t)

	r := p.Plan(network[3][17], network[3][17].Mul(1.001))
	require.Len(t, r.Waypoints, 1)
	assert.Equal(t, network[3][17], r.Waypoints[0])
}

func TestPlanAcrossPaths(t *testing.T) {
	p, network := newPlanner(t)
	idx := p.Index()

	// equator to the x-axis meridian, near its top
	src := geom.Spherical(10, 0.1, 1.5707)
	dst := geom.Spherical(10, 1.5707, 0.2)
	srcSnap, dstSnap := idx.Closest(src), idx.Closest(dst)
	require.NotEqual(t, srcSnap.PathIndex, dstSnap.PathIndex)

	r := p.Plan(src, dst)
	require.NotEmpty(t, r.Waypoints)
	assert.True(t, r.Switched)
	assert.Equal(t, srcSnap.Point, r.Waypoints[0])
	assert.Equal(t, dstSnap.Point, r.Waypoints[len(r.Waypoints)-1])

	a, b := network[srcSnap.PathIndex], network[dstSnap.PathIndex]
	tolerance := 2 * 3.0 * geom.AngularDistance(a[0], a[1])
	found := false
	for _, w := range r.Waypoints[1 : len(r.Waypoints)-1] {
		if nearestOn(a, w) <= tolerance && nearestOn(b, w) <= tolerance {
			found = true
			break
		}
	}
	assert.True(t, found, "expected a waypoint near both roads")
}

func TestPlanNoAdjacentDuplicates(t *testing.T) {
	p, _ := newPlanner(t)
	eps := config.Default().Route.DedupEpsilon

	for k := 0; k < 40; k++ {
		src := geom.Spherical(10, float64(k)*0.41, 0.2+float64(k%13)*0.2)
		dst := geom.Spherical(10, float64(k)*1.13, 0.3+float64(k%11)*0.25)
		r := p.Plan(src, dst)
		require.NotEmpty(t, r.Waypoints)
		for i := 1; i < len(r.Waypoints); i++ {
			require.Greater(t, geom.AngularDistance(r.Waypoints[i-1], r.Waypoints[i]), eps)
		}
	}
}

func TestPlanOnEmptyNetwork(t *testing.T) {
	p := NewPlanner(paths.NewIndex(nil), config.RouteConfig{})
	r := p.Plan(mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 1, 0})
	assert.Empty(t, r.Waypoints)
}

func nearestOn(path paths.Path, q mgl64.Vec3) float64 {
	best := 10.0
	for _, p := range path {
		best = min(best, geom.AngularDistance(p, q))
	}
	return best
}
