// Package paths generates the fixed road network on the sphere and answers
// nearest-point queries against it.
package paths

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/zeusync/orbwalk/internal/config"
)

// Axis names the coordinate axis acting as a circle's pole.
type Axis string

const (
	AxisX Axis = "x"
	AxisY Axis = "y"
	AxisZ Axis = "z"
)

// Circle describes one road. Latitude is the offset in radians from the great
// circle perpendicular to Axis; zero gives a great circle.
type Circle struct {
	Axis     Axis
	Latitude float64
}

// Path is a closed road sampled as evenly spaced points. The last point is
// implicitly adjacent to the first.
type Path []mgl64.Vec3

// Network is the immutable set of roads generated at world start.
type Network []Path

// CirclesFromConfig converts config descriptors.
func CirclesFromConfig(cs []config.CircleConfig) []Circle {
	out := make([]Circle, len(cs))
	for i, c := range cs {
		out[i] = Circle{Axis: Axis(c.Axis), Latitude: c.Latitude}
	}
	return out
}

// Generate samples every circle at segments evenly spaced angles. It is a pure
// function of its inputs.
func Generate(radius float64, segments int, circles []Circle) (Network, error) {
	if !(radius > 0) || math.IsInf(radius, 0) {
		return nil, config.Invalid("world.radius", "must be a positive finite number, got %v", radius)
	}
	if segments < 3 {
		return nil, config.Invalid("paths.segments", "need at least 3 samples per circle, got %d", segments)
	}
	if len(circles) == 0 {
		return nil, config.Invalid("paths.circles", "at least one circle descriptor is required")
	}

	network := make(Network, 0, len(circles))
	for i, c := range circles {
		path, err := sampleCircle(radius, segments, c)
		if err != nil {
			return nil, config.Invalid("paths.circles", "circle %d: %v", i, err)
		}
		network = append(network, path)
	}
	return network, nil
}

func sampleCircle(radius float64, segments int, c Circle) (Path, error) {
	ring := math.Cos(c.Latitude) * radius
	height := math.Sin(c.Latitude) * radius

	path := make(Path, segments)
	for i := 0; i < segments; i++ {
		theta := float64(i) / float64(segments) * 2 * math.Pi
		sin, cos := math.Sincos(theta)
		a, b := cos*ring, sin*ring

		switch c.Axis {
		case AxisY:
			path[i] = mgl64.Vec3{a, height, b}
		case AxisX:
			path[i] = mgl64.Vec3{height, a, b}
		case AxisZ:
			path[i] = mgl64.Vec3{a, b, height}
		default:
			return nil, errUnknownAxis(c.Axis)
		}
	}
	return path, nil
}

type errUnknownAxis Axis

func (e errUnknownAxis) Error() string {
	return "unknown axis " + string(e)
}

// Points returns the total number of samples across the network.
func (n Network) Points() int {
	total := 0
	for _, p := range n {
		total += len(p)
	}
	return total
}
