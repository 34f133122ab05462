// Package landmark resolves travel targets by id.
package landmark

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/zeusync/orbwalk/internal/config"
	"github.com/zeusync/orbwalk/internal/core/geom"
	"github.com/zeusync/orbwalk/internal/core/paths"
)

var ErrUnknownLandmark = errors.New("unknown landmark")

// Landmark is a named point on the sphere that travel commands can target.
type Landmark struct {
	ID       string     `json:"id"`
	Role     string     `json:"role"`
	Name     string     `json:"name"`
	Position mgl64.Vec3 `json:"position"`
	// Snap is the nearest road point, where auto-walk stops.
	Snap paths.Closest `json:"-"`
}

// Registry is an immutable, ordered set of landmarks.
type Registry struct {
	list []Landmark
	byID map[string]int
}

// NewRegistry places every configured landmark on a sphere of the given
// radius and snaps it onto the road network once.
func NewRegistry(radius float64, cfgs []config.LandmarkConfig, index *paths.Index) (*Registry, error) {
	r := &Registry{
		list: make([]Landmark, 0, len(cfgs)),
		byID: make(map[string]int, len(cfgs)),
	}
	for i, c := range cfgs {
		if c.ID == "" {
			return nil, config.Invalid(fmt.Sprintf("landmarks[%d].id", i), "must not be empty")
		}
		if _, dup := r.byID[c.ID]; dup {
			return nil, config.Invalid(fmt.Sprintf("landmarks[%d].id", i), "duplicate id %q", c.ID)
		}
		pos := geom.Spherical(radius, c.Theta, c.Phi)
		r.byID[c.ID] = len(r.list)
		r.list = append(r.list, Landmark{
			ID:       c.ID,
			Role:     c.Role,
			Name:     c.Name,
			Position: pos,
			Snap:     index.Closest(pos),
		})
	}
	return r, nil
}

// Resolve returns the landmark with the given id.
func (r *Registry) Resolve(id string) (Landmark, error) {
	i, ok := r.byID[id]
	if !ok {
		return Landmark{}, fmt.Errorf("%w: %q", ErrUnknownLandmark, id)
	}
	return r.list[i], nil
}

// All returns the landmarks in configuration order.
func (r *Registry) All() []Landmark {
	return append([]Landmark(nil), r.list...)
}

func (r *Registry) Len() int {
	return len(r.list)
}

// Proximity is the angle from p to whichever is nearer: the landmark itself
// or its road snap.
func (l Landmark) Proximity(p mgl64.Vec3) float64 {
	return min(geom.AngularDistance(p, l.Position), geom.AngularDistance(p, l.Snap.Point))
}

// Nearest returns the landmark with the smallest Proximity to p and that
// angle. ok is false when the registry is empty.
func (r *Registry) Nearest(p mgl64.Vec3) (lm Landmark, angle float64, ok bool) {
	for i, l := range r.list {
		d := l.Proximity(p)
		if i == 0 || d < angle {
			lm, angle, ok = l, d, true
		}
	}
	return lm, angle, ok
}
