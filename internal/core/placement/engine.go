// Package placement scatters decorative entities over the sphere, keeping
// them clear of the roads. Output is a pure function of the configuration.
package placement

import (
	"context"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/sync/errgroup"

	"github.com/zeusync/orbwalk/internal/config"
	"github.com/zeusync/orbwalk/internal/core/geom"
	"github.com/zeusync/orbwalk/internal/core/observability/log"
	"github.com/zeusync/orbwalk/internal/core/paths"
	"github.com/zeusync/orbwalk/internal/core/rng"
)

// Entity is one placed decoration in world-local coordinates.
type Entity struct {
	Category    string     `json:"category"`
	Position    mgl64.Vec3 `json:"position"`
	Orientation mgl64.Quat `json:"orientation"`
	Scale       float32    `json:"scale"`
}

// Result is the outcome of one category run.
type Result struct {
	Category  string
	Requested int
	Placed    int
	Attempts  int
	Entities  []Entity
}

// Shortfall is how many entities the attempt budget could not place.
func (r Result) Shortfall() int {
	return r.Requested - r.Placed
}

// Category is a resolved category descriptor.
type Category struct {
	Name     string
	Seed     uint32
	Count    int
	MinScale float64
	MaxScale float64
	Jitter   float64
	// Clearance is the minimum arc length, in world units, between an entity
	// and any road point.
	Clearance  float64
	Correction mgl64.Quat
}

// CategoriesFromConfig resolves seeds and corrective rotations.
func CategoriesFromConfig(cs []config.CategoryConfig) []Category {
	out := make([]Category, len(cs))
	for i, c := range cs {
		out[i] = Category{
			Name:       c.Name,
			Seed:       rng.SeedFor(c.Name, c.Seed),
			Count:      c.Count,
			MinScale:   c.MinScale,
			MaxScale:   c.MaxScale,
			Jitter:     c.Jitter,
			Clearance:  c.Clearance,
			Correction: geom.AxisAngle(mgl64.Vec3(c.Correction.Axis), c.Correction.Angle),
		}
	}
	return out
}

type Engine struct {
	radius        float64
	index         *paths.Index
	categories    []Category
	attemptFactor int
	log           log.Log
}

func NewEngine(radius float64, index *paths.Index, cfg config.PlacementConfig, logger log.Log) *Engine {
	if logger == nil {
		logger = log.NewNop()
	}
	factor := cfg.AttemptFactor
	if factor < 1 {
		factor = 5
	}
	return &Engine{
		radius:        radius,
		index:         index,
		categories:    CategoriesFromConfig(cfg.Categories),
		attemptFactor: factor,
		log:           logger.With(log.String("component", "placement")),
	}
}

// Categories returns the resolved category list.
func (e *Engine) Categories() []Category {
	return e.categories
}

// Run places every category. Categories are generated concurrently, each with
// its own generator, and results keep configuration order. A shortfall is
// logged and reported in the Result; only context cancellation fails a run.
func (e *Engine) Run(ctx context.Context) ([]Result, error) {
	results := make([]Result, len(e.categories))
	g, ctx := errgroup.WithContext(ctx)

	for i, c := range e.categories {
		i, c := i, c
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = e.Place(c)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, r := range results {
		fields := []log.Field{
			log.String("category", r.Category),
			log.Int("requested", r.Requested),
			log.Int("placed", r.Placed),
			log.Int("attempts", r.Attempts),
		}
		if r.Shortfall() > 0 {
			e.log.Warn("placement shortfall", append(fields, log.Int("shortfall", r.Shortfall()))...)
			continue
		}
		e.log.Debug("category placed", fields...)
	}
	return results, nil
}

// Place runs one category to completion. Every attempt draws, in order:
// theta, u, then scale and jitter if the candidate is accepted.
func (e *Engine) Place(c Category) Result {
	res := Result{Category: c.Name, Requested: max(c.Count, 0)}
	if res.Requested == 0 {
		return res
	}

	r := rng.New(c.Seed)
	clearance := c.Clearance / e.radius
	budget := e.attemptFactor * res.Requested
	res.Entities = make([]Entity, 0, res.Requested)

	for res.Attempts < budget && len(res.Entities) < res.Requested {
		res.Attempts++

		theta := r.Angle()
		u := r.Float64()
		phi := math.Acos(mgl64.Clamp(float64(2*u)-1, -1, 1))
		p := geom.Spherical(e.radius, theta, phi)

		if e.index.Distance(p) < clearance {
			continue
		}

		scale := r.Range(c.MinScale, c.MaxScale)
		scale *= 1 + float64(c.Jitter*(float64(2*r.Float64())-1))

		res.Entities = append(res.Entities, Entity{
			Category:    c.Name,
			Position:    p,
			Orientation: geom.Mul(geom.Between(geom.Up, p), c.Correction),
			Scale:       float32(scale),
		})
	}

	res.Placed = len(res.Entities)
	return res
}

// Flatten concatenates the entities of every result in order.
func Flatten(results []Result) []Entity {
	n := 0
	for _, r := range results {
		n += len(r.Entities)
	}
	out := make([]Entity, 0, n)
	for _, r := range results {
		out = append(out, r.Entities...)
	}
	return out
}
