package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	pkgerrors "github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Load reads a YAML file, overlays it onto Default and validates the result.
// An empty path yields the validated defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		c := Default()
		if err := c.Validate(); err != nil {
			return nil, err
		}
		return &c, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "open config %s", path)
	}
	defer f.Close()

	c, err := LoadYAML(f)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "load config %s", path)
	}
	return c, nil
}

// LoadYAML decodes YAML from r on top of Default. Unknown keys are rejected.
func LoadYAML(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	c := Default()
	if len(bytes.TrimSpace(data)) > 0 {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err = dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
	}

	if err = c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate reports every degenerate field joined into one error. Each part
// wraps ErrInvalidConfig.
func (c *Config) Validate() error {
	var problems []error
	add := func(e *Error) { problems = append(problems, e) }

	if !(c.World.Radius > 0) || math.IsInf(c.World.Radius, 0) {
		add(Invalid("world.radius", "must be a positive finite number, got %v", c.World.Radius))
	}

	if c.Paths.Segments < 3 {
		add(Invalid("paths.segments", "need at least 3 samples per circle, got %d", c.Paths.Segments))
	}
	if len(c.Paths.Circles) == 0 {
		add(Invalid("paths.circles", "at least one circle descriptor is required"))
	}
	for i, circle := range c.Paths.Circles {
		switch circle.Axis {
		case "x", "y", "z":
		default:
			add(Invalid(indexed("paths.circles", i, "axis"), "unknown axis %q", circle.Axis))
		}
		if math.Abs(circle.Latitude) >= math.Pi/2 {
			add(Invalid(indexed("paths.circles", i, "latitude"), "|latitude| must be below pi/2, got %v", circle.Latitude))
		}
	}

	if c.Route.CoarseSamples < 1 {
		add(Invalid("route.coarse_samples", "must be positive, got %d", c.Route.CoarseSamples))
	}
	if c.Route.DedupEpsilon < 0 {
		add(Invalid("route.dedup_epsilon", "must not be negative, got %v", c.Route.DedupEpsilon))
	}

	l := c.Locomotion
	for _, p := range []struct {
		field string
		value float64
	}{
		{"locomotion.manual_speed", l.ManualSpeed},
		{"locomotion.auto_walk_speed", l.AutoWalkSpeed},
		{"locomotion.reach_threshold", l.ReachThreshold},
		{"locomotion.final_reach_threshold", l.FinalReachThreshold},
		{"locomotion.stop_threshold", l.StopThreshold},
	} {
		if !(p.value > 0) {
			add(Invalid(p.field, "must be positive, got %v", p.value))
		}
	}
	if l.FinalReachThreshold < l.ReachThreshold {
		add(Invalid("locomotion.final_reach_threshold", "must not be tighter than reach_threshold"))
	}
	if l.MaxAutoWalkTicks < 1 {
		add(Invalid("locomotion.max_auto_walk_ticks", "must be positive, got %d", l.MaxAutoWalkTicks))
	}
	if isZero(l.PitchAxis) {
		add(Invalid("locomotion.pitch_axis", "must be non-zero"))
	}
	if isZero(l.RollAxis) {
		add(Invalid("locomotion.roll_axis", "must be non-zero"))
	}

	if c.Placement.AttemptFactor < 1 {
		add(Invalid("placement.attempt_factor", "must be positive, got %d", c.Placement.AttemptFactor))
	}
	names := make(map[string]struct{}, len(c.Placement.Categories))
	for i, cat := range c.Placement.Categories {
		if cat.Name == "" {
			add(Invalid(indexed("placement.categories", i, "name"), "is required"))
		} else if _, dup := names[cat.Name]; dup {
			add(Invalid(indexed("placement.categories", i, "name"), "duplicate category %q", cat.Name))
		}
		names[cat.Name] = struct{}{}
		if cat.Count < 0 {
			add(Invalid(indexed("placement.categories", i, "count"), "must not be negative, got %d", cat.Count))
		}
		if !(cat.MinScale > 0) || cat.MaxScale < cat.MinScale {
			add(Invalid(indexed("placement.categories", i, "scale"), "need 0 < min_scale <= max_scale, got [%v, %v]", cat.MinScale, cat.MaxScale))
		}
		if cat.Jitter < 0 || cat.Jitter >= 1 {
			add(Invalid(indexed("placement.categories", i, "jitter"), "must be in [0, 1), got %v", cat.Jitter))
		}
		if cat.Clearance < 0 {
			add(Invalid(indexed("placement.categories", i, "clearance"), "must not be negative, got %v", cat.Clearance))
		}
		if cat.Correction.Angle != 0 && isZero(cat.Correction.Axis) {
			add(Invalid(indexed("placement.categories", i, "correction.axis"), "must be non-zero when angle is set"))
		}
	}

	ids := make(map[string]struct{}, len(c.Landmarks))
	for i, lm := range c.Landmarks {
		if lm.ID == "" {
			add(Invalid(indexed("landmarks", i, "id"), "is required"))
			continue
		}
		if _, dup := ids[lm.ID]; dup {
			add(Invalid(indexed("landmarks", i, "id"), "duplicate landmark %q", lm.ID))
		}
		ids[lm.ID] = struct{}{}
	}

	if !(c.Session.InteractionAngle > 0) || c.Session.ExitAngle < c.Session.InteractionAngle {
		add(Invalid("session", "need 0 < interaction_angle <= exit_angle, got %v / %v",
			c.Session.InteractionAngle, c.Session.ExitAngle))
	}

	if c.Server.TickRate < 1 {
		add(Invalid("server.tick_rate", "must be positive, got %d", c.Server.TickRate))
	}
	if c.Server.SendBuffer < 1 {
		add(Invalid("server.send_buffer", "must be positive, got %d", c.Server.SendBuffer))
	}

	return errors.Join(problems...)
}

func indexed(list string, i int, field string) string {
	return fmt.Sprintf("%s[%d].%s", list, i, field)
}

func isZero(v [3]float64) bool {
	return v[0] == 0 && v[1] == 0 && v[2] == 0
}
