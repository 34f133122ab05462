package config

import (
	"math"
	"time"
)

// Config is the static, load-time configuration of a sphere world.
type Config struct {
	World      WorldConfig      `json:"world" yaml:"world"`
	Paths      PathsConfig      `json:"paths" yaml:"paths"`
	Route      RouteConfig      `json:"route" yaml:"route"`
	Locomotion LocomotionConfig `json:"locomotion" yaml:"locomotion"`
	Placement  PlacementConfig  `json:"placement" yaml:"placement"`
	Landmarks  []LandmarkConfig `json:"landmarks" yaml:"landmarks"`
	Session    SessionConfig    `json:"session" yaml:"session"`
	Server     ServerConfig     `json:"server" yaml:"server"`
	Log        LogConfig        `json:"log" yaml:"log"`
}

type WorldConfig struct {
	Radius float64 `json:"radius" yaml:"radius"`
}

type PathsConfig struct {
	Segments int            `json:"segments" yaml:"segments"`
	Circles  []CircleConfig `json:"circles" yaml:"circles"`
}

// CircleConfig describes one road: the axis acting as its pole and the
// latitude offset (radians) of the circle relative to that pole's equator.
type CircleConfig struct {
	Axis     string  `json:"axis" yaml:"axis"`
	Latitude float64 `json:"latitude" yaml:"latitude"`
}

type RouteConfig struct {
	CoarseSamples int     `json:"coarse_samples" yaml:"coarse_samples"`
	DedupEpsilon  float64 `json:"dedup_epsilon" yaml:"dedup_epsilon"`
}

// LocomotionConfig holds speeds in rad/s and thresholds in radians.
type LocomotionConfig struct {
	ManualSpeed         float64    `json:"manual_speed" yaml:"manual_speed"`
	AutoWalkSpeed       float64    `json:"auto_walk_speed" yaml:"auto_walk_speed"`
	ReachThreshold      float64    `json:"reach_threshold" yaml:"reach_threshold"`
	FinalReachThreshold float64    `json:"final_reach_threshold" yaml:"final_reach_threshold"`
	StopThreshold       float64    `json:"stop_threshold" yaml:"stop_threshold"`
	MaxAutoWalkTicks    int        `json:"max_auto_walk_ticks" yaml:"max_auto_walk_ticks"`
	PitchAxis           [3]float64 `json:"pitch_axis" yaml:"pitch_axis"`
	RollAxis            [3]float64 `json:"roll_axis" yaml:"roll_axis"`
}

type PlacementConfig struct {
	AttemptFactor int              `json:"attempt_factor" yaml:"attempt_factor"`
	Categories    []CategoryConfig `json:"categories" yaml:"categories"`
}

// CategoryConfig describes one decorative entity kind. Clearance is an arc
// length on the sphere surface in world units.
type CategoryConfig struct {
	Name       string         `json:"name" yaml:"name"`
	Seed       uint32         `json:"seed" yaml:"seed"`
	Count      int            `json:"count" yaml:"count"`
	MinScale   float64        `json:"min_scale" yaml:"min_scale"`
	MaxScale   float64        `json:"max_scale" yaml:"max_scale"`
	Jitter     float64        `json:"jitter" yaml:"jitter"`
	Clearance  float64        `json:"clearance" yaml:"clearance"`
	Correction RotationConfig `json:"correction" yaml:"correction"`
}

type RotationConfig struct {
	Axis  [3]float64 `json:"axis" yaml:"axis"`
	Angle float64    `json:"angle" yaml:"angle"`
}

// LandmarkConfig places a named landmark by spherical angles: theta around
// the Y axis, phi measured down from the north pole.
type LandmarkConfig struct {
	ID    string  `json:"id" yaml:"id"`
	Role  string  `json:"role" yaml:"role"`
	Name  string  `json:"name" yaml:"name"`
	Theta float64 `json:"theta" yaml:"theta"`
	Phi   float64 `json:"phi" yaml:"phi"`
}

type SessionConfig struct {
	InteractionAngle float64 `json:"interaction_angle" yaml:"interaction_angle"`
	ExitAngle        float64 `json:"exit_angle" yaml:"exit_angle"`
}

type ServerConfig struct {
	ListenAddr   string        `json:"listen_addr" yaml:"listen_addr"`
	TickRate     int           `json:"tick_rate" yaml:"tick_rate"`
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout"`
	SendBuffer   int           `json:"send_buffer" yaml:"send_buffer"`
}

type LogConfig struct {
	Level    string `json:"level" yaml:"level"`
	Encoding string `json:"encoding" yaml:"encoding"`
}

// Default returns the stock world: radius 10, five roads, five prop
// categories and four landmarks.
func Default() Config {
	return Config{
		World: WorldConfig{Radius: 10},
		Paths: PathsConfig{
			Segments: 60,
			Circles: []CircleConfig{
				{Axis: "y", Latitude: 0},    // equator
				{Axis: "x", Latitude: 0},    // prime meridian
				{Axis: "z", Latitude: 0},    // cross meridian
				{Axis: "y", Latitude: 0.5},  // northern tropic
				{Axis: "y", Latitude: -0.5}, // southern tropic
			},
		},
		Route: RouteConfig{
			CoarseSamples: 20,
			DedupEpsilon:  1e-4,
		},
		Locomotion: LocomotionConfig{
			ManualSpeed:         0.32,
			AutoWalkSpeed:       0.6,
			ReachThreshold:      0.02,
			FinalReachThreshold: 0.05,
			StopThreshold:       0.01,
			MaxAutoWalkTicks:    60 * 120,
			PitchAxis:           [3]float64{1, 0, 0},
			RollAxis:            [3]float64{0, 0, 1},
		},
		Placement: PlacementConfig{
			AttemptFactor: 5,
			Categories: []CategoryConfig{
				{
					Name: "tree", Seed: 12345, Count: 40,
					MinScale: 0.3, MaxScale: 0.6, Jitter: 0.1, Clearance: 1.3,
					Correction: RotationConfig{Axis: [3]float64{1, 0, 0}, Angle: -math.Pi / 2},
				},
				{
					Name: "bush", Seed: 54321, Count: 80,
					MinScale: 0.1, MaxScale: 0.1, Jitter: 0.1, Clearance: 1.1,
					Correction: RotationConfig{Axis: [3]float64{0, 1, 0}},
				},
				{
					Name: "fallen_tree", Seed: 98765, Count: 40,
					MinScale: 0.1, MaxScale: 0.1, Jitter: 0.1, Clearance: 1.2,
					Correction: RotationConfig{Axis: [3]float64{0, 1, 0}},
				},
				{
					Name: "dead_tree", Seed: 24680, Count: 30,
					MinScale: 0.1, MaxScale: 0.1, Jitter: 0.1, Clearance: 1.2,
					Correction: RotationConfig{Axis: [3]float64{0, 1, 0}},
				},
				{
					Name: "rock", Seed: 13579, Count: 80,
					MinScale: 0.07, MaxScale: 0.1, Jitter: 0.1, Clearance: 1.1,
					Correction: RotationConfig{Axis: [3]float64{0, 1, 0}},
				},
			},
		},
		Landmarks: []LandmarkConfig{
			{ID: "npc-about", Role: "ABOUT", Name: "Guide", Theta: 0, Phi: math.Pi / 2.5},
			{ID: "npc-projects", Role: "PROJECTS", Name: "Builder", Theta: math.Pi / 2, Phi: math.Pi / 2},
			{ID: "npc-services", Role: "SERVICES", Name: "Merchant", Theta: math.Pi, Phi: math.Pi / 2.5},
			{ID: "npc-contact", Role: "CONTACT", Name: "Messenger", Theta: -math.Pi / 2, Phi: math.Pi / 2},
		},
		Session: SessionConfig{
			InteractionAngle: 0.4,
			ExitAngle:        0.5,
		},
		Server: ServerConfig{
			ListenAddr:   "127.0.0.1:8080",
			TickRate:     60,
			WriteTimeout: 2 * time.Second,
			SendBuffer:   16,
		},
		Log: LogConfig{
			Level:    "info",
			Encoding: "json",
		},
	}
}
