// Package events names the navigation events carried on the bus and their
// payloads.
package events

import "github.com/go-gl/mathgl/mgl64"

// Event types.
const (
	TypeRouteStarted   = "route.started"
	TypeArrived        = "route.arrived"
	TypeRouteCancelled = "route.cancelled"
	TypeRouteAborted   = "route.aborted"
)

// SourceLocomotion is the publisher name used by the locomotion controller.
const SourceLocomotion = "locomotion"

// RouteStarted is published when auto-walk begins toward a target.
type RouteStarted struct {
	Target      string
	Destination mgl64.Vec3
	Waypoints   int
}

// Arrived is published once per route when the avatar reaches its target.
type Arrived struct {
	Target   string
	Position mgl64.Vec3
	Ticks    int
}

// RouteCancelled is published when directional input or a new travel command
// replaces an active route.
type RouteCancelled struct {
	Target string
	Cursor int
}

// RouteAborted is published when an auto-walk exceeds its tick budget.
type RouteAborted struct {
	Target string
	Ticks  int
}
