package main

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/orbwalk/internal/core/geom"
	"github.com/zeusync/orbwalk/internal/core/landmark"
	"github.com/zeusync/orbwalk/internal/core/locomotion"
	"github.com/zeusync/orbwalk/internal/world"
)

const (
	frameInterval = 16 * time.Millisecond
	maxStep       = 0.1
	// Terminals report key presses but not releases, so a direction stays
	// held for this long after its last repeat.
	holdDuration = 150 * time.Millisecond
)

var glyphs = map[string]rune{
	"tree":        'T',
	"bush":        '*',
	"fallen_tree": '_',
	"dead_tree":   'Y',
	"rock":        'o',
}

var (
	stylePath     = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleProp     = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleLandmark = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleAvatar   = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleStatus   = tcell.StyleDefault.Foreground(tcell.ColorWhite).Reverse(true)
)

type viewer struct {
	screen        tcell.Screen
	world         *world.World
	landmarks     []landmark.Landmark
	width, height int

	held      locomotion.Input
	heldUntil time.Time
	lastTick  time.Time
	frame     world.Frame
	message   string
}

func newViewer(screen tcell.Screen, w *world.World) *viewer {
	v := &viewer{
		screen:    screen,
		world:     w,
		landmarks: w.Landmarks(),
	}
	v.width, v.height = screen.Size()
	return v
}

// project maps a point on the sphere to a map cell: longitude across,
// latitude down, with the north pole on the top row.
func project(p mgl64.Vec3, width, height int) (int, int) {
	if p.Len() == 0 || width <= 0 || height <= 0 {
		return 0, 0
	}
	lat, lon := geom.LatLon(p)

	x := int((lon + math.Pi) / (2 * math.Pi) * float64(width))
	y := int((math.Pi/2 - lat) / math.Pi * float64(height))
	return min(max(x, 0), width-1), min(max(y, 0), height-1)
}

// handleEvent applies one terminal event and reports whether to keep running.
func (v *viewer) handleEvent(ev tcell.Event, now time.Time) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyUp:
			v.hold(locomotion.Input{Forward: true}, now)
		case tcell.KeyDown:
			v.hold(locomotion.Input{Backward: true}, now)
		case tcell.KeyLeft:
			v.hold(locomotion.Input{Left: true}, now)
		case tcell.KeyRight:
			v.hold(locomotion.Input{Right: true}, now)
		case tcell.KeyRune:
			return v.handleRune(ev.Rune(), now)
		}
	case *tcell.EventResize:
		v.width, v.height = v.screen.Size()
		v.screen.Sync()
	}
	return true
}

func (v *viewer) handleRune(r rune, now time.Time) bool {
	switch {
	case r == 'q':
		return false
	case r == 'w':
		v.hold(locomotion.Input{Forward: true}, now)
	case r == 's':
		v.hold(locomotion.Input{Backward: true}, now)
	case r == 'a':
		v.hold(locomotion.Input{Left: true}, now)
	case r == 'd':
		v.hold(locomotion.Input{Right: true}, now)
	case r == 'e':
		snap := v.world.Session().Snapshot()
		v.world.Session().SetDialogueOpen(!snap.DialogueOpen)
	case r >= '1' && r <= '9':
		i := int(r - '1')
		if i >= len(v.landmarks) {
			v.message = fmt.Sprintf("no landmark %c", r)
			return true
		}
		if err := v.world.TravelTo(v.landmarks[i].ID); err != nil {
			v.message = err.Error()
		} else {
			v.message = "travelling to " + v.landmarks[i].Name
		}
	}
	return true
}

func (v *viewer) hold(in locomotion.Input, now time.Time) {
	v.held = in
	v.heldUntil = now.Add(holdDuration)
}

// step advances the world by the wall time since the previous step, capped
// so a stalled terminal does not teleport the avatar.
func (v *viewer) step(now time.Time) world.Frame {
	dt := frameInterval.Seconds()
	if !v.lastTick.IsZero() {
		dt = min(now.Sub(v.lastTick).Seconds(), maxStep)
	}
	v.lastTick = now

	if now.After(v.heldUntil) {
		v.held = locomotion.Input{}
	}
	v.frame = v.world.Tick(v.held, dt)
	if v.frame.Arrived != "" {
		v.message = "arrived at " + v.frame.Arrived
	}
	return v.frame
}

func (v *viewer) draw() {
	v.screen.Clear()
	mapHeight := v.height - 2
	if v.width <= 0 || mapHeight <= 0 {
		v.screen.Show()
		return
	}

	for _, path := range v.world.Network() {
		for _, p := range path {
			x, y := project(p, v.width, mapHeight)
			v.screen.SetContent(x, y, '.', nil, stylePath)
		}
	}
	for _, e := range v.world.Entities() {
		glyph, ok := glyphs[e.Category]
		if !ok {
			glyph = '+'
		}
		x, y := project(e.Position, v.width, mapHeight)
		v.screen.SetContent(x, y, glyph, nil, styleProp)
	}
	for i, lm := range v.landmarks {
		x, y := project(lm.Position, v.width, mapHeight)
		glyph := '#'
		if i < 9 {
			glyph = rune('1' + i)
		}
		v.screen.SetContent(x, y, glyph, nil, styleLandmark)
	}
	x, y := project(v.frame.Avatar, v.width, mapHeight)
	v.screen.SetContent(x, y, '@', nil, styleAvatar)

	v.drawLine(v.height-2, v.status(), styleStatus)
	v.drawLine(v.height-1, v.message, tcell.StyleDefault)
	v.screen.Show()
}

func (v *viewer) status() string {
	snap := v.world.Session().Snapshot()
	var b strings.Builder
	fmt.Fprintf(&b, " tick %d  %s", v.frame.Tick, v.frame.Mode)
	if v.frame.Target != "" {
		fmt.Fprintf(&b, " -> %s [%d/%d]", v.frame.Target, v.frame.Cursor+1, v.frame.Waypoints)
	}
	if snap.Active != "" {
		fmt.Fprintf(&b, "  near %s", snap.Active)
		if snap.DialogueOpen {
			b.WriteString(" (talking)")
		}
	}
	fmt.Fprintf(&b, "  visited %d/%d  arrows move, 1-%d travel, e talk, q quit",
		len(snap.Visited), len(v.landmarks), min(len(v.landmarks), 9))
	return b.String()
}

func (v *viewer) drawLine(y int, text string, style tcell.Style) {
	if y < 0 {
		return
	}
	x := 0
	for _, r := range text {
		if x >= v.width {
			break
		}
		v.screen.SetContent(x, y, r, nil, style)
		x++
	}
	for ; x < v.width; x++ {
		v.screen.SetContent(x, y, ' ', nil, style)
	}
}

func (v *viewer) run() {
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			eventChan <- ev
		}
	}()

	for {
		select {
		case ev := <-eventChan:
			if !v.handleEvent(ev, time.Now()) {
				return
			}
		case now := <-ticker.C:
			v.step(now)
			v.draw()
		}
	}
}
