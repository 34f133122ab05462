package world

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/orbwalk/internal/config"
	"github.com/zeusync/orbwalk/internal/core/events/bus"
	"github.com/zeusync/orbwalk/internal/core/landmark"
	"github.com/zeusync/orbwalk/internal/core/locomotion"
	"github.com/zeusync/orbwalk/internal/core/observability/log"
)

const frame = 1.0 / 60

func newWorld(t *testing.T, cfg config.Config) *World {
	t.Helper()
	w, err := New(context.Background(), cfg, log.NewNop(), bus.New())
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func TestNewBuildsStockWorld(t *testing.T) {
	w := newWorld(t, config.Default())

	assert.Len(t, w.Network(), 5)
	assert.Len(t, w.Landmarks(), 4)
	stats := w.Static().Placement
	assert.Len(t, stats, 5)
	for _, st := range stats {
		assert.LessOrEqual(t, st.Placed, st.Requested, st.Category)
		assert.GreaterOrEqual(t, st.Attempts, st.Placed, st.Category)
	}
	assert.NotEmpty(t, w.Entities())
	assert.Len(t, w.FingerprintHex(), 16)
	assert.Equal(t, locomotion.ModeManual.String(), w.Tick(locomotion.Input{}, 0).Mode)
}

func TestNewFailsFastOnBadConfig(t *testing.T) {
	cfg := config.Default()
	cfg.World.Radius = 0
	_, err := New(context.Background(), cfg, nil, bus.New())
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)

	cfg = config.Default()
	cfg.Paths.Circles = nil
	_, err = New(context.Background(), cfg, nil, bus.New())
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestWorldsAreReproducible(t *testing.T) {
	a := newWorld(t, config.Default())
	b := newWorld(t, config.Default())
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.Equal(t, a.Entities(), b.Entities())
}

func TestTravelToLandmark(t *testing.T) {
	w := newWorld(t, config.Default())

	require.NoError(t, w.TravelTo("npc-projects"))
	first := w.Tick(locomotion.Input{}, frame)
	assert.Equal(t, "auto_walking", first.Mode)
	assert.Equal(t, "npc-projects", first.Target)
	assert.Equal(t, uint64(1), first.Tick)
	assert.True(t, w.Session().Snapshot().AutoWalking)

	var last Frame
	for i := 0; i < 3000; i++ {
		last = w.Tick(locomotion.Input{}, frame)
		if last.Arrived != "" {
			break
		}
	}
	require.Equal(t, "npc-projects", last.Arrived)
	assert.Equal(t, "manual", last.Mode)
	assert.InDelta(t, 1, last.Orientation.Len(), 1e-9)

	snap := w.Session().Snapshot()
	assert.Equal(t, "npc-projects", snap.Active)
	assert.True(t, snap.DialogueOpen)
	assert.False(t, snap.AutoWalking)
	assert.Equal(t, []string{"npc-projects"}, snap.Visited)
}

func TestTravelToUnknownLandmark(t *testing.T) {
	w := newWorld(t, config.Default())
	err := w.TravelTo("nowhere")
	assert.ErrorIs(t, err, landmark.ErrUnknownLandmark)
	assert.Equal(t, locomotion.ModeManual.String(), w.Tick(locomotion.Input{}, 0).Mode)
}

func TestManualInputCancelsTravel(t *testing.T) {
	w := newWorld(t, config.Default())
	require.NoError(t, w.TravelTo("npc-services"))
	w.Tick(locomotion.Input{}, frame)

	f := w.Tick(locomotion.Input{Forward: true}, frame)
	assert.Equal(t, "manual", f.Mode)
	assert.Empty(t, f.Target)
	assert.False(t, w.Session().Snapshot().AutoWalking)
}

func TestStaticEncodesAsJSON(t *testing.T) {
	w := newWorld(t, config.Default())

	raw, err := json.Marshal(w.Static())
	require.NoError(t, err)

	var decoded struct {
		Radius      float64           `json:"radius"`
		Paths       [][][3]float64    `json:"paths"`
		Landmarks   []map[string]any  `json:"landmarks"`
		Entities    []json.RawMessage `json:"entities"`
		Fingerprint string            `json:"fingerprint"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, 10.0, decoded.Radius)
	assert.Len(t, decoded.Paths, 5)
	assert.Len(t, decoded.Paths[0], 60)
	assert.Len(t, decoded.Landmarks, 4)
	assert.Len(t, decoded.Entities, len(w.Entities()))
	assert.Equal(t, w.FingerprintHex(), decoded.Fingerprint)
}
