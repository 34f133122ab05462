package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/orbwalk/internal/config"
	"github.com/zeusync/orbwalk/internal/core/events/bus"
	"github.com/zeusync/orbwalk/internal/core/observability/log"
	"github.com/zeusync/orbwalk/internal/world"
)

func startServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.Server.ListenAddr = "127.0.0.1:0"
	cfg.Server.TickRate = 500
	cfg.Server.SendBuffer = 64

	w, err := world.New(context.Background(), cfg, log.NewNop(), bus.New())
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	s, err := New(w, cfg.Server, log.NewNop())
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = s.Stop(ctx)
	})
	return s
}

func dial(t *testing.T, s *Server) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws://"+s.Addr().String()+"/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	var hello ServerMessage
	require.NoError(t, conn.ReadJSON(&hello))
	require.Equal(t, MessageHello, hello.Type)
	require.NotEmpty(t, hello.ClientID)
	return conn
}

// readUntil reads messages until match accepts one or the deadline passes.
func readUntil(t *testing.T, conn *websocket.Conn, timeout time.Duration, match func(ServerMessage) bool) ServerMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(timeout)))
	for {
		var msg ServerMessage
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("no matching message: %v", err)
		}
		if match(msg) {
			return msg
		}
	}
}

func TestWorldEndpoint(t *testing.T) {
	s := startServer(t)

	resp, err := http.Get("http://" + s.Addr().String() + "/world")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var static struct {
		Radius      float64           `json:"radius"`
		Paths       [][][3]float64    `json:"paths"`
		Landmarks   []json.RawMessage `json:"landmarks"`
		Placement   []json.RawMessage `json:"placement"`
		Fingerprint string            `json:"fingerprint"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&static))
	assert.Equal(t, 10.0, static.Radius)
	assert.Len(t, static.Paths, 5)
	assert.Len(t, static.Landmarks, 4)
	assert.Len(t, static.Placement, 5)
	assert.Len(t, static.Fingerprint, 16)
}

func TestFramesAreStreamed(t *testing.T) {
	s := startServer(t)
	conn := dial(t, s)

	first := readUntil(t, conn, 2*time.Second, func(m ServerMessage) bool { return m.Type == MessageFrame })
	require.NotNil(t, first.Frame)
	require.NotNil(t, first.Session)
	assert.Equal(t, "manual", first.Frame.Mode)

	later := readUntil(t, conn, 2*time.Second, func(m ServerMessage) bool {
		return m.Type == MessageFrame && m.Frame.Tick > first.Frame.Tick
	})
	assert.Greater(t, later.Frame.Tick, first.Frame.Tick)
	assert.Equal(t, int64(1), s.GetStats().Clients)
}

func TestTravelRoundTrip(t *testing.T) {
	s := startServer(t)
	conn := dial(t, s)

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: MessageTravel, Target: "npc-projects"}))

	walking := readUntil(t, conn, 2*time.Second, func(m ServerMessage) bool {
		return m.Type == MessageFrame && m.Frame.Mode == "auto_walking"
	})
	assert.Equal(t, "npc-projects", walking.Frame.Target)
	assert.True(t, walking.Session.AutoWalking)

	arrived := readUntil(t, conn, 10*time.Second, func(m ServerMessage) bool {
		return m.Type == MessageFrame && slices.Contains(m.Session.Visited, "npc-projects")
	})
	assert.Equal(t, "manual", arrived.Frame.Mode)
	assert.Equal(t, "npc-projects", arrived.Session.Active)
	assert.True(t, arrived.Session.DialogueOpen)

	closed := false
	require.NoError(t, conn.WriteJSON(ClientMessage{Type: MessageDialogue, Open: &closed}))
	readUntil(t, conn, 2*time.Second, func(m ServerMessage) bool {
		return m.Type == MessageFrame && !m.Session.DialogueOpen
	})
}

func TestUnknownTargetReportsError(t *testing.T) {
	s := startServer(t)
	conn := dial(t, s)

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: MessageTravel, Target: "npc-nobody"}))
	msg := readUntil(t, conn, 2*time.Second, func(m ServerMessage) bool { return m.Type == MessageError })
	assert.Contains(t, msg.Error, "npc-nobody")
}

func TestMalformedMessageReportsError(t *testing.T) {
	s := startServer(t)
	conn := dial(t, s)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"teleport"}`)))
	msg := readUntil(t, conn, 2*time.Second, func(m ServerMessage) bool { return m.Type == MessageError })
	assert.Contains(t, msg.Error, "invalid message")
}

func TestHeldInputMovesAvatar(t *testing.T) {
	s := startServer(t)
	conn := dial(t, s)

	start := readUntil(t, conn, 2*time.Second, func(m ServerMessage) bool { return m.Type == MessageFrame })
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"input","input":{"forward":true}}`)))

	moved := readUntil(t, conn, 2*time.Second, func(m ServerMessage) bool {
		return m.Type == MessageFrame && m.Frame.Avatar.Sub(start.Frame.Avatar).Len() > 0.1
	})
	// walking forward heads toward -Z
	assert.Less(t, moved.Frame.Avatar.Z(), start.Frame.Avatar.Z())
}

func TestLifecycleErrors(t *testing.T) {
	s := startServer(t)
	assert.ErrorIs(t, s.Start(context.Background()), ErrServerAlreadyRunning)

	require.NoError(t, s.Stop(context.Background()))
	assert.ErrorIs(t, s.Stop(context.Background()), ErrServerNotRunning)
	assert.ErrorIs(t, s.Start(context.Background()), ErrServerClosed)
}

func TestConcurrentStartStop(t *testing.T) {
	cfg := config.Default()
	cfg.Server.ListenAddr = "127.0.0.1:0"

	w, err := world.New(context.Background(), cfg, log.NewNop(), bus.New())
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	for i := 0; i < 20; i++ {
		s, err := New(w, cfg.Server, log.NewNop())
		require.NoError(t, err)

		var wg sync.WaitGroup
		errs := make(chan error, 2)
		wg.Add(2)
		go func() {
			defer wg.Done()
			errs <- s.Start(context.Background())
		}()
		go func() {
			defer wg.Done()
			errs <- s.Stop(context.Background())
		}()
		wg.Wait()
		close(errs)

		for err := range errs {
			if err != nil {
				assert.True(t, errors.Is(err, ErrServerNotRunning) || errors.Is(err, ErrServerClosed), "unexpected error: %v", err)
			}
		}
		// whichever order won, the server can always be shut down
		if err := s.Stop(context.Background()); err != nil {
			assert.ErrorIs(t, err, ErrServerNotRunning)
		}
		assert.False(t, s.GetStats().Running)
	}
}

func TestDecodeClientMessage(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		ok   bool
	}{
		{"input", `{"type":"input","input":{"left":true}}`, true},
		{"travel", `{"type":"travel","target":"npc-about"}`, true},
		{"dialogue", `{"type":"dialogue","open":false}`, true},
		{"input without payload", `{"type":"input"}`, false},
		{"travel without target", `{"type":"travel"}`, false},
		{"dialogue without flag", `{"type":"dialogue"}`, false},
		{"unknown type", `{"type":"jump"}`, false},
		{"not json", `{`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeClientMessage([]byte(tt.raw))
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidMessage)
			}
		})
	}
}
