// Package server hosts the frame loop and streams it to websocket viewers.
//
// A single goroutine owns the world: it ticks at the configured rate and is
// the only caller of World.Tick and World.TravelTo. Viewer messages are
// funnelled to it through a channel, and every frame is pushed back to each
// connected viewer.
package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/zeusync/orbwalk/internal/config"
	"github.com/zeusync/orbwalk/internal/core/locomotion"
	"github.com/zeusync/orbwalk/internal/core/observability/log"
	"github.com/zeusync/orbwalk/internal/world"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

type command struct {
	client *client
	msg    ClientMessage
	leave  bool
}

// Server drives a World and serves it over HTTP.
type Server struct {
	world  *world.World
	static []byte

	httpSrv  *http.Server
	listener net.Listener

	// Client management
	clients     sync.Map // map[string]*client
	clientCount int64    // atomic

	commands chan command
	frames   uint64 // atomic
	dropped  uint64 // atomic

	// Server state
	lifecycleMu sync.Mutex // serializes Start and Stop
	running     int32      // atomic bool
	closed      int32      // atomic bool

	config config.ServerConfig
	logger log.Log

	workerGroup sync.WaitGroup
	stopChan    chan struct{}
}

// Stats is a point-in-time view of the server counters.
type Stats struct {
	Clients int64  `json:"clients"`
	Frames  uint64 `json:"frames"`
	Dropped uint64 `json:"dropped"`
	Running bool   `json:"running"`
}

// New prepares a server for w. The static world description is encoded once
// here and served unchanged for the server's lifetime.
func New(w *world.World, cfg config.ServerConfig, logger log.Log) (*Server, error) {
	if logger == nil {
		logger = log.NewNop()
	}
	if cfg.TickRate <= 0 {
		cfg.TickRate = 60
	}
	static, err := json.Marshal(w.Static())
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode world")
	}

	s := &Server{
		world:    w,
		static:   static,
		commands: make(chan command, 64),
		config:   cfg,
		logger:   logger.With(log.String("component", "server")),
		stopChan: make(chan struct{}),
	}
	s.logger.Info("Server created",
		log.String("listen_addr", cfg.ListenAddr),
		log.Int("tick_rate", cfg.TickRate),
	)
	return s, nil
}

// Handler returns the HTTP routes: /world, /ws and /healthz.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/world", s.handleWorld)
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/healthz", s.handleHealth)
	return mux
}

// Start binds the listener and launches the frame loop.
func (s *Server) Start(ctx context.Context) error {
	s.lifecycleMu.Lock()
	defer s.lifecycleMu.Unlock()

	if atomic.LoadInt32(&s.closed) == 1 {
		return ErrServerClosed
	}
	if atomic.LoadInt32(&s.running) == 1 {
		return ErrServerAlreadyRunning
	}

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", s.config.ListenAddr)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", s.config.ListenAddr)
	}
	s.listener = listener
	s.httpSrv = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.startWorkers()
	atomic.StoreInt32(&s.running, 1)

	s.logger.Info("Server started", log.String("addr", listener.Addr().String()))
	return nil
}

// Stop shuts the HTTP server down, disconnects every viewer and waits for
// the frame loop to exit. A stopped server cannot be restarted.
func (s *Server) Stop(ctx context.Context) error {
	s.lifecycleMu.Lock()
	defer s.lifecycleMu.Unlock()

	if atomic.LoadInt32(&s.running) == 0 {
		return ErrServerNotRunning
	}
	atomic.StoreInt32(&s.closed, 1)

	close(s.stopChan)
	err := s.httpSrv.Shutdown(ctx)

	s.clients.Range(func(key, value any) bool {
		value.(*client).close()
		return true
	})

	s.stopWorkers()
	atomic.StoreInt32(&s.running, 0)

	s.logger.Info("Server stopped", log.Uint64("frames", atomic.LoadUint64(&s.frames)))
	if err != nil {
		return errors.Wrap(err, "failed to shut down http server")
	}
	return nil
}

// Addr is the bound address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.lifecycleMu.Lock()
	defer s.lifecycleMu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

func (s *Server) GetStats() Stats {
	return Stats{
		Clients: atomic.LoadInt64(&s.clientCount),
		Frames:  atomic.LoadUint64(&s.frames),
		Dropped: atomic.LoadUint64(&s.dropped),
		Running: atomic.LoadInt32(&s.running) == 1,
	}
}

func (s *Server) startWorkers() {
	s.workerGroup.Add(2)

	go func() {
		defer s.workerGroup.Done()
		if err := s.httpSrv.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server failed", log.Error(err))
		}
	}()

	// Frame loop
	go func() {
		defer s.workerGroup.Done()
		s.frameLoop()
	}()
}

func (s *Server) stopWorkers() {
	s.workerGroup.Wait()
}

// frameLoop is the only goroutine that touches the world. It steps with a
// fixed dt of one tick interval so runs are reproducible regardless of
// scheduling jitter.
func (s *Server) frameLoop() {
	interval := time.Second / time.Duration(s.config.TickRate)
	dt := 1 / float64(s.config.TickRate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var (
		held  locomotion.Input
		owner string
	)
	for {
		select {
		case <-s.stopChan:
			return
		case cmd := <-s.commands:
			s.apply(cmd, &held, &owner)
		case <-ticker.C:
			frame := s.world.Tick(held, dt)
			atomic.AddUint64(&s.frames, 1)
			if frame.Arrived != "" {
				s.logger.Info("Viewer arrived", log.String("landmark", frame.Arrived), log.Uint64("tick", frame.Tick))
			}
			s.broadcast(frame)
		}
	}
}

// apply runs a viewer command on the frame goroutine. Directional input is
// held until the same viewer sends a new one or disconnects.
func (s *Server) apply(cmd command, held *locomotion.Input, owner *string) {
	if cmd.leave {
		if *owner == cmd.client.id {
			*held, *owner = locomotion.Input{}, ""
		}
		return
	}

	switch cmd.msg.Type {
	case MessageInput:
		*held, *owner = *cmd.msg.Input, cmd.client.id
	case MessageTravel:
		if err := s.world.TravelTo(cmd.msg.Target); err != nil {
			s.logger.Warn("Travel rejected",
				log.String("client_id", cmd.client.id),
				log.String("target", cmd.msg.Target),
				log.Error(err),
			)
			_ = cmd.client.sendMessage(ServerMessage{Type: MessageError, Error: err.Error()})
		}
	case MessageDialogue:
		s.world.Session().SetDialogueOpen(*cmd.msg.Open)
	}
}

func (s *Server) broadcast(frame world.Frame) {
	if atomic.LoadInt64(&s.clientCount) == 0 {
		return
	}
	snap := s.world.Session().Snapshot()
	payload, err := json.Marshal(ServerMessage{Type: MessageFrame, Frame: &frame, Session: &snap})
	if err != nil {
		s.logger.Error("Failed to encode frame", log.Error(err))
		return
	}
	s.clients.Range(func(_, value any) bool {
		if !value.(*client).enqueue(payload) {
			atomic.AddUint64(&s.dropped, 1)
		}
		return true
	})
}

// dispatch forwards a viewer message to the frame loop. It gives up once
// the server is stopping.
func (s *Server) dispatch(c *client, msg ClientMessage) {
	select {
	case s.commands <- command{client: c, msg: msg}:
	case <-s.stopChan:
	}
}

func (s *Server) handleWorld(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(s.static)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.GetStats())
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if atomic.LoadInt32(&s.closed) == 1 {
		http.Error(w, ErrServerClosed.Error(), http.StatusServiceUnavailable)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("Upgrade failed", log.Error(err))
		return
	}

	c := newClient(conn, s.config.SendBuffer, s.config.WriteTimeout, s.logger)
	s.clients.Store(c.id, c)
	atomic.AddInt64(&s.clientCount, 1)
	if atomic.LoadInt32(&s.closed) == 1 {
		// raced with Stop; readLoop returns at once
		c.close()
	}
	s.logger.Info("Client connected", log.String("client_id", c.id), log.String("remote", r.RemoteAddr))

	_ = c.sendMessage(ServerMessage{Type: MessageHello, ClientID: c.id})
	go c.writeLoop()

	c.readLoop(s.dispatch)

	s.clients.Delete(c.id)
	atomic.AddInt64(&s.clientCount, -1)
	c.close()
	select {
	case s.commands <- command{client: c, leave: true}:
	case <-s.stopChan:
	}
	s.logger.Info("Client disconnected", log.String("client_id", c.id))
}
