// Package injector wires the engine together with google/wire. wire.go holds
// the injector declarations; wire_gen.go is the generated code.
package injector

import (
	"context"

	"github.com/google/wire"

	"github.com/zeusync/orbwalk/internal/config"
	"github.com/zeusync/orbwalk/internal/core/events/bus"
	"github.com/zeusync/orbwalk/internal/core/observability/log"
	"github.com/zeusync/orbwalk/internal/server"
	"github.com/zeusync/orbwalk/internal/world"
)

// App is everything cmd/server needs to run.
type App struct {
	Logger log.Log
	World  *world.World
	Server *server.Server
}

var WorldSet = wire.NewSet(
	ProvideBus,
	ProvideWorld,
)

var AppSet = wire.NewSet(
	WorldSet,
	ProvideLogger,
	server.New,
	wire.FieldsOf(new(*config.Config), "Server", "Log"),
	wire.Struct(new(App), "*"),
)

// ProvideLogger builds the zap-backed logger described by cfg. The cleanup
// flushes buffered entries.
func ProvideLogger(cfg config.LogConfig) (log.Log, func(), error) {
	l, err := log.New(log.Options{
		Level:    log.ParseLevel(cfg.Level),
		Encoding: cfg.Encoding,
	})
	if err != nil {
		return nil, nil, err
	}
	return l, func() { _ = l.Sync() }, nil
}

func ProvideBus() bus.EventBus {
	return bus.New()
}

// ProvideWorld builds the world; the cleanup detaches it from the bus.
func ProvideWorld(ctx context.Context, cfg *config.Config, logger log.Log, eb bus.EventBus) (*world.World, func(), error) {
	w, err := world.New(ctx, *cfg, logger, eb)
	if err != nil {
		return nil, nil, err
	}
	return w, func() { _ = w.Close() }, nil
}
