//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"context"

	"github.com/google/wire"

	"github.com/zeusync/orbwalk/internal/config"
	"github.com/zeusync/orbwalk/internal/core/observability/log"
	"github.com/zeusync/orbwalk/internal/world"
)

func InitializeApp(ctx context.Context, cfg *config.Config) (*App, func(), error) {
	wire.Build(AppSet)
	return nil, nil, nil
}

func InitializeWorld(ctx context.Context, cfg *config.Config, logger log.Log) (*world.World, func(), error) {
	wire.Build(WorldSet)
	return nil, nil, nil
}
