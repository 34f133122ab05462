package injector

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/orbwalk/internal/config"
	"github.com/zeusync/orbwalk/internal/core/observability/log"
)

func TestInitializeApp(t *testing.T) {
	cfg := config.Default()
	cfg.Log.Level = "error"

	app, cleanup, err := InitializeApp(context.Background(), &cfg)
	require.NoError(t, err)
	defer cleanup()

	assert.NotNil(t, app.Logger)
	assert.NotNil(t, app.Server)
	assert.Len(t, app.World.Landmarks(), 4)
	assert.False(t, app.Server.GetStats().Running)
}

func TestInitializeWorldRejectsBadConfig(t *testing.T) {
	cfg := config.Default()
	cfg.World.Radius = -1

	_, _, err := InitializeWorld(context.Background(), &cfg, log.NewNop())
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}
