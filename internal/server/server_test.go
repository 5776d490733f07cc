package server

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"

	"anvil-esign/internal/config"
	"anvil-esign/internal/delivery/http/handler"
	"anvil-esign/internal/delivery/http/router"
	"anvil-esign/internal/infrastructure/redis"
)

func newRouter(cfg *config.Config) *router.Router {
	logger := zap.NewNop()
	return router.NewRouter(
		cfg,
		handler.NewEtchHandler(nil, logger),
		handler.NewPDFHandler(nil, logger),
		handler.NewAnvilHandler(nil, logger),
		handler.NewHealthHandler(cfg, nil, redis.NewMemoryStore(), logger),
		handler.NewWebhookHandler(nil, logger),
		handler.NewLogHandler(nil, logger),
	)
}

func TestNewServer_StartStop(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Name: "anvil-esign", Port: 0}}
	lc := fxtest.NewLifecycle(t)

	require.NoError(t, NewServer(lc, cfg, newRouter(cfg), zap.NewNop()))
	lc.RequireStart()
	lc.RequireStop()
}

func TestNewServer_PortInUse(t *testing.T) {
	ln, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer ln.Close()

	cfg := &config.Config{App: config.AppConfig{Name: "anvil-esign", Port: ln.Addr().(*net.TCPAddr).Port}}
	lc := fxtest.NewLifecycle(t)
	require.NoError(t, NewServer(lc, cfg, newRouter(cfg), zap.NewNop()))

	err = lc.Start(context.Background())
	assert.ErrorContains(t, err, "failed to listen")
}
