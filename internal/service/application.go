package service

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/fx"

	"anvil-esign/internal/config"
	deliveryhttp "anvil-esign/internal/delivery/http"
	"anvil-esign/internal/infrastructure/database"
	"anvil-esign/internal/infrastructure/document"
	"anvil-esign/internal/infrastructure/httpclient"
	"anvil-esign/internal/infrastructure/logger"
	"anvil-esign/internal/infrastructure/redis"
	"anvil-esign/internal/infrastructure/repository"
	"anvil-esign/internal/server"
	"anvil-esign/internal/usecase"
)

// ErrAlreadyRunning is returned by Run on an application that has been run before.
var ErrAlreadyRunning = errors.New("application already running")

// Modules wires the HTTP service.
func Modules() fx.Option {
	return fx.Options(
		// Configuration
		config.Module,

		// Infrastructure
		logger.Module,
		database.Module,
		redis.Module,
		document.Module,
		httpclient.Module,
		repository.Module,

		// Business Logic
		usecase.Module,

		// Delivery
		deliveryhttp.Module,

		// Server
		server.Module,
	)
}

// Application runs the service under a console or a service manager.
type Application struct {
	options  []fx.Option
	app      *fx.App
	ctx      context.Context
	cancel   context.CancelFunc
	doneChan chan struct{}
}

// NewApplication creates an Application. Extra options are appended to Modules.
func NewApplication(opts ...fx.Option) *Application {
	ctx, cancel := context.WithCancel(context.Background())
	return &Application{
		options:  opts,
		ctx:      ctx,
		cancel:   cancel,
		doneChan: make(chan struct{}),
	}
}

// Run starts the application and blocks until SIGINT, SIGTERM or Shutdown.
func (a *Application) Run() error {
	if a.app != nil {
		return ErrAlreadyRunning
	}
	defer close(a.doneChan)

	a.app = fx.New(append([]fx.Option{Modules()}, a.options...)...)
	if err := a.app.Err(); err != nil {
		return err
	}

	startCtx, cancel := context.WithTimeout(a.ctx, a.app.StartTimeout())
	defer cancel()
	if err := a.app.Start(startCtx); err != nil {
		return err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-sigChan:
	case <-a.ctx.Done():
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), a.app.StopTimeout())
	defer stopCancel()
	return a.app.Stop(stopCtx)
}

// Shutdown asks a running application to stop; Wait blocks until it has.
func (a *Application) Shutdown() {
	a.cancel()
}

// Wait blocks until Run returns
func (a *Application) Wait() {
	<-a.doneChan
}
