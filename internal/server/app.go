// Package server wires configuration, storage, the auth core and both
// transports together and runs them until shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/credkeeper/internal/cryptox"
	"github.com/dmitrijs2005/credkeeper/internal/logging"
	"github.com/dmitrijs2005/credkeeper/internal/server/auth"
	"github.com/dmitrijs2005/credkeeper/internal/server/config"
	"github.com/dmitrijs2005/credkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/credkeeper/internal/server/services"

	gs "github.com/dmitrijs2005/credkeeper/internal/server/grpc"
	hs "github.com/dmitrijs2005/credkeeper/internal/server/httpapi"
)

type runner interface {
	Run(ctx context.Context) error
}

type App struct {
	config      *config.Config
	logger      logging.Logger
	store       *repomanager.Store
	authService *services.AuthService
	runners     map[string]runner
}

// NewApp validates c, opens and migrates the store and builds the auth
// service. A weak signing key or bad hash parameters fail here.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	hasher, err := cryptox.NewPasswordHasher(c.Argon2Params())
	if err != nil {
		return nil, fmt.Errorf("password hasher: %w", err)
	}

	codec, err := auth.NewTokenCodec([]byte(c.SecretKey), c.Issuer, c.Audience, c.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("token codec: %w", err)
	}

	store, err := repomanager.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	logger.Info(ctx, "Credential store ready", "backend", store.Backend)

	svc := services.NewAuthService(store.Credentials, hasher, codec, logger,
		services.WithEmptyIdentityAllowed(c.AllowEmptyIdentity))

	app := &App{
		config:      c,
		logger:      logger,
		store:       store,
		authService: svc,
		runners:     make(map[string]runner),
	}
	if c.EndpointAddrGRPC != "" {
		app.runners["grpc"] = gs.NewGRPCServer(c.EndpointAddrGRPC, logger, svc)
	}
	if c.EndpointAddrHTTP != "" {
		app.runners["http"] = hs.NewHTTPServer(c.EndpointAddrHTTP, logger, svc, hs.WithAllowedOrigins(c.CORSOrigins...))
	}

	return app, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves every configured transport until ctx is cancelled, a signal
// arrives or one transport fails. The store is closed on return.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(cancelFunc)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for name, r := range app.runners {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := r.Run(ctx); err != nil {
				app.logger.Error(ctx, "server failed", "server", name, "error", err.Error())
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				mu.Unlock()
				cancelFunc()
			}
		}()
	}

	wg.Wait()

	if err := app.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close store: %w", err))
	}
	app.logger.Info(context.Background(), "App stopped")

	return errors.Join(errs...)
}
