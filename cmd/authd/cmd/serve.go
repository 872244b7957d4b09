package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Brandon689/reqauth/auth"
	"github.com/Brandon689/reqauth/internal/server"
	"github.com/Brandon689/reqauth/redisstore"
	"github.com/Brandon689/reqauth/sqlitestore"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if !cfg.Debug {
			gin.SetMode(gin.ReleaseMode)
		}

		a, users, cleanup, err := buildAuthenticator(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		var opts []auth.GuardOption
		if cfg.StrictUnauthorized {
			opts = append(opts, auth.StrictUnauthorized())
		}
		api := server.New(a, cfg.ExcludedPaths, logf, opts...)
		if users != nil {
			api.WithPasswordChange(users, users.Hasher())
		}
		srv := &http.Server{
			Addr:              cfg.Addr(),
			Handler:           api.Router(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logf("listening on %s (auth type %q)", cfg.Addr(), cfg.AuthType)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("http server failed: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		logf("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		logf("server stopped")
		return nil
	},
}

// buildAuthenticator wires the variant named by AUTH_TYPE together with the
// user store it resolves against. Both are nil when AUTH_TYPE is empty.
// Session variants keep sessions in Redis when REDIS_ADDR is set and in the
// SQLite database otherwise.
func buildAuthenticator(ctx context.Context) (auth.Authenticator, *sqlitestore.Users, func(), error) {
	var closers []func() error
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				logf("cleanup: %v", err)
			}
		}
	}
	fail := func(err error) (auth.Authenticator, *sqlitestore.Users, func(), error) {
		cleanup()
		return nil, nil, func() {}, err
	}

	if cfg.AuthType == "" {
		logf("AUTH_TYPE not set; authentication disabled")
		return nil, nil, cleanup, nil
	}
	kind, err := auth.ParseKind(cfg.AuthType)
	if err != nil {
		return fail(err)
	}

	users, err := openUsers()
	if err != nil {
		return fail(err)
	}
	closers = append(closers, users.Close)

	acfg := auth.Config{
		Type:          kind,
		Users:         users,
		Hasher:        users.Hasher(),
		SessionName:   cfg.SessionName,
		SessionPolicy: cfg.SessionPolicy,
		PruneInterval: time.Minute,
		Logf:          logf,
	}
	if kind == auth.KindSession || kind == auth.KindExpiringSession {
		if cfg.RedisAddr != "" {
			client, err := redisstore.Dial(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
			if err != nil {
				return fail(err)
			}
			closers = append(closers, client.Close)
			acfg.Store = redisstore.New(client, redisOptions(kind, cfg.SessionPolicy))
			logf("sessions stored in redis at %s", cfg.RedisAddr)
		} else {
			acfg.Store = users.Sessions(nil, nil)
		}
	}

	a, err := auth.New(acfg)
	if err != nil {
		return fail(err)
	}
	if c, ok := a.(interface{ Close() error }); ok {
		closers = append(closers, c.Close)
	}
	return a, users, cleanup, nil
}

// redisOptions lets Redis drop keys only for expiring sessions, at twice
// the TTL. Keys of never-expiring sessions are kept until destroyed.
func redisOptions(kind auth.Kind, policy auth.SessionPolicy) redisstore.Options {
	var opts redisstore.Options
	if kind == auth.KindExpiringSession && policy.Expires() {
		opts.Retention = 2 * policy.TTL
	}
	return opts
}

// openUsers opens the SQLite user store with the configured hasher and
// password policy.
func openUsers() (*sqlitestore.Users, error) {
	hasher, err := auth.NewBcryptHasher(cfg.BcryptCost)
	if err != nil {
		return nil, err
	}
	return sqlitestore.Open(cfg.DBPath, hasher,
		sqlitestore.WithMinPasswordLength(cfg.MinPasswordLength),
		sqlitestore.WithStrongPasswords(cfg.RequireStrongPasswords),
	)
}
