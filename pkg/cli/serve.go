package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/secmon-lab/copilot-dash/pkg/cli/config"
	httpctrl "github.com/secmon-lab/copilot-dash/pkg/controller/http"
	"github.com/secmon-lab/copilot-dash/pkg/repository/cache"
	"github.com/secmon-lab/copilot-dash/pkg/usecase"
	"github.com/secmon-lab/copilot-dash/pkg/utils/async"
	"github.com/secmon-lab/copilot-dash/pkg/utils/logging"
)

func cmdServe() *cli.Command {
	var addr string
	var githubCfg config.GitHub
	var dashCfg config.Dashboard

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("COPILOT_DASH_ADDR"),
			Destination: &addr,
		},
	}
	flags = append(flags, githubCfg.Flags()...)
	flags = append(flags, dashCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP and WebSocket server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ghSvc, err := githubCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to configure GitHub service")
			}
			logging.Default().LogAttrs(ctx, slog.LevelInfo, "GitHub service configured", githubCfg.LogAttrs()...)

			agentNames, err := dashCfg.LoadAgents()
			if err != nil {
				return goerr.Wrap(err, "failed to load agents config")
			}
			if len(agentNames) > 0 {
				logging.Default().Info("Agents registry loaded", "count", len(agentNames))
			}

			uc := usecase.New(ghSvc, githubCfg.Org(),
				usecase.WithAuthorFilter(githubCfg.Author()),
				usecase.WithAgentNames(agentNames),
			)

			// one explicit cache instance per process, passed by injection
			store := cache.New[any](dashCfg.CacheTTL())

			hub := httpctrl.NewHub()
			refresher := usecase.NewRefresher(uc, store,
				usecase.WithNotifier(hub),
				usecase.WithCooldown(dashCfg.Cooldown()),
				usecase.WithCacheKeys(httpctrl.CacheKeyDashboard, httpctrl.CacheKeyKPIs),
			)

			httpHandler, err := httpctrl.New(refresher, httpctrl.WithHub(hub))
			if err != nil {
				return goerr.Wrap(err, "failed to create http server")
			}
			server := &http.Server{
				Addr:              addr,
				Handler:           httpHandler,
				ReadHeaderTimeout: 30 * time.Second,
			}

			// initial fill; later refreshes are triggered manually, never
			// by a background timer
			async.Dispatch(ctx, func(ctx context.Context) error {
				return refresher.Refresh(ctx, false)
			})

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
