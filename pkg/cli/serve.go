package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/tmr232/cfgbot/pkg/cli/config"
	controller "github.com/tmr232/cfgbot/pkg/controller/http"
	"github.com/tmr232/cfgbot/pkg/controller/schedule"
	"github.com/tmr232/cfgbot/pkg/domain/interfaces"
	"github.com/tmr232/cfgbot/pkg/domain/model"
	"github.com/tmr232/cfgbot/pkg/infra/notify"
)

// timedRunner bounds every run with the configured deadline, matching
// the one-shot post command.
type timedRunner struct {
	runner  interfaces.PostRunner
	timeout time.Duration
}

func (r timedRunner) Run(ctx context.Context) *model.PostRun {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.runner.Run(ctx)
}

func cmdServe() *cli.Command {
	var (
		flags     postFlags
		serverCfg config.Server
		notifyCfg config.Notify
		cronSpec  string
	)

	cmdFlags := append(flags.flags(), serverCfg.Flags()...)
	cmdFlags = append(cmdFlags, notifyCfg.Flags()...)
	cmdFlags = append(cmdFlags, &cli.StringFlag{
		Name:        "schedule",
		Usage:       "Cron expression for scheduled runs (disabled when empty)",
		Destination: &cronSpec,
		Sources:     cli.EnvVars("CFGBOT_SCHEDULE"),
	})

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Run as a daemon with HTTP trigger and optional cron schedule",
		Flags:   cmdFlags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			uc, err := flags.build(true)
			if err != nil {
				return err
			}
			runner := timedRunner{runner: uc, timeout: flags.timeout}

			var notifier interfaces.FailureNotifier
			if notifyCfg.SlackWebhook != "" {
				notifier = notify.NewSlack(notifyCfg.SlackWebhook)
			}

			opts := []controller.Option{
				controller.WithAddr(serverCfg.Addr),
				controller.WithTriggerToken(serverCfg.TriggerToken),
				controller.WithIndexDir(flags.source.IndexDir),
			}
			if notifier != nil {
				opts = append(opts, controller.WithFailureNotifier(notifier))
			}

			server, err := controller.NewServer(ctx, runner, opts...)
			if err != nil {
				return goerr.Wrap(err, "failed to create HTTP server")
			}

			var scheduler *schedule.Scheduler
			if cronSpec != "" {
				if scheduler, err = schedule.New(cronSpec, runner, notifier); err != nil {
					return err
				}
				scheduler.Start(ctx)
			}

			go func() {
				logger.Info("HTTP server starting", slog.String("addr", serverCfg.Addr))
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("HTTP server error", slog.Any("error", err))
				}
			}()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

			select {
			case <-ctx.Done():
				logger.Info("Context cancelled, shutting down...")
			case sig := <-sigChan:
				logger.Info("Signal received, shutting down...", slog.Any("signal", sig))
			}

			if scheduler != nil {
				scheduler.Stop()
			}

			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}
