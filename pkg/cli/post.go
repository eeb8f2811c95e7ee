package cli

import (
	"context"
	"strings"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/tmr232/cfgbot/pkg/cli/config"
	"github.com/tmr232/cfgbot/pkg/domain/interfaces"
	"github.com/tmr232/cfgbot/pkg/infra/bluesky"
	"github.com/tmr232/cfgbot/pkg/infra/mastodon"
	"github.com/tmr232/cfgbot/pkg/infra/render"
	"github.com/tmr232/cfgbot/pkg/infra/source"
	"github.com/tmr232/cfgbot/pkg/usecase"
)

// postFlags bundles the configuration shared by every command that
// runs the render pipeline (post, render, serve).
type postFlags struct {
	render   config.Render
	source   config.Source
	bluesky  config.Bluesky
	mastodon config.Mastodon

	colors  string
	timeout time.Duration
}

func (f *postFlags) flags() []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "colors",
			Usage:       "Comma-separated color schemes to render",
			Value:       "dark,light",
			Destination: &f.colors,
			Sources:     cli.EnvVars("CFGBOT_COLORS"),
		},
		&cli.DurationFlag{
			Name:        "timeout",
			Usage:       "Deadline for the render-and-post step",
			Value:       5 * time.Minute,
			Destination: &f.timeout,
			Sources:     cli.EnvVars("CFGBOT_TIMEOUT"),
		},
	}
	flags = append(flags, f.render.Flags()...)
	flags = append(flags, f.source.Flags()...)
	flags = append(flags, f.bluesky.Flags()...)
	flags = append(flags, f.mastodon.Flags()...)
	return flags
}

func (f *postFlags) colorSchemes() []string {
	var schemes []string
	for _, c := range strings.Split(f.colors, ",") {
		if c = strings.TrimSpace(c); c != "" {
			schemes = append(schemes, c)
		}
	}
	return schemes
}

// build wires the post pipeline from flags. requirePublishers is false
// for the render-only command.
func (f *postFlags) build(requirePublishers bool) (*usecase.Post, error) {
	var fetcher interfaces.SourceFetcher
	if f.source.SourceRoot != "" {
		fetcher = source.NewLocalFetcher(f.source.SourceRoot)
	} else {
		fetcher = source.NewRemoteFetcher(nil)
	}

	var publishers []interfaces.Publisher
	if f.bluesky.Configured() {
		publishers = append(publishers, bluesky.New(
			f.bluesky.Identifier,
			f.bluesky.Password,
			bluesky.WithHost(f.bluesky.Host),
		))
	}
	if f.mastodon.Configured() {
		publishers = append(publishers, mastodon.New(f.mastodon.APIBaseURL, f.mastodon.AccessToken))
	}
	if requirePublishers && len(publishers) == 0 {
		return nil, goerr.New("no posting credentials configured")
	}

	var opts []usecase.PostOption
	if f.source.GhidraExportRoot != "" {
		opts = append(opts, usecase.WithGraphLocator(
			source.NewGhidraExport(f.source.GhidraExportRoot, f.source.GhidraURLBase),
		))
	}

	return usecase.NewPost(
		f.source.IndexDir,
		f.colorSchemes(),
		fetcher,
		render.New(f.render.FunctionScript, f.render.GraphScript),
		publishers,
		opts...,
	), nil
}

func cmdPost() *cli.Command {
	var flags postFlags

	return &cli.Command{
		Name:  "post",
		Usage: "Render a random function and post it",
		Flags: flags.flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)
			logger.Info("Starting post run", "timeout", flags.timeout)

			uc, err := flags.build(true)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(ctx, flags.timeout)
			defer cancel()

			if run := uc.Run(ctx); run.Failed() {
				return run.Err
			}
			return nil
		},
	}
}
