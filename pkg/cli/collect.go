package cli

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/urfave/cli/v3"

	"github.com/tmr232/cfgbot/pkg/cli/config"
	"github.com/tmr232/cfgbot/pkg/infra/gitrepo"
	"github.com/tmr232/cfgbot/pkg/infra/scan"
	"github.com/tmr232/cfgbot/pkg/usecase"
)

func cmdCollect() *cli.Command {
	var collectorCfg config.Collector

	return &cli.Command{
		Name:  "collect",
		Usage: "Build index files by scanning configured projects",
		Flags: collectorCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			file, err := collectorCfg.Load()
			if err != nil {
				return err
			}

			ctxlog.From(ctx).Info("Starting collection",
				"projects", len(file.Projects),
				"out_dir", collectorCfg.OutDir,
			)

			uc := usecase.NewCollect(usecase.CollectConfig{
				Projects:      file.Projects,
				OutDir:        collectorCfg.OutDir,
				FilesPerGroup: file.FilesPerGroup,
				Workers:       file.Workers,
				Include:       file.Include,
			}, gitrepo.New(), scan.New(file.ScanScript))

			return uc.Run(ctx)
		},
	}
}
