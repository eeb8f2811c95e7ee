package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/tmr232/cfgbot/pkg/cli/config"
	"github.com/tmr232/cfgbot/pkg/domain/model"
	"github.com/tmr232/cfgbot/pkg/usecase"
)

func cmdValidate() *cli.Command {
	var sourceCfg config.Source

	return &cli.Command{
		Name:  "validate",
		Usage: "Check that every index file parses and report its stats",
		Flags: sourceCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			paths, err := filepath.Glob(filepath.Join(sourceCfg.IndexDir, "*.json"))
			if err != nil {
				return goerr.Wrap(err, "failed to list index files", goerr.V("dir", sourceCfg.IndexDir))
			}
			if len(paths) == 0 {
				return goerr.New("no index files found", goerr.V("dir", sourceCfg.IndexDir))
			}

			failed := 0
			for _, path := range paths {
				data, err := os.ReadFile(path)
				if err != nil {
					fmt.Printf("%s %s: %v\n", color.RedString("FAIL"), path, err)
					failed++
					continue
				}

				idx, err := model.ParseIndex(data)
				if err != nil {
					fmt.Printf("%s %s: %v\n", color.RedString("FAIL"), path, err)
					failed++
					continue
				}

				total := 0
				name := ""
				switch content := idx.Content; content.Type() {
				case model.IndexTypeGithub:
					total = len(content.Github.Functions)
					name = content.Github.Project
				case model.IndexTypeGhidra:
					total = len(content.Ghidra.Functions)
					name = content.Ghidra.Project
				}
				fmt.Printf("%s %s (%s, %s): %d functions, %d postable\n",
					color.GreenString("ok"), path, name, idx.Content.Type(),
					total, usecase.PostableCount(idx))
			}

			if failed > 0 {
				return goerr.New("malformed index files", goerr.V("failed", failed))
			}
			return nil
		},
	}
}
