package cli

import (
	"context"

	"github.com/urfave/cli/v3"
)

func cmdRender() *cli.Command {
	var flags postFlags
	var outPath string

	cmdFlags := append(flags.flags(), &cli.StringFlag{
		Name:        "out",
		Usage:       "Output file for the rendered SVG",
		Value:       "graph.svg",
		Destination: &outPath,
		Sources:     cli.EnvVars("CFGBOT_RENDER_OUT"),
	})

	return &cli.Command{
		Name:  "render",
		Usage: "Render a random function to a file without posting",
		Flags: cmdFlags,
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, err := flags.build(false)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(ctx, flags.timeout)
			defer cancel()

			return uc.RenderArtifact(ctx, outPath)
		},
	}
}
