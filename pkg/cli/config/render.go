package config

import "github.com/urfave/cli/v3"

// Render holds external render script configuration
type Render struct {
	FunctionScript string
	GraphScript    string
}

// Flags returns CLI flags for render configuration
func (c *Render) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "render-script",
			Usage:       "Path to the function-graph-overview render script",
			Destination: &c.FunctionScript,
			// CFG_RENDER_SCRIPT is the older name still used by some
			// workflows.
			Sources: cli.EnvVars("FUNCTION_RENDER_SCRIPT", "CFG_RENDER_SCRIPT"),
		},
		&cli.StringFlag{
			Name:        "graph-render-script",
			Usage:       "Path to the exported-graph render script",
			Destination: &c.GraphScript,
			Sources:     cli.EnvVars("GRAPH_RENDER_SCRIPT"),
		},
	}
}
