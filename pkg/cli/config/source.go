package config

import "github.com/urfave/cli/v3"

// Source holds corpus location configuration
type Source struct {
	IndexDir         string
	SourceRoot       string
	GhidraExportRoot string
	GhidraURLBase    string
}

// Flags returns CLI flags for corpus configuration
func (c *Source) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "index-dir",
			Usage:       "Directory containing index JSON files",
			Value:       "indices",
			Destination: &c.IndexDir,
			Sources:     cli.EnvVars("CFGBOT_INDEX_DIR"),
		},
		&cli.StringFlag{
			Name:        "source-root",
			Usage:       "Local checkout to read source files from instead of fetching",
			Destination: &c.SourceRoot,
			Sources:     cli.EnvVars("CLONE_SOURCE_ROOT"),
		},
		&cli.StringFlag{
			Name:        "ghidra-export-root",
			Usage:       "Directory containing exported Ghidra graph data",
			Destination: &c.GhidraExportRoot,
			Sources:     cli.EnvVars("GHIDRA_EXPORT_ROOT"),
		},
		&cli.StringFlag{
			Name:        "ghidra-url-base",
			Usage:       "Public base URL of the exported Ghidra graph data",
			Destination: &c.GhidraURLBase,
			Sources:     cli.EnvVars("GHIDRA_RAW_URL_BASE"),
		},
	}
}
