package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
)

// Collector holds index builder configuration
type Collector struct {
	ConfigPath string
	OutDir     string
}

// CollectorFile is the TOML document driving the collector.
type CollectorFile struct {
	// Projects are owner/name GitHub projects to index.
	Projects []string `toml:"projects"`
	// ScanScript is the path to the scan-codebase script.
	ScanScript string `toml:"scan_script"`
	// FilesPerGroup bounds how many files one scan invocation gets.
	FilesPerGroup int `toml:"files_per_group"`
	// Workers bounds concurrent scan invocations.
	Workers int `toml:"workers"`
	// Include restricts scanning to matching paths (doublestar globs).
	Include []string `toml:"include"`
}

// Flags returns CLI flags for collector configuration
func (c *Collector) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Usage:       "Collector TOML config file",
			Value:       "collect.toml",
			Destination: &c.ConfigPath,
			Sources:     cli.EnvVars("CFGBOT_COLLECT_CONFIG"),
		},
		&cli.StringFlag{
			Name:        "out-dir",
			Usage:       "Directory to write index files to",
			Value:       "indices",
			Destination: &c.OutDir,
			Sources:     cli.EnvVars("CFGBOT_COLLECT_OUT_DIR"),
		},
	}
}

// Load parses and validates the TOML config file.
func (c *Collector) Load() (*CollectorFile, error) {
	data, err := os.ReadFile(c.ConfigPath)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read collector config", goerr.V("path", c.ConfigPath))
	}

	var file CollectorFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, goerr.Wrap(err, "failed to parse collector config", goerr.V("path", c.ConfigPath))
	}

	if len(file.Projects) == 0 {
		return nil, goerr.New("collector config lists no projects", goerr.V("path", c.ConfigPath))
	}
	if file.ScanScript == "" {
		return nil, goerr.New("collector config missing scan_script", goerr.V("path", c.ConfigPath))
	}
	return &file, nil
}
