package config

import "github.com/urfave/cli/v3"

// Bluesky holds Bluesky posting credentials
type Bluesky struct {
	Identifier string
	Password   string
	Host       string
}

// Flags returns CLI flags for Bluesky configuration
func (c *Bluesky) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "bluesky-identifier",
			Usage:       "Bluesky account handle",
			Destination: &c.Identifier,
			Sources:     cli.EnvVars("BLUESKY_IDENTIFIER"),
		},
		&cli.StringFlag{
			Name:        "bluesky-password",
			Usage:       "Bluesky app password",
			Destination: &c.Password,
			Sources:     cli.EnvVars("BLUESKY_PASSWORD"),
		},
		&cli.StringFlag{
			Name:        "bluesky-host",
			Usage:       "Bluesky PDS host",
			Value:       "https://bsky.social",
			Destination: &c.Host,
			Sources:     cli.EnvVars("CFGBOT_BLUESKY_HOST"),
		},
	}
}

// Configured reports whether credentials were provided.
func (c *Bluesky) Configured() bool {
	return c.Identifier != "" && c.Password != ""
}
