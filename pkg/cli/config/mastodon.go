package config

import "github.com/urfave/cli/v3"

// Mastodon holds Mastodon posting credentials
type Mastodon struct {
	AccessToken string
	APIBaseURL  string
}

// Flags returns CLI flags for Mastodon configuration
func (c *Mastodon) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "mastodon-access-token",
			Usage:       "Mastodon access token",
			Destination: &c.AccessToken,
			Sources:     cli.EnvVars("MASTODON_ACCESS_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "mastodon-api-base-url",
			Usage:       "Mastodon instance base URL",
			Destination: &c.APIBaseURL,
			Sources:     cli.EnvVars("MASTODON_API_BASE_URL"),
		},
	}
}

// Configured reports whether credentials were provided.
func (c *Mastodon) Configured() bool {
	return c.AccessToken != "" && c.APIBaseURL != ""
}
