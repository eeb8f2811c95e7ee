package config

import "github.com/urfave/cli/v3"

// Server holds serve-mode configuration
type Server struct {
	Addr         string
	TriggerToken string
}

// Flags returns CLI flags for server configuration
func (c *Server) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Server address",
			Value:       "localhost:8080",
			Destination: &c.Addr,
			Sources:     cli.EnvVars("CFGBOT_ADDR"),
		},
		&cli.StringFlag{
			Name:        "trigger-token",
			Usage:       "Bearer token required on the trigger endpoint",
			Destination: &c.TriggerToken,
			Sources:     cli.EnvVars("CFGBOT_TRIGGER_TOKEN"),
		},
	}
}
