package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/tmr232/cfgbot/pkg/cli"
)

func main() {
	// Local development convenience; CI injects everything directly.
	_ = godotenv.Load()

	if err := cli.Run(context.Background(), os.Args); err != nil {
		os.Exit(1)
	}
}
