package main

import (
	"os"

	"github.com/spacesedan/momentflow/config"
)

func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)

	// cobra prints the error to stderr.
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
