package main

import (
	"context"
	"fmt"
	"os"

	"budgetbook/internal/cli"
	"budgetbook/internal/config"
	"budgetbook/internal/log"
)

func main() {
	cli.LoadEnvFile()

	cfg, err := config.LoadClient()
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(2)
	}
	cli.SetupLogger(cfg.LogLevel, log.ComponentClient, os.Stderr)

	ctx, stop := cli.SignalContext(context.Background())
	code := cli.RunFrontend(ctx, os.Args[1:], cfg, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
