package main

import (
	"fmt"
	"os"
	"time"

	"digihub/internal/cli"
	"digihub/internal/client"
	"digihub/internal/tree"
	pkgconfig "digihub/pkg/config"
	"digihub/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	log := logger.NewLogger(pkgconfig.GetEnv("DIGIHUB_DEBUG", "") != "")
	defer log.Sync()

	timeout := tree.DefaultTimeout
	if raw := os.Getenv("DIGIHUB_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			return fmt.Errorf("invalid DIGIHUB_TIMEOUT %q", raw)
		}
		timeout = d
	}

	api := client.New(
		pkgconfig.GetEnv("DIGIHUB_API_URL", "http://localhost:8080"),
		client.WithToken(os.Getenv("DIGIHUB_TOKEN")),
		client.WithLogger(log),
	)

	editor := tree.NewEditor(api, api, cli.NewToaster(os.Stderr), tree.WithLogger(log), tree.WithTimeout(timeout))
	app := &cli.App{
		Tree:     editor,
		Activity: api,
		Auth:     api,
		Timeout:  timeout,
	}
	return cli.NewRootCmd(app).Execute()
}
