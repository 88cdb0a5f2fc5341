package main

import (
	"fmt"
	"os"

	"github.com/S-Leuthold/echo/internal/config"
	"github.com/S-Leuthold/echo/internal/ui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	path := config.DefaultConfigPath()
	if v := os.Getenv("ECHO_CONFIG"); v != "" {
		path = v
	}

	cfg, err := config.LoadFrom(path)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	app := ui.NewApp(cfg, path)
	defer func() { _ = app.Close() }()
	return app.Execute()
}
