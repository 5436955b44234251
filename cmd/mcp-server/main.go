package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/symptom-insight-server/internal/app"
	"github.com/symptom-insight-server/internal/config"
	"github.com/symptom-insight-server/internal/logging"
	"github.com/symptom-insight-server/internal/mcp"
)

func main() {
	configFile := flag.String("config", "", "config file")
	flag.Parse()

	if err := run(*configFile); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(configFile string) error {
	var opts []config.Option
	if configFile != "" {
		opts = append(opts, config.WithConfigFile(configFile))
	}

	manager, err := config.NewManager(opts...)
	if err != nil {
		return err
	}
	if err := manager.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	cfg := manager.GetConfig()

	// stdout carries the protocol
	logger := logging.NewStdioSafeLogger(cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.StartSweeper(); err != nil {
		return err
	}

	server := mcp.NewServer(a.MCPDependencies(), cfg.MCP, logger)
	if err := server.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}

	logger.Info("MCP server stopped")
	return nil
}
