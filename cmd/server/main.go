package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/symptom-insight-server/internal/api"
	"github.com/symptom-insight-server/internal/app"
	"github.com/symptom-insight-server/internal/config"
	"github.com/symptom-insight-server/internal/domain"
	"github.com/symptom-insight-server/internal/logging"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:           "symptom-insight",
	Short:         "Resolve symptoms into conditions, medications and health insights",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE:  runServe,
}

var clearCacheCmd = &cobra.Command{
	Use:   "clear-cache",
	Short: "Remove every cached API response",
	RunE:  runClearCache,
}

var relatedCmd = &cobra.Command{
	Use:   "related <symptom>",
	Short: "List known symptoms related to the input",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRelated,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default searches ./config.yaml, ./config/, /etc/symptom-insight/)")
	relatedCmd.Flags().Int("max", 5, "maximum number of suggestions")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(clearCacheCmd)
	rootCmd.AddCommand(relatedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig reads and validates configuration and builds the logger.
func loadConfig() (*domain.Config, *logrus.Logger, error) {
	var opts []config.Option
	if configFile != "" {
		opts = append(opts, config.WithConfigFile(configFile))
	}

	manager, err := config.NewManager(opts...)
	if err != nil {
		return nil, nil, err
	}
	if err := manager.Validate(); err != nil {
		return nil, nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	cfg := manager.GetConfig()
	return cfg, logging.NewLogger(cfg.Logging), nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.StartSweeper(); err != nil {
		return err
	}

	server := api.NewServer(cfg.Server, a.APIDependencies(), logger)
	logger.WithFields(logrus.Fields{
		"host": cfg.Server.Host,
		"port": cfg.Server.Port,
	}).Info("Starting symptom insight server")

	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	logger.Info("Server stopped")
	return nil
}

func runClearCache(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := app.New(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Cache.ClearAll(cmd.Context()); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "API cache cleared successfully")
	return nil
}

// runRelated needs only the vocabulary, so it skips the cache and clients.
func runRelated(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	maxCount, err := cmd.Flags().GetInt("max")
	if err != nil {
		return err
	}

	vocabulary, _, _, err := app.LoadClassifier(cfg.Classifier, logger)
	if err != nil {
		return err
	}

	input := strings.Join(args, " ")
	for _, name := range vocabulary.Related(input, maxCount) {
		fmt.Fprintln(cmd.OutOrStdout(), name)
	}
	return nil
}
