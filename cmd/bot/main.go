package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/flor3z/mlb-stats-bot/internal/bot"
	"github.com/flor3z/mlb-stats-bot/internal/config"
	"github.com/flor3z/mlb-stats-bot/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "mlb-stats-bot",
	Short: "Discord bot answering MLB schedule, score and player stat questions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(logsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return err
	}

	// Set up logging
	logger := logging.Setup(cfg.Log.Level, os.Stdout)

	logger.Info("Starting MLB Stats Bot", "prefix", cfg.Discord.Prefix)

	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create and start the bot
	b, err := bot.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to create bot", "error", err)
		return err
	}

	// Start the bot
	if err := b.Start(ctx); err != nil {
		logger.Error("Failed to start bot", "error", err)
		if stopErr := b.Stop(); stopErr != nil {
			logger.Error("Error during shutdown", "error", stopErr)
		}
		return err
	}

	logger.Info("Bot is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	cancel()

	// Stop the bot gracefully
	if err := b.Stop(); err != nil {
		logger.Error("Error during shutdown", "error", err)
	}

	logger.Info("Bot stopped")
	return nil
}
