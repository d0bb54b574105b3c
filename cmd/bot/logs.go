package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/flor3z/mlb-stats-bot/internal/activity"
	"github.com/flor3z/mlb-stats-bot/internal/config"
	"github.com/flor3z/mlb-stats-bot/internal/storage"
	"github.com/spf13/cobra"
)

var (
	logsSince  time.Duration
	logsSource string
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Print recent command logs and usage statistics",
	Long: `Reads command log entries written within --since, prints them newest
first, then totals per command and the number of distinct users and guilds.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadEnv()
		if err != nil {
			return err
		}
		return printLogs(cmd.Context(), cmd.OutOrStdout(), cfg, logsSource, logsSince)
	},
	SilenceUsage: true,
}

// printLogs writes the report for entries newer than since to w
func printLogs(ctx context.Context, w io.Writer, cfg *config.Config, source string, since time.Duration) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	reader, closeFn, err := openReader(ctx, cfg, source)
	if err != nil {
		return err
	}
	defer closeFn()

	entries, err := reader.ListSince(ctx, time.Now().Add(-since))
	if err != nil {
		return fmt.Errorf("failed to read command logs: %w", err)
	}
	return activity.WriteReport(w, entries)
}

func init() {
	logsCmd.Flags().DurationVar(&logsSince, "since", 24*time.Hour, "how far back to read")
	logsCmd.Flags().StringVar(&logsSource, "source", "", "sqlite or dynamodb (default: dynamodb when AWS keys are set)")
}

func openReader(ctx context.Context, cfg *config.Config, source string) (activity.Reader, func() error, error) {
	if source == "" {
		source = "sqlite"
		if cfg.DynamoEnabled() {
			source = "dynamodb"
		}
	}

	switch source {
	case "sqlite":
		repo, err := storage.NewRepository(cfg.Database.Path)
		if err != nil {
			return nil, nil, err
		}
		return repo, repo.Close, nil
	case "dynamodb":
		sink, err := storage.NewDynamoSink(ctx, storage.DynamoConfig{
			Region:          cfg.AWS.Region,
			AccessKeyID:     cfg.AWS.AccessKeyID,
			SecretAccessKey: cfg.AWS.SecretAccessKey,
			Table:           cfg.AWS.LogTable,
		})
		if err != nil {
			return nil, nil, err
		}
		return sink, func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown log source %q", source)
	}
}
