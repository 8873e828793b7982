package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"curvescope/internal/indexer"
	"curvescope/internal/model"
)

func main() {
	godotenv.Load()

	root := &cobra.Command{
		Use:          "curvescope",
		Short:        "Bonding-curve and DEX event indexer",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	backfillCmd := &cobra.Command{
		Use:   "backfill",
		Short: "Fetch historical events over a block range",
		RunE:  runBackfill,
	}

	backfillCmd.Flags().String("rpc", "", "node RPC URL")
	backfillCmd.Flags().String("curve", "", "bonding-curve contract address")
	backfillCmd.Flags().Uint64("from", 0, "start block (inclusive)")
	backfillCmd.Flags().Uint64("to", 0, "end block (inclusive), 0 means latest")
	backfillCmd.Flags().StringSlice("event", nil, "event types to include (comma-separated)")
	backfillCmd.Flags().StringSlice("token", nil, "token addresses to include (comma-separated)")
	backfillCmd.Flags().StringSlice("pool", nil, "pool addresses to include (comma-separated)")
	backfillCmd.Flags().Uint64("max-span", 2000, "blocks per chunk query")
	backfillCmd.Flags().Int("concurrency", 4, "simultaneous chunk fetches")
	backfillCmd.Flags().Float64("rps", 0, "chunk queries per second, 0 disables throttling")
	backfillCmd.Flags().Int("max-retries", 5, "maximum retry attempts per chunk")
	backfillCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	backfillCmd.Flags().Bool("strict-decode", false, "abort on the first decode failure")
	backfillCmd.Flags().String("out", "", "output JSONL path")
	backfillCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	backfillCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(backfillCmd)

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream live events over a WebSocket subscription",
		RunE:  runWatch,
	}

	watchCmd.Flags().String("ws", "", "node WebSocket URL")
	watchCmd.Flags().String("curve", "", "bonding-curve contract address")
	watchCmd.Flags().StringSlice("event", nil, "event types to include (comma-separated)")
	watchCmd.Flags().StringSlice("token", nil, "token addresses to include (comma-separated)")
	watchCmd.Flags().StringSlice("pool", nil, "pool addresses to include (comma-separated)")
	watchCmd.Flags().Int("max-reconnects", 10, "reconnect attempts before giving up")
	watchCmd.Flags().Duration("base-backoff", time.Second, "initial reconnect backoff")
	watchCmd.Flags().Duration("max-backoff", 60*time.Second, "maximum reconnect backoff")
	watchCmd.Flags().Int("buffer", 64, "delivery channel capacity")
	watchCmd.Flags().String("out", "", "output JSONL path")
	watchCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	watchCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(watchCmd)

	poolsCmd := &cobra.Command{
		Use:   "pools",
		Short: "Discover DEX pools for tokens across fee tiers",
		RunE:  runPools,
	}

	poolsCmd.Flags().String("rpc", "", "node RPC URL")
	poolsCmd.Flags().String("factory", "", "V3 factory contract address")
	poolsCmd.Flags().String("quote", "", "quote asset address (wrapped native)")
	poolsCmd.Flags().StringSlice("token", nil, "token addresses to resolve (comma-separated)")
	poolsCmd.Flags().Int("parallelism", 4, "simultaneous factory calls")
	poolsCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(poolsCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

func buildFilter(eventNames, tokens, pools []string) (model.Filter, error) {
	filter := model.Filter{}

	eventTypes, err := indexer.ParseEventTypes(eventNames)
	if err != nil {
		return model.Filter{}, err
	}
	if len(eventTypes) > 0 {
		filter = filter.WithEventTypes(eventTypes...)
	}

	tokenAddresses, err := indexer.ParseAddresses(tokens)
	if err != nil {
		return model.Filter{}, fmt.Errorf("token filter: %w", err)
	}
	if len(tokenAddresses) > 0 {
		filter = filter.WithTokens(tokenAddresses...)
	}

	poolAddresses, err := indexer.ParseAddresses(pools)
	if err != nil {
		return model.Filter{}, fmt.Errorf("pool filter: %w", err)
	}
	if len(poolAddresses) > 0 {
		filter = filter.WithPools(poolAddresses...)
	}

	return filter, nil
}
