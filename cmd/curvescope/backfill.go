package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"curvescope/internal/chain"
	"curvescope/internal/config"
	"curvescope/internal/curve"
	"curvescope/internal/decode"
	"curvescope/internal/dex"
	"curvescope/internal/indexer"
	"curvescope/internal/storage"
	"curvescope/internal/storage/postgres"
)

func runBackfill(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}
	if cfg.CurveAddress == "" {
		return fmt.Errorf("curve contract address is required")
	}

	addresses, err := indexer.ParseAddresses([]string{cfg.CurveAddress})
	if err != nil {
		return err
	}

	filter, err := buildFilter(cfg.EventTypes, cfg.Tokens, cfg.Pools)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	decoder, err := newDecoder()
	if err != nil {
		return err
	}

	to := cfg.ToBlock
	if to == 0 {
		latest, err := chainClient.LatestBlockNumber(ctx)
		if err != nil {
			return fmt.Errorf("get latest block: %w", err)
		}
		to = latest
	}

	ix, err := indexer.New(indexer.Config{
		Addresses:         addresses,
		MaxSpan:           cfg.MaxSpan,
		Concurrency:       cfg.Concurrency,
		MaxRetries:        cfg.MaxRetries,
		RetryBackoff:      cfg.RetryBackoff,
		RequestsPerSecond: cfg.RequestsPerSecond,
		StrictDecode:      cfg.StrictDecode,
	}, chainClient, decoder, logger)
	if err != nil {
		return err
	}

	logger.Info("backfill start",
		zap.Uint64("from", cfg.FromBlock),
		zap.Uint64("to", to),
		zap.Uint64("max_span", cfg.MaxSpan),
		zap.Int("concurrency", cfg.Concurrency),
		zap.Bool("strict_decode", cfg.StrictDecode),
	)

	result, err := ix.FetchEvents(ctx, cfg.FromBlock, to, filter)
	if err != nil {
		return err
	}

	for _, skipped := range result.Skipped {
		logger.Warn("skipped log",
			zap.Uint64("block", skipped.BlockNumber),
			zap.String("tx", skipped.TxHash.Hex()),
			zap.Uint("log_index", skipped.LogIndex),
			zap.Error(skipped.Err),
		)
	}

	sinks, closeSinks, err := buildSinks(ctx, cfg.Out, cfg.PgDSN)
	if err != nil {
		return err
	}
	defer closeSinks()

	for _, sink := range sinks {
		if err := sink.PutEventBatch(result.Events); err != nil {
			return fmt.Errorf("store events: %w", err)
		}
	}

	logger.Info("backfill complete",
		zap.Int("events", len(result.Events)),
		zap.Int("skipped", len(result.Skipped)),
	)

	return nil
}

func newDecoder() (*decode.Multi, error) {
	curveDecoder, err := curve.NewDecoder()
	if err != nil {
		return nil, err
	}
	swapDecoder, err := dex.NewSwapDecoder()
	if err != nil {
		return nil, err
	}
	return decode.NewMulti(curveDecoder, swapDecoder), nil
}

func buildSinks(ctx context.Context, out, pgDSN string) ([]storage.Sink, func(), error) {
	var sinks []storage.Sink
	var closers []func()

	if out != "" {
		sinks = append(sinks, storage.NewJsonlSink(out))
	}
	if pgDSN != "" {
		store, err := postgres.NewStore(ctx, pgDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		sinks = append(sinks, store)
		closers = append(closers, store.Close)
	}

	closeAll := func() {
		for _, closeFn := range closers {
			closeFn()
		}
	}
	return sinks, closeAll, nil
}
