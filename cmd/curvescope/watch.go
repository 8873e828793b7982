package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"curvescope/internal/chain"
	"curvescope/internal/config"
	"curvescope/internal/indexer"
	"curvescope/internal/model"
	"curvescope/internal/stream"
)

func runWatch(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadWatch(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.WSURL == "" {
		return fmt.Errorf("websocket url is required")
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

	chainClient, err := chain.NewClient(ctx, cfg.WSURL)
	if err != nil {
		return fmt.Errorf("connect websocket: %w", err)
	}
	defer chainClient.Close()

	decoder, err := newDecoder()
	if err != nil {
		return err
	}

	session, err := stream.NewSession(stream.Config{
		Addresses:     addresses,
		MaxReconnects: cfg.MaxReconnects,
		BaseBackoff:   cfg.BaseBackoff,
		MaxBackoff:    cfg.MaxBackoff,
		Buffer:        cfg.Buffer,
	}, chainClient, decoder, logger)
	if err != nil {
		return err
	}

	sinks, closeSinks, err := buildSinks(ctx, cfg.Out, cfg.PgDSN)
	if err != nil {
		return err
	}
	defer closeSinks()

	items, err := session.Subscribe(ctx, filter)
	if err != nil {
		return err
	}

	logger.Info("watch start", zap.String("curve", cfg.CurveAddress))

	for item := range items {
		if item.Err != nil {
			if errors.Is(item.Err, stream.ErrStreamClosed) {
				return item.Err
			}
			logger.Warn("undecodable log", zap.Error(item.Err))
			continue
		}
		logEvent(logger, item.Event)
		for _, sink := range sinks {
			if err := sink.PutEventBatch([]model.Event{item.Event}); err != nil {
				return fmt.Errorf("store event: %w", err)
			}
		}
	}

	return nil
}

func logEvent(logger *zap.Logger, event model.Event) {
	ref := event.Ref()
	logger.Info("event",
		zap.String("type", event.Type().String()),
		zap.Uint64("block", ref.BlockNumber),
		zap.String("tx", ref.TxHash.Hex()),
		zap.Uint("log_index", ref.LogIndex),
		zap.String("address", ref.Address.Hex()),
	)
}
