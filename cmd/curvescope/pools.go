package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"curvescope/internal/chain"
	"curvescope/internal/config"
	"curvescope/internal/dex"
	"curvescope/internal/indexer"
)

func runPools(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadPools(cfgFile, cmd.Flags())
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
	if !common.IsHexAddress(cfg.Factory) {
		return fmt.Errorf("valid factory address is required")
	}
	if !common.IsHexAddress(cfg.Quote) {
		return fmt.Errorf("valid quote address is required")
	}

	tokens, err := indexer.ParseAddresses(cfg.Tokens)
	if err != nil {
		return err
	}
	if len(tokens) == 0 {
		return fmt.Errorf("at least one token is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	resolver, err := dex.NewResolver(dex.ResolverConfig{
		Factory:     common.HexToAddress(cfg.Factory),
		Quote:       common.HexToAddress(cfg.Quote),
		Parallelism: cfg.Parallelism,
	}, chainClient, logger)
	if err != nil {
		return err
	}

	pools, err := resolver.DiscoverPools(ctx, tokens)
	if err != nil {
		return err
	}

	logger.Info("discovery complete", zap.Int("tokens", len(tokens)), zap.Int("with_pools", len(pools)))

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	for token, identities := range pools {
		entry := struct {
			Token string      `json:"token"`
			Pools []poolEntry `json:"pools"`
		}{Token: token.Hex()}
		for _, identity := range identities {
			entry.Pools = append(entry.Pools, poolEntry{
				Pool:  identity.Pool.Hex(),
				Quote: identity.Quote.Hex(),
				Fee:   identity.Fee,
			})
		}
		if err := encoder.Encode(entry); err != nil {
			return err
		}
	}

	return nil
}

type poolEntry struct {
	Pool  string `json:"pool"`
	Quote string `json:"quote"`
	Fee   uint32 `json:"fee"`
}
