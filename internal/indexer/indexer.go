package indexer

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"curvescope/internal/decode"
	"curvescope/internal/model"
)

// ErrInvalidRange marks a fetch whose from block exceeds its to block. No
// network call is issued in that case.
var ErrInvalidRange = errors.New("invalid block range")

// ErrProviderUnavailable marks a chunk query that exhausted its retry budget.
// The whole fetch fails; no partial result is returned.
var ErrProviderUnavailable = errors.New("provider unavailable")

// LogFetcher performs historical log queries.
type LogFetcher interface {
	FilterLogs(ctx context.Context, query ethereum.FilterQuery) ([]types.Log, error)
}

// Config holds runtime settings for the indexer.
type Config struct {
	// Addresses are the contracts whose logs are fetched (curve contract
	// and/or pools); filter pool restrictions are appended per call.
	Addresses []common.Address
	// MaxSpan is the largest block span a single chunk query may cover.
	// Defaults to 2000.
	MaxSpan uint64
	// Concurrency bounds simultaneous chunk fetches. Defaults to 4.
	Concurrency int
	// MaxRetries and RetryBackoff drive the per-chunk retry policy.
	MaxRetries   int
	RetryBackoff time.Duration
	// RequestsPerSecond throttles chunk queries when positive.
	RequestsPerSecond float64
	// StrictDecode aborts the whole fetch on the first decode failure
	// instead of collecting it as a skipped-log diagnostic.
	StrictDecode bool
}

// SkippedLog records a per-log decode failure tolerated during a fetch.
type SkippedLog struct {
	BlockNumber uint64
	TxHash      common.Hash
	LogIndex    uint
	Topic0      common.Hash
	Err         error
}

// Result is a completed historical fetch: events in (block, tx, log) order
// plus diagnostics for logs skipped by the decode policy.
type Result struct {
	Events  []model.Event
	Skipped []SkippedLog
}

// Indexer fetches and decodes historical events over a block range.
type Indexer struct {
	cfg     Config
	fetcher LogFetcher
	decoder decode.Decoder
	limiter *rate.Limiter
	logger  *zap.Logger
}

// New builds an Indexer with its dependencies.
func New(cfg Config, fetcher LogFetcher, decoder decode.Decoder, logger *zap.Logger) (*Indexer, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("log fetcher is nil")
	}
	if decoder == nil {
		return nil, fmt.Errorf("decoder is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxSpan == 0 {
		cfg.MaxSpan = 2000
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &Indexer{
		cfg:     cfg,
		fetcher: fetcher,
		decoder: decoder,
		limiter: limiter,
		logger:  logger,
	}, nil
}

// FetchEvents fetches, decodes, and filters every matching event in
// [from, to]. Chunks run concurrently; the returned sequence is always
// sorted by (block_number, tx_index, log_index) ascending.
func (ix *Indexer) FetchEvents(ctx context.Context, from, to uint64, filter model.Filter) (*Result, error) {
	if from > to {
		return nil, fmt.Errorf("%w: from %d > to %d", ErrInvalidRange, from, to)
	}

	chunks, err := SplitRange(from, to, ix.cfg.MaxSpan)
	if err != nil {
		return nil, err
	}

	query := ix.buildQuery(filter)

	events := make([][]model.Event, len(chunks))
	skipped := make([][]SkippedLog, len(chunks))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(ix.cfg.Concurrency)
	for i, chunk := range chunks {
		i, chunk := i, chunk
		group.Go(func() error {
			logs, err := ix.fetchChunk(groupCtx, chunk, query)
			if err != nil {
				return err
			}
			chunkEvents, chunkSkipped, err := ix.decodeLogs(logs, filter)
			if err != nil {
				return err
			}
			events[i] = chunkEvents
			skipped[i] = chunkSkipped
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	result := &Result{}
	for i := range chunks {
		result.Events = append(result.Events, events[i]...)
		result.Skipped = append(result.Skipped, skipped[i]...)
	}
	model.SortEvents(result.Events)

	ix.logger.Debug("fetch complete",
		zap.Uint64("from", from),
		zap.Uint64("to", to),
		zap.Int("chunks", len(chunks)),
		zap.Int("events", len(result.Events)),
		zap.Int("skipped", len(result.Skipped)))

	return result, nil
}

// buildQuery derives the server-side filter: topic0 signatures for the
// restricted event types and the watched addresses plus any filter pools.
// Token restrictions stay client-side; token identity is not always an
// indexed topic.
func (ix *Indexer) buildQuery(filter model.Filter) ethereum.FilterQuery {
	addresses := make([]common.Address, 0, len(ix.cfg.Addresses))
	addresses = append(addresses, ix.cfg.Addresses...)
	addresses = append(addresses, filter.Pools()...)

	query := ethereum.FilterQuery{Addresses: addresses}
	if topics := decode.TopicFilter(ix.decoder, filter); len(topics) > 0 {
		query.Topics = [][]common.Hash{topics}
	}
	return query
}

func (ix *Indexer) fetchChunk(ctx context.Context, chunk BlockRange, query ethereum.FilterQuery) ([]types.Log, error) {
	if ix.limiter != nil {
		if err := ix.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	query.FromBlock = new(big.Int).SetUint64(chunk.From)
	query.ToBlock = new(big.Int).SetUint64(chunk.To)

	var logs []types.Log
	err := withRetry(ctx, ix.cfg.MaxRetries, ix.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		logs, err = ix.fetcher.FilterLogs(ctx, query)
		if err != nil {
			ix.logger.Warn("filter logs failed",
				zap.Error(err),
				zap.Uint64("from", chunk.From),
				zap.Uint64("to", chunk.To))
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: chunk %d-%d: %v", ErrProviderUnavailable, chunk.From, chunk.To, err)
	}
	return logs, nil
}

func (ix *Indexer) decodeLogs(logs []types.Log, filter model.Filter) ([]model.Event, []SkippedLog, error) {
	events := make([]model.Event, 0, len(logs))
	var skipped []SkippedLog
	for _, log := range logs {
		if log.Removed {
			continue
		}
		event, err := ix.decoder.Decode(log)
		if err != nil {
			if ix.cfg.StrictDecode {
				return nil, nil, fmt.Errorf("decode log %s[%d]: %w", log.TxHash.Hex(), log.Index, err)
			}
			skipped = append(skipped, skippedFromLog(log, err))
			continue
		}
		if !filter.Match(event) {
			continue
		}
		events = append(events, event)
	}
	return events, skipped, nil
}

func skippedFromLog(log types.Log, err error) SkippedLog {
	var topic0 common.Hash
	if len(log.Topics) > 0 {
		topic0 = log.Topics[0]
	}
	return SkippedLog{
		BlockNumber: log.BlockNumber,
		TxHash:      log.TxHash,
		LogIndex:    log.Index,
		Topic0:      topic0,
		Err:         err,
	}
}
