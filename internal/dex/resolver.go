package dex

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"curvescope/internal/decode"
	"curvescope/internal/model"
)

// ErrProviderUnavailable marks a factory call that failed at the transport
// level. The resolver surfaces it whole and does not retry internally.
var ErrProviderUnavailable = errors.New("provider unavailable")

// DefaultFeeTiers are the supported V3 fee tiers (0.05%, 0.3%, 1%).
var DefaultFeeTiers = []uint32{500, 3000, 10000}

// ContractCaller performs read-only contract calls.
type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// ResolverConfig configures pool discovery.
type ResolverConfig struct {
	// Factory is the V3 factory or view contract answering getPool.
	Factory common.Address
	// Quote is the asset every token is paired against (wrapped native).
	Quote common.Address
	// FeeTiers overrides DefaultFeeTiers when non-empty.
	FeeTiers []uint32
	// Parallelism bounds concurrent factory calls. Defaults to 4.
	Parallelism int
}

// Resolver discovers canonical pool addresses for tokens across fee tiers
// and caches the results for its lifetime. The cache is additive only.
type Resolver struct {
	cfg        ResolverConfig
	caller     ContractCaller
	factoryABI abi.ABI
	logger     *zap.Logger

	mu    sync.RWMutex
	cache map[poolKey]model.PoolIdentity
}

type poolKey struct {
	token common.Address
	fee   uint32
}

// NewResolver builds a pool resolver over a contract caller.
func NewResolver(cfg ResolverConfig, caller ContractCaller, logger *zap.Logger) (*Resolver, error) {
	if caller == nil {
		return nil, fmt.Errorf("contract caller is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(cfg.FeeTiers) == 0 {
		cfg.FeeTiers = DefaultFeeTiers
	}
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = 4
	}

	factoryABI, err := FactoryABI()
	if err != nil {
		return nil, err
	}

	return &Resolver{
		cfg:        cfg,
		caller:     caller,
		factoryABI: factoryABI,
		logger:     logger,
		cache:      make(map[poolKey]model.PoolIdentity),
	}, nil
}

// DiscoverPools resolves the pools for each token across the configured fee
// tiers. Tiers with no pool (factory returns the zero address) are omitted.
// A transport failure fails the whole call with ErrProviderUnavailable.
func (r *Resolver) DiscoverPools(ctx context.Context, tokens []common.Address) (map[common.Address][]model.PoolIdentity, error) {
	unique := dedupeAddresses(tokens)

	pending := make([]poolKey, 0, len(unique)*len(r.cfg.FeeTiers))
	for _, token := range unique {
		for _, fee := range r.cfg.FeeTiers {
			key := poolKey{token: token, fee: fee}
			if _, ok := r.cachedIdentity(key); ok {
				continue
			}
			pending = append(pending, key)
		}
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(r.cfg.Parallelism)
	for _, pendingKey := range pending {
		key := pendingKey
		group.Go(func() error {
			pool, err := r.getPool(groupCtx, key.token, key.fee)
			if err != nil {
				return fmt.Errorf("%w: getPool(%s, %d): %v", ErrProviderUnavailable, key.token.Hex(), key.fee, err)
			}
			if pool == (common.Address{}) {
				r.logger.Debug("no pool for tier",
					zap.String("token", key.token.Hex()),
					zap.Uint32("fee", key.fee))
				return nil
			}
			r.store(key, model.PoolIdentity{
				Token: key.token,
				Quote: r.cfg.Quote,
				Fee:   key.fee,
				Pool:  pool,
			})
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	out := make(map[common.Address][]model.PoolIdentity, len(unique))
	for _, token := range unique {
		identities := r.poolsForToken(token)
		if len(identities) > 0 {
			out[token] = identities
		}
	}
	return out, nil
}

// Cached returns a copy of every discovered pool identity.
func (r *Resolver) Cached() []model.PoolIdentity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.PoolIdentity, 0, len(r.cache))
	for _, identity := range r.cache {
		out = append(out, identity)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Token != out[j].Token {
			return out[i].Token.Hex() < out[j].Token.Hex()
		}
		return out[i].Fee < out[j].Fee
	})
	return out
}

func (r *Resolver) cachedIdentity(key poolKey) (model.PoolIdentity, bool) {
	r.mu.RLock()
	identity, ok := r.cache[key]
	r.mu.RUnlock()
	return identity, ok
}

func (r *Resolver) store(key poolKey, identity model.PoolIdentity) {
	r.mu.Lock()
	r.cache[key] = identity
	r.mu.Unlock()
}

func (r *Resolver) poolsForToken(token common.Address) []model.PoolIdentity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.PoolIdentity, 0, len(r.cfg.FeeTiers))
	for _, fee := range r.cfg.FeeTiers {
		if identity, ok := r.cache[poolKey{token: token, fee: fee}]; ok {
			out = append(out, identity)
		}
	}
	return out
}

func (r *Resolver) getPool(ctx context.Context, token common.Address, fee uint32) (common.Address, error) {
	data, err := r.factoryABI.Pack("getPool", token, r.cfg.Quote, big.NewInt(int64(fee)))
	if err != nil {
		return common.Address{}, fmt.Errorf("pack getPool: %w", err)
	}
	factory := r.cfg.Factory
	resp, err := r.caller.CallContract(ctx, ethereum.CallMsg{To: &factory, Data: data}, nil)
	if err != nil {
		return common.Address{}, err
	}
	values, err := r.factoryABI.Unpack("getPool", resp)
	if err != nil {
		return common.Address{}, fmt.Errorf("unpack getPool: %w", err)
	}
	pool, err := decode.AsAddress(values[0])
	if err != nil {
		return common.Address{}, fmt.Errorf("getPool result: %w", err)
	}
	return pool, nil
}

func dedupeAddresses(addresses []common.Address) []common.Address {
	seen := make(map[common.Address]struct{}, len(addresses))
	out := make([]common.Address, 0, len(addresses))
	for _, addr := range addresses {
		if _, ok := seen[addr]; ok {
			continue
		}
		seen[addr] = struct{}{}
		out = append(out, addr)
	}
	return out
}
