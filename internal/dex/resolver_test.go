package dex

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
)

var (
	resolverToken = common.HexToAddress("0x1010101010101010101010101010101010101010")
	resolverQuote = common.HexToAddress("0x2020202020202020202020202020202020202020")
	pool500       = common.HexToAddress("0x0500050005000500050005000500050005000500")
	pool3000      = common.HexToAddress("0x3000300030003000300030003000300030003000")
)

// fakeCaller answers getPool calls from a fee-to-pool table and counts calls.
type fakeCaller struct {
	mu    sync.Mutex
	calls int
	pools map[uint32]common.Address
	err   error
}

func (c *fakeCaller) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()

	if c.err != nil {
		return nil, c.err
	}

	// getPool call data: 4-byte selector, tokenA, tokenB, fee words.
	fee := new(big.Int).SetBytes(msg.Data[4+64 : 4+96])
	pool := c.pools[uint32(fee.Uint64())]
	return common.LeftPadBytes(pool.Bytes(), 32), nil
}

func (c *fakeCaller) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func TestDiscoverPoolsOmitsEmptyTiers(t *testing.T) {
	caller := &fakeCaller{pools: map[uint32]common.Address{
		500:  pool500,
		3000: pool3000,
		// 10000 tier absent: factory answers the zero address.
	}}
	resolver, err := NewResolver(ResolverConfig{
		Factory: common.HexToAddress("0xf1"),
		Quote:   resolverQuote,
	}, caller, nil)
	if err != nil {
		t.Fatalf("resolver: %v", err)
	}

	pools, err := resolver.DiscoverPools(context.Background(), []common.Address{resolverToken})
	if err != nil {
		t.Fatalf("discover: %v", err)
	}

	identities := pools[resolverToken]
	if len(identities) != 2 {
		t.Fatalf("expected 2 identities, got %d: %+v", len(identities), identities)
	}
	if identities[0].Fee != 500 || identities[0].Pool != pool500 {
		t.Fatalf("tier 500 mismatch: %+v", identities[0])
	}
	if identities[1].Fee != 3000 || identities[1].Pool != pool3000 {
		t.Fatalf("tier 3000 mismatch: %+v", identities[1])
	}
	for _, identity := range identities {
		if identity.Token != resolverToken || identity.Quote != resolverQuote {
			t.Fatalf("identity addresses mismatch: %+v", identity)
		}
	}
	if got := caller.callCount(); got != len(DefaultFeeTiers) {
		t.Fatalf("expected %d calls, got %d", len(DefaultFeeTiers), got)
	}
}

func TestDiscoverPoolsCachesResults(t *testing.T) {
	caller := &fakeCaller{pools: map[uint32]common.Address{
		500:   pool500,
		3000:  pool3000,
		10000: common.HexToAddress("0x9000900090009000900090009000900090009000"),
	}}
	resolver, err := NewResolver(ResolverConfig{
		Factory: common.HexToAddress("0xf1"),
		Quote:   resolverQuote,
	}, caller, nil)
	if err != nil {
		t.Fatalf("resolver: %v", err)
	}

	// Duplicate tokens in the request collapse into one lookup set.
	first, err := resolver.DiscoverPools(context.Background(), []common.Address{resolverToken, resolverToken})
	if err != nil {
		t.Fatalf("first discover: %v", err)
	}
	if got := caller.callCount(); got != 3 {
		t.Fatalf("expected 3 calls after first discover, got %d", got)
	}

	second, err := resolver.DiscoverPools(context.Background(), []common.Address{resolverToken})
	if err != nil {
		t.Fatalf("second discover: %v", err)
	}
	if got := caller.callCount(); got != 3 {
		t.Fatalf("expected no new calls on cached discover, got %d", got)
	}
	if len(first[resolverToken]) != 3 || len(second[resolverToken]) != 3 {
		t.Fatalf("cached results differ: %d vs %d", len(first[resolverToken]), len(second[resolverToken]))
	}

	cached := resolver.Cached()
	if len(cached) != 3 {
		t.Fatalf("expected 3 cached identities, got %d", len(cached))
	}
}

func TestDiscoverPoolsProviderFailure(t *testing.T) {
	caller := &fakeCaller{err: errors.New("connection reset")}
	resolver, err := NewResolver(ResolverConfig{
		Factory: common.HexToAddress("0xf1"),
		Quote:   resolverQuote,
	}, caller, nil)
	if err != nil {
		t.Fatalf("resolver: %v", err)
	}

	if _, err := resolver.DiscoverPools(context.Background(), []common.Address{resolverToken}); !errors.Is(err, ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
	if len(resolver.Cached()) != 0 {
		t.Fatalf("failed discover must not populate the cache")
	}
}

func TestDiscoverPoolsCustomTiers(t *testing.T) {
	caller := &fakeCaller{pools: map[uint32]common.Address{500: pool500}}
	resolver, err := NewResolver(ResolverConfig{
		Factory:  common.HexToAddress("0xf1"),
		Quote:    resolverQuote,
		FeeTiers: []uint32{500},
	}, caller, nil)
	if err != nil {
		t.Fatalf("resolver: %v", err)
	}

	pools, err := resolver.DiscoverPools(context.Background(), []common.Address{resolverToken})
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if len(pools[resolverToken]) != 1 || pools[resolverToken][0].Fee != 500 {
		t.Fatalf("custom tier mismatch: %+v", pools[resolverToken])
	}
	if got := caller.callCount(); got != 1 {
		t.Fatalf("expected 1 call, got %d", got)
	}
}
