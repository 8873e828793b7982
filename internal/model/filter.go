package model

import (
	"sort"

	"github.com/ethereum/go-ethereum/common"
)

// Filter restricts which decoded events a session delivers. The zero value
// accepts everything. Filters are immutable; the With methods return copies,
// so a base filter can derive several sessions safely under concurrent use.
//
// Event-type membership applies to every event. The token set applies to
// bonding-curve events, the pool set to DEX swaps; an empty set means no
// restriction on that axis.
type Filter struct {
	eventTypes map[EventType]struct{}
	tokens     map[common.Address]struct{}
	pools      map[common.Address]struct{}
}

// WithEventTypes returns a copy of the filter restricted to the given types.
func (f Filter) WithEventTypes(eventTypes ...EventType) Filter {
	out := f.clone()
	out.eventTypes = make(map[EventType]struct{}, len(eventTypes))
	for _, t := range eventTypes {
		out.eventTypes[t] = struct{}{}
	}
	return out
}

// WithTokens returns a copy of the filter restricted to the given tokens.
func (f Filter) WithTokens(tokens ...common.Address) Filter {
	out := f.clone()
	out.tokens = make(map[common.Address]struct{}, len(tokens))
	for _, addr := range tokens {
		out.tokens[addr] = struct{}{}
	}
	return out
}

// WithPools returns a copy of the filter restricted to the given pools.
func (f Filter) WithPools(pools ...common.Address) Filter {
	out := f.clone()
	out.pools = make(map[common.Address]struct{}, len(pools))
	for _, addr := range pools {
		out.pools[addr] = struct{}{}
	}
	return out
}

func (f Filter) clone() Filter {
	out := Filter{}
	if f.eventTypes != nil {
		out.eventTypes = make(map[EventType]struct{}, len(f.eventTypes))
		for t := range f.eventTypes {
			out.eventTypes[t] = struct{}{}
		}
	}
	if f.tokens != nil {
		out.tokens = make(map[common.Address]struct{}, len(f.tokens))
		for addr := range f.tokens {
			out.tokens[addr] = struct{}{}
		}
	}
	if f.pools != nil {
		out.pools = make(map[common.Address]struct{}, len(f.pools))
		for addr := range f.pools {
			out.pools[addr] = struct{}{}
		}
	}
	return out
}

// Match reports whether the event passes the filter. Historical and live
// paths share this decision so both deliver the same events for the same
// criteria.
func (f Filter) Match(event Event) bool {
	if len(f.eventTypes) > 0 {
		if _, ok := f.eventTypes[event.Type()]; !ok {
			return false
		}
	}
	if tokenEvent, ok := event.(TokenEvent); ok {
		if len(f.tokens) > 0 {
			if _, ok := f.tokens[tokenEvent.TokenAddress()]; !ok {
				return false
			}
		}
		return true
	}
	if swap, ok := event.(SwapEvent); ok && len(f.pools) > 0 {
		if _, ok := f.pools[swap.Pool()]; !ok {
			return false
		}
	}
	return true
}

// EventTypes returns the restricted event types in stable order, or nil when
// the filter accepts all types.
func (f Filter) EventTypes() []EventType {
	if len(f.eventTypes) == 0 {
		return nil
	}
	out := make([]EventType, 0, len(f.eventTypes))
	for t := range f.eventTypes {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Pools returns the restricted pool addresses in stable order, or nil.
func (f Filter) Pools() []common.Address {
	return sortedAddresses(f.pools)
}

// Tokens returns the restricted token addresses in stable order, or nil.
func (f Filter) Tokens() []common.Address {
	return sortedAddresses(f.tokens)
}

func sortedAddresses(set map[common.Address]struct{}) []common.Address {
	if len(set) == 0 {
		return nil
	}
	out := make([]common.Address, 0, len(set))
	for addr := range set {
		out = append(out, addr)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Hex() < out[j].Hex()
	})
	return out
}
