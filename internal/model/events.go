package model

import (
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// LogRef pins an event to its position on chain. The (BlockNumber, TxIndex,
// LogIndex) triple is the total order callers rely on.
type LogRef struct {
	Address     common.Address `json:"address"`
	BlockNumber uint64         `json:"block_number"`
	TxHash      common.Hash    `json:"tx_hash"`
	TxIndex     uint           `json:"tx_index"`
	LogIndex    uint           `json:"log_index"`
}

// Ref returns the reference itself so embedding types satisfy Event.
func (r LogRef) Ref() LogRef { return r }

// Less orders references by (block, transaction, log) ascending.
func (r LogRef) Less(other LogRef) bool {
	if r.BlockNumber != other.BlockNumber {
		return r.BlockNumber < other.BlockNumber
	}
	if r.TxIndex != other.TxIndex {
		return r.TxIndex < other.TxIndex
	}
	return r.LogIndex < other.LogIndex
}

// RefFromLog extracts the reference fields from a raw log.
func RefFromLog(log types.Log) LogRef {
	return LogRef{
		Address:     log.Address,
		BlockNumber: log.BlockNumber,
		TxHash:      log.TxHash,
		TxIndex:     log.TxIndex,
		LogIndex:    log.Index,
	}
}

// Event is the closed set of decoded domain events. Unrecognized log
// signatures are not representable here; they surface as decode errors.
type Event interface {
	Type() EventType
	Ref() LogRef
}

// TokenEvent is implemented by curve events that carry a subject token.
type TokenEvent interface {
	Event
	TokenAddress() common.Address
}

// CreateEvent marks a new bonding-curve token launch.
type CreateEvent struct {
	LogRef
	Creator       common.Address
	Token         common.Address
	Name          string
	Symbol        string
	TokenURI      string
	VirtualNative *big.Int
	VirtualToken  *big.Int
}

func (e CreateEvent) Type() EventType              { return EventCreate }
func (e CreateEvent) TokenAddress() common.Address { return e.Token }

// BuyEvent records a purchase against the curve, including the reserve state
// after the trade.
type BuyEvent struct {
	LogRef
	Trader        common.Address
	Token         common.Address
	AmountIn      *big.Int
	AmountOut     *big.Int
	ReserveNative *big.Int
	ReserveToken  *big.Int
}

func (e BuyEvent) Type() EventType              { return EventBuy }
func (e BuyEvent) TokenAddress() common.Address { return e.Token }

// SellEvent records a sale against the curve, including the reserve state
// after the trade.
type SellEvent struct {
	LogRef
	Trader        common.Address
	Token         common.Address
	AmountIn      *big.Int
	AmountOut     *big.Int
	ReserveNative *big.Int
	ReserveToken  *big.Int
}

func (e SellEvent) Type() EventType              { return EventSell }
func (e SellEvent) TokenAddress() common.Address { return e.Token }

// SyncEvent carries the curve reserve state after a balance change.
type SyncEvent struct {
	LogRef
	Token         common.Address
	ReserveNative *big.Int
	ReserveToken  *big.Int
}

func (e SyncEvent) Type() EventType              { return EventSync }
func (e SyncEvent) TokenAddress() common.Address { return e.Token }

// LockEvent marks a curve reaching its target and locking further trades.
type LockEvent struct {
	LogRef
	Token common.Address
}

func (e LockEvent) Type() EventType              { return EventLock }
func (e LockEvent) TokenAddress() common.Address { return e.Token }

// ListedEvent marks a locked token graduating to a DEX pool.
type ListedEvent struct {
	LogRef
	Token common.Address
	Pool  common.Address
}

func (e ListedEvent) Type() EventType              { return EventListed }
func (e ListedEvent) TokenAddress() common.Address { return e.Token }

// SwapEvent is a decoded V3 pool swap. Amount0 and Amount1 are signed;
// the emitting pool guarantees opposite signs for a well-formed swap.
type SwapEvent struct {
	LogRef
	Sender       common.Address
	Recipient    common.Address
	Amount0      *big.Int
	Amount1      *big.Int
	SqrtPriceX96 *big.Int
	Liquidity    *big.Int
	Tick         int32
}

func (e SwapEvent) Type() EventType { return EventSwap }

// Pool returns the emitting pool address.
func (e SwapEvent) Pool() common.Address { return e.Address }

// SortEvents orders events by their chain position ascending.
func SortEvents(events []Event) {
	sort.Slice(events, func(i, j int) bool {
		return events[i].Ref().Less(events[j].Ref())
	})
}
