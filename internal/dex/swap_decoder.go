package dex

import (
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"curvescope/internal/decode"
	"curvescope/internal/model"
)

// SwapDecoder decodes V3 pool Swap logs. The single known signature has two
// indexed address topics and five non-indexed words.
type SwapDecoder struct {
	swapEvent abi.Event
}

// NewSwapDecoder builds a Swap log decoder.
func NewSwapDecoder() (*SwapDecoder, error) {
	poolABI, err := PoolABI()
	if err != nil {
		return nil, err
	}
	return &SwapDecoder{swapEvent: poolABI.Events["Swap"]}, nil
}

// Signatures maps the Swap event type to its topic0 hash.
func (d *SwapDecoder) Signatures() map[model.EventType]common.Hash {
	return map[model.EventType]common.Hash{model.EventSwap: d.swapEvent.ID}
}

// CanDecode checks whether topic0 is the Swap signature.
func (d *SwapDecoder) CanDecode(topic0 common.Hash) bool {
	return topic0 == d.swapEvent.ID
}

// Decode converts a raw pool log into a SwapEvent. Amount signs are carried
// exactly as encoded; the decoder validates layout, not flow direction.
func (d *SwapDecoder) Decode(log types.Log) (model.Event, error) {
	if len(log.Topics) == 0 {
		return nil, decode.NewMalformed(common.Hash{}, "missing topics")
	}
	if log.Topics[0] != d.swapEvent.ID {
		return nil, decode.NewUnknownSignature(log.Topics[0])
	}
	if err := decode.CheckTopics(d.swapEvent, log.Topics); err != nil {
		return nil, err
	}

	var indexed struct {
		Sender    common.Address
		Recipient common.Address
	}
	if err := abi.ParseTopics(&indexed, decode.IndexedArguments(d.swapEvent.Inputs), log.Topics[1:]); err != nil {
		return nil, decode.NewMalformed(d.swapEvent.ID, "parse topics: %v", err)
	}

	if len(log.Data) != 5*32 {
		return nil, decode.NewMalformed(d.swapEvent.ID, "data length %d, want %d", len(log.Data), 5*32)
	}
	values, err := decode.UnpackNonIndexed(d.swapEvent, log.Data)
	if err != nil {
		return nil, err
	}

	amount0, err := decode.AsBigInt(values[0])
	if err != nil {
		return nil, decode.NewMalformed(d.swapEvent.ID, "amount0: %v", err)
	}
	amount1, err := decode.AsBigInt(values[1])
	if err != nil {
		return nil, decode.NewMalformed(d.swapEvent.ID, "amount1: %v", err)
	}
	sqrtPrice, err := decode.AsBigInt(values[2])
	if err != nil {
		return nil, decode.NewMalformed(d.swapEvent.ID, "sqrt price: %v", err)
	}
	liquidity, err := decode.AsBigInt(values[3])
	if err != nil {
		return nil, decode.NewMalformed(d.swapEvent.ID, "liquidity: %v", err)
	}
	tickValue, err := decode.AsBigInt(values[4])
	if err != nil {
		return nil, decode.NewMalformed(d.swapEvent.ID, "tick: %v", err)
	}
	tick, err := decode.Int24FromBig(tickValue)
	if err != nil {
		return nil, decode.NewMalformed(d.swapEvent.ID, "tick: %v", err)
	}

	return model.SwapEvent{
		LogRef:       model.RefFromLog(log),
		Sender:       indexed.Sender,
		Recipient:    indexed.Recipient,
		Amount0:      amount0,
		Amount1:      amount1,
		SqrtPriceX96: sqrtPrice,
		Liquidity:    liquidity,
		Tick:         tick,
	}, nil
}
