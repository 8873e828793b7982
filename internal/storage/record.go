package storage

import (
	"math/big"

	"curvescope/internal/model"
)

// EventRecord is the serialized form of a decoded event. Big integers are
// string-encoded so consumers never lose precision to float parsing.
type EventRecord struct {
	Type        string      `json:"type"`
	Address     string      `json:"address"`
	BlockNumber uint64      `json:"block_number"`
	TxHash      string      `json:"tx_hash"`
	TxIndex     uint64      `json:"tx_index"`
	LogIndex    uint64      `json:"log_index"`
	Payload     interface{} `json:"payload"`
}

// CreatePayload is the serialized Create event body.
type CreatePayload struct {
	Creator       string `json:"creator"`
	Token         string `json:"token"`
	Name          string `json:"name"`
	Symbol        string `json:"symbol"`
	TokenURI      string `json:"token_uri"`
	VirtualNative string `json:"virtual_native"`
	VirtualToken  string `json:"virtual_token"`
}

// TradePayload is the serialized Buy or Sell event body.
type TradePayload struct {
	Trader        string `json:"trader"`
	Token         string `json:"token"`
	AmountIn      string `json:"amount_in"`
	AmountOut     string `json:"amount_out"`
	ReserveNative string `json:"reserve_native"`
	ReserveToken  string `json:"reserve_token"`
}

// SyncPayload is the serialized Sync event body.
type SyncPayload struct {
	Token         string `json:"token"`
	ReserveNative string `json:"reserve_native"`
	ReserveToken  string `json:"reserve_token"`
}

// TokenPayload is the serialized Lock event body.
type TokenPayload struct {
	Token string `json:"token"`
}

// ListedPayload is the serialized Listed event body.
type ListedPayload struct {
	Token string `json:"token"`
	Pool  string `json:"pool"`
}

// SwapPayload is the serialized Swap event body.
type SwapPayload struct {
	Sender       string `json:"sender"`
	Recipient    string `json:"recipient"`
	Amount0      string `json:"amount0"`
	Amount1      string `json:"amount1"`
	SqrtPriceX96 string `json:"sqrt_price_x96"`
	Liquidity    string `json:"liquidity"`
	Tick         int32  `json:"tick"`
}

// NewEventRecord converts a decoded event into its serialized record.
func NewEventRecord(event model.Event) EventRecord {
	ref := event.Ref()
	record := EventRecord{
		Type:        event.Type().String(),
		Address:     ref.Address.Hex(),
		BlockNumber: ref.BlockNumber,
		TxHash:      ref.TxHash.Hex(),
		TxIndex:     uint64(ref.TxIndex),
		LogIndex:    uint64(ref.LogIndex),
	}

	switch e := event.(type) {
	case model.CreateEvent:
		record.Payload = CreatePayload{
			Creator:       e.Creator.Hex(),
			Token:         e.Token.Hex(),
			Name:          e.Name,
			Symbol:        e.Symbol,
			TokenURI:      e.TokenURI,
			VirtualNative: bigString(e.VirtualNative),
			VirtualToken:  bigString(e.VirtualToken),
		}
	case model.BuyEvent:
		record.Payload = TradePayload{
			Trader:        e.Trader.Hex(),
			Token:         e.Token.Hex(),
			AmountIn:      bigString(e.AmountIn),
			AmountOut:     bigString(e.AmountOut),
			ReserveNative: bigString(e.ReserveNative),
			ReserveToken:  bigString(e.ReserveToken),
		}
	case model.SellEvent:
		record.Payload = TradePayload{
			Trader:        e.Trader.Hex(),
			Token:         e.Token.Hex(),
			AmountIn:      bigString(e.AmountIn),
			AmountOut:     bigString(e.AmountOut),
			ReserveNative: bigString(e.ReserveNative),
			ReserveToken:  bigString(e.ReserveToken),
		}
	case model.SyncEvent:
		record.Payload = SyncPayload{
			Token:         e.Token.Hex(),
			ReserveNative: bigString(e.ReserveNative),
			ReserveToken:  bigString(e.ReserveToken),
		}
	case model.LockEvent:
		record.Payload = TokenPayload{Token: e.Token.Hex()}
	case model.ListedEvent:
		record.Payload = ListedPayload{
			Token: e.Token.Hex(),
			Pool:  e.Pool.Hex(),
		}
	case model.SwapEvent:
		record.Payload = SwapPayload{
			Sender:       e.Sender.Hex(),
			Recipient:    e.Recipient.Hex(),
			Amount0:      bigString(e.Amount0),
			Amount1:      bigString(e.Amount1),
			SqrtPriceX96: bigString(e.SqrtPriceX96),
			Liquidity:    bigString(e.Liquidity),
			Tick:         e.Tick,
		}
	}

	return record
}

func bigString(value *big.Int) string {
	if value == nil {
		return "0"
	}
	return value.String()
}
