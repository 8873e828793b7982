package storage

import (
	"encoding/json"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"curvescope/internal/model"
)

func TestNewEventRecordBuy(t *testing.T) {
	buy := model.BuyEvent{
		LogRef: model.LogRef{
			Address:     common.HexToAddress("0xcc"),
			BlockNumber: 42,
			TxHash:      common.HexToHash("0xabc"),
			TxIndex:     1,
			LogIndex:    2,
		},
		Trader:        common.HexToAddress("0x11"),
		Token:         common.HexToAddress("0x22"),
		AmountIn:      big.NewInt(1000),
		AmountOut:     big.NewInt(900),
		ReserveNative: big.NewInt(5000),
		ReserveToken:  big.NewInt(7000),
	}

	record := NewEventRecord(buy)
	if record.Type != "Buy" || record.BlockNumber != 42 || record.TxIndex != 1 || record.LogIndex != 2 {
		t.Fatalf("record header mismatch: %+v", record)
	}

	payload, ok := record.Payload.(TradePayload)
	if !ok {
		t.Fatalf("payload type mismatch: %T", record.Payload)
	}
	if payload.AmountIn != "1000" || payload.ReserveToken != "7000" {
		t.Fatalf("payload mismatch: %+v", payload)
	}
}

func TestNewEventRecordSwapKeepsSigns(t *testing.T) {
	swap := model.SwapEvent{
		LogRef:       model.LogRef{BlockNumber: 7},
		Amount0:      big.NewInt(-1500),
		Amount1:      big.NewInt(2500),
		SqrtPriceX96: big.NewInt(1),
		Liquidity:    big.NewInt(2),
		Tick:         -887220,
	}

	record := NewEventRecord(swap)
	payload, ok := record.Payload.(SwapPayload)
	if !ok {
		t.Fatalf("payload type mismatch: %T", record.Payload)
	}
	if payload.Amount0 != "-1500" || payload.Amount1 != "2500" || payload.Tick != -887220 {
		t.Fatalf("swap payload mismatch: %+v", payload)
	}

	// String encoding survives a JSON round trip without precision loss.
	line, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(line), `"amount0":"-1500"`) {
		t.Fatalf("amounts not string-encoded: %s", line)
	}
}

func TestNewEventRecordNilAmounts(t *testing.T) {
	record := NewEventRecord(model.SyncEvent{Token: common.HexToAddress("0x22")})
	payload, ok := record.Payload.(SyncPayload)
	if !ok {
		t.Fatalf("payload type mismatch: %T", record.Payload)
	}
	if payload.ReserveNative != "0" || payload.ReserveToken != "0" {
		t.Fatalf("nil amounts should serialize as zero: %+v", payload)
	}
}
