package model

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestLogRefLess(t *testing.T) {
	cases := []struct {
		name string
		a, b LogRef
		want bool
	}{
		{"earlier block", LogRef{BlockNumber: 1}, LogRef{BlockNumber: 2}, true},
		{"later block", LogRef{BlockNumber: 3}, LogRef{BlockNumber: 2}, false},
		{"same block earlier tx", LogRef{BlockNumber: 5, TxIndex: 0}, LogRef{BlockNumber: 5, TxIndex: 1}, true},
		{"same tx earlier log", LogRef{BlockNumber: 5, TxIndex: 1, LogIndex: 2}, LogRef{BlockNumber: 5, TxIndex: 1, LogIndex: 3}, true},
		{"identical", LogRef{BlockNumber: 5, TxIndex: 1, LogIndex: 2}, LogRef{BlockNumber: 5, TxIndex: 1, LogIndex: 2}, false},
	}
	for _, tc := range cases {
		if got := tc.a.Less(tc.b); got != tc.want {
			t.Fatalf("%s: Less = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestSortEvents(t *testing.T) {
	events := []Event{
		BuyEvent{LogRef: LogRef{BlockNumber: 10, TxIndex: 2, LogIndex: 0}},
		SyncEvent{LogRef: LogRef{BlockNumber: 9, TxIndex: 5, LogIndex: 7}},
		SwapEvent{LogRef: LogRef{BlockNumber: 10, TxIndex: 0, LogIndex: 3}},
		SellEvent{LogRef: LogRef{BlockNumber: 10, TxIndex: 0, LogIndex: 1}},
	}

	SortEvents(events)

	for i := 1; i < len(events); i++ {
		if events[i].Ref().Less(events[i-1].Ref()) {
			t.Fatalf("events out of order at %d: %+v before %+v", i, events[i-1].Ref(), events[i].Ref())
		}
	}
	if events[0].Ref().BlockNumber != 9 {
		t.Fatalf("expected block 9 first, got %d", events[0].Ref().BlockNumber)
	}
}

func TestSwapPoolIsEmitterAddress(t *testing.T) {
	pool := common.HexToAddress("0x3333333333333333333333333333333333333333")
	swap := SwapEvent{LogRef: LogRef{Address: pool}}
	if swap.Pool() != pool {
		t.Fatalf("Pool() = %s, want %s", swap.Pool().Hex(), pool.Hex())
	}
}
