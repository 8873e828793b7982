package indexer

import (
	"testing"

	"curvescope/internal/model"
)

func TestParseAddresses(t *testing.T) {
	addresses, err := ParseAddresses([]string{
		" 0x1111111111111111111111111111111111111111 ",
		"",
		"0x2222222222222222222222222222222222222222",
	})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(addresses) != 2 {
		t.Fatalf("expected 2 addresses, got %d", len(addresses))
	}

	if _, err := ParseAddresses([]string{"not-an-address"}); err == nil {
		t.Fatalf("expected error for invalid address")
	}
}

func TestParseEventTypes(t *testing.T) {
	eventTypes, err := ParseEventTypes([]string{"buy", " Sell ", "SWAP"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := []model.EventType{model.EventBuy, model.EventSell, model.EventSwap}
	for i, eventType := range want {
		if eventTypes[i] != eventType {
			t.Fatalf("eventTypes[%d] = %v, want %v", i, eventTypes[i], eventType)
		}
	}

	if _, err := ParseEventTypes([]string{"mint"}); err == nil {
		t.Fatalf("expected error for unknown event type")
	}
}
