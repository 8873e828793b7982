package storage

import (
	"bufio"
	"encoding/json"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"curvescope/internal/model"
)

func TestJsonlSinkAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "events.jsonl")
	sink := NewJsonlSink(path)

	first := []model.Event{
		model.BuyEvent{
			LogRef:   model.LogRef{BlockNumber: 1},
			Token:    common.HexToAddress("0x22"),
			AmountIn: big.NewInt(10),
		},
	}
	second := []model.Event{
		model.LockEvent{
			LogRef: model.LogRef{BlockNumber: 2},
			Token:  common.HexToAddress("0x22"),
		},
	}

	if err := sink.PutEventBatch(first); err != nil {
		t.Fatalf("first batch: %v", err)
	}
	if err := sink.PutEventBatch(second); err != nil {
		t.Fatalf("second batch: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer file.Close()

	var records []EventRecord
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var record EventRecord
		if err := json.Unmarshal(scanner.Bytes(), &record); err != nil {
			t.Fatalf("unmarshal line: %v", err)
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(records))
	}
	if records[0].Type != "Buy" || records[1].Type != "Lock" {
		t.Fatalf("record order mismatch: %+v", records)
	}
}

func TestJsonlSinkEmptyBatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	sink := NewJsonlSink(path)

	if err := sink.PutEventBatch(nil); err != nil {
		t.Fatalf("empty batch: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("empty batch must not create the file")
	}
}
