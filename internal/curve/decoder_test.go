package curve

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"curvescope/internal/decode"
	"curvescope/internal/model"
)

var (
	testTrader = common.HexToAddress("0x1111111111111111111111111111111111111111")
	testToken  = common.HexToAddress("0x2222222222222222222222222222222222222222")
)

func topicFromAddress(addr common.Address) common.Hash {
	return common.BytesToHash(addr.Bytes())
}

func buildLog(topic0 common.Hash, indexed []common.Hash, data []byte) types.Log {
	topics := make([]common.Hash, 0, len(indexed)+1)
	topics = append(topics, topic0)
	topics = append(topics, indexed...)
	return types.Log{
		Address:     common.HexToAddress("0x9999999999999999999999999999999999999999"),
		Topics:      topics,
		Data:        data,
		BlockNumber: 12345,
		TxHash:      common.HexToHash("0xdef"),
		TxIndex:     7,
		Index:       3,
	}
}

func TestDecodeBuy(t *testing.T) {
	curveABI, err := CurveABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}
	decoder, err := NewDecoder()
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}

	data, err := curveABI.Events["Buy"].Inputs.NonIndexed().Pack(
		big.NewInt(1000),
		big.NewInt(900),
		big.NewInt(50000),
		big.NewInt(70000),
	)
	if err != nil {
		t.Fatalf("pack buy: %v", err)
	}

	log := buildLog(curveABI.Events["Buy"].ID, []common.Hash{
		topicFromAddress(testTrader),
		topicFromAddress(testToken),
	}, data)

	event, err := decoder.Decode(log)
	if err != nil {
		t.Fatalf("decode buy: %v", err)
	}

	buy, ok := event.(model.BuyEvent)
	if !ok {
		t.Fatalf("decoded type mismatch: %T", event)
	}
	if buy.Trader != testTrader || buy.Token != testToken {
		t.Fatalf("address mismatch: %+v", buy)
	}
	if buy.AmountIn.String() != "1000" || buy.AmountOut.String() != "900" {
		t.Fatalf("amounts mismatch: %+v", buy)
	}
	if buy.ReserveNative.String() != "50000" || buy.ReserveToken.String() != "70000" {
		t.Fatalf("reserves mismatch: %+v", buy)
	}
	if buy.BlockNumber != 12345 || buy.TxIndex != 7 || buy.LogIndex != 3 {
		t.Fatalf("log ref mismatch: %+v", buy.Ref())
	}
}

func TestDecodeCreate(t *testing.T) {
	curveABI, err := CurveABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}
	decoder, err := NewDecoder()
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}

	data, err := curveABI.Events["Create"].Inputs.NonIndexed().Pack(
		"Meme Token",
		"MEME",
		"ipfs://meta",
		big.NewInt(30_000_000),
		big.NewInt(1_000_000_000),
	)
	if err != nil {
		t.Fatalf("pack create: %v", err)
	}

	creator := common.HexToAddress("0x3333333333333333333333333333333333333333")
	log := buildLog(curveABI.Events["Create"].ID, []common.Hash{
		topicFromAddress(creator),
		topicFromAddress(testToken),
	}, data)

	event, err := decoder.Decode(log)
	if err != nil {
		t.Fatalf("decode create: %v", err)
	}

	create, ok := event.(model.CreateEvent)
	if !ok {
		t.Fatalf("decoded type mismatch: %T", event)
	}
	if create.Creator != creator || create.Token != testToken {
		t.Fatalf("address mismatch: %+v", create)
	}
	if create.Name != "Meme Token" || create.Symbol != "MEME" || create.TokenURI != "ipfs://meta" {
		t.Fatalf("metadata mismatch: %+v", create)
	}
	if create.VirtualNative.String() != "30000000" {
		t.Fatalf("virtual native mismatch: %s", create.VirtualNative)
	}
}

func TestDecodeSyncLockListed(t *testing.T) {
	curveABI, err := CurveABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}
	decoder, err := NewDecoder()
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}

	syncData, err := curveABI.Events["Sync"].Inputs.NonIndexed().Pack(
		big.NewInt(123),
		big.NewInt(456),
	)
	if err != nil {
		t.Fatalf("pack sync: %v", err)
	}
	syncLog := buildLog(curveABI.Events["Sync"].ID, []common.Hash{topicFromAddress(testToken)}, syncData)
	event, err := decoder.Decode(syncLog)
	if err != nil {
		t.Fatalf("decode sync: %v", err)
	}
	syncEvent, ok := event.(model.SyncEvent)
	if !ok {
		t.Fatalf("sync type mismatch: %T", event)
	}
	if syncEvent.ReserveNative.String() != "123" || syncEvent.ReserveToken.String() != "456" {
		t.Fatalf("sync reserves mismatch: %+v", syncEvent)
	}

	lockLog := buildLog(curveABI.Events["Lock"].ID, []common.Hash{topicFromAddress(testToken)}, nil)
	event, err = decoder.Decode(lockLog)
	if err != nil {
		t.Fatalf("decode lock: %v", err)
	}
	lockEvent, ok := event.(model.LockEvent)
	if !ok {
		t.Fatalf("lock type mismatch: %T", event)
	}
	if lockEvent.Token != testToken {
		t.Fatalf("lock token mismatch: %+v", lockEvent)
	}

	pool := common.HexToAddress("0x4444444444444444444444444444444444444444")
	listedData, err := curveABI.Events["Listed"].Inputs.NonIndexed().Pack(pool)
	if err != nil {
		t.Fatalf("pack listed: %v", err)
	}
	listedLog := buildLog(curveABI.Events["Listed"].ID, []common.Hash{topicFromAddress(testToken)}, listedData)
	event, err = decoder.Decode(listedLog)
	if err != nil {
		t.Fatalf("decode listed: %v", err)
	}
	listedEvent, ok := event.(model.ListedEvent)
	if !ok {
		t.Fatalf("listed type mismatch: %T", event)
	}
	if listedEvent.Pool != pool {
		t.Fatalf("listed pool mismatch: %+v", listedEvent)
	}
}

func TestDecodeUnknownSignature(t *testing.T) {
	decoder, err := NewDecoder()
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}

	log := buildLog(common.HexToHash("0xdeadbeef"), nil, nil)
	if _, err := decoder.Decode(log); !decode.IsUnknownSignature(err) {
		t.Fatalf("expected unknown signature error, got %v", err)
	}
}

func TestDecodeMalformed(t *testing.T) {
	curveABI, err := CurveABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}
	decoder, err := NewDecoder()
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}

	// Truncated data payload.
	log := buildLog(curveABI.Events["Buy"].ID, []common.Hash{
		topicFromAddress(testTrader),
		topicFromAddress(testToken),
	}, make([]byte, 3*32))
	if _, err := decoder.Decode(log); !decode.IsMalformed(err) {
		t.Fatalf("expected malformed error, got %v", err)
	}

	// Missing indexed topic.
	log = buildLog(curveABI.Events["Buy"].ID, []common.Hash{
		topicFromAddress(testTrader),
	}, make([]byte, 4*32))
	if _, err := decoder.Decode(log); !decode.IsMalformed(err) {
		t.Fatalf("expected malformed error, got %v", err)
	}
}
