package curve

import (
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"curvescope/internal/decode"
	"curvescope/internal/model"
)

// Decoder decodes bonding-curve contract logs into typed events. The variant
// is chosen solely by topic0; signatures outside the closed set fail with an
// UnknownSignature error.
type Decoder struct {
	curveABI    abi.ABI
	topicToType map[common.Hash]model.EventType
	typeToTopic map[model.EventType]common.Hash
}

// NewDecoder builds a curve log decoder.
func NewDecoder() (*Decoder, error) {
	curveABI, err := CurveABI()
	if err != nil {
		return nil, err
	}

	typeToTopic := map[model.EventType]common.Hash{
		model.EventCreate: curveABI.Events["Create"].ID,
		model.EventBuy:    curveABI.Events["Buy"].ID,
		model.EventSell:   curveABI.Events["Sell"].ID,
		model.EventSync:   curveABI.Events["Sync"].ID,
		model.EventLock:   curveABI.Events["Lock"].ID,
		model.EventListed: curveABI.Events["Listed"].ID,
	}
	topicToType := make(map[common.Hash]model.EventType, len(typeToTopic))
	for eventType, topic0 := range typeToTopic {
		topicToType[topic0] = eventType
	}

	return &Decoder{
		curveABI:    curveABI,
		topicToType: topicToType,
		typeToTopic: typeToTopic,
	}, nil
}

// Signatures maps each curve event type to its topic0 hash.
func (d *Decoder) Signatures() map[model.EventType]common.Hash {
	out := make(map[model.EventType]common.Hash, len(d.typeToTopic))
	for eventType, topic0 := range d.typeToTopic {
		out[eventType] = topic0
	}
	return out
}

// CanDecode checks whether topic0 belongs to the curve event set.
func (d *Decoder) CanDecode(topic0 common.Hash) bool {
	_, ok := d.topicToType[topic0]
	return ok
}

// Decode converts a raw curve log into its event variant.
func (d *Decoder) Decode(log types.Log) (model.Event, error) {
	if len(log.Topics) == 0 {
		return nil, decode.NewMalformed(common.Hash{}, "missing topics")
	}
	eventType, ok := d.topicToType[log.Topics[0]]
	if !ok {
		return nil, decode.NewUnknownSignature(log.Topics[0])
	}

	switch eventType {
	case model.EventCreate:
		return d.decodeCreate(log)
	case model.EventBuy:
		return d.decodeBuy(log)
	case model.EventSell:
		return d.decodeSell(log)
	case model.EventSync:
		return d.decodeSync(log)
	case model.EventLock:
		return d.decodeLock(log)
	default:
		return d.decodeListed(log)
	}
}

func (d *Decoder) decodeCreate(log types.Log) (model.Event, error) {
	event := d.curveABI.Events["Create"]
	if err := decode.CheckTopics(event, log.Topics); err != nil {
		return nil, err
	}

	var indexed struct {
		Creator common.Address
		Token   common.Address
	}
	if err := abi.ParseTopics(&indexed, decode.IndexedArguments(event.Inputs), log.Topics[1:]); err != nil {
		return nil, decode.NewMalformed(event.ID, "parse topics: %v", err)
	}

	values, err := decode.UnpackNonIndexed(event, log.Data)
	if err != nil {
		return nil, err
	}
	if len(values) != 5 {
		return nil, decode.NewMalformed(event.ID, "unexpected create values: %d", len(values))
	}

	name, err := decode.AsString(values[0])
	if err != nil {
		return nil, decode.NewMalformed(event.ID, "name: %v", err)
	}
	symbol, err := decode.AsString(values[1])
	if err != nil {
		return nil, decode.NewMalformed(event.ID, "symbol: %v", err)
	}
	tokenURI, err := decode.AsString(values[2])
	if err != nil {
		return nil, decode.NewMalformed(event.ID, "token uri: %v", err)
	}
	virtualNative, err := decode.AsBigInt(values[3])
	if err != nil {
		return nil, decode.NewMalformed(event.ID, "virtual native: %v", err)
	}
	virtualToken, err := decode.AsBigInt(values[4])
	if err != nil {
		return nil, decode.NewMalformed(event.ID, "virtual token: %v", err)
	}

	return model.CreateEvent{
		LogRef:        model.RefFromLog(log),
		Creator:       indexed.Creator,
		Token:         indexed.Token,
		Name:          name,
		Symbol:        symbol,
		TokenURI:      tokenURI,
		VirtualNative: virtualNative,
		VirtualToken:  virtualToken,
	}, nil
}

func (d *Decoder) decodeBuy(log types.Log) (model.Event, error) {
	trade, err := d.decodeTrade(d.curveABI.Events["Buy"], log)
	if err != nil {
		return nil, err
	}
	return model.BuyEvent(trade), nil
}

func (d *Decoder) decodeSell(log types.Log) (model.Event, error) {
	trade, err := d.decodeTrade(d.curveABI.Events["Sell"], log)
	if err != nil {
		return nil, err
	}
	return model.SellEvent(trade), nil
}

// tradeFields is the shared layout of Buy and Sell.
type tradeFields = model.BuyEvent

func (d *Decoder) decodeTrade(event abi.Event, log types.Log) (tradeFields, error) {
	if err := decode.CheckTopics(event, log.Topics); err != nil {
		return tradeFields{}, err
	}

	var indexed struct {
		Trader common.Address
		Token  common.Address
	}
	if err := abi.ParseTopics(&indexed, decode.IndexedArguments(event.Inputs), log.Topics[1:]); err != nil {
		return tradeFields{}, decode.NewMalformed(event.ID, "parse topics: %v", err)
	}

	if len(log.Data) != 4*32 {
		return tradeFields{}, decode.NewMalformed(event.ID, "data length %d, want %d", len(log.Data), 4*32)
	}
	values, err := decode.UnpackNonIndexed(event, log.Data)
	if err != nil {
		return tradeFields{}, err
	}

	amountIn, err := decode.AsBigInt(values[0])
	if err != nil {
		return tradeFields{}, decode.NewMalformed(event.ID, "amount in: %v", err)
	}
	amountOut, err := decode.AsBigInt(values[1])
	if err != nil {
		return tradeFields{}, decode.NewMalformed(event.ID, "amount out: %v", err)
	}
	reserveNative, err := decode.AsBigInt(values[2])
	if err != nil {
		return tradeFields{}, decode.NewMalformed(event.ID, "reserve native: %v", err)
	}
	reserveToken, err := decode.AsBigInt(values[3])
	if err != nil {
		return tradeFields{}, decode.NewMalformed(event.ID, "reserve token: %v", err)
	}

	return tradeFields{
		LogRef:        model.RefFromLog(log),
		Trader:        indexed.Trader,
		Token:         indexed.Token,
		AmountIn:      amountIn,
		AmountOut:     amountOut,
		ReserveNative: reserveNative,
		ReserveToken:  reserveToken,
	}, nil
}

func (d *Decoder) decodeSync(log types.Log) (model.Event, error) {
	event := d.curveABI.Events["Sync"]
	if err := decode.CheckTopics(event, log.Topics); err != nil {
		return nil, err
	}

	var indexed struct {
		Token common.Address
	}
	if err := abi.ParseTopics(&indexed, decode.IndexedArguments(event.Inputs), log.Topics[1:]); err != nil {
		return nil, decode.NewMalformed(event.ID, "parse topics: %v", err)
	}

	if len(log.Data) != 2*32 {
		return nil, decode.NewMalformed(event.ID, "data length %d, want %d", len(log.Data), 2*32)
	}
	values, err := decode.UnpackNonIndexed(event, log.Data)
	if err != nil {
		return nil, err
	}

	reserveNative, err := decode.AsBigInt(values[0])
	if err != nil {
		return nil, decode.NewMalformed(event.ID, "reserve native: %v", err)
	}
	reserveToken, err := decode.AsBigInt(values[1])
	if err != nil {
		return nil, decode.NewMalformed(event.ID, "reserve token: %v", err)
	}

	return model.SyncEvent{
		LogRef:        model.RefFromLog(log),
		Token:         indexed.Token,
		ReserveNative: reserveNative,
		ReserveToken:  reserveToken,
	}, nil
}

func (d *Decoder) decodeLock(log types.Log) (model.Event, error) {
	event := d.curveABI.Events["Lock"]
	if err := decode.CheckTopics(event, log.Topics); err != nil {
		return nil, err
	}
	if len(log.Data) != 0 {
		return nil, decode.NewMalformed(event.ID, "data length %d, want 0", len(log.Data))
	}

	var indexed struct {
		Token common.Address
	}
	if err := abi.ParseTopics(&indexed, decode.IndexedArguments(event.Inputs), log.Topics[1:]); err != nil {
		return nil, decode.NewMalformed(event.ID, "parse topics: %v", err)
	}

	return model.LockEvent{
		LogRef: model.RefFromLog(log),
		Token:  indexed.Token,
	}, nil
}

func (d *Decoder) decodeListed(log types.Log) (model.Event, error) {
	event := d.curveABI.Events["Listed"]
	if err := decode.CheckTopics(event, log.Topics); err != nil {
		return nil, err
	}

	var indexed struct {
		Token common.Address
	}
	if err := abi.ParseTopics(&indexed, decode.IndexedArguments(event.Inputs), log.Topics[1:]); err != nil {
		return nil, decode.NewMalformed(event.ID, "parse topics: %v", err)
	}

	if len(log.Data) != 32 {
		return nil, decode.NewMalformed(event.ID, "data length %d, want 32", len(log.Data))
	}
	values, err := decode.UnpackNonIndexed(event, log.Data)
	if err != nil {
		return nil, err
	}
	pool, err := decode.AsAddress(values[0])
	if err != nil {
		return nil, decode.NewMalformed(event.ID, "pool: %v", err)
	}

	return model.ListedEvent{
		LogRef: model.RefFromLog(log),
		Token:  indexed.Token,
		Pool:   pool,
	}, nil
}
