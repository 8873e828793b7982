package decode

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"curvescope/internal/model"
)

// Decoder turns a raw log into a typed domain event. Implementations are
// stateless and safe for concurrent use.
type Decoder interface {
	// Signatures maps every event type this decoder understands to its
	// topic0 signature hash.
	Signatures() map[model.EventType]common.Hash
	CanDecode(topic0 common.Hash) bool
	Decode(log types.Log) (model.Event, error)
}

// ErrorKind distinguishes the two decode failure classes.
type ErrorKind int

const (
	// UnknownSignature means no known event matches the log's topic0.
	UnknownSignature ErrorKind = iota + 1
	// Malformed means the topic count or data length does not match the
	// layout of the matched signature.
	Malformed
)

// Error is a per-log decode failure. It is local and recoverable: callers
// decide whether to skip the log or abort.
type Error struct {
	Kind   ErrorKind
	Topic0 common.Hash
	Reason string
}

func (e *Error) Error() string {
	switch e.Kind {
	case UnknownSignature:
		return fmt.Sprintf("unknown signature %s", e.Topic0.Hex())
	default:
		return fmt.Sprintf("malformed log %s: %s", e.Topic0.Hex(), e.Reason)
	}
}

// NewUnknownSignature builds an UnknownSignature error for topic0.
func NewUnknownSignature(topic0 common.Hash) error {
	return &Error{Kind: UnknownSignature, Topic0: topic0}
}

// NewMalformed builds a Malformed error for topic0.
func NewMalformed(topic0 common.Hash, format string, args ...interface{}) error {
	return &Error{Kind: Malformed, Topic0: topic0, Reason: fmt.Sprintf(format, args...)}
}

// IsUnknownSignature reports whether err is an UnknownSignature decode error.
func IsUnknownSignature(err error) bool {
	var decodeErr *Error
	return errors.As(err, &decodeErr) && decodeErr.Kind == UnknownSignature
}

// IsMalformed reports whether err is a Malformed decode error.
func IsMalformed(err error) bool {
	var decodeErr *Error
	return errors.As(err, &decodeErr) && decodeErr.Kind == Malformed
}

// Multi dispatches logs across several decoders by topic0.
type Multi struct {
	decoders []Decoder
	byTopic  map[common.Hash]Decoder
}

// NewMulti combines decoders into a single Decoder. Later decoders win on
// signature collisions.
func NewMulti(decoders ...Decoder) *Multi {
	byTopic := make(map[common.Hash]Decoder)
	for _, d := range decoders {
		for _, topic0 := range d.Signatures() {
			byTopic[topic0] = d
		}
	}
	return &Multi{decoders: decoders, byTopic: byTopic}
}

// Signatures merges the signature maps of all member decoders.
func (m *Multi) Signatures() map[model.EventType]common.Hash {
	out := make(map[model.EventType]common.Hash)
	for _, d := range m.decoders {
		for eventType, topic0 := range d.Signatures() {
			out[eventType] = topic0
		}
	}
	return out
}

// CanDecode checks whether any member decoder handles topic0.
func (m *Multi) CanDecode(topic0 common.Hash) bool {
	_, ok := m.byTopic[topic0]
	return ok
}

// Decode routes the log to the decoder owning its topic0.
func (m *Multi) Decode(log types.Log) (model.Event, error) {
	if len(log.Topics) == 0 {
		return nil, NewMalformed(common.Hash{}, "missing topics")
	}
	decoder, ok := m.byTopic[log.Topics[0]]
	if !ok {
		return nil, NewUnknownSignature(log.Topics[0])
	}
	return decoder.Decode(log)
}

// TopicFilter derives the server-side topic0 list for a filter: the
// signatures of the restricted event types, or every known signature when
// the filter does not restrict types.
func TopicFilter(decoder Decoder, filter model.Filter) []common.Hash {
	signatures := decoder.Signatures()
	restricted := filter.EventTypes()
	if restricted == nil {
		restricted = make([]model.EventType, 0, len(signatures))
		for eventType := range signatures {
			restricted = append(restricted, eventType)
		}
	}
	out := make([]common.Hash, 0, len(restricted))
	for _, eventType := range restricted {
		if topic0, ok := signatures[eventType]; ok {
			out = append(out, topic0)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Hex() < out[j].Hex() })
	return out
}
