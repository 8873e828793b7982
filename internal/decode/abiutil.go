package decode

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// IndexedArguments filters an event's inputs down to the indexed ones.
func IndexedArguments(args abi.Arguments) abi.Arguments {
	indexed := make(abi.Arguments, 0, len(args))
	for _, arg := range args {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	return indexed
}

// CheckTopics verifies the log carries exactly the topics the event declares.
func CheckTopics(event abi.Event, topics []common.Hash) error {
	want := len(IndexedArguments(event.Inputs)) + 1
	if len(topics) != want {
		return NewMalformed(event.ID, "expected %d topics, got %d", want, len(topics))
	}
	return nil
}

// UnpackNonIndexed decodes the data payload against the event's non-indexed
// inputs, mapping layout failures to Malformed.
func UnpackNonIndexed(event abi.Event, data []byte) ([]interface{}, error) {
	if len(data)%32 != 0 {
		return nil, NewMalformed(event.ID, "data length %d is not word aligned", len(data))
	}
	values, err := event.Inputs.NonIndexed().Unpack(data)
	if err != nil {
		return nil, NewMalformed(event.ID, "unpack %s: %v", event.Name, err)
	}
	return values, nil
}

// AsAddress coerces an unpacked ABI value into an address.
func AsAddress(value interface{}) (common.Address, error) {
	switch v := value.(type) {
	case common.Address:
		return v, nil
	case *common.Address:
		return *v, nil
	default:
		return common.Address{}, fmt.Errorf("unsupported address type %T", value)
	}
}

// AsBigInt coerces an unpacked ABI value into a big integer.
func AsBigInt(value interface{}) (*big.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		return new(big.Int).Set(v), nil
	case big.Int:
		return new(big.Int).Set(&v), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	case int8:
		return big.NewInt(int64(v)), nil
	case int16:
		return big.NewInt(int64(v)), nil
	case int32:
		return big.NewInt(int64(v)), nil
	case int64:
		return big.NewInt(v), nil
	default:
		return nil, fmt.Errorf("unsupported int type %T", value)
	}
}

// AsString coerces an unpacked ABI value into a string.
func AsString(value interface{}) (string, error) {
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("unsupported string type %T", value)
	}
	return s, nil
}

// Int24FromBig narrows a big integer into the int24 range.
func Int24FromBig(value *big.Int) (int32, error) {
	min := big.NewInt(-1 << 23)
	max := big.NewInt((1 << 23) - 1)
	if value.Cmp(min) < 0 || value.Cmp(max) > 0 {
		return 0, fmt.Errorf("int24 overflow: %s", value.String())
	}
	return int32(value.Int64()), nil
}
