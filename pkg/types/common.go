package types

import (
	"fmt"
	"reflect"

	"github.com/BurntSushi/toml"

	sdkmath "cosmossdk.io/math"
)

// SdkInt wraps sdkmath.Int so large protocol amounts (market caps, liquidation target
// debts) round-trip through TOML/mapstructure as decimal strings instead of machine
// integers, which would overflow or lose precision.
type SdkInt struct {
	Value sdkmath.Int
}

// UnmarshalTOML implements TOML unmarshalling for SdkInt.
func (s *SdkInt) UnmarshalTOML(data []byte) error {
	var str string
	if err := toml.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("failed to unmarshal sdkmath.Int: %w", err)
	}

	res, ok := sdkmath.NewIntFromString(str)
	if !ok {
		return fmt.Errorf("invalid sdkmath.Int value: %s", str)
	}

	s.Value = res
	return nil
}

// UnmarshalText implements TOML unmarshalling for SdkInt.
func (s *SdkInt) UnmarshalText(text []byte) error {
	str := string(text)
	res, ok := sdkmath.NewIntFromString(str)
	if !ok {
		return fmt.Errorf("invalid sdkmath.Int value: %s", str)
	}
	s.Value = res
	return nil
}

// MarshalText implements TOML marshalling for SdkInt.
func (s SdkInt) MarshalText() ([]byte, error) {
	return []byte(s.Value.String()), nil
}

// SdkIntDecodeHook lets mapstructure decode a TOML string into an SdkInt.
func SdkIntDecodeHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if to != reflect.TypeOf(SdkInt{}) {
		return data, nil
	}

	switch from.Kind() {
	case reflect.String:
		str, ok := data.(string)
		if !ok {
			return nil, fmt.Errorf("expected string for SdkInt, got %T", data)
		}
		value, ok := sdkmath.NewIntFromString(str)
		if !ok {
			return nil, fmt.Errorf("invalid sdkmath.Int value: %s", str)
		}
		return SdkInt{Value: value}, nil
	default:
		return nil, fmt.Errorf("unsupported type for SdkInt: %s", from.Kind())
	}
}
