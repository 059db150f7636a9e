package modbus

import (
	"fmt"
	"math"
	"strings"
)

// Word composition constants.
const (
	wordBits = 16
	byteBits = 8
	lowByte  = 0x00FF
	highByte = 0xFF00
)

// Decode converts raw register words into the descriptor's typed value.
//
// The word slice must be exactly d.Words long, in the order delivered by
// the transport. Decoded values are:
//
//   - text registers: string, trailing NUL padding stripped
//   - enum registers: the member label (string)
//   - numeric registers with scale 1.0: int64 (truncated for display stability)
//   - numeric registers with any other scale: float64
func Decode(d Descriptor, words []uint16) (any, error) {
	if len(words) != int(d.Words) {
		return nil, fmt.Errorf("%w: register 0x%04X expects %d words, got %d",
			ErrReadFailed, d.Address, d.Words, len(words))
	}

	switch d.Type {
	case TypeText:
		return decodeText(words), nil

	case TypeEnum:
		label, err := d.Enum.Label(words[0])
		if err != nil {
			return nil, fmt.Errorf("register 0x%04X: %w", d.Address, err)
		}
		return label, nil

	case TypeUint16:
		return d.applyScale(float64(words[0])), nil

	case TypeInt16:
		return d.applyScale(float64(int16(words[0]))), nil

	case TypeUint32:
		return d.applyScale(float64(composeU32(d.Order, words))), nil

	case TypeInt32:
		return d.applyScale(float64(int32(composeU32(d.Order, words)))), nil

	default:
		return nil, fmt.Errorf("%w: register 0x%04X has type %s",
			ErrUnsupportedType, d.Address, d.Type)
	}
}

// Encode converts a typed value into raw register words for a write.
//
// Text registers are not writable (ErrUnsupportedType). Enum registers
// accept the member label or a raw integer and always encode to one word.
// Numeric values are unscaled (round((v-offset)/scale)), range-checked for
// the register width, and split high word first regardless of the
// descriptor's read word order: writes are canonically big-endian word
// order in this protocol.
func Encode(d Descriptor, value any) ([]uint16, error) {
	switch d.Type {
	case TypeText:
		return nil, fmt.Errorf("%w: text register 0x%04X is not writable",
			ErrUnsupportedType, d.Address)

	case TypeEnum:
		return encodeEnum(d, value)

	case TypeInt16, TypeUint16, TypeInt32, TypeUint32:
		return encodeNumeric(d, value)

	default:
		return nil, fmt.Errorf("%w: register 0x%04X has type %s",
			ErrUnsupportedType, d.Address, d.Type)
	}
}

// decodeText unpacks two ASCII bytes per word, high byte first.
func decodeText(words []uint16) string {
	var sb strings.Builder
	sb.Grow(len(words) * 2)
	for _, w := range words {
		sb.WriteByte(byte((w & highByte) >> byteBits))
		sb.WriteByte(byte(w & lowByte))
	}
	return strings.TrimRight(sb.String(), "\x00")
}

func composeU32(order WordOrder, words []uint16) uint32 {
	if order == LowWordFirst {
		return uint32(words[1])<<wordBits | uint32(words[0])
	}
	return uint32(words[0])<<wordBits | uint32(words[1])
}

// applyScale converts the raw numeric value to engineering units.
// An unscaled register (scale 1.0) truncates to an integer so repeated
// reads of a steady register render identically.
func (d Descriptor) applyScale(raw float64) any {
	v := raw*d.Scale + d.Offset
	if d.Scale == 1.0 {
		return int64(v)
	}
	return v
}

func encodeEnum(d Descriptor, value any) ([]uint16, error) {
	if label, ok := value.(string); ok {
		raw, err := d.Enum.Value(label)
		if err != nil {
			return nil, fmt.Errorf("register 0x%04X: %w", d.Address, err)
		}
		return []uint16{raw}, nil
	}

	// Accept a raw integer for callers that already hold the wire value,
	// but require it to be a defined member.
	f, err := toFloat(value)
	if err != nil {
		return nil, fmt.Errorf("register 0x%04X: %w", d.Address, err)
	}
	raw := uint16(f)
	if float64(raw) != f {
		return nil, fmt.Errorf("%w: register 0x%04X: %v is not a valid enum value",
			ErrInvalidValue, d.Address, value)
	}
	if _, err := d.Enum.Label(raw); err != nil {
		return nil, fmt.Errorf("register 0x%04X: %w", d.Address, err)
	}
	return []uint16{raw}, nil
}

func encodeNumeric(d Descriptor, value any) ([]uint16, error) {
	f, err := toFloat(value)
	if err != nil {
		return nil, fmt.Errorf("register 0x%04X: %w", d.Address, err)
	}

	raw := math.Round((f - d.Offset) / d.Scale)

	switch d.Type {
	case TypeUint16:
		if raw < 0 || raw > math.MaxUint16 {
			return nil, rangeError(d, value)
		}
		return []uint16{uint16(raw)}, nil

	case TypeInt16:
		if raw < math.MinInt16 || raw > math.MaxInt16 {
			return nil, rangeError(d, value)
		}
		return []uint16{uint16(int16(raw))}, nil

	case TypeUint32:
		if raw < 0 || raw > math.MaxUint32 {
			return nil, rangeError(d, value)
		}
		return splitU32(uint32(raw)), nil

	case TypeInt32:
		if raw < math.MinInt32 || raw > math.MaxInt32 {
			return nil, rangeError(d, value)
		}
		return splitU32(uint32(int32(raw))), nil

	default:
		return nil, fmt.Errorf("%w: register 0x%04X has type %s",
			ErrUnsupportedType, d.Address, d.Type)
	}
}

// splitU32 splits a composed value high word first. Write word order is
// fixed by the protocol and does not follow the descriptor's read order.
func splitU32(v uint32) []uint16 {
	return []uint16{uint16(v >> wordBits), uint16(v & math.MaxUint16)}
}

func rangeError(d Descriptor, value any) error {
	return fmt.Errorf("%w: %v does not fit %s register 0x%04X after unscaling",
		ErrInvalidValue, value, d.Type, d.Address)
}

// toFloat widens any numeric value the codec or config layer may hand us.
func toFloat(value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int16:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint16:
		return float64(v), nil
	case uint32:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("%w: %T is not numeric", ErrInvalidValue, value)
	}
}
