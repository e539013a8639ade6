package osc

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Message is a single OSC message: an address pattern plus zero or more
// typed arguments. Supported argument types are int32, int64, float32,
// float64, string, []byte (blob), bool, nil and Timetag.
type Message struct {
	Address   string
	Arguments []any
}

var _ Packet = (*Message)(nil)

// NewMessage returns a Message for the given address and arguments.
func NewMessage(addr string, args ...any) *Message {
	return &Message{Address: addr, Arguments: args}
}

// MarshalBinary implements the encoding.BinaryMarshaler interface.
func (m *Message) MarshalBinary() ([]byte, error) {
	tags := make([]byte, 0, len(m.Arguments)+1)
	tags = append(tags, ',')
	payload := make([]byte, 0, 8*len(m.Arguments))

	for _, arg := range m.Arguments {
		switch v := arg.(type) {
		case int32:
			tags = append(tags, 'i')
			payload = binary.BigEndian.AppendUint32(payload, uint32(v))
		case int64:
			tags = append(tags, 'h')
			payload = binary.BigEndian.AppendUint64(payload, uint64(v))
		case float32:
			tags = append(tags, 'f')
			payload = binary.BigEndian.AppendUint32(payload, math.Float32bits(v))
		case float64:
			tags = append(tags, 'd')
			payload = binary.BigEndian.AppendUint64(payload, math.Float64bits(v))
		case string:
			tags = append(tags, 's')
			payload = appendPaddedString(payload, v)
		case []byte:
			tags = append(tags, 'b')
			payload = appendBlob(payload, v)
		case Timetag:
			tags = append(tags, 't')
			payload = binary.BigEndian.AppendUint64(payload, uint64(v))
		case bool:
			if v {
				tags = append(tags, 'T')
			} else {
				tags = append(tags, 'F')
			}
		case nil:
			tags = append(tags, 'N')
		default:
			return nil, fmt.Errorf("osc: unsupported argument type %T", v)
		}
	}

	buf := appendPaddedString(nil, m.Address)
	buf = appendPaddedString(buf, string(tags))
	return append(buf, payload...), nil
}

func decodeMessage(data []byte) (*Message, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("%w: length %d not 4-byte aligned", ErrInvalid, len(data))
	}

	addr, n, err := readPaddedString(data)
	if err != nil {
		return nil, err
	}
	rest := data[n:]

	if len(rest) == 0 {
		return nil, fmt.Errorf("%w: missing type tag string", ErrInvalid)
	}
	tags, n, err := readPaddedString(rest)
	if err != nil {
		return nil, err
	}
	rest = rest[n:]
	if len(tags) == 0 || tags[0] != ',' {
		return nil, fmt.Errorf("%w: type tag string %q", ErrInvalid, tags)
	}

	msg := &Message{Address: addr}
	if len(tags) == 1 {
		return msg, nil
	}
	msg.Arguments = make([]any, 0, len(tags)-1)

	for _, tag := range tags[1:] {
		switch tag {
		case 'i':
			if len(rest) < 4 {
				return nil, truncated(tag)
			}
			msg.Arguments = append(msg.Arguments, int32(binary.BigEndian.Uint32(rest)))
			rest = rest[4:]
		case 'h':
			if len(rest) < 8 {
				return nil, truncated(tag)
			}
			msg.Arguments = append(msg.Arguments, int64(binary.BigEndian.Uint64(rest)))
			rest = rest[8:]
		case 'f':
			if len(rest) < 4 {
				return nil, truncated(tag)
			}
			msg.Arguments = append(msg.Arguments, math.Float32frombits(binary.BigEndian.Uint32(rest)))
			rest = rest[4:]
		case 'd':
			if len(rest) < 8 {
				return nil, truncated(tag)
			}
			msg.Arguments = append(msg.Arguments, math.Float64frombits(binary.BigEndian.Uint64(rest)))
			rest = rest[8:]
		case 's':
			s, n, err := readPaddedString(rest)
			if err != nil {
				return nil, err
			}
			msg.Arguments = append(msg.Arguments, s)
			rest = rest[n:]
		case 'b':
			blob, n, err := readBlob(rest)
			if err != nil {
				return nil, err
			}
			msg.Arguments = append(msg.Arguments, blob)
			rest = rest[n:]
		case 't':
			if len(rest) < 8 {
				return nil, truncated(tag)
			}
			msg.Arguments = append(msg.Arguments, Timetag(binary.BigEndian.Uint64(rest)))
			rest = rest[8:]
		case 'T':
			msg.Arguments = append(msg.Arguments, true)
		case 'F':
			msg.Arguments = append(msg.Arguments, false)
		case 'N':
			msg.Arguments = append(msg.Arguments, nil)
		default:
			return nil, fmt.Errorf("%w: unsupported type tag %q", ErrInvalid, tag)
		}
	}

	return msg, nil
}

func truncated(tag rune) error {
	return fmt.Errorf("%w: payload truncated for type tag %q", ErrInvalid, tag)
}
