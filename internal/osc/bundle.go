package osc

import (
	"encoding/binary"
	"fmt"
)

const bundleTag = "#bundle"

// Timetag is a 64-bit fixed-point OSC time tag.
type Timetag uint64

// TimetagImmediate instructs the receiver to process the bundle now.
const TimetagImmediate Timetag = 1

// Bundle is the "#bundle" container: a time tag followed by zero or more
// size-prefixed packets.
type Bundle struct {
	Timetag  Timetag
	Elements []Packet
}

var _ Packet = (*Bundle)(nil)

// MarshalBinary implements the encoding.BinaryMarshaler interface.
func (b *Bundle) MarshalBinary() ([]byte, error) {
	buf := appendPaddedString(nil, bundleTag)
	buf = binary.BigEndian.AppendUint64(buf, uint64(b.Timetag))
	for _, el := range b.Elements {
		eb, err := el.MarshalBinary()
		if err != nil {
			return nil, err
		}
		buf = binary.BigEndian.AppendUint32(buf, uint32(len(eb)))
		buf = append(buf, eb...)
	}
	return buf, nil
}

func decodeBundle(data []byte) (*Bundle, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("%w: length %d not 4-byte aligned", ErrInvalid, len(data))
	}

	tag, n, err := readPaddedString(data)
	if err != nil {
		return nil, err
	}
	if tag != bundleTag {
		return nil, fmt.Errorf("%w: bundle tag %q", ErrInvalid, tag)
	}
	rest := data[n:]

	if len(rest) < 8 {
		return nil, fmt.Errorf("%w: bundle missing time tag", ErrInvalid)
	}
	b := &Bundle{Timetag: Timetag(binary.BigEndian.Uint64(rest))}
	rest = rest[8:]

	for len(rest) > 0 {
		if len(rest) < 4 {
			return nil, fmt.Errorf("%w: bundle element missing size", ErrInvalid)
		}
		size := int(int32(binary.BigEndian.Uint32(rest)))
		rest = rest[4:]
		if size < 0 || size > len(rest) {
			return nil, fmt.Errorf("%w: bundle element length %d exceeds packet", ErrInvalid, size)
		}
		el, err := Decode(rest[:size])
		if err != nil {
			return nil, err
		}
		b.Elements = append(b.Elements, el)
		rest = rest[size:]
	}

	return b, nil
}
