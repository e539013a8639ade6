// Package osc implements the OSC 1.0 binary wire format: 4-byte-aligned
// padded strings, a comma-prefixed type tag string, and big-endian typed
// arguments, for both single messages and #bundle containers.
package osc

import (
	"bytes"
	"encoding"
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrInvalid is wrapped by every decode failure. A packet that fails to
// decode is dropped by the caller; it never carries partial results.
var ErrInvalid = errors.New("osc: invalid packet")

// Packet is the interface for Message and Bundle.
type Packet interface {
	encoding.BinaryMarshaler
}

// Decode parses a single OSC packet. It returns *Message for address
// packets and *Bundle for "#bundle" packets.
func Decode(data []byte) (Packet, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty packet", ErrInvalid)
	}
	switch data[0] {
	case '/':
		return decodeMessage(data)
	case '#':
		return decodeBundle(data)
	default:
		return nil, fmt.Errorf("%w: packet starts with 0x%02x", ErrInvalid, data[0])
	}
}

// padBytesNeeded returns how many zero bytes follow a field of n bytes to
// reach the next 4-byte boundary.
func padBytesNeeded(n int) int {
	return (4 - (n % 4)) % 4
}

// readPaddedString reads a zero-terminated, zero-padded string and returns
// it together with the total number of bytes consumed.
func readPaddedString(data []byte) (string, int, error) {
	end := bytes.IndexByte(data, 0)
	if end < 0 {
		return "", 0, fmt.Errorf("%w: unterminated string", ErrInvalid)
	}
	n := end + 1
	n += padBytesNeeded(n)
	if n > len(data) {
		return "", 0, fmt.Errorf("%w: string padding past packet end", ErrInvalid)
	}
	return string(data[:end]), n, nil
}

func appendPaddedString(dst []byte, s string) []byte {
	dst = append(dst, s...)
	zeros := 1 + padBytesNeeded(len(s)+1)
	return append(dst, make([]byte, zeros)...)
}

// readBlob reads a size-prefixed, zero-padded byte block.
func readBlob(data []byte) ([]byte, int, error) {
	if len(data) < 4 {
		return nil, 0, fmt.Errorf("%w: blob missing size", ErrInvalid)
	}
	size := int(int32(binary.BigEndian.Uint32(data)))
	if size < 0 || size > len(data)-4 {
		return nil, 0, fmt.Errorf("%w: blob length %d exceeds packet", ErrInvalid, size)
	}
	n := 4 + size
	n += padBytesNeeded(n)
	if n > len(data) {
		return nil, 0, fmt.Errorf("%w: blob padding past packet end", ErrInvalid)
	}
	blob := make([]byte, size)
	copy(blob, data[4:4+size])
	return blob, n, nil
}

func appendBlob(dst, blob []byte) []byte {
	dst = binary.BigEndian.AppendUint32(dst, uint32(len(blob)))
	dst = append(dst, blob...)
	return append(dst, make([]byte, padBytesNeeded(len(blob)))...)
}
