package osc

import (
	"errors"
	"reflect"
	"testing"
)

func TestBundleRoundTrip(t *testing.T) {
	inner := &Bundle{
		Timetag:  Timetag(42),
		Elements: []Packet{&Message{Address: "/deep", Arguments: []any{int32(1)}}},
	}
	bundles := []*Bundle{
		{Timetag: TimetagImmediate},
		{
			Timetag: TimetagImmediate,
			Elements: []Packet{
				&Message{Address: "/a", Arguments: []any{float32(1)}},
				&Message{Address: "/b", Arguments: []any{"two"}},
			},
		},
		{Timetag: Timetag(7), Elements: []Packet{inner}},
	}
	for _, want := range bundles {
		data, err := want.MarshalBinary()
		if err != nil {
			t.Fatalf("MarshalBinary() error = %v", err)
		}
		got, err := Decode(data)
		if err != nil {
			t.Fatalf("Decode() error = %v", err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("round trip got = %#v, want %#v", got, want)
		}
	}
}

func TestDecodeBundleRejectsMalformed(t *testing.T) {
	valid, err := (&Bundle{
		Timetag:  TimetagImmediate,
		Elements: []Packet{&Message{Address: "/x"}},
	}).MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary() error = %v", err)
	}

	for _, tt := range []struct {
		name string
		raw  []byte
	}{
		{"wrong tag", []byte("#bundif\x00\x00\x00\x00\x00\x00\x00\x00\x01")},
		{"missing time tag", []byte("#bundle\x00\x00\x00\x00\x00")},
		{"element size past end", append(append([]byte{}, valid[:16]...), 0, 0, 0, 99)},
		{"unaligned element", append(append(append([]byte{}, valid[:16]...), 0, 0, 0, 2), valid[20:]...)},
	} {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(tt.raw); !errors.Is(err, ErrInvalid) {
				t.Errorf("Decode() error = %v, want ErrInvalid", err)
			}
		})
	}
}
