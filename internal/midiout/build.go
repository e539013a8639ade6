package midiout

import (
	"fmt"

	"gitlab.com/gomidi/midi/v2"

	"github.com/TrekkerStudios/odisc/internal/mapping"
	"github.com/TrekkerStudios/odisc/internal/preset"
)

// Build converts a matched mapping into the MIDI messages its midi_type
// calls for. A mapping missing a required field for its type builds
// nothing; that is a defined skip, not an error. A preset id that fails
// to parse returns an error so the caller can log it.
//
// Messages are built as raw bytes rather than through the midi
// constructor helpers: Quad Cortex program numbers run 0-255 and the
// setlist byte is the truncated setlist number, both of which can
// exceed the 7-bit data range the constructors enforce.
func Build(m mapping.Mapping) ([]midi.Message, error) {
	switch m.MIDIType {
	case mapping.TypeNoteOn:
		if m.MIDIChannel == nil || m.MIDINote == nil || m.MIDIVelocity == nil {
			return nil, nil
		}
		ch := wireChannel(*m.MIDIChannel)
		return []midi.Message{{0x90 | ch, *m.MIDINote, *m.MIDIVelocity}}, nil

	case mapping.TypeNoteOff:
		if m.MIDIChannel == nil || m.MIDINote == nil || m.MIDIVelocity == nil {
			return nil, nil
		}
		ch := wireChannel(*m.MIDIChannel)
		return []midi.Message{{0x80 | ch, *m.MIDINote, *m.MIDIVelocity}}, nil

	case mapping.TypeControlChange:
		if m.MIDIChannel == nil || m.MIDIController == nil {
			return nil, nil
		}
		ch := wireChannel(*m.MIDIChannel)
		return []midi.Message{{0xB0 | ch, *m.MIDIController, valueOrZero(m.MIDIValue)}}, nil

	case mapping.TypeProgramChange:
		if m.MIDIChannel == nil {
			return nil, nil
		}
		ch := wireChannel(*m.MIDIChannel)
		return []midi.Message{{0xC0 | ch, valueOrZero(m.MIDIValue)}}, nil

	case mapping.TypeQCPreset:
		if m.MIDIChannel == nil || m.Setlist == nil || m.QCPresetID == "" {
			return nil, nil
		}
		program, err := preset.QuadCortex(m.QCPresetID)
		if err != nil {
			return nil, fmt.Errorf("qc preset %q: %w", m.QCPresetID, err)
		}
		ch := wireChannel(*m.MIDIChannel)
		return []midi.Message{
			{0xB0 | ch, 0, 0},
			{0xB0 | ch, 32, uint8(*m.Setlist)},
			{0xC0 | ch, program},
		}, nil

	case mapping.TypeGT1000Preset:
		if m.MIDIChannel == nil || m.GT1000PresetID == "" {
			return nil, nil
		}
		msb, lsb, program, err := preset.GT1000(m.GT1000PresetID)
		if err != nil {
			return nil, fmt.Errorf("gt1000 preset %q: %w", m.GT1000PresetID, err)
		}
		ch := wireChannel(*m.MIDIChannel)
		return []midi.Message{
			{0xB0 | ch, 0, msb},
			{0xB0 | ch, 32, lsb},
			{0xC0 | ch, program},
		}, nil
	}

	return nil, nil
}

// wireChannel converts a 1-based channel to the 0-based status nibble,
// saturating at zero.
func wireChannel(ch uint8) uint8 {
	if ch > 0 {
		ch--
	}
	return ch & 0x0F
}

func valueOrZero(v *uint8) uint8 {
	if v == nil {
		return 0
	}
	return *v
}
