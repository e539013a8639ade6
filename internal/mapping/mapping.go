// Package mapping defines the routing table that drives the bridge: the
// Mapping record, the header-addressed CSV loader, the matcher and the
// atomically swappable store.
package mapping

// Type selects the MIDI action a mapping triggers.
type Type string

const (
	TypeNoteOn        Type = "note_on"
	TypeNoteOff       Type = "note_off"
	TypeControlChange Type = "cc"
	TypeProgramChange Type = "pc"
	TypeQCPreset      Type = "qc_preset"
	TypeGT1000Preset  Type = "gt1000_preset"
)

// Mapping is one row of the routing table: an inbound OSC trigger plus the
// outbound OSC and/or MIDI actions it fires. Nil pointer fields mean the
// column was left empty. A Mapping is immutable once constructed; the
// table is always replaced wholesale, never edited in place.
type Mapping struct {
	OSCInAddress   string  `json:"osc_in_address"`
	OSCInArgs      string  `json:"osc_in_args,omitempty"`
	OSCOutAddress  string  `json:"osc_out_address,omitempty"`
	OSCOutArgs     string  `json:"osc_out_args,omitempty"`
	MIDIChannel    *uint8  `json:"midi_channel,omitempty"`
	MIDIType       Type    `json:"midi_type,omitempty"`
	MIDINote       *uint8  `json:"midi_note,omitempty"`
	MIDIVelocity   *uint8  `json:"midi_velocity,omitempty"`
	MIDIController *uint8  `json:"midi_controller,omitempty"`
	MIDIValue      *uint8  `json:"midi_value,omitempty"`
	Setlist        *uint32 `json:"setlist,omitempty"`
	QCPresetID     string  `json:"qc_preset_id,omitempty"`
	GT1000PresetID string  `json:"gt1000_preset_id,omitempty"`
	Comment        string  `json:"_comment,omitempty"`
}
