package mapping

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// LoadFile reads a mapping table from the CSV file at path.
func LoadFile(path string) ([]Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mappings: %w", err)
	}
	defer f.Close()
	table, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("mappings: %s: %w", path, err)
	}
	return table, nil
}

// Parse reads header-addressed CSV rows into Mapping records. Columns may
// appear in any order, unknown columns are ignored and optional columns
// may be empty. Any invalid row fails the whole parse, so a reload never
// publishes a half-good table.
func Parse(r io.Reader) ([]Mapping, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	if _, ok := col["osc_in_address"]; !ok {
		return nil, errors.New("header: missing osc_in_address column")
	}

	var table []Mapping
	for row := 2; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		m, err := parseRow(col, rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		table = append(table, m)
	}
	return table, nil
}

func parseRow(col map[string]int, rec []string) (Mapping, error) {
	get := func(name string) string {
		i, ok := col[name]
		if !ok {
			return ""
		}
		return rec[i]
	}

	m := Mapping{
		OSCInAddress:   get("osc_in_address"),
		OSCInArgs:      get("osc_in_args"),
		OSCOutAddress:  get("osc_out_address"),
		OSCOutArgs:     get("osc_out_args"),
		MIDIType:       Type(get("midi_type")),
		QCPresetID:     get("qc_preset_id"),
		GT1000PresetID: get("gt1000_preset_id"),
		Comment:        get("_comment"),
	}
	if m.OSCInAddress == "" {
		return Mapping{}, errors.New("osc_in_address must not be empty")
	}

	var err error
	if m.MIDIChannel, err = parseByteField("midi_channel", get("midi_channel"), 1, 16); err != nil {
		return Mapping{}, err
	}
	if m.MIDINote, err = parseByteField("midi_note", get("midi_note"), 0, 127); err != nil {
		return Mapping{}, err
	}
	if m.MIDIVelocity, err = parseByteField("midi_velocity", get("midi_velocity"), 0, 127); err != nil {
		return Mapping{}, err
	}
	if m.MIDIController, err = parseByteField("midi_controller", get("midi_controller"), 0, 127); err != nil {
		return Mapping{}, err
	}
	if m.MIDIValue, err = parseByteField("midi_value", get("midi_value"), 0, 127); err != nil {
		return Mapping{}, err
	}
	if raw := get("setlist"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return Mapping{}, fmt.Errorf("setlist %q is not an unsigned number", raw)
		}
		u := uint32(v)
		m.Setlist = &u
	}

	return m, nil
}

func parseByteField(name, raw string, min, max int) (*uint8, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%s %q is not a number", name, raw)
	}
	if v < min || v > max {
		return nil, fmt.Errorf("%s %d out of range %d-%d", name, v, min, max)
	}
	b := uint8(v)
	return &b, nil
}
