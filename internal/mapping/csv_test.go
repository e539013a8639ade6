package mapping

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func u8(v uint8) *uint8    { return &v }
func u32(v uint32) *uint32 { return &v }

func TestParse(t *testing.T) {
	const in = `osc_in_address,osc_in_args,osc_out_address,osc_out_args,midi_channel,midi_type,midi_note,midi_velocity,midi_controller,midi_value,setlist,qc_preset_id,gt1000_preset_id,_comment
/scene,chorus,/visual/scene,chorus 1,1,note_on,60,100,,,,,,chorus scene
/preset,,,,2,qc_preset,,,,,3,12B,,
/amp,,,,16,cc,,,11,127,,,,expression pedal
`
	table, err := Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	want := []Mapping{
		{
			OSCInAddress:  "/scene",
			OSCInArgs:     "chorus",
			OSCOutAddress: "/visual/scene",
			OSCOutArgs:    "chorus 1",
			MIDIChannel:   u8(1),
			MIDIType:      TypeNoteOn,
			MIDINote:      u8(60),
			MIDIVelocity:  u8(100),
			Comment:       "chorus scene",
		},
		{
			OSCInAddress: "/preset",
			MIDIChannel:  u8(2),
			MIDIType:     TypeQCPreset,
			Setlist:      u32(3),
			QCPresetID:   "12B",
		},
		{
			OSCInAddress:   "/amp",
			MIDIChannel:    u8(16),
			MIDIType:       TypeControlChange,
			MIDIController: u8(11),
			MIDIValue:      u8(127),
			Comment:        "expression pedal",
		},
	}
	if !reflect.DeepEqual(table, want) {
		t.Errorf("Parse() =\n%+v\nwant\n%+v", table, want)
	}
}

func TestParseReorderedAndUnknownColumns(t *testing.T) {
	const in = `midi_type,osc_in_address,bogus_column,midi_channel
pc,/go,ignored,4
`
	table, err := Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(table) != 1 {
		t.Fatalf("got %d rows, want 1", len(table))
	}
	m := table[0]
	if m.OSCInAddress != "/go" || m.MIDIType != TypeProgramChange || m.MIDIChannel == nil || *m.MIDIChannel != 4 {
		t.Errorf("row = %+v", m)
	}
}

func TestParseEmptyOptionalsStayNil(t *testing.T) {
	const in = `osc_in_address,midi_channel,midi_note,midi_velocity,midi_controller,midi_value,setlist
/bare,,,,,,
`
	table, err := Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	m := table[0]
	if m.MIDIChannel != nil || m.MIDINote != nil || m.MIDIVelocity != nil ||
		m.MIDIController != nil || m.MIDIValue != nil || m.Setlist != nil {
		t.Errorf("empty optional fields should stay nil, got %+v", m)
	}
}

func TestParseRejectsInvalidRows(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			"empty osc_in_address",
			"osc_in_address,midi_type\n,cc\n",
			"osc_in_address must not be empty",
		},
		{
			"channel zero",
			"osc_in_address,midi_channel\n/a,0\n",
			"midi_channel 0 out of range 1-16",
		},
		{
			"channel seventeen",
			"osc_in_address,midi_channel\n/a,17\n",
			"midi_channel 17 out of range 1-16",
		},
		{
			"note above seven bits",
			"osc_in_address,midi_note\n/a,200\n",
			"midi_note 200 out of range 0-127",
		},
		{
			"value not a number",
			"osc_in_address,midi_value\n/a,loud\n",
			`midi_value "loud" is not a number`,
		},
		{
			"negative setlist",
			"osc_in_address,setlist\n/a,-1\n",
			`setlist "-1" is not an unsigned number`,
		},
		{
			"ragged row",
			"osc_in_address,midi_channel\n/a,1,extra\n",
			"wrong number of fields",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tc.in))
			if err == nil {
				t.Fatal("Parse() accepted invalid row")
			}
			if !strings.Contains(err.Error(), "row 2") {
				t.Errorf("error %q does not name the row", err)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q does not contain %q", err, tc.want)
			}
		})
	}
}

func TestParseBadRowFailsWholeTable(t *testing.T) {
	const in = `osc_in_address,midi_channel
/good,1
/bad,99
`
	table, err := Parse(strings.NewReader(in))
	if err == nil {
		t.Fatal("Parse() accepted table with invalid row")
	}
	if table != nil {
		t.Errorf("failed parse returned partial table %v", table)
	}
	if !strings.Contains(err.Error(), "row 3") {
		t.Errorf("error %q does not name row 3", err)
	}
}

func TestParseEmptyInput(t *testing.T) {
	table, err := Parse(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if table != nil {
		t.Errorf("empty input should yield no table, got %v", table)
	}
}

func TestParseHeaderOnly(t *testing.T) {
	table, err := Parse(strings.NewReader("osc_in_address,midi_type\n"))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(table) != 0 {
		t.Errorf("header-only input should yield empty table, got %v", table)
	}
}

func TestParseRequiresAddressColumn(t *testing.T) {
	_, err := Parse(strings.NewReader("midi_type,midi_channel\ncc,1\n"))
	if err == nil || !strings.Contains(err.Error(), "osc_in_address") {
		t.Errorf("Parse() error = %v, want missing osc_in_address column", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mappings.csv")
	data := "osc_in_address,midi_type,midi_channel,midi_controller,midi_value\n/tap,cc,1,64,127\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	table, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	if len(table) != 1 || table[0].OSCInAddress != "/tap" {
		t.Errorf("table = %+v", table)
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.csv"))
	if err == nil {
		t.Fatal("LoadFile() succeeded on missing file")
	}
}
