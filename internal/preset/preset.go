// Package preset parses the human-readable preset identifiers of the two
// supported hardware targets into MIDI bank/program numbers.
package preset

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

var (
	// ErrFormat reports an id that does not match the device grammar.
	ErrFormat = errors.New("preset id does not match device format")
	// ErrRange reports a well-formed id with an out-of-range component.
	ErrRange = errors.New("preset id out of range")
)

var (
	quadCortexRe = regexp.MustCompile(`^(\d+)([A-H])$`)
	gt1000Re     = regexp.MustCompile(`^(U|P)(\d{1,2})-(\d)$`)
)

// QuadCortex converts a Quad Cortex preset id such as "10C" (bank 1-32,
// slot letter A-H) into the program change value (bank-1)*8 + slot.
// "1A" maps to 0 and "32H" to 255.
func QuadCortex(id string) (uint8, error) {
	m := quadCortexRe.FindStringSubmatch(id)
	if m == nil {
		return 0, fmt.Errorf("%w: quad cortex id %q, want e.g. \"10C\"", ErrFormat, id)
	}
	bank, err := strconv.Atoi(m[1])
	if err != nil {
		// \d+ only fails Atoi by exceeding the int range.
		return 0, fmt.Errorf("%w: quad cortex bank in %q", ErrRange, id)
	}
	if bank < 1 || bank > 32 {
		return 0, fmt.Errorf("%w: quad cortex bank %d in %q, valid banks are 1-32", ErrRange, bank, id)
	}
	slot := m[2][0] - 'A'
	return uint8((bank-1)*8) + slot, nil
}

// GT1000 converts a Boss GT-1000 preset id such as "U12-3" or "P50-5"
// (type U for user or P for factory preset, bank 1-50, patch 1-5) into a
// bank select MSB/LSB pair and the program change value. User banks map to
// LSB 0-49, preset banks to LSB 50-99; the MSB is always 0.
func GT1000(id string) (msb, lsb, pc uint8, err error) {
	m := gt1000Re.FindStringSubmatch(id)
	if m == nil {
		return 0, 0, 0, fmt.Errorf("%w: gt-1000 id %q, want e.g. \"U12-3\"", ErrFormat, id)
	}
	bank, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("%w: gt-1000 bank in %q", ErrFormat, id)
	}
	patch := int(m[3][0] - '0')
	if bank < 1 || bank > 50 {
		return 0, 0, 0, fmt.Errorf("%w: gt-1000 bank %d in %q, valid banks are 1-50", ErrRange, bank, id)
	}
	if patch < 1 || patch > 5 {
		return 0, 0, 0, fmt.Errorf("%w: gt-1000 patch %d in %q, valid patches are 1-5", ErrRange, patch, id)
	}
	lsb = uint8(bank - 1)
	if m[1] == "P" {
		lsb += 50
	}
	return 0, lsb, uint8(patch - 1), nil
}
