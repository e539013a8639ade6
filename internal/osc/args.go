package osc

import (
	"strconv"
	"strings"
)

// ParseArgs turns a raw whitespace-separated argument string from the
// mapping table into typed OSC arguments. A token that parses entirely as
// a number becomes a float32, anything else stays a string. Empty or
// blank input yields no arguments.
func ParseArgs(raw string) []any {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return nil
	}
	args := make([]any, 0, len(fields))
	for _, tok := range fields {
		if f, err := strconv.ParseFloat(tok, 32); err == nil {
			args = append(args, float32(f))
		} else {
			args = append(args, tok)
		}
	}
	return args
}
