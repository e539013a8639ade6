package mapping

import "github.com/TrekkerStudios/odisc/internal/osc"

// MatchAll returns every mapping in table triggered by msg, preserving
// table order. All matches fire; there is no first-match priority. An
// empty result is a normal outcome, not an error.
func MatchAll(table []Mapping, msg *osc.Message) []Mapping {
	var matched []Mapping
	for _, m := range table {
		if m.Matches(msg) {
			matched = append(matched, m)
		}
	}
	return matched
}

// Matches reports whether msg triggers this mapping: the address must
// equal OSCInAddress exactly (case-sensitive, no wildcards), and a
// non-empty OSCInArgs additionally requires the message to carry exactly
// one argument, a string equal to it. An empty OSCInArgs accepts any
// argument list.
func (m Mapping) Matches(msg *osc.Message) bool {
	if m.OSCInAddress != msg.Address {
		return false
	}
	if m.OSCInArgs == "" {
		return true
	}
	if len(msg.Arguments) != 1 {
		return false
	}
	s, ok := msg.Arguments[0].(string)
	return ok && s == m.OSCInArgs
}
