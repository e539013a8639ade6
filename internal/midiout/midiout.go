// Package midiout owns the single outbound MIDI connection and turns
// matched mappings into raw MIDI messages.
package midiout

import (
	"errors"
	"fmt"
	"sync"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// Outputs returns the names of the currently available MIDI output ports.
func Outputs() []string {
	ports := midi.GetOutPorts()
	names := make([]string, 0, len(ports))
	for _, out := range ports {
		names = append(names, out.String())
	}
	return names
}

// Conn is an open MIDI output port. Send may be called concurrently
// from the dispatch loop and the shell.
type Conn struct {
	mu  sync.Mutex
	out drivers.Out
}

// Connect opens the MIDI output port whose name matches exactly.
func Connect(name string) (*Conn, error) {
	if name == "" {
		return nil, errors.New("midi: no output port configured")
	}
	for _, out := range midi.GetOutPorts() {
		if out.String() == name {
			if err := out.Open(); err != nil {
				return nil, fmt.Errorf("midi: open %q: %w", name, err)
			}
			return &Conn{out: out}, nil
		}
	}
	return nil, fmt.Errorf("midi: no output port named %q", name)
}

// Send transmits one message to the port.
func (c *Conn) Send(msg midi.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.out.IsOpen() {
		if err := c.out.Open(); err != nil {
			return err
		}
	}
	return c.out.Send(msg.Bytes())
}

// Close releases the port.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.out.Close()
}

// Name returns the connected port name.
func (c *Conn) Name() string {
	return c.out.String()
}
