// Package config holds the bridge settings persisted in config.json.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
)

// Config is the persisted process configuration. It is loaded once at
// startup and stays immutable afterwards, except for the MIDI output
// name which may be healed against the live device list.
type Config struct {
	OSCListenPort  uint16 `json:"OSC_LISTEN_PORT"`
	OSCSendHost    string `json:"OSC_SEND_HOST"`
	OSCSendPort    uint16 `json:"OSC_SEND_PORT"`
	MIDIOutputName string `json:"MIDI_OUTPUT_NAME"`
	DebugLogging   bool   `json:"DEBUG_LOGGING"`
}

// Default returns the configuration written on first run.
func Default() Config {
	return Config{
		OSCListenPort: 8000,
		OSCSendHost:   "127.0.0.1",
		OSCSendPort:   7001,
	}
}

// Load reads and parses the config file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	var c Config
	if err := json.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return c, nil
}

// Save writes the configuration to path as indented JSON.
func (c Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// HealMIDIOutput checks the configured MIDI output name against the
// enumerated device list. A name that is not present (including the
// empty default) is replaced with the first available device, or
// cleared when no devices exist. It reports whether the name changed
// and returns the previous value so the caller can log and persist
// the correction.
func (c *Config) HealMIDIOutput(outputs []string) (changed bool, old string) {
	if slices.Contains(outputs, c.MIDIOutputName) {
		return false, c.MIDIOutputName
	}
	old = c.MIDIOutputName
	if len(outputs) > 0 {
		c.MIDIOutputName = outputs[0]
	} else {
		c.MIDIOutputName = ""
	}
	return c.MIDIOutputName != old, old
}
