package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
	"golang.org/x/sync/errgroup"

	"github.com/TrekkerStudios/odisc/internal/config"
	"github.com/TrekkerStudios/odisc/internal/engine"
	"github.com/TrekkerStudios/odisc/internal/mapping"
	"github.com/TrekkerStudios/odisc/internal/midiout"
)

const defaultMappingsCSV = `osc_in_address,osc_in_args,osc_out_address,osc_out_args,midi_channel,midi_type,midi_note,midi_velocity,midi_controller,midi_value,setlist,qc_preset_id,gt1000_preset_id,_comment
/scene,chorus,/visual/scene,chorus 1,1,note_on,60,100,,,,,,example mapping
`

func main() {
	dir := flag.String("dir", defaultDir(), "directory holding config.json and mappings.csv")
	flag.Parse()

	defer midi.CloseDriver()

	switch cmd := flag.Arg(0); cmd {
	case "", "run", "mcp":
		if err := run(*dir, cmd == "mcp"); err != nil {
			slog.Error("bridge stopped", "error", err)
			os.Exit(1)
		}
	case "devices":
		for i, name := range midiout.Outputs() {
			fmt.Printf("%d: %s\n", i, name)
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q (want run, mcp or devices)\n", cmd)
		os.Exit(2)
	}
}

// run boots the bridge and services it until a signal arrives. With
// withMCP set it also serves the MCP shell on stdio; either side
// ending shuts down the other.
func run(dir string, withMCP bool) error {
	mappingsPath, configPath, err := ensureFiles(dir)
	if err != nil {
		return err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger := initLogger(cfg.DebugLogging)

	outputs := midiout.Outputs()
	logger.Info("available midi outputs", "count", len(outputs))
	for i, name := range outputs {
		logger.Info("midi output", "index", i, "name", name)
	}
	if changed, old := cfg.HealMIDIOutput(outputs); changed {
		logger.Info("configured midi output not available, corrected",
			"configured", old, "using", cfg.MIDIOutputName)
		if err := cfg.Save(configPath); err != nil {
			return err
		}
	}

	store := mapping.NewStore()
	if _, err := reloadMappings(store, mappingsPath, logger); err != nil {
		logger.Error("starting with an empty mapping table", "path", mappingsPath)
	}

	var out engine.Sender
	var conn *midiout.Conn
	if cfg.MIDIOutputName == "" {
		logger.Info("no midi output device available, midi disabled")
	} else {
		conn, err = midiout.Connect(cfg.MIDIOutputName)
		if err != nil {
			return err
		}
		defer conn.Close()
		logger.Info("midi device connected", "name", conn.Name())
		out = conn
	}

	eng := engine.New(cfg, store, out, logger)
	if err := eng.Listen(); err != nil {
		return err
	}
	defer eng.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return eng.Run(ctx) })
	if withMCP {
		sh := &shell{
			cfg:          cfg,
			store:        store,
			midi:         conn,
			mappingsPath: mappingsPath,
			log:          logger,
		}
		g.Go(func() error {
			defer cancel()
			return sh.serve(ctx)
		})
	}

	err = g.Wait()
	logger.Info("exiting")
	return err
}

func defaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "odisc"
	}
	return filepath.Join(home, "Documents", "odisc")
}

func initLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:     level,
		AddSource: debug,
	}))
	slog.SetDefault(logger)
	return logger
}

// ensureFiles creates the data directory and seeds config.json and
// mappings.csv on first run.
func ensureFiles(dir string) (mappingsPath, configPath string, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("create data directory: %w", err)
	}

	mappingsPath = filepath.Join(dir, "mappings.csv")
	if _, err := os.Stat(mappingsPath); os.IsNotExist(err) {
		if err := os.WriteFile(mappingsPath, []byte(defaultMappingsCSV), 0o644); err != nil {
			return "", "", fmt.Errorf("seed mappings file: %w", err)
		}
		slog.Info("created default mappings file", "path", mappingsPath)
	}

	configPath = filepath.Join(dir, "config.json")
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := config.Default().Save(configPath); err != nil {
			return "", "", fmt.Errorf("seed config file: %w", err)
		}
		slog.Info("created default config file", "path", configPath)
	}

	return mappingsPath, configPath, nil
}

// reloadMappings reparses the CSV and swaps the live table. On failure
// the previous table stays live.
func reloadMappings(store *mapping.Store, path string, logger *slog.Logger) (int, error) {
	table, err := mapping.LoadFile(path)
	if err != nil {
		logger.Error("mappings reload failed, keeping previous table", "error", err)
		return 0, err
	}
	store.Replace(table)
	logger.Info("mappings loaded", "count", len(table))
	return len(table), nil
}
