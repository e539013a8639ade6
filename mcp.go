package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"gitlab.com/gomidi/midi/v2"

	"github.com/TrekkerStudios/odisc/internal/config"
	"github.com/TrekkerStudios/odisc/internal/mapping"
	"github.com/TrekkerStudios/odisc/internal/midiout"
)

// shell exposes the running bridge to an MCP client over stdio.
type shell struct {
	cfg          config.Config
	store        *mapping.Store
	midi         *midiout.Conn
	mappingsPath string
	log          *slog.Logger
}

func (sh *shell) serve(ctx context.Context) error {
	s := server.NewMCPServer(
		"odisc",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	statusTool := mcp.NewTool("odisc_status",
		mcp.WithDescription("Reports the bridge configuration and the size of the live mapping table."),
	)
	s.AddTool(statusTool, sh.handleStatus)

	reloadTool := mcp.NewTool("odisc_reload-mappings",
		mcp.WithDescription("Reparses mappings.csv and atomically replaces the live mapping table. The previous table stays live when the file fails to parse."),
	)
	s.AddTool(reloadTool, sh.handleReload)

	showTool := mcp.NewTool("odisc_show-mappings",
		mcp.WithDescription("Returns the live mapping table as JSON."),
	)
	s.AddTool(showTool, sh.handleShowMappings)

	listTool := mcp.NewTool("odisc_list-midi-outputs",
		mcp.WithDescription("Lists the available MIDI output ports."),
	)
	s.AddTool(listTool, sh.handleListOutputs)

	noteTool := mcp.NewTool("odisc_send-test-note",
		mcp.WithDescription("Plays middle C through the bridge MIDI output to verify the connection."),
		mcp.WithNumber("channel", mcp.Description("MIDI channel 1-16. Defaults to 1.")),
	)
	s.AddTool(noteTool, sh.handleTestNote)

	sh.log.Info("mcp server listening on stdio")
	err := server.NewStdioServer(s).Listen(ctx, os.Stdin, os.Stdout)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (sh *shell) handleStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sh.log.Debug("handling status request")

	status := map[string]any{
		"osc_listen_port": sh.cfg.OSCListenPort,
		"osc_send_host":   sh.cfg.OSCSendHost,
		"osc_send_port":   sh.cfg.OSCSendPort,
		"midi_output":     sh.cfg.MIDIOutputName,
		"midi_connected":  sh.midi != nil,
		"mappings":        sh.store.Len(),
		"mappings_path":   sh.mappingsPath,
	}
	asJson, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal status: %v", err)
	}
	return mcp.NewToolResultText(string(asJson)), nil
}

func (sh *shell) handleReload(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sh.log.Debug("handling reload request")

	count, err := reloadMappings(sh.store, sh.mappingsPath, sh.log)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Reloaded %d mappings.", count)), nil
}

func (sh *shell) handleShowMappings(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sh.log.Debug("handling show mappings request")

	asJson, err := json.MarshalIndent(sh.store.Snapshot(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal mappings: %v", err)
	}
	return mcp.NewToolResultText(string(asJson)), nil
}

func (sh *shell) handleListOutputs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sh.log.Debug("handling list outputs request")

	asJson, err := json.MarshalIndent(midiout.Outputs(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal outputs: %v", err)
	}
	return mcp.NewToolResultText(string(asJson)), nil
}

func (sh *shell) handleTestNote(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sh.log.Debug("handling test note request")

	if sh.midi == nil {
		return mcp.NewToolResultError("no MIDI output connected"), nil
	}
	channel, err := request.RequireInt("channel")
	if err != nil {
		channel = 1
	}
	if channel < 1 || channel > 16 {
		return mcp.NewToolResultError(fmt.Sprintf("channel %d out of range 1-16", channel)), nil
	}
	ch := uint8(channel - 1)

	const middleC = 60
	if err := sh.midi.Send(midi.Message{0x90 | ch, middleC, 100}); err != nil {
		return nil, fmt.Errorf("note on failed: %v", err)
	}
	time.Sleep(200 * time.Millisecond)
	if err := sh.midi.Send(midi.Message{0x80 | ch, middleC, 0}); err != nil {
		return nil, fmt.Errorf("note off failed: %v", err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("Played middle C on channel %d.", channel)), nil
}
