// Package engine runs the OSC receive and dispatch loop that bridges
// inbound OSC messages to outbound OSC and MIDI.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"

	"gitlab.com/gomidi/midi/v2"
	"golang.org/x/sync/errgroup"

	"github.com/TrekkerStudios/odisc/internal/config"
	"github.com/TrekkerStudios/odisc/internal/mapping"
	"github.com/TrekkerStudios/odisc/internal/midiout"
	"github.com/TrekkerStudios/odisc/internal/osc"
)

// Outbound addresses touching the synth effects tree are routed to the
// port after the configured send port.
const fxAddressFragment = "synth/fx"

// Sender is the outbound MIDI connection. A nil Sender runs the bridge
// OSC-only, which happens when no MIDI output device exists.
type Sender interface {
	Send(msg midi.Message) error
}

// Engine bridges one inbound UDP OSC socket to one MIDI output and the
// configured outbound OSC destination. Each cycle takes a fresh mapping
// snapshot, so table reloads apply without coordination.
type Engine struct {
	cfg   config.Config
	store *mapping.Store
	midi  Sender
	log   *slog.Logger

	conn     *net.UDPConn
	sendAddr *net.UDPAddr
	fxAddr   *net.UDPAddr
}

// New assembles an engine. Call Listen before Run.
func New(cfg config.Config, store *mapping.Store, out Sender, log *slog.Logger) *Engine {
	return &Engine{cfg: cfg, store: store, midi: out, log: log}
}

// Listen resolves the outbound destinations and binds the inbound UDP
// socket.
func (e *Engine) Listen() error {
	sendAddr, err := net.ResolveUDPAddr("udp",
		net.JoinHostPort(e.cfg.OSCSendHost, strconv.Itoa(int(e.cfg.OSCSendPort))))
	if err != nil {
		return fmt.Errorf("resolve send host: %w", err)
	}
	fxAddr := *sendAddr
	fxAddr.Port++

	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4zero, Port: int(e.cfg.OSCListenPort)})
	if err != nil {
		return fmt.Errorf("bind udp port %d: %w", e.cfg.OSCListenPort, err)
	}

	e.conn = conn
	e.sendAddr = sendAddr
	e.fxAddr = &fxAddr
	e.log.Info("osc server listening", "port", conn.LocalAddr().(*net.UDPAddr).Port)
	e.log.Info("osc server sending", "host", e.cfg.OSCSendHost, "port", e.cfg.OSCSendPort)
	return nil
}

// LocalAddr reports the bound listen address.
func (e *Engine) LocalAddr() net.Addr {
	return e.conn.LocalAddr()
}

// Close releases the UDP socket.
func (e *Engine) Close() error {
	if e.conn == nil {
		return nil
	}
	return e.conn.Close()
}

// Run services the socket until ctx is cancelled. A datagram and the
// shutdown signal race each cycle; cancellation closes the socket so a
// pending read unblocks immediately.
func (e *Engine) Run(ctx context.Context) error {
	packets := make(chan []byte, 1)

	g, ctx := errgroup.WithContext(ctx)
	stop := context.AfterFunc(ctx, func() { e.conn.Close() })
	defer stop()

	g.Go(func() error { return e.read(ctx, packets) })
	g.Go(func() error { return e.dispatch(ctx, packets) })
	return g.Wait()
}

func (e *Engine) read(ctx context.Context, packets chan<- []byte) error {
	defer close(packets)
	buf := make([]byte, 2048)
	for {
		n, from, err := e.conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("udp read: %w", err)
		}
		e.log.Debug("datagram received", "bytes", n, "from", from)
		data := make([]byte, n)
		copy(data, buf[:n])
		select {
		case packets <- data:
		case <-ctx.Done():
			return nil
		}
	}
}

func (e *Engine) dispatch(ctx context.Context, packets <-chan []byte) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case data, ok := <-packets:
			if !ok {
				return nil
			}
			e.handle(data)
		}
	}
}

// handle runs one dispatch cycle for a raw datagram. Every failure in
// here is per-cycle: log and move on, the loop never dies.
func (e *Engine) handle(data []byte) {
	pkt, err := osc.Decode(data)
	if err != nil {
		e.log.Warn("dropping malformed packet", "bytes", len(data), "error", err)
		return
	}
	msg, ok := pkt.(*osc.Message)
	if !ok {
		e.log.Debug("ignoring non-message packet")
		return
	}

	matches := mapping.MatchAll(e.store.Snapshot(), msg)
	if len(matches) == 0 {
		e.log.Debug("no mapping matched", "address", msg.Address)
		return
	}
	for _, m := range matches {
		e.log.Debug("mapping matched", "address", m.OSCInAddress, "args", m.OSCInArgs)
		if err := e.dispatchMatch(m); err != nil {
			e.log.Error("dispatch failed", "address", m.OSCInAddress, "error", err)
		}
	}
}

// dispatchMatch sends one matched mapping's outbound OSC and MIDI. An
// OSC send failure skips the MIDI half of the same match; the caller
// isolates failures between matches.
func (e *Engine) dispatchMatch(m mapping.Mapping) error {
	if m.OSCOutAddress != "" {
		if err := e.sendOSC(m.OSCOutAddress, m.OSCOutArgs); err != nil {
			return fmt.Errorf("osc send: %w", err)
		}
	}

	msgs, err := midiout.Build(m)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		return nil
	}
	if e.midi == nil {
		e.log.Debug("midi output disabled, dropping messages", "type", string(m.MIDIType))
		return nil
	}
	for _, msg := range msgs {
		if err := e.midi.Send(msg); err != nil {
			return fmt.Errorf("midi send: %w", err)
		}
	}
	e.log.Debug("midi sent", "type", string(m.MIDIType), "messages", len(msgs))
	return nil
}

func (e *Engine) sendOSC(addr, rawArgs string) error {
	msg := osc.NewMessage(addr, osc.ParseArgs(rawArgs)...)
	data, err := msg.MarshalBinary()
	if err != nil {
		return err
	}
	dest := e.destFor(addr)
	if _, err := e.conn.WriteToUDP(data, dest); err != nil {
		return err
	}
	e.log.Debug("osc sent", "address", addr, "to", dest.String())
	return nil
}

// destFor picks the outbound destination for an address, applying the
// effects-unit port quirk.
func (e *Engine) destFor(addr string) *net.UDPAddr {
	if strings.Contains(addr, fxAddressFragment) {
		return e.fxAddr
	}
	return e.sendAddr
}
