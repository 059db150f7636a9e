package modbus

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	mb "github.com/goburrow/modbus"
)

// defaultTimeout bounds each transport exchange when no timeout is configured.
const defaultTimeout = 5 * time.Second

// verifyPrecision is the comparison precision for post-write read-backs:
// values are rounded to 2 decimal places before comparing.
const verifyPrecision = 100

// Transport is the register exchange surface the session needs from the
// protocol client. goburrow's modbus.Client satisfies it; tests inject
// fakes. Word values travel as big-endian byte pairs, per the Modbus
// application protocol.
type Transport interface {
	ReadHoldingRegisters(address, quantity uint16) ([]byte, error)
	WriteMultipleRegisters(address, quantity uint16, value []byte) ([]byte, error)
}

// SessionConfig identifies one physical device endpoint.
type SessionConfig struct {
	// Name identifies the device in errors and logs.
	Name string

	// Host and Port locate the Modbus TCP endpoint (or gateway).
	Host string
	Port int

	// Unit is the Modbus unit (slave) identifier behind the endpoint.
	Unit byte

	// Timeout bounds each register exchange. Zero means defaultTimeout.
	Timeout time.Duration
}

// Session owns the connection to one device and exposes typed register
// access through the codec.
//
// All register access must happen inside an Open/Close bracket; the
// polling manager and the controller each open, work, and close within a
// single cycle. Sessions are not safe for concurrent use and are never
// shared across devices.
type Session struct {
	name      string
	handler   *mb.TCPClientHandler
	transport Transport
	open      bool
}

// NewSession creates a session for a Modbus TCP endpoint. The connection
// is not established until Open.
func NewSession(cfg SessionConfig) *Session {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	handler := mb.NewTCPClientHandler(fmt.Sprintf("%s:%d", cfg.Host, cfg.Port))
	handler.Timeout = timeout
	handler.SlaveId = cfg.Unit

	return &Session{
		name:    cfg.Name,
		handler: handler,
	}
}

// Name returns the device name this session talks to.
func (s *Session) Name() string {
	return s.name
}

// Open establishes the transport connection. Register access outside an
// Open/Close bracket fails with ErrNotConnected.
func (s *Session) Open() error {
	if s.handler != nil {
		if err := s.handler.Connect(); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrNotConnected, s.name, err)
		}
		s.transport = mb.NewClient(s.handler)
	}
	s.open = true
	return nil
}

// Close releases the transport connection. Safe to call when not open.
func (s *Session) Close() error {
	s.open = false
	if s.handler == nil {
		return nil
	}
	if err := s.handler.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", s.name, err)
	}
	return nil
}

// Read reads one register and decodes it to its typed value.
func (s *Session) Read(d Descriptor) (any, error) {
	if !s.open {
		return nil, fmt.Errorf("%w: %s", ErrNotConnected, s.name)
	}

	resp, err := s.transport.ReadHoldingRegisters(d.Address, d.Words)
	if err != nil {
		return nil, fmt.Errorf("%w: %s register 0x%04X: %w", ErrReadFailed, s.name, d.Address, err)
	}
	if len(resp) != int(d.Words)*2 {
		return nil, fmt.Errorf("%w: %s register 0x%04X: got %d bytes, want %d",
			ErrReadFailed, s.name, d.Address, len(resp), d.Words*2)
	}

	value, err := Decode(d, wordsFromBytes(resp))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.name, err)
	}
	return value, nil
}

// Write encodes a typed value and writes it to one register.
//
// If the descriptor's Verify policy is set, the register is re-read and
// the decoded value compared against the request at 2-decimal precision;
// a mismatch fails with ErrVerifyMismatch. Transient command registers
// (enums that do not read back) leave Verify off.
func (s *Session) Write(d Descriptor, value any) error {
	if !s.open {
		return fmt.Errorf("%w: %s", ErrNotConnected, s.name)
	}

	words, err := Encode(d, value)
	if err != nil {
		return fmt.Errorf("%s: %w", s.name, err)
	}

	quantity := uint16(len(words))
	if _, err := s.transport.WriteMultipleRegisters(d.Address, quantity, bytesFromWords(words)); err != nil {
		return fmt.Errorf("%w: %s register 0x%04X: %w", ErrWriteFailed, s.name, d.Address, err)
	}

	if !d.Verify {
		return nil
	}

	readBack, err := s.Read(d)
	if err != nil {
		return fmt.Errorf("%w: %s register 0x%04X: read-back failed: %w",
			ErrVerifyMismatch, s.name, d.Address, err)
	}
	if !verifyEqual(value, readBack) {
		return fmt.Errorf("%w: %s register 0x%04X: wrote %v, read back %v",
			ErrVerifyMismatch, s.name, d.Address, value, readBack)
	}
	return nil
}

// verifyEqual compares a requested write value with its decoded read-back.
// Enum labels compare as strings; numerics compare rounded to 2 decimals,
// since scaled registers do not always read back bit-exact.
func verifyEqual(want, got any) bool {
	if ws, ok := want.(string); ok {
		gs, ok := got.(string)
		return ok && ws == gs
	}
	wf, errW := toFloat(want)
	gf, errG := toFloat(got)
	if errW != nil || errG != nil {
		return false
	}
	return math.Round(wf*verifyPrecision) == math.Round(gf*verifyPrecision)
}

func wordsFromBytes(b []byte) []uint16 {
	words := make([]uint16, len(b)/2)
	for i := range words {
		words[i] = binary.BigEndian.Uint16(b[i*2:])
	}
	return words
}

func bytesFromWords(words []uint16) []byte {
	b := make([]byte, len(words)*2)
	for i, w := range words {
		binary.BigEndian.PutUint16(b[i*2:], w)
	}
	return b
}
