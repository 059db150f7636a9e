package modbus

import (
	"errors"
	"fmt"
	"testing"
)

// fakeTransport backs a session with an in-memory register file and
// records every write it receives.
type fakeTransport struct {
	registers map[uint16][]byte // address -> response bytes
	readErr   error
	writeErr  error

	writes []fakeWrite
}

type fakeWrite struct {
	address  uint16
	quantity uint16
	value    []byte
}

func (f *fakeTransport) ReadHoldingRegisters(address, quantity uint16) ([]byte, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	resp, ok := f.registers[address]
	if !ok {
		return nil, fmt.Errorf("no register at 0x%04X", address)
	}
	return resp, nil
}

func (f *fakeTransport) WriteMultipleRegisters(address, quantity uint16, value []byte) ([]byte, error) {
	if f.writeErr != nil {
		return nil, f.writeErr
	}
	f.writes = append(f.writes, fakeWrite{address, quantity, append([]byte(nil), value...)})
	if f.registers == nil {
		f.registers = make(map[uint16][]byte)
	}
	f.registers[address] = append([]byte(nil), value...)
	return nil, nil
}

// testSession builds a session wired to a fake transport. Open succeeds
// without a network because no TCP handler is attached.
func testSession(transport Transport) *Session {
	return &Session{name: "test-device", transport: transport}
}

// ─── Connection bracket ────────────────────────────────────────────

func TestSession_RequiresOpen(t *testing.T) {
	s := testSession(&fakeTransport{})
	desc := Descriptor{Address: 4118, Type: TypeUint16, Words: 1, Scale: 1}

	if _, err := s.Read(desc); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Read() before Open: error = %v, want ErrNotConnected", err)
	}
	if err := s.Write(desc, int64(1)); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Write() before Open: error = %v, want ErrNotConnected", err)
	}

	if err := s.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if _, err := s.Read(desc); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Read() after Close: error = %v, want ErrNotConnected", err)
	}
}

func TestSession_CloseWhenNotOpen(t *testing.T) {
	s := testSession(&fakeTransport{})
	if err := s.Close(); err != nil {
		t.Errorf("Close() on unopened session: error = %v", err)
	}
}

// ─── Reads ─────────────────────────────────────────────────────────

func TestSession_Read(t *testing.T) {
	transport := &fakeTransport{registers: map[uint16][]byte{
		4114: {0x02, 0x1E},             // 542 -> 54.2 V at scale 0.1
		4118: {0x05, 0xF0},             // 1520 W
		4125: {0x00, 0x0A, 0x00, 0x01}, // low word first: 0x0001000A
	}}
	s := testSession(transport)
	if err := s.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	t.Run("scaled uint16", func(t *testing.T) {
		d := Descriptor{Address: 4114, Type: TypeUint16, Words: 1, Scale: 0.1}
		got, err := s.Read(d)
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		if !valuesEqual(got, 54.2) {
			t.Errorf("Read() = %v, want 54.2", got)
		}
	})

	t.Run("uint32 honours word order", func(t *testing.T) {
		d := Descriptor{Address: 4125, Type: TypeUint32, Words: 2, Order: LowWordFirst, Scale: 1}
		got, err := s.Read(d)
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		if got != int64(0x0001000A) {
			t.Errorf("Read() = %v, want %d", got, 0x0001000A)
		}
	})

	t.Run("transport error wraps ErrReadFailed", func(t *testing.T) {
		d := Descriptor{Address: 9999, Type: TypeUint16, Words: 1, Scale: 1}
		if _, err := s.Read(d); !errors.Is(err, ErrReadFailed) {
			t.Errorf("Read() error = %v, want ErrReadFailed", err)
		}
	})

	t.Run("short reply wraps ErrReadFailed", func(t *testing.T) {
		d := Descriptor{Address: 4118, Type: TypeUint32, Words: 2, Scale: 1}
		if _, err := s.Read(d); !errors.Is(err, ErrReadFailed) {
			t.Errorf("Read() error = %v, want ErrReadFailed", err)
		}
	})
}

// ─── Writes ────────────────────────────────────────────────────────

func TestSession_Write(t *testing.T) {
	sellAmps := Descriptor{Address: 0x01B4, Type: TypeUint32, Words: 2, Scale: 0.001, Verify: true}

	t.Run("verified write round trips through the register file", func(t *testing.T) {
		transport := &fakeTransport{}
		s := testSession(transport)
		if err := s.Open(); err != nil {
			t.Fatalf("Open() error = %v", err)
		}

		if err := s.Write(sellAmps, 20.0); err != nil {
			t.Fatalf("Write() error = %v", err)
		}

		if len(transport.writes) != 1 {
			t.Fatalf("writes = %d, want 1", len(transport.writes))
		}
		w := transport.writes[0]
		if w.address != 0x01B4 || w.quantity != 2 {
			t.Errorf("wrote address 0x%04X quantity %d, want 0x01B4 quantity 2", w.address, w.quantity)
		}
		// 20.0 / 0.001 = 20000, high word first, big-endian bytes.
		want := []byte{0x00, 0x00, 0x4E, 0x20}
		for i := range want {
			if w.value[i] != want[i] {
				t.Fatalf("wrote bytes %x, want %x", w.value, want)
			}
		}
	})

	t.Run("verify mismatch", func(t *testing.T) {
		transport := &fakeTransport{registers: map[uint16][]byte{
			0x01B4: {0x00, 0x00, 0x00, 0x00},
		}}
		// The fake's write path would update the register file, so point the
		// read path at a stale value by disabling write recording effects.
		s := testSession(&staleTransport{inner: transport})
		if err := s.Open(); err != nil {
			t.Fatalf("Open() error = %v", err)
		}

		if err := s.Write(sellAmps, 20.0); !errors.Is(err, ErrVerifyMismatch) {
			t.Errorf("Write() error = %v, want ErrVerifyMismatch", err)
		}
	})

	t.Run("transport error wraps ErrWriteFailed", func(t *testing.T) {
		transport := &fakeTransport{writeErr: errors.New("connection reset")}
		s := testSession(transport)
		if err := s.Open(); err != nil {
			t.Fatalf("Open() error = %v", err)
		}

		if err := s.Write(sellAmps, 20.0); !errors.Is(err, ErrWriteFailed) {
			t.Errorf("Write() error = %v, want ErrWriteFailed", err)
		}
	})

	t.Run("unverified write skips read-back", func(t *testing.T) {
		equalize := Descriptor{Address: 0x0130, Type: TypeEnum, Words: 1, Enum: testEnum}
		transport := &fakeTransport{readErr: errors.New("register does not read back")}
		s := testSession(transport)
		if err := s.Open(); err != nil {
			t.Fatalf("Open() error = %v", err)
		}

		if err := s.Write(equalize, "Enable"); err != nil {
			t.Errorf("Write() error = %v", err)
		}
	})

	t.Run("encode failure reaches the caller before the wire", func(t *testing.T) {
		transport := &fakeTransport{}
		s := testSession(transport)
		if err := s.Open(); err != nil {
			t.Fatalf("Open() error = %v", err)
		}

		d := Descriptor{Address: 1, Type: TypeUint16, Words: 1, Scale: 1}
		if err := s.Write(d, int64(-5)); !errors.Is(err, ErrInvalidValue) {
			t.Errorf("Write() error = %v, want ErrInvalidValue", err)
		}
		if len(transport.writes) != 0 {
			t.Errorf("writes = %d, want 0", len(transport.writes))
		}
	})
}

// staleTransport passes writes through but never updates what reads
// return, to exercise the verify mismatch path.
type staleTransport struct {
	inner *fakeTransport
}

func (s *staleTransport) ReadHoldingRegisters(address, quantity uint16) ([]byte, error) {
	return s.inner.ReadHoldingRegisters(address, quantity)
}

func (s *staleTransport) WriteMultipleRegisters(address, quantity uint16, value []byte) ([]byte, error) {
	return nil, nil
}

// ─── Verify comparison ─────────────────────────────────────────────

func TestVerifyEqual(t *testing.T) {
	tests := []struct {
		name string
		want any
		got  any
		eq   bool
	}{
		{"matching strings", "Enable", "Enable", true},
		{"different strings", "Enable", "Disable", false},
		{"string vs numeric", "Enable", int64(1), false},
		{"exact floats", 55.6, 55.6, true},
		{"beyond 2-decimal precision", 55.6, 55.61, false},
		{"rounding tolerance", 55.6, 55.6001, true},
		{"int vs float", int64(20), 20.0, true},
		{"plain mismatch", 20.0, 0.0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := verifyEqual(tt.want, tt.got); got != tt.eq {
				t.Errorf("verifyEqual(%v, %v) = %v, want %v", tt.want, tt.got, got, tt.eq)
			}
		})
	}
}
