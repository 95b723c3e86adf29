package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.bug.st/serial"
)

// Trigger sends event markers to the EEG amplifier.
type Trigger interface {
	Send(code byte) error
	Close() error
}

type SerialConfig struct {
	Device   string
	BaudRate int
	// DLP selects the DLP-IO8-G protocol: ping on open, then binary mode.
	DLP bool
}

const pingTimeout = time.Second

// SerialTrigger writes one byte per marker to a serial port.
type SerialTrigger struct {
	port serial.Port
	mu   sync.Mutex
}

func OpenSerialTrigger(cfg SerialConfig) (*SerialTrigger, error) {
	mode := &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(cfg.Device, mode)
	if err != nil {
		return nil, fmt.Errorf("open trigger port %s: %w", cfg.Device, err)
	}
	t := &SerialTrigger{port: port}
	if cfg.DLP {
		if err := t.handshake(); err != nil {
			port.Close()
			return nil, fmt.Errorf("trigger port %s: %w", cfg.Device, err)
		}
	}
	return t, nil
}

func (t *SerialTrigger) handshake() error {
	if err := t.port.SetReadTimeout(pingTimeout); err != nil {
		return err
	}
	if !t.Ping() {
		return errors.New("device did not respond to ping")
	}
	// Binary mode
	_, err := t.port.Write([]byte{0x5C})
	return err
}

// Ping checks a DLP-IO8-G is listening.
func (t *SerialTrigger) Ping() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := t.port.Write([]byte{0x27}); err != nil {
		return false
	}
	buf := make([]byte, 1)
	n, err := t.port.Read(buf)
	return err == nil && n == 1 && buf[0] == 'Q'
}

func (t *SerialTrigger) Send(code byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, err := t.port.Write([]byte{code})
	return err
}

func (t *SerialTrigger) Close() error {
	if t.port == nil {
		return nil
	}
	return t.port.Close()
}

type NopTrigger struct{}

func (NopTrigger) Send(byte) error { return nil }
func (NopTrigger) Close() error    { return nil }

// RecordingTrigger keeps every code sent, for dry runs and tests.
type RecordingTrigger struct {
	mu    sync.Mutex
	codes []byte
}

func (t *RecordingTrigger) Send(code byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.codes = append(t.codes, code)
	return nil
}

func (t *RecordingTrigger) Close() error { return nil }

func (t *RecordingTrigger) Codes() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()

	return append([]byte(nil), t.codes...)
}

// SendTrigger sends code on t. Failures are logged, never returned.
func (e *ExperimentHandler) SendTrigger(t Trigger, code byte) {
	if t == nil {
		return
	}
	if err := t.Send(code); err != nil {
		e.Log.Warn().Err(err).Uint8("trigger", code).Msg("Trigger write failed")
		return
	}
	e.Log.Debug().Uint8("trigger", code).Msg("Trigger sent")
}
