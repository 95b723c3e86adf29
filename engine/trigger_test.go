package engine

import (
	"bytes"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

type failingTrigger struct{}

func (failingTrigger) Send(byte) error { return errors.New("port gone") }
func (failingTrigger) Close() error    { return nil }

func TestSendTriggerRecords(t *testing.T) {
	exp := newTestHandler(t)
	rec := &RecordingTrigger{}
	exp.SendTrigger(rec, 25)
	exp.SendTrigger(rec, 30)
	exp.SendTrigger(nil, 99)
	assert.Equal(t, []byte{25, 30}, rec.Codes())
}

func TestSendTriggerLogsFailures(t *testing.T) {
	var out bytes.Buffer
	exp := newTestHandler(t)
	exp.Log = zerolog.New(&out)

	exp.SendTrigger(failingTrigger{}, 100)
	assert.Contains(t, out.String(), "Trigger write failed")
	assert.Contains(t, out.String(), `"trigger":100`)
}

func TestOpenSerialTriggerMissingDevice(t *testing.T) {
	_, err := OpenSerialTrigger(SerialConfig{Device: "/dev/does-not-exist", BaudRate: 115200})
	assert.Error(t, err)
}
