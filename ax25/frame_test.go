package ax25

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_MinimalUIFrame(t *testing.T) {
	dest := Address{Call: "APRS", SSID: 0}
	src := Address{Call: "N0CALL", SSID: 0}
	pid := byte(0xF0)
	raw := EncodeFrame(dest, src, nil, 0x03, &pid, []byte("Test"))

	frame, err := Decode(raw, true)
	require.NoError(t, err)

	assert.Equal(t, dest, frame.Destination)
	assert.Equal(t, src, frame.Source)
	assert.Empty(t, frame.Repeaters)
	assert.Equal(t, KindUnnumbered, frame.Kind)
	require.NotNil(t, frame.PID)
	assert.Equal(t, byte(0xF0), *frame.PID)
	assert.Equal(t, []byte("Test"), frame.Info)
	assert.True(t, frame.Valid())
}

func TestDecode_TwoDigipeaters(t *testing.T) {
	dest := Address{Call: "APRS", SSID: 0}
	src := Address{Call: "N0CALL", SSID: 0}
	repeaters := []Address{
		{Call: "WIDE1", SSID: 1},
		{Call: "WIDE2", SSID: 2},
	}
	pid := byte(0xF0)
	raw := EncodeFrame(dest, src, repeaters, 0x03, &pid, []byte("hello"))

	frame, err := Decode(raw, true)
	require.NoError(t, err)

	require.Len(t, frame.Repeaters, 2)
	assert.Equal(t, repeaters[0], frame.Repeaters[0])
	assert.Equal(t, repeaters[1], frame.Repeaters[1])
	assert.True(t, frame.Valid())
}

func TestDecode_SupervisoryFrameHasNoPID(t *testing.T) {
	dest := Address{Call: "APRS", SSID: 0}
	src := Address{Call: "N0CALL", SSID: 0}
	// Control 0x01 -> low two bits 01 -> SUPERVISORY, never carries a PID.
	raw := EncodeFrame(dest, src, nil, 0x01, nil, nil)

	frame, err := Decode(raw, true)
	require.NoError(t, err)

	assert.Equal(t, KindSupervisory, frame.Kind)
	assert.Nil(t, frame.PID)
	assert.Empty(t, frame.Info)
}

func TestDecode_ControlByteClassification(t *testing.T) {
	assert.Equal(t, KindInformation, classify(0x00))
	assert.Equal(t, KindInformation, classify(0x02))
	assert.Equal(t, KindSupervisory, classify(0x01))
	assert.Equal(t, KindUnnumbered, classify(0x03))
}

func TestDecode_ShortFrameRejected(t *testing.T) {
	_, err := Decode(make([]byte, minFrameLen-1), true)
	assert.ErrorIs(t, err, ErrShortFrame)
}

func TestDecode_CorruptedFCSIsInvalidButStillParses(t *testing.T) {
	dest := Address{Call: "APRS", SSID: 0}
	src := Address{Call: "N0CALL", SSID: 0}
	pid := byte(0xF0)
	raw := EncodeFrame(dest, src, nil, 0x03, &pid, []byte("Test"))
	raw[len(raw)-1] ^= 0xFF

	frame, err := Decode(raw, true)
	require.NoError(t, err)
	assert.False(t, frame.Valid())
	assert.Equal(t, dest, frame.Destination) // address parsing is unaffected by FCS corruption
}

func TestFrame_WriteTo_Format(t *testing.T) {
	dest := Address{Call: "APRS", SSID: 0}
	src := Address{Call: "N0CALL", SSID: 0}
	repeaters := []Address{{Call: "WIDE1", SSID: 1}}
	pid := byte(0xF0)
	raw := EncodeFrame(dest, src, repeaters, 0x03, &pid, []byte("Test"))

	frame, err := Decode(raw, true)
	require.NoError(t, err)

	out := frame.String()
	assert.True(t, strings.HasPrefix(out, "Dest: APRS\nSource: N0CALL\nVia: WIDE1-1\nPID: 0xf0\nInfo:\nTest\n"))
	assert.Contains(t, out, "FCS: ")
	assert.Contains(t, out, "CRC: ")
}

func TestFrame_WriteTo_OmitsViaWhenNoRepeaters(t *testing.T) {
	dest := Address{Call: "APRS", SSID: 0}
	src := Address{Call: "N0CALL", SSID: 0}
	pid := byte(0xF0)
	raw := EncodeFrame(dest, src, nil, 0x03, &pid, nil)

	frame, err := Decode(raw, true)
	require.NoError(t, err)

	assert.NotContains(t, frame.String(), "Via:")
	assert.Contains(t, frame.String(), "PID: 0xf0\n")
}

func TestFrame_WriteTo_EscapesNonPrintableInfo(t *testing.T) {
	dest := Address{Call: "APRS", SSID: 0}
	src := Address{Call: "N0CALL", SSID: 0}
	raw := EncodeFrame(dest, src, nil, 0x01, nil, []byte{0x01, 'A'})

	frame, err := Decode(raw, true)
	require.NoError(t, err)

	assert.Contains(t, frame.String(), "0x01 A")
}
