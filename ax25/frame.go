// Package ax25 decodes AX.25 v2.2 link-layer frames: the address
// field (destination, source, digipeater path), control/PID/info
// layout, and the frame-check sequence. It does not interpret the
// information field itself; see the sibling aprsfield package for a
// minimal demonstration of that on top of Frame.Info.
package ax25

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// Kind classifies the control field of a decoded frame.
type Kind int

const (
	KindUndefined Kind = iota
	KindInformation
	KindSupervisory
	KindUnnumbered
)

func (k Kind) String() string {
	switch k {
	case KindInformation:
		return "INFORMATION"
	case KindSupervisory:
		return "SUPERVISORY"
	case KindUnnumbered:
		return "UNNUMBERED"
	default:
		return "UNDEFINED"
	}
}

// minFrameLen is 2 full addresses + control + 2 FCS bytes, with a
// zero-length info field.
const minFrameLen = 2*addressLen + 1 + 2

// maxRepeaters is the AX.25 v2.2 digipeater-path cap. Decode tolerates
// more than this without enforcing it; CRC and the HDLC watchdog are
// the real guards against runaway address fields.
const maxRepeaters = 8

// ErrShortFrame is returned when a candidate frame is shorter than
// the minimum legal AX.25 length and was therefore never decoded.
var ErrShortFrame = errors.New("ax25: candidate frame shorter than minimum legal length")

// Frame is a fully decoded, read-only AX.25 frame.
type Frame struct {
	Destination Address
	Source      Address
	Repeaters   []Address

	Kind        Kind
	ControlByte byte
	PID         *byte // non-nil only for UNNUMBERED frames carrying a PID
	Info        []byte

	ReceivedFCS uint16
	ComputedCRC uint16
}

// Valid reports whether the transmitted FCS matches the CRC computed
// over the frame payload.
func (f Frame) Valid() bool {
	return f.ReceivedFCS == f.ComputedCRC
}

// Decode parses raw, a candidate frame byte string as produced by the
// HDLC framer (flags and bit-stuffing already removed), into a Frame.
// permissive controls how non-printable callsign characters are
// handled (see decodeAddress); it does not affect CRC validation,
// which Decode always performs and reports via Frame.Valid.
//
// Decode returns ErrShortFrame for candidates under the minimum legal
// length without attempting to parse them further.
func Decode(raw []byte, permissive bool) (Frame, error) {
	if len(raw) < minFrameLen {
		return Frame{}, ErrShortFrame
	}

	var f Frame
	f.ComputedCRC = ComputeCRC(raw[:len(raw)-2])
	f.ReceivedFCS = receivedFCS(raw)

	offset := 0

	var dest [addressLen]byte
	copy(dest[:], raw[offset:offset+addressLen])
	f.Destination, _ = decodeAddress(dest, permissive)
	offset += addressLen

	var src [addressLen]byte
	copy(src[:], raw[offset:offset+addressLen])
	var srcExtFollows bool
	f.Source, srcExtFollows = decodeAddress(src, permissive)
	offset += addressLen

	if srcExtFollows {
		for offset+addressLen <= len(raw)-1-2 {
			var rep [addressLen]byte
			copy(rep[:], raw[offset:offset+addressLen])
			addr, extFollows := decodeAddress(rep, permissive)
			f.Repeaters = append(f.Repeaters, addr)
			offset += addressLen
			if !extFollows {
				break
			}
		}
	}

	if offset >= len(raw)-2 {
		return Frame{}, fmt.Errorf("ax25: address field runs past frame bounds")
	}

	f.ControlByte = raw[offset]
	f.Kind = classify(f.ControlByte)
	offset++

	if f.Kind == KindUnnumbered && offset < len(raw)-2 {
		pid := raw[offset]
		f.PID = &pid
		offset++
	}

	f.Info = append([]byte(nil), raw[offset:len(raw)-2]...)

	return f, nil
}

// classify maps the low two control bits to a frame Kind per AX.25 §4.3.
func classify(ctrl byte) Kind {
	switch ctrl & 0x03 {
	case 0x00, 0x02:
		return KindInformation
	case 0x01:
		return KindSupervisory
	case 0x03:
		return KindUnnumbered
	default:
		return KindUndefined
	}
}

// WriteTo renders the human-readable fixture format used by tests:
//
//	Dest: <CALLSIGN[-SSID]>
//	Source: <CALLSIGN[-SSID]>
//	Via: <repeater1> <repeater2> ...            (omitted when empty)
//	PID: <hex or "none">
//	Info:
//	<info bytes; non-printable rendered as "0x<HH> ">
//	FCS: <decimal>
//	CRC: <decimal>
func (f Frame) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Dest: %s\n", f.Destination)
	fmt.Fprintf(&buf, "Source: %s\n", f.Source)

	if len(f.Repeaters) > 0 {
		buf.WriteString("Via:")
		for _, r := range f.Repeaters {
			buf.WriteString(" ")
			buf.WriteString(r.String())
		}
		buf.WriteString("\n")
	}

	if f.PID != nil {
		fmt.Fprintf(&buf, "PID: %#02x\n", *f.PID)
	} else {
		buf.WriteString("PID: none\n")
	}

	buf.WriteString("Info:\n")
	for _, b := range f.Info {
		if b >= 0x20 && b < 0x7F {
			buf.WriteByte(b)
		} else {
			fmt.Fprintf(&buf, "0x%02x ", b)
		}
	}
	buf.WriteString("\n")

	fmt.Fprintf(&buf, "FCS: %d\n", f.ReceivedFCS)
	fmt.Fprintf(&buf, "CRC: %d\n", f.ComputedCRC)

	n, err := w.Write(buf.Bytes())
	return int64(n), err
}

// String returns the WriteTo rendering as a string.
func (f Frame) String() string {
	var buf bytes.Buffer
	_, _ = f.WriteTo(&buf)
	return buf.String()
}
