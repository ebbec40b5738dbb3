// Package serialtnc adapts a byte-oriented serial device to the
// hdlc.Framer's one-bit-per-call Push interface. It exists as a
// demonstration delivery adapter: a real AFSK1200 demodulator feeding
// bits one at a time typically sits behind a sound card or SDR, not a
// serial port, but a serial link carrying one bit per byte (as
// produced by hdlc.StuffFrame, or by a hardware modem in a raw bit
// test mode) is a convenient stand-in that is easy to test against a
// pty.
//
// Same open/read/write/close shape as a typical github.com/pkg/term
// wrapper, generalized from a KISS byte stream to a demodulated bit
// stream.
package serialtnc

import (
	"io"

	"github.com/pkg/term"

	"github.com/kd7lxl/afsklink/hdlc"
)

// Port is an open serial device believed to be emitting one
// demodulated bit per byte, low bit significant.
type Port struct {
	fd *term.Term
}

// Open opens device at the given baud rate (0 leaves the current
// speed alone) in raw mode. Rates other than 1200, 2400, 4800, 9600,
// 19200, 38400, 57600 and 115200 set the port to 4800.
func Open(device string, baud int) (*Port, error) {
	fd, err := term.Open(device, term.RawMode)
	if err != nil {
		return nil, err
	}

	switch baud {
	case 0:
	case 1200, 2400, 4800, 9600, 19200, 38400, 57600, 115200:
		if err := fd.SetSpeed(baud); err != nil {
			fd.Close()
			return nil, err
		}
	default:
		if err := fd.SetSpeed(4800); err != nil {
			fd.Close()
			return nil, err
		}
	}

	return &Port{fd: fd}, nil
}

// ReadBit blocks for one byte from the device and returns its low
// bit, mirroring hdlc.Framer.Push's contract.
func (p *Port) ReadBit() (byte, error) {
	var buf [1]byte
	n, err := p.fd.Read(buf[:])
	if n != 1 {
		return 0, err
	}
	return buf[0] & 1, nil
}

// Write sends data to the device unchanged (for transmit-side use:
// writing the output of hdlc.StuffFrame).
func (p *Port) Write(data []byte) (int, error) {
	return p.fd.Write(data)
}

// Close closes the underlying device.
func (p *Port) Close() error {
	return p.fd.Close()
}

// Pump reads bits from the port and feeds them to f until the port
// returns an error. It returns nil when that error is io.EOF
// (typically the peer closing) and the error itself otherwise;
// callers that need to stop early should close the port from another
// goroutine, which unblocks the pending Read.
func Pump(p *Port, f *hdlc.Framer) error {
	for {
		bit, err := p.ReadBit()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		f.Push(bit)
	}
}
