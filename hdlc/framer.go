// Package hdlc implements the bit-level HDLC framer: flag
// synchronization, bit-destuffing, frame boundary recognition, abort
// handling, and watchdog-driven resynchronization. It hands completed
// candidate byte strings to the ax25 package for decoding.
package hdlc

import (
	"sync"
	"time"

	"github.com/kd7lxl/afsklink/ax25"
	"github.com/kd7lxl/afsklink/internal/logging"
)

// DefaultTimeout is the watchdog resync interval used when Configure
// has not been called.
const DefaultTimeout = 2 * time.Second

// minCompleteFrameLen is the smallest frameBytes length at which a
// flag-terminated candidate is considered worth decoding, per the
// minimum legal AX.25 frame size.
const minCompleteFrameLen = 17

// maxFrameLen bounds runaway accumulation in FRAMING: real AX.25
// information fields top out at 256 bytes, so this is a generous
// margin that tolerates large digipeater paths without false-rejecting
// them.
const maxFrameLen = 330

// Stats reports framer activity useful to an operator, none of which
// affects decoding behavior.
type Stats struct {
	FramesCompleted int
	FramesDropped   int // short/bad-CRC in strict mode, oversize, aborts
	WatchdogResyncs int
	ChannelDropped  int // a completed frame the output channel couldn't accept
}

// Framer is a single HDLC bit-stream decoder. It is not safe for
// concurrent Push calls; the fields the watchdog touches are state and
// the Stats.WatchdogResyncs counter, both written under mu.
type Framer struct {
	mu    sync.Mutex
	state State

	// Bit-accumulation fields: touched only by Push.
	shift         uint16
	bitsSinceByte int // 0-7, bits accumulated toward the byte in progress
	onesRun       int // 0-6, consecutive one-bits most recently seen
	frameBytes    []byte

	permissive bool
	timeout    time.Duration
	timer      *time.Timer

	pending *ax25.Frame
	frames  chan ax25.Frame

	stats Stats

	log *logging.Logger
}

// NewFramer constructs a Framer in the SEARCH state with the default
// permissive mode (false) and watchdog timeout.
func NewFramer() *Framer {
	f := &Framer{
		state:   StateSearch,
		timeout: DefaultTimeout,
		frames:  make(chan ax25.Frame, 8),
		log:     logging.New("hdlc"),
	}
	return f
}

// Configure sets permissive mode and the watchdog timeout. Safe to
// call between Push calls; not safe concurrently with Push.
func (f *Framer) Configure(permissive bool, timeout time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.permissive = permissive
	if timeout > 0 {
		f.timeout = timeout
	}
}

// Frames returns the channel completed frames are delivered on. A
// send that would block (no receiver, buffer full) is dropped and
// counted in Stats.ChannelDropped rather than blocking Push.
func (f *Framer) Frames() <-chan ax25.Frame {
	return f.frames
}

// Stats returns a snapshot of the framer's activity counters.
func (f *Framer) Stats() Stats {
	return f.stats
}

// State returns the framer's current state, synchronized against the
// watchdog.
func (f *Framer) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Close cancels the watchdog timer. A pending completed frame that
// was never Take-n is dropped.
func (f *Framer) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.timer != nil {
		f.timer.Stop()
	}
}

// Ready reports whether a completed frame is waiting for Take.
func (f *Framer) Ready() bool {
	return f.pending != nil
}

// Take returns the pending completed frame and clears it. The second
// return value is false (the idempotent-take sentinel) if no frame is
// pending.
func (f *Framer) Take() (ax25.Frame, bool) {
	if f.pending == nil {
		return ax25.Frame{}, false
	}
	frame := *f.pending
	f.pending = nil
	return frame, true
}

// Push feeds one demodulated bit (the low bit of b; higher bits are
// masked off) into the framer and reports whether a frame is ready
// for Take after processing it.
func (f *Framer) Push(b byte) bool {
	bit := b & 1

	switch f.State() {
	case StateSearch:
		f.pushSearch(bit)
	case StateHunt:
		f.pushHunt(bit)
	case StateFraming:
		f.pushFraming(bit)
	}

	return f.Ready()
}

func (f *Framer) shiftIn(bit byte) byte {
	f.shift = (f.shift >> 1) | (uint16(bit) << 15)
	return byte(f.shift >> 8)
}

// pushSearch checks, on every bit, whether the last eight bits
// received spell the flag pattern: alignment is unknown yet, so the
// check cannot wait for a byte boundary.
func (f *Framer) pushSearch(bit byte) {
	hi := f.shiftIn(bit)
	if hi == flagByte {
		f.bitsSinceByte = 0
		f.setState(StateHunt)
	}
}

// pushHunt accumulates a byte at a time, tolerating back-to-back
// flags as padding and bailing out to SEARCH on bogon bytes.
func (f *Framer) pushHunt(bit byte) {
	hi := f.shiftIn(bit)
	f.bitsSinceByte++
	if f.bitsSinceByte < 8 {
		return
	}
	f.bitsSinceByte = 0

	switch {
	case hi == flagByte:
		// Back-to-back flags are legal padding; stay in HUNT.
	case isBogon(hi):
		f.goSearch()
	default:
		f.frameBytes = []byte{hi}
		f.onesRun = 0
		f.setState(StateFraming)
	}
}

// pushFraming implements bit-destuffing and frame-boundary
// recognition. priorOnesRun (the run length carried in from the
// previous call) determines whether this bit is ordinary frame data,
// the bit immediately following a run of five ones (a stuffed zero or
// a sixth one), or the bit following six ones (the flag's closing zero
// or an abort).
//
// Because a run of six consecutive ones is exactly the flag's
// signature, any flag byte is always caught here, at its trailing
// zero, before that zero would complete an ordinary byte boundary —
// the byte-boundary path below never itself sees a flag value.
func (f *Framer) pushFraming(bit byte) {
	priorOnesRun := f.onesRun
	hi := f.shiftIn(bit)

	if priorOnesRun == 5 {
		if bit == 0 {
			// Stuffed zero: not part of the data. It is shifted back
			// out of the window and not counted towards the byte in
			// progress.
			f.shift <<= 1
			f.onesRun = 0
			return
		}

		// Sixth consecutive one: not frame data. The next bit
		// decides between the closing flag and an abort.
		f.onesRun = 6
		return
	}

	if priorOnesRun == 6 {
		// A zero after six ones completes the closing flag; a
		// seventh consecutive one is an abort.
		f.onesRun = 0
		if bit == 0 && hi == flagByte {
			if len(f.frameBytes) >= minCompleteFrameLen {
				f.completeOrDrop()
			} else {
				f.stats.FramesDropped++
			}
			f.goHunt()
			return
		}
		f.stats.FramesDropped++
		if byte(f.shift) == flagByte {
			// A flag is visible in the older half of the window:
			// salvage synchronization into HUNT rather than
			// dropping all the way back to bit-level search.
			f.goHunt()
		} else {
			f.goSearch()
		}
		return
	}

	if bit == 1 {
		f.onesRun = priorOnesRun + 1
	} else {
		f.onesRun = 0
	}

	// priorOnesRun < 5 here (priorOnesRun 5 and 6 are handled above
	// and always return), so this bit is always real frame data, even
	// when it is the fifth consecutive one that arms the stuffed-zero
	// check above for the next bit. Only the bits after a run of five
	// ones are ever excluded from byte accounting.
	f.bitsSinceByte++
	if f.bitsSinceByte < 8 {
		return
	}
	f.bitsSinceByte = 0
	f.frameBytes = append(f.frameBytes, hi)

	if len(f.frameBytes) > maxFrameLen {
		f.stats.FramesDropped++
		f.goSearch()
	}
}

// completeOrDrop attempts to decode the accumulated frame bytes and
// delivers the result per the permissive/strict policy in §4.5.
func (f *Framer) completeOrDrop() {
	frame, err := ax25.Decode(f.frameBytes, f.permissive)
	if err != nil {
		f.stats.FramesDropped++
		return
	}

	if frame.Valid() {
		f.deliver(frame)
		return
	}

	if f.permissive {
		f.deliver(frame)
		return
	}

	f.stats.FramesDropped++
}

func (f *Framer) deliver(frame ax25.Frame) {
	f.stats.FramesCompleted++
	f.pending = &frame

	select {
	case f.frames <- frame:
	default:
		f.stats.ChannelDropped++
	}
}

func (f *Framer) goHunt() {
	f.frameBytes = nil
	f.bitsSinceByte = 0
	f.onesRun = 0
	f.setState(StateHunt)
}

func (f *Framer) goSearch() {
	f.frameBytes = nil
	f.bitsSinceByte = 0
	f.onesRun = 0
	f.setState(StateSearch)
}

// setState transitions state and, per §4.4, (re)arms the watchdog on
// every entry into HUNT or FRAMING.
func (f *Framer) setState(s State) {
	f.mu.Lock()
	f.state = s
	f.mu.Unlock()

	if s == StateHunt || s == StateFraming {
		f.armWatchdog()
	}
}

func (f *Framer) armWatchdog() {
	f.mu.Lock()
	timeout := f.timeout
	if f.timer != nil {
		f.timer.Stop()
	}
	f.timer = time.AfterFunc(timeout, f.watchdogFire)
	f.mu.Unlock()
}

func (f *Framer) watchdogFire() {
	f.mu.Lock()
	if f.state != StateSearch {
		f.state = StateSearch
		f.stats.WatchdogResyncs++
		f.log.Debug("watchdog resync: forcing SEARCH")
	}
	f.mu.Unlock()
}
