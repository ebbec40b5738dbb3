// Command afskdecode reads a demodulated AFSK1200 bit stream — one
// bit per input byte, low bit significant, exactly what hdlc.StuffFrame
// produces and hdlc.Framer.Push consumes — from stdin or a serial TNC
// device, and prints each decoded AX.25 frame to stdout.
//
// It is a thin wiring exercise, not an application: all the decoding
// logic lives in ax25 and hdlc.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/kd7lxl/afsklink/ax25"
	"github.com/kd7lxl/afsklink/hdlc"
	"github.com/kd7lxl/afsklink/internal/config"
	"github.com/kd7lxl/afsklink/internal/logging"
	"github.com/kd7lxl/afsklink/internal/serialtnc"
)

func main() {
	var (
		configFile = pflag.StringP("config-file", "c", "", "YAML config file (see internal/config.Config). Flags below override it.")
		permissive = pflag.BoolP("permissive", "p", false, "Deliver frames with a bad FCS instead of dropping them; replace non-printable callsign characters with '?'.")
		timeout    = pflag.DurationP("timeout", "t", 0, "Watchdog resync timeout. 0 uses the config file value, or hdlc.DefaultTimeout.")
		device     = pflag.StringP("device", "d", "", "Serial device emitting one demodulated bit per byte. Reads stdin if unset.")
		baud       = pflag.IntP("baud", "b", 0, "Baud rate for --device. 0 leaves the port's current speed alone.")
		logLevel   = pflag.StringP("log-level", "l", "", "Logging level: debug, info, warn, error. Overrides the config file.")
		help       = pflag.BoolP("help", "h", false, "Display help text.")
	)

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s - decode an AFSK1200/AX.25 bit stream into frames.\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if *help {
		pflag.Usage()
		os.Exit(0)
	}

	cfg := config.Default()
	if *configFile != "" {
		loaded, err := config.Load(*configFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *permissive {
		cfg.Permissive = true
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	logging.SetLevel(cfg.LogLevel)
	log := logging.New("afskdecode")

	watchdogTimeout := time.Duration(cfg.WatchdogTimeout)
	if *timeout > 0 {
		watchdogTimeout = *timeout
	}

	framer := hdlc.NewFramer()
	framer.Configure(cfg.Permissive, watchdogTimeout)
	defer framer.Close()

	go printFrames(framer)

	if *device != "" {
		port, err := serialtnc.Open(*device, *baud)
		if err != nil {
			log.Error("opening serial device", "device", *device, "err", err)
			os.Exit(1)
		}
		defer port.Close()

		if err := serialtnc.Pump(port, framer); err != nil {
			log.Error("reading from serial device", "err", err)
			os.Exit(1)
		}
		return
	}

	if err := pumpStdin(os.Stdin, framer); err != nil {
		log.Error("reading stdin", "err", err)
		os.Exit(1)
	}
}

// pumpStdin feeds one bit per input byte (low bit significant) into
// framer until EOF.
func pumpStdin(r io.Reader, framer *hdlc.Framer) error {
	reader := bufio.NewReader(r)
	for {
		b, err := reader.ReadByte()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		framer.Push(b)
	}
}

func printFrames(framer *hdlc.Framer) {
	for frame := range framer.Frames() {
		writeFrame(os.Stdout, frame)
	}
}

func writeFrame(w io.Writer, frame ax25.Frame) {
	fmt.Fprintln(w, "---")
	_, _ = frame.WriteTo(w)
}
