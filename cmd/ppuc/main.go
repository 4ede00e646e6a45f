// cmd/ppuc/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/tamzrod/ppucbus/internal/bus"
	"github.com/tamzrod/ppucbus/internal/capture"
	"github.com/tamzrod/ppucbus/internal/config"
	"github.com/tamzrod/ppucbus/internal/hwtest"
	"github.com/tamzrod/ppucbus/internal/machine"
	"github.com/tamzrod/ppucbus/internal/mirror"
	"github.com/tamzrod/ppucbus/internal/serialport"
	"github.com/tamzrod/ppucbus/internal/status"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

// run returns instead of exiting so deferred cleanup (queue drain,
// disconnect, capture close) always happens.
func run() error {
	var (
		cfgPath   = pflag.StringP("config", "c", "", "machine configuration `file` (YAML)")
		serial    = pflag.StringP("serial", "s", "", "serial `device`, overrides serialPort")
		rom       = pflag.StringP("rom", "r", "", "ROM name, overrides rom")
		debug     = pflag.BoolP("debug", "d", false, "trace every frame on the bus")
		testName  = pflag.StringP("test", "t", "", "run a hardware test: coil, lamp, flasher, gi or switch")
		number    = pflag.IntP("number", "n", 0, "limit the hardware test to one output number")
		capPath   = pflag.String("capture", "", "record bus traffic to a pcap `file`, overrides bus.capture")
		dumpPath  = pflag.String("dump", "", "print a bus capture `file` and exit")
		listPorts = pflag.Bool("list-ports", false, "list serial ports and exit")
	)
	pflag.Parse()

	if *listPorts {
		ports, err := serialport.List()
		if err != nil {
			return fmt.Errorf("list ports failed: %w", err)
		}
		for _, p := range ports {
			fmt.Println(p)
		}
		return nil
	}

	if *dumpPath != "" {
		if err := dump(*dumpPath); err != nil {
			return fmt.Errorf("dump failed: %w", err)
		}
		return nil
	}

	if *cfgPath == "" {
		return errors.New("usage: ppuc -c <config.yaml> [-s serial] [-r rom] [-d] [-t test] [-n number]")
	}

	// --------------------
	// Load config
	// --------------------

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	// --------------------
	// Bus link + machine
	// --------------------

	open, err := serialport.OpenerFor(cfg.Bus.Driver)
	if err != nil {
		return fmt.Errorf("serial driver failed: %w", err)
	}

	link := bus.New(bus.Options{
		Open:    open,
		RS485:   rs485(cfg.Bus.RS485),
		Timings: bus.DefaultTimings(),
	})
	link.SetLogger(log.New(os.Stderr, "[bus] ", log.LstdFlags|log.Lmicroseconds).Printf)

	m := machine.New(link)
	m.SetLogger(log.Printf)

	// validates, normalizes and translates
	if err := m.Configure(cfg); err != nil {
		return fmt.Errorf("configuration failed: %w", err)
	}

	// command line preferred over the document
	if *serial != "" {
		m.SetSerial(*serial)
	}
	if *rom != "" {
		m.SetRom(*rom)
	}
	if pflag.CommandLine.Changed("debug") {
		m.SetDebug(*debug)
	}
	if *capPath != "" {
		cfg.Bus.Capture = *capPath
	}

	if m.Serial() == "" {
		return errors.New("no serial device: set serialPort or pass -s")
	}

	if cfg.Bus.Capture != "" {
		rec, err := capture.Create(cfg.Bus.Capture)
		if err != nil {
			return fmt.Errorf("capture failed: %w", err)
		}
		defer func() {
			if err := rec.Err(); err != nil {
				log.Printf("capture incomplete (file=%s): %v", cfg.Bus.Capture, err)
			}
			_ = rec.Close()
		}()
		link.SetTap(rec)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --------------------
	// Connect
	// --------------------

	ok, err := m.Connect()
	if !ok {
		return fmt.Errorf("connect failed (device=%s): %w", m.Serial(), err)
	}
	defer func() {
		if err := m.Disconnect(); err != nil {
			log.Printf("disconnect failed (device=%s): %v", m.Serial(), err)
		}
	}()

	log.Printf("connected (device=%s rom=%s platform=%s active=%v)", m.Serial(), m.Rom(), m.Platform(), link.ActiveBoards())

	if *testName != "" {
		t := hwtest.New(m, os.Stdout)
		if err := t.Run(ctx, *testName, *number); err != nil && ctx.Err() == nil {
			return fmt.Errorf("test failed (test=%s): %w", *testName, err)
		}
		return nil
	}

	// --------------------
	// Optional Modbus mirror
	// --------------------

	var mir *mirror.Mirror
	if cfg.Mirror != nil {
		mm, closeMirror, err := mirror.Dial(cfg.Mirror, m.Rom())
		if err != nil {
			return fmt.Errorf("mirror failed (endpoint=%s): %w", cfg.Mirror.Endpoint, err)
		}
		defer closeMirror()
		mir = mm
	}

	m.StartUpdates()
	stream(ctx, m, link, mir)

	// drained by the deferred Disconnect
	m.StopUpdates()
	return nil
}

// stream logs switch transitions until ctx is done, feeding the mirror when
// one is configured.
func stream(ctx context.Context, m *machine.Machine, link *bus.Link, mir *mirror.Mirror) {
	var snap status.Snapshot
	snap.Health = status.HealthUnknown

	secTicker := time.NewTicker(time.Second)
	defer secTicker.Stop()

	refresh := func() {
		snap.Active = boardNumbers(link.ActiveBoards())
		snap.Poll = boardNumbers(link.PollList())
		status.Assess(&snap, link.Connected())
		if snap.Health == status.HealthOK {
			snap.SecondsInError = 0
		}
	}

	// Full block write on start (identity re-assert) if enabled.
	if mir != nil {
		refresh()
		if err := mir.WriteStatus(snap); err != nil {
			log.Printf("status write failed on start: %v", err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return

		case s := <-link.Switches():
			if sw, known := m.Switch(s.Number); known {
				log.Printf("switch %d -> %d (%s)", s.Number, s.State, sw.Description)
			} else {
				log.Printf("switch %d -> %d", s.Number, s.State)
			}
			if mir != nil {
				if err := mir.Switch(s); err != nil {
					log.Printf("mirror error (switch=%d): %v", s.Number, err)
				}
			}

		case <-secTicker.C:
			if mir == nil {
				continue
			}

			refresh()
			// Tick 1 Hz while not OK.
			if snap.Health != status.HealthOK && snap.SecondsInError < 65535 {
				snap.SecondsInError++
			}
			if err := mir.WriteStatus(snap); err != nil {
				log.Printf("status write failed: %v", err)
			}
		}
	}
}

func boardNumbers(ids []bus.BoardID) []uint8 {
	out := make([]uint8, len(ids))
	for i, id := range ids {
		out[i] = uint8(id)
	}
	return out
}

func rs485(c config.RS485Config) serialport.RS485Config {
	return serialport.RS485Config{
		Enabled:            c.Enabled,
		DelayRtsBeforeSend: time.Duration(c.DelayRtsBeforeSendUs) * time.Microsecond,
		DelayRtsAfterSend:  time.Duration(c.DelayRtsAfterSendUs) * time.Microsecond,
		RtsHighDuringSend:  c.RtsHighDuringSend,
		RtsHighAfterSend:   c.RtsHighAfterSend,
		RxDuringTx:         c.RxDuringTx,
	}
}

// dump prints a capture written by a previous run.
func dump(path string) error {
	recs, err := capture.ReadFile(path)
	if err != nil {
		return err
	}
	for _, r := range recs {
		fmt.Printf("%s %c % X\n", r.At.Format("15:04:05.000000"), r.Dir, r.Frame)
	}
	return nil
}
