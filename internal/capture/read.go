// internal/capture/read.go
package capture

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/gopacket/pcapgo"
)

// Record is one captured frame.
type Record struct {
	At    time.Time
	Dir   byte
	Frame []byte
}

// ReadFile loads every record of a bus capture.
func ReadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("capture: %w", err)
	}
	defer f.Close()

	return Read(f)
}

// Read loads every record from a pcap stream written by Recorder.
func Read(r io.Reader) ([]Record, error) {
	pr, err := pcapgo.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("capture: read header: %w", err)
	}
	if pr.LinkType() != LinkType {
		return nil, fmt.Errorf("capture: unexpected link type %d", pr.LinkType())
	}

	var out []Record
	for {
		data, ci, err := pr.ReadPacketData()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, fmt.Errorf("capture: read packet: %w", err)
		}
		if len(data) < 2 {
			return out, fmt.Errorf("capture: short packet (%d bytes)", len(data))
		}
		out = append(out, Record{
			At:    ci.Timestamp,
			Dir:   data[0],
			Frame: append([]byte(nil), data[1:]...),
		})
	}
}
