// internal/capture/capture.go
package capture

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"

	"github.com/tamzrod/ppucbus/internal/wire"
)

// LinkType tags bus captures as DLT_USER0. Each packet is one direction
// byte followed by one raw wire frame.
const LinkType = layers.LinkType(147)

const snapLen = 64

// Direction of a captured frame.
const (
	DirSent     byte = '>'
	DirReceived byte = '<'
)

// Recorder writes link traffic to a pcap stream. It implements bus.Tap and
// is safe for concurrent use.
type Recorder struct {
	mu  sync.Mutex
	w   *pcapgo.Writer
	c   io.Closer
	err error
	now func() time.Time
}

// Create opens path for writing and returns a recorder on it.
func Create(path string) (*Recorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("capture: %w", err)
	}
	r, err := New(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return r, nil
}

// New writes the pcap file header to w. Close closes w.
func New(w io.WriteCloser) (*Recorder, error) {
	pw := pcapgo.NewWriter(w)
	if err := pw.WriteFileHeader(snapLen, LinkType); err != nil {
		return nil, fmt.Errorf("capture: write header: %w", err)
	}
	return &Recorder{w: pw, c: w, now: time.Now}, nil
}

// Sent records a frame written to the wire.
func (r *Recorder) Sent(frame []byte) {
	r.record(DirSent, frame)
}

// Received records a decoded inbound event, re-encoded to its frame.
func (r *Recorder) Received(e wire.Event) {
	f := wire.EncodeEvent(e)
	r.record(DirReceived, f[:])
}

func (r *Recorder) record(dir byte, frame []byte) {
	data := make([]byte, 0, 1+len(frame))
	data = append(data, dir)
	data = append(data, frame...)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil || r.w == nil {
		return
	}
	r.err = r.w.WritePacket(gopacket.CaptureInfo{
		Timestamp:     r.now(),
		CaptureLength: len(data),
		Length:        len(data),
	}, data)
}

// Err returns the first write error. Recording stops after it.
func (r *Recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Close stops recording and closes the underlying stream.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.w == nil {
		return nil
	}
	r.w = nil
	return r.c.Close()
}
