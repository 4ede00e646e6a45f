// internal/bus/timings.go
package bus

import "time"

// Timings holds every fixed delay and timeout of the engine.
// Zero durations skip the corresponding sleep.
type Timings struct {
	// Per-operation serial timeouts.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// ConfigDelay precedes every configuration record so bulk
	// configuration does not overrun a board's receive buffer.
	ConfigDelay time.Duration

	// Bring-up.
	Settle     time.Duration // after opening the port
	ResetGrace time.Duration // boards reset outputs and wait for a debugger
	PingDelay  time.Duration // before the ping broadcast
	PingSettle time.Duration // after the ping broadcast

	// ModeSwitchDelay lets the polled board's transceiver flip between
	// receive and transmit. Applied after the poll request and after the burst.
	ModeSwitchDelay time.Duration

	// ReceiveBudget bounds a single attempt to decode an inbound frame.
	ReceiveBudget time.Duration

	// IdleWait bounds how long the dispatcher blocks on an empty queue when
	// it has nothing to poll.
	IdleWait time.Duration
}

// DefaultTimings matches the I/O board firmware.
func DefaultTimings() Timings {
	return Timings{
		ReadTimeout:     2 * time.Millisecond,
		WriteTimeout:    4 * time.Millisecond,
		ConfigDelay:     5 * time.Millisecond,
		Settle:          200 * time.Millisecond,
		ResetGrace:      4 * time.Second,
		PingDelay:       500 * time.Millisecond,
		PingSettle:      100 * time.Millisecond,
		ModeSwitchDelay: time.Millisecond,
		ReceiveBudget:   8 * time.Millisecond,
		IdleWait:        time.Millisecond,
	}
}

func sleep(d time.Duration) {
	if d > 0 {
		time.Sleep(d)
	}
}
