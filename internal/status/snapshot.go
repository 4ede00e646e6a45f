// internal/status/snapshot.go
package status

// Snapshot represents exactly what the mirror is allowed to deliver.
// It contains no logic and no memory of the past beyond current state.
type Snapshot struct {
	Health         uint16
	LastErrorCode  uint16
	SecondsInError uint16

	Active []uint8 // boards that answered discovery
	Poll   []uint8 // switch-poll list, in poll order
}

// Assess derives health and error code from the bus view.
// SecondsInError is owned by the caller's 1 Hz ticker and left untouched.
func Assess(s *Snapshot, connected bool) {
	switch {
	case !connected:
		s.Health = HealthDisconnected
		s.LastErrorCode = ErrLinkClosed
	case !covers(s.Active, s.Poll):
		s.Health = HealthError
		s.LastErrorCode = ErrBoardMissing
	default:
		s.Health = HealthOK
		s.LastErrorCode = ErrNone
	}
}

func covers(active, poll []uint8) bool {
	m := Mask(active)
	for _, b := range poll {
		if b >= MaxBoards || m&(1<<b) == 0 {
			return false
		}
	}
	return true
}
