// internal/bus/registry.go
package bus

import (
	"fmt"
	"sync/atomic"
)

// Registry tracks discovered boards and the switch-poll order.
//
// The poll list is written only before the dispatcher starts. Active flags
// are atomic because pong classification may run on the dispatcher.
type Registry struct {
	active [MaxBoards]atomic.Bool
	poll   []BoardID
}

// MarkActive flags b as present. Out-of-range ids are ignored.
func (r *Registry) MarkActive(b BoardID) bool {
	if !b.Valid() {
		return false
	}
	r.active[b].Store(true)
	return true
}

// Active reports whether b answered discovery.
func (r *Registry) Active(b BoardID) bool {
	return b.Valid() && r.active[b].Load()
}

// ActiveBoards lists present boards in address order.
func (r *Registry) ActiveBoards() []BoardID {
	var out []BoardID
	for i := range r.active {
		if r.active[i].Load() {
			out = append(out, BoardID(i))
		}
	}
	return out
}

// RegisterPoll appends b to the poll list.
func (r *Registry) RegisterPoll(b BoardID) error {
	if !b.Valid() {
		return fmt.Errorf("bus: board %d out of range (max %d)", b, MaxBoards-1)
	}
	if len(r.poll) >= MaxBoards {
		return fmt.Errorf("bus: poll list full (%d boards)", MaxBoards)
	}
	r.poll = append(r.poll, b)
	return nil
}

// PollList returns a copy of the poll order.
func (r *Registry) PollList() []BoardID {
	return append([]BoardID(nil), r.poll...)
}
