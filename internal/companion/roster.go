package companion

import (
	"fmt"
	"time"
)

// Roster ticks independent companions in a fixed order.
type Roster struct {
	members []*Companion
}

// NewRoster creates a roster over members.
func NewRoster(members ...*Companion) *Roster {
	return &Roster{members: members}
}

// Members returns the companions in tick order.
func (r *Roster) Members() []*Companion {
	return r.members
}

// Len returns the number of companions.
func (r *Roster) Len() int {
	return len(r.members)
}

// Tick ticks every companion by dt. It stops at the first failure.
//
// Postcondition: a returned error wraps the companion's error and names it.
func (r *Roster) Tick(dt time.Duration) error {
	for _, c := range r.members {
		if err := c.Tick(dt); err != nil {
			return fmt.Errorf("companion %s: %w", c.id, err)
		}
	}
	return nil
}
