package submit

import (
	"sync/atomic"
	"time"
)

const (
	// RotationInterval is how often the loading message changes.
	RotationInterval = 2000 * time.Millisecond
	// SuccessHold is how long the success state is shown before closing.
	SuccessHold = 1500 * time.Millisecond
)

// Gate admits one submission at a time.
type Gate struct {
	submitting atomic.Bool
}

// TryAcquire marks a submission as in flight. It returns false if one
// already is.
func (g *Gate) TryAcquire() bool {
	return g.submitting.CompareAndSwap(false, true)
}

// Release reopens the gate.
func (g *Gate) Release() {
	g.submitting.Store(false)
}

// Submitting reports whether a submission is in flight.
func (g *Gate) Submitting() bool {
	return g.submitting.Load()
}

// DefaultMessages are shown in turn while an activity is being created.
var DefaultMessages = []string{
	"Creating your activity...",
	"Getting the group together...",
	"Scouting the neighborhood...",
	"Almost there...",
}

// Messages cycles through loading messages.
type Messages struct {
	list []string
	i    int
}

func NewMessages(list []string) *Messages {
	if len(list) == 0 {
		list = DefaultMessages
	}
	return &Messages{list: list}
}

// Current returns the message on screen.
func (m *Messages) Current() string {
	return m.list[m.i]
}

// Next advances to the following message, wrapping around.
func (m *Messages) Next() string {
	m.i = (m.i + 1) % len(m.list)
	return m.list[m.i]
}

// Reset goes back to the first message.
func (m *Messages) Reset() {
	m.i = 0
}
