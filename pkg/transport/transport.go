// Package transport defines the bounded duplex channel contract the
// protocol engine and the agent client exchange wire messages through, plus
// two reference implementations: an in-process pipe and a stream-socket
// adapter.
package transport

import (
	"errors"

	"github.com/google/uuid"
)

// DefaultCapacity is the fixed size of one message slot, in bytes. The
// channel is sized for one environment's worth of observation or action data
// per step, not for streaming.
const DefaultCapacity = 4096

var (
	// ErrClosed reports that the peer is gone or the channel was closed.
	ErrClosed = errors.New("transport: channel closed")
	// ErrTooLarge reports a message that does not fit the channel capacity.
	ErrTooLarge = errors.New("transport: message exceeds channel capacity")
)

// Channel is one endpoint of the bounded duplex link between the simulation
// process and the agent process. Sends and receives are bracketed: Begin
// acquires the buffer (or blocks for the peer's committed message), End
// commits (or releases) it. Cross-process mutual exclusion and blocking are
// the implementation's responsibility; callers only see the brackets.
//
// A channel pair is exclusively owned by one environment id for the duration
// of a run. Strict request/response alternation is assumed, never enforced
// here.
type Channel interface {
	// SendBegin returns the send buffer, Capacity bytes long.
	SendBegin() ([]byte, error)
	// SendEnd commits the first n bytes of the send buffer to the peer.
	SendEnd(n int) error
	// RecvBegin blocks until the peer has committed a message, then returns
	// it. The returned slice is valid until RecvEnd.
	RecvBegin() ([]byte, error)
	// RecvEnd releases the received message slot.
	RecvEnd() error
	// Capacity is the fixed per-message size bound.
	Capacity() int
	Close() error
}

// Names is the channel name set owned by one environment id: a segment, one
// queue per direction, and a lock. Independent environment instances in one
// process get disjoint name sets and never share transport state.
type Names struct {
	Segment    string
	SimToAgent string
	AgentToSim string
	Lock       string
}

// NamesFor derives the name set for an environment id.
func NamesFor(envID string) Names {
	return Names{
		Segment:    "seg-" + envID,
		SimToAgent: "sim2agent-" + envID,
		AgentToSim: "agent2sim-" + envID,
		Lock:       "lock-" + envID,
	}
}

// NewEnvID returns a fresh environment id for one run.
func NewEnvID() string {
	return uuid.NewString()
}
