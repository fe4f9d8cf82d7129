package transport

import "sync"

// Pipe returns the two endpoints of an in-process duplex channel with the
// given per-message capacity (DefaultCapacity when capacity <= 0). Each
// direction holds at most one committed message, which matches the strict
// send/receive alternation of the protocol: a second send would block until
// the peer drains the first.
func Pipe(capacity int) (sim, agent Channel) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	simToAgent := make(chan []byte, 1)
	agentToSim := make(chan []byte, 1)
	done := make(chan struct{})
	once := &sync.Once{}
	sim = &pipeEnd{
		send:     simToAgent,
		recv:     agentToSim,
		done:     done,
		once:     once,
		capacity: capacity,
		buf:      make([]byte, capacity),
	}
	agent = &pipeEnd{
		send:     agentToSim,
		recv:     simToAgent,
		done:     done,
		once:     once,
		capacity: capacity,
		buf:      make([]byte, capacity),
	}
	return sim, agent
}

type pipeEnd struct {
	send     chan []byte
	recv     chan []byte
	done     chan struct{}
	once     *sync.Once
	capacity int
	buf      []byte
	pending  []byte
}

func (p *pipeEnd) SendBegin() ([]byte, error) {
	select {
	case <-p.done:
		return nil, ErrClosed
	default:
	}
	return p.buf, nil
}

func (p *pipeEnd) SendEnd(n int) error {
	if n > p.capacity {
		return ErrTooLarge
	}
	msg := make([]byte, n)
	copy(msg, p.buf[:n])
	select {
	case p.send <- msg:
		return nil
	case <-p.done:
		return ErrClosed
	}
}

func (p *pipeEnd) RecvBegin() ([]byte, error) {
	select {
	case msg := <-p.recv:
		p.pending = msg
		return msg, nil
	case <-p.done:
		// drain a message committed before the close
		select {
		case msg := <-p.recv:
			p.pending = msg
			return msg, nil
		default:
			return nil, ErrClosed
		}
	}
}

func (p *pipeEnd) RecvEnd() error {
	p.pending = nil
	return nil
}

func (p *pipeEnd) Capacity() int { return p.capacity }

func (p *pipeEnd) Close() error {
	p.once.Do(func() { close(p.done) })
	return nil
}
