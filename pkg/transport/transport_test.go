package transport

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sendBytes(ch Channel, msg []byte) error {
	buf, err := ch.SendBegin()
	if err != nil {
		return err
	}
	copy(buf, msg)
	return ch.SendEnd(len(msg))
}

func recvBytes(ch Channel) ([]byte, error) {
	data, err := ch.RecvBegin()
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, ch.RecvEnd()
}

func TestNamesFor(t *testing.T) {
	a := NamesFor("abc")
	assert.Equal(t, "seg-abc", a.Segment)
	assert.Equal(t, "sim2agent-abc", a.SimToAgent)
	assert.Equal(t, "agent2sim-abc", a.AgentToSim)
	assert.Equal(t, "lock-abc", a.Lock)

	b := NamesFor(NewEnvID())
	assert.NotEqual(t, a.Segment, b.Segment)
}

func TestPipeDuplex(t *testing.T) {
	sim, agent := Pipe(0)
	assert.Equal(t, DefaultCapacity, sim.Capacity())

	require.NoError(t, sendBytes(sim, []byte("state")))
	got, err := recvBytes(agent)
	require.NoError(t, err)
	assert.Equal(t, []byte("state"), got)

	require.NoError(t, sendBytes(agent, []byte("action")))
	got, err = recvBytes(sim)
	require.NoError(t, err)
	assert.Equal(t, []byte("action"), got)
}

func TestPipeTooLarge(t *testing.T) {
	sim, _ := Pipe(8)
	buf, err := sim.SendBegin()
	require.NoError(t, err)
	assert.Len(t, buf, 8)
	assert.ErrorIs(t, sim.SendEnd(9), ErrTooLarge)
}

func TestPipeClose(t *testing.T) {
	t.Run("send after close", func(t *testing.T) {
		sim, agent := Pipe(16)
		require.NoError(t, agent.Close())
		_, err := sim.SendBegin()
		assert.ErrorIs(t, err, ErrClosed)
	})

	t.Run("recv after close drains committed message", func(t *testing.T) {
		sim, agent := Pipe(16)
		require.NoError(t, sendBytes(sim, []byte("last")))
		require.NoError(t, sim.Close())

		got, err := recvBytes(agent)
		require.NoError(t, err)
		assert.Equal(t, []byte("last"), got)

		_, err = agent.RecvBegin()
		assert.ErrorIs(t, err, ErrClosed)
	})

	t.Run("close unblocks a pending recv", func(t *testing.T) {
		sim, agent := Pipe(16)
		errc := make(chan error, 1)
		go func() {
			_, err := agent.RecvBegin()
			errc <- err
		}()
		time.Sleep(10 * time.Millisecond)
		require.NoError(t, sim.Close())
		assert.ErrorIs(t, <-errc, ErrClosed)
	})
}

func dialRetry(t *testing.T, network, addr string, capacity int) *Sock {
	t.Helper()
	var (
		s   *Sock
		err error
	)
	for i := 0; i < 100; i++ {
		s, err = Dial(network, addr, capacity)
		if err == nil {
			return s
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("dial %s %s: %v", network, addr, err)
	return nil
}

func TestSockRoundTrip(t *testing.T) {
	addr := filepath.Join(t.TempDir(), "gymlink.sock")

	type accepted struct {
		s   *Sock
		err error
	}
	acc := make(chan accepted, 1)
	go func() {
		s, err := Listen("unix", addr, 64)
		acc <- accepted{s, err}
	}()

	agent := dialRetry(t, "unix", addr, 64)
	defer agent.Close()

	res := <-acc
	require.NoError(t, res.err)
	sim := res.s
	defer sim.Close()

	require.NoError(t, sendBytes(sim, []byte("hello")))
	got, err := recvBytes(agent)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), got)

	require.NoError(t, sendBytes(agent, []byte("reply")))
	got, err = recvBytes(sim)
	require.NoError(t, err)
	assert.Equal(t, []byte("reply"), got)
}

func TestSockPeerClose(t *testing.T) {
	addr := filepath.Join(t.TempDir(), "gymlink.sock")
	acc := make(chan *Sock, 1)
	go func() {
		s, err := Listen("unix", addr, 64)
		if err != nil {
			acc <- nil
			return
		}
		acc <- s
	}()

	agent := dialRetry(t, "unix", addr, 64)
	sim := <-acc
	require.NotNil(t, sim)

	require.NoError(t, agent.Close())
	_, err := sim.RecvBegin()
	assert.ErrorIs(t, err, ErrClosed)
	sim.Close()
}

func TestSockTooLarge(t *testing.T) {
	addr := filepath.Join(t.TempDir(), "gymlink.sock")
	acc := make(chan *Sock, 1)
	go func() {
		s, _ := Listen("unix", addr, 64)
		acc <- s
	}()

	agent := dialRetry(t, "unix", addr, 64)
	defer agent.Close()
	sim := <-acc
	require.NotNil(t, sim)
	defer sim.Close()

	assert.ErrorIs(t, agent.SendEnd(65), ErrTooLarge)
}
