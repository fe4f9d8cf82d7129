// Package gym implements the protocol engine that lets an external agent
// process observe and control a running simulation in lock-step: the Init
// handshake, the per-step Notify/Act rendezvous, and the stop/termination
// state machine.
//
// The engine runs inside the simulation's single execution context. The only
// points where it blocks are the receive halves of each rendezvous, which
// pause the simulation while the remote side computes.
package gym

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/boristopalov/gymlink/internal/logger"
	"github.com/boristopalov/gymlink/pkg/container"
	"github.com/boristopalov/gymlink/pkg/env"
	"github.com/boristopalov/gymlink/pkg/space"
	"github.com/boristopalov/gymlink/pkg/transport"
	"github.com/boristopalov/gymlink/pkg/wire"
)

// ErrStopRequested is returned when the remote side demands unconditional
// termination. The engine applies no further control after it; the host
// integration point owns the actual shutdown.
var ErrStopRequested = errors.New("gym: remote side requested simulation stop")

type state uint8

const (
	stateUninitialized state = iota
	stateInitialized
	stateTerminated
)

// Interface drives one environment's exchanges over one transport channel.
// It is not safe for concurrent use; the protocol itself is strictly
// sequential.
type Interface struct {
	ch       transport.Channel
	model    env.Env
	logger   *log.Logger
	envID    string
	names    transport.Names
	validate bool
	simEnd   bool
	state    state
}

// Option configures an Interface.
type Option func(*Interface)

// WithEnvID pins the environment id instead of generating one per run.
func WithEnvID(id string) Option {
	return func(i *Interface) {
		i.envID = id
	}
}

// WithLogger replaces the default component logger.
func WithLogger(l *log.Logger) Option {
	return func(i *Interface) {
		i.logger = l
	}
}

// WithActionValidation checks every decoded action against the declared
// action space before executing it. The default is the permissive behavior:
// the remote side is trusted to honor the spaces it acknowledged.
func WithActionValidation() Option {
	return func(i *Interface) {
		i.validate = true
	}
}

// New builds a protocol engine on a transport channel. The environment model
// is bound later, via Notify.
func New(ch transport.Channel, opts ...Option) *Interface {
	i := &Interface{
		ch:     ch,
		logger: logger.Named("gym"),
		envID:  transport.NewEnvID(),
	}
	for _, opt := range opts {
		opt(i)
	}
	i.names = transport.NamesFor(i.envID)
	return i
}

// EnvID returns the environment id owning this channel pair.
func (i *Interface) EnvID() string { return i.envID }

// Terminated reports whether the engine reached its absorbing final state,
// either through a stop request or simulation end.
func (i *Interface) Terminated() bool { return i.state == stateTerminated }

// Init performs the startup handshake: send the space descriptions, block
// for the acknowledgement. Calling Init again is a no-op. ErrStopRequested
// means the remote side refused the run.
func (i *Interface) Init() error {
	if i.state != stateUninitialized {
		return nil
	}
	i.state = stateInitialized

	var msg wire.SimInit
	if i.model != nil {
		if obs := i.model.ObservationSpace(); obs != nil {
			desc := obs.Encode()
			msg.ObsSpace = &desc
		}
		if act := i.model.ActionSpace(); act != nil {
			desc := act.Encode()
			msg.ActSpace = &desc
		}
	}
	i.logger.Debug("sending init", "env", i.envID,
		"obsSpace", msg.ObsSpace != nil, "actSpace", msg.ActSpace != nil)
	if err := i.send(&msg); err != nil {
		return err
	}

	var ack wire.SimInitAck
	if err := i.recv(&ack); err != nil {
		return err
	}
	i.logger.Debug("init ack", "done", ack.Done, "stop", ack.StopSimReq)
	if ack.StopSimReq {
		i.state = stateTerminated
		return ErrStopRequested
	}
	return nil
}

// NotifyCurrentState runs one step rendezvous: pull the current state from
// the model, send it, block for the action reply, decode and execute the
// action. After NotifySimulationEnd the final reply is still received, so
// the remote learns the terminal state, but its action is discarded.
func (i *Interface) NotifyCurrentState() error {
	if i.state == stateUninitialized {
		if err := i.Init(); err != nil {
			return err
		}
	}
	if i.state == stateTerminated {
		return nil
	}

	var msg wire.EnvState
	gameOver := i.simEnd
	if i.model != nil {
		if obs := i.model.Observation(); obs != nil {
			enc := obs.Encode()
			msg.ObsData = &enc
		}
		msg.Reward = i.model.Reward()
		msg.Info = i.model.ExtraInfo()
		gameOver = i.model.GameOver() || i.simEnd
	}
	msg.IsGameOver = gameOver
	if gameOver {
		if i.simEnd {
			msg.Reason = wire.ReasonSimulationEnd
		} else {
			msg.Reason = wire.ReasonGameOver
		}
	}
	i.logger.Debug("sending state", "reward", msg.Reward, "gameOver", msg.IsGameOver)
	if err := i.send(&msg); err != nil {
		return err
	}

	var act wire.EnvAct
	if err := i.recv(&act); err != nil {
		return err
	}

	if i.simEnd {
		// terminal exchange: no further control is applied
		i.state = stateTerminated
		return nil
	}
	if act.StopSimReq {
		i.logger.Debug("stop requested")
		i.state = stateTerminated
		return ErrStopRequested
	}
	if act.ActData == nil {
		return nil
	}
	action := container.Decode(*act.ActData)
	i.logger.Debug("executing action", "action", action)
	if i.validate && i.model != nil {
		if err := space.Check(i.model.ActionSpace(), action); err != nil {
			return fmt.Errorf("gym: action rejected: %w", err)
		}
	}
	if i.model != nil {
		i.model.ExecuteActions(action)
	}
	return nil
}

// NotifySimulationEnd flags the end of the simulation. When the handshake
// has already happened the remote side learns the terminal state through one
// last rendezvous; otherwise the flag simply surfaces on the first exchanged
// state.
func (i *Interface) NotifySimulationEnd() error {
	i.simEnd = true
	if i.state == stateInitialized {
		return i.NotifyCurrentState()
	}
	return nil
}

// Notify binds the environment model and immediately announces its current
// state, which also triggers the Init handshake on the first call.
func (i *Interface) Notify(model env.Env) error {
	i.model = model
	return i.NotifyCurrentState()
}

func (i *Interface) send(msg any) error {
	data, err := wire.Marshal(msg)
	if err != nil {
		return fmt.Errorf("gym: %w", err)
	}
	if len(data) > i.ch.Capacity() {
		// The channel is sized for one step's worth of data. A message that
		// does not fit means the spaces were misconfigured; there is nothing
		// to resynchronize to.
		panic(fmt.Sprintf("gym: message size %d exceeds transport capacity %d",
			len(data), i.ch.Capacity()))
	}
	buf, err := i.ch.SendBegin()
	if err != nil {
		return fmt.Errorf("gym: send: %w", err)
	}
	copy(buf, data)
	if err := i.ch.SendEnd(len(data)); err != nil {
		return fmt.Errorf("gym: send: %w", err)
	}
	return nil
}

func (i *Interface) recv(msg any) error {
	data, err := i.ch.RecvBegin()
	if err != nil {
		return fmt.Errorf("gym: recv: %w", err)
	}
	if err := wire.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("gym: %w", err)
	}
	if err := i.ch.RecvEnd(); err != nil {
		return fmt.Errorf("gym: recv: %w", err)
	}
	return nil
}
