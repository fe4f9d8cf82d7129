// Package agent implements the remote half of the gym protocol: the client
// an agent process uses to receive environment states and reply with
// actions. It mirrors the engine step for step, so the two sides stay in
// strict request/response alternation.
package agent

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"

	"github.com/boristopalov/gymlink/internal/logger"
	"github.com/boristopalov/gymlink/pkg/container"
	"github.com/boristopalov/gymlink/pkg/space"
	"github.com/boristopalov/gymlink/pkg/transport"
	"github.com/boristopalov/gymlink/pkg/wire"
)

// Step is one received environment state.
type Step struct {
	Obs      container.Container
	Reward   float32
	GameOver bool
	Reason   wire.GameOverReason
	Info     string
}

// Client talks to a protocol engine over one transport channel.
type Client struct {
	ch       transport.Channel
	obsSpace space.Space
	actSpace space.Space
	rng      *rand.Rand
	logger   *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithSeed seeds the action sampler for reproducible runs.
func WithSeed(seed int64) Option {
	return func(c *Client) {
		c.rng = rand.New(rand.NewSource(seed))
	}
}

// WithLogger replaces the default component logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// Connect performs the agent half of the Init handshake: receive the space
// descriptions, acknowledge them. It blocks until the simulation side has
// sent its SimInit.
func Connect(ch transport.Channel, opts ...Option) (*Client, error) {
	c := &Client{
		ch:     ch,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		logger: logger.Named("agent"),
	}
	for _, opt := range opts {
		opt(c)
	}

	var init wire.SimInit
	if err := c.recv(&init); err != nil {
		return nil, err
	}
	if init.ObsSpace != nil {
		c.obsSpace = space.Decode(*init.ObsSpace)
	}
	if init.ActSpace != nil {
		c.actSpace = space.Decode(*init.ActSpace)
	}
	c.logger.Debug("handshake received",
		"obsSpace", c.obsSpace != nil, "actSpace", c.actSpace != nil)

	if err := c.send(&wire.SimInitAck{Done: true}); err != nil {
		return nil, err
	}
	return c, nil
}

// Refuse answers the handshake with a stop request instead of an
// acknowledgement, terminating the simulation before its first step.
func Refuse(ch transport.Channel) error {
	c := &Client{ch: ch, logger: logger.Named("agent")}
	var init wire.SimInit
	if err := c.recv(&init); err != nil {
		return err
	}
	return c.send(&wire.SimInitAck{Done: false, StopSimReq: true})
}

// ObservationSpace is the space declared at Init time, nil when omitted.
func (c *Client) ObservationSpace() space.Space { return c.obsSpace }

// ActionSpace is the space declared at Init time, nil when omitted.
func (c *Client) ActionSpace() space.Space { return c.actSpace }

// Recv blocks for the next environment state.
func (c *Client) Recv() (*Step, error) {
	var msg wire.EnvState
	if err := c.recv(&msg); err != nil {
		return nil, err
	}
	step := &Step{
		Reward:   msg.Reward,
		GameOver: msg.IsGameOver,
		Reason:   msg.Reason,
		Info:     msg.Info,
	}
	if msg.ObsData != nil {
		step.Obs = container.Decode(*msg.ObsData)
	}
	c.logger.Debug("state received", "reward", step.Reward, "gameOver", step.GameOver)
	return step, nil
}

// Send replies to the current state with an action. A nil action sends an
// empty reply.
func (c *Client) Send(action container.Container) error {
	var msg wire.EnvAct
	if action != nil {
		enc := action.Encode()
		msg.ActData = &enc
	}
	return c.send(&msg)
}

// SendStop replies with an unconditional termination request.
func (c *Client) SendStop() error {
	c.logger.Debug("sending stop request")
	return c.send(&wire.EnvAct{StopSimReq: true})
}

// Sample draws a random action from the declared action space, nil when no
// action space was declared.
func (c *Client) Sample() container.Container {
	if c.actSpace == nil {
		return nil
	}
	return c.actSpace.Sample(c.rng)
}

func (c *Client) send(msg any) error {
	data, err := wire.Marshal(msg)
	if err != nil {
		return fmt.Errorf("agent: %w", err)
	}
	if len(data) > c.ch.Capacity() {
		panic(fmt.Sprintf("agent: message size %d exceeds transport capacity %d",
			len(data), c.ch.Capacity()))
	}
	buf, err := c.ch.SendBegin()
	if err != nil {
		return fmt.Errorf("agent: send: %w", err)
	}
	copy(buf, data)
	if err := c.ch.SendEnd(len(data)); err != nil {
		return fmt.Errorf("agent: send: %w", err)
	}
	return nil
}

func (c *Client) recv(msg any) error {
	data, err := c.ch.RecvBegin()
	if err != nil {
		return fmt.Errorf("agent: recv: %w", err)
	}
	if err := wire.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("agent: %w", err)
	}
	if err := c.ch.RecvEnd(); err != nil {
		return fmt.Errorf("agent: recv: %w", err)
	}
	return nil
}
