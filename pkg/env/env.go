// Package env declares the capability interface a simulation model
// implements to expose one environment to the protocol engine.
package env

import (
	"github.com/boristopalov/gymlink/pkg/container"
	"github.com/boristopalov/gymlink/pkg/space"
)

// Env is the hook set the protocol engine pulls from on every exchange. The
// spaces are read once, during the Init handshake; the remaining hooks on
// every step.
type Env interface {
	// ObservationSpace describes the shape of future observations. A nil
	// space is omitted from the handshake.
	ObservationSpace() space.Space
	// ActionSpace describes the shape of future actions. A nil space is
	// omitted from the handshake.
	ActionSpace() space.Space
	// Observation returns the current observation container, nil when the
	// model has nothing to report.
	Observation() container.Container
	// Reward returns the reward accumulated since the previous step.
	Reward() float32
	// GameOver reports whether the current episode has ended.
	GameOver() bool
	// ExtraInfo returns free-text diagnostics attached to the state.
	ExtraInfo() string
	// ExecuteActions applies a decoded action container to the simulation.
	ExecuteActions(action container.Container) bool
}

// Base provides the neutral defaults of an unbound hook: nil spaces, nil
// observation, zero reward, game never over. Embed it to implement only the
// hooks a model cares about.
type Base struct{}

func (Base) ObservationSpace() space.Space { return nil }

func (Base) ActionSpace() space.Space { return nil }

func (Base) Observation() container.Container { return nil }

func (Base) Reward() float32 { return 0 }

func (Base) GameOver() bool { return false }

func (Base) ExtraInfo() string { return "" }

func (Base) ExecuteActions(container.Container) bool { return false }
