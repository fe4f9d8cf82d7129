// Package cartpole is the demo environment shipped with gymlink: the
// classic pole-balancing task, exposed through the env.Env capability
// interface so an external agent can drive it over the gym protocol.
package cartpole

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/boristopalov/gymlink/pkg/container"
	"github.com/boristopalov/gymlink/pkg/env"
	"github.com/boristopalov/gymlink/pkg/space"
	"github.com/boristopalov/gymlink/pkg/wire"
)

const (
	gravity        = 9.81
	massCart       = 1.0
	massPole       = 0.1
	poleLength     = 0.5
	totalMass      = massCart + massPole
	poleMassLength = massPole * poleLength
	forceMax       = 10.0
	tau            = 0.02

	xThreshold     = 2.4
	thetaThreshold = 12.0 * math.Pi / 180.0
	maxSteps       = 500
)

// State is the physical state of the cart and pole.
type State struct {
	X        float64
	XDot     float64
	Theta    float64
	ThetaDot float64
}

// Env implements env.Env for the cartpole task. Action 0 pushes the cart
// left, action 1 pushes it right; reward is +1 per balanced step.
type Env struct {
	env.Base

	state      State
	steps      int
	rng        *rand.Rand
	lastReward float32
	done       bool
}

// New builds a cartpole environment. A zero seed draws one from the global
// source.
func New(seed int64) *Env {
	if seed == 0 {
		seed = rand.Int63()
	}
	e := &Env{rng: rand.New(rand.NewSource(seed))}
	e.Reset()
	return e
}

// Reset re-randomizes the state and starts a new episode.
func (e *Env) Reset() {
	e.state = State{
		X:        e.rng.Float64()*0.1 - 0.05,
		XDot:     e.rng.Float64()*0.1 - 0.05,
		Theta:    e.rng.Float64()*0.1 - 0.05,
		ThetaDot: e.rng.Float64()*0.1 - 0.05,
	}
	e.steps = 0
	e.lastReward = 0
	e.done = false
}

func (e *Env) ObservationSpace() space.Space {
	return space.NewBox(-10, 10, []uint32{4}, wire.Float)
}

func (e *Env) ActionSpace() space.Space {
	return space.NewDiscrete(2)
}

func (e *Env) Observation() container.Container {
	return container.NewBoxData([]uint32{4}, []float32{
		float32(e.state.X),
		float32(e.state.XDot),
		float32(e.state.Theta),
		float32(e.state.ThetaDot),
	})
}

func (e *Env) Reward() float32 { return e.lastReward }

func (e *Env) GameOver() bool { return e.done }

func (e *Env) ExtraInfo() string {
	return fmt.Sprintf("steps=%d", e.steps)
}

// ExecuteActions applies one push to the cart and advances the physics by
// one tick. Non-discrete actions are ignored.
func (e *Env) ExecuteActions(action container.Container) bool {
	d, ok := action.(*container.Discrete)
	if !ok || e.done {
		return false
	}
	e.step(int(d.Value()))
	return true
}

// Steps is the number of physics ticks taken this episode.
func (e *Env) Steps() int { return e.steps }

// MaxSteps is the episode step limit.
func MaxSteps() int { return maxSteps }

func (e *Env) step(action int) {
	force := forceMax
	if action == 0 {
		force = -forceMax
	}

	s := e.state
	cosTheta := math.Cos(s.Theta)
	sinTheta := math.Sin(s.Theta)

	temp := (force + poleMassLength*s.ThetaDot*s.ThetaDot*sinTheta) / totalMass
	thetaAcc := (gravity*sinTheta - cosTheta*temp) /
		(poleLength * (4.0/3.0 - massPole*cosTheta*cosTheta/totalMass))
	xAcc := temp - poleMassLength*thetaAcc*cosTheta/totalMass

	e.state = State{
		X:        s.X + tau*s.XDot,
		XDot:     s.XDot + tau*xAcc,
		Theta:    s.Theta + tau*s.ThetaDot,
		ThetaDot: s.ThetaDot + tau*thetaAcc,
	}
	e.steps++

	fell := e.state.X < -xThreshold || e.state.X > xThreshold ||
		e.state.Theta < -thetaThreshold || e.state.Theta > thetaThreshold
	e.done = fell || e.steps >= maxSteps
	e.lastReward = 1.0
	if fell {
		e.lastReward = 0.0
	}
}
