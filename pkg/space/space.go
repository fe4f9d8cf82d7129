// Package space describes the shape and bounds of future container
// exchanges. Space descriptions are built once by the simulation model,
// shipped inside the Init handshake, and never reconstructed afterwards.
package space

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/boristopalov/gymlink/pkg/container"
	"github.com/boristopalov/gymlink/pkg/wire"
)

// Space declares the shape of a container value.
type Space interface {
	// Encode maps the space onto its wire description.
	Encode() wire.SpaceDescription
	// Sample draws a random container consistent with the space.
	Sample(rng *rand.Rand) container.Container
	// Contains reports whether c structurally belongs to the space.
	Contains(c container.Container) bool
}

// Discrete is a scalar space with values 0..N-1. N zero means unbounded.
type Discrete struct {
	N uint32
}

func NewDiscrete(n uint32) *Discrete {
	return &Discrete{N: n}
}

func (s *Discrete) Encode() wire.SpaceDescription {
	return wire.SpaceDescription{
		Kind:     wire.SpaceDiscrete,
		Discrete: wire.DiscreteSpace{N: s.N},
	}
}

func (s *Discrete) Sample(rng *rand.Rand) container.Container {
	d := container.NewDiscrete(s.N)
	if s.N > 0 {
		d.SetValue(uint32(rng.Intn(int(s.N))))
	}
	return d
}

func (s *Discrete) Contains(c container.Container) bool {
	d, ok := c.(*container.Discrete)
	if !ok {
		return false
	}
	return s.N == 0 || d.Value() < s.N
}

// Box is a bounded numeric array space. A nil Shape leaves the element count
// unconstrained.
type Box struct {
	Low   float64
	High  float64
	Shape []uint32
	Dtype wire.Dtype
}

func NewBox(low, high float64, shape []uint32, dtype wire.Dtype) *Box {
	return &Box{Low: low, High: high, Shape: shape, Dtype: dtype}
}

func (s *Box) Encode() wire.SpaceDescription {
	return wire.SpaceDescription{
		Kind: wire.SpaceBox,
		Box: wire.BoxSpace{
			Low:   s.Low,
			High:  s.High,
			Shape: s.Shape,
			Dtype: s.Dtype,
		},
	}
}

// Size is the element count implied by Shape, zero when Shape is nil.
func (s *Box) Size() int {
	if len(s.Shape) == 0 {
		return 0
	}
	n := 1
	for _, dim := range s.Shape {
		n *= int(dim)
	}
	return n
}

func (s *Box) Sample(rng *rand.Rand) container.Container {
	n := s.Size()
	span := s.High - s.Low
	switch s.Dtype {
	case wire.Int:
		data := make([]int32, n)
		for i := range data {
			data[i] = int32(s.Low + rng.Float64()*span)
		}
		return container.NewBoxData(s.Shape, data)
	case wire.UInt:
		data := make([]uint32, n)
		for i := range data {
			data[i] = uint32(s.Low + rng.Float64()*span)
		}
		return container.NewBoxData(s.Shape, data)
	case wire.Float:
		data := make([]float32, n)
		for i := range data {
			data[i] = float32(s.Low + rng.Float64()*span)
		}
		return container.NewBoxData(s.Shape, data)
	case wire.Double:
		data := make([]float64, n)
		for i := range data {
			data[i] = s.Low + rng.Float64()*span
		}
		return container.NewBoxData(s.Shape, data)
	default:
		panic(fmt.Sprintf("space: unsupported box dtype %s", s.Dtype))
	}
}

func (s *Box) Contains(c container.Container) bool {
	switch b := c.(type) {
	case *container.Box[int32]:
		if s.Dtype != wire.Int || !s.sizeOK(b.Len()) {
			return false
		}
		for _, v := range b.Data() {
			if float64(v) < s.Low || float64(v) > s.High {
				return false
			}
		}
		return true
	case *container.Box[uint32]:
		if s.Dtype != wire.UInt || !s.sizeOK(b.Len()) {
			return false
		}
		for _, v := range b.Data() {
			if float64(v) < s.Low || float64(v) > s.High {
				return false
			}
		}
		return true
	case *container.Box[float32]:
		if s.Dtype != wire.Float || !s.sizeOK(b.Len()) {
			return false
		}
		for _, v := range b.Data() {
			if float64(v) < s.Low || float64(v) > s.High {
				return false
			}
		}
		return true
	case *container.Box[float64]:
		if s.Dtype != wire.Double || !s.sizeOK(b.Len()) {
			return false
		}
		for _, v := range b.Data() {
			if v < s.Low || v > s.High {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func (s *Box) sizeOK(n int) bool {
	return len(s.Shape) == 0 || n == s.Size()
}

// Tuple nests spaces in a fixed order.
type Tuple struct {
	Elements []Space
}

func NewTuple(elements ...Space) *Tuple {
	return &Tuple{Elements: elements}
}

func (s *Tuple) Add(sub Space) { s.Elements = append(s.Elements, sub) }

func (s *Tuple) Encode() wire.SpaceDescription {
	msg := wire.TupleSpace{Element: make([]wire.SpaceDescription, 0, len(s.Elements))}
	for _, el := range s.Elements {
		msg.Element = append(msg.Element, el.Encode())
	}
	return wire.SpaceDescription{Kind: wire.SpaceTuple, Tuple: msg}
}

func (s *Tuple) Sample(rng *rand.Rand) container.Container {
	t := container.NewTuple()
	for _, el := range s.Elements {
		t.Add(el.Sample(rng))
	}
	return t
}

func (s *Tuple) Contains(c container.Container) bool {
	t, ok := c.(*container.Tuple)
	if !ok || t.Len() != len(s.Elements) {
		return false
	}
	for i, el := range s.Elements {
		if !el.Contains(t.Get(i)) {
			return false
		}
	}
	return true
}

// Dict nests spaces under unique string keys.
type Dict struct {
	Entries map[string]Space
}

func NewDict() *Dict {
	return &Dict{Entries: make(map[string]Space)}
}

func (s *Dict) Add(key string, sub Space) { s.Entries[key] = sub }

// Keys returns the keys in sorted order.
func (s *Dict) Keys() []string {
	keys := make([]string, 0, len(s.Entries))
	for key := range s.Entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (s *Dict) Encode() wire.SpaceDescription {
	msg := wire.DictSpace{Element: make([]wire.SpaceDescription, 0, len(s.Entries))}
	for _, key := range s.Keys() {
		el := s.Entries[key].Encode()
		el.Name = key
		msg.Element = append(msg.Element, el)
	}
	return wire.SpaceDescription{Kind: wire.SpaceDict, Dict: msg}
}

func (s *Dict) Sample(rng *rand.Rand) container.Container {
	d := container.NewDict()
	for _, key := range s.Keys() {
		d.Add(key, s.Entries[key].Sample(rng))
	}
	return d
}

func (s *Dict) Contains(c container.Container) bool {
	d, ok := c.(*container.Dict)
	if !ok || d.Len() != len(s.Entries) {
		return false
	}
	for key, el := range s.Entries {
		sub := d.Get(key)
		if sub == nil || !el.Contains(sub) {
			return false
		}
	}
	return true
}

// Decode rebuilds a space from its wire description. Unknown discriminants
// abort, same as for containers.
func Decode(msg wire.SpaceDescription) Space {
	switch msg.Kind {
	case wire.SpaceDiscrete:
		return NewDiscrete(msg.Discrete.N)
	case wire.SpaceBox:
		return NewBox(msg.Box.Low, msg.Box.High, msg.Box.Shape, msg.Box.Dtype)
	case wire.SpaceTuple:
		t := NewTuple()
		for _, el := range msg.Tuple.Element {
			t.Add(Decode(el))
		}
		return t
	case wire.SpaceDict:
		d := NewDict()
		for _, el := range msg.Dict.Element {
			d.Add(el.Name, Decode(el))
		}
		return d
	default:
		panic(fmt.Sprintf("space: unsupported space description kind %d", msg.Kind))
	}
}

// Check validates a container against its declared space. It backs the
// engine's opt-in action validation; a mismatch is a protocol desync the
// host should treat as fatal.
func Check(s Space, c container.Container) error {
	if s == nil || c == nil {
		return nil
	}
	if !s.Contains(c) {
		return fmt.Errorf("space: container %s does not match its declared space", c)
	}
	return nil
}
