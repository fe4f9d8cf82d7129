// Package container implements the recursive value model exchanged between
// the simulation and the agent: a Discrete scalar, a numeric Box, an ordered
// Tuple, or a keyed Dict, with lossless conversion to and from the wire form.
//
// Containers are built bottom-up and owned tree-shaped by their creator; the
// wire form is the only representation that crosses the process boundary.
package container

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/boristopalov/gymlink/pkg/wire"
)

// Container is one observation or action value.
type Container interface {
	// Encode maps the container onto its flat wire form.
	Encode() wire.DataContainer
	// String renders the container for diagnostics. It never fails.
	String() string
}

// Discrete holds a single non-negative integer, semantically bounded by the
// out-of-band n of its space description.
type Discrete struct {
	n     uint32
	value uint32
}

func NewDiscrete(n uint32) *Discrete {
	return &Discrete{n: n}
}

func (d *Discrete) SetValue(v uint32) { d.value = v }

func (d *Discrete) Value() uint32 { return d.value }

// N is the maximum allowed value plus one, zero when unknown.
func (d *Discrete) N() uint32 { return d.n }

func (d *Discrete) Encode() wire.DataContainer {
	return wire.DataContainer{
		Kind:     wire.KindDiscrete,
		Discrete: wire.DiscreteData{Data: d.value},
	}
}

func (d *Discrete) String() string {
	return strconv.FormatUint(uint64(d.value), 10)
}

// Scalar covers the element kinds a Box can hold. Each kind maps onto one of
// the four wire dtypes.
type Scalar interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Box holds a one-dimensional array of numbers plus advisory shape metadata.
// The dtype is fixed by T at construction.
type Box[T Scalar] struct {
	shape []uint32
	dtype wire.Dtype
	data  []T
}

func NewBox[T Scalar](shape ...uint32) *Box[T] {
	return &Box[T]{shape: shape, dtype: dtypeOf[T]()}
}

// NewBoxData builds a Box with its payload in one call.
func NewBoxData[T Scalar](shape []uint32, data []T) *Box[T] {
	b := NewBox[T](shape...)
	b.data = data
	return b
}

func (b *Box[T]) Add(v T) { b.data = append(b.data, v) }

// Value returns the element at idx, or the zero value when idx is out of
// range. Callers must bounds-check against Len when the distinction matters.
func (b *Box[T]) Value(idx int) T {
	var zero T
	if idx < 0 || idx >= len(b.data) {
		return zero
	}
	return b.data[idx]
}

func (b *Box[T]) SetData(data []T) { b.data = data }

func (b *Box[T]) Data() []T { return b.data }

func (b *Box[T]) Shape() []uint32 { return b.shape }

func (b *Box[T]) Dtype() wire.Dtype { return b.dtype }

func (b *Box[T]) Len() int { return len(b.data) }

func (b *Box[T]) Encode() wire.DataContainer {
	box := wire.BoxData{Shape: b.shape, Dtype: b.dtype}
	switch b.dtype {
	case wire.Int:
		box.IntData = make([]int64, len(b.data))
		for i, v := range b.data {
			box.IntData[i] = int64(v)
		}
	case wire.UInt:
		box.UintData = make([]uint64, len(b.data))
		for i, v := range b.data {
			box.UintData[i] = uint64(v)
		}
	case wire.Float:
		box.FloatData = make([]float32, len(b.data))
		for i, v := range b.data {
			box.FloatData[i] = float32(v)
		}
	case wire.Double:
		box.DoubleData = make([]float64, len(b.data))
		for i, v := range b.data {
			box.DoubleData[i] = float64(v)
		}
	}
	return wire.DataContainer{Kind: wire.KindBox, Box: box}
}

func (b *Box[T]) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, v := range b.data {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(formatScalar(v))
	}
	sb.WriteByte(']')
	return sb.String()
}

func dtypeOf[T Scalar]() wire.Dtype {
	var zero T
	switch reflect.TypeOf(zero).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return wire.Int
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return wire.UInt
	case reflect.Float32:
		return wire.Float
	case reflect.Float64:
		return wire.Double
	default:
		panic(fmt.Sprintf("container: unsupported box element type %T", zero))
	}
}

// formatScalar renders a number in its shortest round-trip-readable form.
func formatScalar[T Scalar](v T) string {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), 'g', -1, 32)
	case reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'g', -1, 64)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10)
	default:
		return strconv.FormatInt(rv.Int(), 10)
	}
}

// Tuple holds an ordered sequence of containers. Order is semantically
// significant and preserved across encode/decode.
type Tuple struct {
	elements []Container
}

func NewTuple(elements ...Container) *Tuple {
	return &Tuple{elements: elements}
}

func (t *Tuple) Add(c Container) { t.elements = append(t.elements, c) }

// Get returns the element at idx, or nil when idx is out of range.
func (t *Tuple) Get(idx int) Container {
	if idx < 0 || idx >= len(t.elements) {
		return nil
	}
	return t.elements[idx]
}

func (t *Tuple) Len() int { return len(t.elements) }

func (t *Tuple) Encode() wire.DataContainer {
	msg := wire.TupleData{Element: make([]wire.DataContainer, 0, len(t.elements))}
	for _, el := range t.elements {
		msg.Element = append(msg.Element, el.Encode())
	}
	return wire.DataContainer{Kind: wire.KindTuple, Tuple: msg}
}

func (t *Tuple) String() string {
	var sb strings.Builder
	sb.WriteString("Tuple(")
	for i, el := range t.elements {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(el.String())
	}
	sb.WriteByte(')')
	return sb.String()
}

// Dict holds uniquely keyed containers. Insertion order carries no meaning;
// both the wire form and String use sorted key order so output stays
// deterministic.
type Dict struct {
	entries map[string]Container
}

func NewDict() *Dict {
	return &Dict{entries: make(map[string]Container)}
}

func (d *Dict) Add(key string, c Container) { d.entries[key] = c }

// Get returns the container stored under key, or nil when the key is absent.
func (d *Dict) Get(key string) Container { return d.entries[key] }

func (d *Dict) Len() int { return len(d.entries) }

// Keys returns the keys in sorted order.
func (d *Dict) Keys() []string {
	keys := make([]string, 0, len(d.entries))
	for key := range d.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (d *Dict) Encode() wire.DataContainer {
	msg := wire.DictData{Element: make([]wire.DataContainer, 0, len(d.entries))}
	for _, key := range d.Keys() {
		el := d.entries[key].Encode()
		el.Name = key
		msg.Element = append(msg.Element, el)
	}
	return wire.DataContainer{Kind: wire.KindDict, Dict: msg}
}

func (d *Dict) String() string {
	var sb strings.Builder
	sb.WriteString("Dict(")
	for i, key := range d.Keys() {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(key)
		sb.WriteByte('=')
		sb.WriteString(d.entries[key].String())
	}
	sb.WriteByte(')')
	return sb.String()
}

// Decode rebuilds a container from its wire form. Box payloads materialize
// as the four canonical element kinds (int32, uint32, float32, float64).
//
// An unknown discriminant or dtype aborts: it means the two sides disagree
// on the protocol version and no further exchange can be trusted.
func Decode(msg wire.DataContainer) Container {
	switch msg.Kind {
	case wire.KindDiscrete:
		d := NewDiscrete(0)
		d.SetValue(msg.Discrete.Data)
		return d
	case wire.KindBox:
		box := msg.Box
		switch box.Dtype {
		case wire.Int:
			data := make([]int32, len(box.IntData))
			for i, v := range box.IntData {
				data[i] = int32(v)
			}
			return NewBoxData(box.Shape, data)
		case wire.UInt:
			data := make([]uint32, len(box.UintData))
			for i, v := range box.UintData {
				data[i] = uint32(v)
			}
			return NewBoxData(box.Shape, data)
		case wire.Float:
			return NewBoxData(box.Shape, append([]float32(nil), box.FloatData...))
		case wire.Double:
			return NewBoxData(box.Shape, append([]float64(nil), box.DoubleData...))
		default:
			panic(fmt.Sprintf("container: unsupported box dtype %s", box.Dtype))
		}
	case wire.KindTuple:
		t := NewTuple()
		for _, el := range msg.Tuple.Element {
			t.Add(Decode(el))
		}
		return t
	case wire.KindDict:
		d := NewDict()
		for _, el := range msg.Dict.Element {
			d.Add(el.Name, Decode(el))
		}
		return d
	default:
		panic(fmt.Sprintf("container: unsupported data container kind %d", msg.Kind))
	}
}
