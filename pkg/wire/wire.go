// Package wire defines the flat message model exchanged between the
// simulation process and the agent process, one message per rendezvous.
package wire

import "fmt"

// Dtype identifies the numeric representation of a Box payload.
type Dtype uint8

const (
	Int Dtype = iota
	UInt
	Float
	Double
)

func (d Dtype) String() string {
	switch d {
	case Int:
		return "int"
	case UInt:
		return "uint"
	case Float:
		return "float"
	case Double:
		return "double"
	default:
		return fmt.Sprintf("dtype(%d)", uint8(d))
	}
}

// DataKind discriminates the variant held by a DataContainer.
type DataKind uint8

const (
	KindNone DataKind = iota
	KindDiscrete
	KindBox
	KindTuple
	KindDict
)

// DiscreteData carries a single non-negative integer.
type DiscreteData struct {
	Data uint32
}

// BoxData carries a numeric array. Exactly one of the four typed payloads is
// populated, per Dtype; Shape is advisory reshaping metadata.
type BoxData struct {
	Shape      []uint32
	Dtype      Dtype
	IntData    []int64
	UintData   []uint64
	FloatData  []float32
	DoubleData []float64
}

// TupleData carries an ordered sequence of nested containers.
type TupleData struct {
	Element []DataContainer
}

// DictData carries named nested containers; each element's Name is its key.
type DictData struct {
	Element []DataContainer
}

// DataContainer is the wire form of one exchanged value. Kind selects which
// variant field is meaningful; the others stay zero. The variant fields are
// values, not pointers, so a zero payload (a Discrete 0, an empty Box)
// survives the codec's zero-field elision. Name is set only on elements
// nested inside a Dict.
type DataContainer struct {
	Kind     DataKind
	Name     string
	Discrete DiscreteData
	Box      BoxData
	Tuple    TupleData
	Dict     DictData
}

// SpaceKind discriminates the variant held by a SpaceDescription.
type SpaceKind uint8

const (
	SpaceNone SpaceKind = iota
	SpaceDiscrete
	SpaceBox
	SpaceTuple
	SpaceDict
)

// DiscreteSpace declares a scalar space of cardinality N (values 0..N-1).
type DiscreteSpace struct {
	N uint32
}

// BoxSpace declares a bounded numeric array space.
type BoxSpace struct {
	Low   float64
	High  float64
	Shape []uint32
	Dtype Dtype
}

type TupleSpace struct {
	Element []SpaceDescription
}

type DictSpace struct {
	Element []SpaceDescription
}

// SpaceDescription declares the shape of future container exchanges. It is
// sent once, during the Init handshake, and never reconstructed afterwards.
// Kind selects the meaningful variant field, as in DataContainer.
type SpaceDescription struct {
	Kind     SpaceKind
	Name     string
	Discrete DiscreteSpace
	Box      BoxSpace
	Tuple    TupleSpace
	Dict     DictSpace
}

// SimInit opens the handshake. Either space may be absent (nil); an absent
// space is an omitted field, not an error.
type SimInit struct {
	ObsSpace *SpaceDescription
	ActSpace *SpaceDescription
}

// SimInitAck closes the handshake. StopSimReq true refuses the run.
type SimInitAck struct {
	Done       bool
	StopSimReq bool
}

// GameOverReason distinguishes an episode ending from the simulation itself
// shutting down.
type GameOverReason uint8

const (
	ReasonGameOver GameOverReason = iota
	ReasonSimulationEnd
)

func (r GameOverReason) String() string {
	switch r {
	case ReasonGameOver:
		return "GameOver"
	case ReasonSimulationEnd:
		return "SimulationEnd"
	default:
		return fmt.Sprintf("reason(%d)", uint8(r))
	}
}

// EnvState is the simulation's half of one step rendezvous.
type EnvState struct {
	ObsData    *DataContainer
	Reward     float32
	IsGameOver bool
	Reason     GameOverReason
	Info       string
}

// EnvAct is the agent's reply. StopSimReq true demands unconditional
// termination of the simulation process.
type EnvAct struct {
	ActData    *DataContainer
	StopSimReq bool
}
