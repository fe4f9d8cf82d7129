package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimInitRoundTrip(t *testing.T) {
	t.Run("both spaces present", func(t *testing.T) {
		msg := SimInit{
			ObsSpace: &SpaceDescription{
				Kind: SpaceBox,
				Box:  BoxSpace{Low: -1, High: 1, Shape: []uint32{4}, Dtype: Float},
			},
			ActSpace: &SpaceDescription{
				Kind:     SpaceDiscrete,
				Discrete: DiscreteSpace{N: 2},
			},
		}
		data, err := Marshal(&msg)
		require.NoError(t, err)

		var got SimInit
		require.NoError(t, Unmarshal(data, &got))
		require.NotNil(t, got.ObsSpace)
		assert.Equal(t, SpaceBox, got.ObsSpace.Kind)
		assert.Equal(t, []uint32{4}, got.ObsSpace.Box.Shape)
		require.NotNil(t, got.ActSpace)
		assert.Equal(t, SpaceDiscrete, got.ActSpace.Kind)
		assert.Equal(t, uint32(2), got.ActSpace.Discrete.N)
	})

	t.Run("absent spaces stay absent", func(t *testing.T) {
		data, err := Marshal(&SimInit{})
		require.NoError(t, err)

		var got SimInit
		require.NoError(t, Unmarshal(data, &got))
		assert.Nil(t, got.ObsSpace)
		assert.Nil(t, got.ActSpace)
	})
}

func TestEnvStateRoundTrip(t *testing.T) {
	msg := EnvState{
		ObsData: &DataContainer{
			Kind: KindBox,
			Box:  BoxData{Shape: []uint32{2}, Dtype: Float, FloatData: []float32{1.5, -2}},
		},
		Reward:     0.5,
		IsGameOver: true,
		Reason:     ReasonSimulationEnd,
		Info:       "steps=12",
	}
	data, err := Marshal(&msg)
	require.NoError(t, err)

	var got EnvState
	require.NoError(t, Unmarshal(data, &got))
	assert.Equal(t, float32(0.5), got.Reward)
	assert.True(t, got.IsGameOver)
	assert.Equal(t, ReasonSimulationEnd, got.Reason)
	assert.Equal(t, "steps=12", got.Info)
	require.NotNil(t, got.ObsData)
	assert.Equal(t, KindBox, got.ObsData.Kind)
	assert.Equal(t, []float32{1.5, -2}, got.ObsData.Box.FloatData)
}

func TestEnvActRoundTrip(t *testing.T) {
	t.Run("action", func(t *testing.T) {
		msg := EnvAct{
			ActData: &DataContainer{
				Kind:     KindDiscrete,
				Discrete: DiscreteData{Data: 1},
			},
		}
		data, err := Marshal(&msg)
		require.NoError(t, err)

		var got EnvAct
		require.NoError(t, Unmarshal(data, &got))
		require.NotNil(t, got.ActData)
		assert.Equal(t, uint32(1), got.ActData.Discrete.Data)
		assert.False(t, got.StopSimReq)
	})

	t.Run("stop request carries no action", func(t *testing.T) {
		data, err := Marshal(&EnvAct{StopSimReq: true})
		require.NoError(t, err)

		var got EnvAct
		require.NoError(t, Unmarshal(data, &got))
		assert.Nil(t, got.ActData)
		assert.True(t, got.StopSimReq)
	})
}

func TestNestedContainerRoundTrip(t *testing.T) {
	msg := DataContainer{
		Kind: KindDict,
		Dict: DictData{Element: []DataContainer{
			{
				Kind: KindTuple,
				Name: "t",
				Tuple: TupleData{Element: []DataContainer{
					{Kind: KindDiscrete, Discrete: DiscreteData{Data: 9}},
				}},
			},
		}},
	}
	data, err := Marshal(&msg)
	require.NoError(t, err)

	var got DataContainer
	require.NoError(t, Unmarshal(data, &got))
	require.Len(t, got.Dict.Element, 1)
	el := got.Dict.Element[0]
	assert.Equal(t, "t", el.Name)
	require.Len(t, el.Tuple.Element, 1)
	assert.Equal(t, uint32(9), el.Tuple.Element[0].Discrete.Data)
}
