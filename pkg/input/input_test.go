package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestInputNormalizationEdgeOnlyPress covers Testable Property #11: a
// button press followed by no matching event yields exactly one KeyPress,
// then clears back to None on the next tick.
func TestInputNormalizationEdgeOnlyPress(t *testing.T) {
	layer, err := NewLayer("t", []Source{
		{Name: "jump", InputID: 1, Type: SourceButton},
	}, nil)
	require.NoError(t, err)
	state := layer.NewState()

	events := []DeviceEvent{{ID: 1, ValueType: DeviceButton, Pressed: true}}
	rest := layer.Normalize(state, events)
	assert.Empty(t, rest)
	assert.Equal(t, EventKeyPress, state.values[0].Event)

	rest = layer.Normalize(state, nil)
	assert.Empty(t, rest)
	assert.Equal(t, EventNone, state.values[0].Event)
}

func TestInputNormalizationSwapRemove(t *testing.T) {
	layer, err := NewLayer("t", []Source{
		{Name: "a", InputID: 1, Type: SourceButton},
	}, nil)
	require.NoError(t, err)
	state := layer.NewState()

	events := []DeviceEvent{
		{ID: 99, ValueType: DeviceButton, Pressed: true},
		{ID: 1, ValueType: DeviceButton, Pressed: true},
	}
	rest := layer.Normalize(state, events)
	require.Len(t, rest, 1)
	assert.Equal(t, uint32(99), rest[0].ID)
}

func TestInputNormalizationDeadzone(t *testing.T) {
	layer, err := NewLayer("t", []Source{
		{Name: "stick", InputID: 2, Type: SourceAxis1d, Deadzone: 0.2},
	}, nil)
	require.NoError(t, err)
	state := layer.NewState()

	layer.Normalize(state, []DeviceEvent{{ID: 2, ValueType: DeviceAxisFloat, Value: 0.05}})
	assert.Equal(t, EventAxisDeadzone, state.values[0].Event)

	layer.Normalize(state, []DeviceEvent{{ID: 2, ValueType: DeviceAxisFloat, Value: 0.9}})
	assert.Equal(t, EventAxis, state.values[0].Event)
	assert.InDelta(t, 0.9, state.values[0].Value, 1e-6)
}

// TestInputSeriesAndGate covers Testable Property #12: a two-condition
// SeriesAnd group succeeds only when both individual gates are true on the
// same tick. The first condition seeds the running series value (no
// SeriesAnd bit — "can't check for SeriesOr since it's just a zero
// value"); the second ANDs into it.
func TestInputSeriesAndGate(t *testing.T) {
	build := func() (*Layer, *State) {
		layer, err := NewLayer("t", []Source{
			{Name: "a", InputID: 1, Type: SourceButton},
			{Name: "b", InputID: 2, Type: SourceButton},
		}, []Action{
			{
				Name:     "both",
				Behavior: Continuous,
				Conditions: []Condition{
					{Source: SourceRef{Index: 0}, ID: CondButtonDown},
					{Source: SourceRef{Index: 1}, ID: CondButtonDown, Flags: SeriesAnd | SeriesFinish | Activate | Final},
				},
			},
		})
		require.NoError(t, err)
		return layer, layer.NewState()
	}

	t.Run("both true", func(t *testing.T) {
		layer, state := build()
		layer.Normalize(state, []DeviceEvent{
			{ID: 1, ValueType: DeviceButton, Pressed: true},
			{ID: 2, ValueType: DeviceButton, Pressed: true},
		})
		layer.Evaluate(state, 1)
		assert.True(t, state.Runtime("both").Active)
	})

	t.Run("only first true", func(t *testing.T) {
		layer, state := build()
		layer.Normalize(state, []DeviceEvent{{ID: 1, ValueType: DeviceButton, Pressed: true}})
		layer.Evaluate(state, 1)
		assert.False(t, state.Runtime("both").Active)
	})

	t.Run("only second true", func(t *testing.T) {
		layer, state := build()
		layer.Normalize(state, []DeviceEvent{{ID: 2, ValueType: DeviceButton, Pressed: true}})
		layer.Evaluate(state, 1)
		assert.False(t, state.Runtime("both").Active)
	})

	t.Run("neither true", func(t *testing.T) {
		layer, state := build()
		layer.Evaluate(state, 1)
		assert.False(t, state.Runtime("both").Active)
	})
}

// TestSeedS5InputToggle: a toggle-behavior action on key K with a single
// KeyPress condition. Two press/release sequences; active is true after
// frame 1 and false after frame 3.
func TestSeedS5InputToggle(t *testing.T) {
	layer, err := NewLayer("t", []Source{
		{Name: "k", InputID: 1, Type: SourceButton},
	}, []Action{
		{
			Name:     "toggle",
			Behavior: Toggled,
			Conditions: []Condition{
				{Source: SourceRef{Index: 0}, ID: CondKeyPress, Flags: SeriesFinish | Activate | Final},
			},
		},
	})
	require.NoError(t, err)
	state := layer.NewState()

	press := func(pressed bool) {
		layer.Normalize(state, []DeviceEvent{{ID: 1, ValueType: DeviceButton, Pressed: pressed}})
	}

	press(true) // frame 1: press
	layer.Evaluate(state, 1)
	assert.True(t, state.Runtime("toggle").Active, "active after frame 1")

	press(false) // frame 2: release
	layer.Evaluate(state, 2)

	press(true) // frame 3: press
	layer.Evaluate(state, 3)
	assert.False(t, state.Runtime("toggle").Active, "inactive after frame 3")

	press(false) // frame 4: release
	layer.Evaluate(state, 4)
}

func TestActiveOnceDeactivatesAfterFirstTick(t *testing.T) {
	layer, err := NewLayer("t", []Source{
		{Name: "k", InputID: 1, Type: SourceButton},
	}, []Action{
		{
			Name:     "once",
			Behavior: ActiveOnce,
			Conditions: []Condition{
				{Source: SourceRef{Index: 0}, ID: CondKeyPress, Flags: SeriesFinish | Activate | Final},
			},
		},
	})
	require.NoError(t, err)
	state := layer.NewState()

	layer.Normalize(state, []DeviceEvent{{ID: 1, ValueType: DeviceButton, Pressed: true}})
	layer.Evaluate(state, 1)
	assert.True(t, state.Runtime("once").Active)

	layer.Normalize(state, nil)
	layer.Evaluate(state, 2)
	assert.False(t, state.Runtime("once").Active)
}

func TestModifierClamp01AndScale(t *testing.T) {
	layer, err := NewLayer("t", []Source{
		{Name: "stick", InputID: 1, Type: SourceAxis1d},
	}, []Action{
		{
			Name:     "move",
			Behavior: Continuous,
			Conditions: []Condition{
				{
					Source: SourceRef{Index: 0}, ID: CondAxisActive,
					Flags: SeriesFinish | RunSteps | Activate | Final,
					Steps: []Step{{Source: SourceRef{Index: 0}, ID: StepSet, DstAxis: 0}},
				},
			},
			Modifiers: []Modifier{
				{ID: ModifierScale, AxisMask: 1, Param: 2},
				{ID: ModifierClamp01, AxisMask: 1, Param: 1},
			},
		},
	})
	require.NoError(t, err)
	state := layer.NewState()

	layer.Normalize(state, []DeviceEvent{{ID: 1, ValueType: DeviceAxisFloat, Value: 0.9}})
	layer.Evaluate(state, 1)
	r := state.Runtime("move")
	require.True(t, r.Active)
	assert.InDelta(t, 1.0, r.Value[0], 1e-6)
}

func TestNewLayerRejectsOverlappingStorage(t *testing.T) {
	_, err := NewLayer("t", []Source{
		{Name: "a", InputID: 1, Type: SourceAxis2d, StorageOffset: 0},
		{Name: "b", InputID: 2, Type: SourceButton, StorageOffset: 1},
	}, nil)
	assert.Error(t, err)
}

func TestParseDocumentSkipsMalformedLayer(t *testing.T) {
	doc := `
layer good
  source jump 1 button
  action fire continuous
    cond jump key_press flags=series_finish|activate|final
end

layer bad
  source 1 2
end
`
	layers := ParseDocument(doc)
	require.Len(t, layers, 1)
	assert.Equal(t, "good", layers[0].Name)
	require.Len(t, layers[0].Actions, 1)
	assert.Equal(t, "fire", layers[0].Actions[0].Name)
}

func TestParseDocumentMultipleLayers(t *testing.T) {
	doc := `
layer one
  source a 1 button
end
layer two
  source b 2 axis1d deadzone=0.1
end
`
	layers := ParseDocument(doc)
	require.Len(t, layers, 2)
	assert.Equal(t, "one", layers[0].Name)
	assert.Equal(t, "two", layers[1].Name)
	assert.InDelta(t, 0.1, layers[1].Sources[0].Deadzone, 1e-6)
}
