package input

// SourceType names the device-level shape a Source normalizes.
type SourceType int

const (
	SourceKey SourceType = iota
	SourceButton
	SourceTrigger
	SourceAxis1d
	SourceAxis2d
)

func (t SourceType) storageWidth() int {
	if t == SourceAxis2d {
		return 2
	}
	return 1
}

// Source is one normalized input channel: it watches for device events
// carrying InputID and writes the result into a dense storage slot.
// Axis2d sources occupy two consecutive slots.
type Source struct {
	Name          string
	InputID       uint32
	Type          SourceType
	StorageOffset int
	Deadzone      float32
}

// Behavior selects how an Action's Active flag is derived from its
// condition-series result each tick.
type Behavior int

const (
	Continuous Behavior = iota
	ActiveOnce
	Toggled
	Accumulated
)

// ConditionKind. Ids below CondActionEnabled inspect a source value;
// ids at or above it inspect a RuntimeAction (the "ActionEnabled family").
type ConditionKind int

const (
	CondKeyPress ConditionKind = iota
	CondKeyRelease
	CondButtonDown
	CondAxisPositive
	CondAxisNegative
	CondAxisActive
	CondTriggerActive

	// CondActionEnabled and beyond inspect a RuntimeAction instead of a
	// source value (the "ActionEnabled family").
	CondActionEnabled
	CondActionActive
	CondActionWasActive
)

// StepKind. Ids below StepSet act on the runtime action directly;
// ids at or above it read a source axis into the action's raw value.
type StepKind int

const (
	StepEnable StepKind = iota
	StepDisable
	StepResetState

	// StepSet and beyond copy/transform a source axis into the action's
	// raw value at the step's destination axis.
	StepSet
	StepAdd
	StepInvertSet
)

// ModifierKind names a post-activation transform applied to an action's
// resolved value axes.
type ModifierKind int

const (
	ModifierScale ModifierKind = iota
	ModifierInvert
	ModifierClamp01
)

// ConditionFlags is a bitmask combination of the named condition flags.
type ConditionFlags uint16

const (
	SeriesAnd ConditionFlags = 1 << iota
	SeriesCheck
	RunSteps
	SeriesFinish
	Final
	Activate
	Deactivate
)

// SelfIndex is the SELF sentinel: an ActionEnabled-family condition whose
// SourceRef.Index is SelfIndex inspects the action's own runtime.
const SelfIndex = -1

// SourceRef addresses either a source's storage slot (+ axis within an
// Axis2d slot) or, for ActionEnabled-family conditions/steps, another
// action by index (or SelfIndex for "this action").
type SourceRef struct {
	Index int
	Axis  int
}

// Condition is one entry of an action's evaluated series.
type Condition struct {
	Source SourceRef
	ID     ConditionKind
	Flags  ConditionFlags
	Steps  []Step
	Param  float32
}

// Step is one RunSteps entry: it either mutates the runtime action
// directly (ID < StepSet) or transforms a source axis into the action's
// raw value at DstAxis (ID >= StepSet).
type Step struct {
	Source  SourceRef
	ID      StepKind
	DstAxis int
}

// Modifier transforms one resolved value axis after activation.
type Modifier struct {
	ID       ModifierKind
	AxisMask uint8
	Param    float32
}

// Action is a named, evaluated series of conditions producing an active
// state and a resolved value.
type Action struct {
	Name       string
	Behavior   Behavior
	Conditions []Condition
	Modifiers  []Modifier
}

// SourceEvent classifies what a normalized source slot currently holds.
type SourceEvent int

const (
	EventNone SourceEvent = iota
	EventKeyPress
	EventKeyRelease
	EventTrigger
	EventAxis
	EventAxisDeadzone
)

// SourceValue is one normalized storage slot.
type SourceValue struct {
	Value float32
	Event SourceEvent
}

// RuntimeAction is the per-tick evaluated state of one Action.
type RuntimeAction struct {
	RawValue      [2]float32
	Value         [2]float32
	State         uint64
	Enabled       bool
	Active        bool
	WasActive     bool
	ToggleEnabled bool
	Timestamp     int64
}

// DeviceValueType names the payload shape of one raw device event.
type DeviceValueType int

const (
	DeviceTrigger DeviceValueType = iota
	DeviceAxisInt
	DeviceAxisFloat
	DeviceButton
)

// DeviceEvent is one raw input event from the host platform.
type DeviceEvent struct {
	ID        uint32
	Axis      int
	ValueType DeviceValueType
	Value     float32
	Pressed   bool
}
