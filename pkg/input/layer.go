package input

import "github.com/emberforge/ember/pkg/errs"

// Layer is a named collection of sources and actions evaluated together
// each tick. Each Source's declared StorageOffset, together with the slots
// its type's width covers, must not overlap another source's; NewLayer sizes
// the layer's storage to the highest slot used.
type Layer struct {
	Name        string
	Sources     []Source
	Actions     []Action
	storageSize int
}

// NewLayer checks that no two sources share a storage slot and returns a
// ready-to-evaluate Layer. Gaps between used slots are not rejected.
func NewLayer(name string, sources []Source, actions []Action) (*Layer, error) {
	used := map[int]bool{}
	size := 0
	for _, s := range sources {
		width := s.Type.storageWidth()
		for a := 0; a < width; a++ {
			slot := s.StorageOffset + a
			if used[slot] {
				return nil, errs.New(errs.InvalidArgument, nil, "source storage slot %d reused", slot)
			}
			used[slot] = true
			if slot+1 > size {
				size = slot + 1
			}
		}
	}
	return &Layer{Name: name, Sources: sources, Actions: actions, storageSize: size}, nil
}

// State holds one Layer's per-instance evaluation state: normalized
// source values and runtime action records, keyed by action name.
type State struct {
	values  []SourceValue
	actions map[string]*RuntimeAction
}

// NewState allocates a fresh State for l, with every action's runtime
// starting Enabled.
func (l *Layer) NewState() *State {
	s := &State{
		values:  make([]SourceValue, l.storageSize),
		actions: make(map[string]*RuntimeAction, len(l.Actions)),
	}
	for _, a := range l.Actions {
		s.actions[a.Name] = &RuntimeAction{Enabled: true}
	}
	return s
}

// Runtime returns the current runtime record for the named action, or nil
// if no such action exists in this layer.
func (s *State) Runtime(name string) *RuntimeAction { return s.actions[name] }

func (s *State) runtimeFor(name string) *RuntimeAction {
	r, ok := s.actions[name]
	if !ok {
		r = &RuntimeAction{Enabled: true}
		s.actions[name] = r
	}
	return r
}

// Normalize matches device events against this layer's sources, writing
// normalized values into state and consuming matched events via
// swap-remove. It returns the events slice trimmed to its remaining,
// unconsumed length; the caller may further reuse the backing array.
//
// A source with no matching event this tick clears a stale KeyPress or
// KeyRelease back to None (the "edge, not held" rule — Testable Property
// #11): axis/trigger values persist at their last reading since there is
// no event to signal they changed.
func (l *Layer) Normalize(state *State, events []DeviceEvent) []DeviceEvent {
	remaining := len(events)
	for _, src := range l.Sources {
		width := src.Type.storageWidth()

		idx := -1
		for i := 0; i < remaining; i++ {
			if events[i].ID == src.InputID {
				idx = i
				break
			}
		}
		if idx == -1 {
			for a := 0; a < width; a++ {
				slot := &state.values[src.StorageOffset+a]
				if slot.Event == EventKeyPress || slot.Event == EventKeyRelease {
					slot.Event = EventNone
				}
			}
			continue
		}

		ev := events[idx]
		remaining--
		events[idx] = events[remaining]
		events[remaining] = DeviceEvent{}

		axis := ev.Axis
		if axis < 0 || axis >= width {
			axis = 0
		}
		slot := &state.values[src.StorageOffset+axis]

		switch ev.ValueType {
		case DeviceTrigger:
			*slot = SourceValue{Value: ev.Value, Event: EventTrigger}
		case DeviceAxisInt:
			*slot = SourceValue{Value: ev.Value, Event: EventAxis}
		case DeviceAxisFloat:
			if ev.Value > src.Deadzone {
				*slot = SourceValue{Value: ev.Value, Event: EventAxis}
			} else {
				*slot = SourceValue{Value: ev.Value, Event: EventAxisDeadzone}
			}
		case DeviceButton:
			if ev.Pressed {
				*slot = SourceValue{Value: 1, Event: EventKeyPress}
			} else {
				*slot = SourceValue{Value: 0, Event: EventKeyRelease}
			}
		}
	}
	return events[:remaining]
}

func evaluateSourceCondition(id ConditionKind, v SourceValue, param float32) bool {
	switch id {
	case CondKeyPress:
		return v.Event == EventKeyPress
	case CondKeyRelease:
		return v.Event == EventKeyRelease
	case CondButtonDown:
		return v.Event == EventKeyPress && v.Value != 0
	case CondAxisPositive:
		return v.Event == EventAxis && v.Value > param
	case CondAxisNegative:
		return v.Event == EventAxis && v.Value < param
	case CondAxisActive:
		return v.Event == EventAxis
	case CondTriggerActive:
		return v.Event == EventTrigger && v.Value > param
	default:
		return false
	}
}

func evaluateActionCondition(id ConditionKind, r *RuntimeAction, param float32) bool {
	switch id {
	case CondActionEnabled:
		return r.Enabled
	case CondActionActive:
		return r.Active
	case CondActionWasActive:
		return r.WasActive
	default:
		return false
	}
}

func applyRuntimeStep(id StepKind, r *RuntimeAction) {
	switch id {
	case StepEnable:
		r.Enabled = true
	case StepDisable:
		r.Enabled = false
	case StepResetState:
		r.State = 0
	}
}

func applyTransformStep(id StepKind, src SourceValue, dst *float32) {
	switch id {
	case StepSet:
		*dst = src.Value
	case StepAdd:
		*dst += src.Value
	case StepInvertSet:
		*dst = -src.Value
	}
}

func applyModifier(m Modifier, value *[2]float32) {
	for axis := 0; axis < 2; axis++ {
		if m.AxisMask&(1<<axis) == 0 {
			continue
		}
		switch m.ID {
		case ModifierScale:
			value[axis] *= m.Param
		case ModifierInvert:
			value[axis] = -value[axis]
		case ModifierClamp01:
			if value[axis] < 0 {
				value[axis] = 0
			} else if value[axis] > m.Param {
				value[axis] = m.Param
			}
		}
	}
}

// Evaluate walks every action's condition series, resolves activation and
// behavior, and applies modifiers — one tick of the evaluation loop
// described by the layer's action definitions. now is a monotonic tick
// timestamp recorded on an action's first active tick.
func (l *Layer) Evaluate(state *State, now int64) {
	for _, action := range l.Actions {
		runtime := state.runtimeFor(action.Name)
		if action.Behavior != Accumulated {
			runtime.RawValue = [2]float32{}
		}

		seriesSuccess := false
		for _, cond := range action.Conditions {
			var condResult bool
			if cond.ID >= CondActionEnabled {
				checked := runtime
				if cond.Source.Index != SelfIndex {
					other := l.Actions[cond.Source.Index]
					checked = state.runtimeFor(other.Name)
				}
				condResult = evaluateActionCondition(cond.ID, checked, cond.Param)
			} else {
				v := state.values[cond.Source.Index]
				if v.Event != EventNone {
					condResult = evaluateSourceCondition(cond.ID, v, cond.Param)
				}
			}

			if cond.Flags&SeriesAnd != 0 {
				seriesSuccess = seriesSuccess && condResult
			} else {
				seriesSuccess = seriesSuccess || condResult
			}

			checkSuccess := condResult
			if cond.Flags&SeriesCheck != 0 {
				checkSuccess = seriesSuccess
			}

			if cond.Flags&RunSteps != 0 && checkSuccess {
				for _, step := range cond.Steps {
					if step.ID < StepSet {
						applyRuntimeStep(step.ID, runtime)
					} else {
						src := state.values[step.Source.Index]
						applyTransformStep(step.ID, src, &runtime.RawValue[step.DstAxis])
					}
				}
			}

			if cond.Flags&SeriesFinish == 0 {
				continue
			}

			if cond.Flags&Activate != 0 && runtime.Enabled {
				runtime.State = runtime.State*2 + 1
				runtime.Active = checkSuccess
			} else if cond.Flags&Deactivate != 0 {
				runtime.State = 0
				runtime.Active = false
			}

			if !seriesSuccess || !runtime.Enabled {
				runtime.State = 0
				runtime.Active = false
				continue
			}

			seriesSuccess = false
			if cond.Flags&Final == 0 {
				continue
			}
			break
		}
	}

	for _, action := range l.Actions {
		runtime := state.runtimeFor(action.Name)

		switch action.Behavior {
		case Toggled:
			if runtime.State == 1 {
				runtime.ToggleEnabled = !runtime.ToggleEnabled
			}
			runtime.Active = runtime.ToggleEnabled
		case ActiveOnce:
			if runtime.State > 1 {
				runtime.Active = false
			}
		}

		if !runtime.Active {
			runtime.WasActive = false
			continue
		}
		if !runtime.WasActive {
			runtime.WasActive = true
			runtime.Timestamp = now
		}

		runtime.Value = runtime.RawValue
		for _, mod := range action.Modifiers {
			applyModifier(mod, &runtime.Value)
		}
	}
}
