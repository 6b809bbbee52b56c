package input

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/emberforge/ember/pkg/log"
)

var parserLog = log.With("input.parser")

var (
	sourceTypeNames = map[string]SourceType{
		"key": SourceKey, "button": SourceButton, "trigger": SourceTrigger,
		"axis1d": SourceAxis1d, "axis2d": SourceAxis2d,
	}
	behaviorNames = map[string]Behavior{
		"continuous": Continuous, "active_once": ActiveOnce,
		"toggled": Toggled, "accumulated": Accumulated,
	}
	conditionNames = map[string]ConditionKind{
		"key_press": CondKeyPress, "key_release": CondKeyRelease,
		"button_down": CondButtonDown, "axis_positive": CondAxisPositive,
		"axis_negative": CondAxisNegative, "axis_active": CondAxisActive,
		"trigger_active": CondTriggerActive, "action_enabled": CondActionEnabled,
		"action_active": CondActionActive, "action_was_active": CondActionWasActive,
	}
	stepNames = map[string]StepKind{
		"enable": StepEnable, "disable": StepDisable, "reset_state": StepResetState,
		"set": StepSet, "add": StepAdd, "invert_set": StepInvertSet,
	}
	modifierNames = map[string]ModifierKind{
		"scale": ModifierScale, "invert": ModifierInvert, "clamp01": ModifierClamp01,
	}
	flagNames = map[string]ConditionFlags{
		"series_and": SeriesAnd, "series_check": SeriesCheck, "run_steps": RunSteps,
		"series_finish": SeriesFinish, "final": Final, "activate": Activate, "deactivate": Deactivate,
	}
)

// ParseDocument parses a UTF-8 text document declaring one or more layers.
// A malformed layer is logged and skipped (non-fatal); successfully parsed
// layers are returned in the order they were declared.
//
// Grammar (whitespace-separated tokens, one statement per line, '#' starts
// a line comment):
//
//	layer <name>
//	  source <name> <input-id> <type> [offset=<n>] [deadzone=<f>]
//	  action <name> <behavior>
//	    cond <source-ref> <id> [flags=<f1>|<f2>...] [param=<f>]
//	      step <source-ref> <id> [dst=<axis>]
//	    modifier <id> axis=<mask> [param=<f>]
//	end
//
// <source-ref> is either a source name, "self", or "action:<name>".
func ParseDocument(text string) []*Layer {
	var layers []*Layer
	sc := bufio.NewScanner(strings.NewReader(text))

	var (
		cur        *parsedLayer
		curAction  *Action
		curCond    *Condition
		sourceIdx  map[string]int
		actionIdx  map[string]int
		nextOffset int
		lineNo     int
		broken     bool
	)

	flush := func() {
		if cur == nil {
			return
		}
		if !broken {
			l, err := NewLayer(cur.name, cur.sources, cur.actions)
			if err != nil {
				parserLog.Warn("skipping malformed layer", log.Fields{"layer": cur.name, "error": err.Error(), "line": lineNo})
			} else {
				layers = append(layers, l)
			}
		} else {
			parserLog.Warn("skipping malformed layer", log.Fields{"layer": cur.name, "line": lineNo})
		}
		cur = nil
		curAction = nil
		curCond = nil
	}

	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(stripComment(sc.Text()))
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		kw := fields[0]

		switch kw {
		case "layer":
			flush()
			broken = false
			if len(fields) != 2 {
				parserLog.Warn("layer needs exactly one name", log.Fields{"line": lineNo})
				broken = true
				cur = &parsedLayer{name: "<malformed>"}
				continue
			}
			cur = &parsedLayer{name: fields[1]}
			sourceIdx = map[string]int{}
			actionIdx = map[string]int{}
			nextOffset = 0

		case "end":
			flush()

		case "source":
			if cur == nil || broken {
				continue
			}
			s, err := parseSource(fields, &nextOffset)
			if err != nil {
				parserLog.Warn("bad source line", log.Fields{"line": lineNo, "error": err.Error()})
				broken = true
				continue
			}
			sourceIdx[s.Name] = len(cur.sources)
			cur.sources = append(cur.sources, *s)

		case "action":
			if cur == nil || broken {
				continue
			}
			if len(fields) != 3 {
				parserLog.Warn("action needs name and behavior", log.Fields{"line": lineNo})
				broken = true
				continue
			}
			beh, ok := behaviorNames[fields[2]]
			if !ok {
				parserLog.Warn("unknown behavior", log.Fields{"line": lineNo, "behavior": fields[2]})
				broken = true
				continue
			}
			actionIdx[fields[1]] = len(cur.actions)
			cur.actions = append(cur.actions, Action{Name: fields[1], Behavior: beh})
			curAction = &cur.actions[len(cur.actions)-1]
			curCond = nil

		case "cond":
			if curAction == nil || broken {
				continue
			}
			c, err := parseCondition(fields, sourceIdx, actionIdx)
			if err != nil {
				parserLog.Warn("bad condition line", log.Fields{"line": lineNo, "error": err.Error()})
				broken = true
				continue
			}
			curAction.Conditions = append(curAction.Conditions, *c)
			curCond = &curAction.Conditions[len(curAction.Conditions)-1]

		case "step":
			if curCond == nil || broken {
				continue
			}
			st, err := parseStep(fields, sourceIdx)
			if err != nil {
				parserLog.Warn("bad step line", log.Fields{"line": lineNo, "error": err.Error()})
				broken = true
				continue
			}
			curCond.Steps = append(curCond.Steps, *st)

		case "modifier":
			if curAction == nil || broken {
				continue
			}
			m, err := parseModifier(fields)
			if err != nil {
				parserLog.Warn("bad modifier line", log.Fields{"line": lineNo, "error": err.Error()})
				broken = true
				continue
			}
			curAction.Modifiers = append(curAction.Modifiers, *m)

		default:
			parserLog.Warn("unrecognized directive", log.Fields{"line": lineNo, "directive": kw})
			if cur != nil {
				broken = true
			}
		}
	}
	flush()
	return layers
}

type parsedLayer struct {
	name    string
	sources []Source
	actions []Action
}

func stripComment(line string) string {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		return line[:i]
	}
	return line
}

func splitKV(tok string) (string, string, bool) {
	return strings.Cut(tok, "=")
}

func parseSource(fields []string, nextOffset *int) (*Source, error) {
	if len(fields) < 4 {
		return nil, fmt.Errorf("source needs name, input-id, type")
	}
	id, err := strconv.ParseUint(fields[2], 10, 32)
	if err != nil {
		return nil, fmt.Errorf("bad input-id %q: %w", fields[2], err)
	}
	typ, ok := sourceTypeNames[fields[3]]
	if !ok {
		return nil, fmt.Errorf("unknown source type %q", fields[3])
	}
	s := &Source{Name: fields[1], InputID: uint32(id), Type: typ, StorageOffset: *nextOffset}
	for _, tok := range fields[4:] {
		k, v, _ := splitKV(tok)
		switch k {
		case "offset":
			n, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("bad offset %q: %w", v, err)
			}
			s.StorageOffset = n
		case "deadzone":
			f, err := strconv.ParseFloat(v, 32)
			if err != nil {
				return nil, fmt.Errorf("bad deadzone %q: %w", v, err)
			}
			s.Deadzone = float32(f)
		}
	}
	*nextOffset = s.StorageOffset + s.Type.storageWidth()
	return s, nil
}

func sourceRefToken(tok string, sourceIdx, actionIdx map[string]int) (SourceRef, error) {
	if tok == "self" {
		return SourceRef{Index: SelfIndex}, nil
	}
	if name, ok := strings.CutPrefix(tok, "action:"); ok {
		idx, ok := actionIdx[name]
		if !ok {
			return SourceRef{}, fmt.Errorf("unknown action %q", name)
		}
		return SourceRef{Index: idx}, nil
	}
	name, axisStr, hasAxis := strings.Cut(tok, ".")
	idx, ok := sourceIdx[name]
	if !ok {
		return SourceRef{}, fmt.Errorf("unknown source %q", name)
	}
	ref := SourceRef{Index: idx}
	if hasAxis {
		a, err := strconv.Atoi(axisStr)
		if err != nil {
			return SourceRef{}, fmt.Errorf("bad axis %q", axisStr)
		}
		ref.Axis = a
	}
	return ref, nil
}

func parseCondition(fields []string, sourceIdx, actionIdx map[string]int) (*Condition, error) {
	if len(fields) < 3 {
		return nil, fmt.Errorf("cond needs source-ref and id")
	}
	ref, err := sourceRefToken(fields[1], sourceIdx, actionIdx)
	if err != nil {
		return nil, err
	}
	id, ok := conditionNames[fields[2]]
	if !ok {
		return nil, fmt.Errorf("unknown condition id %q", fields[2])
	}
	c := &Condition{Source: ref, ID: id}
	for _, tok := range fields[3:] {
		k, v, _ := splitKV(tok)
		switch k {
		case "flags":
			for _, name := range strings.Split(v, "|") {
				f, ok := flagNames[name]
				if !ok {
					return nil, fmt.Errorf("unknown flag %q", name)
				}
				c.Flags |= f
			}
		case "param":
			f, err := strconv.ParseFloat(v, 32)
			if err != nil {
				return nil, fmt.Errorf("bad param %q: %w", v, err)
			}
			c.Param = float32(f)
		}
	}
	return c, nil
}

func parseStep(fields []string, sourceIdx map[string]int) (*Step, error) {
	if len(fields) < 3 {
		return nil, fmt.Errorf("step needs source-ref and id")
	}
	ref, err := sourceRefToken(fields[1], sourceIdx, nil)
	if err != nil {
		return nil, err
	}
	id, ok := stepNames[fields[2]]
	if !ok {
		return nil, fmt.Errorf("unknown step id %q", fields[2])
	}
	st := &Step{Source: ref, ID: id}
	for _, tok := range fields[3:] {
		k, v, _ := splitKV(tok)
		if k == "dst" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("bad dst %q: %w", v, err)
			}
			st.DstAxis = n
		}
	}
	return st, nil
}

func parseModifier(fields []string) (*Modifier, error) {
	if len(fields) < 2 {
		return nil, fmt.Errorf("modifier needs id")
	}
	id, ok := modifierNames[fields[1]]
	if !ok {
		return nil, fmt.Errorf("unknown modifier id %q", fields[1])
	}
	m := &Modifier{ID: id}
	for _, tok := range fields[2:] {
		k, v, _ := splitKV(tok)
		switch k {
		case "axis":
			n, err := strconv.ParseUint(v, 10, 8)
			if err != nil {
				return nil, fmt.Errorf("bad axis mask %q: %w", v, err)
			}
			m.AxisMask = uint8(n)
		case "param":
			f, err := strconv.ParseFloat(v, 32)
			if err != nil {
				return nil, fmt.Errorf("bad param %q: %w", v, err)
			}
			m.Param = float32(f)
		}
	}
	return m, nil
}
