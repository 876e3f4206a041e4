package engine

import "fmt"

// DirectResult reports a successful single-shot execution.
type DirectResult struct {
	// Args is the fully resolved argument mapping the effect consumed.
	Args Args
	// Result is the effect's result.
	Result any
	// Signals emitted by OnSelect hooks, in selection order.
	Signals []Signal
}

// ExecuteDirect validates and commits a fully-bound call atomically: every
// argument is resolved and checked with the identical per-selection
// validation a step-by-step fill would apply, then the action validator runs
// against the complete mapping. Only when everything passes do the OnSelect
// hooks fire in selection order, seeing exactly the values an interactive
// fill would have produced, and then the effect runs. Any single illegal
// value fails the whole call with no hook fired, no effect run and no state
// of any kind left behind.
func (e *Engine) ExecuteDirect(name string, p PlayerID, raw map[string]any) (DirectResult, error) {
	def, ok := e.actions[name]
	if !ok {
		return DirectResult{}, &UnknownActionError{Name: name}
	}
	for _, cond := range def.Conditions {
		if passed, detail := cond.Check(e.state, p); !passed {
			return DirectResult{}, &ConditionFailedError{Label: cond.Label, Detail: detail}
		}
	}
	if def.SkipIf != nil && def.SkipIf(e.state, p) {
		return DirectResult{}, &ConditionFailedError{Label: "skip", Detail: "action skipped"}
	}

	args := Args{}
	for i := range def.Selections {
		sel := &def.Selections[i]
		q := queryFor(e.state, sel, p, args)
		rv, present := raw[sel.Name]
		if !present || rv == nil {
			// Same rule a stepwise nil gets: a repeating selection may
			// only close empty when its minimum is zero, optional or not.
			switch {
			case sel.repeating() && sel.Repeat.Min == 0:
				args[sel.Name] = listValue(nil)
			case sel.Optional && !sel.repeating():
			default:
				return DirectResult{}, &InvalidValueError{Selection: sel.Name, Why: ValueAbsent}
			}
			continue
		}
		switch {
		case sel.repeating():
			v, err := resolveRepeatList(sel, q, rv)
			if err != nil {
				return DirectResult{}, err
			}
			args[sel.Name] = v
		case sel.Kind == KindElements:
			v, err := resolveElements(sel, q, rv)
			if err != nil {
				return DirectResult{}, err
			}
			args[sel.Name] = v
		default:
			v, err := resolveSingle(sel, q, rv)
			if err != nil {
				return DirectResult{}, err
			}
			if err := checkSingle(sel, q, 0, candidateOf(v)); err != nil {
				return DirectResult{}, err
			}
			args[sel.Name] = v
		}
	}

	if def.Validator != nil {
		if msg := def.Validator(e.state, p, args); msg != "" {
			return DirectResult{}, &ValidatorRejectedError{Message: msg}
		}
	}

	// All checks passed; replay the OnSelect sequence an interactive fill
	// would have fired, then run the effect.
	var signals []Signal
	for i := range def.Selections {
		sel := &def.Selections[i]
		if sel.OnSelect == nil {
			continue
		}
		v, bound := args[sel.Name]
		if !bound {
			continue
		}
		if sel.repeating() {
			// First accepted value only, matching the stepwise contract.
			if len(v.List) == 0 {
				continue
			}
			sel.OnSelect(itemValue(v.List[0]), newSignalContext(&signals))
			continue
		}
		sel.OnSelect(v, newSignalContext(&signals))
	}
	e.dispatch(signals)

	out, err := def.Effect(e.state, p, args)
	if err != nil {
		return DirectResult{}, &EffectError{Action: def.Name, Err: err}
	}
	return DirectResult{Args: args, Result: out, Signals: signals}, nil
}

// resolveRepeatList resolves a direct-call value for a repeating selection:
// an ordered list of non-terminal values, each validated under the
// accumulation count it would have been submitted at.
func resolveRepeatList(sel *Selection, q Query, raw any) (Value, error) {
	items := rawList(raw)
	rp := sel.Repeat
	if len(items) < rp.Min || len(items) > rp.Max {
		return Value{}, &InvalidValueError{
			Selection: sel.Name, Why: NotACandidate,
			Reason: fmt.Sprintf("selection %q repeats between %d and %d times, got %d", sel.Name, rp.Min, rp.Max, len(items)),
		}
	}
	acc := make([]Candidate, 0, len(items))
	for _, it := range items {
		v, err := resolveSingle(sel, q, it)
		if err != nil {
			return Value{}, err
		}
		c := candidateOf(v)
		if rp.Until != nil && rp.Until(c) {
			return Value{}, &InvalidValueError{
				Selection: sel.Name, Why: NotACandidate,
				Reason: fmt.Sprintf("%q terminates the repeat and cannot be part of the list", c.ID),
			}
		}
		if err := checkSingle(sel, q, len(acc), c); err != nil {
			return Value{}, err
		}
		acc = append(acc, c)
	}
	return listValue(acc), nil
}
