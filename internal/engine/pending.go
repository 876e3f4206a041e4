package engine

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// pendingAction is the live, resumable fill of one action's selections. The
// serializable view of it is Record (record.go); nothing here is a closure
// over game state.
type pendingAction struct {
	handle string
	def    *ActionDefinition
	player PlayerID
	index  int
	args   Args
	repeat []Candidate // accumulated values while mid-repeat at index; nil otherwise
	inRep  bool
	fired  map[int]bool // selection indices whose OnSelect has run
}

func (pa *pendingAction) repeatCount() int {
	if !pa.inRep {
		return 0
	}
	return len(pa.repeat)
}

// StepResult reports one accepted step.
type StepResult struct {
	// Done is set when the step completed the action and its effect ran.
	Done bool
	// Result is the effect's result when Done.
	Result any
	// Signals emitted by hooks during this step, in emission order.
	Signals []Signal
}

// BeginPendingAction validates the action's conditions (failing fast on the
// first failure) and opens a pending fill positioned at the first selection.
// Actions without selections have nothing to fill step-by-step and must go
// through ExecuteDirect.
func (e *Engine) BeginPendingAction(name string, p PlayerID) (string, error) {
	def, ok := e.actions[name]
	if !ok {
		return "", &UnknownActionError{Name: name}
	}
	if len(def.Selections) == 0 {
		return "", fmt.Errorf("action %q has no selections; use ExecuteDirect", name)
	}
	for _, cond := range def.Conditions {
		if passed, detail := cond.Check(e.state, p); !passed {
			return "", &ConditionFailedError{Label: cond.Label, Detail: detail}
		}
	}
	pa := &pendingAction{
		handle: uuid.NewString(),
		def:    def,
		player: p,
		args:   Args{},
		fired:  make(map[int]bool),
	}
	e.pending[pa.handle] = pa
	return pa.handle, nil
}

// SubmitStep feeds one raw value to the pending action's current selection.
//
// A nil raw value skips an optional selection, or terminates a repeating one
// once its minimum is met. Rejections (out of sequence, not a candidate,
// disabled with its verbatim reason, validator) leave the pending state
// untouched at the same index; the caller may retry.
func (e *Engine) SubmitStep(handle, selection string, raw any) (StepResult, error) {
	pa, ok := e.pending[handle]
	if !ok {
		return StepResult{}, &NoPendingError{Handle: handle}
	}
	def := pa.def
	sel := &def.Selections[pa.index]
	if selection != sel.Name {
		return StepResult{}, &OutOfSequenceError{Expected: sel.Name, Index: pa.index, Got: selection}
	}
	q := queryFor(e.state, sel, pa.player, pa.args)
	count := pa.repeatCount()

	// Staged outcome; nothing on pa mutates until the step is fully
	// accepted, so every rejection leaves the state retryable.
	var (
		bind      *Value // binding for args[sel.Name], if the step closes the slot
		accum     *Candidate
		fireValue *Value // value OnSelect receives, if it fires this step
		advance   bool
	)

	switch {
	case raw == nil:
		switch {
		case sel.repeating() && count >= sel.Repeat.Min:
			v := listValue(pa.repeat)
			bind, advance = &v, true
		case sel.Optional && !sel.repeating():
			advance = true
		default:
			return StepResult{}, &InvalidValueError{Selection: sel.Name, Why: ValueAbsent}
		}

	case sel.Kind == KindElements:
		v, err := resolveElements(sel, q, raw)
		if err != nil {
			return StepResult{}, err
		}
		bind, advance = &v, true
		if sel.OnSelect != nil && !pa.fired[pa.index] {
			fireValue = &v
		}

	default:
		v, err := resolveSingle(sel, q, raw)
		if err != nil {
			return StepResult{}, err
		}
		c := candidateOf(v)
		if err := checkSingle(sel, q, count, c); err != nil {
			return StepResult{}, err
		}
		if sel.repeating() {
			if sel.Repeat.Until != nil && sel.Repeat.Until(c) {
				// Terminator; statusFor has already enforced the minimum.
				lv := listValue(pa.repeat)
				bind, advance = &lv, true
			} else {
				accum = &c
				if sel.OnSelect != nil && !pa.fired[pa.index] {
					fireValue = &v
				}
				if count+1 == sel.Repeat.Max {
					lv := listValue(append(append([]Candidate{}, pa.repeat...), c))
					bind, advance = &lv, true
				}
			}
		} else {
			bind, advance = &v, true
			if sel.OnSelect != nil && !pa.fired[pa.index] {
				fireValue = &v
			}
		}
	}

	completes := advance && pa.index+1 == len(def.Selections)
	if completes && def.Validator != nil {
		final := pa.args.clone()
		if bind != nil {
			final[sel.Name] = *bind
		}
		if msg := def.Validator(e.state, pa.player, final); msg != "" {
			return StepResult{}, &ValidatorRejectedError{Message: msg}
		}
	}

	// Commit.
	var res StepResult
	if accum != nil {
		pa.repeat = append(pa.repeat, *accum)
		pa.inRep = true
	}
	if bind != nil {
		pa.args[sel.Name] = *bind
	}
	if fireValue != nil {
		sel.OnSelect(*fireValue, newSignalContext(&res.Signals))
		pa.fired[pa.index] = true
	}
	if advance {
		pa.index++
		pa.repeat = nil
		pa.inRep = false
	}
	e.dispatch(res.Signals)

	if completes {
		delete(e.pending, pa.handle)
		out, err := def.Effect(e.state, pa.player, pa.args)
		if err != nil {
			return StepResult{}, &EffectError{Action: def.Name, Err: err}
		}
		res.Done = true
		res.Result = out
	}
	return res, nil
}

// CancelPendingAction tears down a pending action, firing OnCancel for
// exactly the selection indices whose OnSelect has run, in ascending index
// order, each with a fresh signal context. Total and idempotent: an unknown
// or already-finished handle is a no-op.
func (e *Engine) CancelPendingAction(handle string) {
	pa, ok := e.pending[handle]
	if !ok {
		return
	}
	delete(e.pending, handle)

	indices := make([]int, 0, len(pa.fired))
	for i := range pa.fired {
		indices = append(indices, i)
	}
	sort.Ints(indices)

	var signals []Signal
	for _, i := range indices {
		if oc := pa.def.Selections[i].OnCancel; oc != nil {
			oc(newSignalContext(&signals))
		}
	}
	e.dispatch(signals)
}

// CurrentStep describes what the pending action is waiting for.
type CurrentStep struct {
	Action    string            `json:"action"`
	Selection string            `json:"selection"`
	Kind      string            `json:"kind"`
	Optional  bool              `json:"optional"`
	Repeating bool              `json:"repeating"`
	Accepted  int               `json:"accepted,omitempty"` // values accumulated at this index
	Choices   []AnnotatedChoice `json:"choices"`
}

// PendingStep returns the current selection and its annotated choice set,
// with candidate labels run through the selection's display formatter.
func (e *Engine) PendingStep(handle string) (CurrentStep, error) {
	pa, ok := e.pending[handle]
	if !ok {
		return CurrentStep{}, &NoPendingError{Handle: handle}
	}
	sel := &pa.def.Selections[pa.index]
	q := queryFor(e.state, sel, pa.player, pa.args)
	ann := annotatedChoices(sel, q, pa.repeatCount())
	for i := range ann {
		ann[i].Candidate.Label = sel.DisplayLabel(ann[i].Candidate)
	}
	return CurrentStep{
		Action:    pa.def.Name,
		Selection: sel.Name,
		Kind:      sel.Kind,
		Optional:  sel.Optional,
		Repeating: sel.repeating(),
		Accepted:  pa.repeatCount(),
		Choices:   ann,
	}, nil
}

// resolveElements resolves and validates a full ELEMENTS pick in one step.
func resolveElements(sel *Selection, q Query, raw any) (Value, error) {
	items := rawList(raw)
	ann := annotatedChoices(sel, q, 0)
	lo := sel.Min
	if lo < 1 {
		lo = 1
	}
	hi := sel.Max
	if hi <= 0 {
		hi = len(ann)
	}
	if len(items) < lo || len(items) > hi {
		return Value{}, &InvalidValueError{
			Selection: sel.Name, Why: NotACandidate,
			Reason: fmt.Sprintf("selection %q takes between %d and %d elements, got %d", sel.Name, lo, hi, len(items)),
		}
	}
	picked := make([]Candidate, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		id, ok := rawString(it)
		if !ok {
			return Value{}, &InvalidValueError{Selection: sel.Name, Why: NotACandidate}
		}
		c, found := q.State.ResolveIdentifier(id)
		if !found {
			return Value{}, &InvalidValueError{Selection: sel.Name, Why: NotACandidate}
		}
		if seen[c.ID] {
			return Value{}, &InvalidValueError{
				Selection: sel.Name, Why: NotACandidate,
				Reason: fmt.Sprintf("duplicate element %q", c.ID),
			}
		}
		seen[c.ID] = true
		if err := checkMembership(sel, ann, c); err != nil {
			return Value{}, err
		}
		picked = append(picked, c)
	}
	return listValue(picked), nil
}

func checkMembership(sel *Selection, ann []AnnotatedChoice, c Candidate) error {
	for _, a := range ann {
		if a.Candidate.ID != c.ID {
			continue
		}
		if !a.Selectable() {
			return &InvalidValueError{Selection: sel.Name, Why: ValueDisabled, Reason: a.Reason}
		}
		return nil
	}
	return &InvalidValueError{Selection: sel.Name, Why: NotACandidate}
}
