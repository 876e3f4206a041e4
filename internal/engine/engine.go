package engine

import (
	"fmt"
	"strconv"
)

// Engine holds the registered action definitions, the live pending actions
// and the state oracle for one game. All methods are synchronous and
// single-threaded: each call runs against the oracle snapshot it is given for
// its whole duration and never suspends. One pending action per player per
// action is a caller-enforced invariant, not checked here.
type Engine struct {
	state   StateOracle
	actions map[string]*ActionDefinition
	order   []string
	pending map[string]*pendingAction
	forward func(Signal)
}

// Option configures an Engine.
type Option func(*Engine)

// WithSignalSink forwards every hook-emitted signal to fn as it is produced.
func WithSignalSink(fn func(Signal)) Option {
	return func(e *Engine) { e.forward = fn }
}

func New(state StateOracle, opts ...Option) *Engine {
	e := &Engine{
		state:   state,
		actions: make(map[string]*ActionDefinition),
		pending: make(map[string]*pendingAction),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Register adds an immutable action definition. Definitions are validated
// once here so every later walk can trust them.
func (e *Engine) Register(def *ActionDefinition) error {
	if def == nil || def.Name == "" {
		return fmt.Errorf("register: action needs a name")
	}
	if _, ok := e.actions[def.Name]; ok {
		return fmt.Errorf("register: duplicate action %q", def.Name)
	}
	if def.Effect == nil {
		return fmt.Errorf("register %s: effect is required", def.Name)
	}
	seen := make(map[string]int, len(def.Selections))
	for i := range def.Selections {
		sel := &def.Selections[i]
		if sel.Name == "" {
			return fmt.Errorf("register %s: selection %d needs a name", def.Name, i)
		}
		if _, dup := seen[sel.Name]; dup {
			return fmt.Errorf("register %s: duplicate selection %q", def.Name, sel.Name)
		}
		switch sel.Kind {
		case KindChoice:
			if sel.Choices == nil {
				return fmt.Errorf("register %s/%s: CHOICE needs a candidate source", def.Name, sel.Name)
			}
		case KindElement, KindElements:
			if sel.ClassTag == "" {
				return fmt.Errorf("register %s/%s: %s needs a class tag", def.Name, sel.Name, sel.Kind)
			}
		case KindNumber:
			if sel.Min > sel.Max {
				return fmt.Errorf("register %s/%s: NUMBER range %d..%d is empty", def.Name, sel.Name, sel.Min, sel.Max)
			}
		case KindText:
		default:
			return fmt.Errorf("register %s/%s: unknown kind %q", def.Name, sel.Name, sel.Kind)
		}
		if sel.Repeat != nil {
			if sel.Kind == KindElements {
				return fmt.Errorf("register %s/%s: ELEMENTS cannot repeat", def.Name, sel.Name)
			}
			if sel.Repeat.Min < 0 || sel.Repeat.Max < 1 || sel.Repeat.Min > sel.Repeat.Max {
				return fmt.Errorf("register %s/%s: repeat bounds %d..%d", def.Name, sel.Name, sel.Repeat.Min, sel.Repeat.Max)
			}
		}
		if sel.DependsOn != "" {
			j, ok := seen[sel.DependsOn]
			if !ok {
				return fmt.Errorf("register %s/%s: depends_on %q must name an earlier selection", def.Name, sel.Name, sel.DependsOn)
			}
			dep := &def.Selections[j]
			if dep.repeating() || dep.Kind == KindElements {
				return fmt.Errorf("register %s/%s: depends_on %q must name a single-valued selection", def.Name, sel.Name, sel.DependsOn)
			}
		}
		seen[sel.Name] = i
	}
	e.actions[def.Name] = def
	e.order = append(e.order, def.Name)
	return nil
}

// Definition returns a registered action by name.
func (e *Engine) Definition(name string) (*ActionDefinition, bool) {
	def, ok := e.actions[name]
	return def, ok
}

// ActionNames lists registered actions in registration order.
func (e *Engine) ActionNames() []string {
	out := make([]string, len(e.order))
	copy(out, e.order)
	return out
}

func (e *Engine) dispatch(signals []Signal) {
	if e.forward == nil {
		return
	}
	for _, s := range signals {
		e.forward(s)
	}
}

// queryFor builds the evaluation context for one selection given the
// bindings collected so far. The DependsOn binding, when present among the
// args, is exposed through the Bound branch of the dependency in candidate
// form; registration guarantees the target is single-valued.
func queryFor(state StateOracle, sel *Selection, p PlayerID, args Args) Query {
	q := Query{State: state, Player: p, Args: args}
	if sel.DependsOn != "" {
		if v, ok := args[sel.DependsOn]; ok && v.Kind != ValueList {
			q.Dep = BoundTo(candidateOf(v))
		}
	}
	return q
}

// statusFor is the single evaluation path for one candidate: Filter, then
// Disabled, then TEXT validation, then repeat-terminal gating. Every caller
// that answers "can this value be picked" goes through here.
func statusFor(sel *Selection, q Query, repeatCount int, c Candidate) choiceStatus {
	st := evaluateCandidate(sel, q, c)
	if st.vis == visSelectable && sel.Kind == KindText && sel.Validate != nil {
		if reason := sel.Validate(q, c.ID); reason != "" {
			st = disabledStatus(reason)
		}
	}
	if st.vis == visSelectable && sel.repeating() && sel.Repeat.Until != nil &&
		sel.Repeat.Until(c) && repeatCount < sel.Repeat.Min {
		st = disabledStatus(fmt.Sprintf("pick at least %d first", sel.Repeat.Min))
	}
	return st
}

// annotatedChoices computes the visible candidate set for a selection under
// q. Hidden candidates are absent; disabled ones carry their reason.
// repeatCount is the number of values already accumulated at this index, 0
// outside a repeat.
func annotatedChoices(sel *Selection, q Query, repeatCount int) []AnnotatedChoice {
	var raw []Candidate
	switch sel.Kind {
	case KindChoice:
		raw = sel.Choices(q)
	case KindElement, KindElements:
		raw = q.State.QueryCandidates(sel.ClassTag, nil)
	case KindNumber:
		for n := sel.Min; n <= sel.Max; n++ {
			raw = append(raw, Candidate{ID: strconv.Itoa(n)})
		}
	case KindText:
		samples := []string{""}
		if sel.Samples != nil {
			samples = sel.Samples(q)
		}
		for _, s := range samples {
			raw = append(raw, Candidate{ID: s})
		}
	}
	out := make([]AnnotatedChoice, 0, len(raw))
	for _, c := range raw {
		switch st := statusFor(sel, q, repeatCount, c); st.vis {
		case visHidden:
		case visSelectable:
			out = append(out, AnnotatedChoice{Candidate: c})
		case visDisabled:
			out = append(out, AnnotatedChoice{Candidate: c, Reason: st.reason})
		}
	}
	return out
}

func selectableCount(ann []AnnotatedChoice) int {
	n := 0
	for _, a := range ann {
		if a.Selectable() {
			n++
		}
	}
	return n
}
