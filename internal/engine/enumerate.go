package engine

// Move is one fully bound legal invocation.
type Move struct {
	Action string `json:"action"`
	Args   Args   `json:"args"`
}

// EnumerateLegalMoves produces every (action, fully-bound-args) pair
// currently legal for the player, in registration order and candidate order
// within each action. Cost is the Cartesian product of selectable choices;
// bounding candidate counts is the caller's responsibility; nothing here
// truncates.
//
// For every action,
// IsActionAvailable(a, p).Available == (at least one move named a is emitted),
// provided candidate functions honor the unbound-dependency contract.
func (e *Engine) EnumerateLegalMoves(p PlayerID) []Move {
	var moves []Move
	for _, name := range e.order {
		def := e.actions[name]
		if !e.conditionsPass(def, p) {
			continue
		}
		e.expand(def, p, 0, Args{}, &moves)
	}
	return moves
}

func (e *Engine) conditionsPass(def *ActionDefinition, p PlayerID) bool {
	for _, cond := range def.Conditions {
		if passed, _ := cond.Check(e.state, p); !passed {
			return false
		}
	}
	if def.SkipIf != nil && def.SkipIf(e.state, p) {
		return false
	}
	return true
}

// expand walks selections depth-first, branching on every selectable
// annotated choice. A required selection with zero selectable candidates
// kills the branch immediately.
func (e *Engine) expand(def *ActionDefinition, p PlayerID, i int, args Args, out *[]Move) {
	if i == len(def.Selections) {
		*out = append(*out, Move{Action: def.Name, Args: args.clone()})
		return
	}
	sel := &def.Selections[i]

	if sel.repeating() {
		e.expandRepeat(def, p, i, args, nil, out)
		return
	}

	q := queryFor(e.state, sel, p, args)
	ann := annotatedChoices(sel, q, 0)

	if sel.Kind == KindElements {
		e.expandElements(def, p, i, args, ann, out)
		return
	}

	for _, a := range ann {
		if !a.Selectable() {
			continue
		}
		next := args.clone()
		next[sel.Name] = singleValue(sel, a.Candidate)
		e.expand(def, p, i+1, next, out)
	}
	if sel.Optional {
		// The omit branch mirrors submitting a nil step.
		e.expand(def, p, i+1, args, out)
	}
	// required with nothing selectable: the branch dies here
}

// expandRepeat contributes every accumulation of length Min..Max, each
// closed by the terminal stop pseudo-choice. Terminal candidates are never
// accumulated.
func (e *Engine) expandRepeat(def *ActionDefinition, p PlayerID, i int, args Args, acc []Candidate, out *[]Move) {
	sel := &def.Selections[i]
	rp := sel.Repeat

	if len(acc) >= rp.Min {
		next := args.clone()
		next[sel.Name] = listValue(append([]Candidate{}, acc...))
		e.expand(def, p, i+1, next, out)
	}
	if len(acc) >= rp.Max {
		return
	}

	q := queryFor(e.state, sel, p, args)
	for _, a := range annotatedChoices(sel, q, len(acc)) {
		if !a.Selectable() {
			continue
		}
		if rp.Until != nil && rp.Until(a.Candidate) {
			continue
		}
		e.expandRepeat(def, p, i, args, append(acc[:len(acc):len(acc)], a.Candidate), out)
	}
}

// expandElements contributes every subset of selectable candidates with a
// size inside the selection's count bounds, preserving candidate order.
func (e *Engine) expandElements(def *ActionDefinition, p PlayerID, i int, args Args, ann []AnnotatedChoice, out *[]Move) {
	sel := &def.Selections[i]
	var selectable []Candidate
	for _, a := range ann {
		if a.Selectable() {
			selectable = append(selectable, a.Candidate)
		}
	}
	lo := sel.Min
	if lo < 1 {
		lo = 1
	}
	hi := sel.Max
	if hi <= 0 || hi > len(selectable) {
		hi = len(selectable)
	}

	var walk func(start int, picked []Candidate)
	walk = func(start int, picked []Candidate) {
		if len(picked) >= lo && len(picked) <= hi {
			next := args.clone()
			next[sel.Name] = listValue(append([]Candidate{}, picked...))
			e.expand(def, p, i+1, next, out)
		}
		if len(picked) >= hi {
			return
		}
		for j := start; j < len(selectable); j++ {
			walk(j+1, append(picked[:len(picked):len(picked)], selectable[j]))
		}
	}
	walk(0, nil)

	if sel.Optional {
		e.expand(def, p, i+1, args, out)
	}
}

func singleValue(sel *Selection, c Candidate) Value {
	switch sel.Kind {
	case KindText:
		return textValue(c.ID)
	case KindNumber:
		n, _ := rawNumber(c.ID)
		return numberValue(n)
	default:
		return itemValue(c)
	}
}
