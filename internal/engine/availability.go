package engine

import "fmt"

// Diagnostic is one labeled availability outcome: a condition label or a
// selection name, whether it passed, and a short detail.
type Diagnostic struct {
	Label  string `json:"label"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

// Availability is the full answer to "can this player invoke this action
// right now, and why not if not".
type Availability struct {
	Available   bool         `json:"available"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}

// IsActionAvailable decides whether at least one legal end-to-end path of
// choices exists for the action. Every condition is evaluated and reported
// even after one fails; only the overall boolean short-circuits. The
// selection walk runs with no bindings, so every dependency is evaluated on
// its Unbound branch: "satisfiable" means satisfiable for at least one
// eventual resolution of earlier selections.
//
// Re-running against an unchanged snapshot returns identical diagnostics.
func (e *Engine) IsActionAvailable(name string, p PlayerID) (Availability, error) {
	def, ok := e.actions[name]
	if !ok {
		return Availability{}, &UnknownActionError{Name: name}
	}

	av := Availability{Available: true}
	for _, cond := range def.Conditions {
		passed, detail := cond.Check(e.state, p)
		av.Diagnostics = append(av.Diagnostics, Diagnostic{Label: cond.Label, Passed: passed, Detail: detail})
		if !passed {
			av.Available = false
		}
	}
	if def.SkipIf != nil && def.SkipIf(e.state, p) {
		av.Diagnostics = append(av.Diagnostics, Diagnostic{Label: "skip", Passed: false, Detail: "action skipped"})
		av.Available = false
	}
	if !av.Available {
		return av, nil
	}

	args := Args{}
	for i := range def.Selections {
		sel := &def.Selections[i]
		d := selectionDiagnostic(sel, queryFor(e.state, sel, p, args))
		av.Diagnostics = append(av.Diagnostics, d)
		if !d.Passed {
			av.Available = false
		}
	}
	return av, nil
}

// CheckAvailable is the typed-error form of IsActionAvailable: nil when the
// action is invocable, otherwise the first blocking condition or
// unsatisfiable selection.
func (e *Engine) CheckAvailable(name string, p PlayerID) error {
	def, ok := e.actions[name]
	if !ok {
		return &UnknownActionError{Name: name}
	}
	for _, cond := range def.Conditions {
		if passed, detail := cond.Check(e.state, p); !passed {
			return &ConditionFailedError{Label: cond.Label, Detail: detail}
		}
	}
	if def.SkipIf != nil && def.SkipIf(e.state, p) {
		return &ConditionFailedError{Label: "skip", Detail: "action skipped"}
	}
	args := Args{}
	for i := range def.Selections {
		sel := &def.Selections[i]
		if d := selectionDiagnostic(sel, queryFor(e.state, sel, p, args)); !d.Passed {
			why := AllDisabled
			if d.Detail == string(ZeroCandidates) {
				why = ZeroCandidates
			}
			return &SelectionUnsatisfiableError{Selection: sel.Name, Why: why}
		}
	}
	return nil
}

// selectionDiagnostic reports whether one selection is satisfiable with the
// given (possibly empty) bindings, distinguishing "zero candidates" from
// "candidates present but all disabled".
func selectionDiagnostic(sel *Selection, q Query) Diagnostic {
	ann := annotatedChoices(sel, q, 0)
	selectable := selectableCount(ann)

	if sel.Kind == KindElements {
		need := sel.Min
		if need < 1 {
			need = 1
		}
		if selectable >= need {
			return Diagnostic{Label: sel.Name, Passed: true,
				Detail: fmt.Sprintf("%d of %d candidates selectable", selectable, len(ann))}
		}
		if sel.Optional {
			return Diagnostic{Label: sel.Name, Passed: true, Detail: "optional"}
		}
		if len(ann) == 0 {
			return Diagnostic{Label: sel.Name, Passed: false, Detail: string(ZeroCandidates)}
		}
		return Diagnostic{Label: sel.Name, Passed: false,
			Detail: fmt.Sprintf("needs %d selectable, have %d", need, selectable)}
	}

	switch {
	case selectable > 0:
		return Diagnostic{Label: sel.Name, Passed: true,
			Detail: fmt.Sprintf("%d of %d candidates selectable", selectable, len(ann))}
	case sel.Optional:
		return Diagnostic{Label: sel.Name, Passed: true, Detail: "optional"}
	case len(ann) == 0:
		return Diagnostic{Label: sel.Name, Passed: false, Detail: string(ZeroCandidates)}
	default:
		return Diagnostic{Label: sel.Name, Passed: false, Detail: string(AllDisabled)}
	}
}
