package engine

import (
	"encoding/json"
	"strconv"
	"strings"
)

// resolveSingle turns one raw submitted value into its canonical form for a
// non-ELEMENTS selection. It is the single source of truth for what a hook,
// a validator and an effect see for the same input; nothing downstream ever
// re-derives a representation.
//
// ELEMENT raw values are identifiers looked up via the oracle. CHOICE raw
// values match a candidate by ID first, then "smart" match: an identifier
// the oracle can resolve whose canonical ID or label names one of the
// choices. TEXT takes the string as-is; NUMBER accepts ints, floats with no
// fraction, and numeric strings.
func resolveSingle(sel *Selection, q Query, raw any) (Value, error) {
	switch sel.Kind {
	case KindElement:
		id, ok := rawString(raw)
		if !ok {
			return Value{}, &InvalidValueError{Selection: sel.Name, Why: NotACandidate}
		}
		c, found := q.State.ResolveIdentifier(id)
		if !found {
			return Value{}, &InvalidValueError{Selection: sel.Name, Why: NotACandidate}
		}
		return itemValue(c), nil

	case KindChoice:
		id, ok := rawString(raw)
		if !ok {
			return Value{}, &InvalidValueError{Selection: sel.Name, Why: NotACandidate}
		}
		choices := sel.Choices(q)
		for _, c := range choices {
			if c.ID == id {
				return itemValue(c), nil
			}
		}
		// Smart matching: the raw value may be an identifier that happens
		// to name one of the choices.
		if rc, found := q.State.ResolveIdentifier(id); found {
			for _, c := range choices {
				if c.ID == rc.ID || (rc.Label != "" && c.ID == rc.Label) {
					return itemValue(c), nil
				}
			}
		}
		return Value{}, &InvalidValueError{Selection: sel.Name, Why: NotACandidate}

	case KindText:
		s, ok := rawString(raw)
		if !ok {
			return Value{}, &InvalidValueError{Selection: sel.Name, Why: NotACandidate}
		}
		return textValue(s), nil

	case KindNumber:
		n, ok := rawNumber(raw)
		if !ok {
			return Value{}, &InvalidValueError{Selection: sel.Name, Why: NotACandidate}
		}
		return numberValue(n), nil
	}
	return Value{}, &InvalidValueError{Selection: sel.Name, Why: NotACandidate}
}

// candidateOf maps a resolved single value back to candidate form for
// membership checks, repeat accumulation and dependency binding.
func candidateOf(v Value) Candidate {
	switch v.Kind {
	case ValueItem:
		return v.Item
	case ValueText:
		return Candidate{ID: v.Text}
	case ValueNumber:
		return Candidate{ID: strconv.Itoa(v.Num)}
	}
	return Candidate{}
}

// checkSingle validates a resolved candidate against the selection's current
// annotated choice set. TEXT selections are free-form, so the submitted text
// is evaluated directly instead of by membership in the sample list. A
// disabled rejection carries the author's reason text verbatim.
func checkSingle(sel *Selection, q Query, repeatCount int, c Candidate) error {
	if sel.Kind == KindText {
		switch st := statusFor(sel, q, repeatCount, c); st.vis {
		case visHidden:
			return &InvalidValueError{Selection: sel.Name, Why: NotACandidate}
		case visDisabled:
			return &InvalidValueError{Selection: sel.Name, Why: ValueDisabled, Reason: st.reason}
		}
		return nil
	}
	for _, a := range annotatedChoices(sel, q, repeatCount) {
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

func rawString(raw any) (string, bool) {
	switch v := raw.(type) {
	case string:
		return v, true
	case Candidate:
		return v.ID, true
	}
	return "", false
}

func rawNumber(raw any) (int, bool) {
	switch v := raw.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		n := int(v)
		if float64(n) != v {
			return 0, false
		}
		return n, true
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return int(n), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// rawList normalizes a submitted ELEMENTS / direct-repeat value into a slice
// of raw items. A single bare value is treated as a one-item list.
func rawList(raw any) []any {
	switch v := raw.(type) {
	case nil:
		return nil
	case []any:
		return v
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out
	default:
		return []any{raw}
	}
}
