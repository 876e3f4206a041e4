package engine

// choiceStatus is the three-way outcome of evaluating one candidate against a
// selection: hidden (failed Filter, never surfaced), selectable, or disabled
// with a mandatory reason. Modeled as a closed type so "disabled without a
// reason" cannot be constructed.
type choiceStatus struct {
	vis    visibility
	reason string
}

type visibility int

const (
	visHidden visibility = iota
	visSelectable
	visDisabled
)

func hiddenStatus() choiceStatus     { return choiceStatus{vis: visHidden} }
func selectableStatus() choiceStatus { return choiceStatus{vis: visSelectable} }

func disabledStatus(reason string) choiceStatus {
	if reason == "" {
		reason = "not selectable"
	}
	return choiceStatus{vis: visDisabled, reason: reason}
}

// AnnotatedChoice pairs a visible candidate with its selectability. Hidden
// candidates never become an AnnotatedChoice at all.
type AnnotatedChoice struct {
	Candidate Candidate `json:"candidate"`
	Reason    string    `json:"reason,omitempty"` // empty means selectable
}

func (a AnnotatedChoice) Selectable() bool { return a.Reason == "" }

// evaluateCandidate applies the selection's Filter then Disabled to one
// candidate under q.
func evaluateCandidate(sel *Selection, q Query, c Candidate) choiceStatus {
	if sel.Filter != nil && !sel.Filter(q, c) {
		return hiddenStatus()
	}
	if sel.Disabled != nil {
		if reason := sel.Disabled(q, c); reason != "" {
			return disabledStatus(reason)
		}
	}
	return selectableStatus()
}
