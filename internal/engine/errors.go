package engine

import "fmt"

// UnsatisfiableWhy distinguishes the two ways a required selection can have
// no selectable path.
type UnsatisfiableWhy string

const (
	ZeroCandidates UnsatisfiableWhy = "ZERO_CANDIDATES"
	AllDisabled    UnsatisfiableWhy = "ALL_DISABLED"
)

// InvalidWhy distinguishes the ways a submitted value can be rejected.
type InvalidWhy string

const (
	ValueAbsent   InvalidWhy = "ABSENT"
	NotACandidate InvalidWhy = "NOT_A_CANDIDATE"
	ValueDisabled InvalidWhy = "DISABLED"
)

// ConditionFailedError reports the first failing labeled condition.
type ConditionFailedError struct {
	Label  string
	Detail string
}

func (e *ConditionFailedError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("condition %q failed", e.Label)
	}
	return fmt.Sprintf("condition %q failed: %s", e.Label, e.Detail)
}

// SelectionUnsatisfiableError reports a required selection with no selectable
// candidate.
type SelectionUnsatisfiableError struct {
	Selection string
	Why       UnsatisfiableWhy
}

func (e *SelectionUnsatisfiableError) Error() string {
	if e.Why == AllDisabled {
		return fmt.Sprintf("selection %q has candidates but all are disabled", e.Selection)
	}
	return fmt.Sprintf("selection %q has no candidates", e.Selection)
}

// InvalidValueError rejects one submitted value. For a disabled candidate,
// Reason carries the author-supplied reason text verbatim.
type InvalidValueError struct {
	Selection string
	Why       InvalidWhy
	Reason    string
}

func (e *InvalidValueError) Error() string {
	switch e.Why {
	case ValueDisabled:
		return e.Reason
	case ValueAbsent:
		return fmt.Sprintf("selection %q requires a value", e.Selection)
	default:
		if e.Reason != "" {
			return e.Reason
		}
		return fmt.Sprintf("value is not a candidate for selection %q", e.Selection)
	}
}

// OutOfSequenceError rejects a step naming a selection other than the
// current one.
type OutOfSequenceError struct {
	Expected string
	Index    int
	Got      string
}

func (e *OutOfSequenceError) Error() string {
	return fmt.Sprintf("expected step %d (%q), got %q", e.Index, e.Expected, e.Got)
}

// ValidatorRejectedError carries the action validator's rejection message.
type ValidatorRejectedError struct {
	Message string
}

func (e *ValidatorRejectedError) Error() string { return e.Message }

// EffectError wraps a failure raised by the externally authored effect. Any
// partial game mutation it performed stands; rollback belongs to the layer
// that owns state mutation.
type EffectError struct {
	Action string
	Err    error
}

func (e *EffectError) Error() string {
	return fmt.Sprintf("effect of %q failed: %v", e.Action, e.Err)
}

func (e *EffectError) Unwrap() error { return e.Err }

// UnknownActionError names an action that was never registered.
type UnknownActionError struct {
	Name string
}

func (e *UnknownActionError) Error() string {
	return fmt.Sprintf("unknown action %q", e.Name)
}

// NoPendingError reports an operation against a handle with no live pending
// action.
type NoPendingError struct {
	Handle string
}

func (e *NoPendingError) Error() string {
	return fmt.Sprintf("no pending action for handle %q", e.Handle)
}
