package engine

// Selection kinds.
const (
	KindChoice   = "CHOICE"
	KindElement  = "ELEMENT"
	KindElements = "ELEMENTS"
	KindText     = "TEXT"
	KindNumber   = "NUMBER"
)

// Dependency carries the value of the selection named by DependsOn at the
// moment a candidate function runs. Author functions must handle both
// branches: when the dependency is unbound the question is "could this
// candidate be valid for at least one eventual resolution of the dependency";
// when bound it is "is this candidate valid for this specific value". The two
// answers differ, and availability is defined in terms of the first.
type Dependency struct {
	bound bool
	value Candidate
}

// Unbound is the dependency state before the depended-on selection is filled.
var Unbound = Dependency{}

// BoundTo wraps a resolved dependency value.
func BoundTo(c Candidate) Dependency { return Dependency{bound: true, value: c} }

// Bound returns the dependency value and whether it is bound.
func (d Dependency) Bound() (Candidate, bool) { return d.value, d.bound }

// Query is the evaluation context handed to candidate, filter, disabled,
// sample and format functions. Args holds bindings for selections earlier in
// the action's order only; Dep is the DependsOn binding, if any.
type Query struct {
	State  StateOracle
	Player PlayerID
	Dep    Dependency
	Args   Args
}

// RepeatSpec configures a repeating selection. Values accumulate at the same
// index until Until matches a submitted candidate (accepted only once Min
// values are in) or Max values have been accepted. A candidate matched by
// Until is a terminator, never part of the accumulated list.
type RepeatSpec struct {
	Min   int
	Max   int
	Until func(c Candidate) bool
}

// Selection is one named input-collection step of an action.
//
// Choices sources candidates for CHOICE selections; ELEMENT/ELEMENTS
// selections query the state oracle by ClassTag instead. NUMBER selections
// candidate over the inclusive range Min..Max. TEXT selections are free-form;
// Samples, when set, provides the values enumeration explores (the empty
// string is the single default sample), and Validate may reject a submitted
// text with a reason.
//
// Filter decides visibility: a candidate failing it is hidden and never
// surfaces anywhere. Disabled decides selectability among visible candidates:
// a non-empty return is the author's reason text, surfaced verbatim to
// callers and to rejected submissions.
type Selection struct {
	Name      string
	Kind      string
	Optional  bool
	DependsOn string
	Repeat    *RepeatSpec

	ClassTag string // ELEMENT/ELEMENTS oracle class
	Min      int    // NUMBER range low / ELEMENTS count low
	Max      int    // NUMBER range high / ELEMENTS count high (0 = all)

	Choices  func(q Query) []Candidate
	Samples  func(q Query) []string
	Validate func(q Query, text string) string

	Filter   func(q Query, c Candidate) bool
	Disabled func(q Query, c Candidate) string

	OnSelect func(v Value, sc *SignalContext)
	OnCancel func(sc *SignalContext)

	Format func(c Candidate) string
}

func (s *Selection) repeating() bool { return s.Repeat != nil }

// DisplayLabel renders a candidate for presentation, preferring the
// selection's own formatter.
func (s *Selection) DisplayLabel(c Candidate) string {
	if s.Format != nil {
		return s.Format(c)
	}
	if c.Label != "" {
		return c.Label
	}
	return c.ID
}
