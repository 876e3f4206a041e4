package engine

// Condition is one labeled precondition of an action. Check returns whether
// it passes plus a short human-readable detail either way; availability
// reports every condition's outcome, not just the first failure.
type Condition struct {
	Label string
	Check func(state StateOracle, p PlayerID) (bool, string)
}

// ActionDefinition declares a player-invocable action: an ordered list of
// selections, labeled preconditions, an optional whole-argument validator and
// the effect that ultimately consumes the resolved arguments. Definitions are
// authored once and immutable after registration.
type ActionDefinition struct {
	Name       string
	Conditions []Condition
	Selections []Selection

	// Validator sees the complete resolved argument mapping and returns a
	// rejection message, or empty to accept.
	Validator func(state StateOracle, p PlayerID, args Args) string

	// Effect may mutate game state through externally captured references.
	// The engine passes the oracle for reads only.
	Effect func(state StateOracle, p PlayerID, args Args) (any, error)

	Undoable bool

	// SkipIf, when set and true, marks the action skipped for the player:
	// unavailable and absent from enumeration without evaluating selections.
	SkipIf func(state StateOracle, p PlayerID) bool
}

func (d *ActionDefinition) selection(name string) (int, *Selection) {
	for i := range d.Selections {
		if d.Selections[i].Name == name {
			return i, &d.Selections[i]
		}
	}
	return -1, nil
}
