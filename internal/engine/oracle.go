package engine

// PlayerID identifies an acting player.
type PlayerID string

// Candidate is the canonical form of one value eligible to fill a selection.
// Everything above the resolver (validation, hooks, effects, serialization)
// sees candidates only in this form.
type Candidate struct {
	ID    string `json:"id"`
	Label string `json:"label,omitempty"`
}

// StateOracle is the narrow read interface into the external game-state
// object graph. The engine never mutates game state through it; all mutation
// is delegated to externally authored effects.
//
// QueryCandidates must return a stable order for an unchanged snapshot;
// availability and enumeration answers are only deterministic if it does.
// Results are queried fresh on every call, never cached here.
type StateOracle interface {
	ResolveIdentifier(id string) (Candidate, bool)
	QueryCandidates(classTag string, match func(Candidate) bool) []Candidate
	CurrentPlayer() PlayerID
	ReadAttribute(c Candidate, key string) (any, bool)
}
