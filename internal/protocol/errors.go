package protocol

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"

	// Session routing.
	ErrUnknownAction = "E_UNKNOWN_ACTION"
	ErrNoPending     = "E_NO_PENDING"

	// Resolution layer.
	ErrConditionFailed = "E_CONDITION_FAILED"
	ErrNoCandidates    = "E_NO_CANDIDATES"
	ErrAllDisabled     = "E_ALL_DISABLED"
	ErrNotACandidate   = "E_NOT_A_CANDIDATE"
	ErrDisabled        = "E_DISABLED"
	ErrValueAbsent     = "E_VALUE_ABSENT"
	ErrOutOfSequence   = "E_OUT_OF_SEQUENCE"
	ErrValidator       = "E_VALIDATOR"
	ErrEffect          = "E_EFFECT"
	ErrInternal        = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest: {},
	ErrUnknownAction:   {},
	ErrNoPending:       {},
	ErrConditionFailed: {},
	ErrNoCandidates:    {},
	ErrAllDisabled:     {},
	ErrNotACandidate:   {},
	ErrDisabled:        {},
	ErrValueAbsent:     {},
	ErrOutOfSequence:   {},
	ErrValidator:       {},
	ErrEffect:          {},
	ErrInternal:        {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
