package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	PlayerName      string `json:"player_name"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string   `json:"type"`
	ProtocolVersion string   `json:"protocol_version"`
	SessionID       string   `json:"session_id"`
	Player          string   `json:"player"`
	Actions         []string `json:"actions"`
}

// AVAILABILITY (client -> server): ask whether an action is invocable.
type AvailabilityReq struct {
	Type   string `json:"type"`
	ID     string `json:"id"`
	Action string `json:"action"`
}

// BEGIN (client -> server): open a step-by-step fill.
type BeginReq struct {
	Type   string `json:"type"`
	ID     string `json:"id"`
	Action string `json:"action"`
}

// STEP (client -> server): feed one value to the current selection.
// A null/omitted value skips an optional selection or finishes a repeat.
type StepReq struct {
	Type      string `json:"type"`
	ID        string `json:"id"`
	Handle    string `json:"handle"`
	Selection string `json:"selection"`
	Value     any    `json:"value,omitempty"`
}

// CANCEL (client -> server)
type CancelReq struct {
	Type   string `json:"type"`
	ID     string `json:"id"`
	Handle string `json:"handle"`
}

// RESUME (client -> server): re-attach a pending fill that survived a
// reconnect, from the server-side stash.
type ResumeReq struct {
	Type   string `json:"type"`
	ID     string `json:"id"`
	Handle string `json:"handle"`
}

// DIRECT (client -> server): single-shot fully bound call.
type DirectReq struct {
	Type   string         `json:"type"`
	ID     string         `json:"id"`
	Action string         `json:"action"`
	Args   map[string]any `json:"args"`
}

// MOVES (client -> server): exhaustive legal-move enumeration.
type MovesReq struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// Diagnostic mirrors one availability outcome.
type Diagnostic struct {
	Label  string `json:"label"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

// Choice is one visible candidate with its selectability.
type Choice struct {
	ID     string `json:"id"`
	Label  string `json:"label,omitempty"`
	Reason string `json:"reason,omitempty"` // empty means selectable
}

// Step describes what a pending action is currently waiting for.
type Step struct {
	Action    string   `json:"action"`
	Selection string   `json:"selection"`
	Kind      string   `json:"kind"`
	Optional  bool     `json:"optional,omitempty"`
	Repeating bool     `json:"repeating,omitempty"`
	Accepted  int      `json:"accepted,omitempty"`
	Choices   []Choice `json:"choices"`
}

// Move is one fully bound legal invocation.
type Move struct {
	Action string              `json:"action"`
	Args   map[string][]string `json:"args"` // selection -> canonical ids
}

// RESULT (server -> client): reply to any request, matched by ref.
type ResultMsg struct {
	Type    string `json:"type"`
	Ref     string `json:"ref"`
	OK      bool   `json:"ok"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`

	Handle      string       `json:"handle,omitempty"`
	Done        bool         `json:"done,omitempty"`
	Available   *bool        `json:"available,omitempty"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
	Step        *Step        `json:"step,omitempty"`
	Moves       []Move       `json:"moves,omitempty"`
	Truncated   bool         `json:"truncated,omitempty"`
	Signals     []SignalMsg  `json:"signals,omitempty"`
	Result      any          `json:"result,omitempty"`
}

// SIGNAL (server -> client): side-channel emission forwarded verbatim.
type SignalMsg struct {
	Type    string            `json:"type,omitempty"`
	Tag     string            `json:"tag"`
	Payload map[string]string `json:"payload,omitempty"`
}
