package engine

// Signal is an opaque named payload emitted by a hook and forwarded verbatim
// to whatever presentation layer subscribes. The engine never inspects it.
type Signal struct {
	Tag     string            `json:"tag"`
	Payload map[string]string `json:"payload,omitempty"`
}

// SignalContext is the entire capability surface handed to onSelect and
// onCancel hooks. It carries no reference to game state or to the engine, so
// a hook cannot read or mutate anything through it; emitting signals is the
// one thing a hook can do.
type SignalContext struct {
	out *[]Signal
}

func newSignalContext(out *[]Signal) *SignalContext {
	return &SignalContext{out: out}
}

// Emit records a named, payload-carrying signal in submission order.
func (sc *SignalContext) Emit(tag string, payload map[string]string) {
	if sc == nil || sc.out == nil {
		return
	}
	*sc.out = append(*sc.out, Signal{Tag: tag, Payload: payload})
}
