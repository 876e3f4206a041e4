package engine

import (
	"fmt"
	"sort"
)

// Record is the plain, serializable view of a pending action: no closures,
// no live references, only canonical identifiers. It survives a JSON round
// trip (and therefore a network boundary) and can be re-attached to an
// engine holding the same action definitions.
type Record struct {
	Handle string           `json:"handle"`
	Action string           `json:"action"`
	Player string           `json:"player"`
	Index  int              `json:"index"`
	Args   map[string]Value `json:"args,omitempty"`
	Repeat []Candidate      `json:"repeat,omitempty"`
	InRep  bool             `json:"in_repeat,omitempty"`
	Fired  []int            `json:"on_select_fired,omitempty"`
}

// Snapshot exports the pending action behind handle. The pending action
// stays live; the record is an independent copy.
func (e *Engine) Snapshot(handle string) (Record, error) {
	pa, ok := e.pending[handle]
	if !ok {
		return Record{}, &NoPendingError{Handle: handle}
	}
	rec := Record{
		Handle: pa.handle,
		Action: pa.def.Name,
		Player: string(pa.player),
		Index:  pa.index,
		InRep:  pa.inRep,
	}
	if len(pa.args) > 0 {
		rec.Args = make(map[string]Value, len(pa.args))
		for k, v := range pa.args {
			rec.Args[k] = v
		}
	}
	rec.Repeat = append(rec.Repeat, pa.repeat...)
	for i := range pa.fired {
		rec.Fired = append(rec.Fired, i)
	}
	sort.Ints(rec.Fired)
	return rec, nil
}

// Restore re-attaches a previously snapshotted pending action, validating
// the record against the registered definition first. A handle already in
// use is rejected rather than replaced.
func (e *Engine) Restore(rec Record) error {
	def, ok := e.actions[rec.Action]
	if !ok {
		return &UnknownActionError{Name: rec.Action}
	}
	if rec.Handle == "" {
		return fmt.Errorf("restore: record has no handle")
	}
	if _, live := e.pending[rec.Handle]; live {
		return fmt.Errorf("restore: handle %q is already pending", rec.Handle)
	}
	if rec.Index < 0 || rec.Index >= len(def.Selections) {
		return fmt.Errorf("restore %s: index %d out of range", rec.Action, rec.Index)
	}
	for name := range rec.Args {
		if _, sel := def.selection(name); sel == nil {
			return fmt.Errorf("restore %s: unknown selection %q in args", rec.Action, name)
		}
	}
	if rec.InRep && !def.Selections[rec.Index].repeating() {
		return fmt.Errorf("restore %s: selection %q does not repeat", rec.Action, def.Selections[rec.Index].Name)
	}
	fired := make(map[int]bool, len(rec.Fired))
	for _, i := range rec.Fired {
		if i < 0 || i > rec.Index || i >= len(def.Selections) {
			return fmt.Errorf("restore %s: fired index %d out of range", rec.Action, i)
		}
		fired[i] = true
	}
	pa := &pendingAction{
		handle: rec.Handle,
		def:    def,
		player: PlayerID(rec.Player),
		index:  rec.Index,
		args:   Args{},
		inRep:  rec.InRep,
		fired:  fired,
	}
	for k, v := range rec.Args {
		pa.args[k] = v
	}
	pa.repeat = append(pa.repeat, rec.Repeat...)
	e.pending[rec.Handle] = pa
	return nil
}
