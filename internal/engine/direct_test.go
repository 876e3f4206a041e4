package engine

import (
	"errors"
	"reflect"
	"testing"
)

func TestDirect_Purchase(t *testing.T) {
	g := newTestGame()
	var bought []string
	e := newShopEngine(g, &bought)

	res, err := e.ExecuteDirect("purchase", "alice", map[string]any{"item": "sword"})
	if err != nil {
		t.Fatalf("direct: %v", err)
	}
	if res.Result != "bought sword" {
		t.Fatalf("result: %v", res.Result)
	}
	if res.Args["item"].Item.ID != "sword" {
		t.Fatalf("args: %+v", res.Args)
	}
	if len(res.Signals) != 1 || res.Signals[0].Tag != "picked" {
		t.Fatalf("signals: %v", res.Signals)
	}
	if g.gold["alice"] != 10 || g.stock["sword"] != 1 {
		t.Fatalf("state: gold=%d stock=%d", g.gold["alice"], g.stock["sword"])
	}
}

// A direct call and a step-by-step fill of the same values must hand the
// effect identical arguments and emit the same signals in the same order.
func TestDirect_ParityWithStepwise(t *testing.T) {
	runDirect := func() (Args, []Signal) {
		g := newTestGame()
		var selectLog, cancelLog, drawn []string
		var got Args
		e := New(g)
		def := cardsDef(g, &selectLog, &cancelLog, &drawn)
		inner := def.Effect
		def.Effect = func(s StateOracle, p PlayerID, args Args) (any, error) {
			got = args
			return inner(s, p, args)
		}
		if err := e.Register(def); err != nil {
			t.Fatalf("register: %v", err)
		}
		res, err := e.ExecuteDirect("cards", "alice", map[string]any{"cards": []string{"A", "B"}})
		if err != nil {
			t.Fatalf("direct: %v", err)
		}
		return got, res.Signals
	}
	runStepwise := func() (Args, []Signal) {
		g := newTestGame()
		var selectLog, cancelLog, drawn []string
		var got Args
		e := New(g)
		def := cardsDef(g, &selectLog, &cancelLog, &drawn)
		inner := def.Effect
		def.Effect = func(s StateOracle, p PlayerID, args Args) (any, error) {
			got = args
			return inner(s, p, args)
		}
		if err := e.Register(def); err != nil {
			t.Fatalf("register: %v", err)
		}
		h := mustBegin(e, "cards", "alice")
		var all []Signal
		for _, id := range []string{"A", "B", "done"} {
			res, err := e.SubmitStep(h, "cards", id)
			if err != nil {
				t.Fatalf("%s: %v", id, err)
			}
			all = append(all, res.Signals...)
		}
		return got, all
	}

	dArgs, dSignals := runDirect()
	sArgs, sSignals := runStepwise()
	if !reflect.DeepEqual(dArgs, sArgs) {
		t.Fatalf("args diverge: direct=%+v stepwise=%+v", dArgs, sArgs)
	}
	if !reflect.DeepEqual(dSignals, sSignals) {
		t.Fatalf("signals diverge: direct=%v stepwise=%v", dSignals, sSignals)
	}
}

// One bad value anywhere fails the whole call before any hook or the effect.
func TestDirect_Atomicity(t *testing.T) {
	g := newTestGame()
	var bought []string
	e := newShopEngine(g, &bought)

	var sunk []Signal
	e.forward = func(s Signal) { sunk = append(sunk, s) }

	_, err := e.ExecuteDirect("purchase", "alice", map[string]any{"item": "shield"})
	var inv *InvalidValueError
	if !errors.As(err, &inv) || err.Error() != "sold out" {
		t.Fatalf("expected verbatim disabled reason, got %v", err)
	}
	if len(bought) != 0 || len(sunk) != 0 || g.gold["alice"] != 20 {
		t.Fatalf("failed call must leave no trace: bought=%v signals=%v gold=%d",
			bought, sunk, g.gold["alice"])
	}
}

func TestDirect_AbsentRequired(t *testing.T) {
	g := newTestGame()
	var bought []string
	e := newShopEngine(g, &bought)

	_, err := e.ExecuteDirect("purchase", "alice", map[string]any{})
	var inv *InvalidValueError
	if !errors.As(err, &inv) || inv.Why != ValueAbsent || inv.Selection != "item" {
		t.Fatalf("expected absent rejection for item, got %v", err)
	}
}

func TestDirect_ConditionFailsFast(t *testing.T) {
	g := newTestGame()
	var bought []string
	e := newShopEngine(g, &bought)

	_, err := e.ExecuteDirect("purchase", "bob", map[string]any{"item": "sword"})
	var cf *ConditionFailedError
	if !errors.As(err, &cf) || cf.Label != "can-afford" {
		t.Fatalf("expected condition failure, got %v", err)
	}
}

func TestDirect_RepeatListBounds(t *testing.T) {
	g := newTestGame()
	var selectLog, cancelLog, drawn []string
	e := New(g)
	if err := e.Register(cardsDef(g, &selectLog, &cancelLog, &drawn)); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := e.ExecuteDirect("cards", "alice", map[string]any{"cards": []string{}}); err == nil {
		t.Fatalf("below min must be rejected")
	}
	if _, err := e.ExecuteDirect("cards", "alice", map[string]any{"cards": []string{"A", "B", "C", "A"}}); err == nil {
		t.Fatalf("above max must be rejected")
	}
	// The terminator is never a member of the list itself.
	if _, err := e.ExecuteDirect("cards", "alice", map[string]any{"cards": []string{"A", "done"}}); err == nil {
		t.Fatalf("terminal candidate must be rejected inside a direct list")
	}
	res, err := e.ExecuteDirect("cards", "alice", map[string]any{"cards": []string{"C"}})
	if err != nil {
		t.Fatalf("single card: %v", err)
	}
	if res.Args["cards"].Kind != ValueList || !reflect.DeepEqual(res.Args["cards"].IDs(), []string{"C"}) {
		t.Fatalf("args: %+v", res.Args)
	}
}

// An absent value for a repeating selection follows the stepwise nil rule on
// the direct path too: rejected below the minimum even when the selection is
// optional, bound to the empty list when the minimum is zero.
func TestDirect_AbsentRepeatMatchesStepwise(t *testing.T) {
	g := newTestGame()

	build := func(min int) (*Engine, *Args) {
		var got Args
		e := New(g)
		def := &ActionDefinition{
			Name: "pile",
			Selections: []Selection{{
				Name:     "cards",
				Kind:     KindChoice,
				Optional: true,
				Repeat:   &RepeatSpec{Min: min, Max: 2},
				Choices: func(q Query) []Candidate {
					return q.State.QueryCandidates("card", nil)
				},
			}},
			Effect: func(_ StateOracle, _ PlayerID, args Args) (any, error) {
				got = args
				return nil, nil
			},
		}
		if err := e.Register(def); err != nil {
			t.Fatalf("register: %v", err)
		}
		return e, &got
	}

	e, _ := build(1)
	var inv *InvalidValueError
	if _, err := e.ExecuteDirect("pile", "alice", nil); !errors.As(err, &inv) || inv.Why != ValueAbsent {
		t.Fatalf("direct below min: expected absent rejection, got %v", err)
	}
	h := mustBegin(e, "pile", "alice")
	if _, err := e.SubmitStep(h, "cards", nil); !errors.As(err, &inv) || inv.Why != ValueAbsent {
		t.Fatalf("stepwise below min: expected absent rejection, got %v", err)
	}

	e0, direct := build(0)
	if _, err := e0.ExecuteDirect("pile", "alice", nil); err != nil {
		t.Fatalf("direct at min zero: %v", err)
	}
	dv := (*direct)["cards"]
	h0 := mustBegin(e0, "pile", "alice")
	if res, err := e0.SubmitStep(h0, "cards", nil); err != nil || !res.Done {
		t.Fatalf("stepwise at min zero: err=%v res=%+v", err, res)
	}
	sv := (*direct)["cards"]
	if dv.Kind != ValueList || len(dv.List) != 0 || !reflect.DeepEqual(dv, sv) {
		t.Fatalf("empty repeat must bind identically: direct=%+v stepwise=%+v", dv, sv)
	}
}

func TestDirect_ValidatorRuns(t *testing.T) {
	g := newTestGame()
	e := New(g)
	def := &ActionDefinition{
		Name: "give",
		Selections: []Selection{
			{
				Name:     "recipient",
				Kind:     KindElement,
				ClassTag: "player",
				Filter: func(q Query, c Candidate) bool {
					return PlayerID(c.ID) != q.Player
				},
			},
			{
				Name: "amount",
				Kind: KindNumber,
				Min:  1,
				Max:  25,
			},
		},
		Validator: func(_ StateOracle, p PlayerID, args Args) string {
			if int(args["amount"].Num) > g.gold[p] {
				return "amount exceeds gold"
			}
			return ""
		},
		Effect: func(_ StateOracle, p PlayerID, args Args) (any, error) {
			n := int(args["amount"].Num)
			g.gold[p] -= n
			g.gold[PlayerID(args["recipient"].Item.ID)] += n
			return n, nil
		},
	}
	if err := e.Register(def); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, err := e.ExecuteDirect("give", "alice", map[string]any{"recipient": "bob", "amount": 25})
	var vr *ValidatorRejectedError
	if !errors.As(err, &vr) || vr.Message != "amount exceeds gold" {
		t.Fatalf("expected validator rejection, got %v", err)
	}
	if g.gold["alice"] != 20 || g.gold["bob"] != 5 {
		t.Fatalf("rejected call must not mutate gold")
	}

	res, err := e.ExecuteDirect("give", "alice", map[string]any{"recipient": "bob", "amount": 5})
	if err != nil || res.Result != 5 {
		t.Fatalf("give: err=%v res=%+v", err, res)
	}
	if g.gold["alice"] != 15 || g.gold["bob"] != 10 {
		t.Fatalf("gold after give: alice=%d bob=%d", g.gold["alice"], g.gold["bob"])
	}

	// Self-gift is filtered out entirely, so it is not a candidate.
	_, err = e.ExecuteDirect("give", "alice", map[string]any{"recipient": "alice", "amount": 1})
	var inv *InvalidValueError
	if !errors.As(err, &inv) || inv.Why != NotACandidate {
		t.Fatalf("expected not-a-candidate for self, got %v", err)
	}
}

func TestDirect_Elements(t *testing.T) {
	g := newTestGame()
	e := New(g)
	var got []string
	def := &ActionDefinition{
		Name: "discard",
		Selections: []Selection{{
			Name:     "cards",
			Kind:     KindElements,
			ClassTag: "card",
			Min:      1,
			Max:      2,
			Filter:   func(_ Query, c Candidate) bool { return c.ID != "done" },
		}},
		Effect: func(_ StateOracle, _ PlayerID, args Args) (any, error) {
			got = args["cards"].IDs()
			return len(got), nil
		},
	}
	if err := e.Register(def); err != nil {
		t.Fatalf("register: %v", err)
	}

	res, err := e.ExecuteDirect("discard", "alice", map[string]any{"cards": []string{"A", "C"}})
	if err != nil || res.Result != 2 {
		t.Fatalf("discard: err=%v res=%+v", err, res)
	}
	if !reflect.DeepEqual(got, []string{"A", "C"}) {
		t.Fatalf("effect ids: %v", got)
	}

	if _, err := e.ExecuteDirect("discard", "alice", map[string]any{"cards": []string{"A", "A"}}); err == nil {
		t.Fatalf("duplicates must be rejected")
	}
	if _, err := e.ExecuteDirect("discard", "alice", map[string]any{"cards": []string{"A", "B", "C"}}); err == nil {
		t.Fatalf("above max must be rejected")
	}
	if _, err := e.ExecuteDirect("discard", "alice", map[string]any{"cards": []string{"done"}}); err == nil {
		t.Fatalf("filtered-out member must be rejected")
	}
}

func TestDirect_UnknownAction(t *testing.T) {
	g := newTestGame()
	e := New(g)
	var unk *UnknownActionError
	if _, err := e.ExecuteDirect("nope", "alice", nil); !errors.As(err, &unk) {
		t.Fatalf("expected unknown action, got %v", err)
	}
}
