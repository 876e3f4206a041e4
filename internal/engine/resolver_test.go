package engine

import (
	"encoding/json"
	"errors"
	"testing"
)

// An identifier the oracle resolves to a candidate whose canonical ID names
// one of the choices is accepted even though the raw string matches nothing
// directly.
func TestResolver_SmartMatchThroughOracle(t *testing.T) {
	g := newTestGame()
	g.aliases["blade"] = Candidate{ID: "sword", Label: "Sword"}
	var bought []string
	e := newShopEngine(g, &bought)

	res, err := e.ExecuteDirect("purchase", "alice", map[string]any{"item": "blade"})
	if err != nil {
		t.Fatalf("alias: %v", err)
	}
	if res.Args["item"].Item.ID != "sword" {
		t.Fatalf("alias must resolve to the canonical choice, got %+v", res.Args["item"])
	}
}

func TestResolver_SmartMatchByLabel(t *testing.T) {
	g := newTestGame()
	g.aliases["the-bow"] = Candidate{ID: "some-entity", Label: "bow"}
	var bought []string
	e := newShopEngine(g, &bought)

	res, err := e.ExecuteDirect("purchase", "alice", map[string]any{"item": "the-bow"})
	if err != nil {
		t.Fatalf("label match: %v", err)
	}
	if res.Args["item"].Item.ID != "bow" {
		t.Fatalf("expected bow, got %+v", res.Args["item"])
	}
}

func TestResolver_UnknownElement(t *testing.T) {
	g := newTestGame()
	e := New(g)
	def := &ActionDefinition{
		Name: "target",
		Selections: []Selection{{
			Name:     "who",
			Kind:     KindElement,
			ClassTag: "player",
		}},
		Effect: func(StateOracle, PlayerID, Args) (any, error) { return nil, nil },
	}
	if err := e.Register(def); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, err := e.ExecuteDirect("target", "alice", map[string]any{"who": "mallory"})
	var inv *InvalidValueError
	if !errors.As(err, &inv) || inv.Why != NotACandidate {
		t.Fatalf("expected not-a-candidate, got %v", err)
	}
}

// An identifier the oracle resolves but which is not of the selection's
// class is rejected by the membership check, not the resolver.
func TestResolver_ElementOutsideClass(t *testing.T) {
	g := newTestGame()
	e := New(g)
	def := &ActionDefinition{
		Name: "target",
		Selections: []Selection{{
			Name:     "who",
			Kind:     KindElement,
			ClassTag: "player",
		}},
		Effect: func(StateOracle, PlayerID, Args) (any, error) { return nil, nil },
	}
	if err := e.Register(def); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, err := e.ExecuteDirect("target", "alice", map[string]any{"who": "sword"})
	var inv *InvalidValueError
	if !errors.As(err, &inv) || inv.Why != NotACandidate {
		t.Fatalf("expected not-a-candidate for out-of-class element, got %v", err)
	}
}

func TestResolver_NumberForms(t *testing.T) {
	cases := []struct {
		raw  any
		want int
		ok   bool
	}{
		{3, 3, true},
		{int64(4), 4, true},
		{float64(5), 5, true},
		{float64(5.5), 0, false},
		{json.Number("6"), 6, true},
		{json.Number("6.5"), 0, false},
		{"7", 7, true},
		{" 8 ", 8, true},
		{"eight", 0, false},
		{true, 0, false},
		{nil, 0, false},
	}
	for _, tc := range cases {
		got, ok := rawNumber(tc.raw)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("rawNumber(%v): got (%d,%v), want (%d,%v)", tc.raw, got, ok, tc.want, tc.ok)
		}
	}
}

func TestResolver_NumberBounds(t *testing.T) {
	g := newTestGame()
	e := New(g)
	def := &ActionDefinition{
		Name: "roll",
		Selections: []Selection{{
			Name: "n",
			Kind: KindNumber,
			Min:  1,
			Max:  6,
		}},
		Effect: func(_ StateOracle, _ PlayerID, args Args) (any, error) {
			return args["n"].Num, nil
		},
	}
	if err := e.Register(def); err != nil {
		t.Fatalf("register: %v", err)
	}

	res, err := e.ExecuteDirect("roll", "alice", map[string]any{"n": "6"})
	if err != nil || res.Result != 6 {
		t.Fatalf("string number: err=%v res=%+v", err, res)
	}
	var inv *InvalidValueError
	if _, err := e.ExecuteDirect("roll", "alice", map[string]any{"n": 7}); !errors.As(err, &inv) {
		t.Fatalf("out of range must be rejected, got %v", err)
	}
}

func TestResolver_SingleValueAsList(t *testing.T) {
	g := newTestGame()
	e := New(g)
	def := &ActionDefinition{
		Name: "discard",
		Selections: []Selection{{
			Name:     "cards",
			Kind:     KindElements,
			ClassTag: "card",
			Min:      1,
			Max:      2,
		}},
		Effect: func(_ StateOracle, _ PlayerID, args Args) (any, error) {
			return args["cards"].IDs(), nil
		},
	}
	if err := e.Register(def); err != nil {
		t.Fatalf("register: %v", err)
	}
	res, err := e.ExecuteDirect("discard", "alice", map[string]any{"cards": "A"})
	if err != nil {
		t.Fatalf("bare value: %v", err)
	}
	ids := res.Result.([]string)
	if len(ids) != 1 || ids[0] != "A" {
		t.Fatalf("bare value must behave as a one-item list, got %v", ids)
	}
}

func TestResolver_CandidateRaw(t *testing.T) {
	g := newTestGame()
	var bought []string
	e := newShopEngine(g, &bought)

	h := mustBegin(e, "purchase", "alice")
	res, err := e.SubmitStep(h, "item", Candidate{ID: "sword"})
	if err != nil || !res.Done {
		t.Fatalf("candidate raw: err=%v res=%+v", err, res)
	}
}
