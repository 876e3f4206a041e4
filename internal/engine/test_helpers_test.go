package engine

import "fmt"

// testGame is the in-memory game-state oracle the engine tests run against:
// a shop with limited stock, a card pile with a "done" terminator, and two
// players with gold.
type testGame struct {
	gold    map[PlayerID]int
	stock   map[string]int
	itemSeq []string
	cards   []string
	players []PlayerID
	aliases map[string]Candidate
}

func newTestGame() *testGame {
	return &testGame{
		gold:    map[PlayerID]int{"alice": 20, "bob": 5},
		stock:   map[string]int{"sword": 2, "shield": 0, "bow": 1},
		itemSeq: []string{"sword", "shield", "bow"},
		cards:   []string{"A", "B", "C", "done"},
		players: []PlayerID{"alice", "bob"},
		aliases: map[string]Candidate{},
	}
}

func (g *testGame) ResolveIdentifier(id string) (Candidate, bool) {
	if c, ok := g.aliases[id]; ok {
		return c, true
	}
	if _, ok := g.stock[id]; ok {
		return Candidate{ID: id}, true
	}
	for _, c := range g.cards {
		if c == id {
			return Candidate{ID: c}, true
		}
	}
	for _, p := range g.players {
		if string(p) == id {
			return Candidate{ID: id}, true
		}
	}
	return Candidate{}, false
}

func (g *testGame) QueryCandidates(classTag string, match func(Candidate) bool) []Candidate {
	var out []Candidate
	switch classTag {
	case "item":
		for _, id := range g.itemSeq {
			out = append(out, Candidate{ID: id})
		}
	case "card":
		for _, c := range g.cards {
			out = append(out, Candidate{ID: c})
		}
	case "player":
		for _, p := range g.players {
			out = append(out, Candidate{ID: string(p)})
		}
	}
	if match == nil {
		return out
	}
	kept := out[:0]
	for _, c := range out {
		if match(c) {
			kept = append(kept, c)
		}
	}
	return kept
}

func (g *testGame) CurrentPlayer() PlayerID { return g.players[0] }

func (g *testGame) ReadAttribute(c Candidate, key string) (any, bool) {
	switch key {
	case "stock":
		if n, ok := g.stock[c.ID]; ok {
			return n, true
		}
	case "gold":
		if n, ok := g.gold[PlayerID(c.ID)]; ok {
			return n, true
		}
	}
	return nil, false
}

// purchaseDef mirrors the shop action: one required choice over the items,
// out-of-stock items disabled with "sold out". Purchases land in *bought.
func purchaseDef(g *testGame, bought *[]string) *ActionDefinition {
	return &ActionDefinition{
		Name: "purchase",
		Conditions: []Condition{{
			Label: "can-afford",
			Check: func(_ StateOracle, p PlayerID) (bool, string) {
				if g.gold[p] < 10 {
					return false, fmt.Sprintf("gold=%d<10", g.gold[p])
				}
				return true, fmt.Sprintf("gold=%d", g.gold[p])
			},
		}},
		Selections: []Selection{{
			Name: "item",
			Kind: KindChoice,
			Choices: func(q Query) []Candidate {
				return q.State.QueryCandidates("item", nil)
			},
			Disabled: func(q Query, c Candidate) string {
				if stock, ok := q.State.ReadAttribute(c, "stock"); ok && stock.(int) <= 0 {
					return "sold out"
				}
				return ""
			},
			OnSelect: func(v Value, sc *SignalContext) {
				sc.Emit("picked", map[string]string{"item": v.Item.ID})
			},
		}},
		Effect: func(_ StateOracle, p PlayerID, args Args) (any, error) {
			id := args["item"].Item.ID
			g.gold[p] -= 10
			g.stock[id]--
			*bought = append(*bought, id)
			return "bought " + id, nil
		},
	}
}

// cardsDef is the repeating pile: one to three cards, closed by "done".
// selectLog records each OnSelect firing; cancelLog each OnCancel.
func cardsDef(g *testGame, selectLog, cancelLog, drawn *[]string) *ActionDefinition {
	return &ActionDefinition{
		Name: "cards",
		Selections: []Selection{{
			Name: "cards",
			Kind: KindChoice,
			Repeat: &RepeatSpec{
				Min:   1,
				Max:   3,
				Until: func(c Candidate) bool { return c.ID == "done" },
			},
			Choices: func(q Query) []Candidate {
				return q.State.QueryCandidates("card", nil)
			},
			OnSelect: func(v Value, sc *SignalContext) {
				*selectLog = append(*selectLog, v.Item.ID)
				sc.Emit("first-card", map[string]string{"card": v.Item.ID})
			},
			OnCancel: func(sc *SignalContext) {
				*cancelLog = append(*cancelLog, "cards")
			},
		}},
		Effect: func(_ StateOracle, _ PlayerID, args Args) (any, error) {
			*drawn = append(*drawn, args["cards"].IDs()...)
			return len(args["cards"].List), nil
		},
	}
}

func newShopEngine(g *testGame, bought *[]string) *Engine {
	e := New(g)
	if err := e.Register(purchaseDef(g, bought)); err != nil {
		panic(err)
	}
	return e
}

func mustBegin(e *Engine, action string, p PlayerID) string {
	h, err := e.BeginPendingAction(action, p)
	if err != nil {
		panic(err)
	}
	return h
}
