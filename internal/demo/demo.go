// Package demo is a small shop game wired through the resolution engine: a
// handful of players with gold, a shop with limited stock, and three actions
// exercising choices, repeats, elements, numbers and free text. The gateway
// and bot run against it; it is not part of the engine core.
package demo

import (
	"fmt"
	"strconv"

	"tablecraft.gg/internal/engine"
)

type Item struct {
	ID    string
	Name  string
	Price int
	Stock int
}

type Player struct {
	ID   engine.PlayerID
	Gold int
	Hand []string
}

// Game implements engine.StateOracle and owns all mutable demo state.
// Effects mutate it directly; the engine only ever reads through the oracle
// interface.
type Game struct {
	players   map[engine.PlayerID]*Player
	playerSeq []engine.PlayerID
	items     map[string]*Item
	itemSeq   []string
	cards     []string
	turn      int
}

func NewGame() *Game {
	g := &Game{
		players: make(map[engine.PlayerID]*Player),
		items:   make(map[string]*Item),
		cards:   []string{"A", "B", "C", "done"},
	}
	for _, p := range []*Player{
		{ID: "alice", Gold: 20},
		{ID: "bob", Gold: 5},
	} {
		g.players[p.ID] = p
		g.playerSeq = append(g.playerSeq, p.ID)
	}
	for _, it := range []*Item{
		{ID: "sword", Name: "Sword", Price: 10, Stock: 2},
		{ID: "shield", Name: "Shield", Price: 10, Stock: 0},
		{ID: "bow", Name: "Bow", Price: 10, Stock: 1},
	} {
		g.items[it.ID] = it
		g.itemSeq = append(g.itemSeq, it.ID)
	}
	return g
}

func (g *Game) Player(id engine.PlayerID) *Player { return g.players[id] }
func (g *Game) Item(id string) *Item              { return g.items[id] }

// ResolveIdentifier resolves players, shop items (by id or display name)
// and cards.
func (g *Game) ResolveIdentifier(id string) (engine.Candidate, bool) {
	if it, ok := g.items[id]; ok {
		return engine.Candidate{ID: it.ID, Label: it.Name}, true
	}
	for _, itemID := range g.itemSeq {
		if it := g.items[itemID]; it.Name == id {
			return engine.Candidate{ID: it.ID, Label: it.Name}, true
		}
	}
	if p, ok := g.players[engine.PlayerID(id)]; ok {
		return engine.Candidate{ID: string(p.ID)}, true
	}
	for _, c := range g.cards {
		if c == id {
			return engine.Candidate{ID: c}, true
		}
	}
	return engine.Candidate{}, false
}

func (g *Game) QueryCandidates(classTag string, match func(engine.Candidate) bool) []engine.Candidate {
	var out []engine.Candidate
	switch classTag {
	case "item":
		for _, id := range g.itemSeq {
			out = append(out, engine.Candidate{ID: id, Label: g.items[id].Name})
		}
	case "player":
		for _, id := range g.playerSeq {
			out = append(out, engine.Candidate{ID: string(id)})
		}
	case "card":
		for _, c := range g.cards {
			out = append(out, engine.Candidate{ID: c})
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

func (g *Game) CurrentPlayer() engine.PlayerID {
	return g.playerSeq[g.turn%len(g.playerSeq)]
}

func (g *Game) ReadAttribute(c engine.Candidate, key string) (any, bool) {
	if it, ok := g.items[c.ID]; ok {
		switch key {
		case "price":
			return it.Price, true
		case "stock":
			return it.Stock, true
		}
	}
	if p, ok := g.players[engine.PlayerID(c.ID)]; ok && key == "gold" {
		return p.Gold, true
	}
	return nil, false
}

// knownPlayer gates an action on the acting player existing at all. Session
// names arrive over the wire, so effects and hooks must never see one the
// game does not know.
func (g *Game) knownPlayer() engine.Condition {
	return engine.Condition{
		Label: "known-player",
		Check: func(_ engine.StateOracle, p engine.PlayerID) (bool, string) {
			if g.players[p] == nil {
				return false, "unknown player"
			}
			return true, fmt.Sprintf("player=%s", p)
		},
	}
}

// Register wires the demo actions into an engine.
func (g *Game) Register(e *engine.Engine) error {
	for _, def := range []*engine.ActionDefinition{
		g.purchaseAction(),
		g.cardsAction(),
		g.giveAction(),
	} {
		if err := e.Register(def); err != nil {
			return err
		}
	}
	return nil
}

// purchaseAction: one required choice over shop items; out-of-stock items
// stay visible but disabled.
func (g *Game) purchaseAction() *engine.ActionDefinition {
	return &engine.ActionDefinition{
		Name: "purchase",
		Conditions: []engine.Condition{{
			Label: "can-afford",
			Check: func(_ engine.StateOracle, p engine.PlayerID) (bool, string) {
				pl := g.players[p]
				if pl == nil {
					return false, "unknown player"
				}
				if pl.Gold < 10 {
					return false, fmt.Sprintf("gold=%d<10", pl.Gold)
				}
				return true, fmt.Sprintf("gold=%d", pl.Gold)
			},
		}},
		Selections: []engine.Selection{{
			Name: "item",
			Kind: engine.KindChoice,
			Choices: func(q engine.Query) []engine.Candidate {
				return q.State.QueryCandidates("item", nil)
			},
			Disabled: func(q engine.Query, c engine.Candidate) string {
				if stock, ok := q.State.ReadAttribute(c, "stock"); ok && stock.(int) <= 0 {
					return "sold out"
				}
				return ""
			},
			OnSelect: func(v engine.Value, sc *engine.SignalContext) {
				sc.Emit("picked", map[string]string{"item": v.Item.ID})
			},
		}},
		Effect: func(_ engine.StateOracle, p engine.PlayerID, args engine.Args) (any, error) {
			it := g.items[args["item"].Item.ID]
			buyer := g.players[p]
			if buyer.Gold < it.Price {
				return nil, fmt.Errorf("cannot pay %d", it.Price)
			}
			buyer.Gold -= it.Price
			it.Stock--
			buyer.Hand = append(buyer.Hand, it.ID)
			return fmt.Sprintf("bought %s", it.ID), nil
		},
		Undoable: true,
	}
}

// cardsAction: repeating choice, one to three cards, closed by "done".
func (g *Game) cardsAction() *engine.ActionDefinition {
	return &engine.ActionDefinition{
		Name:       "cards",
		Conditions: []engine.Condition{g.knownPlayer()},
		Selections: []engine.Selection{{
			Name: "cards",
			Kind: engine.KindChoice,
			Repeat: &engine.RepeatSpec{
				Min:   1,
				Max:   3,
				Until: func(c engine.Candidate) bool { return c.ID == "done" },
			},
			Choices: func(q engine.Query) []engine.Candidate {
				return q.State.QueryCandidates("card", nil)
			},
			OnSelect: func(v engine.Value, sc *engine.SignalContext) {
				sc.Emit("first-card", map[string]string{"card": v.Item.ID})
			},
			OnCancel: func(sc *engine.SignalContext) {
				sc.Emit("cards-abandoned", nil)
			},
		}},
		Effect: func(_ engine.StateOracle, p engine.PlayerID, args engine.Args) (any, error) {
			picked := args["cards"].IDs()
			g.players[p].Hand = append(g.players[p].Hand, picked...)
			return fmt.Sprintf("drew %d cards", len(picked)), nil
		},
	}
}

// giveAction: element + number + optional text, with a cross-field
// validator. The amount is disabled past the giver's gold so the candidate
// stays visible with its reason.
func (g *Game) giveAction() *engine.ActionDefinition {
	return &engine.ActionDefinition{
		Name: "give",
		Conditions: []engine.Condition{{
			Label: "has-gold",
			Check: func(_ engine.StateOracle, p engine.PlayerID) (bool, string) {
				pl := g.players[p]
				if pl == nil {
					return false, "unknown player"
				}
				if pl.Gold < 1 {
					return false, "no gold to give"
				}
				return true, fmt.Sprintf("gold=%d", pl.Gold)
			},
		}},
		Selections: []engine.Selection{
			{
				Name:     "recipient",
				Kind:     engine.KindElement,
				ClassTag: "player",
				Filter: func(q engine.Query, c engine.Candidate) bool {
					return c.ID != string(q.Player)
				},
			},
			{
				Name: "amount",
				Kind: engine.KindNumber,
				Min:  1,
				Max:  5,
				Disabled: func(q engine.Query, c engine.Candidate) string {
					n, _ := strconv.Atoi(c.ID)
					if n > g.players[q.Player].Gold {
						return "not enough gold"
					}
					return ""
				},
			},
			{
				Name:     "note",
				Kind:     engine.KindText,
				Optional: true,
				Validate: func(_ engine.Query, text string) string {
					if len(text) > 40 {
						return "note is too long"
					}
					return ""
				},
			},
		},
		Validator: func(_ engine.StateOracle, p engine.PlayerID, args engine.Args) string {
			if args["amount"].Num > g.players[p].Gold {
				return "amount exceeds gold"
			}
			return ""
		},
		Effect: func(_ engine.StateOracle, p engine.PlayerID, args engine.Args) (any, error) {
			to := g.players[engine.PlayerID(args["recipient"].Item.ID)]
			if to == nil {
				return nil, fmt.Errorf("recipient vanished")
			}
			g.players[p].Gold -= args["amount"].Num
			to.Gold += args["amount"].Num
			return fmt.Sprintf("gave %d to %s", args["amount"].Num, to.ID), nil
		},
	}
}
