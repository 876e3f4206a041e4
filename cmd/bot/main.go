package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/websocket"

	"tablecraft.gg/internal/protocol"
)

// A decision agent driving the direct-execution path: it enumerates legal
// moves, samples one uniformly, and submits it as a single-shot call. It
// caps its own sample size; the server enumerates exhaustively.
func main() {
	var (
		url     = flag.String("url", "ws://localhost:8080/v1/ws", "ws url")
		name    = flag.String("name", "alice", "player name")
		sample  = flag.Int("sample", 64, "max moves considered per turn")
		thinkMs = flag.Int("think_ms", 1000, "delay between moves")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[bot] ", log.LstdFlags|log.Lmicroseconds)
	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		logger.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	hello := protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		PlayerName:      *name,
	}
	if err := conn.WriteJSON(hello); err != nil {
		logger.Fatalf("send HELLO: %v", err)
	}

	var welcome protocol.WelcomeMsg
	if err := conn.ReadJSON(&welcome); err != nil {
		logger.Fatalf("read WELCOME: %v", err)
	}
	logger.Printf("WELCOME session=%s actions=%v", welcome.SessionID, welcome.Actions)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	seq := 0
	for {
		select {
		case <-stop:
			return
		case <-time.After(time.Duration(*thinkMs) * time.Millisecond):
		}

		seq++
		moves, ok := requestMoves(conn, logger, fmt.Sprintf("Q%d", seq))
		if !ok {
			return
		}
		if len(moves) == 0 {
			logger.Printf("no legal moves")
			continue
		}
		if len(moves) > *sample {
			moves = moves[:*sample]
		}
		move := moves[rng.Intn(len(moves))]

		seq++
		args := make(map[string]any, len(move.Args))
		for sel, ids := range move.Args {
			if len(ids) == 1 {
				args[sel] = ids[0]
			} else {
				args[sel] = ids
			}
		}
		req := protocol.DirectReq{
			Type:   protocol.TypeDirect,
			ID:     fmt.Sprintf("D%d", seq),
			Action: move.Action,
			Args:   args,
		}
		if err := conn.WriteJSON(req); err != nil {
			logger.Fatalf("send DIRECT: %v", err)
		}
		res, ok := readResult(conn, logger, req.ID)
		if !ok {
			return
		}
		if res.OK {
			logger.Printf("played %s args=%v result=%v", move.Action, move.Args, res.Result)
		} else {
			logger.Printf("rejected %s code=%s message=%q", move.Action, res.Code, res.Message)
		}
	}
}

func requestMoves(conn *websocket.Conn, logger *log.Logger, id string) ([]protocol.Move, bool) {
	req := protocol.MovesReq{Type: protocol.TypeMoves, ID: id}
	if err := conn.WriteJSON(req); err != nil {
		logger.Printf("send MOVES: %v", err)
		return nil, false
	}
	res, ok := readResult(conn, logger, id)
	if !ok {
		return nil, false
	}
	if !res.OK {
		logger.Printf("MOVES rejected code=%s", res.Code)
		return nil, true
	}
	if res.Truncated {
		logger.Printf("server capped enumeration at %d moves", len(res.Moves))
	}
	return res.Moves, true
}

// readResult skips interleaved SIGNAL frames until the matching RESULT.
func readResult(conn *websocket.Conn, logger *log.Logger, ref string) (protocol.ResultMsg, bool) {
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			logger.Printf("read: %v", err)
			return protocol.ResultMsg{}, false
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil || base.Type != protocol.TypeResult {
			continue
		}
		var res protocol.ResultMsg
		if err := json.Unmarshal(msg, &res); err != nil {
			continue
		}
		if res.Ref != ref {
			continue
		}
		return res, true
	}
}
