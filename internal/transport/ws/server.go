// Package ws is the reference session gateway: it exposes the resolution
// engine's availability, pending-step, direct-call and enumeration surface
// over a websocket, one JSON request per reply. Engine calls are serialized
// under one lock so every call sees a single consistent snapshot.
package ws

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"tablecraft.gg/internal/engine"
	"tablecraft.gg/internal/persistence/pendingstore"
	"tablecraft.gg/internal/protocol"
)

type Server struct {
	eng   *engine.Engine
	store *pendingstore.Store
	log   *log.Logger

	mu       sync.Mutex
	signals  []engine.Signal
	movesMax int
	playerOK func(name string) bool

	upgrader websocket.Upgrader
}

func NewServer(store *pendingstore.Store, logger *log.Logger, movesMax int) *Server {
	return &Server{
		store:    store,
		log:      logger,
		movesMax: movesMax,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

// Bind attaches the engine. Observe must be the engine's signal sink so
// cancel-time emissions are captured too.
func (s *Server) Bind(eng *engine.Engine) { s.eng = eng }

// RequirePlayer gates the handshake on the player name existing in the
// game. Names arrive over the wire; without a gate an unknown one would
// reach every author closure behind the engine.
func (s *Server) RequirePlayer(fn func(name string) bool) { s.playerOK = fn }

// Observe collects hook signals emitted during the engine call in flight.
// Safe only because every engine call runs under s.mu.
func (s *Server) Observe(sig engine.Signal) {
	s.signals = append(s.signals, sig)
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		player, ok := s.handshake(conn)
		if !ok {
			return
		}
		s.log.Printf("session open player=%s", player)

		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				break
			}
			base, err := protocol.DecodeBase(msg)
			if err != nil {
				continue
			}
			res := s.handle(player, base.Type, msg)
			if res == nil {
				continue
			}
			if err := writeJSON(conn, res); err != nil {
				break
			}
		}
		s.log.Printf("session closed player=%s", player)
	}
}

func (s *Server) handshake(conn *websocket.Conn) (engine.PlayerID, bool) {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return "", false
	}
	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected HELLO"),
			time.Now().Add(time.Second))
		return "", false
	}
	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return "", false
	}
	if hello.ProtocolVersion != protocol.Version {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad protocol_version"),
			time.Now().Add(time.Second))
		return "", false
	}
	if hello.PlayerName == "" {
		hello.PlayerName = "player"
	}
	if s.playerOK != nil && !s.playerOK(hello.PlayerName) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "unknown player"),
			time.Now().Add(time.Second))
		return "", false
	}
	welcome := protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		SessionID:       uuid.NewString(),
		Player:          hello.PlayerName,
		Actions:         s.eng.ActionNames(),
	}
	if err := writeJSON(conn, welcome); err != nil {
		return "", false
	}
	return engine.PlayerID(hello.PlayerName), true
}

// handle runs one request against the engine under the session lock.
func (s *Server) handle(player engine.PlayerID, msgType string, msg []byte) *protocol.ResultMsg {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signals = nil

	switch msgType {
	case protocol.TypeAvailability:
		var req protocol.AvailabilityReq
		if err := json.Unmarshal(msg, &req); err != nil {
			return badRequest("")
		}
		return s.availability(player, req)
	case protocol.TypeBegin:
		var req protocol.BeginReq
		if err := json.Unmarshal(msg, &req); err != nil {
			return badRequest("")
		}
		return s.begin(player, req)
	case protocol.TypeStep:
		var req protocol.StepReq
		if err := json.Unmarshal(msg, &req); err != nil {
			return badRequest("")
		}
		return s.step(req)
	case protocol.TypeCancel:
		var req protocol.CancelReq
		if err := json.Unmarshal(msg, &req); err != nil {
			return badRequest("")
		}
		s.eng.CancelPendingAction(req.Handle)
		if err := s.store.Delete(req.Handle); err != nil {
			s.log.Printf("store delete %s: %v", req.Handle, err)
		}
		return &protocol.ResultMsg{Type: protocol.TypeResult, Ref: req.ID, OK: true, Signals: wireSignals(s.signals)}
	case protocol.TypeResume:
		var req protocol.ResumeReq
		if err := json.Unmarshal(msg, &req); err != nil {
			return badRequest("")
		}
		return s.resume(req)
	case protocol.TypeDirect:
		var req protocol.DirectReq
		if err := json.Unmarshal(msg, &req); err != nil {
			return badRequest("")
		}
		return s.direct(player, req)
	case protocol.TypeMoves:
		var req protocol.MovesReq
		if err := json.Unmarshal(msg, &req); err != nil {
			return badRequest("")
		}
		return s.moves(player, req)
	}
	return nil
}

func (s *Server) availability(player engine.PlayerID, req protocol.AvailabilityReq) *protocol.ResultMsg {
	av, err := s.eng.IsActionAvailable(req.Action, player)
	if err != nil {
		return failure(req.ID, err)
	}
	res := &protocol.ResultMsg{Type: protocol.TypeResult, Ref: req.ID, OK: true, Available: &av.Available}
	for _, d := range av.Diagnostics {
		res.Diagnostics = append(res.Diagnostics, protocol.Diagnostic{Label: d.Label, Passed: d.Passed, Detail: d.Detail})
	}
	return res
}

func (s *Server) begin(player engine.PlayerID, req protocol.BeginReq) *protocol.ResultMsg {
	if err := s.eng.CheckAvailable(req.Action, player); err != nil {
		return failure(req.ID, err)
	}
	handle, err := s.eng.BeginPendingAction(req.Action, player)
	if err != nil {
		return failure(req.ID, err)
	}
	s.persist(handle)
	step, err := s.eng.PendingStep(handle)
	if err != nil {
		return failure(req.ID, err)
	}
	return &protocol.ResultMsg{
		Type: protocol.TypeResult, Ref: req.ID, OK: true,
		Handle: handle, Step: wireStep(step),
	}
}

func (s *Server) step(req protocol.StepReq) *protocol.ResultMsg {
	out, err := s.eng.SubmitStep(req.Handle, req.Selection, req.Value)
	if err != nil {
		return failure(req.ID, err)
	}
	res := &protocol.ResultMsg{
		Type: protocol.TypeResult, Ref: req.ID, OK: true,
		Handle: req.Handle, Done: out.Done, Result: out.Result,
		Signals: wireSignals(out.Signals),
	}
	if out.Done {
		if err := s.store.Delete(req.Handle); err != nil {
			s.log.Printf("store delete %s: %v", req.Handle, err)
		}
		return res
	}
	s.persist(req.Handle)
	step, err := s.eng.PendingStep(req.Handle)
	if err == nil {
		res.Step = wireStep(step)
	}
	return res
}

func (s *Server) resume(req protocol.ResumeReq) *protocol.ResultMsg {
	rec, found, err := s.store.Load(req.Handle)
	if err != nil {
		return failure(req.ID, err)
	}
	if !found {
		return failure(req.ID, &engine.NoPendingError{Handle: req.Handle})
	}
	if err := s.eng.Restore(rec); err != nil {
		return failure(req.ID, err)
	}
	step, err := s.eng.PendingStep(req.Handle)
	if err != nil {
		return failure(req.ID, err)
	}
	return &protocol.ResultMsg{
		Type: protocol.TypeResult, Ref: req.ID, OK: true,
		Handle: req.Handle, Step: wireStep(step),
	}
}

func (s *Server) direct(player engine.PlayerID, req protocol.DirectReq) *protocol.ResultMsg {
	out, err := s.eng.ExecuteDirect(req.Action, player, req.Args)
	if err != nil {
		return failure(req.ID, err)
	}
	return &protocol.ResultMsg{
		Type: protocol.TypeResult, Ref: req.ID, OK: true, Done: true,
		Result: out.Result, Signals: wireSignals(out.Signals),
	}
}

func (s *Server) moves(player engine.PlayerID, req protocol.MovesReq) *protocol.ResultMsg {
	all := s.eng.EnumerateLegalMoves(player)
	res := &protocol.ResultMsg{Type: protocol.TypeResult, Ref: req.ID, OK: true}
	// Session-side cap; the enumerator itself never truncates.
	if s.movesMax > 0 && len(all) > s.movesMax {
		all = all[:s.movesMax]
		res.Truncated = true
	}
	for _, m := range all {
		wm := protocol.Move{Action: m.Action, Args: make(map[string][]string, len(m.Args))}
		for name, v := range m.Args {
			wm.Args[name] = v.IDs()
		}
		res.Moves = append(res.Moves, wm)
	}
	return res
}

func (s *Server) persist(handle string) {
	rec, err := s.eng.Snapshot(handle)
	if err != nil {
		return
	}
	if err := s.store.Save(rec); err != nil {
		s.log.Printf("store save %s: %v", handle, err)
	}
}

func badRequest(ref string) *protocol.ResultMsg {
	return &protocol.ResultMsg{
		Type: protocol.TypeResult, Ref: ref, OK: false,
		Code: protocol.ErrProtoBadRequest, Message: "malformed request",
	}
}

func failure(ref string, err error) *protocol.ResultMsg {
	return &protocol.ResultMsg{
		Type: protocol.TypeResult, Ref: ref, OK: false,
		Code: CodeFor(err), Message: err.Error(),
	}
}

// CodeFor maps an engine error to its stable wire code.
func CodeFor(err error) string {
	var (
		cond  *engine.ConditionFailedError
		unsat *engine.SelectionUnsatisfiableError
		inv   *engine.InvalidValueError
		seq   *engine.OutOfSequenceError
		val   *engine.ValidatorRejectedError
		eff   *engine.EffectError
		unk   *engine.UnknownActionError
		nop   *engine.NoPendingError
	)
	switch {
	case errors.As(err, &cond):
		return protocol.ErrConditionFailed
	case errors.As(err, &unsat):
		if unsat.Why == engine.ZeroCandidates {
			return protocol.ErrNoCandidates
		}
		return protocol.ErrAllDisabled
	case errors.As(err, &inv):
		switch inv.Why {
		case engine.ValueAbsent:
			return protocol.ErrValueAbsent
		case engine.ValueDisabled:
			return protocol.ErrDisabled
		default:
			return protocol.ErrNotACandidate
		}
	case errors.As(err, &seq):
		return protocol.ErrOutOfSequence
	case errors.As(err, &val):
		return protocol.ErrValidator
	case errors.As(err, &eff):
		return protocol.ErrEffect
	case errors.As(err, &unk):
		return protocol.ErrUnknownAction
	case errors.As(err, &nop):
		return protocol.ErrNoPending
	default:
		return protocol.ErrInternal
	}
}

func wireStep(step engine.CurrentStep) *protocol.Step {
	out := &protocol.Step{
		Action:    step.Action,
		Selection: step.Selection,
		Kind:      step.Kind,
		Optional:  step.Optional,
		Repeating: step.Repeating,
		Accepted:  step.Accepted,
	}
	for _, c := range step.Choices {
		out.Choices = append(out.Choices, protocol.Choice{
			ID: c.Candidate.ID, Label: c.Candidate.Label, Reason: c.Reason,
		})
	}
	return out
}

func wireSignals(signals []engine.Signal) []protocol.SignalMsg {
	var out []protocol.SignalMsg
	for _, sig := range signals {
		out = append(out, protocol.SignalMsg{Type: protocol.TypeSignal, Tag: sig.Tag, Payload: sig.Payload})
	}
	return out
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}
