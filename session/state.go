/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package session

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Seednode/tictactoe/board"
	"github.com/Seednode/tictactoe/protocol"
	"github.com/Seednode/tictactoe/storage"
)

type Phase int

const (
	AwaitingSecondPlayer Phase = iota
	AwaitingSymbolChoice
	InProgress
	Finished
)

func (p Phase) String() string {
	switch p {
	case AwaitingSecondPlayer:
		return "awaitingSecondPlayer"
	case AwaitingSymbolChoice:
		return "awaitingSymbolChoice"
	case InProgress:
		return "inProgress"
	case Finished:
		return "finished"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

type Role int

const (
	Host Role = iota
	Guest
)

func (r Role) String() string {
	if r == Guest {
		return "guest"
	}
	return "host"
}

// Peer is the send side of a participant's connection.
// Deliver is called with the session lock held and must not block.
type Peer interface {
	Deliver(msg any)
}

type participant struct {
	name   string
	peer   Peer
	symbol board.Symbol
}

// state is everything a session knows. It is treated as a value: reduce
// returns a modified copy and never touches its input.
type state struct {
	id        string
	players   [2]participant
	joined    int
	board     board.Board
	turn      board.Symbol
	outcome   board.Outcome
	phase     Phase
	abandoned bool
	idle      bool

	createdAt  time.Time
	lastActive time.Time
}

func (s state) terminal() bool {
	return s.phase == Finished || s.abandoned
}

// seat returns the index of peer in players, or -1.
func (s state) seat(p Peer) int {
	for i := 0; i < s.joined; i++ {
		if s.players[i].peer == p {
			return i
		}
	}
	return -1
}

// currentPlayer is the symbol clients should treat as "to move"; empty
// whenever no move is being accepted.
func (s state) currentPlayer() board.Symbol {
	if s.phase != InProgress || s.abandoned {
		return board.Empty
	}
	return s.turn
}

// record is the persisted form of a finished game. Only valid when phase is Finished.
func (s state) record() storage.Record {
	r := storage.Record{
		Mode:  storage.ModeOnline,
		Board: s.board,
	}

	if s.outcome.Draw {
		r.Winner = board.DrawLabel
		return r
	}

	for _, p := range s.players {
		if p.symbol == s.outcome.Winner {
			r.Winner = p.name
		} else {
			r.Loser = p.name
		}
	}

	return r
}

// endReason labels a terminal state for metrics and logs.
func (s state) endReason() string {
	switch {
	case s.idle:
		return "idle"
	case s.abandoned:
		return "abandoned"
	case s.outcome.Draw:
		return "draw"
	default:
		return "win"
	}
}

type event interface {
	isEvent()
}

type joinEvent struct {
	name string
	peer Peer
}

type chooseEvent struct {
	peer   Peer
	symbol board.Symbol
}

type moveEvent struct {
	peer  Peer
	index int
}

type leaveEvent struct {
	peer Peer
}

type expireEvent struct {
	cutoff time.Time
}

func (joinEvent) isEvent()   {}
func (chooseEvent) isEvent() {}
func (moveEvent) isEvent()   {}
func (leaveEvent) isEvent()  {}
func (expireEvent) isEvent() {}

type outbound struct {
	to  Peer
	msg any
}

// reduce applies ev to s. On error the returned state is s unchanged and
// there is nothing to send.
func reduce(s state, ev event) (state, []outbound, error) {
	switch ev := ev.(type) {
	case joinEvent:
		return reduceJoin(s, ev)
	case chooseEvent:
		return reduceChoose(s, ev)
	case moveEvent:
		return reduceMove(s, ev)
	case leaveEvent:
		return reduceLeave(s, ev)
	case expireEvent:
		return reduceExpire(s, ev)
	default:
		return s, nil, fmt.Errorf("unknown event %T", ev)
	}
}

func reduceJoin(s state, ev joinEvent) (state, []outbound, error) {
	name := strings.TrimSpace(ev.name)
	if name == "" || utf8.RuneCountInString(name) > protocol.MaxNameLength {
		return s, nil, fmt.Errorf("%w: %q", ErrInvalidName, ev.name)
	}

	if s.terminal() {
		return s, nil, errSessionRetired
	}

	switch s.joined {
	case 0:
		s.players[0] = participant{name: name, peer: ev.peer}
		s.joined = 1
		s.phase = AwaitingSecondPlayer

		return s, []outbound{
			{to: ev.peer, msg: protocol.GameCreatedMessage{Type: protocol.TypeGameCreated, GameID: s.id}},
		}, nil

	case 1:
		host := s.players[0]
		s.players[1] = participant{name: name, peer: ev.peer}
		s.joined = 2
		s.phase = AwaitingSymbolChoice

		start := protocol.GameStartMessage{
			Type: protocol.TypeGameStart,
			Game: protocol.GameStartState{
				GameID:        s.id,
				Player1:       host.name,
				Player2:       name,
				Board:         s.board,
				Winner:        s.outcome,
				CurrentPlayer: s.currentPlayer(),
			},
		}

		return s, []outbound{
			{to: host.peer, msg: protocol.PlayerJoinedMessage{Type: protocol.TypePlayerJoined, PlayerName: name}},
			{to: host.peer, msg: start},
			{to: ev.peer, msg: start},
		}, nil

	default:
		return s, nil, fmt.Errorf("%w: %s already has two players", ErrSessionFull, s.id)
	}
}

// guard rejects requests that arrive once a session can no longer accept them.
func guard(s state, p Peer) (int, error) {
	seat := s.seat(p)
	if seat < 0 {
		return -1, ErrNotParticipant
	}

	switch {
	case s.abandoned:
		return -1, ErrDisconnected
	case s.phase == Finished:
		return -1, fmt.Errorf("%w: game is over", ErrIllegalMove)
	case s.phase == AwaitingSecondPlayer:
		return -1, fmt.Errorf("%w: waiting for an opponent", ErrIllegalMove)
	}

	return seat, nil
}

func reduceChoose(s state, ev chooseEvent) (state, []outbound, error) {
	seat, err := guard(s, ev.peer)
	if err != nil {
		return s, nil, err
	}

	switch {
	case !ev.symbol.Valid():
		return s, nil, fmt.Errorf("%w: invalid symbol %q", ErrIllegalMove, ev.symbol)
	case s.phase != AwaitingSymbolChoice || s.players[seat].symbol != board.Empty:
		return s, nil, fmt.Errorf("%w: symbol already chosen", ErrSymbolConflict)
	case s.players[1-seat].symbol == ev.symbol:
		return s, nil, fmt.Errorf("%w: %s is taken by %s", ErrSymbolConflict, ev.symbol, s.players[1-seat].name)
	}

	s.players[seat].symbol = ev.symbol
	if s.players[1-seat].symbol != board.Empty {
		s.phase = InProgress
		s.turn = board.X
	}

	msg := protocol.SymbolSelectedMessage{
		Type: protocol.TypeSymbolSelected,
		Game: protocol.SymbolState{
			Player1:       protocol.PlayerSymbol{Name: s.players[0].name, Symbol: s.players[0].symbol},
			Player2:       protocol.PlayerSymbol{Name: s.players[1].name, Symbol: s.players[1].symbol},
			CurrentPlayer: s.currentPlayer(),
			Phase:         s.phase.String(),
		},
	}

	return s, broadcast(s, msg), nil
}

func reduceMove(s state, ev moveEvent) (state, []outbound, error) {
	seat, err := guard(s, ev.peer)
	if err != nil {
		return s, nil, err
	}

	if s.phase != InProgress {
		return s, nil, fmt.Errorf("%w: game has not started", ErrIllegalMove)
	}

	symbol := s.players[seat].symbol
	if symbol != s.turn {
		return s, nil, fmt.Errorf("%w: not your turn", ErrIllegalMove)
	}

	next, err := board.Apply(s.board, ev.index, symbol)
	if err != nil {
		return s, nil, err
	}

	s.board = next
	s.turn = symbol.Opponent()
	if outcome := board.DetectOutcome(next); outcome.Decided() {
		s.outcome = outcome
		s.phase = Finished
	}

	msg := protocol.MoveMadeMessage{
		Type: protocol.TypeMoveMade,
		Game: protocol.MoveState{
			Board:         s.board,
			CurrentPlayer: s.currentPlayer(),
			Winner:        s.outcome,
			LastMove:      protocol.LastMove{Player: symbol, Index: ev.index},
		},
	}

	return s, broadcast(s, msg), nil
}

func reduceLeave(s state, ev leaveEvent) (state, []outbound, error) {
	seat := s.seat(ev.peer)
	if seat < 0 {
		return s, nil, ErrNotParticipant
	}

	if s.terminal() {
		return s, nil, nil
	}

	s.abandoned = true

	var out []outbound
	if other := 1 - seat; other < s.joined {
		out = append(out, outbound{
			to:  s.players[other].peer,
			msg: protocol.PlayerLeftMessage{Type: protocol.TypePlayerLeft, PlayerName: s.players[seat].name},
		})
	}

	return s, out, nil
}

func reduceExpire(s state, ev expireEvent) (state, []outbound, error) {
	if s.terminal() || !s.lastActive.Before(ev.cutoff) {
		return s, nil, errStillActive
	}

	s.abandoned = true
	s.idle = true

	return s, broadcast(s, protocol.ErrorMessage{
		Type:    protocol.TypeError,
		Code:    protocol.CodeSessionExpired,
		Message: "session closed after inactivity",
	}), nil
}

// broadcast addresses msg to every participant, host first.
func broadcast(s state, msg any) []outbound {
	out := make([]outbound, 0, s.joined)
	for i := 0; i < s.joined; i++ {
		out = append(out, outbound{to: s.players[i].peer, msg: msg})
	}
	return out
}
