/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package session

import (
	"sync"
	"time"

	"github.com/Seednode/tictactoe/board"
)

// Session is one two-player match. All mutation goes through apply, which
// holds mu for the reducer call and the outbound enqueues only.
type Session struct {
	id       string
	registry *Registry

	mu sync.Mutex
	st state
}

func newSession(id string, r *Registry) *Session {
	now := r.now()
	return &Session{
		id:       id,
		registry: r,
		st:       state{id: id, createdAt: now, lastActive: now},
	}
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) join(name string, peer Peer) (Role, error) {
	var role Role

	err := s.apply(joinEvent{name: name, peer: peer}, func(st state) {
		if st.joined == 2 {
			role = Guest
		}
	})

	return role, err
}

// ChooseSymbol claims sym for the participant behind peer.
func (s *Session) ChooseSymbol(peer Peer, sym board.Symbol) error {
	return s.apply(chooseEvent{peer: peer, symbol: sym}, nil)
}

// Move places the participant's symbol at index.
func (s *Session) Move(peer Peer, index int) error {
	return s.apply(moveEvent{peer: peer, index: index}, nil)
}

// Leave abandons the session on behalf of a disconnected participant.
// It is a no-op once the session is already terminal.
func (s *Session) Leave(peer Peer) error {
	return s.apply(leaveEvent{peer: peer}, nil)
}

func (s *Session) expireIfIdle(cutoff time.Time) bool {
	return s.apply(expireEvent{cutoff: cutoff}, nil) == nil
}

// apply runs ev through the reducer, commits the result, and hands the
// outbound messages to their peers before releasing the lock, so every
// participant observes transitions in commit order. committed, if set,
// sees the new state while the lock is still held.
func (s *Session) apply(ev event, committed func(state)) error {
	s.mu.Lock()

	next, out, err := reduce(s.st, ev)
	if err != nil {
		s.mu.Unlock()
		return err
	}

	wasTerminal := s.st.terminal()
	next.lastActive = s.registry.now()
	s.st = next

	for _, o := range out {
		o.to.Deliver(o.msg)
	}

	if committed != nil {
		committed(next)
	}

	s.mu.Unlock()

	if !wasTerminal && next.terminal() {
		s.registry.retire(s, next)
	}

	return nil
}

// Summary is a read-only view of a session.
type Summary struct {
	ID         string        `json:"id"`
	Phase      string        `json:"phase"`
	Players    []string      `json:"players"`
	Board      board.Board   `json:"board"`
	Turn       board.Symbol  `json:"currentPlayer"`
	Outcome    board.Outcome `json:"winner"`
	Abandoned  bool          `json:"abandoned"`
	CreatedAt  time.Time     `json:"createdAt"`
	LastActive time.Time     `json:"lastActive"`
}

func (s *Session) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	players := make([]string, 0, s.st.joined)
	for i := 0; i < s.st.joined; i++ {
		players = append(players, s.st.players[i].name)
	}

	return Summary{
		ID:         s.st.id,
		Phase:      s.st.phase.String(),
		Players:    players,
		Board:      s.st.board,
		Turn:       s.st.currentPlayer(),
		Outcome:    s.st.outcome,
		Abandoned:  s.st.abandoned,
		CreatedAt:  s.st.createdAt,
		LastActive: s.st.lastActive,
	}
}

func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.phase
}

func (s *Session) Board() board.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.board
}

func (s *Session) Outcome() board.Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.outcome
}

// Turn is the symbol whose move is accepted next, or board.Empty when none is.
func (s *Session) Turn() board.Symbol {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.currentPlayer()
}

// SymbolOf returns the symbol claimed by the participant behind peer.
func (s *Session) SymbolOf(peer Peer) (board.Symbol, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seat := s.st.seat(peer)
	if seat < 0 {
		return board.Empty, false
	}
	return s.st.players[seat].symbol, true
}
