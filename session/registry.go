/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package session

import (
	"context"
	"crypto/rand"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/Seednode/tictactoe/metrics"
	"github.com/Seednode/tictactoe/protocol"
	"github.com/Seednode/tictactoe/storage"
)

const defaultRecordTimeout = 5 * time.Second

// Recorder persists finished games. storage.Store satisfies it.
type Recorder interface {
	RecordCompletedGame(ctx context.Context, r storage.Record) error
}

type Option func(*Registry)

func WithRecorder(rec Recorder) Option {
	return func(r *Registry) {
		r.recorder = rec
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Registry) {
		r.metrics = m
	}
}

func WithLogger(logf func(format string, args ...any)) Option {
	return func(r *Registry) {
		if logf != nil {
			r.logf = logf
		}
	}
}

// WithRecordTimeout bounds each call to the Recorder.
func WithRecordTimeout(d time.Duration) Option {
	return func(r *Registry) {
		if d > 0 {
			r.recordTimeout = d
		}
	}
}

// Registry maps session ids to live sessions. Its mutex guards the map
// only and is never held while a session lock is being acquired on a
// session that other goroutines can see.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session

	recorder      Recorder
	metrics       *metrics.Metrics
	logf          func(format string, args ...any)
	recordTimeout time.Duration
	now           func() time.Time
}

func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		sessions:      make(map[string]*Session),
		logf:          func(string, ...any) {},
		recordTimeout: defaultRecordTimeout,
		now:           time.Now,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// CreateOrJoin places the caller in the session named id, creating it if
// needed. The creator is the host; the second caller is the guest; any
// further caller gets ErrSessionFull.
func (r *Registry) CreateOrJoin(id, name string, peer Peer) (*Session, Role, error) {
	for {
		r.mu.Lock()
		s, ok := r.sessions[id]
		if !ok {
			s = newSession(id, r)

			// s is not yet reachable by anyone else, so taking its lock
			// here cannot contend.
			role, err := s.join(name, peer)
			if err != nil {
				r.mu.Unlock()
				return nil, role, err
			}

			r.sessions[id] = s
			r.mu.Unlock()

			r.metrics.SessionCreated()
			r.logf("GAMES: Created session %s for %q", id, name)

			return s, role, nil
		}
		r.mu.Unlock()

		role, err := s.join(name, peer)
		switch {
		case errors.Is(err, errSessionRetired):
			r.drop(s)
			continue
		case err != nil:
			return nil, role, err
		}

		return s, role, nil
	}
}

// Remove drops the session with the given id. A later CreateOrJoin for
// the same id starts a fresh session.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, id)
}

// drop removes s only if it is still the session registered under its id.
func (r *Registry) drop(s *Session) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sessions[s.id] != s {
		return false
	}
	delete(r.sessions, s.id)

	return true
}

func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	return s, ok
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.sessions)
}

func (r *Registry) list() []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}

	return out
}

// Snapshot summarizes every registered session, oldest first.
func (r *Registry) Snapshot() []Summary {
	sessions := r.list()

	out := make([]Summary, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, s.Summary())
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out
}

// NewID returns a random 8-character id that is not currently registered.
func (r *Registry) NewID() string {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

	for {
		buf := make([]byte, 8)
		if _, err := rand.Read(buf); err != nil {
			panic("crypto/rand failure: " + err.Error())
		}
		for i := range buf {
			buf[i] = letters[int(buf[i])%len(letters)]
		}
		id := string(buf)

		if _, exists := r.Get(id); !exists {
			return id
		}
	}
}

// Reap abandons every session that has seen no transition for maxIdle.
// It returns the number of sessions retired.
func (r *Registry) Reap(maxIdle time.Duration) int {
	cutoff := r.now().Add(-maxIdle)

	reaped := 0
	for _, s := range r.list() {
		if s.expireIfIdle(cutoff) {
			reaped++
		}
	}

	return reaped
}

// RunReaper calls Reap every interval until ctx is done.
func (r *Registry) RunReaper(ctx context.Context, interval, maxIdle time.Duration) {
	if interval <= 0 || maxIdle <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Reap(maxIdle); n > 0 {
				r.logf("GAMES: Reaped %d idle session(s)", n)
			}
		}
	}
}

// retire runs once per session, after the transition that made it terminal
// has been committed and the session lock released.
func (r *Registry) retire(s *Session, st state) {
	r.drop(s)

	reason := st.endReason()
	r.metrics.SessionEnded(reason)

	if st.phase != Finished {
		r.logf("GAMES: Session %s ended (%s)", st.id, reason)
		return
	}

	rec := st.record()
	r.logf("GAMES: Session %s finished, winner %q", st.id, rec.Winner)

	if r.recorder == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.recordTimeout)
	defer cancel()

	if err := r.recorder.RecordCompletedGame(ctx, rec); err != nil {
		r.metrics.RecordFailed()
		r.logf("ERROR: Failed to record session %s: %v", st.id, err)

		warning := protocol.ErrorMessage{
			Type:    protocol.TypeError,
			Code:    protocol.CodePersistence,
			Message: "result could not be saved",
		}
		for i := 0; i < st.joined; i++ {
			st.players[i].peer.Deliver(warning)
		}
	}
}
