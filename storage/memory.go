/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Seednode/tictactoe/board"
)

// Memory keeps games for the lifetime of the process.
type Memory struct {
	mu     sync.RWMutex
	games  []Game
	nextID int64
	now    func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		nextID: 1,
		now:    time.Now,
	}
}

func (m *Memory) RecordCompletedGame(ctx context.Context, r Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r, err := r.normalize()
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	g := Game{
		ID:        m.nextID,
		Winner:    r.Winner,
		Mode:      r.Mode,
		Board:     r.Board,
		CreatedAt: m.now().UTC(),
	}
	if r.Loser != "" {
		loser := r.Loser
		g.Loser = &loser
	}

	m.games = append(m.games, g)
	m.nextID++

	return nil
}

func (m *Memory) ListRecentGames(ctx context.Context, limit int) ([]Game, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	limit = ClampLimit(limit)

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Game, 0, min(limit, len(m.games)))
	for i := len(m.games) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.games[i])
	}

	return out, nil
}

func (m *Memory) ListLeaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	limit = ClampLimit(limit)

	m.mu.RLock()
	totals := make(map[string]*LeaderboardEntry)
	entry := func(name string) *LeaderboardEntry {
		e, ok := totals[name]
		if !ok {
			e = &LeaderboardEntry{Player: name}
			totals[name] = e
		}
		return e
	}
	for _, g := range m.games {
		if g.Winner == board.DrawLabel || g.Loser == nil {
			continue
		}
		entry(g.Winner).Wins++
		entry(*g.Loser).Losses++
	}
	m.mu.RUnlock()

	out := make([]LeaderboardEntry, 0, len(totals))
	for _, e := range totals {
		out = append(out, *e)
	}
	sortLeaderboard(out)

	if len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}

func (m *Memory) Close() error {
	return nil
}

func sortLeaderboard(entries []LeaderboardEntry) {
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		if a.Losses != b.Losses {
			return a.Losses < b.Losses
		}
		return a.Player < b.Player
	})
}
