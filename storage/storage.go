/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package storage persists completed games and derives the leaderboard.
//
// Only finished games are ever written. Backends are selected by DSN in Open:
// PostgreSQL through pgx, SQLite through modernc.org/sqlite, or an in-memory
// store when no database is configured.
package storage

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Seednode/tictactoe/board"
)

//go:embed migrations/*.sql
var migrations embed.FS

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

var (
	ErrInvalidRecord  = errors.New("invalid game record")
	ErrUnsupportedDSN = errors.New("unsupported database DSN")
)

// Mode is how a game was played.
type Mode string

const (
	ModeLocal  Mode = "pvp"
	ModeOnline Mode = "online"
)

// Record is one completed game to persist. A draw has Winner "draw" and no Loser.
type Record struct {
	Winner string
	Loser  string
	Mode   Mode
	Board  board.Board
}

func (r Record) normalize() (Record, error) {
	r.Winner = strings.TrimSpace(r.Winner)
	r.Loser = strings.TrimSpace(r.Loser)
	if r.Mode == "" {
		r.Mode = ModeLocal
	}

	switch {
	case r.Winner == "":
		return r, fmt.Errorf("%w: winner is required", ErrInvalidRecord)
	case r.Winner == board.DrawLabel && r.Loser != "":
		return r, fmt.Errorf("%w: a draw has no loser", ErrInvalidRecord)
	case r.Winner != board.DrawLabel && r.Loser == "":
		return r, fmt.Errorf("%w: loser is required", ErrInvalidRecord)
	case r.Mode != ModeLocal && r.Mode != ModeOnline:
		return r, fmt.Errorf("%w: unknown mode %q", ErrInvalidRecord, r.Mode)
	}

	return r, nil
}

// Game is a persisted completed game.
type Game struct {
	ID        int64       `json:"id"`
	Winner    string      `json:"winner"`
	Loser     *string     `json:"loser"`
	Mode      Mode        `json:"mode"`
	Board     board.Board `json:"board"`
	CreatedAt time.Time   `json:"created_at"`
}

// LeaderboardEntry aggregates one player's results.
type LeaderboardEntry struct {
	Player string `json:"player"`
	Wins   int    `json:"wins"`
	Losses int    `json:"losses"`
}

// Store is the persistence collaborator used by the coordinator and the REST API.
type Store interface {
	RecordCompletedGame(ctx context.Context, r Record) error
	ListRecentGames(ctx context.Context, limit int) ([]Game, error)
	ListLeaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error)
	Close() error
}

// ClampLimit maps non-positive values to DefaultLimit and caps at MaxLimit.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}

// Open picks a backend from dsn.
//
//	""  or "memory"                      in-memory
//	postgres://... or postgresql://...   PostgreSQL
//	sqlite://path, file:path, *.db       SQLite
func Open(ctx context.Context, dsn string) (Store, error) {
	dsn = strings.TrimSpace(dsn)

	switch {
	case dsn == "" || dsn == "memory":
		return NewMemory(), nil
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return OpenPostgres(ctx, dsn)
	case strings.HasPrefix(dsn, "sqlite://"):
		return OpenSQLite(ctx, strings.TrimPrefix(dsn, "sqlite://"))
	case strings.HasPrefix(dsn, "file:"):
		return OpenSQLite(ctx, strings.TrimPrefix(dsn, "file:"))
	case strings.HasSuffix(dsn, ".db"), strings.HasSuffix(dsn, ".sqlite"):
		return OpenSQLite(ctx, dsn)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDSN, dsn)
	}
}

func loadMigration(name string) (string, error) {
	data, err := migrations.ReadFile("migrations/" + name)
	if err != nil {
		return "", fmt.Errorf("read migration %s: %w", name, err)
	}
	return string(data), nil
}

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}
