/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Seednode/tictactoe/board"
	_ "modernc.org/sqlite"
)

// SQLite stores games in a single database file.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (creating if needed) the database at path and applies the schema.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	schema, err := loadMigration("sqlite.sql")
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db, now: time.Now}, nil
}

func (s *SQLite) RecordCompletedGame(ctx context.Context, r Record) error {
	r, err := r.normalize()
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO games (board, winner, loser, mode, created_at) VALUES (?, ?, ?, ?, ?)`,
		r.Board.String(), r.Winner, nullable(r.Loser), string(r.Mode), s.now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert game: %w", err)
	}

	return nil
}

func (s *SQLite) ListRecentGames(ctx context.Context, limit int) ([]Game, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, board, winner, loser, mode, created_at
		 FROM games
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		ClampLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("query games: %w", err)
	}
	defer rows.Close()

	games := []Game{}
	for rows.Next() {
		var (
			g       Game
			cells   string
			loser   sql.NullString
			mode    string
			created int64
		)
		if err := rows.Scan(&g.ID, &cells, &g.Winner, &loser, &mode, &created); err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		if g.Board, err = board.ParseBoard(cells); err != nil {
			return nil, fmt.Errorf("game %d: %w", g.ID, err)
		}
		if loser.Valid {
			g.Loser = &loser.String
		}
		g.Mode = Mode(mode)
		g.CreatedAt = time.UnixMilli(created).UTC()
		games = append(games, g)
	}

	return games, rows.Err()
}

func (s *SQLite) ListLeaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	rows, err := s.db.QueryContext(ctx, leaderboardQuery("?"), ClampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	entries := []LeaderboardEntry{}
	for rows.Next() {
		var (
			e            LeaderboardEntry
			wins, losses int64
		)
		if err := rows.Scan(&e.Player, &wins, &losses); err != nil {
			return nil, fmt.Errorf("scan leaderboard: %w", err)
		}
		e.Wins, e.Losses = int(wins), int(losses)
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// leaderboardQuery counts each decided game once for its winner and once for
// its loser; draws have no loser and are skipped.
func leaderboardQuery(placeholder string) string {
	return `SELECT player,
	       COUNT(CASE WHEN outcome = 'win' THEN 1 END) AS wins,
	       COUNT(CASE WHEN outcome = 'loss' THEN 1 END) AS losses
	FROM (
	    SELECT winner AS player, 'win' AS outcome FROM games WHERE loser IS NOT NULL AND winner <> 'draw'
	    UNION ALL
	    SELECT loser AS player, 'loss' AS outcome FROM games WHERE loser IS NOT NULL AND winner <> 'draw'
	) AS all_players
	GROUP BY player
	ORDER BY wins DESC, losses ASC, player ASC
	LIMIT ` + placeholder
}
