/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package storage

import (
	"context"
	"fmt"

	"github.com/Seednode/tictactoe/board"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Postgres struct {
	db *pgxpool.Pool
}

// OpenPostgres connects a pool to dsn and applies the schema.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to db: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	schema, err := loadMigration("postgres.sql")
	if err != nil {
		pool.Close()
		return nil, err
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Postgres{db: pool}, nil
}

func (p *Postgres) RecordCompletedGame(ctx context.Context, r Record) error {
	r, err := r.normalize()
	if err != nil {
		return err
	}

	_, err = p.db.Exec(ctx,
		"INSERT INTO games (board, winner, loser, mode) VALUES ($1, $2, $3, $4)",
		r.Board.String(), r.Winner, nullable(r.Loser), string(r.Mode))
	if err != nil {
		return fmt.Errorf("insert game: %w", err)
	}

	return nil
}

func (p *Postgres) ListRecentGames(ctx context.Context, limit int) ([]Game, error) {
	rows, err := p.db.Query(ctx,
		`SELECT id, board, winner, loser, mode, created_at
		 FROM games
		 ORDER BY created_at DESC, id DESC
		 LIMIT $1`,
		ClampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query games: %w", err)
	}
	defer rows.Close()

	games := []Game{}
	for rows.Next() {
		var (
			g     Game
			cells string
			mode  string
		)
		if err := rows.Scan(&g.ID, &cells, &g.Winner, &g.Loser, &mode, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		if g.Board, err = board.ParseBoard(cells); err != nil {
			return nil, fmt.Errorf("game %d: %w", g.ID, err)
		}
		g.Mode = Mode(mode)
		g.CreatedAt = g.CreatedAt.UTC()
		games = append(games, g)
	}

	return games, rows.Err()
}

func (p *Postgres) ListLeaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	rows, err := p.db.Query(ctx, leaderboardQuery("$1"), ClampLimit(limit))
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

func (p *Postgres) Close() error {
	if p != nil && p.db != nil {
		p.db.Close()
	}
	return nil
}
