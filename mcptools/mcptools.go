/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package mcptools exposes read-only game data as MCP tools.
package mcptools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Seednode/tictactoe/board"
	"github.com/Seednode/tictactoe/session"
	"github.com/Seednode/tictactoe/storage"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const maxRequestBytes = 1 << 20

// SessionLister is satisfied by *session.Registry.
type SessionLister interface {
	Snapshot() []session.Summary
}

type tools struct {
	store    storage.Store
	sessions SessionLister
}

// NewServer builds an MCP server with the game tools registered.
func NewServer(store storage.Store, sessions SessionLister, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"tictactoe",
		version,
		server.WithToolCapabilities(true),
		server.WithInstructions(`Tic-tac-toe coordinator - read-only MCP interface

AVAILABLE TOOLS:
- recent_games: most recent completed games
- leaderboard: players ranked by wins, then fewest losses
- active_sessions: online games currently in progress
- evaluate_board: winner of a board written as 9 cells of X, O or -`),
	)

	t := &tools{store: store, sessions: sessions}

	limit := map[string]interface{}{
		"type":        "number",
		"description": fmt.Sprintf("Maximum rows to return (default %d, max %d)", storage.DefaultLimit, storage.MaxLimit),
	}

	s.AddTool(mcp.Tool{
		Name:        "recent_games",
		Description: "List the most recently completed games",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"limit": limit},
		},
	}, t.handleRecentGames)

	s.AddTool(mcp.Tool{
		Name:        "leaderboard",
		Description: "Rank players by wins, then by fewest losses",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"limit": limit},
		},
	}, t.handleLeaderboard)

	s.AddTool(mcp.Tool{
		Name:        "active_sessions",
		Description: "List online sessions held by the coordinator",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, t.handleActiveSessions)

	s.AddTool(mcp.Tool{
		Name:        "evaluate_board",
		Description: "Report the outcome of a board",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"board": map[string]interface{}{
					"type":        "string",
					"description": "Nine cells, row-major, each X, O or - (e.g. XXXOO----)",
				},
			},
			Required: []string{"board"},
		},
	}, t.handleEvaluateBoard)

	return s
}

func limitArg(request mcp.CallToolRequest) int {
	args, _ := request.Params.Arguments.(map[string]interface{})
	n, _ := args["limit"].(float64)
	return storage.ClampLimit(int(n))
}

func (t *tools) handleRecentGames(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	games, err := t.store.ListRecentGames(ctx, limitArg(request))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if len(games) == 0 {
		return mcp.NewToolResultText("No completed games yet."), nil
	}

	var b strings.Builder
	for _, g := range games {
		switch {
		case g.Winner == board.DrawLabel:
			fmt.Fprintf(&b, "#%d draw (%s) %s %s\n", g.ID, g.Mode, g.Board, g.CreatedAt.Format("2006-01-02 15:04:05"))
		case g.Loser != nil:
			fmt.Fprintf(&b, "#%d %s beat %s (%s) %s %s\n", g.ID, g.Winner, *g.Loser, g.Mode, g.Board, g.CreatedAt.Format("2006-01-02 15:04:05"))
		default:
			fmt.Fprintf(&b, "#%d %s won (%s) %s %s\n", g.ID, g.Winner, g.Mode, g.Board, g.CreatedAt.Format("2006-01-02 15:04:05"))
		}
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (t *tools) handleLeaderboard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entries, err := t.store.ListLeaderboard(ctx, limitArg(request))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if len(entries) == 0 {
		return mcp.NewToolResultText("Leaderboard is empty."), nil
	}

	var b strings.Builder
	for i, e := range entries {
		fmt.Fprintf(&b, "%d. %s - %d wins, %d losses\n", i+1, e.Player, e.Wins, e.Losses)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (t *tools) handleActiveSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessions := t.sessions.Snapshot()
	if len(sessions) == 0 {
		return mcp.NewToolResultText("No active sessions."), nil
	}

	var b strings.Builder
	for _, s := range sessions {
		fmt.Fprintf(&b, "%s [%s] players=%s board=%s", s.ID, s.Phase, strings.Join(s.Players, ","), s.Board)
		if s.Turn != board.Empty {
			fmt.Fprintf(&b, " turn=%s", s.Turn)
		}
		b.WriteString("\n")
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (t *tools) handleEvaluateBoard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	cells, _ := args["board"].(string)

	b, err := board.ParseBoard(cells)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	outcome := board.DetectOutcome(b)
	if !outcome.Decided() {
		return mcp.NewToolResultText("undecided"), nil
	}

	return mcp.NewToolResultText(outcome.String()), nil
}

// Handler serves JSON-RPC requests for s over plain HTTP POST.
func Handler(s *server.MCPServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := s.HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write(responseData)
	}
}
