package mcptools

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Seednode/tictactoe/board"
	"github.com/Seednode/tictactoe/session"
	"github.com/Seednode/tictactoe/storage"
	"github.com/mark3labs/mcp-go/mcp"
)

type fakeSessions struct {
	summaries []session.Summary
}

func (f fakeSessions) Snapshot() []session.Summary {
	return f.summaries
}

type failingStore struct {
	storage.Store
}

func (failingStore) ListRecentGames(ctx context.Context, limit int) ([]storage.Game, error) {
	return nil, errors.New("database unavailable")
}

func (failingStore) ListLeaderboard(ctx context.Context, limit int) ([]storage.LeaderboardEntry, error) {
	return nil, errors.New("database unavailable")
}

func call(args map[string]interface{}) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func text(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()

	if result == nil || len(result.Content) == 0 {
		t.Fatal("empty tool result")
	}
	content, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want TextContent", result.Content[0])
	}
	return content.Text
}

func seededStore(t *testing.T) storage.Store {
	t.Helper()

	store := storage.NewMemory()
	ctx := context.Background()
	b, _ := board.ParseBoard("XXXOO----")

	records := []storage.Record{
		{Winner: "alice", Loser: "bob", Mode: storage.ModeOnline, Board: b},
		{Winner: "alice", Loser: "carol"},
		{Winner: board.DrawLabel},
	}
	for _, r := range records {
		if err := store.RecordCompletedGame(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	return store
}

func TestRecentGames(t *testing.T) {
	tl := &tools{store: seededStore(t), sessions: fakeSessions{}}

	result, err := tl.handleRecentGames(context.Background(), call(map[string]interface{}{"limit": float64(2)}))
	if err != nil {
		t.Fatal(err)
	}

	out := text(t, result)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], "draw") {
		t.Errorf("newest line = %q, want the draw", lines[0])
	}
	if !strings.Contains(lines[1], "alice beat carol") {
		t.Errorf("second line = %q", lines[1])
	}
}

func TestLeaderboard(t *testing.T) {
	tl := &tools{store: seededStore(t), sessions: fakeSessions{}}

	result, err := tl.handleLeaderboard(context.Background(), call(nil))
	if err != nil {
		t.Fatal(err)
	}

	out := text(t, result)
	if !strings.HasPrefix(out, "1. alice - 2 wins, 0 losses") {
		t.Errorf("leaderboard =\n%s", out)
	}
	if strings.Contains(out, board.DrawLabel) {
		t.Errorf("draw listed as a player:\n%s", out)
	}
}

func TestStoreErrorsBecomeToolErrors(t *testing.T) {
	tl := &tools{store: failingStore{}, sessions: fakeSessions{}}

	for name, handle := range map[string]func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error){
		"recent_games": tl.handleRecentGames,
		"leaderboard":  tl.handleLeaderboard,
	} {
		result, err := handle(context.Background(), call(nil))
		if err != nil {
			t.Fatalf("%s returned error %v, want tool error", name, err)
		}
		if !result.IsError {
			t.Errorf("%s result is not an error", name)
		}
	}
}

func TestActiveSessions(t *testing.T) {
	tl := &tools{
		store: storage.NewMemory(),
		sessions: fakeSessions{summaries: []session.Summary{
			{ID: "game-123", Phase: "inProgress", Players: []string{"Alice", "Bob"}, Turn: board.O},
		}},
	}

	result, err := tl.handleActiveSessions(context.Background(), call(nil))
	if err != nil {
		t.Fatal(err)
	}

	out := text(t, result)
	for _, want := range []string{"game-123", "inProgress", "Alice,Bob", "turn=O"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	empty := &tools{store: storage.NewMemory(), sessions: fakeSessions{}}
	result, _ = empty.handleActiveSessions(context.Background(), call(nil))
	if got := text(t, result); got != "No active sessions." {
		t.Errorf("empty output = %q", got)
	}
}

func TestEvaluateBoard(t *testing.T) {
	tl := &tools{store: storage.NewMemory(), sessions: fakeSessions{}}

	tests := []struct {
		board   string
		want    string
		isError bool
	}{
		{"XXX-O-O--", "X", false},
		{"XOXXOOOXX", "draw", false},
		{"X--------", "undecided", false},
		{"XX", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.board, func(t *testing.T) {
			result, err := tl.handleEvaluateBoard(context.Background(), call(map[string]interface{}{"board": tt.board}))
			if err != nil {
				t.Fatal(err)
			}
			if result.IsError != tt.isError {
				t.Fatalf("IsError = %v, want %v", result.IsError, tt.isError)
			}
			if !tt.isError {
				if got := text(t, result); got != tt.want {
					t.Errorf("got %q, want %q", got, tt.want)
				}
			}
		})
	}
}

func TestHandler(t *testing.T) {
	srv := NewServer(storage.NewMemory(), session.NewRegistry(), "test")
	handler := Handler(srv)

	t.Run("tools/list", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
		w := httptest.NewRecorder()

		handler(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		for _, name := range []string{"recent_games", "leaderboard", "active_sessions", "evaluate_board"} {
			if !strings.Contains(w.Body.String(), name) {
				t.Errorf("tools/list missing %q: %s", name, w.Body.String())
			}
		}
	})

	t.Run("method not allowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/mcp", nil)
		w := httptest.NewRecorder()

		handler(w, req)

		if w.Code != http.StatusMethodNotAllowed {
			t.Errorf("status = %d, want 405", w.Code)
		}
	})
}
