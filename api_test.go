package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Seednode/tictactoe/storage"
	"github.com/julienschmidt/httprouter"
)

type failingStore struct {
	storage.Store
}

func (failingStore) RecordCompletedGame(ctx context.Context, r storage.Record) error {
	return errors.New("database unavailable")
}

func (failingStore) ListRecentGames(ctx context.Context, limit int) ([]storage.Game, error) {
	return nil, errors.New("database unavailable")
}

func (failingStore) ListLeaderboard(ctx context.Context, limit int) ([]storage.LeaderboardEntry, error) {
	return nil, errors.New("database unavailable")
}

func newAPIRouter(store storage.Store) *httprouter.Router {
	mux := httprouter.New()
	registerAPI(&Config{}, mux, store)
	return mux
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.ServeHTTP(w, req)

	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decoding %q: %v", w.Body.String(), err)
	}
	return out
}

func TestMoveScoresBoard(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantWinner any
		wantLeader string
	}{
		{
			name:       "undecided",
			body:       `{"board":["X",null,null,null,"O",null,null,null,null],"gameId":"local-1"}`,
			wantWinner: nil,
		},
		{
			name:       "x wins",
			body:       `{"board":["X","X","X",null,"O",null,"O",null,null],"player1":"Alice","player2":"Bob","gameId":"local-2"}`,
			wantWinner: "X",
			wantLeader: "Alice",
		},
		{
			name:       "o wins",
			body:       `{"board":["X","X",null,"O","O","O","X",null,null],"player1":"Alice","player2":"Bob"}`,
			wantWinner: "O",
			wantLeader: "Bob",
		},
		{
			name:       "unnamed players",
			body:       `{"board":["O","O","O","X","X",null,"X",null,null],"mode":"pvp"}`,
			wantWinner: "O",
			wantLeader: "Player O",
		},
		{
			name:       "draw",
			body:       `{"board":["X","O","X","X","O","O","O","X","X"],"player1":"Alice","player2":"Bob"}`,
			wantWinner: "draw",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := storage.NewMemory()
			mux := newAPIRouter(store)

			w := do(t, mux, http.MethodPost, "/api/move", tt.body)
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
			}

			resp := decode[map[string]any](t, w)
			if resp["winner"] != tt.wantWinner {
				t.Errorf("winner = %v, want %v", resp["winner"], tt.wantWinner)
			}

			games, _ := store.ListRecentGames(context.Background(), 10)
			if tt.wantWinner == nil {
				if len(games) != 0 {
					t.Errorf("undecided board was recorded: %+v", games)
				}
				return
			}
			if len(games) != 1 {
				t.Fatalf("recorded %d games, want 1", len(games))
			}
			if games[0].Mode != storage.ModeLocal {
				t.Errorf("mode = %q, want pvp", games[0].Mode)
			}

			leaders, _ := store.ListLeaderboard(context.Background(), 10)
			if tt.wantLeader == "" {
				if len(leaders) != 0 {
					t.Errorf("draw reached the leaderboard: %+v", leaders)
				}
				return
			}
			if len(leaders) == 0 || leaders[0].Player != tt.wantLeader || leaders[0].Wins != 1 {
				t.Errorf("leaderboard = %+v, want %s first", leaders, tt.wantLeader)
			}
		})
	}
}

func TestMoveEchoesGameID(t *testing.T) {
	mux := newAPIRouter(storage.NewMemory())

	w := do(t, mux, http.MethodPost, "/api/move", `{"board":[null,null,null,null,null,null,null,null,null],"gameId":"abc"}`)
	resp := decode[map[string]any](t, w)
	if resp["gameId"] != "abc" {
		t.Errorf("gameId = %v, want abc", resp["gameId"])
	}

	w = do(t, mux, http.MethodPost, "/api/move", `{"board":[null,null,null,null,null,null,null,null,null]}`)
	resp = decode[map[string]any](t, w)
	if v, ok := resp["gameId"]; !ok || v != nil {
		t.Errorf("gameId = %v (present %v), want null", v, ok)
	}
}

func TestMoveRejectsBadRequests(t *testing.T) {
	mux := newAPIRouter(storage.NewMemory())

	for name, body := range map[string]string{
		"not json":      `board`,
		"missing board": `{"player1":"Alice"}`,
		"short board":   `{"board":["X","O"]}`,
		"bad cell":      `{"board":["Q",null,null,null,null,null,null,null,null]}`,
		"unknown field": `{"board":[null,null,null,null,null,null,null,null,null],"extra":1}`,
		"unknown mode":  `{"board":["X","X","X","O","O",null,null,null,null],"mode":"hotseat"}`,
	} {
		t.Run(name, func(t *testing.T) {
			w := do(t, mux, http.MethodPost, "/api/move", body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400 (body %s)", w.Code, w.Body.String())
			}
			if resp := decode[map[string]string](t, w); resp["error"] == "" {
				t.Error("missing error message")
			}
		})
	}
}

func TestUpdateLeaderboard(t *testing.T) {
	store := storage.NewMemory()
	mux := newAPIRouter(store)

	w := do(t, mux, http.MethodPost, "/api/update-leaderboard", `{"winner":"Alice","loser":"Bob"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	w = do(t, mux, http.MethodGet, "/api/leaderboard", "")
	entries := decode[[]storage.LeaderboardEntry](t, w)
	want := []storage.LeaderboardEntry{
		{Player: "Alice", Wins: 1},
		{Player: "Bob", Losses: 1},
	}
	if len(entries) != len(want) {
		t.Fatalf("leaderboard = %+v", entries)
	}
	for i := range want {
		if entries[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, entries[i], want[i])
		}
	}

	w = do(t, mux, http.MethodPost, "/api/update-leaderboard", `{"winner":"Alice"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing loser: status = %d, want 400", w.Code)
	}
}

func TestListEndpoints(t *testing.T) {
	store := storage.NewMemory()
	for i := 0; i < 12; i++ {
		if err := store.RecordCompletedGame(context.Background(), storage.Record{Winner: "Alice", Loser: "Bob"}); err != nil {
			t.Fatal(err)
		}
	}
	mux := newAPIRouter(store)

	tests := []struct {
		target string
		status int
		count  int
	}{
		{"/api/games", http.StatusOK, 10},
		{"/api/games?limit=3", http.StatusOK, 3},
		{"/api/games?limit=0", http.StatusOK, 10},
		{"/api/games?limit=500", http.StatusOK, 12},
		{"/api/games?limit=ten", http.StatusBadRequest, 0},
		{"/api/leaderboard", http.StatusOK, 2},
		{"/api/leaderboard?limit=1", http.StatusOK, 1},
		{"/api/leaderboard?limit=-", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			w := do(t, mux, http.MethodGet, tt.target, "")
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d", w.Code, tt.status)
			}
			if tt.status != http.StatusOK {
				return
			}
			if rows := decode[[]map[string]any](t, w); len(rows) != tt.count {
				t.Errorf("got %d rows, want %d", len(rows), tt.count)
			}
		})
	}
}

func TestEmptyListsAreArrays(t *testing.T) {
	mux := newAPIRouter(storage.NewMemory())

	for _, target := range []string{"/api/games", "/api/leaderboard"} {
		w := do(t, mux, http.MethodGet, target, "")
		if got := strings.TrimSpace(w.Body.String()); got != "[]" {
			t.Errorf("%s = %s, want []", target, got)
		}
	}
}

func TestStoreFailuresAre500(t *testing.T) {
	mux := newAPIRouter(failingStore{})

	requests := []struct {
		method, target, body string
	}{
		{http.MethodPost, "/api/move", `{"board":["X","X","X","O","O",null,null,null,null]}`},
		{http.MethodPost, "/api/update-leaderboard", `{"winner":"Alice","loser":"Bob"}`},
		{http.MethodGet, "/api/games", ""},
		{http.MethodGet, "/api/leaderboard", ""},
	}

	for _, r := range requests {
		w := do(t, mux, r.method, r.target, r.body)
		if w.Code != http.StatusInternalServerError {
			t.Errorf("%s %s: status = %d, want 500", r.method, r.target, w.Code)
		}
		if strings.Contains(w.Body.String(), "database unavailable") {
			t.Errorf("%s %s leaked the store error: %s", r.method, r.target, w.Body.String())
		}
	}
}
