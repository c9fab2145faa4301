/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/Seednode/tictactoe/board"
	"github.com/Seednode/tictactoe/storage"
	"github.com/julienschmidt/httprouter"
)

const maxRequestBody = 4 << 10

type api struct {
	cfg   *Config
	store storage.Store
}

type moveRequest struct {
	Board   *board.Board `json:"board"`
	Mode    storage.Mode `json:"mode"`
	Player1 string       `json:"player1"`
	Player2 string       `json:"player2"`
	GameID  string       `json:"gameId"`
}

type moveResponse struct {
	Winner *string `json:"winner"`
	GameID *string `json:"gameId"`
}

type resultRequest struct {
	Winner string `json:"winner"`
	Loser  string `json:"loser"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	dec.DisallowUnknownFields()

	return dec.Decode(v)
}

func limitParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return storage.DefaultLimit, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("limit must be an integer")
	}

	return storage.ClampLimit(n), nil
}

func orDefault(name, fallback string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	return fallback
}

// handleMove scores a local board. Decided games are recorded with player1
// holding X and player2 holding O.
func (a *api) handleMove(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req moveRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Board == nil {
		respondError(w, http.StatusBadRequest, "board is required")
		return
	}

	resp := moveResponse{}
	if req.GameID != "" {
		resp.GameID = &req.GameID
	}

	outcome := board.DetectOutcome(*req.Board)
	if !outcome.Decided() {
		respondJSON(w, http.StatusOK, resp)
		return
	}

	winner := outcome.String()
	resp.Winner = &winner

	rec := storage.Record{Mode: req.Mode, Board: *req.Board}
	x, o := orDefault(req.Player1, "Player X"), orDefault(req.Player2, "Player O")
	switch outcome.Winner {
	case board.X:
		rec.Winner, rec.Loser = x, o
	case board.O:
		rec.Winner, rec.Loser = o, x
	default:
		rec.Winner = board.DrawLabel
	}

	if !a.record(w, r, rec) {
		return
	}

	logf(a.cfg, "GAMES: Local game finished, winner %q", rec.Winner)

	respondJSON(w, http.StatusOK, resp)
}

func (a *api) handleUpdateLeaderboard(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req resultRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if !a.record(w, r, storage.Record{Winner: req.Winner, Loser: req.Loser, Mode: storage.ModeLocal}) {
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{"status": "recorded"})
}

// record writes rec, answering the request itself on failure.
func (a *api) record(w http.ResponseWriter, r *http.Request, rec storage.Record) bool {
	err := a.store.RecordCompletedGame(r.Context(), rec)
	switch {
	case err == nil:
		return true
	case errors.Is(err, storage.ErrInvalidRecord):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		logf(a.cfg, "ERROR: Failed to save game: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to save game")
	}

	return false
}

func (a *api) handleGames(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, err := limitParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	games, err := a.store.ListRecentGames(r.Context(), limit)
	if err != nil {
		logf(a.cfg, "ERROR: Failed to fetch games: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch games")
		return
	}

	respondJSON(w, http.StatusOK, games)
}

func (a *api) handleLeaderboard(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, err := limitParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := a.store.ListLeaderboard(r.Context(), limit)
	if err != nil {
		logf(a.cfg, "ERROR: Failed to fetch leaderboard: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch leaderboard")
		return
	}

	respondJSON(w, http.StatusOK, entries)
}

func registerAPI(cfg *Config, mux *httprouter.Router, store storage.Store) {
	a := &api{cfg: cfg, store: store}

	mux.POST(cfg.prefix+"/api/move", a.handleMove)
	mux.POST(cfg.prefix+"/api/update-leaderboard", a.handleUpdateLeaderboard)
	mux.GET(cfg.prefix+"/api/games", a.handleGames)
	mux.GET(cfg.prefix+"/api/leaderboard", a.handleLeaderboard)
}
