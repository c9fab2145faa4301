/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package protocol

import (
	"encoding/json"

	"github.com/Seednode/tictactoe/board"
)

// Error codes carried by ErrorMessage.
const (
	CodeIllegalMove      = "illegal_move"
	CodeSessionFull      = "session_full"
	CodeSymbolConflict   = "symbol_conflict"
	CodeMalformedMessage = "malformed_message"
	CodeNotJoined        = "not_joined"
	CodeAlreadyJoined    = "already_joined"
	CodeDisconnected     = "disconnected"
	CodeSessionExpired   = "session_expired"
	CodePersistence      = "persistence"
)

// GameCreatedMessage is sent to the host when its session is created.
type GameCreatedMessage struct {
	Type   string `json:"type"` // "gameCreated"
	GameID string `json:"gameId"`
}

// PlayerJoinedMessage tells the host who joined.
type PlayerJoinedMessage struct {
	Type       string `json:"type"` // "playerJoined"
	PlayerName string `json:"playerName"`
}

// PlayerLeftMessage tells the remaining participant the session was abandoned.
type PlayerLeftMessage struct {
	Type       string `json:"type"` // "playerLeft"
	PlayerName string `json:"playerName"`
}

// ErrorMessage is only ever sent to the participant whose request failed.
type ErrorMessage struct {
	Type    string `json:"type"` // "error"
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

type GameStartState struct {
	GameID        string        `json:"gameId"`
	Player1       string        `json:"player1"`
	Player2       string        `json:"player2"`
	Board         board.Board   `json:"board"`
	Winner        board.Outcome `json:"winner"`
	CurrentPlayer board.Symbol  `json:"currentPlayer"`
}

type GameStartMessage struct {
	Type string         `json:"type"` // "gameStart"
	Game GameStartState `json:"game"`
}

type PlayerSymbol struct {
	Name   string       `json:"name"`
	Symbol board.Symbol `json:"symbol"`
}

type SymbolState struct {
	Player1       PlayerSymbol `json:"player1"`
	Player2       PlayerSymbol `json:"player2"`
	CurrentPlayer board.Symbol `json:"currentPlayer"`
	Phase         string       `json:"phase"`
}

type SymbolSelectedMessage struct {
	Type string      `json:"type"` // "symbolSelected"
	Game SymbolState `json:"game"`
}

type LastMove struct {
	Player board.Symbol `json:"player"`
	Index  int          `json:"index"`
}

type MoveState struct {
	Board         board.Board   `json:"board"`
	CurrentPlayer board.Symbol  `json:"currentPlayer"`
	Winner        board.Outcome `json:"winner"`
	LastMove      LastMove      `json:"lastMove"`
}

type MoveMadeMessage struct {
	Type string    `json:"type"` // "moveMade"
	Game MoveState `json:"game"`
}

// Encode marshals any outbound message.
func Encode(msg any) ([]byte, error) {
	return json.Marshal(msg)
}
