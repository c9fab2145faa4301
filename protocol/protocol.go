/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package protocol defines the JSON messages exchanged over a game websocket.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Seednode/tictactoe/board"
)

const (
	// MaxNameLength bounds display names, in runes.
	MaxNameLength = 32

	// MaxGameIDLength bounds game ids, in bytes.
	MaxGameIDLength = 64
)

var ErrMalformedMessage = errors.New("malformed message")

// Inbound message types.
const (
	TypeJoin         = "join"
	TypeChooseSymbol = "symbolSelected"
	TypeMove         = "move"
)

// Outbound message types.
const (
	TypeGameCreated    = "gameCreated"
	TypeGameStart      = "gameStart"
	TypeSymbolSelected = "symbolSelected"
	TypeMoveMade       = "moveMade"
	TypePlayerJoined   = "playerJoined"
	TypePlayerLeft     = "playerLeft"
	TypeError          = "error"
)

// clientMessage is the raw shape of everything a client may send.
type clientMessage struct {
	Type       string `json:"type"`
	GameID     string `json:"gameId"`
	PlayerName string `json:"playerName"`
	Symbol     string `json:"symbol"`
	Index      *int   `json:"index"`
}

// Inbound is a decoded client request. Exactly one of Join, Choose or Move is set.
type Inbound struct {
	GameID string
	Join   *Join
	Choose *Choose
	Move   *Move
}

type Join struct {
	GameID     string
	PlayerName string
}

type Choose struct {
	Symbol board.Symbol
}

type Move struct {
	Index int
}

// Kind returns the wire type of the request.
func (in Inbound) Kind() string {
	switch {
	case in.Join != nil:
		return TypeJoin
	case in.Choose != nil:
		return TypeChooseSymbol
	case in.Move != nil:
		return TypeMove
	default:
		return ""
	}
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedMessage, fmt.Sprintf(format, args...))
}

// Decode parses and validates one client frame.
func Decode(data []byte) (Inbound, error) {
	var msg clientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return Inbound{}, malformed("invalid JSON")
	}

	in := Inbound{GameID: strings.TrimSpace(msg.GameID)}

	switch msg.Type {
	case TypeJoin:
		if in.GameID == "" {
			return Inbound{}, malformed("gameId is required")
		}
		if len(in.GameID) > MaxGameIDLength {
			return Inbound{}, malformed("gameId is too long")
		}
		name := strings.TrimSpace(msg.PlayerName)
		if name == "" {
			return Inbound{}, malformed("playerName is required")
		}
		if utf8.RuneCountInString(name) > MaxNameLength {
			return Inbound{}, malformed("playerName must be at most %d characters", MaxNameLength)
		}
		in.Join = &Join{GameID: in.GameID, PlayerName: name}

	case TypeChooseSymbol:
		sym, err := board.ParseSymbol(msg.Symbol)
		if err != nil {
			return Inbound{}, malformed("symbol must be X or O")
		}
		in.Choose = &Choose{Symbol: sym}

	case TypeMove:
		if msg.Index == nil {
			return Inbound{}, malformed("index is required")
		}
		in.Move = &Move{Index: *msg.Index}

	case "":
		return Inbound{}, malformed("type is required")

	default:
		return Inbound{}, malformed("unknown message type %q", msg.Type)
	}

	return in, nil
}
