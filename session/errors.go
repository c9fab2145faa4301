/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package session

import (
	"errors"

	"github.com/Seednode/tictactoe/board"
)

var (
	ErrIllegalMove    = board.ErrIllegalMove
	ErrSessionFull    = errors.New("session is full")
	ErrSymbolConflict = errors.New("symbol conflict")
	ErrDisconnected   = errors.New("opponent disconnected")
	ErrNotParticipant = errors.New("not a participant in this session")
	ErrInvalidName    = errors.New("invalid player name")

	errSessionRetired = errors.New("session retired")
	errStillActive    = errors.New("session still active")
)
