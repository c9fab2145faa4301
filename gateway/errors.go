/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package gateway

import (
	"errors"

	"github.com/Seednode/tictactoe/protocol"
	"github.com/Seednode/tictactoe/session"
)

var (
	ErrNotJoined     = errors.New("join a game first")
	ErrAlreadyJoined = errors.New("connection has already joined a game")
)

// Code maps an error to the code sent in an error message.
func Code(err error) string {
	switch {
	case errors.Is(err, protocol.ErrMalformedMessage), errors.Is(err, session.ErrInvalidName):
		return protocol.CodeMalformedMessage
	case errors.Is(err, session.ErrIllegalMove):
		return protocol.CodeIllegalMove
	case errors.Is(err, session.ErrSessionFull):
		return protocol.CodeSessionFull
	case errors.Is(err, session.ErrSymbolConflict):
		return protocol.CodeSymbolConflict
	case errors.Is(err, session.ErrDisconnected):
		return protocol.CodeDisconnected
	case errors.Is(err, ErrNotJoined), errors.Is(err, session.ErrNotParticipant):
		return protocol.CodeNotJoined
	case errors.Is(err, ErrAlreadyJoined):
		return protocol.CodeAlreadyJoined
	default:
		return ""
	}
}
