/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package board implements the tic-tac-toe rules shared by local and online play.
//
// Every function here is pure: the same board always yields the same result,
// so the server-side coordinator and the local-mode handler can never disagree.
package board

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Size is the number of cells on a board.
const Size = 9

var ErrIllegalMove = errors.New("illegal move")

// Symbol is the mark a player places. The zero value is an empty cell.
type Symbol string

const (
	Empty Symbol = ""
	X     Symbol = "X"
	O     Symbol = "O"
)

// Valid reports whether s is a placeable mark.
func (s Symbol) Valid() bool {
	return s == X || s == O
}

// Opponent returns the other mark, or Empty for anything that is not X or O.
func (s Symbol) Opponent() Symbol {
	switch s {
	case X:
		return O
	case O:
		return X
	default:
		return Empty
	}
}

// ParseSymbol accepts "X" or "O", case-insensitively.
func ParseSymbol(v string) (Symbol, error) {
	s := Symbol(strings.ToUpper(strings.TrimSpace(v)))
	if !s.Valid() {
		return Empty, fmt.Errorf("invalid symbol %q", v)
	}
	return s, nil
}

// MarshalJSON encodes an empty cell as null.
func (s Symbol) MarshalJSON() ([]byte, error) {
	if s == Empty {
		return []byte("null"), nil
	}
	return json.Marshal(string(s))
}

// Board is a 3x3 grid in row-major order; index 0 is the top-left cell.
type Board [Size]Symbol

// Full reports whether no cell is empty.
func (b Board) Full() bool {
	for _, c := range b {
		if c == Empty {
			return false
		}
	}
	return true
}

// Count returns how many cells hold s.
func (b Board) Count(s Symbol) int {
	n := 0
	for _, c := range b {
		if c == s {
			n++
		}
	}
	return n
}

// String renders the board compactly, one rune per cell, '-' for empty.
func (b Board) String() string {
	var sb strings.Builder
	sb.Grow(Size)
	for _, c := range b {
		if c == Empty {
			sb.WriteByte('-')
			continue
		}
		sb.WriteString(string(c))
	}
	return sb.String()
}

// ParseBoard is the inverse of Board.String.
func ParseBoard(v string) (Board, error) {
	var b Board
	if len(v) != Size {
		return b, fmt.Errorf("board must have %d cells, got %d", Size, len(v))
	}
	for i := 0; i < Size; i++ {
		switch v[i] {
		case '-':
		case 'X':
			b[i] = X
		case 'O':
			b[i] = O
		default:
			return b, fmt.Errorf("invalid cell %q at %d", v[i], i)
		}
	}
	return b, nil
}

func (b Board) MarshalJSON() ([]byte, error) {
	cells := make([]Symbol, Size)
	copy(cells, b[:])
	return json.Marshal(cells)
}

// UnmarshalJSON accepts exactly nine cells of "X", "O", null or "".
func (b *Board) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return errors.New("board is required")
	}

	var cells []*string
	if err := json.Unmarshal(data, &cells); err != nil {
		return fmt.Errorf("board: %w", err)
	}
	if len(cells) != Size {
		return fmt.Errorf("board must have %d cells, got %d", Size, len(cells))
	}

	var out Board
	for i, c := range cells {
		if c == nil || *c == "" {
			continue
		}
		s := Symbol(*c)
		if !s.Valid() {
			return fmt.Errorf("invalid cell %q at %d", *c, i)
		}
		out[i] = s
	}
	*b = out
	return nil
}

// Apply returns a copy of b with s placed at index.
func Apply(b Board, index int, s Symbol) (Board, error) {
	if !s.Valid() {
		return b, fmt.Errorf("%w: invalid symbol %q", ErrIllegalMove, s)
	}
	if index < 0 || index >= Size {
		return b, fmt.Errorf("%w: index %d out of range", ErrIllegalMove, index)
	}
	if b[index] != Empty {
		return b, fmt.Errorf("%w: cell %d is occupied", ErrIllegalMove, index)
	}

	b[index] = s
	return b, nil
}
