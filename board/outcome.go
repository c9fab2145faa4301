/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package board

import "encoding/json"

// DrawLabel is how a draw is written on the wire and in storage.
const DrawLabel = "draw"

var lines = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Outcome is the result of evaluating a board. The zero value means undecided.
type Outcome struct {
	Winner Symbol
	Draw   bool
}

// Decided reports whether the game is over.
func (o Outcome) Decided() bool {
	return o.Draw || o.Winner != Empty
}

// String returns "X", "O", "draw", or "" when undecided.
func (o Outcome) String() string {
	switch {
	case o.Draw:
		return DrawLabel
	case o.Winner != Empty:
		return string(o.Winner)
	default:
		return ""
	}
}

// MarshalJSON encodes an undecided outcome as null.
func (o Outcome) MarshalJSON() ([]byte, error) {
	if !o.Decided() {
		return []byte("null"), nil
	}
	return json.Marshal(o.String())
}

// DetectOutcome checks the eight lines before considering a draw, so a full
// board containing a completed line is always a win.
func DetectOutcome(b Board) Outcome {
	for _, l := range lines {
		c := b[l[0]]
		if c != Empty && c == b[l[1]] && c == b[l[2]] {
			return Outcome{Winner: c}
		}
	}

	if b.Full() {
		return Outcome{Draw: true}
	}

	return Outcome{}
}
