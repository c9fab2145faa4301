/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package session coordinates online two-player games.
//
// A Registry maps caller-chosen ids to Sessions. Each Session is a small
// state machine (AwaitingSecondPlayer, AwaitingSymbolChoice, InProgress,
// Finished) driven by a pure reducer; a per-session mutex serializes
// transitions, and the messages a transition produces are handed to each
// participant's Peer before the next transition may begin.
//
// Sessions that finish or lose a participant are removed from the Registry,
// and finished games are passed to the configured Recorder.
package session
