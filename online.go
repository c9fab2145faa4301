/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Online play
//
// Two browsers share a game id and play over a websocket:
// - /online                  redirects to a fresh random game id
// - /online/:gameid          serves the client page
// - /online/:gameid/ws       websocket that may only join :gameid
// - /online/:gameid/qr       PNG QR code for the game URL, backed by go-qrcode
// - /ws                      websocket whose game is named by the join message
//
// The first player to join a game id is the host, the second the guest.

package main

import (
	"net/http"
	"strings"

	"github.com/Seednode/tictactoe/gateway"
	"github.com/Seednode/tictactoe/protocol"
	"github.com/Seednode/tictactoe/session"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

const qrSize = 320

func validGameID(id string) bool {
	return id != "" && len(id) <= protocol.MaxGameIDLength
}

// gameURL rebuilds the public URL of a game page from a request for one of
// its sub-resources.
func gameURL(r *http.Request, suffix string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "http" || proto == "https" {
		scheme = proto
	}

	return scheme + "://" + r.Host + strings.TrimSuffix(r.URL.Path, suffix)
}

func qrHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if !validGameID(ps.ByName("gameid")) {
		http.Error(w, "invalid game id", http.StatusBadRequest)
		return
	}

	png, err := qrcode.Encode(gameURL(r, "/qr"), qrcode.Medium, qrSize)
	if err != nil {
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(png)
}

// redirectNewGame picks an id no live session is using and sends the
// browser to its page.
func redirectNewGame(cfg *Config, registry *session.Registry) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		gameID := registry.NewID()
		logf(cfg, "GAMES: Assigned game id %s to %s", gameID, realIP(r))
		http.Redirect(w, r, cfg.prefix+"/online/"+gameID, http.StatusTemporaryRedirect)
	}
}

func serveGamePage(cfg *Config, errs chan<- error) httprouter.Handle {
	page := serveEmbedded(cfg, "assets/online.html", errs)

	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if !validGameID(ps.ByName("gameid")) {
			http.Error(w, "invalid game id", http.StatusBadRequest)
			return
		}

		page(w, r, ps)
	}
}

func serveGameWS(gw *gateway.Gateway, pinned bool) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		gameID := ""
		if pinned {
			gameID = ps.ByName("gameid")
			if !validGameID(gameID) {
				http.Error(w, "invalid game id", http.StatusBadRequest)
				return
			}
		}

		gw.ServeWS(w, r, gameID)
	}
}

func registerOnlineGame(cfg *Config, mux *httprouter.Router, registry *session.Registry, gw *gateway.Gateway, errs chan<- error) {
	mux.GET(cfg.prefix+"/online", redirectNewGame(cfg, registry))
	mux.GET(cfg.prefix+"/online/:gameid", serveGamePage(cfg, errs))
	mux.GET(cfg.prefix+"/online/:gameid/ws", serveGameWS(gw, true))
	mux.GET(cfg.prefix+"/online/:gameid/qr", qrHandler)
	mux.GET(cfg.prefix+"/ws", serveGameWS(gw, false))
}
