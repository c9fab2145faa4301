/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"embed"
	"net/http"
	"path"
	"strings"

	"github.com/julienschmidt/httprouter"
)

//go:embed assets/*
var assets embed.FS

var contentTypes = map[string]string{
	".css":  "text/css; charset=utf-8",
	".html": "text/html; charset=utf-8",
	".js":   "text/javascript; charset=utf-8",
	".svg":  "image/svg+xml",
}

func serveEmbedded(cfg *Config, name string, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		data, err := assets.ReadFile(name)
		if err != nil {
			errs <- err

			http.NotFound(w, r)

			return
		}

		if err := writeStatic(cfg, w, r, contentTypes[path.Ext(name)], data); err != nil {
			errs <- err
		}
	}
}

func serveHomePage(cfg *Config, errs chan<- error) httprouter.Handle {
	return serveEmbedded(cfg, "assets/index.html", errs)
}

func serveAssets(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		fname := "assets/" + strings.TrimPrefix(p.ByName("file"), "/")

		contentType, ok := contentTypes[strings.ToLower(path.Ext(fname))]
		if !ok {
			http.NotFound(w, r)

			return
		}

		data, err := assets.ReadFile(fname)
		if err != nil {
			http.NotFound(w, r)

			return
		}

		if err := writeStatic(cfg, w, r, contentType, data); err != nil {
			errs <- err
		}
	}
}

func serveHealthCheck(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		securityHeaders(cfg, w)

		_, err := w.Write([]byte("Ok\n"))
		if err != nil {
			errs <- err

			return
		}
	}
}

func serveRobots(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		data := `User-agent: *
Disallow: /online/
Disallow: /api/

User-agent: GPTBot
Disallow: /

User-agent: CCBot
Disallow: /`

		if err := writeStatic(cfg, w, r, "text/plain; charset=utf-8", []byte(data)); err != nil {
			errs <- err
		}
	}
}

func registerHome(cfg *Config, mux *httprouter.Router, errs chan<- error) {
	mux.GET(cfg.prefix+"/", serveHomePage(cfg, errs))
	mux.GET(cfg.prefix+"/assets/*file", serveAssets(cfg, errs))
	mux.GET(cfg.prefix+"/healthz", serveHealthCheck(cfg, errs))
	mux.GET(cfg.prefix+"/robots.txt", serveRobots(cfg, errs))
}
