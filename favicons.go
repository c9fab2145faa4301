/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"embed"
	"net/http"

	"github.com/julienschmidt/httprouter"
)

//go:embed favicons/*
var favicons embed.FS

func getFavicon(cfg *Config) string {
	return `<link rel="icon" type="image/svg+xml" href="` + cfg.prefix + `/favicon.svg">
	<meta name="theme-color" content="#1d2330">`
}

func serveFavicon(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		data, err := favicons.ReadFile("favicons/favicon.svg")
		if err != nil {
			errs <- err

			http.NotFound(w, r)

			return
		}

		if err := writeStatic(cfg, w, r, "image/svg+xml", data); err != nil {
			errs <- err
		}
	}
}
