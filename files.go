/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"fmt"
	"net/http"
	"time"
)

func humanReadableSize(bytes int64) string {
	const unit int64 = 1000
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := unit, 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB",
		float64(bytes)/float64(div),
		"kMGTPE"[exp])
}

// writeStatic writes an embedded file with the caching headers shared by
// every static route, then logs what was sent.
func writeStatic(cfg *Config, w http.ResponseWriter, r *http.Request, contentType string, data []byte) error {
	startTime := time.Now()

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Header().Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
	securityHeaders(cfg, w)

	written, err := w.Write(data)
	if err != nil {
		return err
	}

	logf(cfg, "SERVE: %s (%s) to %s in %s",
		r.URL.Path,
		humanReadableSize(int64(written)),
		realIP(r),
		time.Since(startTime).Round(time.Microsecond),
	)

	return nil
}
