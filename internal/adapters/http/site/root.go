// Package site serves the embedded upload page.
package site

import (
	"context"
	"net/http"
)

// Register attaches the upload page at the root of mux.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.Handle("GET /{$}", http.FileServer(FS()))
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(FS())))
}
