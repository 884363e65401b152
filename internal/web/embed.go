// Package web embeds the client-facing static assets (the landing page
// and the human-readable API docs page) into the server binary.
// Grounded on golivekit's client/embed.go: the same embed.FS-plus-fs.Sub
// pattern, generalized from a single JS asset directory to the handful
// of static pages this server's non-core HTTP surface serves.
package web

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed assets/*.html
var assets embed.FS

// Assets returns the embedded filesystem rooted at the asset directory.
func Assets() fs.FS {
	fsys, err := fs.Sub(assets, "assets")
	if err != nil {
		panic(err)
	}
	return fsys
}

// Handler serves the embedded assets directly, index.html at "/".
func Handler() http.Handler {
	return http.FileServer(http.FS(Assets()))
}

// MustGetFile returns the contents of an embedded asset, panicking if
// it does not exist. Intended for the handful of named pages
// (docs.html) served from a dedicated route rather than the file server.
func MustGetFile(name string) []byte {
	data, err := assets.ReadFile("assets/" + name)
	if err != nil {
		panic(err)
	}
	return data
}
