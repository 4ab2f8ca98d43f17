// Package web embeds the single-page frontend so the API binary ships as
// one artifact.
package web

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static
var assets embed.FS

// FS returns the embedded frontend rooted at static/.
func FS() http.FileSystem {
	sub, err := fs.Sub(assets, "static")
	if err != nil {
		// embed paths are fixed at build time
		panic(err)
	}

	return http.FS(sub)
}
