// Package assets embeds the default content tables shipped with the server.
package assets

import (
	"embed"
	"io/fs"
)

//go:embed content/*.yaml
var files embed.FS

// Content returns the embedded content directory (one YAML file per table).
func Content() fs.FS {
	sub, err := fs.Sub(files, "content")
	if err != nil {
		// The directory is part of the embed pattern above.
		panic(err)
	}
	return sub
}
