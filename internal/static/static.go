package static

import (
	"embed"
	"io/fs"
)

// Static assets embedded at build time
//
//go:embed *.css *.js *.html
var assets embed.FS

// GetAssets returns the embedded filesystem containing static assets
func GetAssets() fs.FS {
	return assets
}
