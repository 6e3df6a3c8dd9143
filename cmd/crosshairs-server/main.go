package main

import (
	"github.com/larsks/crosshairs/internal/cli"
	"github.com/larsks/crosshairs/internal/gallery"
	_ "github.com/larsks/crosshairs/internal/logsetup"
)

func main() {
	cli.StandardMain(
		func() cli.Configurable { return gallery.NewConfig() },
		gallery.NewGalleryHandler(),
	)
}
