package main

import (
	"github.com/larsks/crosshairs/internal/cli"
	_ "github.com/larsks/crosshairs/internal/logsetup"
	"github.com/larsks/crosshairs/internal/manifest"
)

func main() {
	cli.StandardMain(
		func() cli.Configurable { return manifest.NewConfig() },
		manifest.NewManifestHandler(),
	)
}
