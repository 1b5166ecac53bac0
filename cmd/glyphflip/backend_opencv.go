//go:build opencv

package main

import (
	"github.com/ironsheep/glyphflip/internal/config"
	"github.com/ironsheep/glyphflip/internal/cvflip"
	"github.com/ironsheep/glyphflip/internal/flip"
	"github.com/ironsheep/glyphflip/internal/logging"
	"github.com/ironsheep/glyphflip/internal/server"
)

func init() {
	backends[config.BackendOpenCV] = func(opts flip.Options, log *logging.Logger) server.Pipeline {
		return cvflip.New(opts, log)
	}
}
