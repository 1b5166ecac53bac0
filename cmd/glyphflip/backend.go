package main

import (
	"fmt"
	"sort"

	"github.com/ironsheep/glyphflip/internal/config"
	"github.com/ironsheep/glyphflip/internal/flip"
	"github.com/ironsheep/glyphflip/internal/logging"
	"github.com/ironsheep/glyphflip/internal/server"
)

// pipeline is what every backend offers the commands.
type pipeline = server.Pipeline

// backends holds the compiled-in backends. The opencv build tag adds one.
var backends = map[string]server.Backend{
	config.BackendNative: server.NativeBackend,
}

func lookupBackend(name string) (server.Backend, error) {
	factory, ok := backends[name]
	if !ok {
		return nil, fmt.Errorf("backend %q is not available in this build (have %v)", name, backendNames())
	}
	return factory, nil
}

func newPipeline(name string, opts flip.Options, log *logging.Logger) (pipeline, error) {
	factory, err := lookupBackend(name)
	if err != nil {
		return nil, err
	}
	return factory(opts, log.With(name)), nil
}

func backendNames() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
