//go:build wireinject

package main

import (
	"github.com/google/wire"
	"github.com/hayeah/goo"
)

func BuildApp(args Args, streams Streams) (*App, func(), error) {
	wire.Build(
		ProvideRoot,
		ProvideConfig,
		ProvideLogger,
		ProvideLanguages,
		ProvideWalker,
		ProvideBridge,
		ProvideDB,
		goo.ProvideDBMigrator,
		ProvideStore,
		ProvideExporter,
		ProvideSession,
		ProvideCounter,
		wire.Struct(new(App), "Args", "Streams", "Config", "Logger", "Session", "Counter"),
	)
	return nil, nil, nil
}
