//go:build wireinject

package main

import "github.com/google/wire"

func initializePreview(path ConfigPath) (*Preview, func(), error) {
	wire.Build(ProviderSet)
	return nil, nil, nil
}
