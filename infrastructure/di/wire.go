//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"github.com/ndstyle/mindflow2/infrastructure/config"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideAWSConfig,
	ProvideSupabaseClient,
	ProvideStore,
	ProvideReadiness,
	ProvideEventPublisher,
	ProvideLLMProvider,
	ProvideGenerator,
	ProvideMetrics,
	ProvideTracerProvider,
	ProvideLimitsWatcher,
	ProvideMindMapService,
	ProvideCommandBus,
	ProvideQueryBus,
	ProvideVerifier,
	ProvideErrorHandler,
	ProvideRouter,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil
}
