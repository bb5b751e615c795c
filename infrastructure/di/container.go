// Package di wires the application together with google/wire.
package di

import (
	"context"

	"go.uber.org/zap"

	"github.com/ndstyle/mindflow2/application/commands/bus"
	"github.com/ndstyle/mindflow2/application/ports"
	querybus "github.com/ndstyle/mindflow2/application/queries/bus"
	"github.com/ndstyle/mindflow2/application/services"
	"github.com/ndstyle/mindflow2/infrastructure/config"
	"github.com/ndstyle/mindflow2/infrastructure/observability"
	"github.com/ndstyle/mindflow2/interfaces/http/rest"
)

// Container holds all application dependencies
type Container struct {
	Config        *config.Config
	Logger        *zap.Logger
	Store         ports.MindMapStore
	Publisher     ports.EventPublisher
	Generator     ports.Generator
	Metrics       *observability.Collector
	Tracing       *observability.TracerProvider
	LimitsWatcher *config.LimitsWatcher
	Service       *services.MindMapService
	CommandBus    *bus.CommandBus
	QueryBus      *querybus.QueryBus
	Router        *rest.Router
}

// Shutdown stops background work and flushes telemetry.
func (c *Container) Shutdown(ctx context.Context) error {
	if c.LimitsWatcher != nil {
		c.LimitsWatcher.Stop()
	}
	var err error
	if c.Tracing != nil {
		err = c.Tracing.Shutdown(ctx)
	}
	_ = c.Logger.Sync()
	return err
}
