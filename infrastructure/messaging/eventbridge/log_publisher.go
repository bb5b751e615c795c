package eventbridge

import (
	"context"

	"go.uber.org/zap"

	"github.com/ndstyle/mindflow2/domain/events"
)

// LogPublisher writes events to the log. It stands in for EventBridge when
// no bus is configured.
type LogPublisher struct {
	logger *zap.Logger
}

func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, evts ...events.DomainEvent) error {
	for _, e := range evts {
		p.logger.Info("Domain event",
			zap.String("event_type", e.GetEventType()),
			zap.String("mindmap_id", e.GetAggregateID()),
			zap.Int("version", e.GetVersion()),
		)
	}
	return nil
}
