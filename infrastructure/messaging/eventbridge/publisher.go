package eventbridge

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"go.uber.org/zap"

	"github.com/ndstyle/mindflow2/domain/events"
)

// Source is the EventBridge source of every mind map event.
const Source = "mindflow.mindmaps"

// maxBatch is the PutEvents entry limit.
const maxBatch = 10

// API is the subset of the EventBridge client the publisher uses.
type API interface {
	PutEvents(ctx context.Context, params *eventbridge.PutEventsInput, optFns ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error)
}

// Publisher forwards domain events to an EventBridge bus.
type Publisher struct {
	client       API
	eventBusName string
	logger       *zap.Logger
}

func NewPublisher(client API, eventBusName string, logger *zap.Logger) *Publisher {
	return &Publisher{client: client, eventBusName: eventBusName, logger: logger}
}

// Publish sends evts in batches of ten.
func (p *Publisher) Publish(ctx context.Context, evts ...events.DomainEvent) error {
	for i := 0; i < len(evts); i += maxBatch {
		end := i + maxBatch
		if end > len(evts) {
			end = len(evts)
		}
		if err := p.publishBatch(ctx, evts[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (p *Publisher) publishBatch(ctx context.Context, batch []events.DomainEvent) error {
	entries := make([]types.PutEventsRequestEntry, 0, len(batch))
	sent := make([]events.DomainEvent, 0, len(batch))
	for _, event := range batch {
		detail, err := json.Marshal(event)
		if err != nil {
			p.logger.Error("Failed to marshal event", zap.String("event_type", event.GetEventType()), zap.Error(err))
			continue
		}
		entries = append(entries, types.PutEventsRequestEntry{
			EventBusName: aws.String(p.eventBusName),
			Source:       aws.String(Source),
			DetailType:   aws.String(event.GetEventType()),
			Detail:       aws.String(string(detail)),
			Time:         aws.Time(event.GetTimestamp()),
		})
		sent = append(sent, event)
	}
	if len(entries) == 0 {
		return nil
	}

	result, err := p.client.PutEvents(ctx, &eventbridge.PutEventsInput{Entries: entries})
	if err != nil {
		return fmt.Errorf("failed to publish events to EventBridge: %w", err)
	}
	if result.FailedEntryCount > 0 {
		for i, entry := range result.Entries {
			if entry.ErrorCode != nil && i < len(sent) {
				p.logger.Error("Failed to publish event",
					zap.String("event_type", sent[i].GetEventType()),
					zap.String("error_code", aws.ToString(entry.ErrorCode)),
					zap.String("error_message", aws.ToString(entry.ErrorMessage)),
				)
			}
		}
		return fmt.Errorf("%d events failed to publish", result.FailedEntryCount)
	}

	p.logger.Debug("Events published to EventBridge",
		zap.Int("count", len(entries)),
		zap.String("event_bus", p.eventBusName),
	)
	return nil
}
