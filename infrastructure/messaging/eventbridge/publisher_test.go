package eventbridge

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ndstyle/mindflow2/domain/events"
)

type MockEventBridge struct {
	mock.Mock
}

func (m *MockEventBridge) PutEvents(ctx context.Context, params *eventbridge.PutEventsInput, optFns ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*eventbridge.PutEventsOutput), args.Error(1)
}

func someEvents(n int) []events.DomainEvent {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]events.DomainEvent, n)
	for i := range out {
		out[i] = events.NewNodeMoved("map-1", i+1, "node-1", float64(i), 0, at)
	}
	return out
}

func TestPublish_Batches(t *testing.T) {
	client := new(MockEventBridge)
	client.On("PutEvents", mock.Anything, mock.MatchedBy(func(in *eventbridge.PutEventsInput) bool {
		return len(in.Entries) == 10
	})).Return(&eventbridge.PutEventsOutput{}, nil).Once()
	client.On("PutEvents", mock.Anything, mock.MatchedBy(func(in *eventbridge.PutEventsInput) bool {
		e := in.Entries[0]
		return len(in.Entries) == 2 &&
			aws.ToString(e.Source) == Source &&
			aws.ToString(e.EventBusName) == "bus" &&
			aws.ToString(e.DetailType) == events.TypeNodeMoved
	})).Return(&eventbridge.PutEventsOutput{}, nil).Once()

	err := NewPublisher(client, "bus", zap.NewNop()).Publish(context.Background(), someEvents(12)...)

	require.NoError(t, err)
	client.AssertExpectations(t)
}

func TestPublish_FailedEntries(t *testing.T) {
	client := new(MockEventBridge)
	client.On("PutEvents", mock.Anything, mock.Anything).Return(&eventbridge.PutEventsOutput{
		FailedEntryCount: 1,
		Entries: []types.PutEventsResultEntry{
			{EventId: aws.String("ok")},
			{ErrorCode: aws.String("InternalFailure"), ErrorMessage: aws.String("try again")},
		},
	}, nil)

	err := NewPublisher(client, "bus", zap.NewNop()).Publish(context.Background(), someEvents(2)...)

	assert.EqualError(t, err, "1 events failed to publish")
}

func TestPublish_ClientError(t *testing.T) {
	client := new(MockEventBridge)
	client.On("PutEvents", mock.Anything, mock.Anything).Return(nil, errors.New("no credentials"))

	err := NewPublisher(client, "bus", zap.NewNop()).Publish(context.Background(), someEvents(1)...)

	assert.ErrorContains(t, err, "no credentials")
}

func TestPublish_Nothing(t *testing.T) {
	client := new(MockEventBridge)
	require.NoError(t, NewPublisher(client, "bus", zap.NewNop()).Publish(context.Background()))
	client.AssertNotCalled(t, "PutEvents", mock.Anything, mock.Anything)
	require.NoError(t, NewLogPublisher(zap.NewNop()).Publish(context.Background(), someEvents(3)...))
}
