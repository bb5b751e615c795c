package dynamodb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ndstyle/mindflow2/domain/core/aggregates"
	pkgerrors "github.com/ndstyle/mindflow2/pkg/errors"
)

type MockDynamoDB struct {
	mock.Mock
}

func (m *MockDynamoDB) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.PutItemOutput), args.Error(1)
}

func (m *MockDynamoDB) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.GetItemOutput), args.Error(1)
}

func (m *MockDynamoDB) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.QueryOutput), args.Error(1)
}

func (m *MockDynamoDB) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.DeleteItemOutput), args.Error(1)
}

var fixedNow = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

func newTestStore(client API) *Store {
	s := NewStore(client, "mindflow", zap.NewNop())
	s.now = func() time.Time { return fixedNow }
	return s
}

func storedItem(t *testing.T, owner string) map[string]types.AttributeValue {
	t.Helper()
	av, err := attributevalue.MarshalMap(mindMapItem{
		PK:        "MINDMAP#map-1",
		SK:        metadataSK,
		MindMapID: "map-1",
		OwnerID:   owner,
		Title:     "Plans",
		Document:  `{"nodes":[{"id":"1","label":"Root"},{"id":"2","label":"Leaf"}],"edges":[{"source":"1","target":"2"}]}`,
		CreatedAt: "2024-01-01T00:00:00Z",
		UpdatedAt: "2024-02-01T00:00:00Z",
	})
	require.NoError(t, err)
	return av
}

func TestSave_InsertIsConditional(t *testing.T) {
	client := new(MockDynamoDB)
	client.On("PutItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.PutItemInput) bool {
		owner, ok := in.Item["GSI1PK"].(*types.AttributeValueMemberS)
		return aws.ToString(in.TableName) == "mindflow" &&
			ok && owner.Value == "USER#alice" &&
			in.ConditionExpression != nil
	})).Return(&dynamodb.PutItemOutput{}, nil)
	store := newTestStore(client)

	id, err := store.Save(context.Background(), "alice", aggregates.NewDefaultMindMap(), "Plans", "")

	require.NoError(t, err)
	assert.NotEmpty(t, id)
	client.AssertExpectations(t)
	client.AssertNotCalled(t, "GetItem", mock.Anything, mock.Anything)
}

func TestSave_UpdateRequiresOwner(t *testing.T) {
	client := new(MockDynamoDB)
	client.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{Item: storedItem(t, "alice")}, nil)
	store := newTestStore(client)
	m := aggregates.NewDefaultMindMap()
	m.AssignID("map-1")

	_, err := store.Save(context.Background(), "mallory", m, "t", "")

	assert.True(t, pkgerrors.IsForbidden(err))
	client.AssertNotCalled(t, "PutItem", mock.Anything, mock.Anything)
}

func TestSave_UpdateKeepsCreatedAt(t *testing.T) {
	client := new(MockDynamoDB)
	client.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{Item: storedItem(t, "alice")}, nil)
	client.On("PutItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.PutItemInput) bool {
		var item mindMapItem
		if err := attributevalue.UnmarshalMap(in.Item, &item); err != nil {
			return false
		}
		return item.MindMapID == "map-1" &&
			item.CreatedAt == "2024-01-01T00:00:00Z" &&
			item.UpdatedAt == fixedNow.Format(time.RFC3339Nano)
	})).Return(&dynamodb.PutItemOutput{}, nil)
	store := newTestStore(client)
	m := aggregates.NewDefaultMindMap()
	m.AssignID("map-1")

	id, err := store.Save(context.Background(), "alice", m, "t", "")

	require.NoError(t, err)
	assert.Equal(t, "map-1", id)
	client.AssertExpectations(t)
}

func TestLoad(t *testing.T) {
	client := new(MockDynamoDB)
	client.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{Item: storedItem(t, "alice")}, nil).Once()
	client.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{}, nil).Once()
	store := newTestStore(client)

	doc, err := store.Load(context.Background(), "map-1")
	require.NoError(t, err)
	assert.Equal(t, "alice", doc.OwnerID)
	assert.Equal(t, "map-1", doc.MindMap.ID())
	assert.Equal(t, 2, doc.MindMap.NodeCount())
	assert.Equal(t, 1, doc.MindMap.EdgeCount())
	assert.Equal(t, time.February, doc.UpdatedAt.Month())

	_, err = store.Load(context.Background(), "missing")
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestList_Paginates(t *testing.T) {
	page := func(id string) map[string]types.AttributeValue {
		av, _ := attributevalue.MarshalMap(mindMapItem{MindMapID: id, Title: id, UpdatedAt: "2024-01-01T00:00:00Z"})
		return av
	}
	cursor := map[string]types.AttributeValue{"PK": &types.AttributeValueMemberS{Value: "x"}}

	client := new(MockDynamoDB)
	client.On("Query", mock.Anything, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
		return in.ExclusiveStartKey == nil && !aws.ToBool(in.ScanIndexForward) && aws.ToString(in.IndexName) == ownerIndex
	})).Return(&dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{page("b")}, LastEvaluatedKey: cursor}, nil).Once()
	client.On("Query", mock.Anything, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
		return in.ExclusiveStartKey != nil
	})).Return(&dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{page("a")}}, nil).Once()
	store := newTestStore(client)

	list, err := store.List(context.Background(), "alice")

	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].ID)
	assert.Equal(t, "a", list[1].ID)
}

func TestDelete(t *testing.T) {
	conditionFailed := &types.ConditionalCheckFailedException{Message: aws.String("condition failed")}

	t.Run("owner", func(t *testing.T) {
		client := new(MockDynamoDB)
		client.On("DeleteItem", mock.Anything, mock.Anything).Return(&dynamodb.DeleteItemOutput{}, nil)
		assert.NoError(t, newTestStore(client).Delete(context.Background(), "map-1", "alice"))
	})

	t.Run("other owner", func(t *testing.T) {
		client := new(MockDynamoDB)
		client.On("DeleteItem", mock.Anything, mock.Anything).Return(nil, conditionFailed)
		client.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{Item: storedItem(t, "alice")}, nil)
		err := newTestStore(client).Delete(context.Background(), "map-1", "bob")
		assert.True(t, pkgerrors.IsForbidden(err))
	})

	t.Run("missing", func(t *testing.T) {
		client := new(MockDynamoDB)
		client.On("DeleteItem", mock.Anything, mock.Anything).Return(nil, conditionFailed)
		client.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{}, nil)
		err := newTestStore(client).Delete(context.Background(), "map-1", "bob")
		assert.True(t, pkgerrors.IsNotFound(err))
	})
}

func TestMapError(t *testing.T) {
	throttled := mapError("list", &smithy.GenericAPIError{Code: "ThrottlingException", Message: "slow down"})
	assert.True(t, pkgerrors.IsType(throttled, pkgerrors.ErrorTypeUnavailable))

	missingTable := mapError("list", &smithy.GenericAPIError{Code: "ResourceNotFoundException"})
	assert.True(t, pkgerrors.IsType(missingTable, pkgerrors.ErrorTypeUnavailable))

	other := mapError("list", &smithy.GenericAPIError{Code: "ValidationException"})
	assert.True(t, pkgerrors.IsType(other, pkgerrors.ErrorTypeDatabase))
	assert.Equal(t, "ValidationException", pkgerrors.GetAppError(other).Code)

	plain := mapError("list", errors.New("connection reset"))
	assert.True(t, pkgerrors.IsType(plain, pkgerrors.ErrorTypeDatabase))
}
