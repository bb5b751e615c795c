package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ndstyle/mindflow2/application/ports"
	"github.com/ndstyle/mindflow2/domain/core/aggregates"
	domain "github.com/ndstyle/mindflow2/domain/services"
	"github.com/ndstyle/mindflow2/infrastructure/export"
	pkgerrors "github.com/ndstyle/mindflow2/pkg/errors"
)

const (
	entityType = "MINDMAP"
	metadataSK = "METADATA"
	ownerIndex = "GSI1"
)

// API is the subset of the DynamoDB client the store uses.
type API interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// mindMapItem is one document. GSI1 lists a user's documents by update
// time.
type mindMapItem struct {
	PK          string `dynamodbav:"PK"`
	SK          string `dynamodbav:"SK"`
	GSI1PK      string `dynamodbav:"GSI1PK"`
	GSI1SK      string `dynamodbav:"GSI1SK"`
	EntityType  string `dynamodbav:"EntityType"`
	MindMapID   string `dynamodbav:"MindMapID"`
	OwnerID     string `dynamodbav:"OwnerID"`
	Title       string `dynamodbav:"Title"`
	Description string `dynamodbav:"Description"`
	Document    string `dynamodbav:"Document"`
	NodeCount   int    `dynamodbav:"NodeCount"`
	EdgeCount   int    `dynamodbav:"EdgeCount"`
	CreatedAt   string `dynamodbav:"CreatedAt"`
	UpdatedAt   string `dynamodbav:"UpdatedAt"`
}

// Store is a MindMapStore on a single DynamoDB table.
type Store struct {
	client     API
	tableName  string
	normalizer *domain.Normalizer
	logger     *zap.Logger
	now        func() time.Time
}

func NewStore(client API, tableName string, logger *zap.Logger) *Store {
	return &Store{
		client:     client,
		tableName:  tableName,
		normalizer: domain.NewNormalizer(),
		logger:     logger,
		now:        time.Now,
	}
}

func mindMapKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("MINDMAP#%s", id)},
		"SK": &types.AttributeValueMemberS{Value: metadataSK},
	}
}

func (s *Store) Save(ctx context.Context, ownerID string, m *aggregates.MindMap, title, description string) (string, error) {
	doc, err := export.ToJSON(m)
	if err != nil {
		return "", pkgerrors.NewInternalError("failed to encode mind map").WithCause(err)
	}

	now := s.now().UTC()
	id := m.ID()
	insert := id == ""
	createdAt := now
	if insert {
		id = uuid.New().String()
	} else {
		existing, err := s.get(ctx, id)
		if err != nil {
			return "", err
		}
		if existing.OwnerID != ownerID {
			return "", pkgerrors.NewForbiddenError("mind map belongs to another user")
		}
		if t, perr := time.Parse(time.RFC3339Nano, existing.CreatedAt); perr == nil {
			createdAt = t
		}
	}

	item := mindMapItem{
		PK:          fmt.Sprintf("MINDMAP#%s", id),
		SK:          metadataSK,
		GSI1PK:      fmt.Sprintf("USER#%s", ownerID),
		GSI1SK:      fmt.Sprintf("UPDATED#%s", now.Format(time.RFC3339Nano)),
		EntityType:  entityType,
		MindMapID:   id,
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		Document:    doc,
		NodeCount:   m.NodeCount(),
		EdgeCount:   m.EdgeCount(),
		CreatedAt:   createdAt.Format(time.RFC3339Nano),
		UpdatedAt:   now.Format(time.RFC3339Nano),
	}
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return "", pkgerrors.NewInternalError("failed to marshal mind map").WithCause(err)
	}

	// New documents must not overwrite anything; updates must still belong
	// to the owner when the write lands.
	condition := expression.Name("PK").AttributeNotExists()
	if !insert {
		condition = expression.Name("OwnerID").Equal(expression.Value(ownerID))
	}
	expr, err := expression.NewBuilder().WithCondition(condition).Build()
	if err != nil {
		return "", pkgerrors.NewInternalError("failed to build condition").WithCause(err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(s.tableName),
		Item:                      av,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			if insert {
				return "", pkgerrors.NewInternalError("mind map id collision")
			}
			return "", pkgerrors.NewForbiddenError("mind map belongs to another user")
		}
		s.logger.Error("Failed to save mind map to DynamoDB", zap.String("mindmap_id", id), zap.Error(err))
		return "", mapError("save mind map", err)
	}

	s.logger.Debug("Saved mind map to DynamoDB",
		zap.String("mindmap_id", id),
		zap.String("owner_id", ownerID),
		zap.Int("nodes", item.NodeCount),
	)
	return id, nil
}

func (s *Store) Load(ctx context.Context, id string) (*ports.StoredMindMap, error) {
	item, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	m, _, err := s.normalizer.NormalizeJSON([]byte(item.Document))
	if err != nil {
		return nil, pkgerrors.NewInternalError("stored mind map is corrupt").WithCause(err)
	}
	m.AssignID(item.MindMapID)

	created, _ := time.Parse(time.RFC3339Nano, item.CreatedAt)
	updated, _ := time.Parse(time.RFC3339Nano, item.UpdatedAt)
	return &ports.StoredMindMap{
		ID:          item.MindMapID,
		OwnerID:     item.OwnerID,
		Title:       item.Title,
		Description: item.Description,
		MindMap:     m,
		CreatedAt:   created,
		UpdatedAt:   updated,
	}, nil
}

func (s *Store) List(ctx context.Context, ownerID string) ([]ports.Summary, error) {
	keyExpr := expression.Key("GSI1PK").Equal(expression.Value(fmt.Sprintf("USER#%s", ownerID))).
		And(expression.Key("GSI1SK").BeginsWith("UPDATED#"))
	expr, err := expression.NewBuilder().
		WithKeyCondition(keyExpr).
		WithProjection(expression.NamesList(
			expression.Name("MindMapID"),
			expression.Name("Title"),
			expression.Name("UpdatedAt"),
		)).
		Build()
	if err != nil {
		return nil, pkgerrors.NewInternalError("failed to build query").WithCause(err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(s.tableName),
		IndexName:                 aws.String(ownerIndex),
		KeyConditionExpression:    expr.KeyCondition(),
		ProjectionExpression:      expr.Projection(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(false),
	}

	out := make([]ports.Summary, 0)
	for {
		result, err := s.client.Query(ctx, input)
		if err != nil {
			return nil, mapError("list mind maps", err)
		}
		var items []mindMapItem
		if err := attributevalue.UnmarshalListOfMaps(result.Items, &items); err != nil {
			return nil, pkgerrors.NewInternalError("failed to unmarshal mind maps").WithCause(err)
		}
		for _, item := range items {
			updated, _ := time.Parse(time.RFC3339Nano, item.UpdatedAt)
			out = append(out, ports.Summary{ID: item.MindMapID, Title: item.Title, UpdatedAt: updated})
		}
		if len(result.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = result.LastEvaluatedKey
	}
	return out, nil
}

func (s *Store) Delete(ctx context.Context, id, ownerID string) error {
	expr, err := expression.NewBuilder().
		WithCondition(expression.Name("OwnerID").Equal(expression.Value(ownerID))).
		Build()
	if err != nil {
		return pkgerrors.NewInternalError("failed to build condition").WithCause(err)
	}

	_, err = s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                 aws.String(s.tableName),
		Key:                       mindMapKey(id),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err == nil {
		return nil
	}

	var conditionFailed *types.ConditionalCheckFailedException
	if !errors.As(err, &conditionFailed) {
		return mapError("delete mind map", err)
	}
	// The condition fails both for a missing item and for another owner.
	if _, gerr := s.get(ctx, id); gerr != nil {
		return gerr
	}
	return pkgerrors.NewForbiddenError("mind map belongs to another user")
}

// Ping reads a key that never exists, which checks credentials and table.
func (s *Store) Ping(ctx context.Context) error {
	_, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key:       mindMapKey("__ping__"),
	})
	if err != nil {
		return mapError("ping", err)
	}
	return nil
}

func (s *Store) get(ctx context.Context, id string) (*mindMapItem, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.tableName),
		Key:            mindMapKey(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, mapError("load mind map", err)
	}
	if len(result.Item) == 0 {
		return nil, pkgerrors.NewNotFoundError("mind map")
	}
	var item mindMapItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, pkgerrors.NewInternalError("failed to unmarshal mind map").WithCause(err)
	}
	return &item, nil
}

// mapError turns DynamoDB API errors into AppErrors.
func mapError(operation string, err error) error {
	var ae smithy.APIError
	if !errors.As(err, &ae) {
		return pkgerrors.NewDatabaseError(operation, err)
	}
	switch code := ae.ErrorCode(); {
	case code == "ResourceNotFoundException":
		return pkgerrors.NewUnavailableError("dynamodb").WithCause(err).WithDetail("operation", operation)
	case code == "ProvisionedThroughputExceededException",
		code == "RequestLimitExceeded",
		strings.HasPrefix(code, "Throttling"):
		return pkgerrors.NewUnavailableError("dynamodb").WithCause(err).WithDetail("throttled", true)
	default:
		return pkgerrors.NewDatabaseError(operation, err).WithCode(code)
	}
}
