package db

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"github.com/spacesedan/momentflow/config"
	"github.com/spacesedan/momentflow/internal/apperr"
	"github.com/spacesedan/momentflow/internal/clients"
	"github.com/spacesedan/momentflow/internal/models"
)

const (
	// MAX_TRANSACTION_ITEMS is the DynamoDB TransactWriteItems limit.
	MAX_TRANSACTION_ITEMS = 100
	DAY_ID_LAYOUT         = "2006-01-02"
)

type TransactWriter interface {
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

// Conn is one acquired store connection. Close releases it.
type Conn interface {
	TransactWriter
	Close()
}

type Connector interface {
	Connect(ctx context.Context) (Conn, error)
}

// DynamoConnector opens a DynamoDB client with its own transport per
// store call so the connection pool is dropped on release.
type DynamoConnector struct {
	awsCfg   aws.Config
	endpoint string
}

func NewDynamoConnector(awsCfg aws.Config, endpoint string) *DynamoConnector {
	return &DynamoConnector{awsCfg: awsCfg, endpoint: endpoint}
}

type dynamoConn struct {
	*dynamodb.Client
	transport *http.Transport
}

func (c *dynamoConn) Close() {
	c.transport.CloseIdleConnections()
}

func (d *DynamoConnector) Connect(_ context.Context) (Conn, error) {
	transport, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		return nil, fmt.Errorf("[DynamoDB] unexpected default transport %T", http.DefaultTransport)
	}
	transport = transport.Clone()
	client := clients.NewDynamoDBClient(d.awsCfg, d.endpoint, &http.Client{Transport: transport})
	return &dynamoConn{Client: client, transport: transport}, nil
}

// MomentStore writes ranked moments to the "{database}.{collection}" table.
type MomentStore struct {
	connector Connector
	table     string
	now       func() time.Time
	newID     func() string
}

func NewMomentStore(connector Connector, cfg config.StoreConfig) *MomentStore {
	return &MomentStore{
		connector: connector,
		table:     TableName(cfg),
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

func TableName(cfg config.StoreConfig) string {
	database, collection := cfg.Database, cfg.Collection
	if database == "" {
		database = config.DEFAULT_STORE_DATABASE
	}
	if collection == "" {
		collection = config.DEFAULT_STORE_COLLECTION
	}
	return database + "." + collection
}

func (s *MomentStore) Table() string { return s.table }

// Store persists records in one transaction and reports what was written.
func (s *MomentStore) Store(ctx context.Context, records []models.RankedRecord) (models.StoreResult, error) {
	_, result, err := s.StoreMoments(ctx, records)
	return result, err
}

// StoreMoments is Store that also returns the written documents.
func (s *MomentStore) StoreMoments(ctx context.Context, records []models.RankedRecord) ([]models.StoredMoment, models.StoreResult, error) {
	if len(records) == 0 {
		return nil, models.StoreResult{}, apperr.InvalidInput("store", "no moments to store")
	}
	if len(records) > MAX_TRANSACTION_ITEMS {
		return nil, models.StoreResult{}, apperr.InvalidInput("store",
			fmt.Sprintf("%d moments exceed the %d item transaction limit", len(records), MAX_TRANSACTION_ITEMS))
	}

	storedAt := s.now().UTC()
	result := models.StoreResult{
		BatchID:  s.newID(),
		DayID:    storedAt.Format(DAY_ID_LAYOUT),
		StoredAt: storedAt,
		IDs:      make([]string, 0, len(records)),
	}

	moments := make([]models.StoredMoment, 0, len(records))
	items := make([]types.TransactWriteItem, 0, len(records))
	for _, rec := range records {
		moment := models.StoredMoment{
			MomentID:     s.newID(),
			BatchID:      result.BatchID,
			DayID:        result.DayID,
			RankedRecord: rec,
			StoredAt:     storedAt,
		}
		item, err := attributevalue.MarshalMap(moment)
		if err != nil {
			return nil, models.StoreResult{}, apperr.Storage("failed to encode moment "+rec.ID, err)
		}
		items = append(items, types.TransactWriteItem{
			Put: &types.Put{
				TableName:           aws.String(s.table),
				Item:                item,
				ConditionExpression: aws.String("attribute_not_exists(moment_id)"),
			},
		})
		moments = append(moments, moment)
		result.IDs = append(result.IDs, moment.MomentID)
	}

	conn, err := s.connector.Connect(ctx)
	if err != nil {
		return nil, models.StoreResult{}, apperr.Storage("failed to connect", err)
	}
	defer conn.Close()

	_, err = conn.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems:      items,
		ClientRequestToken: aws.String(result.BatchID),
	})
	if err != nil {
		slog.Error("[DynamoDB] Failed to store moments",
			slog.String("table", s.table),
			slog.Int("count", len(items)),
			slog.String("error", err.Error()))
		return nil, models.StoreResult{}, apperr.Storage("failed to write moments", err)
	}

	result.StoredCount = len(moments)
	slog.Info("[DynamoDB] Successfully stored moments",
		slog.String("table", s.table),
		slog.String("day_id", result.DayID),
		slog.Int("count", result.StoredCount))
	return moments, result, nil
}
