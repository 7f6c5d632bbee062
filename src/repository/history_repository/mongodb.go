package history_repository

import (
	"context"
	"fmt"
	"time"

	"github.com/endpointops/android-app-importer/src/entity/logger"
	"github.com/endpointops/android-app-importer/src/use_case"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("history_repository")

type mongoDB struct {
	col *mongo.Collection
}

type mongoDBOutcome struct {
	RunID          string    `bson:"runId"`
	RecordIndex    int       `bson:"recordIndex"`
	Name           string    `bson:"name"`
	StoreURL       string    `bson:"storeUrl"`
	Publisher      string    `bson:"publisher"`
	MinimumVersion string    `bson:"minimumVersion"`
	Success        bool      `bson:"success"`
	Error          string    `bson:"error,omitempty"`
	CreateDateTime time.Time `bson:"createdAt"`
}

func newMongoDBOutcome(outcome use_case.ImportOutcome) mongoDBOutcome {
	return mongoDBOutcome{
		RunID:          outcome.RunID,
		RecordIndex:    outcome.RecordIndex,
		Name:           outcome.Record.Name,
		StoreURL:       outcome.Record.URL,
		Publisher:      outcome.Record.Publisher,
		MinimumVersion: string(outcome.Record.MinimumAndroidVersion),
		Success:        outcome.Success,
		Error:          outcome.Error,
	}
}

func (m mongoDB) Create(ctx context.Context, outcome use_case.ImportOutcome) error {
	ctx, span := tracer.Start(ctx, "history_repository.Create")
	defer span.End()

	doc := newMongoDBOutcome(outcome)
	doc.CreateDateTime = time.Now()
	_, err := m.col.InsertOne(ctx, doc)

	if err != nil {
		zap.L().Error("error while saving outcome", logger.WithTraceId(ctx), zap.Any("outcome", outcome), zap.Any("error", err))
		span.SetStatus(codes.Error, fmt.Sprintf("%s", err))
		return fmt.Errorf("%w", use_case.ErrSavingOutcome)
	}

	return nil
}

func (m mongoDB) HealthCheck(ctx context.Context) error {
	return m.col.Database().Client().Ping(ctx, readpref.Primary())
}

func NewMongoDb(db *mongo.Database) use_case.HistoryRepository {
	m := &mongoDB{col: db.Collection("import_outcomes")}

	return m
}
