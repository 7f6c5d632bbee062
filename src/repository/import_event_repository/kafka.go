package import_event_repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/endpointops/android-app-importer/src/entity/logger"
	"github.com/endpointops/android-app-importer/src/use_case"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("import_event_repository")

type kafkaMQImportEvent struct {
	RunID          string    `json:"runId"`
	Name           string    `json:"name"`
	StoreURL       string    `json:"storeUrl"`
	Publisher      string    `json:"publisher"`
	MinimumVersion string    `json:"minimumVersion"`
	ImportDateTime time.Time `json:"importedAt"`
}

type kafkaMQ struct {
	client *kafka.Writer
}

func (k kafkaMQ) PublishImported(ctx context.Context, outcome use_case.ImportOutcome) error {
	ctx, span := tracer.Start(ctx, "import_event_repository.PublishImported")
	defer span.End()

	event := kafkaMQImportEvent{
		RunID:          outcome.RunID,
		Name:           outcome.Record.Name,
		StoreURL:       outcome.Record.URL,
		Publisher:      outcome.Record.Publisher,
		MinimumVersion: string(outcome.Record.MinimumAndroidVersion),
		ImportDateTime: time.Now(),
	}

	messageBytes, err := json.Marshal(event)
	if err != nil {
		zap.L().Error("error while marshal event", logger.WithTraceId(ctx), zap.Any("error", err), zap.Any("event", event))
		span.SetStatus(codes.Error, fmt.Sprintf("error while marshal event %+v: %s", event, err))
		return fmt.Errorf("error while marshal event: %w", use_case.ErrEventPublish)
	}

	message := kafka.Message{
		Key:   []byte(fmt.Sprintf("%s/%s", event.RunID, event.Name)),
		Value: messageBytes,
	}

	err = k.client.WriteMessages(ctx, message)
	if err != nil {
		zap.L().Error("error while writing message", logger.WithTraceId(ctx), zap.Any("error", err))
		span.SetStatus(codes.Error, fmt.Sprintf("error while writing message: %s", err))
		return fmt.Errorf("error while writing message: %w", use_case.ErrEventPublish)
	}

	return nil
}

func NewKafkaMQ(boostrapServer string, topic string) use_case.ImportEventRepository {
	var w kafka.Writer

	w = kafka.Writer{
		Addr:     kafka.TCP(boostrapServer),
		Topic:    topic,
		Balancer: &kafka.Hash{},
		Transport: &kafka.Transport{
			Dial: (&net.Dialer{
				Timeout: 10 * time.Second,
			}).DialContext,
		},
	}

	k := kafkaMQ{client: &w}

	return k
}
