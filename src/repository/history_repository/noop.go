package history_repository

import (
	"context"

	"github.com/endpointops/android-app-importer/src/use_case"
)

// noop is used when no history store is configured.
type noop struct{}

func (n noop) Create(ctx context.Context, outcome use_case.ImportOutcome) error {
	return nil
}

func (n noop) HealthCheck(ctx context.Context) error {
	return nil
}

func NewNoop() use_case.HistoryRepository {
	return noop{}
}
