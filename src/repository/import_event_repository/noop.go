package import_event_repository

import (
	"context"

	"github.com/endpointops/android-app-importer/src/use_case"
)

// noop is used when no event bus is configured.
type noop struct{}

func (n noop) PublishImported(ctx context.Context, outcome use_case.ImportOutcome) error {
	return nil
}

func NewNoop() use_case.ImportEventRepository {
	return noop{}
}
