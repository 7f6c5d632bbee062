package use_case

import (
	"context"
	"fmt"
)

func (u UseCase) HealthCheck(ctx context.Context) error {

	err := u.appRepository.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("appRepository.HealthCheck: %w", err)
	}

	err = u.historyRepository.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("historyRepository.HealthCheck: %w", err)
	}

	return nil
}
