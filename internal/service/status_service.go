package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/sidarthus89/EVE-Trade/internal/model"
	"github.com/sidarthus89/EVE-Trade/internal/repository"
)

// StatusService exposes the sync_status ledger for operator visibility
type StatusService struct {
	status *repository.SyncStatusRepository
	logger *zap.Logger
}

// NewStatusService creates a new status service
func NewStatusService(status *repository.SyncStatusRepository, logger *zap.Logger) *StatusService {
	return &StatusService{
		status: status,
		logger: logger,
	}
}

// GetAll retrieves every ledger row
func (s *StatusService) GetAll(ctx context.Context) ([]model.SyncStatus, error) {
	return s.status.GetAll(ctx)
}
