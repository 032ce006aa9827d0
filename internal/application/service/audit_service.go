package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/receiptly/receiptly-api/internal/domain/entity"
	"github.com/receiptly/receiptly-api/internal/domain/repository"
	infraRepo "github.com/receiptly/receiptly-api/internal/infrastructure/repository"
	"github.com/receiptly/receiptly-api/pkg/apperror"
	"github.com/receiptly/receiptly-api/pkg/metrics"
	"github.com/receiptly/receiptly-api/pkg/pagination"
	"go.uber.org/zap"
)

// AuditService records and lists audit entries.
// Recording is best-effort: a failed insert is logged and counted but never
// returned, so it cannot abort the operation being audited.
type AuditService struct {
	store repository.Store
	log   *zap.Logger
}

// NewAuditService creates a new audit service
func NewAuditService(store repository.Store, log *zap.Logger) *AuditService {
	return &AuditService{store: store, log: log}
}

// AuditEntry describes one audited mutation
type AuditEntry struct {
	OrganizationID uuid.UUID
	Action         string
	ResourceType   string
	ResourceID     string
	Details        map[string]interface{}
}

// Record writes entry through repo, which may be bound to an open transaction.
func (s *AuditService) Record(ctx context.Context, repo repository.AuditLogRepository, entry AuditEntry) {
	userID, _ := infraRepo.GetUserID(ctx)

	log := &entity.AuditLog{
		OrganizationID: entry.OrganizationID,
		UserID:         userID,
		Action:         entry.Action,
		ResourceType:   entry.ResourceType,
		ResourceID:     entry.ResourceID,
		Details:        entry.Details,
	}

	if err := repo.Create(ctx, log); err != nil {
		metrics.AuditWriteFailures.Inc()
		s.log.Warn("audit log write failed",
			zap.String("action", entry.Action),
			zap.String("resource_type", entry.ResourceType),
			zap.String("resource_id", entry.ResourceID),
			zap.String("organization_id", entry.OrganizationID.String()),
			zap.Error(err),
		)
	}
}

// List returns the active organization's audit trail, newest first
func (s *AuditService) List(ctx context.Context, action string, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.AuditLog], error) {
	orgID, ok := infraRepo.GetOrganizationID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Organization context required")
	}

	logs, total, err := s.store.Repos().AuditLogs.List(ctx, orgID, action, params)
	if err != nil {
		return nil, err
	}

	return pagination.NewPaginatedResult(logs, pagination.NewPagination(params.Page, params.PerPage, total)), nil
}
