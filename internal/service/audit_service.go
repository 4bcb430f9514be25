package service

import (
	"context"
	"errors"
	"fmt"

	"taskhub/internal/model"
	"taskhub/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuditLogResponse struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	UserName   string `json:"user_name"`
	Action     string `json:"action"`
	EntityID   string `json:"entity_id"`
	EntityName string `json:"entity_name"`
	Details    string `json:"details"`
	CreatedAt  string `json:"created_at"`
}

type AuditService interface {
	GetAuditLogs(ctx context.Context, actorID uuid.UUID, page, limit int) ([]AuditLogResponse, int64, error)
}

type auditService struct {
	db    *gorm.DB
	users repository.UserRepository
	perms PermissionService
}

// NewAuditService creates a new AuditService instance
func NewAuditService(db *gorm.DB, users repository.UserRepository, perms PermissionService) AuditService {
	return &auditService{db: db, users: users, perms: perms}
}

// GetAuditLogs retrieves strictly paginated records scoped to the actor's
// company, with Users pre-loaded for display names.
func (s *auditService) GetAuditLogs(ctx context.Context, actorID uuid.UUID, page, limit int) ([]AuditLogResponse, int64, error) {
	actor, err := s.users.GetActiveByID(ctx, actorID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, 0, fmt.Errorf("unknown or inactive user: %w", ErrUnauthenticated)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to resolve actor: %w", err)
	}

	allowed, err := s.perms.HasPermission(ctx, actorID, "AUDIT_VIEW")
	if err != nil {
		return nil, 0, err
	}
	if !allowed {
		return nil, 0, fmt.Errorf("missing permission 'AUDIT_VIEW': %w", ErrForbidden)
	}

	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	var logs []model.AuditLog
	var total int64

	scope := s.db.WithContext(ctx).Model(&model.AuditLog{}).Where("company_id = ?", actor.CompanyID)
	if err := scope.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count audit logs: %w", err)
	}

	offset := (page - 1) * limit
	err = s.db.WithContext(ctx).
		Preload("User").
		Where("company_id = ?", actor.CompanyID).
		Order("created_at desc").
		Offset(offset).Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch audit logs: %w", err)
	}

	res := make([]AuditLogResponse, 0, len(logs))
	for _, l := range logs {
		userName := "System"
		userID := ""
		if l.User != nil {
			userName = l.User.FullName()
		}
		if l.UserID != nil {
			userID = l.UserID.String()
		}

		res = append(res, AuditLogResponse{
			ID:         l.ID.String(),
			UserID:     userID,
			UserName:   userName,
			Action:     l.Action,
			EntityID:   l.EntityID,
			EntityName: l.EntityName,
			Details:    l.Details,
			CreatedAt:  l.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	return res, total, nil
}
