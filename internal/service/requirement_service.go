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

// --- DTOs ---

type CreateRequirementRequest struct {
	ProjectID       uuid.UUID `json:"project_id" binding:"required"`
	Module          string    `json:"module"`
	Menu            string    `json:"menu"`
	RequirementText string    `json:"requirement_text" binding:"required"`
	Category        string    `json:"category"`
	Baseline        string    `json:"baseline"`
	Status          string    `json:"status"`
}

type UpdateRequirementRequest struct {
	Module          string `json:"module"`
	Menu            string `json:"menu"`
	RequirementText string `json:"requirement_text"`
	Category        string `json:"category"`
	Baseline        string `json:"baseline"`
	Status          string `json:"status"`
}

type RequirementResponse struct {
	ID              uuid.UUID `json:"id"`
	ProjectID       uuid.UUID `json:"project_id"`
	Module          string    `json:"module"`
	Menu            string    `json:"menu"`
	RequirementText string    `json:"requirement_text"`
	Category        string    `json:"category"`
	Baseline        string    `json:"baseline"`
	Status          string    `json:"status"`
	CreatedAt       string    `json:"created_at"`
}

// --- Interface ---

// RequirementService manages project requirements and their links to tasks.
type RequirementService interface {
	Create(ctx context.Context, actorID uuid.UUID, req CreateRequirementRequest) (*RequirementResponse, error)
	Get(ctx context.Context, actorID, requirementID uuid.UUID) (*RequirementResponse, error)
	ListByProject(ctx context.Context, actorID, projectID uuid.UUID) ([]RequirementResponse, error)
	Update(ctx context.Context, actorID, requirementID uuid.UUID, req UpdateRequirementRequest) (*RequirementResponse, error)
	Delete(ctx context.Context, actorID, requirementID uuid.UUID) error
	ListByTask(ctx context.Context, actorID, taskID uuid.UUID) ([]RequirementResponse, error)
	LinkToTask(ctx context.Context, actorID, taskID, requirementID uuid.UUID) error
	UnlinkFromTask(ctx context.Context, actorID, taskID, requirementID uuid.UUID) error
}

type requirementService struct {
	db    *gorm.DB
	users repository.UserRepository
	tasks repository.TaskRepository
	perms PermissionService
}

func NewRequirementService(db *gorm.DB, users repository.UserRepository, tasks repository.TaskRepository, perms PermissionService) RequirementService {
	return &requirementService{db: db, users: users, tasks: tasks, perms: perms}
}

// --- Implementation ---

func (s *requirementService) requirePermission(ctx context.Context, actorID uuid.UUID, key string) error {
	allowed, err := s.perms.HasPermission(ctx, actorID, key)
	if err != nil {
		return err
	}
	if !allowed {
		return fmt.Errorf("missing permission '%s': %w", key, ErrForbidden)
	}
	return nil
}

func (s *requirementService) resolveActor(ctx context.Context, actorID uuid.UUID) (*model.User, error) {
	actor, err := s.users.GetActiveByID(ctx, actorID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("unknown or inactive user: %w", ErrUnauthenticated)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve actor: %w", err)
	}
	return actor, nil
}

// getCompanyRequirement resolves a requirement through its project so company
// scoping holds even though requirements carry no company column themselves.
func (s *requirementService) getCompanyRequirement(ctx context.Context, companyID, requirementID uuid.UUID) (*model.Requirement, error) {
	var requirement model.Requirement
	err := s.db.WithContext(ctx).
		Joins("JOIN projects ON projects.id = requirements.project_id").
		Where("requirements.id = ? AND projects.company_id = ?", requirementID, companyID).
		First(&requirement).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("requirement not found: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch requirement: %w", err)
	}
	return &requirement, nil
}

func (s *requirementService) checkProject(ctx context.Context, companyID, projectID uuid.UUID) error {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Project{}).
		Where("id = ? AND company_id = ?", projectID, companyID).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("failed to check project: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("project not found: %w", ErrInvalidArgument)
	}
	return nil
}

func (s *requirementService) Create(ctx context.Context, actorID uuid.UUID, req CreateRequirementRequest) (*RequirementResponse, error) {
	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.requirePermission(ctx, actorID, "REQUIREMENTS_CREATE"); err != nil {
		return nil, err
	}
	if err := s.checkProject(ctx, actor.CompanyID, req.ProjectID); err != nil {
		return nil, err
	}

	requirement := model.Requirement{
		Module:          req.Module,
		Menu:            req.Menu,
		RequirementText: req.RequirementText,
		Category:        req.Category,
		Baseline:        req.Baseline,
		Status:          req.Status,
		ProjectID:       req.ProjectID,
		CreatedByUserID: actor.ID,
	}
	if err := s.db.WithContext(ctx).Create(&requirement).Error; err != nil {
		return nil, fmt.Errorf("failed to create requirement: %w", err)
	}

	res := toRequirementResponse(requirement)
	return &res, nil
}

func (s *requirementService) Get(ctx context.Context, actorID, requirementID uuid.UUID) (*RequirementResponse, error) {
	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.requirePermission(ctx, actorID, "REQUIREMENTS_VIEW"); err != nil {
		return nil, err
	}

	requirement, err := s.getCompanyRequirement(ctx, actor.CompanyID, requirementID)
	if err != nil {
		return nil, err
	}

	res := toRequirementResponse(*requirement)
	return &res, nil
}

func (s *requirementService) ListByProject(ctx context.Context, actorID, projectID uuid.UUID) ([]RequirementResponse, error) {
	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.requirePermission(ctx, actorID, "REQUIREMENTS_VIEW"); err != nil {
		return nil, err
	}
	if err := s.checkProject(ctx, actor.CompanyID, projectID); err != nil {
		return nil, err
	}

	var requirements []model.Requirement
	err = s.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at asc").
		Find(&requirements).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list requirements: %w", err)
	}

	responses := make([]RequirementResponse, 0, len(requirements))
	for _, r := range requirements {
		responses = append(responses, toRequirementResponse(r))
	}
	return responses, nil
}

func (s *requirementService) Update(ctx context.Context, actorID, requirementID uuid.UUID, req UpdateRequirementRequest) (*RequirementResponse, error) {
	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.requirePermission(ctx, actorID, "REQUIREMENTS_EDIT"); err != nil {
		return nil, err
	}

	requirement, err := s.getCompanyRequirement(ctx, actor.CompanyID, requirementID)
	if err != nil {
		return nil, err
	}

	if req.Module != "" {
		requirement.Module = req.Module
	}
	if req.Menu != "" {
		requirement.Menu = req.Menu
	}
	if req.RequirementText != "" {
		requirement.RequirementText = req.RequirementText
	}
	if req.Category != "" {
		requirement.Category = req.Category
	}
	if req.Baseline != "" {
		requirement.Baseline = req.Baseline
	}
	if req.Status != "" {
		requirement.Status = req.Status
	}

	if err := s.db.WithContext(ctx).Save(requirement).Error; err != nil {
		return nil, fmt.Errorf("failed to update requirement: %w", err)
	}

	res := toRequirementResponse(*requirement)
	return &res, nil
}

func (s *requirementService) Delete(ctx context.Context, actorID, requirementID uuid.UUID) error {
	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return err
	}
	if err := s.requirePermission(ctx, actorID, "REQUIREMENTS_DELETE"); err != nil {
		return err
	}

	requirement, err := s.getCompanyRequirement(ctx, actor.CompanyID, requirementID)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("requirement_id = ?", requirementID).Delete(&model.TaskRequirement{}).Error; err != nil {
			return fmt.Errorf("failed to clear task links: %w", err)
		}
		if err := tx.Delete(requirement).Error; err != nil {
			return fmt.Errorf("failed to delete requirement: %w", err)
		}
		return nil
	})
}

func (s *requirementService) ListByTask(ctx context.Context, actorID, taskID uuid.UUID) ([]RequirementResponse, error) {
	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.requirePermission(ctx, actorID, "TASK_REQUIREMENTS_VIEW"); err != nil {
		return nil, err
	}

	if _, err := s.tasks.GetByID(ctx, actor.CompanyID, taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("task not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch task: %w", err)
	}

	var requirements []model.Requirement
	err = s.db.WithContext(ctx).
		Joins("JOIN task_requirements ON task_requirements.requirement_id = requirements.id").
		Where("task_requirements.task_id = ?", taskID).
		Order("requirements.created_at asc").
		Find(&requirements).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list task requirements: %w", err)
	}

	responses := make([]RequirementResponse, 0, len(requirements))
	for _, r := range requirements {
		responses = append(responses, toRequirementResponse(r))
	}
	return responses, nil
}

// LinkToTask attaches a requirement to a task. Linking the same pair twice is
// rejected rather than silently ignored.
func (s *requirementService) LinkToTask(ctx context.Context, actorID, taskID, requirementID uuid.UUID) error {
	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return err
	}
	if err := s.requirePermission(ctx, actorID, "TASK_REQUIREMENTS_ADD"); err != nil {
		return err
	}

	task, err := s.tasks.GetByID(ctx, actor.CompanyID, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("task not found: %w", ErrNotFound)
		}
		return fmt.Errorf("failed to fetch task: %w", err)
	}

	requirement, err := s.getCompanyRequirement(ctx, actor.CompanyID, requirementID)
	if err != nil {
		return err
	}

	// A link only makes sense inside one project.
	if task.ProjectID != requirement.ProjectID {
		return fmt.Errorf("task and requirement belong to different projects: %w", ErrInvalidArgument)
	}

	var existing int64
	err = s.db.WithContext(ctx).Model(&model.TaskRequirement{}).
		Where("task_id = ? AND requirement_id = ?", taskID, requirementID).
		Count(&existing).Error
	if err != nil {
		return fmt.Errorf("failed to check link: %w", err)
	}
	if existing > 0 {
		return fmt.Errorf("requirement is already linked to task: %w", ErrInvalidState)
	}

	link := model.TaskRequirement{TaskID: taskID, RequirementID: requirementID}
	if err := s.db.WithContext(ctx).Create(&link).Error; err != nil {
		return fmt.Errorf("failed to link requirement: %w", err)
	}
	return nil
}

func (s *requirementService) UnlinkFromTask(ctx context.Context, actorID, taskID, requirementID uuid.UUID) error {
	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return err
	}
	if err := s.requirePermission(ctx, actorID, "TASK_REQUIREMENTS_ADD"); err != nil {
		return err
	}

	if _, err := s.tasks.GetByID(ctx, actor.CompanyID, taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("task not found: %w", ErrNotFound)
		}
		return fmt.Errorf("failed to fetch task: %w", err)
	}

	result := s.db.WithContext(ctx).
		Where("task_id = ? AND requirement_id = ?", taskID, requirementID).
		Delete(&model.TaskRequirement{})
	if result.Error != nil {
		return fmt.Errorf("failed to unlink requirement: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("link not found: %w", ErrNotFound)
	}
	return nil
}

// --- Helpers ---

func toRequirementResponse(r model.Requirement) RequirementResponse {
	return RequirementResponse{
		ID:              r.ID,
		ProjectID:       r.ProjectID,
		Module:          r.Module,
		Menu:            r.Menu,
		RequirementText: r.RequirementText,
		Category:        r.Category,
		Baseline:        r.Baseline,
		Status:          r.Status,
		CreatedAt:       r.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
