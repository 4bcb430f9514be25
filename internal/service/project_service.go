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

type CreateProjectRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type UpdateProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsActive    *bool  `json:"is_active"`
}

type ProjectResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   string    `json:"created_at"`
}

type ProjectMemberResponse struct {
	UserID   uuid.UUID `json:"user_id"`
	FullName string    `json:"full_name"`
	Email    string    `json:"email"`
}

// --- Interface ---

// ProjectService manages company-scoped projects and their member rosters.
type ProjectService interface {
	Create(ctx context.Context, actorID uuid.UUID, req CreateProjectRequest) (*ProjectResponse, error)
	Get(ctx context.Context, actorID, projectID uuid.UUID) (*ProjectResponse, error)
	List(ctx context.Context, actorID uuid.UUID) ([]ProjectResponse, error)
	Update(ctx context.Context, actorID, projectID uuid.UUID, req UpdateProjectRequest) (*ProjectResponse, error)
	Delete(ctx context.Context, actorID, projectID uuid.UUID) error
	ListMembers(ctx context.Context, actorID, projectID uuid.UUID) ([]ProjectMemberResponse, error)
	AddMember(ctx context.Context, actorID, projectID, userID uuid.UUID) error
	RemoveMember(ctx context.Context, actorID, projectID, userID uuid.UUID) error
}

type projectService struct {
	db    *gorm.DB
	users repository.UserRepository
	perms PermissionService
}

func NewProjectService(db *gorm.DB, users repository.UserRepository, perms PermissionService) ProjectService {
	return &projectService{db: db, users: users, perms: perms}
}

// --- Implementation ---

func (s *projectService) requirePermission(ctx context.Context, actorID uuid.UUID, key string) error {
	allowed, err := s.perms.HasPermission(ctx, actorID, key)
	if err != nil {
		return err
	}
	if !allowed {
		return fmt.Errorf("missing permission '%s': %w", key, ErrForbidden)
	}
	return nil
}

func (s *projectService) resolveActor(ctx context.Context, actorID uuid.UUID) (*model.User, error) {
	actor, err := s.users.GetActiveByID(ctx, actorID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("unknown or inactive user: %w", ErrUnauthenticated)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve actor: %w", err)
	}
	return actor, nil
}

func (s *projectService) getCompanyProject(ctx context.Context, companyID, projectID uuid.UUID) (*model.Project, error) {
	var project model.Project
	err := s.db.WithContext(ctx).First(&project, "id = ? AND company_id = ?", projectID, companyID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("project not found: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch project: %w", err)
	}
	return &project, nil
}

func (s *projectService) Create(ctx context.Context, actorID uuid.UUID, req CreateProjectRequest) (*ProjectResponse, error) {
	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.requirePermission(ctx, actorID, "PROJECTS_CREATE"); err != nil {
		return nil, err
	}

	project := model.Project{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    true,
		CompanyID:   actor.CompanyID,
	}
	if err := s.db.WithContext(ctx).Create(&project).Error; err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	res := toProjectResponse(project)
	return &res, nil
}

func (s *projectService) Get(ctx context.Context, actorID, projectID uuid.UUID) (*ProjectResponse, error) {
	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.requirePermission(ctx, actorID, "PROJECTS_VIEW"); err != nil {
		return nil, err
	}

	project, err := s.getCompanyProject(ctx, actor.CompanyID, projectID)
	if err != nil {
		return nil, err
	}

	res := toProjectResponse(*project)
	return &res, nil
}

func (s *projectService) List(ctx context.Context, actorID uuid.UUID) ([]ProjectResponse, error) {
	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.requirePermission(ctx, actorID, "PROJECTS_VIEW"); err != nil {
		return nil, err
	}

	var projects []model.Project
	err = s.db.WithContext(ctx).
		Where("company_id = ?", actor.CompanyID).
		Order("created_at asc").
		Find(&projects).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	responses := make([]ProjectResponse, 0, len(projects))
	for _, p := range projects {
		responses = append(responses, toProjectResponse(p))
	}
	return responses, nil
}

func (s *projectService) Update(ctx context.Context, actorID, projectID uuid.UUID, req UpdateProjectRequest) (*ProjectResponse, error) {
	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.requirePermission(ctx, actorID, "PROJECTS_EDIT"); err != nil {
		return nil, err
	}

	project, err := s.getCompanyProject(ctx, actor.CompanyID, projectID)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		project.Name = req.Name
	}
	if req.Description != "" {
		project.Description = req.Description
	}
	if req.IsActive != nil {
		project.IsActive = *req.IsActive
	}

	if err := s.db.WithContext(ctx).Save(project).Error; err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	res := toProjectResponse(*project)
	return &res, nil
}

func (s *projectService) Delete(ctx context.Context, actorID, projectID uuid.UUID) error {
	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return err
	}
	if err := s.requirePermission(ctx, actorID, "PROJECTS_DELETE"); err != nil {
		return err
	}

	project, err := s.getCompanyProject(ctx, actor.CompanyID, projectID)
	if err != nil {
		return err
	}

	var taskCount int64
	if err := s.db.WithContext(ctx).Model(&model.Task{}).Where("project_id = ?", projectID).Count(&taskCount).Error; err != nil {
		return fmt.Errorf("failed to count project tasks: %w", err)
	}
	if taskCount > 0 {
		return fmt.Errorf("project has %d task(s): %w", taskCount, ErrInvalidState)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", projectID).Delete(&model.ProjectUser{}).Error; err != nil {
			return fmt.Errorf("failed to clear project members: %w", err)
		}
		if err := tx.Model(&model.Team{}).Where("project_id = ?", projectID).Update("project_id", nil).Error; err != nil {
			return fmt.Errorf("failed to detach teams: %w", err)
		}
		if err := tx.Delete(project).Error; err != nil {
			return fmt.Errorf("failed to delete project: %w", err)
		}
		return nil
	})
}

func (s *projectService) ListMembers(ctx context.Context, actorID, projectID uuid.UUID) ([]ProjectMemberResponse, error) {
	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.requirePermission(ctx, actorID, "PROJECT_USERS_VIEW"); err != nil {
		return nil, err
	}

	if _, err := s.getCompanyProject(ctx, actor.CompanyID, projectID); err != nil {
		return nil, err
	}

	var users []model.User
	err = s.db.WithContext(ctx).
		Joins("JOIN project_users ON project_users.user_id = users.id").
		Where("project_users.project_id = ?", projectID).
		Order("users.created_at asc").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch project members: %w", err)
	}

	members := make([]ProjectMemberResponse, 0, len(users))
	for _, u := range users {
		members = append(members, ProjectMemberResponse{
			UserID:   u.ID,
			FullName: u.FullName(),
			Email:    u.Email,
		})
	}
	return members, nil
}

func (s *projectService) AddMember(ctx context.Context, actorID, projectID, userID uuid.UUID) error {
	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return err
	}
	if err := s.requirePermission(ctx, actorID, "PROJECT_USERS_ADD"); err != nil {
		return err
	}

	if _, err := s.getCompanyProject(ctx, actor.CompanyID, projectID); err != nil {
		return err
	}

	var user model.User
	err = s.db.WithContext(ctx).First(&user, "id = ? AND company_id = ?", userID, actor.CompanyID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("user not found: %w", ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to fetch user: %w", err)
	}

	var existing int64
	err = s.db.WithContext(ctx).Model(&model.ProjectUser{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Count(&existing).Error
	if err != nil {
		return fmt.Errorf("failed to check membership: %w", err)
	}
	if existing > 0 {
		return fmt.Errorf("user is already a project member: %w", ErrInvalidState)
	}

	row := model.ProjectUser{ProjectID: projectID, UserID: userID}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to add project member: %w", err)
	}
	return nil
}

func (s *projectService) RemoveMember(ctx context.Context, actorID, projectID, userID uuid.UUID) error {
	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return err
	}
	if err := s.requirePermission(ctx, actorID, "PROJECT_USERS_ADD"); err != nil {
		return err
	}

	if _, err := s.getCompanyProject(ctx, actor.CompanyID, projectID); err != nil {
		return err
	}

	result := s.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Delete(&model.ProjectUser{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove project member: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("membership not found: %w", ErrNotFound)
	}
	return nil
}

// --- Helpers ---

func toProjectResponse(p model.Project) ProjectResponse {
	return ProjectResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
