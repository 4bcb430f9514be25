package repository

import (
	"context"
	"time"

	"taskhub/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaskFilter narrows company-scoped task listings.
type TaskFilter struct {
	ProjectID *uuid.UUID
	StatusID  *uuid.UUID
	TeamID    *uuid.UUID
	Page      int
	Limit     int
}

// TaskRepository defines company-scoped data access for tasks. Every lookup
// takes the acting company id so a task outside the tenant behaves exactly
// like a missing one.
type TaskRepository interface {
	Create(ctx context.Context, task *model.Task) error
	GetByID(ctx context.Context, companyID, id uuid.UUID) (*model.Task, error)
	GetByIDWithRelations(ctx context.Context, companyID, id uuid.UUID) (*model.Task, error)
	List(ctx context.Context, companyID uuid.UUID, filter TaskFilter) ([]model.Task, int64, error)
	ListByStatusName(ctx context.Context, companyID uuid.UUID, statusName string) ([]model.Task, error)
	ListCompleted(ctx context.Context, companyID uuid.UUID) ([]model.Task, error)
	ListOverdue(ctx context.Context, companyID uuid.UUID) ([]model.Task, error)
	ListRecentAssigned(ctx context.Context, companyID, userID uuid.UUID, limit int) ([]model.Task, error)
	Update(ctx context.Context, task *model.Task) error
	Delete(ctx context.Context, task *model.Task) error
	GetStatus(ctx context.Context, id uuid.UUID) (*model.TaskStatus, error)
	GetDefaultStatus(ctx context.Context) (*model.TaskStatus, error)
	ListGlobalStatuses(ctx context.Context) ([]model.TaskStatus, error)
	ReplaceAssignments(ctx context.Context, taskID uuid.UUID, userIDs []uuid.UUID) error
	ReplaceRequirements(ctx context.Context, taskID uuid.UUID, requirementIDs []uuid.UUID) error
}

type taskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) Create(ctx context.Context, task *model.Task) error {
	return GetDB(ctx, r.db).Create(task).Error
}

func (r *taskRepository) GetByID(ctx context.Context, companyID, id uuid.UUID) (*model.Task, error) {
	var task model.Task
	if err := GetDB(ctx, r.db).
		Preload("Status").
		First(&task, "id = ? AND company_id = ?", id, companyID).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) GetByIDWithRelations(ctx context.Context, companyID, id uuid.UUID) (*model.Task, error) {
	var task model.Task
	if err := GetDB(ctx, r.db).
		Preload("Status").
		Preload("Project").
		Preload("Team").
		Preload("CreatedByUser").
		Preload("Assignments.User").
		Preload("Requirements.Requirement").
		First(&task, "id = ? AND company_id = ?", id, companyID).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) List(ctx context.Context, companyID uuid.UUID, filter TaskFilter) ([]model.Task, int64, error) {
	base := GetDB(ctx, r.db).Model(&model.Task{}).Where("company_id = ?", companyID)
	if filter.ProjectID != nil {
		base = base.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.StatusID != nil {
		base = base.Where("status_id = ?", *filter.StatusID)
	}
	if filter.TeamID != nil {
		base = base.Where("team_id = ?", *filter.TeamID)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tasks []model.Task
	offset := (filter.Page - 1) * filter.Limit
	if err := base.
		Preload("Status").
		Preload("Project").
		Preload("Team").
		Preload("CreatedByUser").
		Preload("Assignments.User").
		Preload("Requirements.Requirement").
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

func (r *taskRepository) ListByStatusName(ctx context.Context, companyID uuid.UUID, statusName string) ([]model.Task, error) {
	var tasks []model.Task
	if err := GetDB(ctx, r.db).
		Preload("Status").
		Preload("Project").
		Preload("Team").
		Joins("JOIN task_statuses ON task_statuses.id = tasks.status_id").
		Where("tasks.company_id = ? AND task_statuses.name = ?", companyID, statusName).
		Order("tasks.end_date asc").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListCompleted returns the company's approved tasks. Completion is read off
// the approval flag, not the status dimension.
func (r *taskRepository) ListCompleted(ctx context.Context, companyID uuid.UUID) ([]model.Task, error) {
	var tasks []model.Task
	if err := GetDB(ctx, r.db).
		Preload("Status").
		Preload("Project").
		Preload("Team").
		Where("company_id = ? AND is_approved = ?", companyID, true).
		Order("end_date asc").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListOverdue returns unapproved tasks whose end date has passed.
func (r *taskRepository) ListOverdue(ctx context.Context, companyID uuid.UUID) ([]model.Task, error) {
	var tasks []model.Task
	if err := GetDB(ctx, r.db).
		Preload("Status").
		Preload("Project").
		Preload("Team").
		Where("company_id = ? AND is_approved = ? AND end_date < ?", companyID, false, time.Now().UTC()).
		Order("end_date asc").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListRecentAssigned returns the newest tasks assigned to the given user.
func (r *taskRepository) ListRecentAssigned(ctx context.Context, companyID, userID uuid.UUID, limit int) ([]model.Task, error) {
	var tasks []model.Task
	if err := GetDB(ctx, r.db).
		Preload("Status").
		Joins("JOIN task_assignments ON task_assignments.task_id = tasks.id").
		Where("tasks.company_id = ? AND task_assignments.user_id = ?", companyID, userID).
		Order("tasks.created_at DESC").
		Limit(limit).
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepository) Update(ctx context.Context, task *model.Task) error {
	return GetDB(ctx, r.db).Save(task).Error
}

// Delete removes the task and its links. Callers run it inside a transaction.
func (r *taskRepository) Delete(ctx context.Context, task *model.Task) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("task_id = ?", task.ID).Delete(&model.TaskAssignment{}).Error; err != nil {
		return err
	}
	if err := db.Where("task_id = ?", task.ID).Delete(&model.TaskRequirement{}).Error; err != nil {
		return err
	}
	return db.Delete(task).Error
}

func (r *taskRepository) GetStatus(ctx context.Context, id uuid.UUID) (*model.TaskStatus, error) {
	var status model.TaskStatus
	if err := GetDB(ctx, r.db).First(&status, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &status, nil
}

// GetDefaultStatus returns the single global status flagged IsDefault.
func (r *taskRepository) GetDefaultStatus(ctx context.Context) (*model.TaskStatus, error) {
	var status model.TaskStatus
	if err := GetDB(ctx, r.db).
		First(&status, "is_default = ? AND company_id IS NULL", true).Error; err != nil {
		return nil, err
	}
	return &status, nil
}

// ListGlobalStatuses returns the shared status catalog in display order.
func (r *taskRepository) ListGlobalStatuses(ctx context.Context) ([]model.TaskStatus, error) {
	var statuses []model.TaskStatus
	if err := GetDB(ctx, r.db).
		Where("company_id IS NULL").
		Order("sort_order asc").
		Find(&statuses).Error; err != nil {
		return nil, err
	}
	return statuses, nil
}

// ReplaceAssignments clears and rebuilds the task's assignment links.
// Runs against the context transaction when one is present.
func (r *taskRepository) ReplaceAssignments(ctx context.Context, taskID uuid.UUID, userIDs []uuid.UUID) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("task_id = ?", taskID).Delete(&model.TaskAssignment{}).Error; err != nil {
		return err
	}
	for _, userID := range userIDs {
		if err := db.Create(&model.TaskAssignment{TaskID: taskID, UserID: userID}).Error; err != nil {
			return err
		}
	}
	return nil
}

// ReplaceRequirements clears and rebuilds the task's requirement links.
func (r *taskRepository) ReplaceRequirements(ctx context.Context, taskID uuid.UUID, requirementIDs []uuid.UUID) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("task_id = ?", taskID).Delete(&model.TaskRequirement{}).Error; err != nil {
		return err
	}
	for _, reqID := range requirementIDs {
		if err := db.Create(&model.TaskRequirement{TaskID: taskID, RequirementID: reqID}).Error; err != nil {
			return err
		}
	}
	return nil
}
