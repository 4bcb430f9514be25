package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskhub/internal/model"
	"taskhub/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StatusCount is one slice of the tasks-per-status breakdown.
type StatusCount struct {
	StatusName string `json:"status_name"`
	Count      int64  `json:"count"`
}

// DashboardResponse aggregates the company's task picture at a point in time.
type DashboardResponse struct {
	TotalTasks     int64                 `json:"total_tasks"`
	CompletedTasks int64                 `json:"completed_tasks"`
	OverdueTasks   int64                 `json:"overdue_tasks"`
	TotalProjects  int64                 `json:"total_projects"`
	TotalTeams     int64                 `json:"total_teams"`
	TotalUsers     int64                 `json:"total_users"`
	CompletionRate string                `json:"completion_rate"`
	TasksByStatus  []StatusCount         `json:"tasks_by_status"`
	RecentTasks    []TaskSummaryResponse `json:"recent_tasks"`
}

type DashboardService interface {
	Overview(ctx context.Context, actorID uuid.UUID) (*DashboardResponse, error)
}

type dashboardService struct {
	db    *gorm.DB
	users repository.UserRepository
	tasks repository.TaskRepository
	perms PermissionService
}

func NewDashboardService(db *gorm.DB, users repository.UserRepository, tasks repository.TaskRepository, perms PermissionService) DashboardService {
	return &dashboardService{db: db, users: users, tasks: tasks, perms: perms}
}

// Overview computes company-wide counters. Requires TASKS_VIEW since the
// dashboard is a read over the task corpus.
func (s *dashboardService) Overview(ctx context.Context, actorID uuid.UUID) (*DashboardResponse, error) {
	actor, err := s.users.GetActiveByID(ctx, actorID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("unknown or inactive user: %w", ErrUnauthenticated)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve actor: %w", err)
	}

	allowed, err := s.perms.HasPermission(ctx, actorID, "TASKS_VIEW")
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, fmt.Errorf("missing permission 'TASKS_VIEW': %w", ErrForbidden)
	}

	companyID := actor.CompanyID
	res := &DashboardResponse{}

	if err := s.db.WithContext(ctx).Model(&model.Task{}).Where("company_id = ?", companyID).Count(&res.TotalTasks).Error; err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&model.Task{}).Where("company_id = ? AND is_approved = ?", companyID, true).Count(&res.CompletedTasks).Error; err != nil {
		return nil, fmt.Errorf("failed to count completed tasks: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&model.Task{}).
		Where("company_id = ? AND is_approved = ? AND end_date IS NOT NULL AND end_date < ?", companyID, false, time.Now().UTC()).
		Count(&res.OverdueTasks).Error; err != nil {
		return nil, fmt.Errorf("failed to count overdue tasks: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&model.Project{}).Where("company_id = ?", companyID).Count(&res.TotalProjects).Error; err != nil {
		return nil, fmt.Errorf("failed to count projects: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&model.Team{}).Where("company_id = ?", companyID).Count(&res.TotalTeams).Error; err != nil {
		return nil, fmt.Errorf("failed to count teams: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&model.User{}).Where("company_id = ?", companyID).Count(&res.TotalUsers).Error; err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	res.CompletionRate = completionRate(res.CompletedTasks, res.TotalTasks)

	var byStatus []StatusCount
	err = s.db.WithContext(ctx).Table("tasks").
		Select("task_statuses.name as status_name, COUNT(tasks.id) as count").
		Joins("JOIN task_statuses ON task_statuses.id = tasks.status_id").
		Where("tasks.company_id = ?", companyID).
		Group("task_statuses.name").
		Order("count DESC").
		Scan(&byStatus).Error
	if err != nil {
		return nil, fmt.Errorf("failed to group tasks by status: %w", err)
	}
	res.TasksByStatus = byStatus

	recent, err := s.tasks.ListRecentAssigned(ctx, companyID, actorID, 5)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent tasks: %w", err)
	}
	res.RecentTasks = toTaskSummaries(recent, "")

	return res, nil
}

// completionRate renders completed/total as a percentage with two decimal
// places, avoiding float drift on large task counts.
func completionRate(completed, total int64) string {
	if total == 0 {
		return "0.00"
	}
	rate := decimal.NewFromInt(completed).
		Div(decimal.NewFromInt(total)).
		Mul(decimal.NewFromInt(100))
	return rate.StringFixed(2)
}
