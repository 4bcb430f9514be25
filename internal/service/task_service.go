package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"taskhub/internal/events"
	"taskhub/internal/model"
	"taskhub/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateTaskRequest struct {
	Module          string      `json:"module" binding:"required"`
	Description     string      `json:"description" binding:"required"`
	References      string      `json:"references"`
	UserStory       string      `json:"user_story"`
	Comment         string      `json:"comment"`
	Source          string      `json:"source"`
	StartDate       time.Time   `json:"start_date" binding:"required"`
	EndDate         time.Time   `json:"end_date" binding:"required"`
	ProjectID       uuid.UUID   `json:"project_id" binding:"required"`
	TeamID          *uuid.UUID  `json:"team_id"`
	StatusID        *uuid.UUID  `json:"status_id"`
	AssignedUserIDs []uuid.UUID `json:"assigned_user_ids"`
}

type UpdateTaskRequest struct {
	Module          string      `json:"module" binding:"required"`
	Description     string      `json:"description" binding:"required"`
	References      string      `json:"references"`
	UserStory       string      `json:"user_story"`
	Comment         string      `json:"comment"`
	Source          string      `json:"source"`
	StartDate       time.Time   `json:"start_date"`
	EndDate         time.Time   `json:"end_date"`
	ProjectID       uuid.UUID   `json:"project_id" binding:"required"`
	TeamID          *uuid.UUID  `json:"team_id"`
	StatusID        uuid.UUID   `json:"status_id" binding:"required"`
	AssignedUserIDs []uuid.UUID `json:"assigned_user_ids"`
	RequirementIDs  []uuid.UUID `json:"requirement_ids"`
}

type ListTasksRequest struct {
	ProjectID *uuid.UUID
	StatusID  *uuid.UUID
	TeamID    *uuid.UUID
	Page      int
	Limit     int
}

type TaskStatusResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// StatusOptionResponse is a row of the global status catalog, carrying the
// flags a client needs to drive the transition UI.
type StatusOptionResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	IsFinal   bool      `json:"is_final"`
	IsDefault bool      `json:"is_default"`
}

type TaskRefResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type TaskResponse struct {
	ID           uuid.UUID           `json:"id"`
	Module       string              `json:"module"`
	Description  string              `json:"description"`
	References   string              `json:"references"`
	UserStory    string              `json:"user_story"`
	Comment      string              `json:"comment"`
	Source       string              `json:"source"`
	StartDate    time.Time           `json:"start_date"`
	EndDate      time.Time           `json:"end_date"`
	IsApproved   bool                `json:"is_approved"`
	IsRejected   bool                `json:"is_rejected"`
	Status       TaskStatusResponse  `json:"status"`
	Project      *TaskRefResponse    `json:"project"`
	Team         *TaskRefResponse    `json:"team"`
	CreatedBy    *TaskRefResponse    `json:"created_by"`
	Assigned     []TaskRefResponse   `json:"assigned_users"`
	Requirements []TaskRefResponse   `json:"requirements"`
	CreatedAt    time.Time           `json:"created_at"`
}

// TaskSummaryResponse is the compact row used by the dashboard task lists.
type TaskSummaryResponse struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	ProjectName string    `json:"project_name"`
	TeamName    string    `json:"team_name"`
	StatusName  string    `json:"status_name"`
	DueDate     time.Time `json:"due_date"`
}

// --- Interface ---

// TaskService owns the task lifecycle: creation with default-status
// resolution, the status transition state machine, and the approve/reject
// flag dimension layered on top of it.
type TaskService interface {
	Create(ctx context.Context, actorID uuid.UUID, req CreateTaskRequest) (*TaskResponse, error)
	Get(ctx context.Context, actorID, taskID uuid.UUID) (*TaskResponse, error)
	List(ctx context.Context, actorID uuid.UUID, req ListTasksRequest) ([]TaskResponse, int64, error)
	Update(ctx context.Context, actorID, taskID uuid.UUID, req UpdateTaskRequest) (*TaskResponse, error)
	Delete(ctx context.Context, actorID, taskID uuid.UUID) error
	AssignTeam(ctx context.Context, actorID, taskID, teamID uuid.UUID) error
	ChangeStatus(ctx context.Context, actorID, taskID, newStatusID uuid.UUID) (*TaskResponse, error)
	Approve(ctx context.Context, actorID, taskID uuid.UUID) (*TaskResponse, error)
	Reject(ctx context.Context, actorID, taskID uuid.UUID) (*TaskResponse, error)
	ListStatuses(ctx context.Context, actorID uuid.UUID) ([]StatusOptionResponse, error)
	ListByStatusName(ctx context.Context, actorID uuid.UUID, statusName string) ([]TaskSummaryResponse, error)
	ListCompleted(ctx context.Context, actorID uuid.UUID) ([]TaskSummaryResponse, error)
	ListOverdue(ctx context.Context, actorID uuid.UUID) ([]TaskSummaryResponse, error)
	ListMyRecent(ctx context.Context, actorID uuid.UUID) ([]TaskResponse, error)
}

type taskService struct {
	db    *gorm.DB
	tasks repository.TaskRepository
	users repository.UserRepository
	perms PermissionService
	txm   repository.TransactionManager
	hub   *events.Hub
}

func NewTaskService(db *gorm.DB, tasks repository.TaskRepository, users repository.UserRepository,
	perms PermissionService, txm repository.TransactionManager, hub *events.Hub) TaskService {
	return &taskService{db: db, tasks: tasks, users: users, perms: perms, txm: txm, hub: hub}
}

// --- Helpers ---

// resolveActor maps the acting user id to an active user row, deriving the
// company scope for every operation. Caller-supplied company ids are never
// trusted.
func (s *taskService) resolveActor(ctx context.Context, actorID uuid.UUID) (*model.User, error) {
	actor, err := s.users.GetActiveByID(ctx, actorID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve actor: %w", err)
	}
	return actor, nil
}

func (s *taskService) requirePermission(ctx context.Context, actorID uuid.UUID, key string) error {
	allowed, err := s.perms.HasPermission(ctx, actorID, key)
	if err != nil {
		return err
	}
	if !allowed {
		return fmt.Errorf("missing permission '%s': %w", key, ErrForbidden)
	}
	return nil
}

// filterCompanyUsers keeps only the distinct ids that belong to active users
// of the given company.
func (s *taskService) filterCompanyUsers(ctx context.Context, companyID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	seen := make(map[uuid.UUID]bool, len(ids))
	distinct := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			distinct = append(distinct, id)
		}
	}

	var valid []uuid.UUID
	if err := repository.GetDB(ctx, s.db).
		Model(&model.User{}).
		Where("id IN ? AND company_id = ?", distinct, companyID).
		Pluck("id", &valid).Error; err != nil {
		return nil, fmt.Errorf("failed to validate assigned users: %w", err)
	}
	return valid, nil
}

func (s *taskService) audit(ctx context.Context, actor *model.User, action string, task *model.Task, details map[string]interface{}) error {
	payload, _ := json.Marshal(details)
	entry := model.AuditLog{
		UserID:     &actor.ID,
		CompanyID:  &actor.CompanyID,
		Action:     action,
		EntityID:   task.ID.String(),
		EntityName: task.Module,
		Details:    string(payload),
	}
	return repository.GetDB(ctx, s.db).Create(&entry).Error
}

// --- Implementation ---

func (s *taskService) Create(ctx context.Context, actorID uuid.UUID, req CreateTaskRequest) (*TaskResponse, error) {
	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.requirePermission(ctx, actorID, "TASKS_CREATE"); err != nil {
		return nil, err
	}

	// Resolve the initial status: explicit id is honored without transition
	// checks (creation is unconstrained), otherwise fall back to the single
	// global default.
	var statusID uuid.UUID
	if req.StatusID != nil && *req.StatusID != uuid.Nil {
		status, err := s.tasks.GetStatus(ctx, *req.StatusID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("unknown status id: %w", ErrInvalidArgument)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to resolve status: %w", err)
		}
		statusID = status.ID
	} else {
		status, err := s.tasks.GetDefaultStatus(ctx)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("no default task status configured: %w", ErrInvalidState)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to resolve default status: %w", err)
		}
		statusID = status.ID
	}

	source := req.Source
	if source == "" {
		source = model.TaskSourceManual
	}

	task := model.Task{
		Module:          req.Module,
		Description:     req.Description,
		References:      req.References,
		UserStory:       req.UserStory,
		Comment:         req.Comment,
		Source:          source,
		StartDate:       req.StartDate.UTC(),
		EndDate:         req.EndDate.UTC(),
		ProjectID:       req.ProjectID,
		TeamID:          req.TeamID,
		CompanyID:       actor.CompanyID,
		StatusID:        statusID,
		CreatedByUserID: actor.ID,
	}

	err = s.txm.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.tasks.Create(txCtx, &task); err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}

		valid, err := s.filterCompanyUsers(txCtx, actor.CompanyID, req.AssignedUserIDs)
		if err != nil {
			return err
		}
		if len(valid) > 0 {
			if err := s.tasks.ReplaceAssignments(txCtx, task.ID, valid); err != nil {
				return fmt.Errorf("failed to assign users: %w", err)
			}
		}

		return s.audit(txCtx, actor, model.ActionCreateTask, &task, map[string]interface{}{
			"project_id": task.ProjectID.String(),
			"status_id":  task.StatusID.String(),
		})
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, actorID, task.ID)
}

func (s *taskService) Get(ctx context.Context, actorID, taskID uuid.UUID) (*TaskResponse, error) {
	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	task, err := s.tasks.GetByIDWithRelations(ctx, actor.CompanyID, taskID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("task not found: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch task: %w", err)
	}

	resp := toTaskResponse(*task)
	return &resp, nil
}

func (s *taskService) List(ctx context.Context, actorID uuid.UUID, req ListTasksRequest) ([]TaskResponse, int64, error) {
	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return nil, 0, err
	}
	if err := s.requirePermission(ctx, actorID, "TASKS_VIEW"); err != nil {
		return nil, 0, err
	}

	if req.Page <= 0 {
		req.Page = 1
	}
	if req.Limit <= 0 {
		req.Limit = 20
	}

	tasks, total, err := s.tasks.List(ctx, actor.CompanyID, repository.TaskFilter{
		ProjectID: req.ProjectID,
		StatusID:  req.StatusID,
		TeamID:    req.TeamID,
		Page:      req.Page,
		Limit:     req.Limit,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch tasks: %w", err)
	}

	res := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		res = append(res, toTaskResponse(t))
	}
	return res, total, nil
}

func (s *taskService) Update(ctx context.Context, actorID, taskID uuid.UUID, req UpdateTaskRequest) (*TaskResponse, error) {
	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.requirePermission(ctx, actorID, "TASKS_EDIT"); err != nil {
		return nil, err
	}

	err = s.txm.RunInTx(ctx, func(txCtx context.Context) error {
		task, err := s.tasks.GetByID(txCtx, actor.CompanyID, taskID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("task not found: %w", ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to fetch task: %w", err)
		}

		task.Module = req.Module
		task.Description = req.Description
		task.References = req.References
		task.UserStory = req.UserStory
		task.Comment = req.Comment
		if req.Source != "" {
			task.Source = req.Source
		}
		task.StartDate = req.StartDate.UTC()
		task.EndDate = req.EndDate.UTC()
		task.ProjectID = req.ProjectID
		task.TeamID = req.TeamID
		task.StatusID = req.StatusID
		task.Status = nil

		if err := s.tasks.Update(txCtx, task); err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}

		valid, err := s.filterCompanyUsers(txCtx, actor.CompanyID, req.AssignedUserIDs)
		if err != nil {
			return err
		}
		if err := s.tasks.ReplaceAssignments(txCtx, task.ID, valid); err != nil {
			return fmt.Errorf("failed to rebuild assignments: %w", err)
		}
		if err := s.tasks.ReplaceRequirements(txCtx, task.ID, req.RequirementIDs); err != nil {
			return fmt.Errorf("failed to rebuild requirement links: %w", err)
		}

		return s.audit(txCtx, actor, model.ActionUpdateTask, task, map[string]interface{}{
			"status_id": task.StatusID.String(),
		})
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, actorID, taskID)
}

func (s *taskService) Delete(ctx context.Context, actorID, taskID uuid.UUID) error {
	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return err
	}
	if err := s.requirePermission(ctx, actorID, "TASKS_DELETE"); err != nil {
		return err
	}

	return s.txm.RunInTx(ctx, func(txCtx context.Context) error {
		task, err := s.tasks.GetByID(txCtx, actor.CompanyID, taskID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("task not found: %w", ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to fetch task: %w", err)
		}

		if err := s.audit(txCtx, actor, model.ActionDeleteTask, task, nil); err != nil {
			return err
		}
		return s.tasks.Delete(txCtx, task)
	})
}

func (s *taskService) AssignTeam(ctx context.Context, actorID, taskID, teamID uuid.UUID) error {
	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return err
	}
	if err := s.requirePermission(ctx, actorID, "TASKS_EDIT"); err != nil {
		return err
	}

	return s.txm.RunInTx(ctx, func(txCtx context.Context) error {
		task, err := s.tasks.GetByID(txCtx, actor.CompanyID, taskID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("task not found: %w", ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to fetch task: %w", err)
		}

		var team model.Team
		err = repository.GetDB(txCtx, s.db).
			First(&team, "id = ? AND company_id = ?", teamID, actor.CompanyID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("invalid team: %w", ErrInvalidArgument)
		}
		if err != nil {
			return fmt.Errorf("failed to fetch team: %w", err)
		}

		task.TeamID = &team.ID
		task.Status = nil
		if err := s.tasks.Update(txCtx, task); err != nil {
			return fmt.Errorf("failed to assign team: %w", err)
		}

		return s.audit(txCtx, actor, model.ActionAssignTaskTeam, task, map[string]interface{}{
			"team_id": team.ID.String(),
		})
	})
}

// ChangeStatus enforces the transition rules: the new status must be global
// or belong to the task's company, the current status must not be final, and
// a transition to the current status is rejected rather than ignored.
func (s *taskService) ChangeStatus(ctx context.Context, actorID, taskID, newStatusID uuid.UUID) (*TaskResponse, error) {
	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.requirePermission(ctx, actorID, "TASKS_EDIT"); err != nil {
		return nil, err
	}

	var newStatus *model.TaskStatus
	err = s.txm.RunInTx(ctx, func(txCtx context.Context) error {
		task, err := s.tasks.GetByID(txCtx, actor.CompanyID, taskID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("task not found: %w", ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to fetch task: %w", err)
		}

		newStatus, err = s.tasks.GetStatus(txCtx, newStatusID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("invalid status: %w", ErrInvalidArgument)
		}
		if err != nil {
			return fmt.Errorf("failed to resolve status: %w", err)
		}
		if newStatus.CompanyID != nil && *newStatus.CompanyID != task.CompanyID {
			return fmt.Errorf("status not visible to company: %w", ErrInvalidArgument)
		}

		if task.Status != nil && task.Status.IsFinal {
			return fmt.Errorf("cannot change status from final status '%s': %w", task.Status.Name, ErrInvalidState)
		}
		if task.StatusID == newStatusID {
			return fmt.Errorf("task already in the requested status: %w", ErrInvalidState)
		}

		previous := task.StatusID
		task.StatusID = newStatusID
		task.Status = nil
		if err := s.tasks.Update(txCtx, task); err != nil {
			return fmt.Errorf("failed to change status: %w", err)
		}

		return s.audit(txCtx, actor, model.ActionChangeTaskStatus, task, map[string]interface{}{
			"from_status_id": previous.String(),
			"to_status_id":   newStatusID.String(),
		})
	})
	if err != nil {
		return nil, err
	}

	s.hub.Publish(events.EventTaskStatusChanged, map[string]interface{}{
		"task_id":     taskID.String(),
		"status_id":   newStatus.ID.String(),
		"status_name": newStatus.Name,
	})

	return s.Get(ctx, actorID, taskID)
}

// Approve sets the approval flag, clearing any rejection. The StatusID
// dimension is deliberately left untouched; the two lifecycles are not
// reconciled.
func (s *taskService) Approve(ctx context.Context, actorID, taskID uuid.UUID) (*TaskResponse, error) {
	return s.setApproval(ctx, actorID, taskID, true)
}

// Reject sets the rejection flag, clearing any approval.
func (s *taskService) Reject(ctx context.Context, actorID, taskID uuid.UUID) (*TaskResponse, error) {
	return s.setApproval(ctx, actorID, taskID, false)
}

func (s *taskService) setApproval(ctx context.Context, actorID, taskID uuid.UUID, approve bool) (*TaskResponse, error) {
	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.requirePermission(ctx, actorID, "TASKS_APPROVE"); err != nil {
		return nil, err
	}

	err = s.txm.RunInTx(ctx, func(txCtx context.Context) error {
		task, err := s.tasks.GetByID(txCtx, actor.CompanyID, taskID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("task not found: %w", ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to fetch task: %w", err)
		}

		now := time.Now().UTC()
		action := model.ActionApproveTask
		if approve {
			task.IsApproved = true
			task.IsRejected = false
			task.ApprovedByID = &actor.ID
			task.ApprovedAt = &now
		} else {
			task.IsRejected = true
			task.IsApproved = false
			task.RejectedByID = &actor.ID
			task.RejectedAt = &now
			action = model.ActionRejectTask
		}

		task.Status = nil
		if err := s.tasks.Update(txCtx, task); err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}

		return s.audit(txCtx, actor, action, task, nil)
	})
	if err != nil {
		return nil, err
	}

	eventType := events.EventTaskApproved
	if !approve {
		eventType = events.EventTaskRejected
	}
	s.hub.Publish(eventType, map[string]interface{}{
		"task_id":  taskID.String(),
		"actor_id": actor.ID.String(),
	})

	return s.Get(ctx, actorID, taskID)
}

// ListStatuses returns the global status catalog so clients can discover the
// ids accepted by status transitions. Company-scoped statuses are not part of
// the shared catalog.
func (s *taskService) ListStatuses(ctx context.Context, actorID uuid.UUID) ([]StatusOptionResponse, error) {
	if _, err := s.resolveActor(ctx, actorID); err != nil {
		return nil, err
	}

	statuses, err := s.tasks.ListGlobalStatuses(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch statuses: %w", err)
	}

	res := make([]StatusOptionResponse, 0, len(statuses))
	for _, st := range statuses {
		res = append(res, StatusOptionResponse{
			ID:        st.ID,
			Name:      st.Name,
			IsFinal:   st.IsFinal,
			IsDefault: st.IsDefault,
		})
	}
	return res, nil
}

func (s *taskService) ListByStatusName(ctx context.Context, actorID uuid.UUID, statusName string) ([]TaskSummaryResponse, error) {
	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	tasks, err := s.tasks.ListByStatusName(ctx, actor.CompanyID, statusName)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tasks: %w", err)
	}
	return toTaskSummaries(tasks, ""), nil
}

func (s *taskService) ListCompleted(ctx context.Context, actorID uuid.UUID) ([]TaskSummaryResponse, error) {
	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	tasks, err := s.tasks.ListCompleted(ctx, actor.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tasks: %w", err)
	}
	return toTaskSummaries(tasks, "Completed"), nil
}

func (s *taskService) ListOverdue(ctx context.Context, actorID uuid.UUID) ([]TaskSummaryResponse, error) {
	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	tasks, err := s.tasks.ListOverdue(ctx, actor.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tasks: %w", err)
	}
	return toTaskSummaries(tasks, "Overdue"), nil
}

func (s *taskService) ListMyRecent(ctx context.Context, actorID uuid.UUID) ([]TaskResponse, error) {
	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	tasks, err := s.tasks.ListRecentAssigned(ctx, actor.CompanyID, actor.ID, 5)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tasks: %w", err)
	}

	res := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		res = append(res, toTaskResponse(t))
	}
	return res, nil
}

// --- Helpers ---

func toTaskResponse(t model.Task) TaskResponse {
	resp := TaskResponse{
		ID:           t.ID,
		Module:       t.Module,
		Description:  t.Description,
		References:   t.References,
		UserStory:    t.UserStory,
		Comment:      t.Comment,
		Source:       t.Source,
		StartDate:    t.StartDate,
		EndDate:      t.EndDate,
		IsApproved:   t.IsApproved,
		IsRejected:   t.IsRejected,
		Assigned:     []TaskRefResponse{},
		Requirements: []TaskRefResponse{},
		CreatedAt:    t.CreatedAt,
	}

	if t.Status != nil {
		resp.Status = TaskStatusResponse{ID: t.Status.ID, Name: t.Status.Name}
	} else {
		resp.Status = TaskStatusResponse{ID: t.StatusID}
	}
	if t.Project != nil {
		resp.Project = &TaskRefResponse{ID: t.Project.ID, Name: t.Project.Name}
	}
	if t.Team != nil {
		resp.Team = &TaskRefResponse{ID: t.Team.ID, Name: t.Team.Name}
	}
	if t.CreatedByUser != nil {
		resp.CreatedBy = &TaskRefResponse{ID: t.CreatedByUser.ID, Name: t.CreatedByUser.FullName()}
	}
	for _, a := range t.Assignments {
		if a.User != nil {
			resp.Assigned = append(resp.Assigned, TaskRefResponse{ID: a.User.ID, Name: a.User.FullName()})
		}
	}
	for _, r := range t.Requirements {
		if r.Requirement != nil {
			resp.Requirements = append(resp.Requirements, TaskRefResponse{ID: r.Requirement.ID, Name: r.Requirement.RequirementText})
		}
	}

	return resp
}

func toTaskSummaries(tasks []model.Task, statusOverride string) []TaskSummaryResponse {
	res := make([]TaskSummaryResponse, 0, len(tasks))
	for _, t := range tasks {
		row := TaskSummaryResponse{
			ID:      t.ID,
			Title:   t.Module,
			DueDate: t.EndDate,
		}
		if t.Project != nil {
			row.ProjectName = t.Project.Name
		}
		if t.Team != nil {
			row.TeamName = t.Team.Name
		}
		if statusOverride != "" {
			row.StatusName = statusOverride
		} else if t.Status != nil {
			row.StatusName = t.Status.Name
		}
		res = append(res, row)
	}
	return res
}
