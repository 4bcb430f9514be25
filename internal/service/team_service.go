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

type CreateTeamRequest struct {
	Name       string     `json:"name" binding:"required"`
	MaxMembers int        `json:"max_members" binding:"required"`
	ProjectID  *uuid.UUID `json:"project_id"`
}

type UpdateTeamRequest struct {
	Name       string     `json:"name"`
	MaxMembers *int       `json:"max_members"`
	ProjectID  *uuid.UUID `json:"project_id"`
}

type TeamMemberResponse struct {
	UserID   uuid.UUID `json:"user_id"`
	FullName string    `json:"full_name"`
	Email    string    `json:"email"`
}

type TeamResponse struct {
	ID          uuid.UUID            `json:"id"`
	Name        string               `json:"name"`
	MaxMembers  int                  `json:"max_members"`
	MemberCount int                  `json:"member_count"`
	ProjectID   *uuid.UUID           `json:"project_id,omitempty"`
	Members     []TeamMemberResponse `json:"members,omitempty"`
}

// --- Interface ---

// TeamService manages teams and their memberships. Capacity is a hard
// invariant: MaxMembers stays within [5, 10] and never drops below the
// current member count.
type TeamService interface {
	Create(ctx context.Context, actorID uuid.UUID, req CreateTeamRequest) (*TeamResponse, error)
	Get(ctx context.Context, actorID, teamID uuid.UUID) (*TeamResponse, error)
	List(ctx context.Context, actorID uuid.UUID) ([]TeamResponse, error)
	Update(ctx context.Context, actorID, teamID uuid.UUID, req UpdateTeamRequest) (*TeamResponse, error)
	Delete(ctx context.Context, actorID, teamID uuid.UUID) error
	AddMember(ctx context.Context, actorID, teamID, userID uuid.UUID) error
	RemoveMember(ctx context.Context, actorID, teamID, userID uuid.UUID) error
}

type teamService struct {
	db    *gorm.DB
	users repository.UserRepository
	perms PermissionService
}

func NewTeamService(db *gorm.DB, users repository.UserRepository, perms PermissionService) TeamService {
	return &teamService{db: db, users: users, perms: perms}
}

// --- Implementation ---

func (s *teamService) requirePermission(ctx context.Context, actorID uuid.UUID, key string) error {
	allowed, err := s.perms.HasPermission(ctx, actorID, key)
	if err != nil {
		return err
	}
	if !allowed {
		return fmt.Errorf("missing permission '%s': %w", key, ErrForbidden)
	}
	return nil
}

func (s *teamService) resolveActor(ctx context.Context, actorID uuid.UUID) (*model.User, error) {
	actor, err := s.users.GetActiveByID(ctx, actorID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("unknown or inactive user: %w", ErrUnauthenticated)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve actor: %w", err)
	}
	return actor, nil
}

func (s *teamService) getCompanyTeam(ctx context.Context, companyID, teamID uuid.UUID) (*model.Team, error) {
	var team model.Team
	err := s.db.WithContext(ctx).First(&team, "id = ? AND company_id = ?", teamID, companyID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("team not found: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch team: %w", err)
	}
	return &team, nil
}

func (s *teamService) memberCount(ctx context.Context, teamID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.UserTeam{}).Where("team_id = ?", teamID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count members: %w", err)
	}
	return count, nil
}

func validateCapacity(maxMembers int) error {
	if maxMembers < model.TeamMinMembers || maxMembers > model.TeamMaxMembers {
		return fmt.Errorf("max_members must be between %d and %d: %w",
			model.TeamMinMembers, model.TeamMaxMembers, ErrInvalidArgument)
	}
	return nil
}

func (s *teamService) Create(ctx context.Context, actorID uuid.UUID, req CreateTeamRequest) (*TeamResponse, error) {
	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.requirePermission(ctx, actorID, "TEAMS_ADD"); err != nil {
		return nil, err
	}
	if err := validateCapacity(req.MaxMembers); err != nil {
		return nil, err
	}

	if req.ProjectID != nil {
		if err := s.checkProject(ctx, actor.CompanyID, *req.ProjectID); err != nil {
			return nil, err
		}
	}

	team := model.Team{
		Name:       req.Name,
		MaxMembers: req.MaxMembers,
		CompanyID:  actor.CompanyID,
		ProjectID:  req.ProjectID,
	}
	if err := s.db.WithContext(ctx).Create(&team).Error; err != nil {
		return nil, fmt.Errorf("failed to create team: %w", err)
	}

	return s.toResponse(ctx, &team, false)
}

func (s *teamService) Get(ctx context.Context, actorID, teamID uuid.UUID) (*TeamResponse, error) {
	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.requirePermission(ctx, actorID, "TEAMS_VIEW"); err != nil {
		return nil, err
	}

	team, err := s.getCompanyTeam(ctx, actor.CompanyID, teamID)
	if err != nil {
		return nil, err
	}

	// The roster itself sits behind a separate grant.
	withMembers, err := s.perms.HasPermission(ctx, actorID, "TEAMS_MEMBERS_VIEW")
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, team, withMembers)
}

func (s *teamService) List(ctx context.Context, actorID uuid.UUID) ([]TeamResponse, error) {
	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.requirePermission(ctx, actorID, "TEAMS_VIEW"); err != nil {
		return nil, err
	}

	var teams []model.Team
	err = s.db.WithContext(ctx).
		Where("company_id = ?", actor.CompanyID).
		Order("created_at asc").
		Find(&teams).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}

	responses := make([]TeamResponse, 0, len(teams))
	for i := range teams {
		res, err := s.toResponse(ctx, &teams[i], false)
		if err != nil {
			return nil, err
		}
		responses = append(responses, *res)
	}
	return responses, nil
}

func (s *teamService) Update(ctx context.Context, actorID, teamID uuid.UUID, req UpdateTeamRequest) (*TeamResponse, error) {
	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.requirePermission(ctx, actorID, "TEAMS_EDIT"); err != nil {
		return nil, err
	}

	team, err := s.getCompanyTeam(ctx, actor.CompanyID, teamID)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		team.Name = req.Name
	}
	if req.MaxMembers != nil {
		if err := validateCapacity(*req.MaxMembers); err != nil {
			return nil, err
		}
		// Shrinking below the current roster would orphan members.
		count, err := s.memberCount(ctx, team.ID)
		if err != nil {
			return nil, err
		}
		if int64(*req.MaxMembers) < count {
			return nil, fmt.Errorf("max_members %d is below current member count %d: %w",
				*req.MaxMembers, count, ErrInvalidState)
		}
		team.MaxMembers = *req.MaxMembers
	}
	if req.ProjectID != nil {
		if err := s.checkProject(ctx, actor.CompanyID, *req.ProjectID); err != nil {
			return nil, err
		}
		team.ProjectID = req.ProjectID
	}

	if err := s.db.WithContext(ctx).Save(team).Error; err != nil {
		return nil, fmt.Errorf("failed to update team: %w", err)
	}
	return s.toResponse(ctx, team, true)
}

func (s *teamService) Delete(ctx context.Context, actorID, teamID uuid.UUID) error {
	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return err
	}
	if err := s.requirePermission(ctx, actorID, "TEAMS_DELETE"); err != nil {
		return err
	}

	team, err := s.getCompanyTeam(ctx, actor.CompanyID, teamID)
	if err != nil {
		return err
	}

	var taskCount int64
	if err := s.db.WithContext(ctx).Model(&model.Task{}).Where("team_id = ?", teamID).Count(&taskCount).Error; err != nil {
		return fmt.Errorf("failed to count team tasks: %w", err)
	}
	if taskCount > 0 {
		return fmt.Errorf("team has %d assigned task(s): %w", taskCount, ErrInvalidState)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("team_id = ?", teamID).Delete(&model.UserTeam{}).Error; err != nil {
			return fmt.Errorf("failed to clear memberships: %w", err)
		}
		if err := tx.Delete(team).Error; err != nil {
			return fmt.Errorf("failed to delete team: %w", err)
		}
		return nil
	})
}

func (s *teamService) AddMember(ctx context.Context, actorID, teamID, userID uuid.UUID) error {
	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return err
	}
	if err := s.requirePermission(ctx, actorID, "TEAMS_EDIT"); err != nil {
		return err
	}

	team, err := s.getCompanyTeam(ctx, actor.CompanyID, teamID)
	if err != nil {
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
	err = s.db.WithContext(ctx).Model(&model.UserTeam{}).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		Count(&existing).Error
	if err != nil {
		return fmt.Errorf("failed to check membership: %w", err)
	}
	if existing > 0 {
		return fmt.Errorf("user is already a team member: %w", ErrInvalidState)
	}

	count, err := s.memberCount(ctx, teamID)
	if err != nil {
		return err
	}
	if count >= int64(team.MaxMembers) {
		return fmt.Errorf("team is at capacity (%d): %w", team.MaxMembers, ErrInvalidState)
	}

	membership := model.UserTeam{TeamID: teamID, UserID: userID}
	if err := s.db.WithContext(ctx).Create(&membership).Error; err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}
	return nil
}

func (s *teamService) RemoveMember(ctx context.Context, actorID, teamID, userID uuid.UUID) error {
	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return err
	}
	if err := s.requirePermission(ctx, actorID, "TEAMS_EDIT"); err != nil {
		return err
	}

	if _, err := s.getCompanyTeam(ctx, actor.CompanyID, teamID); err != nil {
		return err
	}

	result := s.db.WithContext(ctx).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		Delete(&model.UserTeam{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove member: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("membership not found: %w", ErrNotFound)
	}
	return nil
}

// --- Helpers ---

func (s *teamService) checkProject(ctx context.Context, companyID, projectID uuid.UUID) error {
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

func (s *teamService) toResponse(ctx context.Context, team *model.Team, withMembers bool) (*TeamResponse, error) {
	count, err := s.memberCount(ctx, team.ID)
	if err != nil {
		return nil, err
	}

	res := &TeamResponse{
		ID:          team.ID,
		Name:        team.Name,
		MaxMembers:  team.MaxMembers,
		MemberCount: int(count),
		ProjectID:   team.ProjectID,
	}

	if withMembers {
		var users []model.User
		err := s.db.WithContext(ctx).
			Joins("JOIN user_teams ON user_teams.user_id = users.id").
			Where("user_teams.team_id = ?", team.ID).
			Order("users.created_at asc").
			Find(&users).Error
		if err != nil {
			return nil, fmt.Errorf("failed to fetch members: %w", err)
		}
		for _, u := range users {
			res.Members = append(res.Members, TeamMemberResponse{
				UserID:   u.ID,
				FullName: u.FullName(),
				Email:    u.Email,
			})
		}
	}

	return res, nil
}
