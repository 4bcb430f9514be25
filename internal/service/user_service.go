package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"taskhub/internal/model"
	"taskhub/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DTOs for Request validation
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type SignupRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6"`
	FirstName   string `json:"first_name" binding:"required"`
	LastName    string `json:"last_name" binding:"required"`
	CompanyName string `json:"company_name" binding:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=6"`
}

type CreateUserRequest struct {
	Email     string    `json:"email" binding:"required,email"`
	FirstName string    `json:"first_name" binding:"required"`
	LastName  string    `json:"last_name" binding:"required"`
	RoleID    uuid.UUID `json:"role_id" binding:"required"`
}

type UpdateUserRequest struct {
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	RoleID    *uuid.UUID `json:"role_id"`
	IsActive  *bool      `json:"is_active"`
}

// DTO for returning User without exposing sensitive data (e.g. password hash)
type UserResponse struct {
	ID                 uuid.UUID `json:"id"`
	Email              string    `json:"email"`
	FirstName          string    `json:"first_name"`
	LastName           string    `json:"last_name"`
	FullName           string    `json:"full_name"`
	RoleID             uuid.UUID `json:"role_id"`
	RoleName           string    `json:"role_name,omitempty"`
	CompanyID          uuid.UUID `json:"company_id"`
	MustChangePassword bool      `json:"must_change_password"`
	IsActive           bool      `json:"is_active"`
	CreatedAt          string    `json:"created_at"`
}

// LoginResponse carries the signed token plus everything the client needs to
// render its shell: the user, their company, and their visible menu tree.
// When MustChangePassword is set the token is withheld and the client has to
// complete the password change first.
type LoginResponse struct {
	Token              string           `json:"token,omitempty"`
	MustChangePassword bool             `json:"must_change_password"`
	User               *UserResponse    `json:"user,omitempty"`
	Company            *CompanyResponse `json:"company,omitempty"`
	Menus              []*MenuNode      `json:"menus,omitempty"`
}

// UserService defines the interface for authentication and user management
type UserService interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Signup(ctx context.Context, req SignupRequest) (*LoginResponse, error)
	HasSuperAdmin(ctx context.Context, companyCode string) (bool, error)
	ChangePassword(ctx context.Context, actorID uuid.UUID, req ChangePasswordRequest) error
	CreateUser(ctx context.Context, actorID uuid.UUID, req CreateUserRequest) (*UserResponse, error)
	GetUser(ctx context.Context, actorID, userID uuid.UUID) (*UserResponse, error)
	ListUsers(ctx context.Context, actorID uuid.UUID, page, limit int) ([]UserResponse, int64, error)
	UpdateUser(ctx context.Context, actorID, userID uuid.UUID, req UpdateUserRequest) (*UserResponse, error)
	DeleteUser(ctx context.Context, actorID, userID uuid.UUID) error
}

type userService struct {
	db        *gorm.DB
	repo      repository.UserRepository
	perms     PermissionService
	menus     MenuService
	companies CompanyService
}

// NewUserService returns a new instance of UserService
func NewUserService(db *gorm.DB, repo repository.UserRepository, perms PermissionService, menus MenuService, companies CompanyService) UserService {
	return &userService{db: db, repo: repo, perms: perms, menus: menus, companies: companies}
}

func (s *userService) requirePermission(ctx context.Context, actorID uuid.UUID, key string) error {
	allowed, err := s.perms.HasPermission(ctx, actorID, key)
	if err != nil {
		return err
	}
	if !allowed {
		return fmt.Errorf("missing permission '%s': %w", key, ErrForbidden)
	}
	return nil
}

// resolveActor loads the acting user and scopes every later query to their
// company. The company always comes from the authenticated identity, never
// from request input.
func (s *userService) resolveActor(ctx context.Context, actorID uuid.UUID) (*model.User, error) {
	actor, err := s.repo.GetActiveByID(ctx, actorID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("unknown or inactive user: %w", ErrUnauthenticated)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve actor: %w", err)
	}
	return actor, nil
}

func (s *userService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil || !user.IsActive {
		return nil, fmt.Errorf("invalid email or password: %w", ErrUnauthenticated)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("invalid email or password: %w", ErrUnauthenticated)
	}

	// A pending forced password change blocks token issuance.
	if user.MustChangePassword {
		return &LoginResponse{MustChangePassword: true}, nil
	}

	return s.buildSession(ctx, user)
}

// Signup bootstraps a tenant: the company is found or created by name and the
// new user lands in it with the built-in SuperAdmin role.
func (s *userService) Signup(ctx context.Context, req SignupRequest) (*LoginResponse, error) {
	if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("email already exists: %w", ErrInvalidArgument)
	}

	company, err := s.companies.FindOrCreateByName(ctx, req.CompanyName)
	if err != nil {
		return nil, err
	}

	var role model.Role
	if err := s.db.WithContext(ctx).First(&role, "name = ?", "SuperAdmin").Error; err != nil {
		return nil, fmt.Errorf("failed to resolve signup role: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Email:        strings.ToLower(req.Email),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: string(hash),
		IsActive:     true,
		RoleID:       role.ID,
		CompanyID:    company.ID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txCtx := repository.WithTx(ctx, tx)
		if err := s.repo.Create(txCtx, user); err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		details, _ := json.Marshal(map[string]interface{}{"email": user.Email, "company": company.Name})
		audit := model.AuditLog{
			UserID:     &user.ID,
			CompanyID:  &company.ID,
			Action:     model.ActionSuperAdminSignup,
			EntityID:   user.ID.String(),
			EntityName: user.FullName(),
			Details:    string(details),
		}
		return tx.Create(&audit).Error
	})
	if err != nil {
		return nil, err
	}

	return s.buildSession(ctx, user)
}

// HasSuperAdmin reports whether the company behind the given code already has
// a SuperAdmin account, so signup UIs can steer new users accordingly.
func (s *userService) HasSuperAdmin(ctx context.Context, companyCode string) (bool, error) {
	var company model.Company
	err := s.db.WithContext(ctx).First(&company, "code = ?", companyCode).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("company not found: %w", ErrNotFound)
	}
	if err != nil {
		return false, fmt.Errorf("failed to fetch company: %w", err)
	}

	var count int64
	err = s.db.WithContext(ctx).Model(&model.User{}).
		Joins("JOIN roles ON roles.id = users.role_id").
		Where("users.company_id = ? AND users.is_active = ? AND roles.name = ?", company.ID, true, "SuperAdmin").
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to count admins: %w", err)
	}
	return count > 0, nil
}

func (s *userService) ChangePassword(ctx context.Context, actorID uuid.UUID, req ChangePasswordRequest) error {
	user, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return fmt.Errorf("current password does not match: %w", ErrUnauthenticated)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user.PasswordHash = string(hash)
	user.MustChangePassword = false
	if err := s.repo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// CreateUser provisions an account in the actor's company. The temporary
// password is the new user's last name and MustChangePassword is set, so the
// first login forces a reset.
func (s *userService) CreateUser(ctx context.Context, actorID uuid.UUID, req CreateUserRequest) (*UserResponse, error) {
	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.requirePermission(ctx, actorID, "USERS_CREATE"); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("email already exists: %w", ErrInvalidArgument)
	}

	var role model.Role
	if err := s.db.WithContext(ctx).First(&role, "id = ?", req.RoleID).Error; err != nil {
		return nil, fmt.Errorf("role not found: %w", ErrInvalidArgument)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.LastName), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Email:              strings.ToLower(req.Email),
		FirstName:          req.FirstName,
		LastName:           req.LastName,
		PasswordHash:       string(hash),
		MustChangePassword: true,
		IsActive:           true,
		RoleID:             role.ID,
		CompanyID:          actor.CompanyID,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	user.Role = &role
	return mapToUserResponse(user), nil
}

func (s *userService) GetUser(ctx context.Context, actorID, userID uuid.UUID) (*UserResponse, error) {
	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.requirePermission(ctx, actorID, "USERS_VIEW"); err != nil {
		return nil, err
	}

	user, err := s.getCompanyUser(ctx, actor.CompanyID, userID)
	if err != nil {
		return nil, err
	}
	return mapToUserResponse(user), nil
}

func (s *userService) ListUsers(ctx context.Context, actorID uuid.UUID, page, limit int) ([]UserResponse, int64, error) {
	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return nil, 0, err
	}
	if err := s.requirePermission(ctx, actorID, "USERS_VIEW"); err != nil {
		return nil, 0, err
	}

	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}

	users, total, err := s.repo.ListByCompany(ctx, actor.CompanyID, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, *mapToUserResponse(&users[i]))
	}
	return responses, total, nil
}

func (s *userService) UpdateUser(ctx context.Context, actorID, userID uuid.UUID, req UpdateUserRequest) (*UserResponse, error) {
	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.requirePermission(ctx, actorID, "USERS_EDIT"); err != nil {
		return nil, err
	}

	user, err := s.getCompanyUser(ctx, actor.CompanyID, userID)
	if err != nil {
		return nil, err
	}

	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.LastName != "" {
		user.LastName = req.LastName
	}
	if req.RoleID != nil {
		var role model.Role
		if err := s.db.WithContext(ctx).First(&role, "id = ?", *req.RoleID).Error; err != nil {
			return nil, fmt.Errorf("role not found: %w", ErrInvalidArgument)
		}
		user.RoleID = role.ID
		user.Role = &role
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return mapToUserResponse(user), nil
}

func (s *userService) DeleteUser(ctx context.Context, actorID, userID uuid.UUID) error {
	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return err
	}
	if err := s.requirePermission(ctx, actorID, "USERS_DELETE"); err != nil {
		return err
	}
	if actorID == userID {
		return fmt.Errorf("cannot delete own account: %w", ErrInvalidState)
	}

	if _, err := s.getCompanyUser(ctx, actor.CompanyID, userID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, userID)
}

// getCompanyUser fetches a user only if they belong to the given company.
// Users outside the actor's company read as not found.
func (s *userService) getCompanyUser(ctx context.Context, companyID, userID uuid.UUID) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).
		Preload("Role").
		First(&user, "id = ? AND company_id = ?", userID, companyID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user not found: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	return &user, nil
}

func (s *userService) buildSession(ctx context.Context, user *model.User) (*LoginResponse, error) {
	token, err := signToken(user)
	if err != nil {
		return nil, err
	}

	company, err := s.companies.Profile(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	menus, err := s.menus.MenusByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	if user.Role == nil {
		var role model.Role
		if err := s.db.WithContext(ctx).First(&role, "id = ?", user.RoleID).Error; err == nil {
			user.Role = &role
		}
	}

	return &LoginResponse{
		Token:   token,
		User:    mapToUserResponse(user),
		Company: company,
		Menus:   menus,
	}, nil
}

func signToken(user *model.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":     user.ID.String(),
		"role_id": user.RoleID.String(),
	})

	// Use same fallback strategy as middleware for simplicity here or get from env centrally
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "default_super_secret_key"
	}

	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// Helper: parse model to standard json API response
func mapToUserResponse(user *model.User) *UserResponse {
	res := &UserResponse{
		ID:                 user.ID,
		Email:              user.Email,
		FirstName:          user.FirstName,
		LastName:           user.LastName,
		FullName:           user.FullName(),
		RoleID:             user.RoleID,
		CompanyID:          user.CompanyID,
		MustChangePassword: user.MustChangePassword,
		IsActive:           user.IsActive,
		CreatedAt:          user.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if user.Role != nil {
		res.RoleName = user.Role.Name
	}
	return res
}
