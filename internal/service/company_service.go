package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"taskhub/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateCompanyRequest struct {
	Name string `json:"name" binding:"required"`
}

type UpdateCompanyRequest struct {
	Name string `json:"name" binding:"required"`
}

type CompanyResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"created_at"`
}

// --- Interface ---

// CompanyService owns tenant records and the deterministic company code.
type CompanyService interface {
	Create(ctx context.Context, req CreateCompanyRequest) (*CompanyResponse, error)
	List(ctx context.Context) ([]CompanyResponse, error)
	GetByCode(ctx context.Context, code string) (*CompanyResponse, error)
	Profile(ctx context.Context, actorID uuid.UUID) (*CompanyResponse, error)
	UpdateProfile(ctx context.Context, actorID uuid.UUID, req UpdateCompanyRequest) (*CompanyResponse, error)
	// FindOrCreateByName returns the existing company with the given name or
	// creates one with a freshly generated code. Used by superadmin signup.
	FindOrCreateByName(ctx context.Context, name string) (*model.Company, error)
}

type companyService struct {
	db *gorm.DB
}

func NewCompanyService(db *gorm.DB) CompanyService {
	return &companyService{db: db}
}

// --- Implementation ---

func (s *companyService) Create(ctx context.Context, req CreateCompanyRequest) (*CompanyResponse, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("company name is required: %w", ErrInvalidArgument)
	}

	var company model.Company
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		code, err := generateCompanyCode(tx, req.Name)
		if err != nil {
			return err
		}
		company = model.Company{Name: req.Name, Code: code}
		if err := tx.Create(&company).Error; err != nil {
			return fmt.Errorf("failed to create company: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := toCompanyResponse(company)
	return &resp, nil
}

func (s *companyService) List(ctx context.Context) ([]CompanyResponse, error) {
	var companies []model.Company
	if err := s.db.WithContext(ctx).Order("created_at asc").Find(&companies).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch companies: %w", err)
	}

	res := make([]CompanyResponse, 0, len(companies))
	for _, c := range companies {
		res = append(res, toCompanyResponse(c))
	}
	return res, nil
}

func (s *companyService) GetByCode(ctx context.Context, code string) (*CompanyResponse, error) {
	var company model.Company
	err := s.db.WithContext(ctx).First(&company, "code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("company not found: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch company: %w", err)
	}

	resp := toCompanyResponse(company)
	return &resp, nil
}

func (s *companyService) Profile(ctx context.Context, actorID uuid.UUID) (*CompanyResponse, error) {
	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	var company model.Company
	if err := s.db.WithContext(ctx).First(&company, "id = ?", actor.CompanyID).Error; err != nil {
		return nil, fmt.Errorf("company not found: %w", ErrNotFound)
	}

	resp := toCompanyResponse(company)
	return &resp, nil
}

func (s *companyService) UpdateProfile(ctx context.Context, actorID uuid.UUID, req UpdateCompanyRequest) (*CompanyResponse, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("company name is required: %w", ErrInvalidArgument)
	}

	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	var company model.Company
	if err := s.db.WithContext(ctx).First(&company, "id = ?", actor.CompanyID).Error; err != nil {
		return nil, fmt.Errorf("company not found: %w", ErrNotFound)
	}

	company.Name = req.Name
	if err := s.db.WithContext(ctx).Save(&company).Error; err != nil {
		return nil, fmt.Errorf("failed to update company: %w", err)
	}

	resp := toCompanyResponse(company)
	return &resp, nil
}

func (s *companyService) FindOrCreateByName(ctx context.Context, name string) (*model.Company, error) {
	var company model.Company
	err := s.db.WithContext(ctx).First(&company, "name = ?", name).Error
	if err == nil {
		return &company, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to fetch company: %w", err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		code, genErr := generateCompanyCode(tx, name)
		if genErr != nil {
			return genErr
		}
		company = model.Company{Name: name, Code: code}
		return tx.Create(&company).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create company: %w", err)
	}

	return &company, nil
}

func (s *companyService) resolveActor(ctx context.Context, actorID uuid.UUID) (*model.User, error) {
	var actor model.User
	err := s.db.WithContext(ctx).First(&actor, "id = ? AND is_active = ?", actorID, true).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve actor: %w", err)
	}
	return &actor, nil
}

// --- Code generation ---

// generateCompanyCode builds the next PFX-YYYY-SEQ code for the given name.
// The prefix is the first three letters of the name, uppercased and padded
// with 'X'; the sequence counts existing codes under the same prefix+year.
// On postgres an advisory xact lock serializes concurrent generation for one
// prefix; the unique index on companies.code is the backstop either way.
func generateCompanyCode(tx *gorm.DB, companyName string) (string, error) {
	prefix := codePrefix(companyName)
	year := time.Now().UTC().Year()
	stem := fmt.Sprintf("%s-%d", prefix, year)

	if tx.Dialector.Name() == "postgres" {
		tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", stem)
	}

	var count int64
	if err := tx.Model(&model.Company{}).
		Where("code LIKE ?", stem+"%").
		Count(&count).Error; err != nil {
		return "", fmt.Errorf("failed to count company codes: %w", err)
	}

	return fmt.Sprintf("%s-%03d", stem, count+1), nil
}

// codePrefix keeps the first three letters of the name (non-letters skipped),
// uppercased, right-padded with 'X' to exactly three characters.
func codePrefix(name string) string {
	letters := make([]rune, 0, 3)
	for _, r := range name {
		if unicode.IsLetter(r) {
			letters = append(letters, unicode.ToUpper(r))
			if len(letters) == 3 {
				break
			}
		}
	}
	for len(letters) < 3 {
		letters = append(letters, 'X')
	}
	return string(letters)
}

func toCompanyResponse(c model.Company) CompanyResponse {
	return CompanyResponse{
		ID:        c.ID,
		Name:      c.Name,
		Code:      c.Code,
		CreatedAt: c.CreatedAt,
	}
}
