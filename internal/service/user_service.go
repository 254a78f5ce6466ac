package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/omomfi/district-reports-api/internal/catalog"
	"github.com/omomfi/district-reports-api/internal/dto"
	"github.com/omomfi/district-reports-api/internal/models"
	"github.com/omomfi/district-reports-api/internal/policy"
	"github.com/omomfi/district-reports-api/internal/repository"
	appErrors "github.com/omomfi/district-reports-api/pkg/errors"
)

type userRepository interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	List(ctx context.Context, filter dto.UserFilter) ([]models.User, int, error)
}

// UserService manages accounts. Only the main office reaches these
// operations.
type UserService struct {
	repo      userRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService constructs a UserService.
func NewUserService(repo userRepository, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &UserService{repo: repo, validator: validate, logger: logger}
}

// List returns accounts matching the filter.
func (s *UserService) List(ctx context.Context, actor policy.Actor, filter dto.UserFilter) ([]models.User, int, error) {
	if err := policy.CanManageUsers(actor); err != nil {
		return nil, 0, err
	}
	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}
	return users, total, nil
}

// Create provisions a new account. District roles must carry a known
// district; the main office role must not carry one.
func (s *UserService) Create(ctx context.Context, actor policy.Actor, req dto.CreateUserRequest) (*models.User, error) {
	if err := policy.CanManageUsers(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid user payload")
	}

	var district *string
	if req.Role.DistrictScoped() {
		if req.District == nil || *req.District == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("role %s requires a district", req.Role))
		}
		d, ok := catalog.NormalizeDistrict(*req.District)
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown district: %s", *req.District))
		}
		district = &d.ID
	} else if req.District != nil && *req.District != "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "main office accounts must not carry a district")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	user := &models.User{
		Username:     req.Username,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		Position:     req.Position,
		EmailAddress: req.EmailAddress,
		Role:         req.Role,
		District:     district,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) {
			return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("username already taken: %s", req.Username))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user")
	}

	s.logger.Info("user created",
		zap.String("username", user.Username),
		zap.String("role", string(user.Role)),
	)
	return user, nil
}

type seedAccount struct {
	username string
	fullName string
	role     models.UserRole
	district string
}

var seedAccounts = []seedAccount{
	{username: "district1_user", fullName: "District One User", role: models.RoleDistrictUser, district: "district1"},
	{username: "district1_manager", fullName: "District One Manager", role: models.RoleDistrictManager, district: "district1"},
	{username: "district2_user", fullName: "District Two User", role: models.RoleDistrictUser, district: "district2"},
	{username: "district2_manager", fullName: "District Two Manager", role: models.RoleDistrictManager, district: "district2"},
	{username: "mainoffice_user", fullName: "Main Office User", role: models.RoleMainOffice},
}

// Bootstrap seeds the default accounts when they are missing. Intended for
// development and first-run environments; gated behind configuration.
func (s *UserService) Bootstrap(ctx context.Context, defaultPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(defaultPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash bootstrap password: %w", err)
	}

	for _, seed := range seedAccounts {
		if _, err := s.repo.FindByUsername(ctx, seed.username); err == nil {
			continue
		} else if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("check bootstrap account %s: %w", seed.username, err)
		}

		var district *string
		if seed.district != "" {
			d := seed.district
			district = &d
		}
		user := &models.User{
			Username:     seed.username,
			PasswordHash: string(hash),
			FullName:     seed.fullName,
			Position:     "Seeded Account",
			EmailAddress: seed.username + "@example.com",
			Role:         seed.role,
			District:     district,
		}
		if err := s.repo.Create(ctx, user); err != nil {
			if errors.Is(err, repository.ErrDuplicateUsername) {
				continue
			}
			return fmt.Errorf("seed bootstrap account %s: %w", seed.username, err)
		}
		s.logger.Info("seeded bootstrap account", zap.String("username", seed.username))
	}
	return nil
}
