package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/angelmondragon/loadbridge-backend/internal/profiles"
	"github.com/angelmondragon/loadbridge-backend/internal/users"
	"github.com/angelmondragon/loadbridge-backend/pkg/config"
	"github.com/angelmondragon/loadbridge-backend/pkg/db"
	"github.com/angelmondragon/loadbridge-backend/pkg/db/models"
	"github.com/angelmondragon/loadbridge-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/loadbridge-backend/pkg/errors"
	"github.com/angelmondragon/loadbridge-backend/pkg/security"
	"gorm.io/gorm"
)

// RegisterRequest contains the payload required for onboarding a new account.
// The role decides which of the profile sections is required.
type RegisterRequest struct {
	FirstName string         `json:"first_name" validate:"required"`
	LastName  string         `json:"last_name" validate:"required"`
	Email     string         `json:"email" validate:"required,email"`
	Password  string         `json:"password" validate:"required,min=8"`
	Phone     *string        `json:"phone,omitempty"`
	Role      enums.UserRole `json:"role" validate:"required"`
	City      string         `json:"city" validate:"required"`
	Address   string         `json:"address"`

	// Seller fields.
	BusinessName string `json:"business_name,omitempty"`

	// Supplier fields.
	CompanyName string `json:"company_name,omitempty"`

	// Driver fields.
	LicenseNumber string            `json:"license_number,omitempty"`
	VehicleType   enums.VehicleType `json:"vehicle_type,omitempty"`
	VehiclePlate  string            `json:"vehicle_plate,omitempty"`
	ServiceAreas  []string          `json:"service_areas,omitempty"`
}

// RegisterService handles the onboarding transaction.
type RegisterService interface {
	Register(ctx context.Context, req RegisterRequest) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type registerUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
}

type registerProfileRepository interface {
	CreateSeller(ctx context.Context, dto profiles.CreateSellerDTO) (*models.SellerProfile, error)
	CreateSupplier(ctx context.Context, dto profiles.CreateSupplierDTO) (*models.SupplierProfile, error)
	CreateDriver(ctx context.Context, dto profiles.CreateDriverDTO) (*models.DriverProfile, error)
}

// RegisterServiceParams packages the dependencies for the registration flow.
// The repo factories default to the real repositories bound to the
// transaction; tests swap them for stubs.
type RegisterServiceParams struct {
	DB                 *db.Client
	TxRunner           txRunner
	UserRepoFactory    func(tx *gorm.DB) registerUserRepository
	ProfileRepoFactory func(tx *gorm.DB) registerProfileRepository
	PasswordConfig     config.PasswordConfig
}

type registerService struct {
	tx          txRunner
	userRepo    func(tx *gorm.DB) registerUserRepository
	profileRepo func(tx *gorm.DB) registerProfileRepository
	passwordCfg config.PasswordConfig
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	runner := params.TxRunner
	if runner == nil && params.DB != nil {
		runner = params.DB
	}
	if runner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	userFactory := params.UserRepoFactory
	if userFactory == nil {
		userFactory = func(tx *gorm.DB) registerUserRepository {
			return users.NewRepository(tx)
		}
	}
	profileFactory := params.ProfileRepoFactory
	if profileFactory == nil {
		profileFactory = func(tx *gorm.DB) registerProfileRepository {
			return profiles.NewRepository(tx)
		}
	}
	return &registerService{
		tx:          runner,
		userRepo:    userFactory,
		profileRepo: profileFactory,
		passwordCfg: params.PasswordConfig,
	}, nil
}

func (s *registerService) Register(ctx context.Context, req RegisterRequest) error {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if !req.Role.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}
	if strings.TrimSpace(req.City) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "city is required")
	}
	if err := validateRoleFields(req); err != nil {
		return err
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := s.userRepo(tx)
		profileRepo := s.profileRepo(tx)

		if _, err := userRepo.FindByEmail(ctx, email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
		}

		user, err := userRepo.Create(ctx, users.CreateUserDTO{
			Email:        email,
			PasswordHash: passwordHash,
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			Phone:        req.Phone,
			Role:         req.Role,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}

		switch req.Role {
		case enums.UserRoleSeller:
			_, err = profileRepo.CreateSeller(ctx, profiles.CreateSellerDTO{
				UserID:       user.ID,
				BusinessName: req.BusinessName,
				City:         req.City,
				Address:      req.Address,
			})
		case enums.UserRoleSupplier:
			_, err = profileRepo.CreateSupplier(ctx, profiles.CreateSupplierDTO{
				UserID:      user.ID,
				CompanyName: req.CompanyName,
				City:        req.City,
				Address:     req.Address,
			})
		case enums.UserRoleDriver:
			_, err = profileRepo.CreateDriver(ctx, profiles.CreateDriverDTO{
				UserID:        user.ID,
				LicenseNumber: req.LicenseNumber,
				VehicleType:   req.VehicleType,
				VehiclePlate:  req.VehiclePlate,
				City:          req.City,
				ServiceAreas:  req.ServiceAreas,
			})
		}
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create profile")
		}

		return nil
	})
}

func validateRoleFields(req RegisterRequest) error {
	switch req.Role {
	case enums.UserRoleSeller:
		if strings.TrimSpace(req.BusinessName) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "business_name is required for sellers")
		}
	case enums.UserRoleSupplier:
		if strings.TrimSpace(req.CompanyName) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "company_name is required for suppliers")
		}
	case enums.UserRoleDriver:
		if strings.TrimSpace(req.LicenseNumber) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "license_number is required for drivers")
		}
		if !req.VehicleType.IsValid() {
			return pkgerrors.New(pkgerrors.CodeValidation, "invalid vehicle type")
		}
	}
	return nil
}
