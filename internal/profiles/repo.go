package profiles

import (
	"context"

	"github.com/angelmondragon/loadbridge-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository handles role profile persistence. One user carries exactly one
// profile, matching their role.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to profile operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateSeller persists a new seller profile row.
func (r *Repository) CreateSeller(ctx context.Context, dto CreateSellerDTO) (*models.SellerProfile, error) {
	profile := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
		return nil, err
	}
	return profile, nil
}

// CreateSupplier persists a new supplier profile row.
func (r *Repository) CreateSupplier(ctx context.Context, dto CreateSupplierDTO) (*models.SupplierProfile, error) {
	profile := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
		return nil, err
	}
	return profile, nil
}

// CreateDriver persists a new driver profile row.
func (r *Repository) CreateDriver(ctx context.Context, dto CreateDriverDTO) (*models.DriverProfile, error) {
	profile := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
		return nil, err
	}
	return profile, nil
}

// FindSellerByID loads a seller profile by its UUID.
func (r *Repository) FindSellerByID(ctx context.Context, id uuid.UUID) (*models.SellerProfile, error) {
	var profile models.SellerProfile
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// FindSupplierByID loads a supplier profile by its UUID.
func (r *Repository) FindSupplierByID(ctx context.Context, id uuid.UUID) (*models.SupplierProfile, error) {
	var profile models.SupplierProfile
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// FindDriverByID loads a driver profile by its UUID.
func (r *Repository) FindDriverByID(ctx context.Context, id uuid.UUID) (*models.DriverProfile, error) {
	var profile models.DriverProfile
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// FindSellerByUser loads the seller profile owned by the provided user.
func (r *Repository) FindSellerByUser(ctx context.Context, userID uuid.UUID) (*models.SellerProfile, error) {
	var profile models.SellerProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// FindSupplierByUser loads the supplier profile owned by the provided user.
func (r *Repository) FindSupplierByUser(ctx context.Context, userID uuid.UUID) (*models.SupplierProfile, error) {
	var profile models.SupplierProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// FindDriverByUser loads the driver profile owned by the provided user.
func (r *Repository) FindDriverByUser(ctx context.Context, userID uuid.UUID) (*models.DriverProfile, error) {
	var profile models.DriverProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateDriverAvailability flips the driver's availability flag.
func (r *Repository) UpdateDriverAvailability(ctx context.Context, driverID uuid.UUID, available bool) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.DriverProfile{}).
		Where("id = ?", driverID).
		Update("is_available", available)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
