package profiles

import (
	"context"
	"fmt"

	"github.com/angelmondragon/loadbridge-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/loadbridge-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type driverRepository interface {
	FindDriverByID(ctx context.Context, id uuid.UUID) (*models.DriverProfile, error)
	UpdateDriverAvailability(ctx context.Context, driverID uuid.UUID, available bool) (int64, error)
}

// Service exposes profile operations beyond plain repository reads.
type Service interface {
	GetDriver(ctx context.Context, driverID uuid.UUID) (*DriverDTO, error)
	SetDriverAvailability(ctx context.Context, driverID uuid.UUID, available bool) (*DriverDTO, error)
}

type service struct {
	drivers driverRepository
}

// NewService builds a profiles service with the provided repository.
func NewService(drivers driverRepository) (Service, error) {
	if drivers == nil {
		return nil, fmt.Errorf("driver repository required")
	}
	return &service{drivers: drivers}, nil
}

func (s *service) GetDriver(ctx context.Context, driverID uuid.UUID) (*DriverDTO, error) {
	if driverID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "profile context missing")
	}
	driver, err := s.drivers.FindDriverByID(ctx, driverID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "driver profile not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load driver")
	}
	return DriverFromModel(driver), nil
}

func (s *service) SetDriverAvailability(ctx context.Context, driverID uuid.UUID, available bool) (*DriverDTO, error) {
	if driverID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "profile context missing")
	}
	rows, err := s.drivers.UpdateDriverAvailability(ctx, driverID, available)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update driver availability")
	}
	if rows == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "driver profile not found")
	}
	driver, err := s.drivers.FindDriverByID(ctx, driverID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load driver")
	}
	return DriverFromModel(driver), nil
}
