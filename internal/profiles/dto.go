package profiles

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/angelmondragon/loadbridge-backend/pkg/db/models"
	"github.com/angelmondragon/loadbridge-backend/pkg/enums"
)

// CreateSellerDTO holds creation-time data for a seller profile.
type CreateSellerDTO struct {
	UserID       uuid.UUID
	BusinessName string
	City         string
	Address      string
}

// ToModel maps the DTO into a persistable seller profile.
func (d CreateSellerDTO) ToModel() *models.SellerProfile {
	return &models.SellerProfile{
		ID:           uuid.New(),
		UserID:       d.UserID,
		BusinessName: d.BusinessName,
		City:         d.City,
		Address:      d.Address,
	}
}

// CreateSupplierDTO holds creation-time data for a supplier profile.
type CreateSupplierDTO struct {
	UserID      uuid.UUID
	CompanyName string
	City        string
	Address     string
}

// ToModel maps the DTO into a persistable supplier profile.
func (d CreateSupplierDTO) ToModel() *models.SupplierProfile {
	return &models.SupplierProfile{
		ID:          uuid.New(),
		UserID:      d.UserID,
		CompanyName: d.CompanyName,
		City:        d.City,
		Address:     d.Address,
		IsActive:    true,
	}
}

// CreateDriverDTO holds creation-time data for a driver profile.
type CreateDriverDTO struct {
	UserID        uuid.UUID
	LicenseNumber string
	VehicleType   enums.VehicleType
	VehiclePlate  string
	City          string
	ServiceAreas  []string
}

// ToModel maps the DTO into a persistable driver profile.
func (d CreateDriverDTO) ToModel() *models.DriverProfile {
	areas := d.ServiceAreas
	if areas == nil {
		areas = []string{}
	}
	return &models.DriverProfile{
		ID:            uuid.New(),
		UserID:        d.UserID,
		LicenseNumber: d.LicenseNumber,
		VehicleType:   d.VehicleType,
		VehiclePlate:  d.VehiclePlate,
		City:          d.City,
		ServiceAreas:  pq.StringArray(areas),
		IsAvailable:   true,
	}
}

// DriverDTO exposes driver profile data in API responses.
type DriverDTO struct {
	ID            uuid.UUID         `json:"id"`
	UserID        uuid.UUID         `json:"user_id"`
	LicenseNumber string            `json:"license_number"`
	VehicleType   enums.VehicleType `json:"vehicle_type"`
	VehiclePlate  string            `json:"vehicle_plate"`
	City          string            `json:"city"`
	ServiceAreas  []string          `json:"service_areas"`
	IsAvailable   bool              `json:"is_available"`
	CreatedAt     time.Time         `json:"created_at"`
}

// DriverFromModel maps the persisted driver profile into a DTO.
func DriverFromModel(m *models.DriverProfile) *DriverDTO {
	if m == nil {
		return nil
	}
	return &DriverDTO{
		ID:            m.ID,
		UserID:        m.UserID,
		LicenseNumber: m.LicenseNumber,
		VehicleType:   m.VehicleType,
		VehiclePlate:  m.VehiclePlate,
		City:          m.City,
		ServiceAreas:  []string(m.ServiceAreas),
		IsAvailable:   m.IsAvailable,
		CreatedAt:     m.CreatedAt,
	}
}
