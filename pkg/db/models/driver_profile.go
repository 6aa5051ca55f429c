package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/angelmondragon/loadbridge-backend/pkg/enums"
)

// DriverProfile holds licensing and dispatch data for a user with the driver
// role. ServiceAreas lists additional cities the driver covers beyond City.
type DriverProfile struct {
	ID            uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID        uuid.UUID         `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	LicenseNumber string            `gorm:"column:license_number;not null"`
	VehicleType   enums.VehicleType `gorm:"column:vehicle_type;type:vehicle_type;not null"`
	VehiclePlate  string            `gorm:"column:vehicle_plate;not null"`
	City          string            `gorm:"column:city;not null"`
	ServiceAreas  pq.StringArray    `gorm:"column:service_areas;type:text[];not null;default:ARRAY[]::text[]"`
	IsAvailable   bool              `gorm:"column:is_available;not null;default:true"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
