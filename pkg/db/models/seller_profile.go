package models

import (
	"time"

	"github.com/google/uuid"
)

// SellerProfile holds the storefront identity of a user with the seller role.
type SellerProfile struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID       uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	BusinessName string    `gorm:"column:business_name;not null"`
	City         string    `gorm:"column:city;not null"`
	Address      string    `gorm:"column:address;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
