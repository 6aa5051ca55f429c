package auth

import (
	"github.com/angelmondragon/loadbridge-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
// ProfileID is the role profile (seller, supplier or driver) acting for the user.
type AccessTokenPayload struct {
	UserID    uuid.UUID
	ProfileID uuid.UUID
	Role      enums.UserRole
	JTI       string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID    uuid.UUID      `json:"user_id"`
	ProfileID uuid.UUID      `json:"profile_id"`
	Role      enums.UserRole `json:"role"`
	jwt.RegisteredClaims
}
