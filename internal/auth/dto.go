package auth

import (
	"github.com/angelmondragon/loadbridge-backend/internal/users"
	"github.com/angelmondragon/loadbridge-backend/pkg/enums"
	"github.com/google/uuid"
)

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse contains the tokens and profile identity produced by a
// successful login.
type LoginResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	ProfileID    uuid.UUID      `json:"profile_id"`
	Role         enums.UserRole `json:"role"`
	User         *users.UserDTO `json:"user"`
}
