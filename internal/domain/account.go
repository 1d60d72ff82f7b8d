package domain

import "time"

// AccountModel is the identity provider's credential record. Its ID is
// shared with the user's profile.
type AccountModel struct {
	ID           string    `gorm:"type:varchar(36);primaryKey"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	DisplayName  string    `gorm:"type:varchar(100)"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

func (AccountModel) TableName() string { return "accounts" }

// SignupRequest represents a registration request.
type SignupRequest struct {
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" binding:"omitempty,eqfield=Password"`
	Name            string `json:"name" binding:"required,max=100"`
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshTokenRequest represents a refresh token request.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// AuthResponse is returned by signup, login and refresh.
type AuthResponse struct {
	User             *UserProfile `json:"user"`
	AccessToken      string       `json:"access_token"`
	RefreshToken     string       `json:"refresh_token"`
	AccessExpiresAt  time.Time    `json:"access_expires_at"`
	RefreshExpiresAt time.Time    `json:"refresh_expires_at"`
}

// AuthState is one sign-in or sign-out transition. User is nil when
// signed out.
type AuthState struct {
	SignedIn bool         `json:"signed_in"`
	User     *UserProfile `json:"user"`
	At       time.Time    `json:"at"`
}
