package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is stored in PostgreSQL. Every other entity refers to it by ID.
type User struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"index"`
	Email       string    `json:"email" gorm:"uniqueIndex"` // Ensure email is unique across all users
	Role        string    `json:"role" gorm:"size:10;default:'user'"`
	AvatarURL   string    `json:"avatar_url"`
	Password    string    `json:"-"`                       // Store hashed password, ignore for JSON serialization
	FirebaseUID *string   `json:"-" gorm:"uniqueIndex"`    // Link to Firebase User UID, nil for local accounts
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UserCompact is the public profile attached to posts, comments, follows and
// notifications. It never carries credentials.
type UserCompact struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

func (u *User) ToCompact() UserCompact {
	return UserCompact{ID: u.ID, Name: u.Name, Email: u.Email, AvatarURL: u.AvatarURL}
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

type CreateLocalUserRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type UpdateProfileRequest struct {
	Name      string `json:"name,omitempty" validate:"omitempty,min=2,max=50"`
	AvatarURL string `json:"avatar_url,omitempty" validate:"omitempty,url"`
}
