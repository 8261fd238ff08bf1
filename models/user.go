// models/user.go
package models

import "time"

// User represents a marketplace customer.
type User struct {
	ID           string    `bson:"id" json:"id"`
	Email        string    `bson:"email" json:"email"`
	Name         string    `bson:"name" json:"name"`
	PhoneNumber  string    `bson:"phoneNumber" json:"phoneNumber,omitempty"`
	PasswordHash string    `bson:"passwordHash" json:"-"`
	Address      *Address  `bson:"address,omitempty" json:"address,omitempty"`
	FCMToken     string    `bson:"fcmToken,omitempty" json:"-"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}

// RegisterRequest is the sign-up payload.
type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required"`
	Name        string `json:"name" binding:"required"`
	PhoneNumber string `json:"phoneNumber"`
}

// LoginRequest is the sign-in payload.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ProfileUpdate carries the optional profile fields a user may change.
type ProfileUpdate struct {
	Name        *string  `json:"name"`
	PhoneNumber *string  `json:"phoneNumber"`
	Address     *Address `json:"address"`
	FCMToken    *string  `json:"fcmToken"`
}

// PasswordChange is the payload of the change-password endpoint.
type PasswordChange struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

// AuthResponse contains the user's ID, token, and profile basics.
type AuthResponse struct {
	ID        string    `json:"id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Name      string    `json:"name,omitempty"`
	Email     string    `json:"email,omitempty"`
}
