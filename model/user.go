package model

import (
	"time"

	"gorm.io/gorm"
)

// User is an account able to sign in as a patient or a doctor
// @Description User account information
type User struct {
	gorm.Model
	Name           string `json:"name" gorm:"type:varchar(150);not null" example:"Alice"`
	Email          string `json:"email" gorm:"type:varchar(191);uniqueIndex;not null" example:"alice@example.com"`
	Password       string `json:"-" gorm:"type:varchar(255);not null"`
	PasswordSalt   string `json:"-" gorm:"type:varchar(64)"`
	RoleID         uint32 `json:"role_id" gorm:"not null" example:"1"`
	FailedAttempts int    `json:"-" gorm:"default:0"`
	LockedUntil    *int64 `json:"-"`
}

// Session is a login session bound to a signed token
type Session struct {
	gorm.Model
	SessionToken string    `json:"session_token" gorm:"type:varchar(512);uniqueIndex;not null"`
	UserID       uint      `json:"user_id" gorm:"index;not null"`
	ExpiresAt    time.Time `json:"expires_at" gorm:"index"`
	ClientIP     string    `json:"client_ip" gorm:"type:varchar(45)"`
	Browser      string    `json:"browser" gorm:"type:varchar(512)"`
}
