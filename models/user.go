package models

import (
	"time"
)

// Placeholder profile values given to every new account
const (
	DefaultAddress = "Update your address"
	DefaultCity    = "Update your city"
	DefaultCountry = "Update your country"
)

type User struct {
	Base
	Fullname       string `json:"fullname" gorm:"not null"`
	Email          string `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash   string `json:"-" gorm:"not null"`
	Contact        string `json:"contact" gorm:"not null"`
	Address        string `json:"address" gorm:"default:'Update your address'"`
	City           string `json:"city" gorm:"default:'Update your city'"`
	Country        string `json:"country" gorm:"default:'Update your country'"`
	ProfilePicture string `json:"profilePicture"`
	Admin          bool   `json:"admin" gorm:"default:false"`
	IsVerified     bool   `json:"isVerified" gorm:"default:false"`

	LastLogin time.Time `json:"lastLogin"`

	// verification and reset secrets never leave the server
	VerificationToken           *string    `json:"-" gorm:"index"`
	VerificationTokenExpiresAt  *time.Time `json:"-"`
	ResetPasswordToken          *string    `json:"-" gorm:"index"`
	ResetPasswordTokenExpiresAt *time.Time `json:"-"`
}
