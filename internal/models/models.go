package models

import (
	"time"

	"gorm.io/gorm"
)

// User is an account of the grammar-check service
type User struct {
	gorm.Model
	Email        string `gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	// RefreshToken is nil once the user has logged out
	RefreshToken *string `gorm:"index;size:255"`
}

// NewUser creates a user from an email and a bcrypt hash
func NewUser(email, passwordHash string) *User {
	return &User{
		Email:        email,
		PasswordHash: passwordHash,
	}
}

// Profile is what /whoami reports about a user
type Profile struct {
	ID        uint      `json:"user_id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Profile returns the public view of u
func (u *User) Profile() Profile {
	return Profile{
		ID:        u.ID,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

// Review is the result of a grammar check or an improvement suggestion.
// Field names follow the service's response keys.
type Review struct {
	Original   string `json:"VĂN BẢN GỐC"`
	Corrected  string `json:"VĂN BẢN ĐÃ SỬA,omitempty"`
	Suggestion string `json:"GỢI Ý CẢI THIỆN,omitempty"`
}
