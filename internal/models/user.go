package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID            uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	Email         string     `gorm:"uniqueIndex;not null" json:"email"`
	FullName      string     `gorm:"not null" json:"full_name"`
	PasswordHash  string     `gorm:"not null" json:"-"`
	IsActive      bool       `gorm:"default:true" json:"is_active"`
	EmailVerified bool       `gorm:"default:false" json:"email_verified"`
	Tier          string     `gorm:"default:'Starter'" json:"tier"`
	TotalSavings  float64    `gorm:"default:0" json:"total_savings"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	LastLogin     *time.Time `json:"last_login,omitempty"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}

	return nil
}

func (User) TableName() string {
	return "users"
}
