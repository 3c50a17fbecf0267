package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Email           string         `gorm:"type:varchar(255);not null;uniqueIndex" json:"email" validate:"required,email"`
	PasswordHash    string         `gorm:"type:varchar(255);not null" json:"-"`
	Name            string         `gorm:"type:varchar(100)" json:"name"`
	IsPlatformAdmin bool           `gorm:"default:false" json:"is_platform_admin"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	Memberships []Member `gorm:"foreignKey:UserID" json:"memberships,omitempty"`
}

func (u *User) TableName() string {
	return "users"
}
