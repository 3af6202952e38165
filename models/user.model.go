package models

import (
	"gorm.io/gorm"
)

// User is a read-only mirror of the identity layer, used for notification
// addresses and display names.
type User struct {
	gorm.Model
	Name      string `gorm:"default:''"`
	Email     string `gorm:"unique;not null"`
	Role      string `gorm:"default:'USER'"` // USER, INSTRUCTOR, CENTER_ADMIN, ADMIN
	CenterID  *uint  `gorm:"index"`
	IsDeleted bool   `gorm:"default:false"`
}
