package models

import "gorm.io/gorm"

// DefaultImageFile is the placeholder profile picture assigned at registration.
const DefaultImageFile = "default.jpg"

type User struct {
	gorm.Model
	Username  string `gorm:"size:20;uniqueIndex;not null"`
	Email     string `gorm:"size:120;uniqueIndex;not null"`
	Password  string `gorm:"not null" json:"-"` // bcrypt hash, never plaintext
	ImageFile string `gorm:"size:64;not null"`
	Posts     []Post `gorm:"foreignKey:UserID"`
}
