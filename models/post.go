package models

import (
	"time"

	"gorm.io/gorm"
)

// TitleMaxLen caps post titles at the column size.
const TitleMaxLen = 100

type Post struct {
	gorm.Model
	Title      string    `gorm:"size:100;not null"`
	Content    string    `gorm:"type:text;not null"`
	DatePosted time.Time `gorm:"index;not null"`
	UserID     uint      `gorm:"index;not null"`
	Author     User      `gorm:"foreignKey:UserID"`
}
