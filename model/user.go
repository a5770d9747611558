package model

import (
	"time"

	"gorm.io/gorm"
)

// User stores a confirmed account. A row exists only after the owner of the
// email address verified the code sent at registration.
type User struct {
	ID          uint   `gorm:"primarykey"`
	Email       string `gorm:"uniqueIndex;size:256;not null"`
	Password    string `gorm:"size:64;not null"`
	FirstName   string `gorm:"size:64;not null"`
	LastName    string `gorm:"size:64;not null"`
	Birthday    string `gorm:"size:32;not null"`
	Phone       string `gorm:"size:32;not null"`
	ValidIDPath string `gorm:"size:256;not null"` // empty when no identity document was uploaded
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == 0 {
		u.ID = GenerateID()
	}
	return nil
}
