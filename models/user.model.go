package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	FirstName   string `json:"first_name" gorm:"default:''"`
	LastName    string `json:"last_name" gorm:"default:''"`
	Email       string `json:"email" gorm:"unique;not null"`
	Password    string `json:"-" gorm:"not null"`
	Department  string `json:"department" gorm:"default:''"` // ilahiyat, isg, hemsirelik, ...
	IsTeacher   bool   `json:"is_teacher" gorm:"default:false"`
	IsStudent   bool   `json:"is_student" gorm:"default:false"`
	IsStaff     bool   `json:"is_staff" gorm:"default:false"`
	TotalPoints uint   `json:"total_points" gorm:"default:0"`
	LastLogin   *time.Time
	IsDeleted   bool `gorm:"default:false"`
}

// FullName returns the display name used in emails and AI prompts
func (u *User) FullName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Email
	}
	return u.FirstName + " " + u.LastName
}
