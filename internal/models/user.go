// Package models contains data structures for the application's domain models.
package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// User represents a registered account. Email is the login identity;
// email, username and phone are each globally unique.
type User struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Username    string         `gorm:"unique;not null;index" json:"username"`
	Email       string         `gorm:"unique;not null;index" json:"email"`
	Password    string         `gorm:"not null" json:"-"`
	FirstName   string         `gorm:"not null" json:"first_name"`
	LastName    string         `gorm:"not null" json:"last_name"`
	Phone       string         `gorm:"unique;not null;index" json:"phone"`
	BirthDate   time.Time      `gorm:"not null" json:"birth_date"`
	IsStaff     bool           `gorm:"default:false" json:"is_staff"`
	IsSuperuser bool           `gorm:"default:false" json:"is_superuser"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	LastLoginAt *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Profile *Profile `gorm:"foreignKey:UserID" json:"profile,omitempty"`
	Posts   []Post   `gorm:"foreignKey:AuthorID" json:"posts,omitempty"`
}

// FullName returns the user's display name.
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// ShortName returns the informal name used in greetings and comment bylines.
func (u *User) ShortName() string {
	return u.FirstName
}

// Age is derived from the birth date; it is never stored.
func (u *User) Age() int {
	if u.BirthDate.IsZero() {
		return 0
	}
	return int(time.Since(u.BirthDate).Hours() / 24 / 365)
}

// FormattedPhone renders the stored digit string as a Brazilian phone number.
// 11 digits -> (XX) XXXXX-XXXX, 10 digits -> (XX) XXXX-XXXX, anything else as-is.
func (u *User) FormattedPhone() string {
	p := u.Phone
	switch len(p) {
	case 11:
		return fmt.Sprintf("(%s) %s-%s", p[:2], p[2:7], p[7:])
	case 10:
		return fmt.Sprintf("(%s) %s-%s", p[:2], p[2:6], p[6:])
	default:
		return p
	}
}
