package models

import "time"

// DefaultCategoryColor is used when a category is created without a color.
const DefaultCategoryColor = "#6d28d9"

// Category groups devlog posts. Categories referenced by posts cannot be
// deleted (protect-on-delete, enforced in the repository).
type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:50;unique;not null" json:"name"`
	Slug        string    `gorm:"size:60;unique;not null" json:"slug"`
	Color       string    `gorm:"size:7;default:#6d28d9" json:"color"`
	Description string    `gorm:"size:200" json:"description"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}
