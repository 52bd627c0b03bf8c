package models

import (
	"time"

	"gorm.io/gorm"
)

// Post lifecycle states. Draft is the initial state; archived is terminal.
const (
	PostStatusDraft     = "draft"
	PostStatusPublished = "published"
	PostStatusArchived  = "archived"
)

// Post is a devlog entry. Title and slug are globally unique; the author is
// immutable after creation. PublishedAt is set exactly once, on the first
// transition into published, and never cleared by later transitions.
type Post struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	Title           string     `gorm:"size:200;unique;not null" json:"title"`
	Slug            string     `gorm:"size:220;unique;not null;index" json:"slug"`
	Content         string     `gorm:"type:text;not null" json:"content"`
	Excerpt         string     `gorm:"size:300" json:"excerpt"`
	MetaDescription string     `gorm:"size:160" json:"meta_description"`
	FeaturedImage   string     `json:"featured_image"`
	Status          string     `gorm:"size:10;default:draft;index" json:"status"`
	CategoryID      uint       `gorm:"not null;index" json:"category_id"`
	Category        Category   `gorm:"foreignKey:CategoryID" json:"category"`
	AuthorID        uint       `gorm:"not null;index" json:"author_id"`
	Author          User       `gorm:"foreignKey:AuthorID" json:"author"`
	PublishedAt     *time.Time `gorm:"index" json:"published_at,omitempty"`
	ViewCount       uint       `gorm:"default:0" json:"view_count"`
	// LikesCount is not persisted; computed at query time
	LikesCount int `gorm:"->" json:"likes_count"`
	// CommentsCount counts approved comments only; computed at query time
	CommentsCount int `gorm:"->" json:"comments_count"`
	// Liked indicates whether the current requesting user liked this post (computed)
	Liked     bool           `gorm:"->" json:"liked"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsPublished reports whether the post is visible to the public listing.
func (p *Post) IsPublished() bool { return p.Status == PostStatusPublished }

// IsDraft reports whether the post is still a draft.
func (p *Post) IsDraft() bool { return p.Status == PostStatusDraft }

// IsArchived reports whether the post has been archived.
func (p *Post) IsArchived() bool { return p.Status == PostStatusArchived }

// StatusColor maps the lifecycle state to the badge color used by templates.
func (p *Post) StatusColor() string {
	switch p.Status {
	case PostStatusPublished:
		return "green"
	case PostStatusArchived:
		return "orange"
	default:
		return "gray"
	}
}
