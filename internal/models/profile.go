package models

import (
	"strings"
	"time"
)

// Birth date visibility levels.
const (
	VisibilityPublic  = "public"
	VisibilityFriends = "friends"
	VisibilityPrivate = "private"
)

// DefaultAvatarURL is served when a profile has no uploaded avatar.
const DefaultAvatarURL = "/static/images/default_profile.png"

// Profile is the one-to-one extension of a User. A missing profile is
// self-healing: reads create it with defaults.
type Profile struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	UserID              uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	DarkMode            bool      `gorm:"default:false" json:"dark_mode"`
	Role                string    `json:"role"`
	Bio                 string    `gorm:"size:500" json:"bio"`
	AvatarPath          string    `json:"avatar_path"`
	Twitter             string    `json:"twitter"`
	LinkedIn            string    `json:"linkedin"`
	Website             string    `json:"website"`
	Location            string    `json:"location"`
	BirthDateVisibility string    `gorm:"size:10;default:private" json:"birth_date_visibility"`
	JoinedAt            time.Time `gorm:"autoCreateTime" json:"joined_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// TwitterHandle returns the stored handle without its leading @, for URLs.
func (p *Profile) TwitterHandle() string {
	return strings.TrimPrefix(p.Twitter, "@")
}

// AvatarURL returns the public URL of the uploaded avatar, or the default image.
func (p *Profile) AvatarURL() string {
	if p.AvatarPath == "" {
		return DefaultAvatarURL
	}
	return "/media/" + p.AvatarPath
}
