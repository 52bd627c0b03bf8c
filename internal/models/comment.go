package models

import "time"

// MaxCommentLength is the hard cap on comment content.
const MaxCommentLength = 500

// Comment is a moderated reply on a post. Comments start unapproved unless
// the author is staff; only approved comments are publicly visible.
type Comment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PostID     uint      `gorm:"not null;index" json:"post_id"`
	AuthorID   uint      `gorm:"not null;index" json:"author_id"`
	Author     User      `gorm:"foreignKey:AuthorID" json:"-"`
	Content    string    `gorm:"size:500;not null" json:"content"`
	IsApproved bool      `gorm:"default:false;index" json:"is_approved"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CommentView is the JSON shape of a comment in API responses. It carries
// the author's display name and avatar only; the account record stays
// server-side.
type CommentView struct {
	ID         uint      `json:"id"`
	PostID     uint      `json:"post_id"`
	Content    string    `json:"content"`
	UserName   string    `json:"user_name"`
	UserAvatar string    `json:"user_avatar"`
	IsApproved bool      `json:"is_approved"`
	CreatedAt  time.Time `json:"created_at"`
}

// View builds the public shape of the comment. Authors without an uploaded
// avatar get the default image.
func (c *Comment) View() CommentView {
	avatar := DefaultAvatarURL
	if c.Author.Profile != nil {
		avatar = c.Author.Profile.AvatarURL()
	}
	return CommentView{
		ID:         c.ID,
		PostID:     c.PostID,
		Content:    c.Content,
		UserName:   c.Author.ShortName(),
		UserAvatar: avatar,
		IsApproved: c.IsApproved,
		CreatedAt:  c.CreatedAt,
	}
}

// CommentViews maps a comment slice to its public shapes.
func CommentViews(comments []*Comment) []CommentView {
	views := make([]CommentView, len(comments))
	for i, c := range comments {
		views[i] = c.View()
	}
	return views
}
