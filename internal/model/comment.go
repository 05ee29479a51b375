package model

import "time"

// Comment belongs to a post. ReplyTo, when set, points at another comment on
// the same post.
type Comment struct {
	ID        string        `json:"id"`
	PostID    string        `json:"post_id"`
	UserID    string        `json:"user_id"`
	ReplyTo   *string       `json:"reply_to"`
	Content   string        `json:"content"`
	Author    CommentAuthor `json:"user"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

type CommentAuthor struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ProfileImage string `json:"profile_image"`
}

type CommentPatch struct {
	Content *string
	ReplyTo *string
}
