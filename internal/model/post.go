package model

import "time"

type Post struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Title      string    `json:"title"`
	Slug       string    `json:"slug"`
	Content    string    `json:"content"`
	Public     bool      `json:"public"`
	Tags       []string  `json:"tags"`
	Words      int       `json:"words"`
	ReadTime   int       `json:"read_time"`
	CoverImage string    `json:"cover_image"`
	Claps      int       `json:"claps"`
	Comments   int       `json:"comments"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type PostSummary struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Public    bool      `json:"public"`
	ReadTime  int       `json:"read_time"`
	Words     int       `json:"words"`
	Tags      []string  `json:"tags"`
	Claps     int       `json:"claps"`
	Comments  int       `json:"comments"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type PostPatch struct {
	Title      *string
	Content    *string
	Public     *bool
	Tags       []string
	CoverImage DesiredMedia
}
