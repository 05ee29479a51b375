package model

// SignInRequest only requires presence; any wrong password is a credential
// failure, not a validation one.
type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=5,max=64"`
	Email    string `json:"email" validate:"required,email,max=64"`
	Password string `json:"password" validate:"required,min=8"`
}

type UpdateUserRequest struct {
	Name         *string         `json:"name" validate:"omitempty,min=5,max=64"`
	UserName     *string         `json:"user_name" validate:"omitempty,max=32"`
	Biography    *string         `json:"biography" validate:"omitempty,max=128"`
	Location     *string         `json:"location" validate:"omitempty,max=128"`
	Password     *string         `json:"password" validate:"omitempty,min=8"`
	ProfileImage *string         `json:"profileImage"`
	Network      *NetworkRequest `json:"network"`
}

// NetworkRequest fields accept an absolute URL or "" to clear the link.
type NetworkRequest struct {
	Website   *string `json:"website" validate:"omitempty,max=256,url|len=0"`
	GitHub    *string `json:"github" validate:"omitempty,max=256,url|len=0"`
	Facebook  *string `json:"facebook" validate:"omitempty,max=256,url|len=0"`
	Instagram *string `json:"instagram" validate:"omitempty,max=256,url|len=0"`
	LinkedIn  *string `json:"linkedin" validate:"omitempty,max=256,url|len=0"`
}

func (r *NetworkRequest) Patch() NetworkPatch {
	if r == nil {
		return NetworkPatch{}
	}
	return NetworkPatch{
		Website:   r.Website,
		GitHub:    r.GitHub,
		Facebook:  r.Facebook,
		Instagram: r.Instagram,
		LinkedIn:  r.LinkedIn,
	}
}

type CreatePostRequest struct {
	Title      string   `json:"title" validate:"required,min=12,max=256"`
	Content    string   `json:"content" validate:"required,min=32,max=24000"`
	Public     *bool    `json:"public"`
	Tags       []string `json:"tags" validate:"max=4,dive,max=32"`
	CoverImage *string  `json:"coverImage"`
}

type UpdatePostRequest struct {
	Title      *string  `json:"title" validate:"omitempty,min=12,max=256"`
	Content    *string  `json:"content" validate:"omitempty,min=32,max=24000"`
	Public     *bool    `json:"public"`
	Tags       []string `json:"tags" validate:"omitempty,max=4,dive,max=32"`
	CoverImage *string  `json:"coverImage"`
}

type CreateCommentRequest struct {
	Content string  `json:"content" validate:"required,min=3,max=512"`
	ReplyID *string `json:"replyId" validate:"omitempty,uuid"`
}

type UpdateCommentRequest struct {
	Content *string `json:"content" validate:"omitempty,min=3,max=512"`
	ReplyID *string `json:"replyId" validate:"omitempty,uuid"`
}
