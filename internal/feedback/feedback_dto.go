package feedback

type CreateFeedbackRequest struct {
	Message string `json:"message" binding:"required,max=5000"`
}

type AuthorResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	AvatarURL *string `json:"avatar_url"`
}

type FeedbackResponse struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Message   string          `json:"message"`
	CreatedAt string          `json:"created_at"`
	Author    *AuthorResponse `json:"user,omitempty"`
}

type AdminListQuery struct {
	Page     int `form:"page"`
	PageSize int `form:"page_size"`
}
