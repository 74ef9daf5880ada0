package user

type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=ADMIN EMPLOYEE"`
}

type UserResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	AvatarURL *string `json:"avatar_url"`
	Role      string  `json:"role"`
	CreatedAt string  `json:"created_at"`
}

type ListQuery struct {
	Page     int `form:"page"`
	PageSize int `form:"page_size"`
}
