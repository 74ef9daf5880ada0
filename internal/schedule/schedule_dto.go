package schedule

import "jovenva-attendance/internal/middleware"

type CreateTaskRequest struct {
	Title            string   `json:"title" binding:"required,max=200"`
	Description      *string  `json:"description" binding:"omitempty,max=2000"`
	Date             string   `json:"date" binding:"required"`
	StartTime        string   `json:"start_time" binding:"required"`
	EndTime          string   `json:"end_time" binding:"required"`
	Status           string   `json:"status" binding:"omitempty,oneof=PENDING IN_PROGRESS COMPLETED BLOCKED"`
	Priority         string   `json:"priority" binding:"omitempty,oneof=LOW MEDIUM HIGH"`
	AssignedToUserID string   `json:"assigned_to_user_id" binding:"omitempty,uuid"`
	Tags             []string `json:"tags" binding:"omitempty,max=20,dive,max=50"`
}

// UpdateTaskRequest is a partial update; nil fields are left unchanged.
type UpdateTaskRequest struct {
	Title            *string  `json:"title" binding:"omitempty,min=1,max=200"`
	Description      *string  `json:"description" binding:"omitempty,max=2000"`
	Date             *string  `json:"date"`
	StartTime        *string  `json:"start_time"`
	EndTime          *string  `json:"end_time"`
	Status           *string  `json:"status" binding:"omitempty,oneof=PENDING IN_PROGRESS COMPLETED BLOCKED"`
	Priority         *string  `json:"priority" binding:"omitempty,oneof=LOW MEDIUM HIGH"`
	AssignedToUserID *string  `json:"assigned_to_user_id" binding:"omitempty,uuid"`
	Tags             []string `json:"tags" binding:"omitempty,max=20,dive,max=50"`
}

type AssigneeResponse struct {
	ID        string  `json:"id,omitempty"`
	Name      string  `json:"name"`
	Email     string  `json:"email,omitempty"`
	AvatarURL *string `json:"avatar_url"`
}

type TaskResponse struct {
	ID               string            `json:"id"`
	UserID           string            `json:"user_id"`
	AssignedToUserID string            `json:"assigned_to_user_id"`
	Date             string            `json:"date"`
	EndDate          string            `json:"end_date"`
	StartTime        string            `json:"start_time"`
	EndTime          string            `json:"end_time"`
	Overnight        bool              `json:"overnight"`
	Title            string            `json:"title"`
	Description      *string           `json:"description,omitempty"`
	Status           string            `json:"status"`
	Priority         string            `json:"priority"`
	Tags             []string          `json:"tags"`
	Assignee         *AssigneeResponse `json:"assignee,omitempty"`
}

type AdminListQuery struct {
	Date     string `form:"date"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// Actor is the authenticated caller a write is performed for.
type Actor struct {
	UserID string
	Role   string
}

func (a Actor) IsAdmin() bool {
	return a.Role == middleware.RoleAdmin
}
