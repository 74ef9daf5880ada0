package schedule

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	StatusPending    = "PENDING"
	StatusInProgress = "IN_PROGRESS"
	StatusCompleted  = "COMPLETED"
	StatusBlocked    = "BLOCKED"

	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
)

// Task is one scheduled block of work. StartTime and EndTime are wall-clock
// HH:MM:SS strings in the deployment timezone; EndDate is always derived
// from Date and the two times, so overnight tasks end on the next day.
type Task struct {
	ID               uuid.UUID      `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID           uuid.UUID      `gorm:"column:user_id;type:uuid;not null;index"`
	AssignedToUserID uuid.UUID      `gorm:"column:assigned_to_user_id;type:uuid;not null;index"`
	Date             time.Time      `gorm:"column:date;type:date;not null;index:idx_schedule_tasks_date"`
	EndDate          time.Time      `gorm:"column:end_date;type:date;not null"`
	StartTime        string         `gorm:"column:start_time;type:varchar(8);not null"`
	EndTime          string         `gorm:"column:end_time;type:varchar(8);not null"`
	Title            string         `gorm:"column:title;type:varchar(200);not null"`
	Description      *string        `gorm:"column:description;type:text"`
	Status           string         `gorm:"column:status;type:varchar(20);not null;default:PENDING"`
	Priority         string         `gorm:"column:priority;type:varchar(10);not null;default:MEDIUM"`
	Tags             datatypes.JSON `gorm:"column:tags;type:jsonb"`
	CreatedAt        time.Time      `gorm:"column:created_at"`
	UpdatedAt        time.Time      `gorm:"column:updated_at"`
	Assignee         *Assignee      `gorm:"foreignKey:AssignedToUserID;references:ID"`
}

func (Task) TableName() string {
	return "schedule_tasks"
}

type Assignee struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"column:name"`
	Email     string    `gorm:"column:email"`
	AvatarURL *string   `gorm:"column:avatar_url"`
}

func (Assignee) TableName() string {
	return "users"
}
