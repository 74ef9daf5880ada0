package feedback

import (
	"time"

	"github.com/google/uuid"
)

type Feedback struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	Message   string    `gorm:"column:message;type:text;not null"`
	CreatedAt time.Time `gorm:"column:created_at;index"`
	Author    *Author   `gorm:"foreignKey:UserID;references:ID"`
}

func (Feedback) TableName() string {
	return "feedbacks"
}

type Author struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"column:name"`
	Email     string    `gorm:"column:email"`
	AvatarURL *string   `gorm:"column:avatar_url"`
}

func (Author) TableName() string {
	return "users"
}
