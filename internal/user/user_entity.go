package user

import (
	"time"

	"github.com/google/uuid"
)

// User mirrors the profile row the identity provider keeps in sync. Only the
// role is written from here.
type User struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name      string    `gorm:"column:name;type:varchar(255)"`
	Email     string    `gorm:"column:email;type:text;not null;uniqueIndex"`
	AvatarURL *string   `gorm:"column:avatar_url;type:text"`
	Role      string    `gorm:"column:role;type:varchar(50);default:EMPLOYEE"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
