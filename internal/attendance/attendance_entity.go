package attendance

import (
	"time"

	"github.com/google/uuid"
)

type Attendance struct {
	ID                      uuid.UUID  `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID                  uuid.UUID  `gorm:"column:user_id;type:uuid;not null;uniqueIndex:uq_attendance_user_date,priority:1"`
	ShiftDate               time.Time  `gorm:"column:shift_date;type:date;not null;uniqueIndex:uq_attendance_user_date,priority:2"`
	CheckInTime             time.Time  `gorm:"column:check_in_time;type:timestamptz;not null"`
	CheckOutTime            *time.Time `gorm:"column:check_out_time;type:timestamptz"`
	Notes                   *string    `gorm:"column:notes;type:text"`
	MissedCheckoutFlaggedAt *time.Time `gorm:"column:missed_checkout_flagged_at;type:timestamptz"`
	CreatedAt               time.Time  `gorm:"column:created_at"`
	UpdatedAt               time.Time  `gorm:"column:updated_at"`
	User                    *UserRef   `gorm:"foreignKey:UserID;references:ID"`
}

func (Attendance) TableName() string {
	return "attendance"
}

// UserRef is the read-only view of the identity provider's users table.
type UserRef struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name  string    `gorm:"column:name"`
	Email string    `gorm:"column:email"`
}

func (UserRef) TableName() string {
	return "users"
}
