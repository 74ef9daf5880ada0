package events

import "time"

const AttendanceLifecycleTopic = "attendance.session.lifecycle.v1"

const (
	AttendanceCheckedIn      = "attendance.checked_in"
	AttendanceCheckedOut     = "attendance.checked_out"
	AttendanceMissedCheckout = "attendance.missed_checkout"
)

const AttendanceAggregateType = "attendance"

type AttendanceLifecycleEvent struct {
	EventType    string    `json:"event_type"`
	AttendanceID string    `json:"attendance_id"`
	UserID       string    `json:"user_id"`
	ShiftDate    string    `json:"shift_date"`
	Status       string    `json:"status"`
	OccurredAt   time.Time `json:"occurred_at"`
}
