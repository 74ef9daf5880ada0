package attendance

import "jovenva-attendance/internal/shift"

type CheckInRequest struct {
	Notes *string `json:"notes" binding:"omitempty,max=500"`
}

type CheckOutRequest struct {
	Notes *string `json:"notes" binding:"omitempty,max=500"`
}

type AttendanceResponse struct {
	ID           string        `json:"id"`
	UserID       string        `json:"user_id"`
	ShiftDate    string        `json:"shift_date"`
	CheckInTime  string        `json:"check_in_time"`
	CheckOutTime *string       `json:"check_out_time,omitempty"`
	Notes        *string       `json:"notes,omitempty"`
	Status       shift.Status  `json:"status"`
	Elapsed      string        `json:"elapsed"`
	Duration     shift.Elapsed `json:"duration"`
}

type WindowResponse struct {
	shift.CheckInWindow
	ShiftDate string `json:"shift_date"`
	Timezone  string `json:"timezone"`
}

type TodayResponse struct {
	ShiftDate    string              `json:"shift_date"`
	Window       shift.CheckInWindow `json:"window"`
	SessionState shift.SessionState  `json:"session_state"`
	Status       shift.Status        `json:"status"`
	Elapsed      string              `json:"elapsed"`
	Record       *AttendanceResponse `json:"record"`
}

type WeeklyDay struct {
	ShiftDate string              `json:"shift_date"`
	Weekday   string              `json:"weekday"`
	Status    shift.Status        `json:"status"`
	Elapsed   string              `json:"elapsed"`
	Record    *AttendanceResponse `json:"record"`
}

type WeeklyResponse struct {
	WeekStart string      `json:"week_start"`
	WeekEnd   string      `json:"week_end"`
	Days      []WeeklyDay `json:"days"`
}

type AdminListQuery struct {
	Date     string `form:"date"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

type AdminAttendanceResponse struct {
	AttendanceResponse
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email"`
}
