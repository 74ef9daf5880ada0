package attendance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	attendanceerrors "jovenva-attendance/internal/attendance/errors"
	"jovenva-attendance/internal/events"
	"jovenva-attendance/internal/messaging/kafka"
	"jovenva-attendance/internal/shared/contextutil"
	"jovenva-attendance/internal/shift"
	shifterrors "jovenva-attendance/internal/shift/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	dateLayout = shift.DateLayout

	defaultPageSize = 10
	maxPageSize     = 100
	sweepBatchSize  = 200
)

//go:generate mockgen -source=attendance_service.go -destination=mock/attendance_service_mock.go -package=mock
type Service interface {
	Window(ctx context.Context) WindowResponse
	Today(ctx context.Context, userID string) (TodayResponse, error)
	CheckIn(ctx context.Context, userID string, req CheckInRequest) (AttendanceResponse, error)
	CheckOut(ctx context.Context, userID string, req CheckOutRequest) (AttendanceResponse, error)
	Weekly(ctx context.Context, userID string) (WeeklyResponse, error)
	AdminList(ctx context.Context, q AdminListQuery) ([]AdminAttendanceResponse, int64, error)
	Export(ctx context.Context, date string) ([]byte, error)
	FlagMissedCheckouts(ctx context.Context) (int, error)
}

type service struct {
	db       *sql.DB
	repo     Repository
	outbox   kafka.OutboxRepository
	calendar *shift.Calendar
	clock    shift.Clock
	logger   *zap.Logger
}

func NewService(db *sql.DB, repo Repository, calendar *shift.Calendar, clock shift.Clock, logger ...*zap.Logger) Service {
	return NewServiceWithOutbox(db, repo, nil, calendar, clock, logger...)
}

func NewServiceWithOutbox(
	db *sql.DB,
	repo Repository,
	outboxRepo kafka.OutboxRepository,
	calendar *shift.Calendar,
	clock shift.Clock,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("attendance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.service")
	}
	if clock == nil {
		clock = shift.SystemClock{}
	}
	return &service{
		db:       db,
		repo:     repo,
		outbox:   outboxRepo,
		calendar: calendar,
		clock:    clock,
		logger:   l,
	}
}

func (s *service) Window(ctx context.Context) WindowResponse {
	now := s.clock.Now()
	return WindowResponse{
		CheckInWindow: s.calendar.CheckInWindow(now),
		ShiftDate:     s.calendar.ShiftDate(now),
		Timezone:      s.calendar.Location().String(),
	}
}

func (s *service) Today(ctx context.Context, userID string) (TodayResponse, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return TodayResponse{}, attendanceerrors.ErrInvalidUserID
	}

	now := s.clock.Now()
	today := s.calendar.ShiftDate(now)
	date, err := parseShiftDate(today)
	if err != nil {
		return TodayResponse{}, err
	}

	row, err := s.findOptional(ctx, s.repo, userID, date)
	if err != nil {
		return TodayResponse{}, err
	}
	if row == nil {
		row, err = s.carriedOverSession(ctx, s.repo, userID, date, now)
		if err != nil {
			return TodayResponse{}, err
		}
	}

	resp := TodayResponse{
		ShiftDate:    today,
		Window:       s.calendar.CheckInWindow(now),
		SessionState: shift.SessionReady,
		Status:       s.calendar.Classify(nil, today, now),
		Elapsed:      shift.Elapsed{}.String(),
	}
	if row != nil {
		rec := toRecord(*row)
		r := s.toResponse(*row, today, now)
		resp.Record = &r
		resp.SessionState = shift.StateOf(rec)
		resp.Status = r.Status
		resp.Elapsed = r.Elapsed
	}
	return resp, nil
}

func (s *service) CheckIn(ctx context.Context, userID string, req CheckInRequest) (AttendanceResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	uid, err := uuid.Parse(userID)
	if err != nil {
		return AttendanceResponse{}, attendanceerrors.ErrInvalidUserID
	}

	now := s.clock.Now()
	if window := s.calendar.CheckInWindow(now); !window.IsOpen {
		log.Warn("check-in outside window",
			zap.String("user_id", userID),
			zap.Int("current_hour", window.CurrentHour),
		)
		return AttendanceResponse{}, attendanceerrors.ErrCheckInWindowClosed
	}

	shiftDate := s.calendar.ShiftDate(now)
	date, err := parseShiftDate(shiftDate)
	if err != nil {
		return AttendanceResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("check-in begin tx failed", zap.Error(err))
		return AttendanceResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	existing, err := s.findOptional(ctx, qtx, userID, date)
	if err != nil {
		return AttendanceResponse{}, err
	}
	if existing == nil {
		existing, err = s.carriedOverSession(ctx, qtx, userID, date, now)
		if err != nil {
			return AttendanceResponse{}, err
		}
	}
	if existing != nil {
		return AttendanceResponse{}, attendanceerrors.ErrAlreadyCheckedIn
	}

	row := &Attendance{
		ID:          uuid.New(),
		UserID:      uid,
		ShiftDate:   date,
		CheckInTime: now.UTC(),
		Notes:       req.Notes,
	}
	if err := qtx.Create(ctx, row); err != nil {
		log.Error("check-in persist failed", zap.Error(err))
		return AttendanceResponse{}, mapRepositoryError(err)
	}

	resp := s.toResponse(*row, shiftDate, now)
	if err := s.enqueue(ctx, tx, events.AttendanceCheckedIn, *row, resp.Status, now); err != nil {
		log.Error("check-in enqueue event failed", zap.Error(err))
		return AttendanceResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		log.Error("check-in commit failed", zap.Error(err))
		return AttendanceResponse{}, err
	}

	log.Info("checked in",
		zap.String("user_id", userID),
		zap.String("attendance_id", row.ID.String()),
		zap.String("shift_date", shiftDate),
		zap.String("status", string(resp.Status)),
	)
	return resp, nil
}

func (s *service) CheckOut(ctx context.Context, userID string, req CheckOutRequest) (AttendanceResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	if _, err := uuid.Parse(userID); err != nil {
		return AttendanceResponse{}, attendanceerrors.ErrInvalidUserID
	}

	now := s.clock.Now()
	date, err := parseShiftDate(s.calendar.ShiftDate(now))
	if err != nil {
		return AttendanceResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("check-out begin tx failed", zap.Error(err))
		return AttendanceResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	row, err := s.findOptional(ctx, qtx, userID, date)
	if err != nil {
		return AttendanceResponse{}, err
	}
	if row == nil && s.allowsCarryOver(now) {
		row, err = s.findOptional(ctx, qtx, userID, date.AddDate(0, 0, -1))
		if err != nil {
			return AttendanceResponse{}, err
		}
	}
	if row == nil {
		return AttendanceResponse{}, attendanceerrors.ErrNotCheckedIn
	}
	if row.CheckOutTime != nil {
		return AttendanceResponse{}, attendanceerrors.ErrAlreadyCheckedOut
	}

	out := now.UTC()
	row.CheckOutTime = &out
	if req.Notes != nil {
		row.Notes = req.Notes
	}

	if err := qtx.Update(ctx, row); err != nil {
		log.Error("check-out persist failed", zap.Error(err))
		return AttendanceResponse{}, mapRepositoryError(err)
	}

	resp := s.toResponse(*row, row.ShiftDate.Format(dateLayout), now)
	if err := s.enqueue(ctx, tx, events.AttendanceCheckedOut, *row, resp.Status, now); err != nil {
		log.Error("check-out enqueue event failed", zap.Error(err))
		return AttendanceResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		log.Error("check-out commit failed", zap.Error(err))
		return AttendanceResponse{}, err
	}

	log.Info("checked out",
		zap.String("user_id", userID),
		zap.String("attendance_id", row.ID.String()),
		zap.String("shift_date", resp.ShiftDate),
		zap.String("elapsed", resp.Elapsed),
	)
	return resp, nil
}

func (s *service) Weekly(ctx context.Context, userID string) (WeeklyResponse, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return WeeklyResponse{}, attendanceerrors.ErrInvalidUserID
	}

	now := s.clock.Now()
	days := s.calendar.WeekDates(now)
	from, err := parseShiftDate(days[0])
	if err != nil {
		return WeeklyResponse{}, err
	}
	to, err := parseShiftDate(days[len(days)-1])
	if err != nil {
		return WeeklyResponse{}, err
	}

	rows, err := s.repo.FindByUserBetween(ctx, userID, from, to)
	if err != nil {
		return WeeklyResponse{}, err
	}

	byDate := make(map[string]Attendance, len(rows))
	for _, r := range rows {
		byDate[r.ShiftDate.Format(dateLayout)] = r
	}

	resp := WeeklyResponse{
		WeekStart: days[0],
		WeekEnd:   days[len(days)-1],
		Days:      make([]WeeklyDay, 0, len(days)),
	}
	for _, day := range days {
		d, _ := parseShiftDate(day)
		wd := WeeklyDay{
			ShiftDate: day,
			Weekday:   d.Weekday().String(),
			Status:    s.calendar.Classify(nil, day, now),
			Elapsed:   shift.Elapsed{}.String(),
		}
		if row, ok := byDate[day]; ok {
			r := s.toResponse(row, day, now)
			wd.Record = &r
			wd.Status = r.Status
			wd.Elapsed = r.Elapsed
		}
		resp.Days = append(resp.Days, wd)
	}
	return resp, nil
}

func (s *service) AdminList(ctx context.Context, q AdminListQuery) ([]AdminAttendanceResponse, int64, error) {
	filter := ListFilter{}
	if q.Date != "" {
		d, err := parseShiftDate(q.Date)
		if err != nil {
			return nil, 0, err
		}
		filter.ShiftDate = &d
	}

	page, pageSize := normalizePage(q.Page, q.PageSize)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize

	rows, total, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	now := s.clock.Now()
	res := make([]AdminAttendanceResponse, len(rows))
	for i, r := range rows {
		res[i] = s.toAdminResponse(r, now)
	}
	return res, total, nil
}

// FlagMissedCheckouts marks every past session without a check-out and
// emits one missed-checkout event per session. Last night's session is
// left alone while it may still be checked out. Each batch commits on its
// own; rows are locked with SKIP LOCKED so concurrent sweeps do not
// double-flag.
func (s *service) FlagMissedCheckouts(ctx context.Context) (int, error) {
	now := s.clock.Now()
	today, err := parseShiftDate(s.calendar.ShiftDate(now))
	if err != nil {
		return 0, err
	}
	before := today
	if s.allowsCarryOver(now) {
		before = today.AddDate(0, 0, -1)
	}

	flagged := 0
	for {
		n, err := s.flagBatch(ctx, before, now)
		flagged += n
		if err != nil {
			return flagged, err
		}
		if n < sweepBatchSize {
			break
		}
	}

	if flagged > 0 {
		s.logger.Info("missed checkouts flagged",
			zap.Int("count", flagged),
			zap.String("before", before.Format(dateLayout)),
		)
	}
	return flagged, nil
}

func (s *service) flagBatch(ctx context.Context, before, now time.Time) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	rows, err := qtx.FindUnflaggedOpenBefore(ctx, before, sweepBatchSize)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	flaggedAt := now.UTC()
	for i := range rows {
		row := rows[i]
		row.MissedCheckoutFlaggedAt = &flaggedAt
		if err := qtx.Update(ctx, &row); err != nil {
			return 0, mapRepositoryError(err)
		}
		if err := s.enqueue(ctx, tx, events.AttendanceMissedCheckout, row, shift.StatusMissedCheckout, now); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (s *service) enqueue(ctx context.Context, tx *sql.Tx, eventType string, row Attendance, status shift.Status, now time.Time) error {
	if s.outbox == nil {
		return nil
	}

	payload := events.AttendanceLifecycleEvent{
		EventType:    eventType,
		AttendanceID: row.ID.String(),
		UserID:       row.UserID.String(),
		ShiftDate:    row.ShiftDate.Format(dateLayout),
		Status:       string(status),
		OccurredAt:   now.UTC(),
	}
	event, err := kafka.NewOutboxEvent(
		contextutil.GetRequestID(ctx),
		events.AttendanceLifecycleTopic,
		events.AttendanceAggregateType,
		payload.AttendanceID,
		eventType,
		payload,
	)
	if err != nil {
		return err
	}
	return s.outbox.WithTx(tx).Create(ctx, event)
}

func (s *service) findOptional(ctx context.Context, repo Repository, userID string, date time.Time) (*Attendance, error) {
	row, err := repo.FindByUserAndDate(ctx, userID, date)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row, nil
}

// allowsCarryOver reports whether last night's session may still be open.
// Under the literal-date policy a 21:00 session crosses midnight onto the
// next date and ends before noon. Folding already maps the morning onto the
// previous date, except on weekend mornings kept on their own date.
func (s *service) allowsCarryOver(now time.Time) bool {
	policy := s.calendar.Policy()
	if policy.FoldEarlyMorning {
		return policy.WeekendMorningSessions && s.calendar.IsWeekendMorning(now)
	}
	return now.In(s.calendar.Location()).Hour() < shift.WindowCloseHour
}

// isCarriedOver reports whether a is last night's session and is still
// live at now.
func (s *service) isCarriedOver(a Attendance, now time.Time) bool {
	if a.CheckOutTime != nil || !s.allowsCarryOver(now) {
		return false
	}
	today, err := parseShiftDate(s.calendar.ShiftDate(now))
	if err != nil {
		return false
	}
	return a.ShiftDate.Format(dateLayout) == today.AddDate(0, 0, -1).Format(dateLayout)
}

func (s *service) carriedOverSession(ctx context.Context, repo Repository, userID string, today, now time.Time) (*Attendance, error) {
	if !s.allowsCarryOver(now) {
		return nil, nil
	}
	prev, err := s.findOptional(ctx, repo, userID, today.AddDate(0, 0, -1))
	if err != nil || prev == nil || prev.CheckOutTime != nil {
		return nil, err
	}
	return prev, nil
}

func (s *service) toResponse(a Attendance, viewedDate string, now time.Time) AttendanceResponse {
	rec := toRecord(a)
	elapsed := shift.SessionElapsed(rec, now)

	status := s.calendar.Classify(rec, viewedDate, now)
	if s.isCarriedOver(a, now) {
		status = s.calendar.ClassifyRunning(rec)
	}

	resp := AttendanceResponse{
		ID:          a.ID.String(),
		UserID:      a.UserID.String(),
		ShiftDate:   rec.ShiftDate,
		CheckInTime: a.CheckInTime.Format(time.RFC3339),
		Notes:       a.Notes,
		Status:      status,
		Elapsed:     elapsed.String(),
		Duration:    elapsed,
	}
	if a.CheckOutTime != nil {
		v := a.CheckOutTime.Format(time.RFC3339)
		resp.CheckOutTime = &v
	}
	return resp
}

func (s *service) toAdminResponse(a Attendance, now time.Time) AdminAttendanceResponse {
	resp := AdminAttendanceResponse{
		AttendanceResponse: s.toResponse(a, a.ShiftDate.Format(dateLayout), now),
	}
	if a.User != nil {
		resp.UserName = a.User.Name
		resp.UserEmail = a.User.Email
	}
	return resp
}

func toRecord(a Attendance) *shift.Record {
	in := a.CheckInTime
	return &shift.Record{
		ShiftDate: a.ShiftDate.Format(dateLayout),
		CheckIn:   &in,
		CheckOut:  a.CheckOutTime,
	}
}

// parseShiftDate returns the date as UTC midnight, the form Postgres DATE
// columns round-trip through.
func parseShiftDate(s string) (time.Time, error) {
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", shifterrors.ErrInvalidDate, s)
	}
	return d, nil
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}
