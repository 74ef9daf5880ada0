package attendance

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ListFilter struct {
	ShiftDate *time.Time
	Offset    int
	Limit     int
}

//go:generate mockgen -source=attendance_repo.go -destination=mock/attendance_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, a *Attendance) error
	FindByUserAndDate(ctx context.Context, userID string, shiftDate time.Time) (*Attendance, error)
	FindByUserBetween(ctx context.Context, userID string, from, to time.Time) ([]Attendance, error)
	FindAll(ctx context.Context, filter ListFilter) ([]Attendance, int64, error)
	FindUnflaggedOpenBefore(ctx context.Context, shiftDate time.Time, limit int) ([]Attendance, error)
	Update(ctx context.Context, a *Attendance) error
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

// conn runs gorm on the service's *sql.Tx when one is attached, so the
// row write and its outbox event commit together.
func (r *repository) conn(ctx context.Context) *gorm.DB {
	db := r.db.WithContext(ctx)
	if r.tx != nil {
		db.Statement.ConnPool = r.tx
	}
	return db
}

func (r *repository) Create(ctx context.Context, a *Attendance) error {
	return r.conn(ctx).Omit("User").Create(a).Error
}

func (r *repository) FindByUserAndDate(ctx context.Context, userID string, shiftDate time.Time) (*Attendance, error) {
	var a Attendance
	err := r.conn(ctx).
		Where("user_id = ?", userID).
		Where("shift_date = ?", shiftDate.Format(dateLayout)).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repository) FindByUserBetween(ctx context.Context, userID string, from, to time.Time) ([]Attendance, error) {
	var rows []Attendance
	err := r.conn(ctx).
		Where("user_id = ?", userID).
		Where("shift_date BETWEEN ? AND ?", from.Format(dateLayout), to.Format(dateLayout)).
		Order("shift_date ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindAll(ctx context.Context, filter ListFilter) ([]Attendance, int64, error) {
	q := r.conn(ctx).Model(&Attendance{})
	if filter.ShiftDate != nil {
		q = q.Where("shift_date = ?", filter.ShiftDate.Format(dateLayout))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []Attendance
	q = q.Preload("User").Order("shift_date DESC, check_in_time DESC")
	if filter.Limit > 0 {
		q = q.Offset(filter.Offset).Limit(filter.Limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *repository) FindUnflaggedOpenBefore(ctx context.Context, shiftDate time.Time, limit int) ([]Attendance, error) {
	var rows []Attendance
	err := r.conn(ctx).
		Where("check_out_time IS NULL").
		Where("missed_checkout_flagged_at IS NULL").
		Where("shift_date < ?", shiftDate.Format(dateLayout)).
		Order("shift_date ASC").
		Limit(limit).
		Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Find(&rows).Error
	return rows, err
}

func (r *repository) Update(ctx context.Context, a *Attendance) error {
	return r.conn(ctx).Omit("User").Save(a).Error
}
