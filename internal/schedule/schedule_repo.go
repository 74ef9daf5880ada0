package schedule

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"
)

type ListFilter struct {
	Date   *time.Time
	Offset int
	Limit  int
}

//go:generate mockgen -source=schedule_repo.go -destination=mock/schedule_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, t *Task) error
	FindByID(ctx context.Context, id string) (*Task, error)
	FindByDate(ctx context.Context, date time.Time) ([]Task, error)
	FindAll(ctx context.Context, filter ListFilter) ([]Task, int64, error)
	Update(ctx context.Context, t *Task) error
	Delete(ctx context.Context, id string) error
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

func (r *repository) conn(ctx context.Context) *gorm.DB {
	db := r.db.WithContext(ctx)
	if r.tx != nil {
		db.Statement.ConnPool = r.tx
	}
	return db
}

func (r *repository) Create(ctx context.Context, t *Task) error {
	return r.conn(ctx).Omit("Assignee").Create(t).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*Task, error) {
	var t Task
	if err := r.conn(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *repository) FindByDate(ctx context.Context, date time.Time) ([]Task, error) {
	var rows []Task
	err := r.conn(ctx).
		Preload("Assignee").
		Where("date = ?", date.Format(dateLayout)).
		Order("start_time ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindAll(ctx context.Context, filter ListFilter) ([]Task, int64, error) {
	q := r.conn(ctx).Model(&Task{})
	if filter.Date != nil {
		q = q.Where("date = ?", filter.Date.Format(dateLayout))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []Task
	q = q.Preload("Assignee").Order("date DESC, start_time ASC")
	if filter.Limit > 0 {
		q = q.Offset(filter.Offset).Limit(filter.Limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *repository) Update(ctx context.Context, t *Task) error {
	return r.conn(ctx).Omit("Assignee").Save(t).Error
}

func (r *repository) Delete(ctx context.Context, id string) error {
	res := r.conn(ctx).Where("id = ?", id).Delete(&Task{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
