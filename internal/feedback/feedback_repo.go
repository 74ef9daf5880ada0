package feedback

import (
	"context"

	"gorm.io/gorm"
)

type ListFilter struct {
	Offset int
	Limit  int
}

//go:generate mockgen -source=feedback_repo.go -destination=mock/feedback_repo_mock.go -package=mock
type Repository interface {
	Create(ctx context.Context, f *Feedback) error
	FindAll(ctx context.Context, filter ListFilter) ([]Feedback, int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, f *Feedback) error {
	return r.db.WithContext(ctx).Omit("Author").Create(f).Error
}

// FindAll lists feedback newest first with the submitting user attached.
func (r *repository) FindAll(ctx context.Context, filter ListFilter) ([]Feedback, int64, error) {
	q := r.db.WithContext(ctx).Model(&Feedback{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []Feedback
	q = q.Preload("Author").Order("created_at DESC")
	if filter.Limit > 0 {
		q = q.Offset(filter.Offset).Limit(filter.Limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
