package user

import (
	"context"

	"gorm.io/gorm"
)

type ListFilter struct {
	Offset int
	Limit  int
}

//go:generate mockgen -source=user_repo.go -destination=mock/user_repo_mock.go -package=mock
type Repository interface {
	FindByID(ctx context.Context, id string) (*User, error)
	FindAll(ctx context.Context, filter ListFilter) ([]User, int64, error)
	UpdateRole(ctx context.Context, id string, role string) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindByID(ctx context.Context, id string) (*User, error) {
	var u User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) FindAll(ctx context.Context, filter ListFilter) ([]User, int64, error) {
	q := r.db.WithContext(ctx).Model(&User{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []User
	q = q.Order("created_at DESC")
	if filter.Limit > 0 {
		q = q.Offset(filter.Offset).Limit(filter.Limit)
	}
	if err := q.Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// UpdateRole reports gorm.ErrRecordNotFound when no row has id.
func (r *repository) UpdateRole(ctx context.Context, id string, role string) error {
	res := r.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Update("role", role)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
