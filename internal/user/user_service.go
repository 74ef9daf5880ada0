package user

import (
	"context"
	"errors"
	"time"

	"jovenva-attendance/internal/shared/contextutil"
	usererrors "jovenva-attendance/internal/user/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

//go:generate mockgen -source=user_service.go -destination=mock/user_service_mock.go -package=mock
type Service interface {
	List(ctx context.Context, q ListQuery) ([]UserResponse, int64, error)
	UpdateRole(ctx context.Context, actorID string, id string, req UpdateRoleRequest) (UserResponse, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("user.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("user.service")
	}
	return &service{repo: repo, logger: l}
}

func (s *service) List(ctx context.Context, q ListQuery) ([]UserResponse, int64, error) {
	page, pageSize := normalizePage(q.Page, q.PageSize)

	users, total, err := s.repo.FindAll(ctx, ListFilter{
		Offset: (page - 1) * pageSize,
		Limit:  pageSize,
	})
	if err != nil {
		return nil, 0, err
	}

	resp := make([]UserResponse, len(users))
	for i, u := range users {
		resp[i] = toResponse(u)
	}
	return resp, total, nil
}

// UpdateRole changes a user's role. An admin cannot change their own role,
// so the last admin cannot lock everyone out.
func (s *service) UpdateRole(ctx context.Context, actorID string, id string, req UpdateRoleRequest) (UserResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return UserResponse{}, usererrors.ErrInvalidUserID
	}
	if id == actorID {
		return UserResponse{}, usererrors.ErrOwnRole
	}

	if err := s.repo.UpdateRole(ctx, id, req.Role); err != nil {
		return UserResponse{}, mapRepositoryError(err)
	}

	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return UserResponse{}, mapRepositoryError(err)
	}

	contextutil.GetLogger(ctx, s.logger).Info("user role changed",
		zap.String("target_user_id", id),
		zap.String("role", req.Role),
	)
	return toResponse(*u), nil
}

func mapRepositoryError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return usererrors.ErrUserNotFound
	}
	return err
}

func toResponse(u User) UserResponse {
	return UserResponse{
		ID:        u.ID.String(),
		Name:      u.Name,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
		Role:      u.Role,
		CreatedAt: u.CreatedAt.UTC().Format(time.RFC3339),
	}
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
