package feedback

import (
	"context"
	"strings"
	"time"

	feedbackerrors "jovenva-attendance/internal/feedback/errors"
	"jovenva-attendance/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

//go:generate mockgen -source=feedback_service.go -destination=mock/feedback_service_mock.go -package=mock
type Service interface {
	Submit(ctx context.Context, userID string, req CreateFeedbackRequest) (FeedbackResponse, error)
	AdminList(ctx context.Context, q AdminListQuery) ([]FeedbackResponse, int64, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("feedback.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("feedback.service")
	}
	return &service{repo: repo, logger: l}
}

func (s *service) Submit(ctx context.Context, userID string, req CreateFeedbackRequest) (FeedbackResponse, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return FeedbackResponse{}, feedbackerrors.ErrInvalidUserID
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		return FeedbackResponse{}, feedbackerrors.ErrMessageRequired
	}

	f := &Feedback{UserID: uid, Message: message}
	if err := s.repo.Create(ctx, f); err != nil {
		return FeedbackResponse{}, mapRepositoryError(err)
	}

	contextutil.GetLogger(ctx, s.logger).Info("feedback submitted",
		zap.String("feedback_id", f.ID.String()),
		zap.String("user_id", userID),
	)
	return toResponse(*f), nil
}

func (s *service) AdminList(ctx context.Context, q AdminListQuery) ([]FeedbackResponse, int64, error) {
	page, pageSize := normalizePage(q.Page, q.PageSize)

	rows, total, err := s.repo.FindAll(ctx, ListFilter{
		Offset: (page - 1) * pageSize,
		Limit:  pageSize,
	})
	if err != nil {
		return nil, 0, err
	}

	resp := make([]FeedbackResponse, len(rows))
	for i, f := range rows {
		resp[i] = toResponse(f)
	}
	return resp, total, nil
}

func toResponse(f Feedback) FeedbackResponse {
	resp := FeedbackResponse{
		ID:        f.ID.String(),
		UserID:    f.UserID.String(),
		Message:   f.Message,
		CreatedAt: f.CreatedAt.UTC().Format(time.RFC3339),
	}
	if f.Author != nil {
		resp.Author = &AuthorResponse{
			ID:        f.Author.ID.String(),
			Name:      f.Author.Name,
			Email:     f.Author.Email,
			AvatarURL: f.Author.AvatarURL,
		}
	}
	return resp
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
