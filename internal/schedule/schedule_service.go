package schedule

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	scheduleerrors "jovenva-attendance/internal/schedule/errors"
	"jovenva-attendance/internal/shared/contextutil"
	"jovenva-attendance/internal/shift"
	shifterrors "jovenva-attendance/internal/shift/errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/datatypes"
)

const (
	dateLayout = shift.DateLayout

	DailyTasksKeyPrefix = "schedule:daily:"
	dailyTasksTTL       = 10 * time.Minute

	defaultPageSize = 20
	maxPageSize     = 100
)

func GetDailyTasksKey(date string) string {
	return DailyTasksKeyPrefix + date
}

//go:generate mockgen -source=schedule_service.go -destination=mock/schedule_service_mock.go -package=mock
type Service interface {
	Daily(ctx context.Context, date string) ([]TaskResponse, error)
	Create(ctx context.Context, actor Actor, req CreateTaskRequest) (TaskResponse, error)
	Update(ctx context.Context, actor Actor, id string, req UpdateTaskRequest) (TaskResponse, error)
	Delete(ctx context.Context, actor Actor, id string) error
	AdminList(ctx context.Context, q AdminListQuery) ([]TaskResponse, int64, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	rdb    *redis.Client
	sf     *singleflight.Group
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, rdb *redis.Client, logger ...*zap.Logger) Service {
	l := zap.L().Named("schedule.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("schedule.service")
	}
	return &service{
		db:     db,
		repo:   repo,
		rdb:    rdb,
		sf:     &singleflight.Group{},
		logger: l,
	}
}

// Daily lists every task on date ordered by start time, regardless of
// assignee. Results are cached per date and invalidated on writes.
func (s *service) Daily(ctx context.Context, date string) ([]TaskResponse, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return nil, scheduleerrors.ErrDateRequired
	}
	d, err := parseDate(date)
	if err != nil {
		return nil, err
	}

	cacheKey := GetDailyTasksKey(date)
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var resp []TaskResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		}
	}

	v, err, _ := s.sf.Do(cacheKey, func() (interface{}, error) {
		tasks, err := s.repo.FindByDate(ctx, d)
		if err != nil {
			return nil, err
		}

		resp := make([]TaskResponse, len(tasks))
		for i, t := range tasks {
			resp[i] = toResponse(t)
			if resp[i].Assignee == nil {
				resp[i].Assignee = &AssigneeResponse{Name: "Unknown"}
			}
		}

		if s.rdb != nil {
			if jsonData, err := json.Marshal(resp); err == nil {
				s.rdb.Set(ctx, cacheKey, jsonData, dailyTasksTTL)
			}
		}
		return resp, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]TaskResponse), nil
}

func (s *service) Create(ctx context.Context, actor Actor, req CreateTaskRequest) (TaskResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	creator, err := uuid.Parse(actor.UserID)
	if err != nil {
		return TaskResponse{}, scheduleerrors.ErrInvalidUserID
	}
	assignee := creator
	if req.AssignedToUserID != "" {
		if assignee, err = uuid.Parse(req.AssignedToUserID); err != nil {
			return TaskResponse{}, scheduleerrors.ErrInvalidUserID
		}
	}

	task := &Task{
		ID:               uuid.New(),
		UserID:           creator,
		AssignedToUserID: assignee,
		Title:            strings.TrimSpace(req.Title),
		Description:      req.Description,
		Status:           StatusPending,
		Priority:         PriorityMedium,
		Tags:             encodeTags(req.Tags),
	}
	if req.Status != "" {
		task.Status = req.Status
	}
	if req.Priority != "" {
		task.Priority = req.Priority
	}
	if err := applySpan(task, req.Date, req.StartTime, req.EndTime); err != nil {
		return TaskResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return TaskResponse{}, err
	}
	defer tx.Rollback()

	if err := s.repo.WithTx(tx).Create(ctx, task); err != nil {
		log.Error("create task failed", zap.Error(err))
		return TaskResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		return TaskResponse{}, err
	}

	s.invalidate(ctx, task.Date)
	log.Info("task created",
		zap.String("task_id", task.ID.String()),
		zap.String("date", task.Date.Format(dateLayout)),
	)
	return toResponse(*task), nil
}

func (s *service) Update(ctx context.Context, actor Actor, id string, req UpdateTaskRequest) (TaskResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return TaskResponse{}, scheduleerrors.ErrInvalidTaskID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return TaskResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	task, err := qtx.FindByID(ctx, id)
	if err != nil {
		return TaskResponse{}, mapRepositoryError(err)
	}

	uid := actor.UserID
	if !actor.IsAdmin() && uid != task.UserID.String() && uid != task.AssignedToUserID.String() {
		return TaskResponse{}, scheduleerrors.ErrTaskForbidden
	}

	oldDate := task.Date
	if req.Title != nil {
		task.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		task.Description = req.Description
	}
	if req.Status != nil {
		task.Status = *req.Status
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}
	if req.AssignedToUserID != nil {
		assignee, err := uuid.Parse(*req.AssignedToUserID)
		if err != nil {
			return TaskResponse{}, scheduleerrors.ErrInvalidUserID
		}
		task.AssignedToUserID = assignee
	}
	if req.Tags != nil {
		task.Tags = encodeTags(req.Tags)
	}

	if req.Date != nil || req.StartTime != nil || req.EndTime != nil {
		date, start, end := task.Date.Format(dateLayout), task.StartTime, task.EndTime
		if req.Date != nil {
			date = *req.Date
		}
		if req.StartTime != nil {
			start = *req.StartTime
		}
		if req.EndTime != nil {
			end = *req.EndTime
		}
		if err := applySpan(task, date, start, end); err != nil {
			return TaskResponse{}, err
		}
	}

	if err := qtx.Update(ctx, task); err != nil {
		return TaskResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		return TaskResponse{}, err
	}

	s.invalidate(ctx, oldDate, task.Date)
	return toResponse(*task), nil
}

func (s *service) Delete(ctx context.Context, actor Actor, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return scheduleerrors.ErrInvalidTaskID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	task, err := qtx.FindByID(ctx, id)
	if err != nil {
		return mapRepositoryError(err)
	}
	if !actor.IsAdmin() && actor.UserID != task.UserID.String() {
		return scheduleerrors.ErrTaskDeleteForbidden
	}

	if err := qtx.Delete(ctx, id); err != nil {
		return mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	s.invalidate(ctx, task.Date)
	contextutil.GetLogger(ctx, s.logger).Info("task deleted", zap.String("task_id", id))
	return nil
}

func (s *service) AdminList(ctx context.Context, q AdminListQuery) ([]TaskResponse, int64, error) {
	filter := ListFilter{}
	if q.Date != "" {
		d, err := parseDate(q.Date)
		if err != nil {
			return nil, 0, err
		}
		filter.Date = &d
	}

	page, pageSize := normalizePage(q.Page, q.PageSize)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize

	tasks, total, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	resp := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		resp[i] = toResponse(t)
	}
	return resp, total, nil
}

func (s *service) invalidate(ctx context.Context, dates ...time.Time) {
	if s.rdb == nil {
		return
	}

	keys := make([]string, 0, len(dates))
	seen := make(map[string]struct{}, len(dates))
	for _, d := range dates {
		key := GetDailyTasksKey(d.Format(dateLayout))
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}

	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		s.logger.Error("failed to invalidate daily tasks cache",
			zap.Strings("keys", keys),
			zap.Error(err),
		)
	}
}

// applySpan resolves the task's dates and normalized times. The end date
// is never taken from the client.
func applySpan(t *Task, date, start, end string) error {
	span, err := shift.ResolveSpan(strings.TrimSpace(date), start, end)
	if err != nil {
		return err
	}
	if t.Date, err = parseDate(span.StartDate); err != nil {
		return err
	}
	if t.EndDate, err = parseDate(span.EndDate); err != nil {
		return err
	}
	t.StartTime = span.StartTime.String()
	t.EndTime = span.EndTime.String()
	return nil
}

func encodeTags(tags []string) datatypes.JSON {
	if tags == nil {
		tags = []string{}
	}
	b, _ := json.Marshal(tags)
	return datatypes.JSON(b)
}

func decodeTags(raw datatypes.JSON) []string {
	tags := []string{}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &tags)
	}
	return tags
}

func toResponse(t Task) TaskResponse {
	resp := TaskResponse{
		ID:               t.ID.String(),
		UserID:           t.UserID.String(),
		AssignedToUserID: t.AssignedToUserID.String(),
		Date:             t.Date.Format(dateLayout),
		EndDate:          t.EndDate.Format(dateLayout),
		StartTime:        t.StartTime,
		EndTime:          t.EndTime,
		Overnight:        t.EndDate.After(t.Date),
		Title:            t.Title,
		Description:      t.Description,
		Status:           t.Status,
		Priority:         t.Priority,
		Tags:             decodeTags(t.Tags),
	}
	if t.Assignee != nil {
		resp.Assignee = &AssigneeResponse{
			ID:        t.Assignee.ID.String(),
			Name:      t.Assignee.Name,
			Email:     t.Assignee.Email,
			AvatarURL: t.Assignee.AvatarURL,
		}
	}
	return resp
}

func parseDate(s string) (time.Time, error) {
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
