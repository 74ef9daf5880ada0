package schedule_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"jovenva-attendance/internal/middleware"
	"jovenva-attendance/internal/schedule"
	scheduleerrors "jovenva-attendance/internal/schedule/errors"
	scheduleMock "jovenva-attendance/internal/schedule/mock"
	shifterrors "jovenva-attendance/internal/shift/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type serviceDeps struct {
	db        *sql.DB
	sqlMock   sqlmock.Sqlmock
	service   schedule.Service
	repo      *scheduleMock.MockRepository
	redismock redismock.ClientMock
}

func setupServiceTest(t *testing.T) *serviceDeps {
	t.Helper()
	ctrl := gomock.NewController(t)

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	rdb, redisMock := redismock.NewClientMock()
	repo := scheduleMock.NewMockRepository(ctrl)

	return &serviceDeps{
		db:        db,
		sqlMock:   sqlMock,
		service:   schedule.NewService(db, repo, rdb, zap.NewNop()),
		repo:      repo,
		redismock: redisMock,
	}
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func day(s string) time.Time {
	d, _ := time.Parse("2006-01-02", s)
	return d
}

func existingTask(creator, assignee uuid.UUID) *schedule.Task {
	return &schedule.Task{
		ID:               uuid.New(),
		UserID:           creator,
		AssignedToUserID: assignee,
		Date:             day("2024-03-04"),
		EndDate:          day("2024-03-05"),
		StartTime:        "21:00:00",
		EndTime:          "01:00:00",
		Title:            "Night ops",
		Status:           schedule.StatusPending,
		Priority:         schedule.PriorityMedium,
		Tags:             datatypes.JSON(`["ops"]`),
	}
}

func TestScheduleService_Daily(t *testing.T) {
	ctx := context.Background()
	cacheKey := schedule.GetDailyTasksKey("2024-03-04")

	t.Run("date is required", func(t *testing.T) {
		deps := setupServiceTest(t)

		_, err := deps.service.Daily(ctx, " ")

		assert.ErrorIs(t, err, scheduleerrors.ErrDateRequired)
	})

	t.Run("malformed date", func(t *testing.T) {
		deps := setupServiceTest(t)

		_, err := deps.service.Daily(ctx, "04/03/2024")

		assert.ErrorIs(t, err, shifterrors.ErrInvalidDate)
	})

	t.Run("cache hit skips the database", func(t *testing.T) {
		deps := setupServiceTest(t)
		cached, _ := json.Marshal([]schedule.TaskResponse{{ID: "t1", Title: "cached"}})
		deps.redismock.ExpectGet(cacheKey).SetVal(string(cached))

		tasks, err := deps.service.Daily(ctx, "2024-03-04")

		assert.NoError(t, err)
		assert.Len(t, tasks, 1)
		assert.Equal(t, "cached", tasks[0].Title)
		assert.NoError(t, deps.redismock.ExpectationsWereMet())
	})

	t.Run("cache miss loads and stores", func(t *testing.T) {
		deps := setupServiceTest(t)
		creator := uuid.New()
		avatar := "https://cdn.example.com/a.png"

		withAssignee := existingTask(creator, creator)
		withAssignee.Assignee = &schedule.Assignee{ID: creator, Name: "Ana", AvatarURL: &avatar}
		orphan := existingTask(creator, uuid.New())
		orphan.StartTime = "22:00:00"

		deps.redismock.ExpectGet(cacheKey).RedisNil()
		deps.repo.EXPECT().
			FindByDate(gomock.Any(), day("2024-03-04")).
			Return([]schedule.Task{*withAssignee, *orphan}, nil)

		tasks, err := deps.service.Daily(ctx, "2024-03-04")
		assert.NoError(t, err)
		assert.Len(t, tasks, 2)
		assert.Equal(t, "Ana", tasks[0].Assignee.Name)
		assert.Equal(t, &avatar, tasks[0].Assignee.AvatarURL)
		assert.Equal(t, "Unknown", tasks[1].Assignee.Name)
		assert.Nil(t, tasks[1].Assignee.AvatarURL)
		assert.True(t, tasks[0].Overnight)
		assert.Equal(t, []string{"ops"}, tasks[0].Tags)
	})

	t.Run("database error", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.redismock.ExpectGet(cacheKey).RedisNil()
		deps.repo.EXPECT().FindByDate(gomock.Any(), day("2024-03-04")).Return(nil, errors.New("db down"))

		tasks, err := deps.service.Daily(ctx, "2024-03-04")

		assert.Error(t, err)
		assert.Nil(t, tasks)
	})
}

func TestScheduleService_Create(t *testing.T) {
	ctx := context.Background()
	creator := uuid.New()
	actor := schedule.Actor{UserID: creator.String(), Role: middleware.RoleEmployee}

	t.Run("overnight task ends the next day", func(t *testing.T) {
		deps := setupServiceTest(t)
		req := schedule.CreateTaskRequest{
			Title:     " Night ops ",
			Date:      "2024-03-04",
			StartTime: "21:00",
			EndTime:   "01:00",
		}

		expectTx(t, deps.sqlMock, true)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().
			Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, task *schedule.Task) error {
				assert.Equal(t, creator, task.UserID)
				assert.Equal(t, creator, task.AssignedToUserID)
				assert.Equal(t, day("2024-03-05"), task.EndDate)
				assert.Equal(t, "21:00:00", task.StartTime)
				assert.Equal(t, "01:00:00", task.EndTime)
				assert.JSONEq(t, `[]`, string(task.Tags))
				return nil
			})
		deps.redismock.ExpectDel(schedule.GetDailyTasksKey("2024-03-04")).SetVal(1)

		resp, err := deps.service.Create(ctx, actor, req)

		assert.NoError(t, err)
		assert.Equal(t, "Night ops", resp.Title)
		assert.Equal(t, "2024-03-04", resp.Date)
		assert.Equal(t, "2024-03-05", resp.EndDate)
		assert.True(t, resp.Overnight)
		assert.Equal(t, schedule.StatusPending, resp.Status)
		assert.Equal(t, schedule.PriorityMedium, resp.Priority)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
		assert.NoError(t, deps.redismock.ExpectationsWereMet())
	})

	t.Run("explicit assignee and status", func(t *testing.T) {
		deps := setupServiceTest(t)
		assignee := uuid.New()
		req := schedule.CreateTaskRequest{
			Title:            "Review",
			Date:             "2024-03-04",
			StartTime:        "09:00",
			EndTime:          "10:30",
			Status:           schedule.StatusInProgress,
			Priority:         schedule.PriorityHigh,
			AssignedToUserID: assignee.String(),
			Tags:             []string{"qa"},
		}

		expectTx(t, deps.sqlMock, true)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
		deps.redismock.ExpectDel(schedule.GetDailyTasksKey("2024-03-04")).SetVal(1)

		resp, err := deps.service.Create(ctx, actor, req)

		assert.NoError(t, err)
		assert.Equal(t, assignee.String(), resp.AssignedToUserID)
		assert.Equal(t, "2024-03-04", resp.EndDate)
		assert.False(t, resp.Overnight)
		assert.Equal(t, schedule.StatusInProgress, resp.Status)
		assert.Equal(t, []string{"qa"}, resp.Tags)
	})

	t.Run("malformed time of day", func(t *testing.T) {
		deps := setupServiceTest(t)
		req := schedule.CreateTaskRequest{Title: "x", Date: "2024-03-04", StartTime: "9pm", EndTime: "01:00"}

		_, err := deps.service.Create(ctx, actor, req)

		assert.ErrorIs(t, err, shifterrors.ErrInvalidTimeOfDay)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("repo error rolls back", func(t *testing.T) {
		deps := setupServiceTest(t)
		req := schedule.CreateTaskRequest{Title: "x", Date: "2024-03-04", StartTime: "21:00", EndTime: "23:00"}

		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("db error"))

		_, err := deps.service.Create(ctx, actor, req)

		assert.EqualError(t, err, "db error")
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestScheduleService_Update(t *testing.T) {
	ctx := context.Background()
	creator, assignee := uuid.New(), uuid.New()

	t.Run("assignee changes the title", func(t *testing.T) {
		deps := setupServiceTest(t)
		task := existingTask(creator, assignee)
		title := "Night ops (moved)"

		expectTx(t, deps.sqlMock, true)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(gomock.Any(), task.ID.String()).Return(task, nil)
		deps.repo.EXPECT().Update(gomock.Any(), task).Return(nil)
		deps.redismock.ExpectDel(schedule.GetDailyTasksKey("2024-03-04")).SetVal(1)

		resp, err := deps.service.Update(ctx,
			schedule.Actor{UserID: assignee.String(), Role: middleware.RoleEmployee},
			task.ID.String(),
			schedule.UpdateTaskRequest{Title: &title},
		)

		assert.NoError(t, err)
		assert.Equal(t, title, resp.Title)
		assert.Equal(t, "2024-03-05", resp.EndDate)
		assert.NoError(t, deps.redismock.ExpectationsWereMet())
	})

	t.Run("moving the date re-derives the end date", func(t *testing.T) {
		deps := setupServiceTest(t)
		task := existingTask(creator, assignee)
		date, end := "2024-03-06", "23:30"

		expectTx(t, deps.sqlMock, true)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(gomock.Any(), task.ID.String()).Return(task, nil)
		deps.repo.EXPECT().Update(gomock.Any(), task).Return(nil)
		deps.redismock.ExpectDel(
			schedule.GetDailyTasksKey("2024-03-04"),
			schedule.GetDailyTasksKey("2024-03-06"),
		).SetVal(2)

		resp, err := deps.service.Update(ctx,
			schedule.Actor{UserID: creator.String()},
			task.ID.String(),
			schedule.UpdateTaskRequest{Date: &date, EndTime: &end},
		)

		assert.NoError(t, err)
		assert.Equal(t, "2024-03-06", resp.Date)
		assert.Equal(t, "2024-03-06", resp.EndDate)
		assert.Equal(t, "23:30:00", resp.EndTime)
		assert.False(t, resp.Overnight)
	})

	t.Run("admin may edit any task", func(t *testing.T) {
		deps := setupServiceTest(t)
		task := existingTask(creator, assignee)
		status := schedule.StatusCompleted

		expectTx(t, deps.sqlMock, true)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(gomock.Any(), task.ID.String()).Return(task, nil)
		deps.repo.EXPECT().Update(gomock.Any(), task).Return(nil)
		deps.redismock.ExpectDel(schedule.GetDailyTasksKey("2024-03-04")).SetVal(1)

		resp, err := deps.service.Update(ctx,
			schedule.Actor{UserID: uuid.New().String(), Role: middleware.RoleAdmin},
			task.ID.String(),
			schedule.UpdateTaskRequest{Status: &status},
		)

		assert.NoError(t, err)
		assert.Equal(t, schedule.StatusCompleted, resp.Status)
	})

	t.Run("stranger is forbidden", func(t *testing.T) {
		deps := setupServiceTest(t)
		task := existingTask(creator, assignee)

		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(gomock.Any(), task.ID.String()).Return(task, nil)

		_, err := deps.service.Update(ctx,
			schedule.Actor{UserID: uuid.New().String(), Role: middleware.RoleEmployee},
			task.ID.String(),
			schedule.UpdateTaskRequest{},
		)

		assert.ErrorIs(t, err, scheduleerrors.ErrTaskForbidden)
	})

	t.Run("not found", func(t *testing.T) {
		deps := setupServiceTest(t)
		id := uuid.New().String()

		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(gomock.Any(), id).Return(nil, gorm.ErrRecordNotFound)

		_, err := deps.service.Update(ctx, schedule.Actor{UserID: creator.String()}, id, schedule.UpdateTaskRequest{})

		assert.ErrorIs(t, err, scheduleerrors.ErrTaskNotFound)
	})

	t.Run("invalid id", func(t *testing.T) {
		deps := setupServiceTest(t)

		_, err := deps.service.Update(ctx, schedule.Actor{UserID: creator.String()}, "abc", schedule.UpdateTaskRequest{})

		assert.ErrorIs(t, err, scheduleerrors.ErrInvalidTaskID)
	})
}

func TestScheduleService_Delete(t *testing.T) {
	ctx := context.Background()
	creator, assignee := uuid.New(), uuid.New()

	t.Run("creator deletes", func(t *testing.T) {
		deps := setupServiceTest(t)
		task := existingTask(creator, assignee)

		expectTx(t, deps.sqlMock, true)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(gomock.Any(), task.ID.String()).Return(task, nil)
		deps.repo.EXPECT().Delete(gomock.Any(), task.ID.String()).Return(nil)
		deps.redismock.ExpectDel(schedule.GetDailyTasksKey("2024-03-04")).SetVal(1)

		err := deps.service.Delete(ctx, schedule.Actor{UserID: creator.String()}, task.ID.String())

		assert.NoError(t, err)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("assignee may not delete", func(t *testing.T) {
		deps := setupServiceTest(t)
		task := existingTask(creator, assignee)

		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(gomock.Any(), task.ID.String()).Return(task, nil)

		err := deps.service.Delete(ctx, schedule.Actor{UserID: assignee.String()}, task.ID.String())

		assert.ErrorIs(t, err, scheduleerrors.ErrTaskDeleteForbidden)
	})

	t.Run("admin deletes", func(t *testing.T) {
		deps := setupServiceTest(t)
		task := existingTask(creator, assignee)

		expectTx(t, deps.sqlMock, true)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(gomock.Any(), task.ID.String()).Return(task, nil)
		deps.repo.EXPECT().Delete(gomock.Any(), task.ID.String()).Return(nil)
		deps.redismock.ExpectDel(schedule.GetDailyTasksKey("2024-03-04")).SetVal(1)

		err := deps.service.Delete(ctx, schedule.Actor{UserID: uuid.New().String(), Role: middleware.RoleAdmin}, task.ID.String())

		assert.NoError(t, err)
	})
}

func TestScheduleService_AdminList(t *testing.T) {
	deps := setupServiceTest(t)
	d := day("2024-03-04")
	task := existingTask(uuid.New(), uuid.New())

	deps.repo.EXPECT().
		FindAll(gomock.Any(), schedule.ListFilter{Date: &d, Offset: 0, Limit: 20}).
		Return([]schedule.Task{*task}, int64(1), nil)

	tasks, total, err := deps.service.AdminList(context.Background(), schedule.AdminListQuery{Date: "2024-03-04"})

	assert.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, tasks, 1)
	assert.Nil(t, tasks[0].Assignee)
}
