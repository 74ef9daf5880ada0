package attendance_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"jovenva-attendance/internal/attendance"
	attendanceerrors "jovenva-attendance/internal/attendance/errors"
	attendanceMock "jovenva-attendance/internal/attendance/mock"
	"jovenva-attendance/internal/middleware"
	"jovenva-attendance/internal/shift"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

type envelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Meta  map[string]any  `json:"meta"`
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func fakeAuth(userID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("role", role)
		c.Next()
	}
}

func setupRouter(t *testing.T, userID, role string) (*gin.Engine, *attendanceMock.MockService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctrl := gomock.NewController(t)
	svc := attendanceMock.NewMockService(ctrl)

	r := gin.New()
	api := r.Group("/api/v1")
	attendance.RegisterRoutes(api, attendance.NewHandler(svc, zap.NewNop()), fakeAuth(userID, role), nil)
	return r, svc
}

func perform(r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func TestHandler_CheckIn(t *testing.T) {
	userID := uuid.New().String()

	t.Run("created with empty body", func(t *testing.T) {
		r, svc := setupRouter(t, userID, middleware.RoleEmployee)
		svc.EXPECT().
			CheckIn(gomock.Any(), userID, attendance.CheckInRequest{}).
			Return(attendance.AttendanceResponse{ID: "a1", ShiftDate: "2024-03-04", Status: shift.StatusPresent}, nil)

		w, env := perform(r, http.MethodPost, "/api/v1/attendance/check-in", "")

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.True(t, env.Ok)

		var got attendance.AttendanceResponse
		assert.NoError(t, json.Unmarshal(env.Data, &got))
		assert.Equal(t, "2024-03-04", got.ShiftDate)
		assert.Equal(t, shift.StatusPresent, got.Status)
	})

	t.Run("notes are passed through", func(t *testing.T) {
		r, svc := setupRouter(t, userID, middleware.RoleEmployee)
		svc.EXPECT().
			CheckIn(gomock.Any(), userID, gomock.Any()).
			DoAndReturn(func(_ any, _ string, req attendance.CheckInRequest) (attendance.AttendanceResponse, error) {
				assert.NotNil(t, req.Notes)
				assert.Equal(t, "remote", *req.Notes)
				return attendance.AttendanceResponse{}, nil
			})

		w, _ := perform(r, http.MethodPost, "/api/v1/attendance/check-in", `{"notes":"remote"}`)

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("window closed", func(t *testing.T) {
		r, svc := setupRouter(t, userID, middleware.RoleEmployee)
		svc.EXPECT().
			CheckIn(gomock.Any(), userID, gomock.Any()).
			Return(attendance.AttendanceResponse{}, attendanceerrors.ErrCheckInWindowClosed)

		w, env := perform(r, http.MethodPost, "/api/v1/attendance/check-in", "")

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.False(t, env.Ok)
		assert.Equal(t, "INVALID_STATE", env.Error.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		r, _ := setupRouter(t, userID, middleware.RoleEmployee)

		w, env := perform(r, http.MethodPost, "/api/v1/attendance/check-in", `{"notes":`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.False(t, env.Ok)
	})
}

func TestHandler_CheckOut(t *testing.T) {
	userID := uuid.New().String()
	r, svc := setupRouter(t, userID, middleware.RoleEmployee)
	svc.EXPECT().
		CheckOut(gomock.Any(), userID, attendance.CheckOutRequest{}).
		Return(attendance.AttendanceResponse{}, attendanceerrors.ErrNotCheckedIn)

	w, env := perform(r, http.MethodPost, "/api/v1/attendance/check-out", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, attendanceerrors.CodeNotCheckedIn, env.Error.Code)
}

func TestHandler_Reads(t *testing.T) {
	userID := uuid.New().String()
	r, svc := setupRouter(t, userID, middleware.RoleEmployee)

	svc.EXPECT().Window(gomock.Any()).Return(attendance.WindowResponse{
		CheckInWindow: shift.CheckInWindow{IsOpen: true, CurrentHour: 22},
		ShiftDate:     "2024-03-04",
		Timezone:      "Asia/Manila",
	})
	svc.EXPECT().Today(gomock.Any(), userID).Return(attendance.TodayResponse{
		ShiftDate:    "2024-03-04",
		SessionState: shift.SessionReady,
		Status:       shift.StatusPending,
		Elapsed:      "00:00:00",
	}, nil)
	svc.EXPECT().Weekly(gomock.Any(), userID).Return(attendance.WeeklyResponse{
		WeekStart: "2024-03-04",
		WeekEnd:   "2024-03-10",
	}, nil)

	w, env := perform(r, http.MethodGet, "/api/v1/attendance/window", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"is_open":true`)
	assert.Contains(t, string(env.Data), `"timezone":"Asia/Manila"`)

	w, env = perform(r, http.MethodGet, "/api/v1/attendance/today", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"status":"PENDING"`)

	w, env = perform(r, http.MethodGet, "/api/v1/attendance/weekly", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"week_end":"2024-03-10"`)
}

func TestHandler_Admin(t *testing.T) {
	t.Run("employees are forbidden", func(t *testing.T) {
		r, _ := setupRouter(t, uuid.New().String(), middleware.RoleEmployee)

		w, env := perform(r, http.MethodGet, "/api/v1/attendance/admin", "")

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.False(t, env.Ok)
	})

	t.Run("list with pagination meta", func(t *testing.T) {
		r, svc := setupRouter(t, uuid.New().String(), middleware.RoleAdmin)
		svc.EXPECT().
			AdminList(gomock.Any(), attendance.AdminListQuery{Date: "2024-03-04", Page: 2, PageSize: 5}).
			Return([]attendance.AdminAttendanceResponse{{UserName: "Ana"}}, int64(6), nil)

		w, env := perform(r, http.MethodGet, "/api/v1/attendance/admin?date=2024-03-04&page=2&page_size=5", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(2), env.Meta["totalPages"])
		assert.Contains(t, string(env.Data), `"user_name":"Ana"`)
	})

	t.Run("export", func(t *testing.T) {
		r, svc := setupRouter(t, uuid.New().String(), middleware.RoleAdmin)
		svc.EXPECT().Export(gomock.Any(), "2024-03-04").Return([]byte("xlsx"), nil)

		w, _ := perform(r, http.MethodGet, "/api/v1/attendance/admin/export?date=2024-03-04", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, `attachment; filename="attendance-2024-03-04.xlsx"`, w.Header().Get("Content-Disposition"))
		assert.Equal(t, "xlsx", w.Body.String())
	})
}
