package feedback_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"jovenva-attendance/internal/feedback"
	feedbackerrors "jovenva-attendance/internal/feedback/errors"
	feedbackMock "jovenva-attendance/internal/feedback/mock"
	"jovenva-attendance/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

func setupRouter(t *testing.T, userID, role string) (*gin.Engine, *feedbackMock.MockService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := feedbackMock.NewMockService(gomock.NewController(t))
	auth := func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("role", role)
		c.Next()
	}

	r := gin.New()
	feedback.RegisterRoutes(r.Group("/api/v1"), feedback.NewHandler(svc, zap.NewNop()), auth)
	return r, svc
}

func serve(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_Submit(t *testing.T) {
	userID := uuid.New().String()

	t.Run("created", func(t *testing.T) {
		r, svc := setupRouter(t, userID, middleware.RoleEmployee)
		svc.EXPECT().
			Submit(gomock.Any(), userID, feedback.CreateFeedbackRequest{Message: "late badge reader"}).
			Return(feedback.FeedbackResponse{ID: "f1", Message: "late badge reader"}, nil)

		w := serve(r, http.MethodPost, "/api/v1/feedback", `{"message":"late badge reader"}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"id":"f1"`)
	})

	t.Run("missing message never reaches the service", func(t *testing.T) {
		r, _ := setupRouter(t, userID, middleware.RoleEmployee)

		w := serve(r, http.MethodPost, "/api/v1/feedback", `{}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("blank message", func(t *testing.T) {
		r, svc := setupRouter(t, userID, middleware.RoleEmployee)
		svc.EXPECT().Submit(gomock.Any(), userID, gomock.Any()).Return(feedback.FeedbackResponse{}, feedbackerrors.ErrMessageRequired)

		w := serve(r, http.MethodPost, "/api/v1/feedback", `{"message":"   "}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Message is required")
	})
}

func TestHandler_AdminList(t *testing.T) {
	t.Run("admin sees paginated feedback", func(t *testing.T) {
		r, svc := setupRouter(t, uuid.New().String(), middleware.RoleAdmin)
		svc.EXPECT().
			AdminList(gomock.Any(), feedback.AdminListQuery{Page: 1, PageSize: 20}).
			Return([]feedback.FeedbackResponse{{ID: "f1"}}, int64(1), nil)

		w := serve(r, http.MethodGet, "/api/v1/feedback/admin", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"id":"f1"`)
	})

	t.Run("employee is forbidden", func(t *testing.T) {
		r, _ := setupRouter(t, uuid.New().String(), middleware.RoleEmployee)

		w := serve(r, http.MethodGet, "/api/v1/feedback/admin", "")
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
