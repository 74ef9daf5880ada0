package attendance

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"jovenva-attendance/internal/shared/apperror"
	"jovenva-attendance/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("attendance.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("attendance request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.Error(err),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

// bindOptionalJSON accepts an empty body for endpoints whose payload is
// entirely optional.
func bindOptionalJSON(c *gin.Context, obj any) error {
	if c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		return apperror.MapValidationError(err)
	}
	return nil
}

func (h *Handler) Window(c *gin.Context) {
	response.Success(c, http.StatusOK, h.service.Window(c.Request.Context()), nil)
}

func (h *Handler) Today(c *gin.Context) {
	resp, err := h.service.Today(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) CheckIn(c *gin.Context) {
	var req CheckInRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		h.writeServiceError(c, err)
		return
	}

	resp, err := h.service.CheckIn(c.Request.Context(), c.GetString("user_id"), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) CheckOut(c *gin.Context) {
	var req CheckOutRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		h.writeServiceError(c, err)
		return
	}

	resp, err := h.service.CheckOut(c.Request.Context(), c.GetString("user_id"), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Weekly(c *gin.Context) {
	resp, err := h.service.Weekly(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) AdminList(c *gin.Context) {
	var q AdminListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}
	q.Page, q.PageSize = normalizePage(q.Page, q.PageSize)

	rows, total, err := h.service.AdminList(c.Request.Context(), q)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	meta := response.NewPaginationMeta(total, q.Page, q.PageSize)
	response.Success(c, http.StatusOK, rows, &meta)
}

func (h *Handler) Export(c *gin.Context) {
	date := strings.TrimSpace(c.Query("date"))

	file, err := h.service.Export(c.Request.Context(), date)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	name := "attendance.xlsx"
	if date != "" {
		name = "attendance-" + date + ".xlsx"
	}
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, xlsxContentType, file)
}
