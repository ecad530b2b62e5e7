package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-registry-api/internal/models"
	"github.com/noah-isme/course-registry-api/internal/service"
	appErrors "github.com/noah-isme/course-registry-api/pkg/errors"
	"github.com/noah-isme/course-registry-api/pkg/response"
)

// ActivityHandler exposes the audit trail.
type ActivityHandler struct {
	activity *service.ActivityService
}

// NewActivityHandler constructs the activity handler.
func NewActivityHandler(activity *service.ActivityService) *ActivityHandler {
	return &ActivityHandler{activity: activity}
}

// List godoc
// @Summary In-memory activity log
// @Description Without last the whole log is returned oldest first; with last only the most recent entries. last <= 0 yields an empty list.
// @Tags Activity
// @Produce json
// @Param last query int false "Number of most recent entries"
// @Success 200 {object} response.Envelope
// @Router /activities [get]
func (h *ActivityHandler) List(c *gin.Context) {
	var last *int
	if raw := strings.TrimSpace(c.Query("last")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "last must be an integer"))
			return
		}
		last = &n
	}
	response.JSON(c, http.StatusOK, h.activity.List(c.Request.Context(), last), nil)
}

// Archive godoc
// @Summary Archived activity
// @Tags Activity
// @Produce json
// @Param instance query string false "Instance ID"
// @Param studentId query string false "Student ID"
// @Param courseCode query string false "Course code"
// @Param action query string false "Action"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /activities/archive [get]
func (h *ActivityHandler) Archive(c *gin.Context) {
	filter := models.ActivityFilter{
		InstanceID: strings.TrimSpace(c.Query("instance")),
		StudentID:  strings.TrimSpace(c.Query("studentId")),
		CourseCode: strings.TrimSpace(c.Query("courseCode")),
		Action:     models.ActivityAction(strings.ToUpper(strings.TrimSpace(c.Query("action")))),
	}
	page, size := pageParams(c)
	items, pagination, err := h.activity.Archived(c.Request.Context(), filter, page, size)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}
