package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-registry-api/internal/dto"
	"github.com/noah-isme/course-registry-api/internal/middleware"
	"github.com/noah-isme/course-registry-api/internal/service"
	appErrors "github.com/noah-isme/course-registry-api/pkg/errors"
	"github.com/noah-isme/course-registry-api/pkg/response"
)

// EnrollmentHandler exposes enrollment endpoints.
type EnrollmentHandler struct {
	enrollments *service.EnrollmentService
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(enrollments *service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments}
}

// Enroll godoc
// @Summary Enroll a student in a course
// @Description Returns 201 when a seat was granted and 202 with the waitlist position when the course is full.
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param payload body dto.EnrollRequest true "Enrollment payload"
// @Success 201 {object} response.Envelope
// @Success 202 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /enrollments [post]
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	var req dto.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.enrollments.Enroll(c.Request.Context(), req)
	if errors.Is(err, appErrors.ErrWaitlisted) {
		response.Partial(c, result, err)
		return
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Drop godoc
// @Summary Drop a student from a course
// @Tags Enrollments
// @Produce json
// @Param studentId path string true "Student ID"
// @Param code path string true "Course code"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{studentId}/{code} [delete]
func (h *EnrollmentHandler) Drop(c *gin.Context) {
	result, err := h.enrollments.Drop(c.Request.Context(), c.Param("studentId"), c.Param("code"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// ByInstructor godoc
// @Summary Students enrolled with an instructor
// @Tags Enrollments
// @Produce json
// @Param name path string true "Instructor name"
// @Success 200 {object} response.Envelope
// @Router /instructors/{name}/students [get]
func (h *EnrollmentHandler) ByInstructor(c *gin.Context) {
	roster, hit, err := h.enrollments.StudentsByInstructor(c.Request.Context(), c.Param("name"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, roster, nil, middleware.ExtractMeta(c))
}
