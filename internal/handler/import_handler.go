package handler

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-registry-api/internal/models"
	"github.com/noah-isme/course-registry-api/internal/service"
	appErrors "github.com/noah-isme/course-registry-api/pkg/errors"
	"github.com/noah-isme/course-registry-api/pkg/response"
)

const maxImportBytes = 32 << 20

type importService interface {
	Load(ctx context.Context, source string, format service.ImportFormat, r io.Reader) (*models.LoadSummary, error)
}

// ImportHandler accepts bulk registry files.
type ImportHandler struct {
	imports importService
}

// NewImportHandler constructs the import handler.
func NewImportHandler(imports importService) *ImportHandler {
	return &ImportHandler{imports: imports}
}

// Upload godoc
// @Summary Bulk load students, courses and enrollments
// @Description Accepts a multipart "file" field or a raw body. YAML is detected from the file extension or content type; anything else is read as tagged lines.
// @Tags Imports
// @Accept multipart/form-data
// @Accept plain
// @Produce json
// @Param file formData file false "Bulk file"
// @Param source query string false "Source name for raw bodies"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /imports [post]
func (h *ImportHandler) Upload(c *gin.Context) {
	source := strings.TrimSpace(c.Query("source"))
	contentType := c.GetHeader("Content-Type")
	var body io.Reader = http.MaxBytesReader(c.Writer, c.Request.Body, maxImportBytes)

	if strings.HasPrefix(contentType, "multipart/") {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file is required"))
			return
		}
		src, err := fileHeader.Open()
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file"))
			return
		}
		defer src.Close() //nolint:errcheck
		body = src
		source = fileHeader.Filename
		contentType = fileHeader.Header.Get("Content-Type")
	}
	if source == "" {
		source = "upload"
	}

	summary, err := h.imports.Load(c.Request.Context(), source, service.DetectFormat(source, contentType), body)
	if err != nil {
		response.Partial(c, summary, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}
