package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-virtual-api/internal/dto"
	"github.com/noah-isme/campus-virtual-api/internal/models"
	appErrors "github.com/noah-isme/campus-virtual-api/pkg/errors"
	"github.com/noah-isme/campus-virtual-api/pkg/response"
)

// multipartOverhead is allowed on top of the file size limit for headers and boundaries.
const multipartOverhead = 1 << 20

type uploadService interface {
	Upload(ctx context.Context, claims *models.SessionClaims, filename string, r io.Reader) (*dto.UploadResult, error)
	Open(token string) (*os.File, string, error)
}

// UploadHandler accepts submission files and serves them back by signed token.
type UploadHandler struct {
	service  uploadService
	maxBytes int64
}

// NewUploadHandler constructs a new handler. maxBytes bounds the request body.
func NewUploadHandler(svc uploadService, maxBytes int64) *UploadHandler {
	return &UploadHandler{service: svc, maxBytes: maxBytes}
}

// Upload godoc
// @Summary Upload file
// @Description Stores a file and returns a signed URL to use as a submission file_url
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "File"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /uploads [post]
func (h *UploadHandler) Upload(c *gin.Context) {
	if h.maxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+multipartOverhead)
	}
	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, appErrors.FieldError("file", fmt.Sprintf("file exceeds the %d byte limit", h.maxBytes)))
			return
		}
		response.Error(c, appErrors.FieldError("file", "file is required"))
		return
	}
	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Internal(err, "failed to read upload"))
		return
	}
	defer file.Close() //nolint:errcheck

	result, err := h.service.Upload(c.Request.Context(), claimsFromContext(c), header.Filename, file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Download godoc
// @Summary Download file
// @Description Streams a stored file when the signed token is valid and unexpired
// @Tags Uploads
// @Param token path string true "Signed token"
// @Success 200
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /files/{token} [get]
func (h *UploadHandler) Download(c *gin.Context) {
	file, name, err := h.service.Open(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close() //nolint:errcheck

	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Internal(err, "failed to stat file"))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Header("X-Content-Type-Options", "nosniff")
	http.ServeContent(c.Writer, c.Request, name, info.ModTime(), file)
}
