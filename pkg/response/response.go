package response

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-virtual-api/internal/models"
	appErrors "github.com/noah-isme/campus-virtual-api/pkg/errors"
)

// Envelope is the body of every JSON reply. Exactly one of Data or Error is
// meaningful; Data is always present on success, even when null.
type Envelope struct {
	Data       interface{}            `json:"data"`
	Error      *appErrors.Error       `json:"error,omitempty"`
	Pagination *models.Pagination     `json:"pagination,omitempty"`
	Meta       map[string]interface{} `json:"meta,omitempty"`
}

// OK replies 200 with data.
func OK(c *gin.Context, data interface{}) {
	write(c, http.StatusOK, Envelope{Data: data})
}

// Created replies 201 with the new resource.
func Created(c *gin.Context, data interface{}) {
	write(c, http.StatusCreated, Envelope{Data: data})
}

// Page replies 200 with one page of a list.
func Page(c *gin.Context, data interface{}, pagination *models.Pagination) {
	write(c, http.StatusOK, Envelope{Data: data, Pagination: pagination})
}

// WithMeta replies 200 with data plus free-form metadata.
func WithMeta(c *gin.Context, data interface{}, meta map[string]interface{}) {
	write(c, http.StatusOK, Envelope{Data: data, Meta: meta})
}

// Error maps err onto its status and code. Details of server-side failures
// are attached to the gin context for the request logger, never the body.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	if appErr.Status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	write(c, appErr.Status, Envelope{Error: appErr})
}

// NoContent replies 204 and flushes the header, since no body write follows.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
	c.Writer.WriteHeaderNow()
}

// Attachment sends raw bytes as a download named filename.
func Attachment(c *gin.Context, filename, contentType string, data []byte) {
	noStore(c)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("X-Content-Type-Options", "nosniff")
	c.Data(http.StatusOK, contentType, data)
}

func write(c *gin.Context, status int, body Envelope) {
	noStore(c)
	c.JSON(status, body)
}

func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
}
