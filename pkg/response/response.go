package response

import (
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/uni-registration-api/internal/models"
	appErrors "github.com/noah-isme/uni-registration-api/pkg/errors"
)

var exposeDetail atomic.Bool

// SetExposeDetail toggles inclusion of wrapped error detail in error bodies.
// Production deployments keep it off.
func SetExposeDetail(v bool) {
	exposeDetail.Store(v)
}

// ErrorMessage points at the input that caused a failure.
type ErrorMessage struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Envelope represents the common response contract.
type Envelope struct {
	Success       bool                   `json:"success"`
	Message       string                 `json:"message,omitempty"`
	Data          interface{}            `json:"data,omitempty"`
	Error         *appErrors.Error       `json:"error,omitempty"`
	ErrorMessages []ErrorMessage         `json:"errorMessages,omitempty"`
	Detail        string                 `json:"detail,omitempty"`
	Pagination    *models.Pagination     `json:"pagination,omitempty"`
	Meta          map[string]interface{} `json:"meta,omitempty"`
}

// JSON sends a success response with optional pagination metadata.
func JSON(c *gin.Context, status int, data interface{}, pagination *models.Pagination, meta ...map[string]interface{}) {
	noStore(c)
	envelope := Envelope{Success: true, Data: data, Pagination: pagination}
	if len(meta) > 0 && meta[0] != nil {
		envelope.Meta = meta[0]
	}
	c.JSON(status, envelope)
}

// Message sends a success response carrying a human readable message.
func Message(c *gin.Context, status int, message string, data interface{}) {
	noStore(c)
	c.JSON(status, Envelope{Success: true, Message: message, Data: data})
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data, nil)
}

// Error sends an error response converting the error to the common structure.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	noStore(c)
	path := appErr.Path
	envelope := Envelope{
		Success:       false,
		Message:       appErr.Message,
		Error:         appErr,
		ErrorMessages: []ErrorMessage{{Path: path, Message: appErr.Message}},
	}
	if exposeDetail.Load() && appErr.Err != nil {
		envelope.Detail = appErr.Err.Error()
	}
	c.JSON(appErr.Status, envelope)
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
}
