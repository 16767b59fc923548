package utils

import (
	"net/http"

	"github.com/ecochain/token-catalog/internal/apperr"

	"github.com/gin-gonic/gin"
)

// Envelope is the body of every API response
type Envelope struct {
	Success    bool              `json:"success"`
	Message    string            `json:"message,omitempty"`
	Data       interface{}       `json:"data,omitempty"`
	Errors     map[string]string `json:"errors,omitempty"`
	Count      *int              `json:"count,omitempty"`
	Page       *int              `json:"page,omitempty"`
	TotalPages *int              `json:"totalPages,omitempty"`
}

// SendSuccess sends a successful envelope carrying data
func SendSuccess(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, Envelope{Success: true, Data: data})
}

// SendMessage sends a successful envelope carrying only a message
func SendMessage(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Envelope{Success: true, Message: message})
}

// SendErrorResponse sends a failed envelope
func SendErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Envelope{Success: false, Message: message})
}

// SendError maps a classified error onto its status code and envelope.
// Unclassified errors become a generic 500.
func SendError(c *gin.Context, err error) {
	status := StatusFor(err)
	message := apperr.MessageOf(err)
	if status == http.StatusInternalServerError {
		message = "Internal server error"
	}
	c.JSON(status, Envelope{
		Success: false,
		Message: message,
		Errors:  apperr.FieldsOf(err),
	})
}

// StatusFor returns the HTTP status of an error kind
func StatusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindTransport:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
