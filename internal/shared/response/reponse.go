package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const internalErrorMessage = "Internal server error"

// Message is the body of every API error: {"message": "..."}
type Message struct {
	Message string `json:"message"`
}

// InvalidAPIUsage is an API error with its own status code.
type InvalidAPIUsage struct {
	Message    string
	StatusCode int
}

// NewInvalidAPIUsage creates an API error; status 0 means 400.
func NewInvalidAPIUsage(message string, statusCode int) *InvalidAPIUsage {
	if statusCode == 0 {
		statusCode = http.StatusBadRequest
	}
	return &InvalidAPIUsage{Message: message, StatusCode: statusCode}
}

func (e *InvalidAPIUsage) Error() string {
	return e.Message
}

// ErrorMapper translates a domain error into a status and a public message.
type ErrorMapper func(err error) (status int, message string)

// Success responses
func JSON(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error responses
func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.AbortWithStatusJSON(statusCode, Message{Message: message})
}

// Error writes err as {"message"} with the status chosen by mapErr.
// A 500, or a nil mapper, is logged and hidden behind a generic message.
func Error(c *gin.Context, err error, mapErr ErrorMapper) {
	var apiErr *InvalidAPIUsage
	if errors.As(err, &apiErr) {
		ErrorResponse(c, apiErr.StatusCode, apiErr.Message)
		return
	}

	status, message := http.StatusInternalServerError, internalErrorMessage
	if mapErr != nil {
		status, message = mapErr(err)
	}
	if status == http.StatusInternalServerError {
		log.Error().
			Err(err).
			Str("request_id", c.GetString("request_id")).
			Str("path", c.Request.URL.Path).
			Msg("Unhandled API error")
		ErrorResponse(c, status, internalErrorMessage)
		return
	}

	ErrorResponse(c, status, message)
}

// Common error responses
func BadRequest(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusBadRequest, message)
}

func NotFound(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusNotFound, message)
}

func InternalServerError(c *gin.Context) {
	ErrorResponse(c, http.StatusInternalServerError, internalErrorMessage)
}
