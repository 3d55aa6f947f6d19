package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the envelope used for every error body
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorData  `json:"error,omitempty"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func Success(data interface{}) Response {
	return Response{Success: true, Data: data}
}

func Error(code, message string) Response {
	return Response{
		Success: false,
		Error: &ErrorData{
			Code:    code,
			Message: message,
		},
	}
}

// InternalError never carries the underlying error to the client
func InternalError() Response {
	return Error("INTERNAL_ERROR", "Internal Server Error")
}

func BadRequest(message string) Response {
	return Error("BAD_REQUEST", message)
}

func NotFound(message string) Response {
	return Error("NOT_FOUND", message)
}

func Unauthorized(message string) Response {
	return Error("UNAUTHORIZED", message)
}

func Forbidden(message string) Response {
	return Error("FORBIDDEN", message)
}

func Conflict(code, message string) Response {
	return Error(code, message)
}

// Abort writes an error envelope and stops the handler chain
func Abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, Error(code, message))
}

// AbortInternal records err on the gin context and answers with a bare 500
func AbortInternal(c *gin.Context, err error) {
	if err != nil {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, InternalError())
}
