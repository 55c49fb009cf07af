package response

import (
	"errors"
	"net/http"

	"paygate/pkg/apperror"

	"github.com/gin-gonic/gin"
)

// ErrorBody is the standard error envelope.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries the machine-readable code and human description.
type ErrorDetail struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// ListBody is the standard paginated list envelope.
type ListBody struct {
	Data   interface{} `json:"data"`
	Total  int64       `json:"total"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}

// OK sends a 200 response with data.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created sends a 201 response with data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// CreatedRaw sends a 201 response with a pre-serialized JSON body.
// Used by the idempotent payment path so replays are byte-identical.
func CreatedRaw(c *gin.Context, body []byte) {
	c.Data(http.StatusCreated, "application/json; charset=utf-8", body)
}

// List sends a 200 response with the paginated list envelope.
func List(c *gin.Context, data interface{}, total int64, limit, offset int) {
	c.JSON(http.StatusOK, ListBody{Data: data, Total: total, Limit: limit, Offset: offset})
}

// Error sends an error response. It checks if err is an *apperror.AppError
// and maps it accordingly, otherwise returns 500.
func Error(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.HTTPStatus, ErrorBody{Error: ErrorDetail{
			Code:        appErr.Code,
			Description: appErr.Description,
		}})
		return
	}

	// Unknown error -> 500
	c.JSON(http.StatusInternalServerError, ErrorBody{Error: ErrorDetail{
		Code:        apperror.CodeInternal,
		Description: "Internal server error",
	}})
}
