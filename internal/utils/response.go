package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Generic messages returned to callers; internal error text is only logged.
const (
	MsgInvalidInputs    = "Invalid inputs"
	MsgGenerationFailed = "Failed to generate rationale"
	MsgHistoryFailed    = "Failed to load history"
	MsgUnauthorized     = "Unauthorized"
)

// ErrorResponse is the error body for every endpoint.
type ErrorResponse struct {
	Error   string       `json:"error"`
	Details []FieldError `json:"details,omitempty"`
}

// ExplanationResponse is the success body of POST /api/kdigo-rationale.
type ExplanationResponse struct {
	Explanation string `json:"explanation"`
}

// DataResponse wraps list payloads, e.g. GET /api/history.
type DataResponse struct {
	Data interface{} `json:"data"`
}

// Success sends a 200 response with the given body.
func Success(c *gin.Context, body interface{}) {
	c.JSON(http.StatusOK, body)
}

// Error sends an error response without field detail.
func Error(c *gin.Context, statusCode int, errorMessage string) {
	c.JSON(statusCode, ErrorResponse{Error: errorMessage})
}

// ValidationFailed sends a 400 response listing every offending field.
func ValidationFailed(c *gin.Context, err *ValidationError) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   MsgInvalidInputs,
		Details: err.Details,
	})
}

// Unauthorized sends a 401 Unauthorized error response.
func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, MsgUnauthorized)
}

// InternalServerError sends a 500 Internal Server Error response.
func InternalServerError(c *gin.Context, errorMessage string) {
	Error(c, http.StatusInternalServerError, errorMessage)
}
