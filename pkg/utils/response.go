package utils

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/teamflow/crm-api/internal/apperrors"
)

// APIResponse represents a standard API response structure
type APIResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Error     interface{} `json:"error,omitempty"`
	Meta      interface{} `json:"meta,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// ErrorDetail carries the machine-readable error code and message
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PaginationMeta represents pagination metadata
type PaginationMeta struct {
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	Total       int  `json:"total"`
	TotalPages  int  `json:"total_pages"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
}

// Success sends a successful JSON response
func Success(c *gin.Context, statusCode int, message string, data interface{}) {
	response := APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	c.JSON(statusCode, response)
}

// SuccessWithMeta sends a successful JSON response with metadata
func SuccessWithMeta(c *gin.Context, statusCode int, message string, data interface{}, meta interface{}) {
	response := APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Meta:      meta,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	c.JSON(statusCode, response)
}

// SendError maps an application error to the response envelope. Errors
// outside the taxonomy resolve to INTERNAL_ERROR; internal details never
// leak to the caller.
func SendError(c *gin.Context, err error) {
	appErr := apperrors.From(err)
	SendErrorCode(c, appErr.Status, appErr.Code, appErr.Message)
}

// SendErrorCode sends an error response with an explicit code and message
func SendErrorCode(c *gin.Context, statusCode int, code, message string) {
	response := APIResponse{
		Success: false,
		Message: message,
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	c.JSON(statusCode, response)
}

// AbortWithError sends an error response and aborts the middleware chain
func AbortWithError(c *gin.Context, err error) {
	SendError(c, err)
	c.Abort()
}

// ValidationFailed sends a 400 response with the VALIDATION_ERROR code
func ValidationFailed(c *gin.Context, message string) {
	SendErrorCode(c, http.StatusBadRequest, apperrors.ErrValidation.Code, message)
}

// Created sends a 201 created response
func Created(c *gin.Context, message string, data interface{}) {
	Success(c, http.StatusCreated, message, data)
}

// NoContent sends a 204 no content response
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// OK sends a 200 OK response with data
func OK(c *gin.Context, data interface{}) {
	Success(c, http.StatusOK, "Success", data)
}

// OKWithMessage sends a 200 OK response with custom message
func OKWithMessage(c *gin.Context, message string, data interface{}) {
	Success(c, http.StatusOK, message, data)
}

// Paginated sends a paginated response
func Paginated(c *gin.Context, data interface{}, page, limit, total int) {
	totalPages := (total + limit - 1) / limit

	meta := PaginationMeta{
		Page:        page,
		Limit:       limit,
		Total:       total,
		TotalPages:  totalPages,
		HasNext:     page < totalPages,
		HasPrevious: page > 1,
	}

	SuccessWithMeta(c, http.StatusOK, "Success", data, meta)
}

// HealthCheck sends a health check response
func HealthCheck(c *gin.Context, status string, services map[string]interface{}) {
	response := map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"services":  services,
	}

	statusCode := http.StatusOK
	if status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, response)
}

// SetSecurityHeaders sets common security headers
func SetSecurityHeaders(c *gin.Context) {
	c.Header("X-Content-Type-Options", "nosniff")
	c.Header("X-Frame-Options", "DENY")
	c.Header("X-XSS-Protection", "1; mode=block")
	c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
}

// JSONResponse sends a raw JSON response
func JSONResponse(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}
