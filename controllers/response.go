package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kendall-kelly/warranty-dispatch-api/logger"
	"github.com/kendall-kelly/warranty-dispatch-api/planning"
	"github.com/kendall-kelly/warranty-dispatch-api/services"
	"github.com/kendall-kelly/warranty-dispatch-api/store"
)

// Error codes used in the error envelope
const (
	CodeValidation        = "VALIDATION_ERROR"
	CodeOrderNotFound     = "ORDER_NOT_FOUND"
	CodeTechnicianMissing = "TECHNICIAN_NOT_FOUND"
	CodeInvalidQuery      = "INVALID_QUERY"
	CodeDatabase          = "DATABASE_ERROR"
	CodeStorage           = "STORAGE_ERROR"
)

func respondError(c *gin.Context, status int, code, message string, details ...string) {
	body := gin.H{
		"code":    code,
		"message": message,
	}
	if len(details) > 0 {
		body["details"] = details[0]
	}
	c.JSON(status, gin.H{
		"success": false,
		"error":   body,
	})
}

func respondData(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

func respondValidation(c *gin.Context, err error) {
	respondError(c, http.StatusBadRequest, CodeValidation, "Invalid request data", err.Error())
}

// respondServiceError maps dispatch service errors onto the envelope
func respondServiceError(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, services.ErrOrderNotFound):
		respondError(c, http.StatusNotFound, CodeOrderNotFound, "Order not found")
	case errors.Is(err, services.ErrTechnicianNotFound):
		respondError(c, http.StatusNotFound, CodeTechnicianMissing, "Technician not found")
	case errors.Is(err, store.ErrInvalidSort), errors.Is(err, store.ErrInvalidFilter):
		respondError(c, http.StatusBadRequest, CodeInvalidQuery, "Invalid query parameters", err.Error())
	case errors.Is(err, store.ErrDuplicate):
		respondError(c, http.StatusConflict, CodeDatabase, "Record already exists")
	default:
		logger.L().Error(message,
			zap.String("path", c.FullPath()),
			zap.Error(err))
		respondError(c, http.StatusInternalServerError, CodeDatabase, message)
	}
}

// categoryFilter turns an empty query parameter into the match-all filter and
// rejects values outside allowed
func categoryFilter(value string, allowed []string) (string, bool) {
	if value == "" || value == planning.FilterAll {
		return planning.FilterAll, true
	}
	for _, a := range allowed {
		if value == a {
			return value, true
		}
	}
	return "", false
}
