package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kendall-kelly/warranty-dispatch-api/config"
	"github.com/kendall-kelly/warranty-dispatch-api/planning"
	"github.com/kendall-kelly/warranty-dispatch-api/services"
)

// GetWeekSchedule handles GET /api/v1/planning/week?date=YYYY-MM-DD
// Without date the current week is returned.
func GetWeekSchedule(c *gin.Context) {
	dispatch := services.GetDispatchService()

	anchor := dispatch.Now()
	if value := c.Query("date"); value != "" {
		parsed, ok := planning.ParseDate(value)
		if !ok {
			respondError(c, http.StatusBadRequest, CodeInvalidQuery, "date must be an ISO-8601 date")
			return
		}
		anchor = parsed
	}

	schedule, err := dispatch.WeekSchedule(c.Request.Context(), anchor, weekStartDay())
	if err != nil {
		respondServiceError(c, err, "Failed to build week schedule")
		return
	}

	respondData(c, http.StatusOK, schedule)
}

// GetDashboard handles GET /api/v1/dashboard
func GetDashboard(c *gin.Context) {
	summary, err := services.GetDispatchService().Dashboard(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "Failed to build dashboard")
		return
	}

	respondData(c, http.StatusOK, summary)
}

func weekStartDay() time.Weekday {
	if cfg := config.GetConfig(); cfg != nil {
		return cfg.WeekStartDay
	}
	return time.Monday
}
