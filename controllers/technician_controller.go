package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kendall-kelly/warranty-dispatch-api/logger"
	"github.com/kendall-kelly/warranty-dispatch-api/middleware"
	"github.com/kendall-kelly/warranty-dispatch-api/models"
	"github.com/kendall-kelly/warranty-dispatch-api/planning"
	"github.com/kendall-kelly/warranty-dispatch-api/services"
	"github.com/kendall-kelly/warranty-dispatch-api/store"
)

// CreateTechnicianRequest represents the request body for creating a technician
type CreateTechnicianRequest struct {
	Name           string  `json:"name" binding:"required,max=120"`
	Email          *string `json:"email" binding:"omitempty,email"`
	Phone          *string `json:"phone" binding:"omitempty,max=40"`
	Specialization *string `json:"specialization" binding:"omitempty,max=120"`
	Status         string  `json:"status" binding:"omitempty,techstatus"`
}

// UpdateTechnicianRequest represents the request body for updating a technician
type UpdateTechnicianRequest struct {
	Name           *string `json:"name" binding:"omitempty,min=1,max=120"`
	Email          *string `json:"email" binding:"omitempty,email"`
	Phone          *string `json:"phone" binding:"omitempty,max=40"`
	Specialization *string `json:"specialization" binding:"omitempty,max=120"`
	Status         *string `json:"status" binding:"omitempty,techstatus"`
}

// TechnicianWithWorkload is a technician plus the number of open orders assigned to it
type TechnicianWithWorkload struct {
	models.Technician
	ActiveOrders int `json:"active_orders"`
}

// ListTechnicians handles GET /api/v1/technicians?q=
func ListTechnicians(c *gin.Context) {
	dispatch := services.GetDispatchService()
	ctx := c.Request.Context()

	technicians, err := dispatch.Technicians(ctx)
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve technicians")
		return
	}
	orders, err := dispatch.ActiveOrders(ctx, "")
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve orders")
		return
	}

	matched := planning.FilterTechnicians(technicians, strings.TrimSpace(c.Query("q")))
	result := make([]TechnicianWithWorkload, 0, len(matched))
	for _, technician := range matched {
		result = append(result, TechnicianWithWorkload{
			Technician:   technician,
			ActiveOrders: planning.CountActiveAssignments(orders, technician.ID),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
		"total":   len(result),
	})
}

// CreateTechnician handles POST /api/v1/technicians
func CreateTechnician(c *gin.Context) {
	var req CreateTechnicianRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	technician := models.Technician{
		Name:           strings.TrimSpace(req.Name),
		Email:          optionalText(req.Email),
		Phone:          optionalText(req.Phone),
		Specialization: optionalText(req.Specialization),
		Status:         req.Status,
	}
	if technician.Status == "" {
		technician.Status = models.TechnicianActive
	}

	if err := services.GetDispatchService().CreateTechnician(c.Request.Context(), &technician); err != nil {
		respondServiceError(c, err, "Failed to create technician")
		return
	}

	logger.L().Info("technician created",
		zap.String("technician_id", technician.ID),
		zap.String("actor", middleware.Actor(c)))

	respondData(c, http.StatusCreated, technician)
}

// GetTechnician handles GET /api/v1/technicians/:id
func GetTechnician(c *gin.Context) {
	technician, err := services.GetDispatchService().Technician(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve technician")
		return
	}

	respondData(c, http.StatusOK, technician)
}

// UpdateTechnician handles PUT /api/v1/technicians/:id
func UpdateTechnician(c *gin.Context) {
	var req UpdateTechnicianRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	fields := store.Fields{}
	if req.Name != nil {
		fields["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		fields["email"] = optionalText(req.Email)
	}
	if req.Phone != nil {
		fields["phone"] = optionalText(req.Phone)
	}
	if req.Specialization != nil {
		fields["specialization"] = optionalText(req.Specialization)
	}
	if req.Status != nil {
		fields["status"] = *req.Status
	}

	technician, err := services.GetDispatchService().UpdateTechnician(c.Request.Context(), c.Param("id"), fields)
	if err != nil {
		respondServiceError(c, err, "Failed to update technician")
		return
	}

	logger.L().Info("technician updated",
		zap.String("technician_id", technician.ID),
		zap.String("actor", middleware.Actor(c)))

	respondData(c, http.StatusOK, technician)
}

// DeleteTechnician handles DELETE /api/v1/technicians/:id
// Orders still referencing the technician are left as they are.
func DeleteTechnician(c *gin.Context) {
	id := c.Param("id")
	if err := services.GetDispatchService().DeleteTechnician(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "Failed to delete technician")
		return
	}

	logger.L().Info("technician deleted", zap.String("technician_id", id), zap.String("actor", middleware.Actor(c)))

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Technician deleted",
	})
}

// GetTechnicianOrders handles GET /api/v1/technicians/:id/orders
func GetTechnicianOrders(c *gin.Context) {
	orders, err := services.GetDispatchService().TechnicianOrders(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve technician orders")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orders,
		"total":   len(orders),
	})
}
