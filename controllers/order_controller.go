package controllers

import (
	"bytes"
	"errors"
	"fmt"
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
	"github.com/kendall-kelly/warranty-dispatch-api/utils"
)

// CreateOrderRequest represents the request body for creating an order
type CreateOrderRequest struct {
	Title               string   `json:"title" binding:"required,max=200"`
	Description         *string  `json:"description"`
	Location            *string  `json:"location" binding:"omitempty,max=200"`
	StartDate           *string  `json:"start_date" binding:"omitempty,isodate"`
	EndDate             *string  `json:"end_date" binding:"omitempty,isodate,notbefore=StartDate"`
	Status              string   `json:"status" binding:"omitempty,orderstatus"`
	Priority            string   `json:"priority" binding:"omitempty,orderpriority"`
	AssignedTechnicians []string `json:"assigned_technicians"`
}

// UpdateOrderRequest represents the request body for updating an order.
// Omitted fields are left unchanged; an empty string clears an optional text.
type UpdateOrderRequest struct {
	Title               *string   `json:"title" binding:"omitempty,min=1,max=200"`
	Description         *string   `json:"description"`
	Location            *string   `json:"location" binding:"omitempty,max=200"`
	StartDate           *string   `json:"start_date" binding:"omitempty,isodate"`
	EndDate             *string   `json:"end_date" binding:"omitempty,isodate,notbefore=StartDate"`
	Status              *string   `json:"status" binding:"omitempty,orderstatus"`
	Priority            *string   `json:"priority" binding:"omitempty,orderpriority"`
	Archived            *bool     `json:"archived"`
	AssignedTechnicians *[]string `json:"assigned_technicians"`
}

type orderQuery struct {
	search   string
	status   string
	priority string
}

func parseOrderQuery(c *gin.Context) (orderQuery, bool) {
	status, okStatus := categoryFilter(c.Query("status"), models.OrderStatuses)
	priority, okPriority := categoryFilter(c.Query("priority"), models.OrderPriorities)
	if !okStatus || !okPriority {
		respondError(c, http.StatusBadRequest, CodeInvalidQuery, "Unknown status or priority filter")
		return orderQuery{}, false
	}
	return orderQuery{
		search:   strings.TrimSpace(c.Query("q")),
		status:   status,
		priority: priority,
	}, true
}

// ListOrders handles GET /api/v1/orders - lists active orders
// Query parameters: q (search), status, priority, sort (e.g. -created_date)
func ListOrders(c *gin.Context) {
	query, ok := parseOrderQuery(c)
	if !ok {
		return
	}

	orders, err := services.GetDispatchService().ActiveOrders(c.Request.Context(), c.Query("sort"))
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve orders")
		return
	}

	filtered := planning.FilterOrders(orders, query.search, query.status, query.priority)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    filtered,
		"total":   len(filtered),
	})
}

// ListArchivedOrders handles GET /api/v1/orders/archive
func ListArchivedOrders(c *gin.Context) {
	orders, err := services.GetDispatchService().ArchivedOrders(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve archived orders")
		return
	}

	filtered := planning.FilterOrders(orders, strings.TrimSpace(c.Query("q")), planning.FilterAll, planning.FilterAll)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    filtered,
		"total":   len(filtered),
	})
}

// ExportOrders handles GET /api/v1/orders/export - CSV of the filtered orders.
// With store=true the file is archived to S3 and a download link is returned.
func ExportOrders(c *gin.Context) {
	query, ok := parseOrderQuery(c)
	if !ok {
		return
	}

	dispatch := services.GetDispatchService()
	ctx := c.Request.Context()

	var orders []models.Order
	var err error
	if c.Query("archived") == "true" {
		orders, err = dispatch.ArchivedOrders(ctx)
	} else {
		orders, err = dispatch.ActiveOrders(ctx, "")
	}
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve orders")
		return
	}

	visible := planning.FilterOrders(orders, query.search, query.status, query.priority)

	var buf bytes.Buffer
	if err := planning.WriteCSV(&buf, visible); err != nil {
		respondServiceError(c, err, "Failed to render export")
		return
	}
	filename := planning.ExportFilename(dispatch.Now())

	if c.Query("store") != "true" {
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		c.Data(http.StatusOK, services.ExportContentType, buf.Bytes())
		return
	}

	exports := services.GetExportService()
	if exports == nil {
		respondError(c, http.StatusServiceUnavailable, CodeStorage, "Export storage is not configured")
		return
	}

	key, err := exports.StoreExport(ctx, filename, buf.Bytes())
	if err != nil {
		if respondExportFileError(c, err) {
			return
		}
		logger.L().Error("failed to store export", zap.String("filename", filename), zap.Error(err))
		respondError(c, http.StatusBadGateway, CodeStorage, "Failed to store export", err.Error())
		return
	}
	url, err := exports.GetExportURL(ctx, key)
	if err != nil {
		logger.L().Error("failed to link export", zap.String("key", key), zap.Error(err))
		respondError(c, http.StatusBadGateway, CodeStorage, "Failed to generate export URL")
		return
	}

	logger.L().Info("export stored",
		zap.String("key", key),
		zap.Int("orders", len(visible)),
		zap.String("actor", middleware.Actor(c)))

	respondData(c, http.StatusCreated, gin.H{
		"filename": filename,
		"key":      key,
		"url":      url,
		"count":    len(visible),
	})
}

// DeleteExport handles DELETE /api/v1/orders/export/:filename - removes an
// archived export from storage
func DeleteExport(c *gin.Context) {
	exports := services.GetExportService()
	if exports == nil {
		respondError(c, http.StatusServiceUnavailable, CodeStorage, "Export storage is not configured")
		return
	}

	filename := c.Param("filename")
	if err := utils.ValidateExportFile(filename, 0); err != nil {
		respondExportFileError(c, err)
		return
	}

	key := utils.ExportKey(filename)
	if err := exports.DeleteExport(c.Request.Context(), key); err != nil {
		logger.L().Error("failed to delete export", zap.String("key", key), zap.Error(err))
		respondError(c, http.StatusBadGateway, CodeStorage, "Failed to delete export", err.Error())
		return
	}

	logger.L().Info("export deleted", zap.String("key", key), zap.String("actor", middleware.Actor(c)))

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Export deleted",
	})
}

// respondExportFileError answers export validation failures with their own
// code and reports whether err was one
func respondExportFileError(c *gin.Context, err error) bool {
	var fileErr *utils.ExportFileError
	if !errors.As(err, &fileErr) {
		return false
	}
	status := http.StatusBadRequest
	if fileErr.Code == utils.CodeExportTooLarge {
		status = http.StatusRequestEntityTooLarge
	}
	respondError(c, status, fileErr.Code, fileErr.Message)
	return true
}

// CreateOrder handles POST /api/v1/orders
func CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	order := models.Order{
		Title:               strings.TrimSpace(req.Title),
		Description:         optionalText(req.Description),
		Location:            optionalText(req.Location),
		StartDate:           normalizeDate(req.StartDate),
		EndDate:             normalizeDate(req.EndDate),
		Status:              req.Status,
		Priority:            req.Priority,
		AssignedTechnicians: req.AssignedTechnicians,
	}
	if order.Status == "" {
		order.Status = models.OrderStatusOpen
	}
	if order.Priority == "" {
		order.Priority = models.PriorityNormal
	}

	if err := services.GetDispatchService().CreateOrder(c.Request.Context(), &order); err != nil {
		respondServiceError(c, err, "Failed to create order")
		return
	}

	logger.L().Info("order created",
		zap.String("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
		zap.String("actor", middleware.Actor(c)))

	respondData(c, http.StatusCreated, order)
}

// GetOrder handles GET /api/v1/orders/:id
func GetOrder(c *gin.Context) {
	order, err := services.GetDispatchService().Order(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve order")
		return
	}

	respondData(c, http.StatusOK, order)
}

// UpdateOrder handles PUT /api/v1/orders/:id
func UpdateOrder(c *gin.Context) {
	var req UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	dispatch := services.GetDispatchService()
	ctx := c.Request.Context()
	id := c.Param("id")

	fields := store.Fields{}
	if req.Title != nil {
		fields["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		fields["description"] = optionalText(req.Description)
	}
	if req.Location != nil {
		fields["location"] = optionalText(req.Location)
	}
	if req.StartDate != nil {
		fields["start_date"] = normalizeDate(req.StartDate)
	}
	if req.EndDate != nil {
		fields["end_date"] = normalizeDate(req.EndDate)
	}
	if req.Status != nil {
		fields["status"] = *req.Status
	}
	if req.Priority != nil {
		fields["priority"] = *req.Priority
	}
	if req.Archived != nil {
		fields["archived"] = *req.Archived
	}
	if req.AssignedTechnicians != nil {
		fields["assigned_technicians"] = *req.AssignedTechnicians
	}

	// A single bound may move past the stored other bound
	if (req.StartDate != nil) != (req.EndDate != nil) {
		current, err := dispatch.Order(ctx, id)
		if err != nil {
			respondServiceError(c, err, "Failed to retrieve order")
			return
		}
		start, end := current.StartDate, current.EndDate
		if req.StartDate != nil {
			start = normalizeDate(req.StartDate)
		}
		if req.EndDate != nil {
			end = normalizeDate(req.EndDate)
		}
		if invertedRange(start, end) {
			respondError(c, http.StatusBadRequest, CodeValidation, "Invalid request data", "end_date must not be before start_date")
			return
		}
	}

	order, err := dispatch.UpdateOrder(ctx, id, fields)
	if err != nil {
		respondServiceError(c, err, "Failed to update order")
		return
	}

	logger.L().Info("order updated",
		zap.String("order_id", order.ID),
		zap.Int("fields", len(fields)),
		zap.String("actor", middleware.Actor(c)))

	respondData(c, http.StatusOK, order)
}

// DeleteOrder handles DELETE /api/v1/orders/:id - removes the order permanently
func DeleteOrder(c *gin.Context) {
	id := c.Param("id")
	if err := services.GetDispatchService().DeleteOrder(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "Failed to delete order")
		return
	}

	logger.L().Info("order deleted", zap.String("order_id", id), zap.String("actor", middleware.Actor(c)))

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Order deleted",
	})
}

// CompleteOrder handles POST /api/v1/orders/:id/complete - sets the status to
// completed and moves the order to the archive
func CompleteOrder(c *gin.Context) {
	order, err := services.GetDispatchService().CompleteOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "Failed to complete order")
		return
	}

	logger.L().Info("order completed", zap.String("order_id", order.ID), zap.String("actor", middleware.Actor(c)))

	respondData(c, http.StatusOK, order)
}

// ToggleOrderTechnician handles POST /api/v1/orders/:id/technicians/:technicianId/toggle
func ToggleOrderTechnician(c *gin.Context) {
	orderID, technicianID := c.Param("id"), c.Param("technicianId")

	order, err := services.GetDispatchService().ToggleAssignment(c.Request.Context(), orderID, technicianID)
	if err != nil {
		respondServiceError(c, err, "Failed to update assignment")
		return
	}

	logger.L().Info("assignment toggled",
		zap.String("order_id", orderID),
		zap.String("technician_id", technicianID),
		zap.Bool("assigned", planning.IsAssigned(*order, technicianID)),
		zap.String("actor", middleware.Actor(c)))

	respondData(c, http.StatusOK, order)
}

// optionalText trims value and maps blank input to nil
func optionalText(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// normalizeDate stores dates as YYYY-MM-DD; blank input clears the date
func normalizeDate(value *string) *string {
	text := optionalText(value)
	if text == nil {
		return nil
	}
	parsed, ok := planning.ParseDate(*text)
	if !ok {
		return text
	}
	formatted := parsed.Format(planning.DateLayout)
	return &formatted
}

func invertedRange(start, end *string) bool {
	if start == nil || end == nil {
		return false
	}
	s, okStart := planning.ParseDate(*start)
	e, okEnd := planning.ParseDate(*end)
	return okStart && okEnd && e.Before(s)
}
