package controllers

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the order, technician and planning endpoints on rg
func RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/orders")
	{
		orders.GET("", ListOrders)
		orders.POST("", CreateOrder)
		orders.GET("/archive", ListArchivedOrders)
		orders.GET("/export", ExportOrders)
		orders.DELETE("/export/:filename", DeleteExport)
		orders.GET("/:id", GetOrder)
		orders.PUT("/:id", UpdateOrder)
		orders.DELETE("/:id", DeleteOrder)
		orders.POST("/:id/complete", CompleteOrder)
		orders.POST("/:id/technicians/:technicianId/toggle", ToggleOrderTechnician)
	}

	technicians := rg.Group("/technicians")
	{
		technicians.GET("", ListTechnicians)
		technicians.POST("", CreateTechnician)
		technicians.GET("/:id", GetTechnician)
		technicians.PUT("/:id", UpdateTechnician)
		technicians.DELETE("/:id", DeleteTechnician)
		technicians.GET("/:id/orders", GetTechnicianOrders)
	}

	rg.GET("/planning/week", GetWeekSchedule)
	rg.GET("/dashboard", GetDashboard)
}
