package store

import (
	"gorm.io/gorm"

	"github.com/kendall-kelly/warranty-dispatch-api/models"
)

// OrderSchema whitelists the order fields
var OrderSchema = Schema{
	Columns: map[string]string{
		"id":                   "id",
		"order_number":         "order_number",
		"title":                "title",
		"description":          "description",
		"location":             "location",
		"start_date":           "start_date",
		"end_date":             "end_date",
		"status":               "status",
		"priority":             "priority",
		"archived":             "archived",
		"assigned_technicians": "assigned_technicians",
		"created_date":         "created_at",
		"updated_date":         "updated_at",
	},
	Sortable: []string{
		"order_number", "title", "location", "start_date", "end_date",
		"status", "priority", "created_date", "updated_date",
	},
	DefaultSort: "-created_date",
}

// TechnicianSchema whitelists the technician fields
var TechnicianSchema = Schema{
	Columns: map[string]string{
		"id":             "id",
		"name":           "name",
		"email":          "email",
		"phone":          "phone",
		"specialization": "specialization",
		"status":         "status",
		"created_date":   "created_at",
		"updated_date":   "updated_at",
	},
	Sortable:    []string{"name", "email", "specialization", "status", "created_date", "updated_date"},
	DefaultSort: "name",
}

// OrderStore persists orders
type OrderStore = GormStore[models.Order]

// TechnicianStore persists technicians
type TechnicianStore = GormStore[models.Technician]

// NewOrderStore creates the order store
func NewOrderStore(db *gorm.DB) *OrderStore {
	return New[models.Order](db, OrderSchema)
}

// NewTechnicianStore creates the technician store
func NewTechnicianStore(db *gorm.DB) *TechnicianStore {
	return New[models.Technician](db, TechnicianSchema)
}
