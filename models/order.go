package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Order statuses
const (
	OrderStatusOpen       = "offen"
	OrderStatusInProgress = "in_bearbeitung"
	OrderStatusCompleted  = "abgeschlossen"
)

// Order priorities
const (
	PriorityLow    = "niedrig"
	PriorityNormal = "normal"
	PriorityHigh   = "hoch"
	PriorityUrgent = "dringend"
)

// OrderStatuses lists every accepted order status
var OrderStatuses = []string{OrderStatusOpen, OrderStatusInProgress, OrderStatusCompleted}

// OrderPriorities lists every accepted order priority
var OrderPriorities = []string{PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent}

// Order represents a warranty service job
type Order struct {
	ID                  string                      `gorm:"primaryKey;type:varchar(36)" json:"id"`
	OrderNumber         string                      `gorm:"uniqueIndex;not null" json:"order_number"`
	Title               string                      `gorm:"not null" json:"title"`
	Description         *string                     `gorm:"type:text" json:"description"`
	Location            *string                     `json:"location"`
	StartDate           *string                     `gorm:"type:varchar(32)" json:"start_date"` // ISO-8601 calendar date
	EndDate             *string                     `gorm:"type:varchar(32)" json:"end_date"`
	Status              string                      `gorm:"not null;default:'offen';index" json:"status"`
	Priority            string                      `gorm:"not null;default:'normal'" json:"priority"`
	Archived            bool                        `gorm:"not null;default:false;index" json:"archived"`
	AssignedTechnicians datatypes.JSONSlice[string] `json:"assigned_technicians"` // technician ids
	CreatedAt           time.Time                   `json:"created_date"`
	UpdatedAt           time.Time                   `json:"updated_date"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// BeforeCreate assigns the opaque record id
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

// TechnicianIDs returns the assigned technician ids as a plain slice
func (o Order) TechnicianIDs() []string {
	return []string(o.AssignedTechnicians)
}

// IsCompleted reports whether the order is finished
func (o Order) IsCompleted() bool {
	return o.Status == OrderStatusCompleted
}

// IsActive reports whether the order still belongs in scheduling views
func (o Order) IsActive() bool {
	return !o.Archived && !o.IsCompleted()
}
