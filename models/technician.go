package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Technician statuses
const (
	TechnicianActive   = "active"
	TechnicianInactive = "inactive"
)

// TechnicianStatuses lists every accepted technician status
var TechnicianStatuses = []string{TechnicianActive, TechnicianInactive}

// Technician represents a field worker that orders can be assigned to
type Technician struct {
	ID             string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name           string    `gorm:"not null" json:"name"`
	Email          *string   `json:"email"`
	Phone          *string   `json:"phone"`
	Specialization *string   `json:"specialization"`
	Status         string    `gorm:"not null;default:'active';index" json:"status"` // active or inactive
	CreatedAt      time.Time `json:"created_date"`
	UpdatedAt      time.Time `json:"updated_date"`
}

// TableName specifies the table name for the Technician model
func (Technician) TableName() string {
	return "technicians"
}

// BeforeCreate assigns the opaque record id
func (t *Technician) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// IsActive reports whether the technician appears in scheduling views
func (t Technician) IsActive() bool {
	return t.Status == TechnicianActive
}
