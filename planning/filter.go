package planning

import (
	"strings"

	"github.com/kendall-kelly/warranty-dispatch-api/models"
)

// FilterAll disables a categorical filter
const FilterAll = "all"

// MatchesOrder combines a free-text search over title, location and order
// number with equality filters on status and priority.
func MatchesOrder(order models.Order, searchTerm, statusFilter, priorityFilter string) bool {
	return matchesText(searchTerm, &order.Title, order.Location, &order.OrderNumber) &&
		matchesCategory(statusFilter, order.Status) &&
		matchesCategory(priorityFilter, order.Priority)
}

// MatchesTechnician searches name, email and specialization
func MatchesTechnician(technician models.Technician, searchTerm string) bool {
	return matchesText(searchTerm, &technician.Name, technician.Email, technician.Specialization)
}

// FilterOrders keeps the orders accepted by MatchesOrder, in input order
func FilterOrders(orders []models.Order, searchTerm, statusFilter, priorityFilter string) []models.Order {
	matched := make([]models.Order, 0, len(orders))
	for _, order := range orders {
		if MatchesOrder(order, searchTerm, statusFilter, priorityFilter) {
			matched = append(matched, order)
		}
	}
	return matched
}

// FilterTechnicians keeps the technicians accepted by MatchesTechnician
func FilterTechnicians(technicians []models.Technician, searchTerm string) []models.Technician {
	matched := make([]models.Technician, 0, len(technicians))
	for _, technician := range technicians {
		if MatchesTechnician(technician, searchTerm) {
			matched = append(matched, technician)
		}
	}
	return matched
}

// ActiveTechnicians keeps the technicians with status active
func ActiveTechnicians(technicians []models.Technician) []models.Technician {
	active := make([]models.Technician, 0, len(technicians))
	for _, technician := range technicians {
		if technician.IsActive() {
			active = append(active, technician)
		}
	}
	return active
}

// matchesText is true for an empty term, or when any present field contains
// the term case-insensitively. Nil fields never match.
func matchesText(searchTerm string, fields ...*string) bool {
	if searchTerm == "" {
		return true
	}
	needle := strings.ToLower(searchTerm)
	for _, field := range fields {
		if field != nil && strings.Contains(strings.ToLower(*field), needle) {
			return true
		}
	}
	return false
}

func matchesCategory(filter, value string) bool {
	return filter == FilterAll || filter == value
}
