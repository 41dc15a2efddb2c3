package planning

import "github.com/kendall-kelly/warranty-dispatch-api/models"

// OrdersAssignedTo returns the orders whose assigned technicians include
// technicianID, in input order.
func OrdersAssignedTo(orders []models.Order, technicianID string) []models.Order {
	assigned := make([]models.Order, 0)
	if technicianID == "" {
		return assigned
	}
	for _, order := range orders {
		if IsAssigned(order, technicianID) {
			assigned = append(assigned, order)
		}
	}
	return assigned
}

// IsAssigned reports whether technicianID is among the order's technicians
func IsAssigned(order models.Order, technicianID string) bool {
	if technicianID == "" {
		return false
	}
	for _, id := range order.AssignedTechnicians {
		if id == technicianID {
			return true
		}
	}
	return false
}

// ToggleAssignment returns a copy of order with technicianID removed from its
// technicians if present, or appended otherwise. The result never contains
// duplicate ids. The input order, including its id slice, is left untouched.
// An order without id or an empty technicianID yields the input unchanged.
func ToggleAssignment(order models.Order, technicianID string) models.Order {
	if order.ID == "" || technicianID == "" {
		return order
	}

	current := UniqueIDs(order.AssignedTechnicians)
	next := make([]string, 0, len(current)+1)
	removed := false
	for _, id := range current {
		if id == technicianID {
			removed = true
			continue
		}
		next = append(next, id)
	}
	if !removed {
		next = append(next, technicianID)
	}

	order.AssignedTechnicians = next
	return order
}

// UniqueIDs drops empty and repeated ids, keeping the first occurrence order.
// It always returns a fresh slice.
func UniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// CountActiveAssignments counts the non-archived, non-completed orders
// assigned to technicianID.
func CountActiveAssignments(orders []models.Order, technicianID string) int {
	count := 0
	for _, order := range orders {
		if order.IsActive() && IsAssigned(order, technicianID) {
			count++
		}
	}
	return count
}
