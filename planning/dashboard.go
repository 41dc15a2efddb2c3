package planning

import (
	"time"

	"github.com/kendall-kelly/warranty-dispatch-api/models"
)

// RecentOrdersLimit caps the recent orders list on the dashboard
const RecentOrdersLimit = 5

// TechnicianLoad is the workload of one active technician
type TechnicianLoad struct {
	Technician   models.Technician `json:"technician"`
	ActiveOrders int               `json:"active_orders"`
	BusyToday    bool              `json:"busy_today"`
}

// Summary holds the dashboard counters
type Summary struct {
	OpenOrders        int              `json:"open_orders"`
	CompletedOrders   int              `json:"completed_orders"`
	UrgentOrders      int              `json:"urgent_orders"`
	ActiveTechnicians int              `json:"active_technicians"`
	RecentOrders      []models.Order   `json:"recent_orders"`
	Availability      []TechnicianLoad `json:"technician_availability"`
}

// Summarize computes the dashboard over a snapshot. orders is expected newest
// first; archived orders only count towards the completed total.
func Summarize(orders []models.Order, technicians []models.Technician, clock time.Time) Summary {
	summary := Summary{
		RecentOrders: make([]models.Order, 0, RecentOrdersLimit),
		Availability: make([]TechnicianLoad, 0),
	}

	for _, order := range orders {
		if order.IsCompleted() {
			summary.CompletedOrders++
		}
		if !order.IsActive() {
			continue
		}
		summary.OpenOrders++
		if order.Priority == models.PriorityUrgent {
			summary.UrgentOrders++
		}
		if len(summary.RecentOrders) < RecentOrdersLimit {
			summary.RecentOrders = append(summary.RecentOrders, order)
		}
	}

	for _, technician := range ActiveTechnicians(technicians) {
		summary.ActiveTechnicians++
		summary.Availability = append(summary.Availability, TechnicianLoad{
			Technician:   technician,
			ActiveOrders: CountActiveAssignments(orders, technician.ID),
			BusyToday:    len(OrdersOnDay(orders, technician.ID, clock)) > 0,
		})
	}

	return summary
}
