package planning

import (
	"time"

	"github.com/kendall-kelly/warranty-dispatch-api/models"
)

func strPtr(s string) *string {
	return &s
}

func date(value string) time.Time {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		panic(err)
	}
	return t
}

func newOrder(id string, technicians ...string) models.Order {
	return models.Order{
		ID:                  id,
		OrderNumber:         "AUF-" + id,
		Title:               "Auftrag " + id,
		Status:              models.OrderStatusOpen,
		Priority:            models.PriorityNormal,
		AssignedTechnicians: technicians,
	}
}

func scheduled(order models.Order, start, end string) models.Order {
	order.StartDate = strPtr(start)
	order.EndDate = strPtr(end)
	return order
}
