package planning

import (
	"fmt"
	"time"
)

// OrderNumberPrefix starts every human-readable order number
const OrderNumberPrefix = "AUF-"

// GenerateOrderNumber derives an order number from the creation instant.
// Two orders created in the same millisecond collide; the store's unique
// index catches that and the caller retries with a later instant.
func GenerateOrderNumber(t time.Time) string {
	return fmt.Sprintf("%s%d", OrderNumberPrefix, t.UnixMilli())
}
