package tracking

import "github.com/adihub26/kicks-shoe-store/internal/models"

// Read-only projections for display surfaces. Nothing here mutates an
// order; callers already hold copies.

// Progress returns the delivery progress percentage for the order's
// current status.
func Progress(o *models.Order) float64 {
	i := models.StatusIndex(o.Status)
	if i < 0 {
		return 0
	}
	return float64(i+1) / float64(len(models.StatusSequence)) * 100
}

// Timeline returns the tracking updates oldest first, as appended.
func Timeline(o *models.Order) []models.TrackingUpdate {
	updates := make([]models.TrackingUpdate, len(o.TrackingUpdates))
	copy(updates, o.TrackingUpdates)
	return updates
}

// StatusLabel is the human-readable badge text for a status.
func StatusLabel(s models.OrderStatus) string {
	switch s {
	case models.StatusOrdered:
		return "Order Placed"
	case models.StatusProcessing:
		return "Processing"
	case models.StatusShipped:
		return "Shipped"
	case models.StatusDelivered:
		return "Delivered"
	case models.StatusCancelled:
		return "Cancelled"
	}
	return "Unknown"
}

// StatusColor is the badge color class for a status.
func StatusColor(s models.OrderStatus) string {
	switch s {
	case models.StatusOrdered:
		return "blue"
	case models.StatusProcessing:
		return "yellow"
	case models.StatusShipped:
		return "purple"
	case models.StatusDelivered:
		return "green"
	case models.StatusCancelled:
		return "red"
	}
	return "gray"
}
