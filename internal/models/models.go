package models

import "time"

type OrderStatus string

const (
	StatusOrdered    OrderStatus = "ordered"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"

	// StatusCancelled appears only in display labels; the engine defines
	// no transition into it.
	StatusCancelled OrderStatus = "cancelled"
)

// StatusSequence is the fixed forward-only delivery progression.
var StatusSequence = []OrderStatus{StatusOrdered, StatusProcessing, StatusShipped, StatusDelivered}

// StatusIndex returns the position of s in StatusSequence, or -1.
func StatusIndex(s OrderStatus) int {
	for i, st := range StatusSequence {
		if st == s {
			return i
		}
	}
	return -1
}

// NextStatus returns the immediate successor of s. ok is false when s is
// terminal or not part of the sequence.
func NextStatus(s OrderStatus) (OrderStatus, bool) {
	i := StatusIndex(s)
	if i < 0 || i == len(StatusSequence)-1 {
		return "", false
	}
	return StatusSequence[i+1], true
}

func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered
}

type OrderItem struct {
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int64   `json:"quantity"`
	ImageRef  string  `json:"image_ref,omitempty"`
	Size      string  `json:"size,omitempty"`
}

type TrackingUpdate struct {
	Status      OrderStatus `json:"status"`
	Description string      `json:"description"`
	Location    string      `json:"location"`
	Timestamp   time.Time   `json:"timestamp"`
}

type Order struct {
	ID                string           `json:"id"`
	UserID            string           `json:"user_id"`
	CreatedAt         time.Time        `json:"created_at"`
	Status            OrderStatus      `json:"status"`
	Items             []OrderItem      `json:"items"`
	ShippingAddress   string           `json:"shipping_address"`
	PaymentMethod     string           `json:"payment_method"`
	PaymentReference  string           `json:"payment_reference"`
	ExternalOrderRef  string           `json:"external_order_ref"`
	Subtotal          float64          `json:"subtotal"`
	ShippingFee       float64          `json:"shipping_fee"`
	Tax               float64          `json:"tax"`
	Total             float64          `json:"total"`
	TrackingNumber    string           `json:"tracking_number"`
	EstimatedDelivery time.Time        `json:"estimated_delivery"`
	TrackingUpdates   []TrackingUpdate `json:"tracking_updates"`
}

// Clone returns a deep copy so readers can never mutate engine-owned state.
func (o *Order) Clone() *Order {
	cp := *o
	cp.Items = make([]OrderItem, len(o.Items))
	copy(cp.Items, o.Items)
	cp.TrackingUpdates = make([]TrackingUpdate, len(o.TrackingUpdates))
	copy(cp.TrackingUpdates, o.TrackingUpdates)
	return &cp
}

// CheckoutPayload is what the checkout orchestrator hands the engine on a
// successful payment.
type CheckoutPayload struct {
	Items            []OrderItem
	ShippingAddress  string
	PaymentMethod    string
	PaymentReference string
	ExternalOrderRef string
	Subtotal         float64
	ShippingFee      float64
	Tax              float64
	Total            float64
}

// PaymentCompleted is the inbound event from the external payment widget.
type PaymentCompleted struct {
	Reference      string  `json:"reference"`
	OrderReference string  `json:"order_reference"`
	Amount         float64 `json:"amount"`
}
