package engine

import (
	"fmt"
	"log"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/adihub26/kicks-shoe-store/internal/audit"
	"github.com/adihub26/kicks-shoe-store/internal/models"
	"github.com/adihub26/kicks-shoe-store/internal/store"
)

// Timings controls the simulated delivery progression. An order is promoted
// one step per sweep tick once its age passes the matching offset; while in
// processing past EarlyShipAfter it may also ship early with
// EarlyShipChance probability.
type Timings struct {
	ProcessAfter    time.Duration
	ShipAfter       time.Duration
	DeliverAfter    time.Duration
	EarlyShipAfter  time.Duration
	EarlyShipChance float64
	DeliveryDays    int
}

func DefaultTimings() Timings {
	return Timings{
		ProcessAfter:    30 * time.Second,
		ShipAfter:       2 * time.Minute,
		DeliverAfter:    5 * time.Minute,
		EarlyShipAfter:  30 * time.Second,
		EarlyShipChance: 0.3,
		DeliveryDays:    7,
	}
}

// Canned tracking copy for automatic and manual advancement, keyed by the
// status being entered.
var (
	statusDescriptions = map[models.OrderStatus]string{
		models.StatusProcessing: "Order confirmed and being processed",
		models.StatusShipped:    "Order shipped and in transit",
		models.StatusDelivered:  "Order delivered successfully",
	}
	statusLocations = map[models.OrderStatus]string{
		models.StatusProcessing: "Warehouse",
		models.StatusShipped:    "Sorting Facility",
		models.StatusDelivered:  "Customer Address",
	}
)

// Engine owns the order collection for the session: it is the sole writer,
// readers only ever receive copies. Mutations are persisted as a whole
// collection before the lock is released, so a read-modify-persist cycle is
// never interleaved with another write.
type Engine struct {
	mu      sync.Mutex
	orders  []*models.Order // newest first
	byID    map[string]*models.Order
	st      store.Store
	auditor audit.Logger
	timings Timings

	nowFunc  func() time.Time
	randFunc func() float64
	lastID   int64
}

func New(st store.Store, auditor audit.Logger, timings Timings) (*Engine, error) {
	orders, err := st.Load()
	if err != nil {
		return nil, err
	}
	e := &Engine{
		orders:   orders,
		byID:     make(map[string]*models.Order, len(orders)),
		st:       st,
		auditor:  auditor,
		timings:  timings,
		nowFunc:  time.Now,
		randFunc: rand.Float64,
	}
	for _, o := range orders {
		e.byID[o.ID] = o
	}
	return e, nil
}

// SetClock replaces the wall clock, for tests.
func (e *Engine) SetClock(now func() time.Time) { e.nowFunc = now }

// SetRand replaces the randomness source, for tests.
func (e *Engine) SetRand(r func() float64) { e.randFunc = r }

// CreateOrder synthesizes a new order from a completed checkout, persists
// it as the newest entry and returns a copy.
func (e *Engine) CreateOrder(ownerID string, p models.CheckoutPayload) (*models.Order, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner id is empty", ErrValidation)
	}
	if len(p.Items) == 0 {
		return nil, fmt.Errorf("%w: order has no items", ErrValidation)
	}
	if p.Total <= 0 {
		return nil, fmt.Errorf("%w: total must be positive, got %.2f", ErrValidation, p.Total)
	}
	if !amountsEqual(p.Total, p.Subtotal+p.ShippingFee+p.Tax) {
		return nil, fmt.Errorf("%w: total %.2f != subtotal %.2f + shipping %.2f + tax %.2f",
			ErrValidation, p.Total, p.Subtotal, p.ShippingFee, p.Tax)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.nowFunc().UTC()
	items := make([]models.OrderItem, len(p.Items))
	copy(items, p.Items)

	order := &models.Order{
		ID:                e.nextOrderID(now),
		UserID:            ownerID,
		CreatedAt:         now,
		Status:            models.StatusOrdered,
		Items:             items,
		ShippingAddress:   p.ShippingAddress,
		PaymentMethod:     p.PaymentMethod,
		PaymentReference:  p.PaymentReference,
		ExternalOrderRef:  p.ExternalOrderRef,
		Subtotal:          p.Subtotal,
		ShippingFee:       p.ShippingFee,
		Tax:               p.Tax,
		Total:             p.Total,
		TrackingNumber:    newTrackingNumber(e.randFunc),
		EstimatedDelivery: now.AddDate(0, 0, e.timings.DeliveryDays),
		TrackingUpdates: []models.TrackingUpdate{{
			Status:      models.StatusOrdered,
			Description: "Order placed successfully",
			Location:    "Online Store",
			Timestamp:   now,
		}},
	}

	e.orders = append([]*models.Order{order}, e.orders...)
	e.byID[order.ID] = order
	if err := e.st.SaveAll(e.orders); err != nil {
		e.orders = e.orders[1:]
		delete(e.byID, order.ID)
		return nil, err
	}
	e.logTransition(order, "", models.StatusOrdered, "order created")
	return order.Clone(), nil
}

// AdvanceStatus moves an order exactly one step forward and appends one
// tracking entry stamped with the wall-clock time of the call. Any attempt
// to skip a step, regress, or advance a delivered order is rejected.
func (e *Engine) AdvanceStatus(orderID string, next models.OrderStatus, description, location string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.advanceLocked(orderID, next, description, location)
}

func (e *Engine) advanceLocked(orderID string, next models.OrderStatus, description, location string) error {
	order, ok := e.byID[orderID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, orderID)
	}
	if order.Status.Terminal() {
		return fmt.Errorf("%w: order %s is already delivered", ErrInvalidTransition, orderID)
	}
	expected, ok := models.NextStatus(order.Status)
	if !ok || next != expected {
		return fmt.Errorf("%w: order %s is %s, cannot move to %s", ErrInvalidTransition, orderID, order.Status, next)
	}

	if description == "" {
		description = fmt.Sprintf("Order %s", next)
	}
	if location == "" {
		location = "Processing Center"
	}

	prev := order.Status
	order.Status = next
	order.TrackingUpdates = append(order.TrackingUpdates, models.TrackingUpdate{
		Status:      next,
		Description: description,
		Location:    location,
		Timestamp:   e.nowFunc().UTC(),
	})
	if err := e.st.SaveAll(e.orders); err != nil {
		order.Status = prev
		order.TrackingUpdates = order.TrackingUpdates[:len(order.TrackingUpdates)-1]
		return err
	}
	e.logTransition(order, prev, next, description)
	return nil
}

// SimulateManualAdvance pushes an order to its next status using the canned
// description/location pair for that status.
func (e *Engine) SimulateManualAdvance(orderID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	order, ok := e.byID[orderID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, orderID)
	}
	next, ok := models.NextStatus(order.Status)
	if !ok {
		return fmt.Errorf("%w: order %s is already delivered", ErrInvalidTransition, orderID)
	}
	return e.advanceLocked(orderID, next, statusDescriptions[next], statusLocations[next])
}

// GetOrdersForUser returns copies of the user's orders, newest first.
func (e *Engine) GetOrdersForUser(ownerID string) []*models.Order {
	e.mu.Lock()
	defer e.mu.Unlock()

	var result []*models.Order
	for _, o := range e.orders {
		if o.UserID == ownerID {
			result = append(result, o.Clone())
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}

// GetOrderByID returns a copy of the order or ErrNotFound.
func (e *Engine) GetOrderByID(orderID string) (*models.Order, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	order, ok := e.byID[orderID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, orderID)
	}
	return order.Clone(), nil
}

// Sweep is the single authoritative scheduler tick. For every order it
// re-derives the status the order's age calls for and applies at most one
// transition, so late or duplicate ticks can never duplicate a tracking
// entry or skip a step.
func (e *Engine) Sweep() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.nowFunc().UTC()
	advanced := 0
	for _, o := range e.orders {
		if o.Status.Terminal() {
			continue
		}
		next, ok := e.dueTransition(o, now)
		if !ok {
			continue
		}
		if err := e.advanceLocked(o.ID, next, statusDescriptions[next], statusLocations[next]); err != nil {
			log.Printf("sweep: advance %s to %s: %v", o.ID, next, err)
			continue
		}
		advanced++
	}
	return advanced
}

func (e *Engine) dueTransition(o *models.Order, now time.Time) (models.OrderStatus, bool) {
	age := now.Sub(o.CreatedAt)
	switch o.Status {
	case models.StatusOrdered:
		if age >= e.timings.ProcessAfter {
			return models.StatusProcessing, true
		}
	case models.StatusProcessing:
		if age >= e.timings.ShipAfter {
			return models.StatusShipped, true
		}
		if age >= e.timings.EarlyShipAfter && e.randFunc() < e.timings.EarlyShipChance {
			return models.StatusShipped, true
		}
	case models.StatusShipped:
		if age >= e.timings.DeliverAfter {
			return models.StatusDelivered, true
		}
	}
	return "", false
}

// Reset drops every order and persists the empty slot. With the sweep-only
// scheduler there are no per-order timers left to cancel.
func (e *Engine) Reset() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.orders = []*models.Order{}
	e.byID = make(map[string]*models.Order)
	e.lastID = 0
	return e.st.SaveAll(e.orders)
}

// nextOrderID keeps the original time-based format while staying unique
// when two orders land in the same millisecond.
func (e *Engine) nextOrderID(now time.Time) string {
	ms := now.UnixMilli()
	if ms <= e.lastID {
		ms = e.lastID + 1
	}
	e.lastID = ms
	return fmt.Sprintf("ORD-%d", ms)
}

const trackingAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func newTrackingNumber(rnd func() float64) string {
	var sb strings.Builder
	sb.WriteString("TRK")
	for i := 0; i < 9; i++ {
		sb.WriteByte(trackingAlphabet[int(rnd()*float64(len(trackingAlphabet)))%len(trackingAlphabet)])
	}
	return sb.String()
}

func (e *Engine) logTransition(o *models.Order, from, to models.OrderStatus, message string) {
	if e.auditor == nil {
		return
	}
	e.auditor.Log(audit.Record{
		Timestamp: e.nowFunc().UTC(),
		OrderID:   o.ID,
		UserID:    o.UserID,
		OldStatus: string(from),
		NewStatus: string(to),
		Message:   message,
	})
}

func amountsEqual(a, b float64) bool {
	return toCents(a) == toCents(b)
}

func toCents(v float64) int64 {
	if v >= 0 {
		return int64(v*100 + 0.5)
	}
	return int64(v*100 - 0.5)
}
