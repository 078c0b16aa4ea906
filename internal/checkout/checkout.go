package checkout

import (
	"fmt"
	"math"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/adihub26/kicks-shoe-store/internal/engine"
	"github.com/adihub26/kicks-shoe-store/internal/models"
)

// Item is a cart line item as submitted by the storefront.
type Item struct {
	ProductID int64   `json:"product_id" validate:"required"`
	Name      string  `json:"name" validate:"required"`
	UnitPrice float64 `json:"unit_price" validate:"required,gt=0"`
	Quantity  int64   `json:"quantity" validate:"required,min=1"`
	ImageRef  string  `json:"image_ref"`
	Size      string  `json:"size"`
}

// Request is the checkout submission: cart contents, shipping selection
// and claimed amounts.
type Request struct {
	Items           []Item  `json:"items" validate:"required,min=1,dive"`
	ShippingAddress string  `json:"shipping_address" validate:"required"`
	PaymentMethod   string  `json:"payment_method" validate:"required"`
	Subtotal        float64 `json:"subtotal" validate:"required,gt=0"`
	ShippingFee     float64 `json:"shipping_fee" validate:"gte=0"`
	Tax             float64 `json:"tax" validate:"gte=0"`
	Total           float64 `json:"total" validate:"required,gt=0"`
}

// NewValidator returns a validator with the struct-level amount rules
// registered: items must sum to the claimed subtotal, and the total must
// equal subtotal + shipping + tax.
func NewValidator() *validatorv10.Validate {
	v := validatorv10.New()
	v.RegisterStructValidation(requestStructValidation, Request{})
	return v
}

func requestStructValidation(sl validatorv10.StructLevel) {
	req := sl.Current().Interface().(Request)

	var sum float64
	for _, it := range req.Items {
		sum += float64(it.Quantity) * it.UnitPrice
	}
	if cents(sum) != cents(req.Subtotal) {
		sl.ReportError(req.Subtotal, "subtotal", "Subtotal", "subtotal_match_items",
			fmt.Sprintf("items sum %.2f != subtotal %.2f", sum, req.Subtotal))
	}
	if cents(req.Subtotal+req.ShippingFee+req.Tax) != cents(req.Total) {
		sl.ReportError(req.Total, "total", "Total", "total_match_breakdown",
			fmt.Sprintf("subtotal %.2f + shipping %.2f + tax %.2f != total %.2f",
				req.Subtotal, req.ShippingFee, req.Tax, req.Total))
	}
}

func cents(v float64) int64 {
	return int64(math.Round(v * 100))
}

// Orchestrator sits between the external payment widget and the order
// engine. It consumes exactly one PaymentCompleted event per checkout.
type Orchestrator struct {
	engine   *engine.Engine
	validate *validatorv10.Validate
}

func NewOrchestrator(eng *engine.Engine) *Orchestrator {
	return &Orchestrator{
		engine:   eng,
		validate: NewValidator(),
	}
}

// CompleteCheckout turns a validated checkout plus its payment event into
// an order. The payment amount must match the claimed total.
func (o *Orchestrator) CompleteCheckout(ownerID string, req Request, payment models.PaymentCompleted) (*models.Order, error) {
	if err := o.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", engine.ErrValidation, err)
	}
	if payment.Reference == "" {
		return nil, fmt.Errorf("%w: payment reference is empty", engine.ErrValidation)
	}
	if cents(payment.Amount) != cents(req.Total) {
		return nil, fmt.Errorf("%w: payment amount %.2f != order total %.2f",
			engine.ErrValidation, payment.Amount, req.Total)
	}

	externalRef := payment.OrderReference
	if externalRef == "" {
		// some widgets omit their order id on the success callback
		externalRef = "order_" + uuid.NewString()
	}

	items := make([]models.OrderItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, models.OrderItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
			ImageRef:  it.ImageRef,
			Size:      it.Size,
		})
	}

	return o.engine.CreateOrder(ownerID, models.CheckoutPayload{
		Items:            items,
		ShippingAddress:  req.ShippingAddress,
		PaymentMethod:    req.PaymentMethod,
		PaymentReference: payment.Reference,
		ExternalOrderRef: externalRef,
		Subtotal:         req.Subtotal,
		ShippingFee:      req.ShippingFee,
		Tax:              req.Tax,
		Total:            req.Total,
	})
}
