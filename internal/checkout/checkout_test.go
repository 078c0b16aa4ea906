package checkout_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/adihub26/kicks-shoe-store/internal/checkout"
	"github.com/adihub26/kicks-shoe-store/internal/engine"
	"github.com/adihub26/kicks-shoe-store/internal/models"
	"github.com/adihub26/kicks-shoe-store/internal/store"
)

func newOrchestrator(t *testing.T) (*checkout.Orchestrator, *engine.Engine) {
	st := store.NewFileStore(filepath.Join(t.TempDir(), "orders.json"))
	eng, err := engine.New(st, nil, engine.DefaultTimings())
	assert.NoError(t, err)
	return checkout.NewOrchestrator(eng), eng
}

func validRequest() checkout.Request {
	return checkout.Request{
		Items: []checkout.Item{
			{ProductID: 1, Name: "Nike Air Max 270", UnitPrice: 1000, Quantity: 2, Size: "8"},
		},
		ShippingAddress: "123 Main Street, Mumbai",
		PaymentMethod:   "Razorpay",
		Subtotal:        2000,
		ShippingFee:     99,
		Tax:             360,
		Total:           2459,
	}
}

func validPayment() models.PaymentCompleted {
	return models.PaymentCompleted{
		Reference:      "pay_abc123",
		OrderReference: "order_abc123",
		Amount:         2459,
	}
}

func TestCompleteCheckout(t *testing.T) {
	orch, eng := newOrchestrator(t)

	order, err := orch.CompleteCheckout("u1", validRequest(), validPayment())
	assert.NoError(t, err)
	assert.Equal(t, models.StatusOrdered, order.Status)
	assert.Equal(t, "pay_abc123", order.PaymentReference)
	assert.Equal(t, "order_abc123", order.ExternalOrderRef)
	assert.Equal(t, "Razorpay", order.PaymentMethod)
	assert.Equal(t, 2459.0, order.Total)

	persisted, err := eng.GetOrderByID(order.ID)
	assert.NoError(t, err)
	assert.Equal(t, order.ID, persisted.ID)
}

func TestCompleteCheckoutGeneratesExternalRef(t *testing.T) {
	orch, _ := newOrchestrator(t)

	payment := validPayment()
	payment.OrderReference = ""
	order, err := orch.CompleteCheckout("u1", validRequest(), payment)
	assert.NoError(t, err)
	assert.NotEmpty(t, order.ExternalOrderRef)
	assert.Contains(t, order.ExternalOrderRef, "order_")
}

func TestCompleteCheckoutRejectsEmptyCart(t *testing.T) {
	orch, _ := newOrchestrator(t)

	req := validRequest()
	req.Items = nil
	_, err := orch.CompleteCheckout("u1", req, validPayment())
	assert.ErrorIs(t, err, engine.ErrValidation)
}

func TestCompleteCheckoutRejectsSubtotalMismatch(t *testing.T) {
	orch, _ := newOrchestrator(t)

	req := validRequest()
	req.Subtotal = 1500 // items sum to 2000
	req.Total = 1959
	payment := validPayment()
	payment.Amount = 1959
	_, err := orch.CompleteCheckout("u1", req, payment)
	assert.ErrorIs(t, err, engine.ErrValidation)
}

func TestCompleteCheckoutRejectsTotalMismatch(t *testing.T) {
	orch, _ := newOrchestrator(t)

	req := validRequest()
	req.Total = 2460
	payment := validPayment()
	payment.Amount = 2460
	_, err := orch.CompleteCheckout("u1", req, payment)
	assert.ErrorIs(t, err, engine.ErrValidation)
}

func TestCompleteCheckoutRejectsPaymentAmountMismatch(t *testing.T) {
	orch, _ := newOrchestrator(t)

	payment := validPayment()
	payment.Amount = 100
	_, err := orch.CompleteCheckout("u1", validRequest(), payment)
	assert.ErrorIs(t, err, engine.ErrValidation)
}

func TestCompleteCheckoutRejectsMissingPaymentReference(t *testing.T) {
	orch, _ := newOrchestrator(t)

	payment := validPayment()
	payment.Reference = ""
	_, err := orch.CompleteCheckout("u1", validRequest(), payment)
	assert.ErrorIs(t, err, engine.ErrValidation)
}
