package repository_test

import (
	"database/sql"
	"log"
	"os"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/adihub26/kicks-shoe-store/internal/models"
	"github.com/adihub26/kicks-shoe-store/internal/repository"
)

var db *sql.DB
var repo *repository.OrderRepository

// Tests run only when TEST_DSN points at a migrated database.
func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DSN")
	if dsn == "" {
		os.Exit(0)
	}
	var err error
	db, err = sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	if err = db.Ping(); err != nil {
		log.Fatalf("ping db: %v", err)
	}
	repo = repository.NewOrderRepository(db)

	code := m.Run()

	db.Exec("DELETE FROM orders")

	os.Exit(code)
}

func sampleOrder(id, userID string, createdAt time.Time) *models.Order {
	return &models.Order{
		ID:        id,
		UserID:    userID,
		CreatedAt: createdAt,
		Status:    models.StatusOrdered,
		Items: []models.OrderItem{
			{ProductID: 1, Name: "Nike Air Max 270", UnitPrice: 1000, Quantity: 2, Size: "8"},
		},
		ShippingAddress:   "123 Main Street",
		PaymentMethod:     "Razorpay",
		PaymentReference:  "pay_" + id,
		ExternalOrderRef:  "order_" + id,
		Subtotal:          2000,
		ShippingFee:       99,
		Tax:               360,
		Total:             2459,
		TrackingNumber:    "TRKABC123DEF",
		EstimatedDelivery: createdAt.AddDate(0, 0, 7),
		TrackingUpdates: []models.TrackingUpdate{
			{Status: models.StatusOrdered, Description: "Order placed successfully", Location: "Online Store", Timestamp: createdAt},
		},
	}
}

func TestSaveAllAndLoad(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	orders := []*models.Order{
		sampleOrder("test-2", "u1", now),
		sampleOrder("test-1", "u1", now.Add(-time.Minute)),
	}
	err := repo.SaveAll(orders)
	assert.NoError(t, err)

	loaded, err := repo.Load()
	assert.NoError(t, err)
	assert.Len(t, loaded, 2)
	assert.Equal(t, "test-2", loaded[0].ID, "newest first")
	assert.Equal(t, models.StatusOrdered, loaded[0].Status)
	assert.Len(t, loaded[0].Items, 1)
	assert.Equal(t, "Nike Air Max 270", loaded[0].Items[0].Name)
	assert.Len(t, loaded[0].TrackingUpdates, 1)
	assert.Equal(t, 2459.0, loaded[0].Total)
}

func TestSaveAllOverwrites(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	err := repo.SaveAll([]*models.Order{
		sampleOrder("test-old-1", "u1", now),
		sampleOrder("test-old-2", "u2", now),
	})
	assert.NoError(t, err)

	err = repo.SaveAll([]*models.Order{sampleOrder("test-new", "u1", now)})
	assert.NoError(t, err)

	loaded, err := repo.Load()
	assert.NoError(t, err)
	assert.Len(t, loaded, 1)
	assert.Equal(t, "test-new", loaded[0].ID)
}

func TestSaveAllEmpty(t *testing.T) {
	err := repo.SaveAll([]*models.Order{sampleOrder("test-gone", "u1", time.Now().UTC())})
	assert.NoError(t, err)

	err = repo.SaveAll(nil)
	assert.NoError(t, err)

	loaded, err := repo.Load()
	assert.NoError(t, err)
	assert.Empty(t, loaded)
}
