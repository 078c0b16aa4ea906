package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/adihub26/kicks-shoe-store/internal/models"
)

// OrderRepository is the Postgres-backed order store. It keeps the same
// whole-collection overwrite contract as the file slot: SaveAll replaces
// every row inside one transaction.
type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Load() ([]*models.Order, error) {
	query := `SELECT
			id, user_id, created_at, status, items, shipping_address,
			payment_method, payment_reference, external_order_ref,
			subtotal, shipping_fee, tax, total,
			tracking_number, estimated_delivery, tracking_updates
		FROM orders ORDER BY created_at DESC, id DESC`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}
	defer rows.Close()

	orders := make([]*models.Order, 0)
	for rows.Next() {
		o := &models.Order{}
		var items, updates []byte
		err := rows.Scan(
			&o.ID, &o.UserID, &o.CreatedAt, &o.Status, &items, &o.ShippingAddress,
			&o.PaymentMethod, &o.PaymentReference, &o.ExternalOrderRef,
			&o.Subtotal, &o.ShippingFee, &o.Tax, &o.Total,
			&o.TrackingNumber, &o.EstimatedDelivery, &updates,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		if err := json.Unmarshal(items, &o.Items); err != nil {
			return nil, fmt.Errorf("decode items for %s: %w", o.ID, err)
		}
		if err := json.Unmarshal(updates, &o.TrackingUpdates); err != nil {
			return nil, fmt.Errorf("decode tracking updates for %s: %w", o.ID, err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}
	return orders, nil
}

func (r *OrderRepository) SaveAll(orders []*models.Order) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("save orders: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM orders`); err != nil {
		return fmt.Errorf("clear orders: %w", err)
	}

	insert := `INSERT INTO orders (
			id, user_id, created_at, status, items, shipping_address,
			payment_method, payment_reference, external_order_ref,
			subtotal, shipping_fee, tax, total,
			tracking_number, estimated_delivery, tracking_updates
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`
	for _, o := range orders {
		items, err := json.Marshal(o.Items)
		if err != nil {
			return fmt.Errorf("encode items for %s: %w", o.ID, err)
		}
		updates, err := json.Marshal(o.TrackingUpdates)
		if err != nil {
			return fmt.Errorf("encode tracking updates for %s: %w", o.ID, err)
		}
		_, err = tx.Exec(insert,
			o.ID, o.UserID, o.CreatedAt, o.Status, items, o.ShippingAddress,
			o.PaymentMethod, o.PaymentReference, o.ExternalOrderRef,
			o.Subtotal, o.ShippingFee, o.Tax, o.Total,
			o.TrackingNumber, o.EstimatedDelivery, updates,
		)
		if err != nil {
			return fmt.Errorf("insert order %s: %w", o.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save orders: %w", err)
	}
	return nil
}
