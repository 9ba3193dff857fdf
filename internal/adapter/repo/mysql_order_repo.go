package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	domain "github.com/bilal-alaabadi/mahen-b/internal/entity"
	"github.com/bilal-alaabadi/mahen-b/internal/usecase"
)

// MySQLOrderRepo persists orders keyed by order_id (the checkout
// correlation id). Products and gift cards are stored JSON-encoded.
type MySQLOrderRepo struct{ db *sql.DB }

func NewMySQLOrderRepo(db *sql.DB) *MySQLOrderRepo { return &MySQLOrderRepo{db: db} }

const orderColumns = `order_id, products_json, amount, shipping_fee, customer_name, customer_phone,
country, wilayat, description, email, status, deposit_mode, remaining_amount, gift_card_json,
payment_session_id, paid_at, created_at, updated_at`

// Upsert is a single atomic create-if-absent-else-merge statement, so two
// concurrent confirmations for the same order cannot produce duplicates
// or lost updates. Merge rules on conflict:
//   - status, amount, shipping_fee, payment_session_id, paid_at: refreshed
//   - products_json: refreshed only when the incoming list is non-empty
//   - customer/shipping text fields, email, gift card: back-filled only
//     when currently empty
//   - deposit_mode, remaining_amount: create-only
func (r *MySQLOrderRepo) Upsert(ctx context.Context, o *domain.Order) (*domain.Order, error) {
	productsJSON, err := json.Marshal(o.Products)
	if err != nil {
		return nil, &usecase.StoreError{Op: "encode products", Err: err}
	}
	if o.Products == nil {
		productsJSON = []byte("[]")
	}
	giftJSON := ""
	if o.GiftCard != nil {
		b, err := json.Marshal(o.GiftCard)
		if err != nil {
			return nil, &usecase.StoreError{Op: "encode gift card", Err: err}
		}
		giftJSON = string(b)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO orders (`+orderColumns+`)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,NOW(),NOW())
ON DUPLICATE KEY UPDATE
    status             = VALUES(status),
    amount             = VALUES(amount),
    shipping_fee       = VALUES(shipping_fee),
    payment_session_id = VALUES(payment_session_id),
    paid_at            = VALUES(paid_at),
    products_json      = IF(VALUES(products_json) <> '[]', VALUES(products_json), products_json),
    customer_name      = IF(customer_name = '', VALUES(customer_name), customer_name),
    customer_phone     = IF(customer_phone = '', VALUES(customer_phone), customer_phone),
    country            = IF(country = '', VALUES(country), country),
    wilayat            = IF(wilayat = '', VALUES(wilayat), wilayat),
    description        = IF(description = '', VALUES(description), description),
    email              = IF(email = '', VALUES(email), email),
    gift_card_json     = IF(gift_card_json = '', VALUES(gift_card_json), gift_card_json),
    updated_at         = NOW()`,
		o.OrderID, string(productsJSON), o.Amount, o.ShippingFee, o.CustomerName, o.CustomerPhone,
		o.Country, o.Wilayat, o.Description, o.Email, string(o.Status), o.DepositMode, o.RemainingAmount,
		giftJSON, o.PaymentSessionID, o.PaidAt,
	)
	if err != nil {
		return nil, &usecase.StoreError{Op: "upsert order", Err: err}
	}

	return r.GetByOrderID(ctx, o.OrderID)
}

func (r *MySQLOrderRepo) GetByOrderID(ctx context.Context, orderID string) (*domain.Order, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+orderColumns+` FROM orders WHERE order_id = ?`, orderID)
	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, usecase.ErrOrderNotFound
	}
	if err != nil {
		return nil, &usecase.StoreError{Op: "get order", Err: err}
	}
	return o, nil
}

func (r *MySQLOrderRepo) ListByEmail(ctx context.Context, email string) ([]domain.Order, error) {
	return r.list(ctx, `
SELECT `+orderColumns+` FROM orders WHERE email = ? ORDER BY created_at DESC`, email)
}

func (r *MySQLOrderRepo) ListByStatus(ctx context.Context, status domain.Status) ([]domain.Order, error) {
	return r.list(ctx, `
SELECT `+orderColumns+` FROM orders WHERE status = ? ORDER BY created_at DESC`, string(status))
}

func (r *MySQLOrderRepo) list(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &usecase.StoreError{Op: "list orders", Err: err}
	}
	defer rows.Close()

	var out []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, &usecase.StoreError{Op: "scan order", Err: err}
		}
		out = append(out, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, &usecase.StoreError{Op: "list orders", Err: err}
	}
	return out, nil
}

func (r *MySQLOrderRepo) UpdateStatus(ctx context.Context, orderID string, status domain.Status) (*domain.Order, error) {
	res, err := r.db.ExecContext(ctx, `
UPDATE orders SET status = ?, updated_at = NOW() WHERE order_id = ?`, string(status), orderID)
	if err != nil {
		return nil, &usecase.StoreError{Op: "update status", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, &usecase.StoreError{Op: "update status", Err: err}
	}
	if n == 0 {
		// zero rows may also mean the status was already set; only report
		// not-found when the row truly does not exist
		if _, err := r.GetByOrderID(ctx, orderID); err != nil {
			return nil, err
		}
	}
	return r.GetByOrderID(ctx, orderID)
}

func (r *MySQLOrderRepo) Delete(ctx context.Context, orderID string) (*domain.Order, error) {
	o, err := r.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE order_id = ?`, orderID); err != nil {
		return nil, &usecase.StoreError{Op: "delete order", Err: err}
	}
	return o, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOrder(s scanner) (*domain.Order, error) {
	var (
		o            domain.Order
		productsJSON string
		giftJSON     string
		status       string
		paidAt       sql.NullTime
	)
	if err := s.Scan(
		&o.OrderID, &productsJSON, &o.Amount, &o.ShippingFee, &o.CustomerName, &o.CustomerPhone,
		&o.Country, &o.Wilayat, &o.Description, &o.Email, &status, &o.DepositMode, &o.RemainingAmount,
		&giftJSON, &o.PaymentSessionID, &paidAt, &o.CreatedAt, &o.UpdatedAt,
	); err != nil {
		return nil, err
	}
	o.Status = domain.Status(status)
	if paidAt.Valid {
		o.PaidAt = paidAt.Time
	}
	if productsJSON != "" && productsJSON != "[]" {
		if err := json.Unmarshal([]byte(productsJSON), &o.Products); err != nil {
			return nil, fmt.Errorf("decode products: %w", err)
		}
	}
	if giftJSON != "" {
		var gc domain.GiftCard
		if err := json.Unmarshal([]byte(giftJSON), &gc); err != nil {
			return nil, fmt.Errorf("decode gift card: %w", err)
		}
		o.GiftCard = &gc
	}
	return &o, nil
}

var _ usecase.OrderRepo = (*MySQLOrderRepo)(nil)
