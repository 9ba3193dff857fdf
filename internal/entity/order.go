package domain

import (
	"strings"
	"time"
)

type Status string

const (
	StatusCompleted Status = "completed"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// GiftCard carries the optional greeting-card fields attached to an order
// or to a single cart item.
type GiftCard struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Phone string `json:"phone"`
	Note  string `json:"note"`
}

// HasValues reports whether at least one field is non-empty after trimming.
func (g *GiftCard) HasValues() bool {
	if g == nil {
		return false
	}
	return strings.TrimSpace(g.From) != "" ||
		strings.TrimSpace(g.To) != "" ||
		strings.TrimSpace(g.Phone) != "" ||
		strings.TrimSpace(g.Note) != ""
}

// NormalizeGiftCard returns nil for an absent/all-blank card, otherwise a
// copy with every field defaulted to the empty string.
func NormalizeGiftCard(g *GiftCard) *GiftCard {
	if !g.HasValues() {
		return nil
	}
	return &GiftCard{From: g.From, To: g.To, Phone: g.Phone, Note: g.Note}
}

// OrderProduct is the normalized line-item shape persisted on an Order.
type OrderProduct struct {
	ProductID    string            `json:"productId"`
	Quantity     int               `json:"quantity"`
	Name         string            `json:"name"`
	Price        float64           `json:"price"`
	Image        string            `json:"image"`
	Category     string            `json:"category"`
	Measurements map[string]string `json:"measurements,omitempty"`
	GiftCard     *GiftCard         `json:"giftCard,omitempty"`
}

// Order is the durable order record. OrderID equals the correlation id
// minted at checkout-session creation and acts as the idempotency key:
// at most one Order exists per OrderID.
type Order struct {
	OrderID          string         `json:"orderId"`
	Products         []OrderProduct `json:"products"`
	Amount           float64        `json:"amount"`
	ShippingFee      float64        `json:"shippingFee"`
	CustomerName     string         `json:"customerName"`
	CustomerPhone    string         `json:"customerPhone"`
	Country          string         `json:"country"`
	Wilayat          string         `json:"wilayat"`
	Description      string         `json:"description"`
	Email            string         `json:"email"`
	Status           Status         `json:"status"`
	DepositMode      bool           `json:"depositMode"`
	RemainingAmount  float64        `json:"remainingAmount"`
	GiftCard         *GiftCard      `json:"giftCard,omitempty"`
	PaymentSessionID string         `json:"paymentSessionId"`
	PaidAt           time.Time      `json:"paidAt"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
}
