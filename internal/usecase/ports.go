package usecase

import (
	"context"

	domain "github.com/bilal-alaabadi/mahen-b/internal/entity"
)

// PendingOrderStore holds checkout state between session creation and
// payment confirmation, keyed by correlation id. Implementations evict
// entries by TTL; Delete is idempotent.
type PendingOrderStore interface {
	Put(ctx context.Context, po domain.PendingOrder) error
	Get(ctx context.Context, correlationID string) (domain.PendingOrder, bool, error)
	Delete(ctx context.Context, correlationID string) error
}

// OrderRepo persists durable order records.
type OrderRepo interface {
	// Upsert atomically creates the order if absent, otherwise merges:
	// status/amount/shippingFee/paymentSessionId/paidAt are always
	// refreshed, products only when the incoming list is non-empty, and
	// the remaining text fields plus giftCard are back-filled only when
	// currently empty. Returns the stored row after the merge.
	Upsert(ctx context.Context, o *domain.Order) (*domain.Order, error)

	GetByOrderID(ctx context.Context, orderID string) (*domain.Order, error)
	ListByEmail(ctx context.Context, email string) ([]domain.Order, error)
	ListByStatus(ctx context.Context, status domain.Status) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, orderID string, status domain.Status) (*domain.Order, error)
	Delete(ctx context.Context, orderID string) (*domain.Order, error)
}

// CheckoutLineItem is one payable line sent to the gateway, amount in
// minor units.
type CheckoutLineItem struct {
	Name       string `json:"name"`
	Quantity   int    `json:"quantity"`
	UnitAmount int64  `json:"unit_amount"`
}

// SessionMetadata is echoed back by the gateway on confirmation and is
// the fallback data source when the pending cache entry is gone.
type SessionMetadata struct {
	Email         string   `json:"email"`
	CustomerName  string   `json:"customer_name"`
	CustomerPhone string   `json:"customer_phone"`
	Country       string   `json:"country"`
	Wilayat       string   `json:"wilayat"`
	Description   string   `json:"description"`
	GulfCountry   string   `json:"gulfCountry"`
	ShippingFee   *float64 `json:"shippingFee,omitempty"`
}

type CreateSessionRequest struct {
	ClientReferenceID string
	Products          []CheckoutLineItem
	SuccessURL        string
	CancelURL         string
	Metadata          SessionMetadata
}

type SessionSummary struct {
	SessionID         string
	ClientReferenceID string
}

// PaymentStatusPaid is the gateway's terminal success status.
const PaymentStatusPaid = "paid"

type SessionDetail struct {
	SessionID         string
	ClientReferenceID string
	PaymentStatus     string
	TotalAmount       int64 // minor units actually paid
	Metadata          SessionMetadata
}

// PaymentGateway is the remote checkout provider. All calls block until
// the gateway responds or ctx is done.
type PaymentGateway interface {
	CreateSession(ctx context.Context, req CreateSessionRequest) (sessionID string, err error)
	ListSessions(ctx context.Context, limit, skip int) ([]SessionSummary, error)
	GetSession(ctx context.Context, sessionID string) (*SessionDetail, error)
}

// EventPublisher announces completed orders to downstream consumers.
type EventPublisher interface {
	PublishOrderCompleted(ctx context.Context, msg OrderCompletedMsg) error
}
