package usecase

import "time"

// Published on RabbitMQ after a successful reconciliation.
type OrderCompletedMsg struct {
	OrderID          string    `json:"orderId"`
	Email            string    `json:"email"`
	Amount           float64   `json:"amount"`
	DepositMode      bool      `json:"depositMode"`
	PaymentSessionID string    `json:"paymentSessionId"`
	PaidAt           time.Time `json:"paidAt"`
}

// Consumed from Kafka; emitted by the fulfilment system when an order
// moves through shipping.
type OrderStatusChangedMsg struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"` // e.g. "shipped", "delivered", "cancelled"
}
