package kafka

import (
	"context"
	"errors"

	domain "github.com/bilal-alaabadi/mahen-b/internal/entity"
	"github.com/bilal-alaabadi/mahen-b/internal/usecase"
)

// OrderStatusChangedHandler applies status transitions announced by the
// fulfilment system to stored orders.
type OrderStatusChangedHandler struct {
	Repo usecase.OrderRepo
}

func NewOrderStatusChangedHandler(repo usecase.OrderRepo) *OrderStatusChangedHandler {
	return &OrderStatusChangedHandler{Repo: repo}
}

func (h *OrderStatusChangedHandler) Handle(ctx context.Context, ev usecase.OrderStatusChangedMsg) error {
	if ev.OrderID == "" || ev.Status == "" {
		return nil // nothing to apply; marking it consumed avoids a poison loop
	}
	_, err := h.Repo.UpdateStatus(ctx, ev.OrderID, domain.Status(ev.Status))
	if errors.Is(err, usecase.ErrOrderNotFound) {
		// order may not be reconciled yet; drop rather than retry forever
		return nil
	}
	return err
}
