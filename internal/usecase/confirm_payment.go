package usecase

import (
	"context"
	"time"

	domain "github.com/bilal-alaabadi/mahen-b/internal/entity"
	"github.com/bilal-alaabadi/mahen-b/internal/logging"
)

// fallbackShippingFee applies when neither gateway metadata nor the
// pending cache carries a shipping fee.
const fallbackShippingFee = 2

// ConfirmPayment reconciles a paid gateway session with the pending order
// state and upserts the durable order record.
type ConfirmPayment struct {
	gateway PaymentGateway
	pending PendingOrderStore
	repo    OrderRepo
	events  EventPublisher // optional, best effort
	minor   MinorUnit
	// pageSize bounds the session scan: only the most recent pageSize
	// sessions are searched for the correlation id.
	pageSize int

	now func() time.Time
}

func NewConfirmPayment(gw PaymentGateway, pending PendingOrderStore, repo OrderRepo, events EventPublisher, minor MinorUnit, pageSize int) *ConfirmPayment {
	if pageSize <= 0 {
		pageSize = 50
	}
	return &ConfirmPayment{
		gateway:  gw,
		pending:  pending,
		repo:     repo,
		events:   events,
		minor:    minor,
		pageSize: pageSize,
		now:      time.Now,
	}
}

func (uc *ConfirmPayment) Execute(ctx context.Context, correlationID string) (*domain.Order, error) {
	if correlationID == "" {
		return nil, ErrMissingReference
	}

	// 1) locate the session by its client reference within the most
	// recent page.
	summaries, err := uc.gateway.ListSessions(ctx, uc.pageSize, 0)
	if err != nil {
		return nil, err
	}
	var sessionID string
	for _, s := range summaries {
		if s.ClientReferenceID == correlationID {
			sessionID = s.SessionID
			break
		}
	}
	if sessionID == "" {
		return nil, ErrSessionNotFound
	}

	// 2) full session detail; only paid sessions reconcile.
	session, err := uc.gateway.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil || session.PaymentStatus != PaymentStatusPaid {
		return nil, ErrPaymentNotCompleted
	}

	// 3) merge gateway metadata with the cached pending order. A missing
	// or failing cache entry degrades to metadata only, which is how a
	// second confirmation for the same id succeeds.
	cached, haveCache, err := uc.pending.Get(ctx, correlationID)
	if err != nil {
		logging.FromCtx(ctx).Warn("pending store read failed, using metadata only",
			"correlation_id", correlationID, "error", err)
		haveCache = false
	}
	if !haveCache {
		cached = domain.PendingOrder{}
	}
	meta := session.Metadata

	paidAmount := uc.minor.ToMajor(session.TotalAmount)

	shippingFee := float64(fallbackShippingFee)
	switch {
	case meta.ShippingFee != nil:
		shippingFee = *meta.ShippingFee
	case haveCache:
		shippingFee = cached.ShippingFee
	}

	var products []domain.OrderProduct
	if haveCache {
		products = make([]domain.OrderProduct, 0, len(cached.Products))
		for _, p := range cached.Products {
			products = append(products, p.ToOrderProduct())
		}
	}

	order := &domain.Order{
		OrderID:          correlationID,
		Products:         products,
		Amount:           paidAmount,
		ShippingFee:      shippingFee,
		CustomerName:     firstNonEmpty(cached.CustomerName, meta.CustomerName),
		CustomerPhone:    firstNonEmpty(cached.CustomerPhone, meta.CustomerPhone),
		Country:          firstNonEmpty(cached.Country, meta.Country),
		Wilayat:          firstNonEmpty(cached.Wilayat, meta.Wilayat),
		Description:      firstNonEmpty(cached.Description, meta.Description),
		Email:            firstNonEmpty(cached.Email, meta.Email),
		Status:           domain.StatusCompleted,
		DepositMode:      haveCache && cached.DepositMode,
		GiftCard:         domain.NormalizeGiftCard(cached.GiftCard),
		PaymentSessionID: sessionID,
		PaidAt:           uc.now(),
	}
	if order.DepositMode {
		order.RemainingAmount = remainingAmount(cached.Products, shippingFee, paidAmount)
	}

	stored, err := uc.repo.Upsert(ctx, order)
	if err != nil {
		// pending entry stays intact so the confirmation is retriable
		return nil, err
	}

	// 4) evict the pending entry; eviction is idempotent and best effort.
	if err := uc.pending.Delete(ctx, correlationID); err != nil {
		logging.FromCtx(ctx).Warn("pending store eviction failed",
			"correlation_id", correlationID, "error", err)
	}

	if uc.events != nil {
		msg := OrderCompletedMsg{
			OrderID:          stored.OrderID,
			Email:            stored.Email,
			Amount:           stored.Amount,
			DepositMode:      stored.DepositMode,
			PaymentSessionID: stored.PaymentSessionID,
			PaidAt:           stored.PaidAt,
		}
		if err := uc.events.PublishOrderCompleted(ctx, msg); err != nil {
			logging.FromCtx(ctx).Warn("order completed event publish failed",
				"order_id", stored.OrderID, "error", err)
		}
	}

	return stored, nil
}

// remainingAmount is the balance owed after a deposit payment: full cart
// value plus shipping, less what the gateway reports as paid.
func remainingAmount(products []domain.CartItem, shippingFee, paid float64) float64 {
	total := shippingFee
	for _, p := range products {
		q := p.Quantity
		if q < 1 {
			q = 1
		}
		total += p.Price * float64(q)
	}
	rem := total - paid
	if rem < 0 {
		return 0
	}
	return rem
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
