package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	domain "github.com/bilal-alaabadi/mahen-b/internal/entity"
)

const (
	depositItemName  = "Deposit Payment"
	shippingItemName = "Shipping Fee"
	defaultItemName  = "Product"
)

type CreateCheckoutSessionInput struct {
	Products      []domain.CartItem
	Email         string
	CustomerName  string
	CustomerPhone string
	Country       string
	Wilayat       string
	Description   string
	DepositMode   bool
	GiftCard      *domain.GiftCard
	GulfCountry   string
}

type CreateCheckoutSessionOutput struct {
	SessionID   string
	PaymentLink string
}

// CheckoutConfig carries the pricing and gateway-link constants resolved
// from configuration.
type CheckoutConfig struct {
	Rates           ShippingRates
	Minor           MinorUnit
	DepositAmount   float64
	SuccessURL      string
	CancelURL       string
	CheckoutBaseURL string
	PublishableKey  string
}

// CreateCheckoutSession registers a pending order under a fresh
// correlation id and requests a payment session from the gateway.
type CreateCheckoutSession struct {
	gateway PaymentGateway
	pending PendingOrderStore
	cfg     CheckoutConfig

	newID func() string
	now   func() time.Time
}

func NewCreateCheckoutSession(gw PaymentGateway, pending PendingOrderStore, cfg CheckoutConfig) *CreateCheckoutSession {
	return &CreateCheckoutSession{
		gateway: gw,
		pending: pending,
		cfg:     cfg,
		newID:   uuid.NewString,
		now:     time.Now,
	}
}

func (uc *CreateCheckoutSession) Execute(ctx context.Context, in CreateCheckoutSessionInput) (CreateCheckoutSessionOutput, error) {
	if len(in.Products) == 0 {
		return CreateCheckoutSessionOutput{}, ErrEmptyCart
	}

	dest := domain.ResolveDestination(in.Country, in.GulfCountry)
	itemCount := ItemCount(in.Products)
	shippingFee := uc.cfg.Rates.Fee(dest, itemCount)

	lineItems := uc.buildLineItems(in.Products, in.DepositMode, shippingFee)

	correlationID := uc.newID()

	po := domain.PendingOrder{
		CorrelationID: correlationID,
		Products:      in.Products,
		Email:         in.Email,
		CustomerName:  in.CustomerName,
		CustomerPhone: in.CustomerPhone,
		Country:       dest.FinalCountry,
		Wilayat:       in.Wilayat,
		Description:   in.Description,
		DepositMode:   in.DepositMode,
		GiftCard:      in.GiftCard,
		GulfCountry:   in.GulfCountry,
		ShippingFee:   shippingFee,
		CreatedAt:     uc.now(),
	}
	if err := uc.pending.Put(ctx, po); err != nil {
		return CreateCheckoutSessionOutput{}, &StoreError{Op: "save pending order", Err: err}
	}

	fee := shippingFee
	req := CreateSessionRequest{
		ClientReferenceID: correlationID,
		Products:          lineItems,
		SuccessURL:        fmt.Sprintf("%s?client_reference_id=%s", uc.cfg.SuccessURL, correlationID),
		CancelURL:         uc.cfg.CancelURL,
		Metadata: SessionMetadata{
			Email:         in.Email,
			CustomerName:  in.CustomerName,
			CustomerPhone: in.CustomerPhone,
			Country:       dest.FinalCountry,
			Wilayat:       in.Wilayat,
			Description:   in.Description,
			GulfCountry:   in.GulfCountry,
			ShippingFee:   &fee,
		},
	}

	// The pending entry is deliberately not rolled back on gateway failure:
	// confirmation is idempotent and TTL reclaims abandoned entries.
	sessionID, err := uc.gateway.CreateSession(ctx, req)
	if err != nil {
		return CreateCheckoutSessionOutput{}, err
	}

	return CreateCheckoutSessionOutput{
		SessionID:   sessionID,
		PaymentLink: fmt.Sprintf("%s/pay/%s?key=%s", uc.cfg.CheckoutBaseURL, sessionID, uc.cfg.PublishableKey),
	}, nil
}

func (uc *CreateCheckoutSession) buildLineItems(products []domain.CartItem, depositMode bool, shippingFee float64) []CheckoutLineItem {
	if depositMode {
		return []CheckoutLineItem{{
			Name:       depositItemName,
			Quantity:   1,
			UnitAmount: uc.cfg.Minor.FromMajor(uc.cfg.DepositAmount),
		}}
	}

	items := make([]CheckoutLineItem, 0, len(products)+1)
	for _, p := range products {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			name = defaultItemName
		}
		qty := p.Quantity
		if qty <= 0 {
			qty = 1
		}
		items = append(items, CheckoutLineItem{
			Name:       name,
			Quantity:   qty,
			UnitAmount: uc.cfg.Minor.FromMajor(p.Price),
		})
	}
	items = append(items, CheckoutLineItem{
		Name:       shippingItemName,
		Quantity:   1,
		UnitAmount: uc.cfg.Minor.FromMajor(shippingFee),
	})
	return items
}
