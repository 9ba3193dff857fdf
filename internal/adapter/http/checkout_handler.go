package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	domain "github.com/bilal-alaabadi/mahen-b/internal/entity"
	"github.com/bilal-alaabadi/mahen-b/internal/logging"
	"github.com/bilal-alaabadi/mahen-b/internal/usecase"
)

// CheckoutHandler exposes checkout-session creation and payment
// confirmation.
type CheckoutHandler struct {
	create  *usecase.CreateCheckoutSession
	confirm *usecase.ConfirmPayment
}

func NewCheckoutHandler(create *usecase.CreateCheckoutSession, confirm *usecase.ConfirmPayment) *CheckoutHandler {
	return &CheckoutHandler{create: create, confirm: confirm}
}

type createSessionReq struct {
	Products      []domain.CartItem `json:"products"`
	Email         string            `json:"email"`
	CustomerName  string            `json:"customerName"`
	CustomerPhone string            `json:"customerPhone"`
	Country       string            `json:"country"`
	Wilayat       string            `json:"wilayat"`
	Description   string            `json:"description"`
	DepositMode   bool              `json:"depositMode"`
	GiftCard      *domain.GiftCard  `json:"giftCard"`
	GulfCountry   string            `json:"gulfCountry"`
}

type createSessionResp struct {
	ID          string `json:"id"`
	PaymentLink string `json:"paymentLink"`
}

// CreateCheckoutSession handles POST /create-checkout-session.
func (h *CheckoutHandler) CreateCheckoutSession(c *gin.Context) {
	var req createSessionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 20*time.Second)
	defer cancel()

	out, err := h.create.Execute(ctx, usecase.CreateCheckoutSessionInput{
		Products:      req.Products,
		Email:         req.Email,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		Country:       req.Country,
		Wilayat:       req.Wilayat,
		Description:   req.Description,
		DepositMode:   req.DepositMode,
		GiftCard:      req.GiftCard,
		GulfCountry:   req.GulfCountry,
	})
	if err != nil {
		logging.From(c).Error("create checkout session failed", "error", err)
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, createSessionResp{ID: out.SessionID, PaymentLink: out.PaymentLink})
}

type confirmPaymentReq struct {
	ClientReferenceID string `json:"client_reference_id"`
}

// ConfirmPayment handles POST /confirm-payment.
func (h *CheckoutHandler) ConfirmPayment(c *gin.Context) {
	var req confirmPaymentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	order, err := h.confirm.Execute(ctx, req.ClientReferenceID)
	if err != nil {
		logging.From(c).Error("confirm payment failed",
			"client_reference_id", req.ClientReferenceID, "error", err)
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}

// writeError maps the error taxonomy onto HTTP statuses.
func writeError(c *gin.Context, err error) {
	var (
		gwErr *usecase.GatewayError
		stErr *usecase.StoreError
	)
	switch {
	case errors.Is(err, usecase.ErrEmptyCart),
		errors.Is(err, usecase.ErrMissingReference),
		errors.Is(err, usecase.ErrPaymentNotCompleted):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, usecase.ErrSessionNotFound),
		errors.Is(err, usecase.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &gwErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": "gateway error", "details": gwErr.Error()})
	case errors.As(err, &stErr):
		// persistence detail stays in the logs, not the response
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
