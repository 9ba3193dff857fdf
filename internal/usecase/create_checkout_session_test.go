package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/bilal-alaabadi/mahen-b/internal/entity"
)

func testCheckoutConfig() CheckoutConfig {
	return CheckoutConfig{
		Rates:           testRates,
		Minor:           MinorUnit{Factor: 1000, Floor: 100},
		DepositAmount:   10,
		SuccessURL:      "http://localhost:5173/SuccessRedirect",
		CancelURL:       "http://localhost:5173/cancel",
		CheckoutBaseURL: "https://uatcheckout.thawani.om",
		PublishableKey:  "pk_test",
	}
}

func newCreateUC(gw *fakeGateway, store *fakePendingStore) *CreateCheckoutSession {
	uc := NewCreateCheckoutSession(gw, store, testCheckoutConfig())
	return uc
}

func TestCreateCheckoutSession_EmptyCart(t *testing.T) {
	gw := &fakeGateway{createID: "sess_1"}
	store := newFakePendingStore()
	uc := newCreateUC(gw, store)

	_, err := uc.Execute(context.Background(), CreateCheckoutSessionInput{})

	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Nil(t, gw.createReq, "gateway must not be called")
	assert.Empty(t, store.entries, "no pending entry on validation failure")
}

func TestCreateCheckoutSession_DomesticCart(t *testing.T) {
	gw := &fakeGateway{createID: "sess_abc"}
	store := newFakePendingStore()
	uc := newCreateUC(gw, store)

	out, err := uc.Execute(context.Background(), CreateCheckoutSessionInput{
		Products: []domain.CartItem{{Name: "حناء", Price: 5, Quantity: 2}},
		Country:  "عُمان",
		Email:    "x@example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, "sess_abc", out.SessionID)
	assert.Equal(t, "https://uatcheckout.thawani.om/pay/sess_abc?key=pk_test", out.PaymentLink)

	req := gw.createReq
	require.NotNil(t, req)
	require.Len(t, req.Products, 2, "cart item plus one shipping line")
	assert.Equal(t, CheckoutLineItem{Name: "حناء", Quantity: 2, UnitAmount: 5000}, req.Products[0])
	assert.Equal(t, CheckoutLineItem{Name: "Shipping Fee", Quantity: 1, UnitAmount: 2000}, req.Products[1])

	// total = (5 * 2 + 2) OMR in minor units
	var total int64
	for _, li := range req.Products {
		total += li.UnitAmount * int64(li.Quantity)
	}
	assert.Equal(t, int64(12000), total)

	require.NotNil(t, req.Metadata.ShippingFee)
	assert.Equal(t, 2.0, *req.Metadata.ShippingFee)
	assert.Equal(t, "عُمان", req.Metadata.Country)

	// pending entry stored under the correlation id echoed in success_url
	require.Len(t, store.entries, 1)
	po, ok := store.entries[req.ClientReferenceID]
	require.True(t, ok)
	assert.Equal(t, 2.0, po.ShippingFee)
	assert.Contains(t, req.SuccessURL, "client_reference_id="+req.ClientReferenceID)
}

func TestCreateCheckoutSession_GulfSubSelection(t *testing.T) {
	gw := &fakeGateway{createID: "sess_gcc"}
	store := newFakePendingStore()
	uc := newCreateUC(gw, store)

	_, err := uc.Execute(context.Background(), CreateCheckoutSessionInput{
		Products:    []domain.CartItem{{Price: 12, Quantity: 1}},
		Country:     "دول الخليج",
		GulfCountry: "قطر",
	})
	require.NoError(t, err)

	req := gw.createReq
	assert.Equal(t, "قطر", req.Metadata.Country, "final country is the sub-selection")
	require.NotNil(t, req.Metadata.ShippingFee)
	assert.Equal(t, 7.0, *req.Metadata.ShippingFee)

	po := store.entries[req.ClientReferenceID]
	assert.Equal(t, "قطر", po.Country)
	assert.Equal(t, "قطر", po.GulfCountry)
}

func TestCreateCheckoutSession_ItemDefaults(t *testing.T) {
	gw := &fakeGateway{createID: "s"}
	uc := newCreateUC(gw, newFakePendingStore())

	_, err := uc.Execute(context.Background(), CreateCheckoutSessionInput{
		Products: []domain.CartItem{{Name: "  ", Price: 0, Quantity: 0}},
		Country:  "عُمان",
	})
	require.NoError(t, err)

	li := gw.createReq.Products[0]
	assert.Equal(t, "Product", li.Name)
	assert.Equal(t, 1, li.Quantity)
	assert.Equal(t, int64(100), li.UnitAmount, "zero price clamps to the minor-unit floor")
}

func TestCreateCheckoutSession_DepositMode(t *testing.T) {
	gw := &fakeGateway{createID: "s"}
	store := newFakePendingStore()
	uc := newCreateUC(gw, store)

	_, err := uc.Execute(context.Background(), CreateCheckoutSessionInput{
		Products: []domain.CartItem{
			{Name: "a", Price: 30, Quantity: 1},
			{Name: "b", Price: 45, Quantity: 2},
		},
		Country:     "عُمان",
		DepositMode: true,
	})
	require.NoError(t, err)

	require.Len(t, gw.createReq.Products, 1, "deposit replaces the whole cart")
	assert.Equal(t, CheckoutLineItem{Name: "Deposit Payment", Quantity: 1, UnitAmount: 10000}, gw.createReq.Products[0])

	for _, po := range store.entries {
		assert.True(t, po.DepositMode)
		assert.Len(t, po.Products, 2, "pending order keeps the full cart")
	}
}

func TestCreateCheckoutSession_UniqueCorrelationIDs(t *testing.T) {
	gw := &fakeGateway{createID: "s"}
	store := newFakePendingStore()
	uc := newCreateUC(gw, store)

	in := CreateCheckoutSessionInput{
		Products: []domain.CartItem{{Price: 1, Quantity: 1}},
		Country:  "عُمان",
	}
	_, err := uc.Execute(context.Background(), in)
	require.NoError(t, err)
	first := gw.createReq.ClientReferenceID

	_, err = uc.Execute(context.Background(), in)
	require.NoError(t, err)
	second := gw.createReq.ClientReferenceID

	assert.NotEqual(t, first, second)
	assert.Len(t, store.entries, 2)
}

func TestCreateCheckoutSession_GatewayFailureKeepsPending(t *testing.T) {
	gw := &fakeGateway{createErr: &GatewayError{Op: "create session", Status: 500, Detail: "boom"}}
	store := newFakePendingStore()
	uc := newCreateUC(gw, store)

	_, err := uc.Execute(context.Background(), CreateCheckoutSessionInput{
		Products: []domain.CartItem{{Price: 1, Quantity: 1}},
		Country:  "عُمان",
	})

	var gwErr *GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.True(t, strings.Contains(gwErr.Error(), "boom"))
	assert.Len(t, store.entries, 1, "pending entry is not rolled back")
}
