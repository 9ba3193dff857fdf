package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bilal-alaabadi/mahen-b/internal/adapter/cache"
	domain "github.com/bilal-alaabadi/mahen-b/internal/entity"
	"github.com/bilal-alaabadi/mahen-b/internal/usecase"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubGateway struct {
	sessionID string
	createErr error
	sessions  []usecase.SessionSummary
	details   map[string]*usecase.SessionDetail
}

func (g *stubGateway) CreateSession(context.Context, usecase.CreateSessionRequest) (string, error) {
	if g.createErr != nil {
		return "", g.createErr
	}
	return g.sessionID, nil
}

func (g *stubGateway) ListSessions(context.Context, int, int) ([]usecase.SessionSummary, error) {
	return g.sessions, nil
}

func (g *stubGateway) GetSession(_ context.Context, id string) (*usecase.SessionDetail, error) {
	return g.details[id], nil
}

type stubOrderRepo struct {
	orders    map[string]*domain.Order
	upsertErr error
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{orders: map[string]*domain.Order{}}
}

func (r *stubOrderRepo) Upsert(_ context.Context, o *domain.Order) (*domain.Order, error) {
	if r.upsertErr != nil {
		return nil, r.upsertErr
	}
	cp := *o
	cp.CreatedAt = time.Now()
	r.orders[o.OrderID] = &cp
	out := cp
	return &out, nil
}

func (r *stubOrderRepo) GetByOrderID(_ context.Context, id string) (*domain.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, usecase.ErrOrderNotFound
	}
	return o, nil
}

func (r *stubOrderRepo) ListByEmail(_ context.Context, email string) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range r.orders {
		if o.Email == email {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *stubOrderRepo) ListByStatus(_ context.Context, status domain.Status) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range r.orders {
		if o.Status == status {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *stubOrderRepo) UpdateStatus(_ context.Context, id string, status domain.Status) (*domain.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, usecase.ErrOrderNotFound
	}
	o.Status = status
	return o, nil
}

func (r *stubOrderRepo) Delete(_ context.Context, id string) (*domain.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, usecase.ErrOrderNotFound
	}
	delete(r.orders, id)
	return o, nil
}

func testRouter(gw usecase.PaymentGateway, repo usecase.OrderRepo) *gin.Engine {
	pending := cache.NewMemoryPendingStore(time.Hour, 100)
	minor := usecase.MinorUnit{Factor: 1000, Floor: 100}

	createUC := usecase.NewCreateCheckoutSession(gw, pending, usecase.CheckoutConfig{
		Rates:           usecase.ShippingRates{Domestic: 2, Neighbor: 4, GulfBase: 7, GulfExtraItem: 3},
		Minor:           minor,
		DepositAmount:   10,
		SuccessURL:      "http://localhost/success",
		CancelURL:       "http://localhost/cancel",
		CheckoutBaseURL: "https://checkout.example",
		PublishableKey:  "pk",
	})
	confirmUC := usecase.NewConfirmPayment(gw, pending, repo, nil, minor, 50)

	return NewRouter(NewCheckoutHandler(createUC, confirmUC), NewOrderHandler(repo))
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestCreateCheckoutSessionEndpoint(t *testing.T) {
	gw := &stubGateway{sessionID: "sess_1"}
	r := testRouter(gw, newStubOrderRepo())

	t.Run("empty cart rejected", func(t *testing.T) {
		rr := doJSON(t, r, http.MethodPost, "/api/orders/create-checkout-session",
			gin.H{"products": []any{}})

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "products array is required")
	})

	t.Run("happy path", func(t *testing.T) {
		rr := doJSON(t, r, http.MethodPost, "/api/orders/create-checkout-session", gin.H{
			"products": []gin.H{{"name": "حناء", "price": 5, "quantity": 2}},
			"country":  "عُمان",
			"email":    "x@example.com",
		})

		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		var resp struct {
			ID          string `json:"id"`
			PaymentLink string `json:"paymentLink"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "sess_1", resp.ID)
		assert.Equal(t, "https://checkout.example/pay/sess_1?key=pk", resp.PaymentLink)
	})

	t.Run("large cart passes through the logging middleware", func(t *testing.T) {
		products := make([]gin.H, 0, 40)
		for i := 0; i < 40; i++ {
			products = append(products, gin.H{
				"name":     "حناء بودر فاخرة مع نقوش تقليدية",
				"price":    5.5,
				"quantity": 2,
				"image":    []string{"https://cdn.example.com/a.jpg", "https://cdn.example.com/b.jpg"},
				"measurements": gin.H{
					"الطول": "200 سم", "العرض": "150 سم", "الوزن": "500 غرام",
				},
			})
		}
		body := gin.H{"products": products, "country": "عُمان", "email": "x@example.com"}

		raw, err := json.Marshal(body)
		require.NoError(t, err)
		require.Greater(t, len(raw), 8*1024, "payload must exceed the log cap")

		rr := doJSON(t, r, http.MethodPost, "/api/orders/create-checkout-session", body)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.Contains(t, rr.Body.String(), "sess_1")
	})

	t.Run("gateway failure maps to 502", func(t *testing.T) {
		bad := &stubGateway{createErr: &usecase.GatewayError{Op: "create session", Status: 500, Detail: "down"}}
		r := testRouter(bad, newStubOrderRepo())

		rr := doJSON(t, r, http.MethodPost, "/api/orders/create-checkout-session", gin.H{
			"products": []gin.H{{"price": 1, "quantity": 1}},
			"country":  "عُمان",
		})
		assert.Equal(t, http.StatusBadGateway, rr.Code)
	})
}

func TestConfirmPaymentEndpoint(t *testing.T) {
	gw := &stubGateway{
		sessions: []usecase.SessionSummary{{SessionID: "s1", ClientReferenceID: "ref-1"}},
		details: map[string]*usecase.SessionDetail{
			"s1": {
				SessionID:         "s1",
				ClientReferenceID: "ref-1",
				PaymentStatus:     usecase.PaymentStatusPaid,
				TotalAmount:       7000,
				Metadata:          usecase.SessionMetadata{Email: "x@example.com"},
			},
		},
	}
	repo := newStubOrderRepo()
	r := testRouter(gw, repo)

	t.Run("missing reference", func(t *testing.T) {
		rr := doJSON(t, r, http.MethodPost, "/api/orders/confirm-payment", gin.H{})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("unknown reference", func(t *testing.T) {
		rr := doJSON(t, r, http.MethodPost, "/api/orders/confirm-payment",
			gin.H{"client_reference_id": "nope"})
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("happy path", func(t *testing.T) {
		rr := doJSON(t, r, http.MethodPost, "/api/orders/confirm-payment",
			gin.H{"client_reference_id": "ref-1"})

		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		var resp struct {
			Order domain.Order `json:"order"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "ref-1", resp.Order.OrderID)
		assert.Equal(t, 7.0, resp.Order.Amount)
		assert.Equal(t, domain.StatusCompleted, resp.Order.Status)
	})

	t.Run("persistence failure hides detail", func(t *testing.T) {
		failing := newStubOrderRepo()
		failing.upsertErr = &usecase.StoreError{Op: "upsert order", Err: assert.AnError}
		r := testRouter(gw, failing)

		rr := doJSON(t, r, http.MethodPost, "/api/orders/confirm-payment",
			gin.H{"client_reference_id": "ref-1"})

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Contains(t, rr.Body.String(), "internal error")
		assert.NotContains(t, rr.Body.String(), "upsert")
	})
}

func TestOrderEndpoints(t *testing.T) {
	repo := newStubOrderRepo()
	repo.orders["o1"] = &domain.Order{
		OrderID: "o1",
		Email:   "x@example.com",
		Status:  domain.StatusCompleted,
		Amount:  12,
	}
	r := testRouter(&stubGateway{}, repo)

	t.Run("get by id", func(t *testing.T) {
		rr := doJSON(t, r, http.MethodGet, "/api/orders/order/o1", nil)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"orderId":"o1"`)
	})

	t.Run("get by id not found", func(t *testing.T) {
		rr := doJSON(t, r, http.MethodGet, "/api/orders/order/missing", nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("get by email", func(t *testing.T) {
		rr := doJSON(t, r, http.MethodGet, "/api/orders/email/x@example.com", nil)
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("update status", func(t *testing.T) {
		rr := doJSON(t, r, http.MethodPatch, "/api/orders/update-order-status/o1",
			gin.H{"status": "shipped"})
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, domain.StatusShipped, repo.orders["o1"].Status)
	})

	t.Run("update status missing body", func(t *testing.T) {
		rr := doJSON(t, r, http.MethodPatch, "/api/orders/update-order-status/o1", gin.H{})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("delete", func(t *testing.T) {
		rr := doJSON(t, r, http.MethodDelete, "/api/orders/delete-order/o1", nil)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.NotContains(t, repo.orders, "o1")
	})

	t.Run("list completed now empty", func(t *testing.T) {
		rr := doJSON(t, r, http.MethodGet, "/api/orders", nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
