package usecase

import (
	"context"
	"sort"
	"time"

	domain "github.com/bilal-alaabadi/mahen-b/internal/entity"
)

type fakePendingStore struct {
	entries map[string]domain.PendingOrder
	putErr  error
	getErr  error
	deleted []string
}

func newFakePendingStore() *fakePendingStore {
	return &fakePendingStore{entries: map[string]domain.PendingOrder{}}
}

func (s *fakePendingStore) Put(_ context.Context, po domain.PendingOrder) error {
	if s.putErr != nil {
		return s.putErr
	}
	s.entries[po.CorrelationID] = po
	return nil
}

func (s *fakePendingStore) Get(_ context.Context, id string) (domain.PendingOrder, bool, error) {
	if s.getErr != nil {
		return domain.PendingOrder{}, false, s.getErr
	}
	po, ok := s.entries[id]
	return po, ok, nil
}

func (s *fakePendingStore) Delete(_ context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	delete(s.entries, id)
	return nil
}

type fakeGateway struct {
	createReq *CreateSessionRequest
	createID  string
	createErr error

	sessions []SessionSummary
	listErr  error

	details map[string]*SessionDetail
	getErr  error
}

func (g *fakeGateway) CreateSession(_ context.Context, req CreateSessionRequest) (string, error) {
	g.createReq = &req
	if g.createErr != nil {
		return "", g.createErr
	}
	return g.createID, nil
}

func (g *fakeGateway) ListSessions(_ context.Context, _, _ int) ([]SessionSummary, error) {
	if g.listErr != nil {
		return nil, g.listErr
	}
	return g.sessions, nil
}

func (g *fakeGateway) GetSession(_ context.Context, sessionID string) (*SessionDetail, error) {
	if g.getErr != nil {
		return nil, g.getErr
	}
	return g.details[sessionID], nil
}

// fakeOrderRepo implements the merge contract documented on
// usecase.OrderRepo in memory.
type fakeOrderRepo struct {
	orders    map[string]*domain.Order
	upsertErr error
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: map[string]*domain.Order{}}
}

func (r *fakeOrderRepo) Upsert(_ context.Context, o *domain.Order) (*domain.Order, error) {
	if r.upsertErr != nil {
		return nil, r.upsertErr
	}
	ex, ok := r.orders[o.OrderID]
	if !ok {
		cp := *o
		cp.CreatedAt = time.Now()
		cp.UpdatedAt = cp.CreatedAt
		r.orders[o.OrderID] = &cp
		out := cp
		return &out, nil
	}

	ex.Status = o.Status
	ex.Amount = o.Amount
	ex.ShippingFee = o.ShippingFee
	ex.PaymentSessionID = o.PaymentSessionID
	ex.PaidAt = o.PaidAt
	if len(o.Products) > 0 {
		ex.Products = o.Products
	}
	backfill(&ex.CustomerName, o.CustomerName)
	backfill(&ex.CustomerPhone, o.CustomerPhone)
	backfill(&ex.Country, o.Country)
	backfill(&ex.Wilayat, o.Wilayat)
	backfill(&ex.Description, o.Description)
	backfill(&ex.Email, o.Email)
	if ex.GiftCard == nil {
		ex.GiftCard = o.GiftCard
	}
	ex.UpdatedAt = time.Now()

	out := *ex
	return &out, nil
}

func backfill(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}

func (r *fakeOrderRepo) GetByOrderID(_ context.Context, id string) (*domain.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	out := *o
	return &out, nil
}

func (r *fakeOrderRepo) ListByEmail(_ context.Context, email string) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range r.orders {
		if o.Email == email {
			out = append(out, *o)
		}
	}
	sortOrders(out)
	return out, nil
}

func (r *fakeOrderRepo) ListByStatus(_ context.Context, status domain.Status) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range r.orders {
		if o.Status == status {
			out = append(out, *o)
		}
	}
	sortOrders(out)
	return out, nil
}

func (r *fakeOrderRepo) UpdateStatus(_ context.Context, id string, status domain.Status) (*domain.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	o.Status = status
	out := *o
	return &out, nil
}

func (r *fakeOrderRepo) Delete(_ context.Context, id string) (*domain.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	delete(r.orders, id)
	return o, nil
}

func sortOrders(out []domain.Order) {
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
}

type fakePublisher struct {
	msgs []OrderCompletedMsg
	err  error
}

func (p *fakePublisher) PublishOrderCompleted(_ context.Context, msg OrderCompletedMsg) error {
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, msg)
	return nil
}
