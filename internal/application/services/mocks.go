package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pixbridge/inter-gateway/internal/application"
	"github.com/pixbridge/inter-gateway/internal/domain"
)

// MockChargeRepository is an in-memory ChargeRepository with the same
// transition semantics as the postgres implementation, including the
// event-id seen-set. Fn fields override individual methods.
type MockChargeRepository struct {
	mu      sync.Mutex
	charges map[string]*domain.Charge
	events  map[string]struct{}

	CreateFn     func(ctx context.Context, charge *domain.Charge) error
	TransitionFn func(ctx context.Context, txid string, event *domain.WebhookEvent, apply func(*domain.Charge) error) (*domain.Charge, error)
}

func NewMockChargeRepository() *MockChargeRepository {
	return &MockChargeRepository{
		charges: make(map[string]*domain.Charge),
		events:  make(map[string]struct{}),
	}
}

func (m *MockChargeRepository) Create(ctx context.Context, charge *domain.Charge) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, charge)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *charge
	m.charges[charge.TxID] = &cp
	return nil
}

func (m *MockChargeRepository) FindByTxID(ctx context.Context, txid string) (*domain.Charge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.charges[txid]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, application.ErrChargeNotFound
}

func (m *MockChargeRepository) FindByOrderID(ctx context.Context, orderID string) (*domain.Charge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.charges {
		if c.OdooOrderID == orderID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, application.ErrChargeNotFound
}

func (m *MockChargeRepository) List(ctx context.Context, limit, offset int) ([]*domain.Charge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := make([]*domain.Charge, 0, len(m.charges))
	for _, c := range m.charges {
		cp := *c
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (m *MockChargeRepository) FindExpiredPending(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Charge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Charge
	for _, c := range m.charges {
		if c.Status == domain.StatusPending && c.DueDate.Before(cutoff) {
			cp := *c
			out = append(out, &cp)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (m *MockChargeRepository) Transition(ctx context.Context, txid string, event *domain.WebhookEvent, apply func(*domain.Charge) error) (*domain.Charge, error) {
	if m.TransitionFn != nil {
		return m.TransitionFn(ctx, txid, event, apply)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	charge, ok := m.charges[txid]
	if !ok {
		return nil, application.ErrChargeNotFound
	}
	if event != nil {
		if _, seen := m.events[event.EventID]; seen {
			cp := *charge
			return &cp, application.ErrDuplicateEvent
		}
		m.events[event.EventID] = struct{}{}
	}
	if err := apply(charge); err != nil {
		cp := *charge
		return &cp, err
	}
	if event != nil {
		charge.LastEventID = &event.EventID
	}
	cp := *charge
	return &cp, nil
}

// MockCredentialRepository holds at most one credential set in memory.
type MockCredentialRepository struct {
	mu  sync.Mutex
	set *domain.CredentialSet

	ReplaceFn func(ctx context.Context, set *domain.CredentialSet) error
	ActiveFn  func(ctx context.Context) (*domain.CredentialSet, error)
}

func NewMockCredentialRepository() *MockCredentialRepository {
	return &MockCredentialRepository{}
}

func (m *MockCredentialRepository) Replace(ctx context.Context, set *domain.CredentialSet) error {
	if m.ReplaceFn != nil {
		return m.ReplaceFn(ctx, set)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	next := *set
	if m.set != nil {
		next.Version = m.set.Version + 1
	} else {
		next.Version = 1
	}
	m.set = &next
	return nil
}

func (m *MockCredentialRepository) Active(ctx context.Context) (*domain.CredentialSet, error) {
	if m.ActiveFn != nil {
		return m.ActiveFn(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.set == nil {
		return nil, application.ErrNotConfigured
	}
	cp := *m.set
	return &cp, nil
}

// MockOrderNotifier records confirmations pushed to the order system.
type MockOrderNotifier struct {
	mu    sync.Mutex
	calls []*domain.Charge
	done  chan struct{}

	PaymentConfirmedFn func(ctx context.Context, charge *domain.Charge) error
}

func NewMockOrderNotifier() *MockOrderNotifier {
	return &MockOrderNotifier{done: make(chan struct{}, 16)}
}

func (m *MockOrderNotifier) PaymentConfirmed(ctx context.Context, charge *domain.Charge) error {
	m.mu.Lock()
	m.calls = append(m.calls, charge)
	fn := m.PaymentConfirmedFn
	m.mu.Unlock()
	m.done <- struct{}{}

	if fn != nil {
		return fn(ctx, charge)
	}
	return nil
}

// Wait blocks until one notification arrives or the timeout passes.
func (m *MockOrderNotifier) Wait(timeout time.Duration) bool {
	select {
	case <-m.done:
		return true
	case <-time.After(timeout):
		return false
	}
}

func (m *MockOrderNotifier) Calls() []*domain.Charge {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.Charge(nil), m.calls...)
}
