package handler_test

import (
	"context"
	"sync"
	"time"

	"kekspay-gateway/internal/core/domain"
)

// memoryOrderStore is an in-process order store with the same optimistic
// version check as the PostgreSQL one.
type memoryOrderStore struct {
	mu     sync.Mutex
	orders map[int64]*domain.Order
	nextID int64
}

func newMemoryOrderStore(orders ...*domain.Order) *memoryOrderStore {
	s := &memoryOrderStore{orders: make(map[int64]*domain.Order)}
	for _, o := range orders {
		s.orders[o.ID] = o
	}
	return s
}

func (s *memoryOrderStore) GetByID(_ context.Context, id int64) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, nil
	}
	return cloneOrder(o), nil
}

func (s *memoryOrderStore) Save(_ context.Context, o *domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.orders[o.ID]
	if !ok || stored.Version != o.Version {
		return domain.ErrOrderConflict
	}

	now := time.Now().UTC()
	for _, content := range o.PendingNotes() {
		s.nextID++
		o.Notes = append(o.Notes, domain.OrderNote{ID: s.nextID, OrderID: o.ID, Content: content, CreatedAt: now})
	}
	o.ClearPendingNotes()
	o.Version++
	o.UpdatedAt = now
	s.orders[o.ID] = cloneOrder(o)
	return nil
}

func (s *memoryOrderStore) notes(id int64) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []string
	for _, n := range s.orders[id].Notes {
		out = append(out, n.Content)
	}
	return out
}

func cloneOrder(o *domain.Order) *domain.Order {
	cp := *o
	cp.Meta = make(map[string]string, len(o.Meta))
	for k, v := range o.Meta {
		cp.Meta[k] = v
	}
	cp.Notes = append([]domain.OrderNote(nil), o.Notes...)
	return &cp
}

// memorySettingsStore holds the single sealed settings row.
type memorySettingsStore struct {
	mu       sync.Mutex
	settings *domain.Settings
}

func (s *memorySettingsStore) Get(context.Context) (*domain.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.settings == nil {
		return nil, nil
	}
	cp := *s.settings
	return &cp, nil
}

func (s *memorySettingsStore) Save(_ context.Context, settings *domain.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *settings
	s.settings = &cp
	return nil
}

// memoryAuditStore collects audit entries written by the async audit service.
type memoryAuditStore struct {
	mu      sync.Mutex
	entries []domain.AuditLog
}

func (s *memoryAuditStore) Create(_ context.Context, entry *domain.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, *entry)
	return nil
}

func (s *memoryAuditStore) actions() []domain.AuditAction {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.AuditAction, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.Action)
	}
	return out
}
