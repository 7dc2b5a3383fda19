package admin

import (
	"context"
	"sync"

	"github.com/compleetvloeren/compleetkozijnen-premium-presentatie-sub001/internal/audit"
	"github.com/compleetvloeren/compleetkozijnen-premium-presentatie-sub001/internal/domain"
)

type memLeads struct {
	mu      sync.Mutex
	items   []domain.Lead
	listErr error
	opErr   error
}

func (m *memLeads) List(_ context.Context, limit int) ([]domain.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := append([]domain.Lead(nil), m.items...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memLeads) Get(_ context.Context, id string) (*domain.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].ID == id {
			l := m.items[i]
			return &l, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memLeads) UpdateStatus(_ context.Context, id, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.opErr != nil {
		return m.opErr
	}
	for i := range m.items {
		if m.items[i].ID == id {
			m.items[i].Status = status
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *memLeads) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.opErr != nil {
		return m.opErr
	}
	for i := range m.items {
		if m.items[i].ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

type memContacts struct {
	mu      sync.Mutex
	items   []domain.ContactSubmission
	listErr error
}

func (m *memContacts) List(_ context.Context, limit int) ([]domain.ContactSubmission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := append([]domain.ContactSubmission(nil), m.items...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memContacts) Get(_ context.Context, id string) (*domain.ContactSubmission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].ID == id {
			c := m.items[i]
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memContacts) UpdateStatus(_ context.Context, id, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].ID == id {
			m.items[i].Status = status
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *memContacts) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

type memProfiles struct {
	profiles map[string]*domain.Profile
	err      error
}

func (m *memProfiles) Get(_ context.Context, id string) (*domain.Profile, error) {
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.profiles[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

type recAudit struct {
	mu      sync.Mutex
	entries []audit.Entry
}

func (r *recAudit) Write(_ context.Context, e audit.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
	return nil
}
