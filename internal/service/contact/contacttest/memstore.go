// Package contacttest provides an in-memory contact.Store for tests.
package contacttest

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/codecrest/codecrest_backend/internal/service/contact"
)

type MemStore struct {
	mu     sync.Mutex
	seq    int
	byID   map[string]*contact.Message
	order  []string
	broken error
}

func NewMemStore() *MemStore {
	return &MemStore{byID: make(map[string]*contact.Message)}
}

// Break makes every later call fail with err. Pass nil to heal.
func (s *MemStore) Break(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.broken = err
}

func (s *MemStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

func (s *MemStore) Insert(_ context.Context, m *contact.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.broken != nil {
		return s.broken
	}
	s.seq++
	m.ID = fmt.Sprintf("%024x", s.seq)
	cp := *m
	s.byID[m.ID] = &cp
	s.order = append(s.order, m.ID)
	return nil
}

func (s *MemStore) List(context.Context) ([]*contact.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.broken != nil {
		return nil, s.broken
	}
	out := make([]*contact.Message, 0, len(s.byID))
	for _, id := range s.order {
		if m, ok := s.byID[id]; ok {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *MemStore) Get(_ context.Context, id string) (*contact.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.broken != nil {
		return nil, s.broken
	}
	m, ok := s.byID[id]
	if !ok {
		return nil, contact.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (s *MemStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.broken != nil {
		return s.broken
	}
	if _, ok := s.byID[id]; !ok {
		return contact.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

func (s *MemStore) Ping(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.broken
}
