// Package memory keeps alerts and their acknowledgment ledger in process memory. A single mutex
// serializes every mutation, so acknowledgment appends and alert deletes never interleave.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aresconnect/ares-connect-backend/internal/acknowledgments"
	"github.com/aresconnect/ares-connect-backend/internal/alerts"
	"github.com/aresconnect/ares-connect-backend/internal/repo"
	"github.com/aresconnect/ares-connect-backend/pkg/db/models"
)

var (
	_ alerts.Repository          = (*Store)(nil)
	_ acknowledgments.Repository = (*Store)(nil)
)

type entry struct {
	alert models.Alert
	acks  []models.AlertAcknowledgment
}

// Store is safe for concurrent use. Returned values are copies.
type Store struct {
	mu      sync.RWMutex
	alerts  map[uuid.UUID]*entry
	byGroup map[uuid.UUID][]uuid.UUID
}

func New() *Store {
	return &Store{
		alerts:  make(map[uuid.UUID]*entry),
		byGroup: make(map[uuid.UUID][]uuid.UUID),
	}
}

func (s *Store) ListByGroup(ctx context.Context, groupID uuid.UUID) ([]models.Alert, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byGroup[groupID]
	out := make([]models.Alert, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.alerts[id].snapshot())
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) FindByID(ctx context.Context, alertID uuid.UUID) (*models.Alert, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.alerts[alertID]
	if !ok {
		return nil, repo.ErrNotFound
	}
	alert := e.snapshot()
	return &alert, nil
}

func (s *Store) Create(ctx context.Context, alert *models.Alert) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *alert
	stored.Acknowledgments = nil
	s.alerts[stored.ID] = &entry{alert: stored}
	s.byGroup[stored.GroupID] = append(s.byGroup[stored.GroupID], stored.ID)
	return nil
}

func (s *Store) Update(ctx context.Context, alertID uuid.UUID, changes alerts.Changes, now time.Time) (*models.Alert, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.alerts[alertID]
	if !ok {
		return nil, repo.ErrNotFound
	}
	changes.Apply(&e.alert)
	e.alert.UpdatedAt = now
	alert := e.snapshot()
	return &alert, nil
}

func (s *Store) Delete(ctx context.Context, alertID uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.alerts[alertID]
	if !ok {
		return repo.ErrNotFound
	}
	delete(s.alerts, alertID)

	ids := s.byGroup[e.alert.GroupID]
	for i, id := range ids {
		if id == alertID {
			ids = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	if len(ids) == 0 {
		delete(s.byGroup, e.alert.GroupID)
	} else {
		s.byGroup[e.alert.GroupID] = ids
	}
	return nil
}

func (s *Store) Append(ctx context.Context, ack models.AlertAcknowledgment) (acknowledgments.AppendResult, error) {
	if err := ctx.Err(); err != nil {
		return acknowledgments.AppendResult{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.alerts[ack.AlertID]
	if !ok {
		return acknowledgments.AppendResult{}, repo.ErrNotFound
	}
	for _, existing := range e.acks {
		if existing.UserID == ack.UserID {
			return acknowledgments.AppendResult{Acknowledgment: existing, GroupID: e.alert.GroupID}, nil
		}
	}

	// keep the ledger chronological even when client timestamps arrive out of order
	idx := sort.Search(len(e.acks), func(i int) bool {
		return e.acks[i].AcknowledgedAt.After(ack.AcknowledgedAt)
	})
	e.acks = append(e.acks, models.AlertAcknowledgment{})
	copy(e.acks[idx+1:], e.acks[idx:])
	e.acks[idx] = ack

	return acknowledgments.AppendResult{Acknowledgment: ack, Applied: true, GroupID: e.alert.GroupID}, nil
}

func (s *Store) ListForAlert(ctx context.Context, alertID uuid.UUID) ([]models.AlertAcknowledgment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.alerts[alertID]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return e.ledger(), nil
}

func (s *Store) Exists(ctx context.Context, alertID, userID uuid.UUID) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.alerts[alertID]
	if !ok {
		return false, repo.ErrNotFound
	}
	for _, ack := range e.acks {
		if ack.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) Count(ctx context.Context, alertID uuid.UUID) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.alerts[alertID]
	if !ok {
		return 0, repo.ErrNotFound
	}
	return len(e.acks), nil
}

func (e *entry) ledger() []models.AlertAcknowledgment {
	out := make([]models.AlertAcknowledgment, len(e.acks))
	copy(out, e.acks)
	return out
}

func (e *entry) snapshot() models.Alert {
	alert := e.alert
	alert.Acknowledgments = e.ledger()
	return alert
}
