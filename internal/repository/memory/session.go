package memory

import (
	"context"
	"sort"
	"time"

	"go-identity-core/internal/model"
	"go-identity-core/internal/repository"
)

type sessionRepo struct {
	store *Store
}

func (r *sessionRepo) Create(ctx context.Context, session *model.Session) error {
	unlock := r.store.lock(ctx)
	defer unlock()

	r.store.sessions[session.ID] = *session
	return nil
}

func (r *sessionRepo) Save(ctx context.Context, session *model.Session) error {
	unlock := r.store.lock(ctx)
	defer unlock()

	r.store.sessions[session.ID] = *session
	return nil
}

func (r *sessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	unlock := r.store.rlock(ctx)
	defer unlock()

	s, ok := r.store.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &s, nil
}

func (r *sessionRepo) Revoke(ctx context.Context, id string, at time.Time) error {
	unlock := r.store.lock(ctx)
	defer unlock()

	s, ok := r.store.sessions[id]
	if !ok || s.RevokedAt != nil {
		return repository.ErrNotFound
	}
	revoked := at
	s.RevokedAt = &revoked
	r.store.sessions[id] = s
	return nil
}

func (r *sessionRepo) RevokeAllForUser(ctx context.Context, userID string, at time.Time) ([]*model.Session, error) {
	unlock := r.store.lock(ctx)
	defer unlock()

	var revoked []*model.Session
	for id, s := range r.store.sessions {
		if s.UserID != userID || s.RevokedAt != nil {
			continue
		}
		ts := at
		s.RevokedAt = &ts
		r.store.sessions[id] = s
		copied := s
		revoked = append(revoked, &copied)
	}
	return revoked, nil
}

func (r *sessionRepo) ListForUser(ctx context.Context, userID string) ([]*model.Session, error) {
	unlock := r.store.rlock(ctx)
	defer unlock()

	var sessions []*model.Session
	for id := range r.store.sessions {
		s := r.store.sessions[id]
		if s.UserID == userID {
			sessions = append(sessions, &s)
		}
	}
	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].IssuedAt.Equal(sessions[j].IssuedAt) {
			return sessions[i].ID < sessions[j].ID
		}
		return sessions[i].IssuedAt.Before(sessions[j].IssuedAt)
	})
	return sessions, nil
}
