package memory

import (
	"context"
	"sort"
	"time"

	"go-identity-core/internal/model"
	"go-identity-core/internal/repository"

	"gorm.io/gorm"
)

// meta exposes the shared lifecycle fields of a record through pointers so
// one generic repository serves User, Role and Permission alike.
type meta struct {
	id        *string
	createdAt *time.Time
	updatedAt *time.Time
	deletedAt *gorm.DeletedAt
}

func userMeta(u *model.User) meta { return meta{&u.ID, &u.CreatedAt, &u.UpdatedAt, &u.DeletedAt} }
func roleMeta(r *model.Role) meta { return meta{&r.ID, &r.CreatedAt, &r.UpdatedAt, &r.DeletedAt} }
func permissionMeta(p *model.Permission) meta {
	return meta{&p.ID, &p.CreatedAt, &p.UpdatedAt, &p.DeletedAt}
}

type entityRepo[T any] struct {
	store *Store
	table map[string]T
	meta  func(*T) meta
}

func newEntityRepo[T any](s *Store, table map[string]T, m func(*T) meta) entityRepo[T] {
	return entityRepo[T]{store: s, table: table, meta: m}
}

func (r entityRepo[T]) Create(ctx context.Context, entity *T) error {
	unlock := r.store.lock(ctx)
	defer unlock()

	now := r.store.now()
	m := r.meta(entity)
	if m.createdAt.IsZero() {
		*m.createdAt = now
	}
	*m.updatedAt = now

	r.table[*m.id] = *entity
	return nil
}

func (r entityRepo[T]) Save(ctx context.Context, entity *T) error {
	unlock := r.store.lock(ctx)
	defer unlock()

	m := r.meta(entity)
	*m.updatedAt = r.store.now()
	r.table[*m.id] = *entity
	return nil
}

func (r entityRepo[T]) FindByID(ctx context.Context, id string) (*T, error) {
	unlock := r.store.rlock(ctx)
	defer unlock()

	e, ok := r.table[id]
	if !ok || r.meta(&e).deletedAt.Valid {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

func (r entityRepo[T]) FindByIDAny(ctx context.Context, id string) (*T, error) {
	unlock := r.store.rlock(ctx)
	defer unlock()

	e, ok := r.table[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

func (r entityRepo[T]) List(ctx context.Context, q repository.ListQuery) ([]*T, int64, error) {
	q = q.Normalize()
	unlock := r.store.rlock(ctx)
	defer unlock()

	var matched []*T
	for id := range r.table {
		e := r.table[id]
		deleted := r.meta(&e).deletedAt.Valid
		switch q.Status {
		case repository.StatusActive:
			if deleted {
				continue
			}
		case repository.StatusDeleted:
			if !deleted {
				continue
			}
		}
		matched = append(matched, &e)
	}

	sort.Slice(matched, func(i, j int) bool {
		mi, mj := r.meta(matched[i]), r.meta(matched[j])
		if mi.createdAt.Equal(*mj.createdAt) {
			return *mi.id < *mj.id
		}
		return mi.createdAt.Before(*mj.createdAt)
	})

	total := int64(len(matched))
	offset := (q.Page - 1) * q.Size
	if offset >= len(matched) {
		return nil, total, nil
	}
	end := offset + q.Size
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (r entityRepo[T]) SoftDelete(ctx context.Context, id string) error {
	unlock := r.store.lock(ctx)
	defer unlock()

	e, ok := r.table[id]
	if !ok {
		return repository.ErrNotFound
	}
	m := r.meta(&e)
	if m.deletedAt.Valid {
		return repository.ErrNotFound
	}
	now := r.store.now()
	*m.deletedAt = gorm.DeletedAt{Time: now, Valid: true}
	*m.updatedAt = now
	r.table[id] = e
	return nil
}

func (r entityRepo[T]) Restore(ctx context.Context, id string) error {
	unlock := r.store.lock(ctx)
	defer unlock()

	e, ok := r.table[id]
	if !ok {
		return repository.ErrNotFound
	}
	m := r.meta(&e)
	*m.deletedAt = gorm.DeletedAt{}
	*m.updatedAt = r.store.now()
	r.table[id] = e
	return nil
}

func (r entityRepo[T]) HardDelete(ctx context.Context, id string) error {
	unlock := r.store.lock(ctx)
	defer unlock()

	if _, ok := r.table[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.table, id)
	return nil
}

type userRepo struct {
	entityRepo[model.User]
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	unlock := r.store.rlock(ctx)
	defer unlock()

	for id := range r.table {
		u := r.table[id]
		if u.Email == email && u.Active() {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *userRepo) CountActiveByEmail(ctx context.Context, email string, excludeID string) (int64, error) {
	unlock := r.store.rlock(ctx)
	defer unlock()

	var total int64
	for _, u := range r.table {
		if u.Email == email && u.Active() && u.ID != excludeID {
			total++
		}
	}
	return total, nil
}

type roleRepo struct {
	entityRepo[model.Role]
}

func (r *roleRepo) FindByName(ctx context.Context, name string) (*model.Role, error) {
	unlock := r.store.rlock(ctx)
	defer unlock()

	for id := range r.table {
		role := r.table[id]
		if role.Name == name && role.Active() {
			return &role, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *roleRepo) CountActiveByName(ctx context.Context, name string, excludeID string) (int64, error) {
	unlock := r.store.rlock(ctx)
	defer unlock()

	var total int64
	for _, role := range r.table {
		if role.Name == name && role.Active() && role.ID != excludeID {
			total++
		}
	}
	return total, nil
}

type permissionRepo struct {
	entityRepo[model.Permission]
}

func (r *permissionRepo) FindByName(ctx context.Context, name string) (*model.Permission, error) {
	unlock := r.store.rlock(ctx)
	defer unlock()

	for id := range r.table {
		p := r.table[id]
		if p.Name == name && p.Active() {
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *permissionRepo) CountActiveByName(ctx context.Context, name string, excludeID string) (int64, error) {
	unlock := r.store.rlock(ctx)
	defer unlock()

	var total int64
	for _, p := range r.table {
		if p.Name == name && p.Active() && p.ID != excludeID {
			total++
		}
	}
	return total, nil
}
