package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/geocoder89/userdesk/internal/domain/user"
)

// UsersRepo keeps records in process memory. It backs STORE=memory and the
// service tests, and follows the same predicate and ordering as the
// postgres store.
type UsersRepo struct {
	mu      sync.RWMutex
	items   map[string]user.User // {"id": record}
	byEmail map[string]string    // {"email": id}
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		items:   make(map[string]user.User),
		byEmail: make(map[string]string),
	}
}

func (r *UsersRepo) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (r *UsersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[u.Email]; taken {
		return user.User{}, user.ErrDuplicateEmail
	}

	r.items[u.ID] = u
	r.byEmail[u.Email] = u.ID

	return u, nil
}

// CreateMany inserts every record whose email is free and reports how many
// went in.
func (r *UsersRepo) CreateMany(ctx context.Context, us []user.User) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	inserted := 0
	for _, u := range us {
		if _, taken := r.byEmail[u.Email]; taken {
			continue
		}
		r.items[u.ID] = u
		r.byEmail[u.Email] = u.ID
		inserted++
	}

	return inserted, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.items[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return r.items[id], nil
}

func (r *UsersRepo) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.items), nil
}

func (r *UsersRepo) List(ctx context.Context, f user.ListFilter) ([]user.User, int, error) {
	matched := r.match(f)
	total := len(matched)

	start := f.Offset
	if start > total {
		start = total
	}

	end := total
	if f.Limit > 0 && start+f.Limit < total {
		end = start + f.Limit
	}

	out := make([]user.User, 0, end-start)
	out = append(out, matched[start:end]...)

	return out, total, nil
}

func (r *UsersRepo) ListAll(ctx context.Context, f user.ListFilter) ([]user.User, error) {
	return r.match(f), nil
}

func (r *UsersRepo) Update(ctx context.Context, u user.User) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[u.ID]
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	if owner, taken := r.byEmail[u.Email]; taken && owner != u.ID {
		return user.User{}, user.ErrDuplicateEmail
	}

	// password and creation time are not updatable through this path
	u.PasswordHash = current.PasswordHash
	u.CreatedAt = current.CreatedAt

	delete(r.byEmail, current.Email)
	r.items[u.ID] = u
	r.byEmail[u.Email] = u.ID

	return u, nil
}

func (r *UsersRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.items[id]
	if !ok {
		return user.ErrNotFound
	}

	delete(r.items, id)
	delete(r.byEmail, u.Email)
	return nil
}

func (r *UsersRepo) DeleteMany(ctx context.Context, ids []string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	deleted := 0
	for _, id := range ids {
		u, ok := r.items[id]
		if !ok {
			continue
		}
		delete(r.items, id)
		delete(r.byEmail, u.Email)
		deleted++
	}

	return deleted, nil
}

func (r *UsersRepo) match(f user.ListFilter) []user.User {
	var needle string
	if f.Search != nil {
		needle = strings.ToLower(*f.Search)
	}

	r.mu.RLock()
	out := make([]user.User, 0, len(r.items))
	for _, u := range r.items {
		if needle != "" &&
			!strings.Contains(strings.ToLower(u.Name), needle) &&
			!strings.Contains(strings.ToLower(u.Email), needle) {
			continue
		}
		if f.Role != nil && u.Role != *f.Role {
			continue
		}
		if f.Status != nil && u.Status != *f.Status {
			continue
		}
		out = append(out, u)
	}
	r.mu.RUnlock()

	// most recent first, id as tie-break
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})

	return out
}
