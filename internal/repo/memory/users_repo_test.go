package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/geocoder89/userdesk/internal/domain/user"
)

func mk(id, name, email string, role user.Role, status user.Status, created time.Time) user.User {
	return user.User{
		ID: id, Name: name, Email: email, Role: role, Status: status,
		PasswordHash: "hash-" + id, CreatedAt: created, UpdatedAt: created,
	}
}

func seeded(t *testing.T) *UsersRepo {
	t.Helper()

	r := NewUsersRepo()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	records := []user.User{
		mk("a", "Ada Lovelace", "ada@example.com", user.RoleAdmin, user.StatusActive, base),
		mk("b", "Bob Stone", "bob@example.com", user.RoleUser, user.StatusActive, base.Add(time.Minute)),
		mk("c", "Cleo 100%", "cleo@example.com", user.RoleUser, user.StatusInactive, base.Add(2*time.Minute)),
		mk("d", "Dan Brown", "dan@brownmail.com", user.RoleUser, user.StatusActive, base.Add(2*time.Minute)),
	}

	for _, u := range records {
		if _, err := r.Create(context.Background(), u); err != nil {
			t.Fatalf("create %s: %v", u.ID, err)
		}
	}
	return r
}

func ids(us []user.User) []string {
	out := make([]string, 0, len(us))
	for _, u := range us {
		out = append(out, u.ID)
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestUsersRepo_ListFilterAndOrder(t *testing.T) {
	r := seeded(t)

	s := func(v string) *string { return &v }
	userRole := user.RoleUser
	active := user.StatusActive

	tests := []struct {
		name      string
		f         user.ListFilter
		wantIDs   []string
		wantTotal int
	}{
		{"all_newest_first_id_tiebreak", user.ListFilter{}, []string{"d", "c", "b", "a"}, 4},
		{"search_name_case_insensitive", user.ListFilter{Search: s("BROWN")}, []string{"d"}, 1},
		{"search_email", user.ListFilter{Search: s("example.com")}, []string{"c", "b", "a"}, 3},
		{"search_literal_percent", user.ListFilter{Search: s("100%")}, []string{"c"}, 1},
		{"role_and_status", user.ListFilter{Role: &userRole, Status: &active}, []string{"d", "b"}, 2},
		{"limit_offset", user.ListFilter{Limit: 2, Offset: 1}, []string{"c", "b"}, 4},
		{"offset_past_end", user.ListFilter{Limit: 2, Offset: 10}, []string{}, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, total, err := r.List(context.Background(), tt.f)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if total != tt.wantTotal {
				t.Fatalf("total=%d want %d", total, tt.wantTotal)
			}
			if !equal(ids(got), tt.wantIDs) {
				t.Fatalf("ids=%v want %v", ids(got), tt.wantIDs)
			}
		})
	}
}

func TestUsersRepo_CreateDuplicateEmail(t *testing.T) {
	r := seeded(t)

	_, err := r.Create(context.Background(), mk("z", "Zed", "ada@example.com", user.RoleUser, user.StatusActive, time.Now()))
	if !errors.Is(err, user.ErrDuplicateEmail) {
		t.Fatalf("expected duplicate, got %v", err)
	}
}

func TestUsersRepo_UpdateKeepsHashAndCreatedAt(t *testing.T) {
	r := seeded(t)
	ctx := context.Background()

	before, _ := r.GetByID(ctx, "b")

	changed := before
	changed.Email = "robert@example.com"
	changed.PasswordHash = ""
	changed.CreatedAt = time.Time{}

	got, err := r.Update(ctx, changed)
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if got.PasswordHash != before.PasswordHash || !got.CreatedAt.Equal(before.CreatedAt) {
		t.Fatalf("immutable fields changed: %+v", got)
	}

	if _, err := r.GetByEmail(ctx, "bob@example.com"); !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("old email should be released, got %v", err)
	}
	if u, err := r.GetByEmail(ctx, "robert@example.com"); err != nil || u.ID != "b" {
		t.Fatalf("new email lookup: %v %+v", err, u)
	}

	changed.Email = "ada@example.com"
	if _, err := r.Update(ctx, changed); !errors.Is(err, user.ErrDuplicateEmail) {
		t.Fatalf("expected duplicate, got %v", err)
	}

	changed.ID = "missing"
	changed.Email = "missing@example.com"
	if _, err := r.Update(ctx, changed); !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUsersRepo_DeleteMany(t *testing.T) {
	r := seeded(t)
	ctx := context.Background()

	n, err := r.DeleteMany(ctx, []string{"a", "c", "nope"})
	if err != nil {
		t.Fatalf("delete many: %v", err)
	}
	if n != 2 {
		t.Fatalf("deleted=%d want 2", n)
	}

	if count, _ := r.Count(ctx); count != 2 {
		t.Fatalf("count=%d want 2", count)
	}

	if err := r.Delete(ctx, "a"); !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	// email freed for reuse
	if _, err := r.Create(ctx, mk("a2", "Ada Again", "ada@example.com", user.RoleUser, user.StatusActive, time.Now())); err != nil {
		t.Fatalf("re-create: %v", err)
	}
}

func TestUsersRepo_CreateManySkipsTakenEmails(t *testing.T) {
	r := seeded(t)
	ctx := context.Background()
	now := time.Now()

	n, err := r.CreateMany(ctx, []user.User{
		mk("e", "Eve", "eve@example.com", user.RoleUser, user.StatusActive, now),
		mk("f", "Ada Again", "ada@example.com", user.RoleUser, user.StatusActive, now),
		mk("g", "Gus", "gus@example.com", user.RoleUser, user.StatusActive, now),
		mk("h", "Eve Twin", "eve@example.com", user.RoleUser, user.StatusActive, now),
	})
	if err != nil {
		t.Fatalf("create many: %v", err)
	}
	if n != 2 {
		t.Fatalf("inserted %d, want 2", n)
	}

	if total, _ := r.Count(ctx); total != 6 {
		t.Fatalf("count %d, want 6", total)
	}
	if got, _ := r.GetByEmail(ctx, "ada@example.com"); got.ID != "a" {
		t.Fatalf("existing record replaced by %q", got.ID)
	}
}
