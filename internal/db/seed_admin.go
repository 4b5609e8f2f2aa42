package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/geocoder89/userdesk/internal/config"
	"github.com/geocoder89/userdesk/internal/domain/user"
	"github.com/geocoder89/userdesk/internal/security"
	"github.com/google/uuid"
)

// Seeder is the part of the user store seeding needs.
type Seeder interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
	Create(ctx context.Context, u user.User) (user.User, error)
	CreateMany(ctx context.Context, us []user.User) (int, error)
	Count(ctx context.Context) (int, error)
}

// EnsureAdminUser creates the configured admin account when no record has
// that email yet.
func EnsureAdminUser(ctx context.Context, store Seeder, cfg config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	email := user.NormalizeEmail(cfg.AdminEmail)

	_, err := store.GetByEmail(ctx, email)
	if err == nil {
		return nil
	}

	if !errors.Is(err, user.ErrNotFound) {
		return err
	}

	hash, err := security.HashPassword(cfg.AdminPassword)

	if err != nil {
		return err
	}

	name := strings.TrimSpace(cfg.AdminName)
	if name == "" {
		name = "Administrator"
	}

	now := time.Now().UTC()

	_, err = store.Create(ctx, user.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         user.RoleAdmin,
		Status:       user.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	})

	if errors.Is(err, user.ErrDuplicateEmail) {
		// another instance won the race
		return nil
	}

	return err
}

const (
	seedBatchSize     = 25
	seedSkipThreshold = 10
	demoPassword      = "password123"
)

var (
	demoFirstNames = []string{"Ava", "Liam", "Mia", "Noah", "Zoe", "Ethan", "Isla", "Lucas", "Maya", "Omar", "Priya", "Kenji"}
	demoLastNames  = []string{"Garcia", "Smith", "Okafor", "Tanaka", "Novak", "Silva", "Khan", "Muller", "Rossi", "Dubois"}
	demoLocations  = []string{"New York, USA", "London, UK", "Tokyo, Japan", "Paris, France", "Lagos, Nigeria", "Berlin, Germany", "Toronto, Canada", "Sydney, Australia"}
)

// SeedDemoUsers fills an almost empty store with n generated accounts, one in
// ten ADMIN and roughly seven in ten ACTIVE, written seedBatchSize records
// per store call. Emails already present are skipped. All share a single
// bcrypt hash of demoPassword.
func SeedDemoUsers(ctx context.Context, store Seeder, n int, log *slog.Logger) (int, error) {
	if n <= 0 {
		return 0, nil
	}
	if log == nil {
		log = slog.Default()
	}

	existing, err := store.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	if existing > seedSkipThreshold {
		log.InfoContext(ctx, "demo seed skipped", "existing", existing)
		return 0, nil
	}

	hash, err := security.HashPassword(demoPassword)
	if err != nil {
		return 0, err
	}

	base := time.Now().UTC()
	created := 0

	for start := 0; start < n; start += seedBatchSize {
		end := start + seedBatchSize
		if end > n {
			end = n
		}

		batch := make([]user.User, 0, end-start)
		for i := start; i < end; i++ {
			batch = append(batch, demoUser(i, hash, base))
		}

		inserted, err := store.CreateMany(ctx, batch)
		created += inserted
		if err != nil {
			return created, fmt.Errorf("seed users %d-%d: %w", start, end-1, err)
		}

		log.DebugContext(ctx, "demo seed batch", "done", end, "of", n, "inserted", inserted)
	}

	log.InfoContext(ctx, "demo users seeded", "count", created)
	return created, nil
}

func demoUser(i int, hash string, base time.Time) user.User {
	first := demoFirstNames[i%len(demoFirstNames)]
	last := demoLastNames[(i/len(demoFirstNames))%len(demoLastNames)]

	role := user.RoleUser
	if i%10 == 0 {
		role = user.RoleAdmin
	}

	status := user.StatusActive
	if i%10 >= 7 {
		status = user.StatusInactive
	}

	location := demoLocations[i%len(demoLocations)]

	// spread creation times so listings have a stable, realistic order
	created := base.Add(-time.Duration(i) * time.Hour)

	return user.User{
		ID:           uuid.NewString(),
		Name:         first + " " + last,
		Email:        fmt.Sprintf("%s.%s.%d@demo.userdesk.dev", strings.ToLower(first), strings.ToLower(last), i),
		PasswordHash: hash,
		Role:         role,
		Status:       status,
		Location:     &location,
		CreatedAt:    created,
		UpdatedAt:    created,
	}
}
