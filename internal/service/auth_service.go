package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/geocoder89/userdesk/internal/auth"
	"github.com/geocoder89/userdesk/internal/cache"
	"github.com/geocoder89/userdesk/internal/config"
	"github.com/geocoder89/userdesk/internal/domain/user"
	"github.com/geocoder89/userdesk/internal/security"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

const storeTimeout = 3 * time.Second

var tracer = otel.Tracer("github.com/geocoder89/userdesk/internal/service")

type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      user.User
}

type AuthService struct {
	users UserStore
	jwt   *auth.Manager
	cache cache.Store
	log   *slog.Logger
}

func NewAuthService(users UserStore, jwtManager *auth.Manager, listCache cache.Store, log *slog.Logger) *AuthService {
	if listCache == nil {
		listCache = cache.Noop{}
	}
	if log == nil {
		log = slog.Default()
	}

	return &AuthService{users: users, jwt: jwtManager, cache: listCache, log: log}
}

// Login checks credentials and issues a one-hour token. An unknown email and
// a wrong password fail the same way and take the same time.
func (s *AuthService) Login(ctx context.Context, in user.LoginInput) (AuthResult, error) {
	ctx, span := tracer.Start(ctx, "auth.Login")
	defer span.End()

	in.Email = user.NormalizeEmail(in.Email)
	if err := validateStruct(in); err != nil {
		return AuthResult{}, err
	}

	cctx, cancel := config.WithTimeoutFrom(ctx, storeTimeout)
	defer cancel()

	found, err := s.users.GetByEmail(cctx, in.Email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			security.BurnCompare(in.Password)
			return AuthResult{}, user.ErrInvalidCredentials
		}

		span.SetStatus(codes.Error, "lookup failed")
		span.RecordError(err)
		return AuthResult{}, fmt.Errorf("login: %w", err)
	}

	if err := security.CheckPassword(found.PasswordHash, in.Password); err != nil {
		return AuthResult{}, user.ErrInvalidCredentials
	}

	token, expiresAt, err := s.jwt.GenerateToken(found.ID, string(found.Role))
	if err != nil {
		span.RecordError(err)
		return AuthResult{}, fmt.Errorf("sign token: %w", err)
	}

	s.log.InfoContext(ctx, "login succeeded", "user_id", found.ID, "role", found.Role)

	return AuthResult{Token: token, ExpiresAt: expiresAt, User: found}, nil
}

// Signup registers a USER/ACTIVE record. Role and status in the input are
// ignored; only admins pick those, through UserService.Create.
func (s *AuthService) Signup(ctx context.Context, in user.CreateUserInput) (AuthResult, error) {
	ctx, span := tracer.Start(ctx, "auth.Signup")
	defer span.End()

	in.Email = user.NormalizeEmail(in.Email)
	if err := validateStruct(in); err != nil {
		return AuthResult{}, err
	}

	in.Role = nil
	in.Status = nil

	created, err := createRecord(ctx, s.users, in)
	if err != nil {
		if user.KindOf(err) == user.KindInternal {
			span.SetStatus(codes.Error, "signup failed")
			span.RecordError(err)
		}
		return AuthResult{}, err
	}

	s.cache.Invalidate(ctx)
	s.log.InfoContext(ctx, "user signed up", "user_id", created.ID)

	return AuthResult{User: created}, nil
}

// VerifyToken checks signature and expiry of a bearer token.
func (s *AuthService) VerifyToken(raw string) (*auth.Claims, error) {
	if raw == "" {
		return nil, user.ErrUnauthenticated
	}

	claims, err := s.jwt.ParseAndValidate(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid or expired token", user.ErrUnauthenticated)
	}

	return claims, nil
}

// createRecord is shared by signup and admin creation: reject a taken email,
// hash, persist.
func createRecord(ctx context.Context, users UserStore, in user.CreateUserInput) (user.User, error) {
	cctx, cancel := config.WithTimeoutFrom(ctx, storeTimeout)
	defer cancel()

	email := user.NormalizeEmail(in.Email)

	_, err := users.GetByEmail(cctx, email)
	if err == nil {
		return user.User{}, user.ErrDuplicateEmail
	}
	if !errors.Is(err, user.ErrNotFound) {
		return user.User{}, fmt.Errorf("check email: %w", err)
	}

	hash, err := security.HashPassword(in.Password)
	if err != nil {
		return user.User{}, fmt.Errorf("hash password: %w", err)
	}

	u := user.NewFromCreateInput(in, hash)

	if err := validateRecord(u); err != nil {
		return user.User{}, err
	}

	// the store enforces uniqueness too, for the race between the check and the insert
	return users.Create(cctx, u)
}
