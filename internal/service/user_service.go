package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/geocoder89/userdesk/internal/auth"
	"github.com/geocoder89/userdesk/internal/cache"
	"github.com/geocoder89/userdesk/internal/config"
	"github.com/geocoder89/userdesk/internal/domain/user"
	"github.com/geocoder89/userdesk/internal/observability"
	"github.com/geocoder89/userdesk/internal/utils"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type UserService struct {
	users UserStore
	cache cache.Store
	prom  *observability.Prom
	log   *slog.Logger
}

func NewUserService(users UserStore, listCache cache.Store, prom *observability.Prom, log *slog.Logger) *UserService {
	if listCache == nil {
		listCache = cache.Noop{}
	}
	if log == nil {
		log = slog.Default()
	}

	return &UserService{users: users, cache: listCache, prom: prom, log: log}
}

// List returns one page of records matching the search/role/status
// predicate, newest first. Any authenticated caller may list.
func (s *UserService) List(ctx context.Context, actor *auth.Claims, in user.ListUsersInput) (user.Page, error) {
	ctx, span := tracer.Start(ctx, "users.List")
	defer span.End()

	if err := requireAuth(actor); err != nil {
		return user.Page{}, err
	}

	if err := validateStruct(in); err != nil {
		return user.Page{}, err
	}

	filter := user.ListFilter{
		Search: normalizeSearch(in.Search),
		Role:   in.Role,
		Status: in.Status,
		Limit:  in.Limit,
		Offset: (in.Page - 1) * in.Limit,
	}

	key := utils.BuildUsersListCacheKey(in.Page, filter)

	var page user.Page
	if s.cached(ctx, key, &page) {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return page, nil
	}

	ver, cacheable := s.cache.Version(ctx)

	cctx, cancel := config.WithTimeoutFrom(ctx, storeTimeout)
	defer cancel()

	users, total, err := s.users.List(cctx, filter)
	if err != nil {
		return user.Page{}, s.fail(span, err)
	}

	page = user.Page{
		Users:       users,
		TotalCount:  total,
		TotalPages:  user.TotalPages(total, in.Limit),
		CurrentPage: in.Page,
	}

	if cacheable {
		s.store(ctx, key, page, ver)
	}
	span.SetAttributes(attribute.Int("users.total", total))

	return page, nil
}

// Export returns every record matching the predicate, unpaginated, in
// listing order. Same authorization as List.
func (s *UserService) Export(ctx context.Context, actor *auth.Claims, in user.ExportUsersInput) ([]user.User, error) {
	ctx, span := tracer.Start(ctx, "users.Export")
	defer span.End()

	if err := requireAuth(actor); err != nil {
		return nil, err
	}

	if err := validateStruct(in); err != nil {
		return nil, err
	}

	filter := user.ListFilter{
		Search: normalizeSearch(in.Search),
		Role:   in.Role,
		Status: in.Status,
	}

	key := utils.BuildUsersListCacheKey(0, filter)

	var users []user.User
	if s.cached(ctx, key, &users) {
		return users, nil
	}

	ver, cacheable := s.cache.Version(ctx)

	cctx, cancel := config.WithTimeoutFrom(ctx, storeTimeout)
	defer cancel()

	users, err := s.users.ListAll(cctx, filter)
	if err != nil {
		return nil, s.fail(span, err)
	}

	if cacheable {
		s.store(ctx, key, users, ver)
	}
	span.SetAttributes(attribute.Int("users.exported", len(users)))

	return users, nil
}

// Get looks up a single record. Admin only.
func (s *UserService) Get(ctx context.Context, actor *auth.Claims, id string) (user.User, error) {
	ctx, span := tracer.Start(ctx, "users.Get")
	defer span.End()

	if err := requireAdmin(actor); err != nil {
		return user.User{}, err
	}

	return s.get(ctx, span, id)
}

// Me returns the caller's own record.
func (s *UserService) Me(ctx context.Context, actor *auth.Claims) (user.User, error) {
	ctx, span := tracer.Start(ctx, "users.Me")
	defer span.End()

	if err := requireAuth(actor); err != nil {
		return user.User{}, err
	}

	return s.get(ctx, span, actor.UserID())
}

func (s *UserService) Create(ctx context.Context, actor *auth.Claims, in user.CreateUserInput) (user.User, error) {
	ctx, span := tracer.Start(ctx, "users.Create")
	defer span.End()

	if err := requireAdmin(actor); err != nil {
		return user.User{}, err
	}

	in.Email = user.NormalizeEmail(in.Email)
	if err := validateStruct(in); err != nil {
		return user.User{}, err
	}

	created, err := createRecord(ctx, s.users, in)
	if err != nil {
		return user.User{}, s.fail(span, err)
	}

	s.cache.Invalidate(ctx)
	s.log.InfoContext(ctx, "user created", "user_id", created.ID, "by", actor.UserID())

	return created, nil
}

// Update applies a partial update and re-validates the merged record before
// writing it.
func (s *UserService) Update(ctx context.Context, actor *auth.Claims, id string, in user.UpdateUserInput) (user.User, error) {
	ctx, span := tracer.Start(ctx, "users.Update")
	defer span.End()

	if err := requireAdmin(actor); err != nil {
		return user.User{}, err
	}

	if in.Email != nil {
		email := user.NormalizeEmail(*in.Email)
		in.Email = &email
	}
	if err := validateStruct(in); err != nil {
		return user.User{}, err
	}

	current, err := s.get(ctx, span, id)
	if err != nil {
		return user.User{}, err
	}

	if in.Empty() {
		return current, nil
	}

	merged := in.Apply(current)
	merged.Email = user.NormalizeEmail(merged.Email)

	if err := validateRecord(merged); err != nil {
		return user.User{}, err
	}

	cctx, cancel := config.WithTimeoutFrom(ctx, storeTimeout)
	defer cancel()

	updated, err := s.users.Update(cctx, merged)
	if err != nil {
		return user.User{}, s.fail(span, err)
	}

	s.cache.Invalidate(ctx)
	s.log.InfoContext(ctx, "user updated", "user_id", id, "by", actor.UserID())

	return updated, nil
}

func (s *UserService) Delete(ctx context.Context, actor *auth.Claims, id string) (bool, error) {
	ctx, span := tracer.Start(ctx, "users.Delete")
	defer span.End()

	if err := requireAdmin(actor); err != nil {
		return false, err
	}

	if !utils.IsUUID(id) {
		return false, user.ErrNotFound
	}

	cctx, cancel := config.WithTimeoutFrom(ctx, storeTimeout)
	defer cancel()

	if err := s.users.Delete(cctx, id); err != nil {
		return false, s.fail(span, err)
	}

	s.cache.Invalidate(ctx)
	s.log.InfoContext(ctx, "user deleted", "user_id", id, "by", actor.UserID())

	return true, nil
}

// DeleteMany removes every listed record in one store call. A partial match
// still succeeds; the shortfall is logged and reported in the result.
func (s *UserService) DeleteMany(ctx context.Context, actor *auth.Claims, ids []string) (user.BatchDeleteResult, error) {
	ctx, span := tracer.Start(ctx, "users.DeleteMany")
	defer span.End()

	if err := requireAdmin(actor); err != nil {
		return user.BatchDeleteResult{}, err
	}

	if len(ids) == 0 {
		return user.BatchDeleteResult{}, fmt.Errorf("%w: no user IDs provided", user.ErrInvalidInput)
	}

	unique := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	// ids that are not uuids cannot name a record
	candidates := make([]string, 0, len(unique))
	for _, id := range unique {
		if utils.IsUUID(id) {
			candidates = append(candidates, id)
		}
	}

	result := user.BatchDeleteResult{Requested: len(unique)}

	if len(candidates) > 0 {
		cctx, cancel := config.WithTimeoutFrom(ctx, storeTimeout)
		defer cancel()

		deleted, err := s.users.DeleteMany(cctx, candidates)
		if err != nil {
			return user.BatchDeleteResult{}, s.fail(span, err)
		}
		result.Deleted = deleted
	}

	if result.Deleted == 0 {
		return result, fmt.Errorf("%w: no users found with the provided IDs", user.ErrNotFound)
	}

	s.cache.Invalidate(ctx)

	if result.Deleted < result.Requested {
		s.log.WarnContext(ctx, "batch delete removed fewer users than requested",
			"requested", result.Requested,
			"deleted", result.Deleted,
			"by", actor.UserID(),
		)
	} else {
		s.log.InfoContext(ctx, "users deleted", "count", result.Deleted, "by", actor.UserID())
	}

	span.SetAttributes(attribute.Int("users.requested", result.Requested), attribute.Int("users.deleted", result.Deleted))

	return result, nil
}

func (s *UserService) get(ctx context.Context, span trace.Span, id string) (user.User, error) {
	if !utils.IsUUID(id) {
		return user.User{}, user.ErrNotFound
	}

	cctx, cancel := config.WithTimeoutFrom(ctx, storeTimeout)
	defer cancel()

	u, err := s.users.GetByID(cctx, id)
	if err != nil {
		return user.User{}, s.fail(span, err)
	}
	return u, nil
}

// fail marks the span for unclassified errors and passes err through.
func (s *UserService) fail(span trace.Span, err error) error {
	if user.KindOf(err) == user.KindInternal {
		span.SetStatus(codes.Error, "store failure")
		span.RecordError(err)
	}
	return err
}

func (s *UserService) cached(ctx context.Context, key string, out interface{}) bool {
	raw, ok := s.cache.Get(ctx, key)
	if !ok {
		s.prom.ObserveCache("miss")
		return false
	}

	if err := json.Unmarshal(raw, out); err != nil {
		s.prom.ObserveCache("error")
		s.log.WarnContext(ctx, "dropping unreadable cache entry", "key", key, "err", err)
		return false
	}

	s.prom.ObserveCache("hit")
	return true
}

// store writes val under the version taken before the store read.
func (s *UserService) store(ctx context.Context, key string, val interface{}, ver uint64) {
	raw, err := json.Marshal(val)
	if err != nil {
		s.log.WarnContext(ctx, "could not encode cache entry", "key", key, "err", err)
		return
	}
	s.cache.Set(ctx, key, raw, ver)
}
