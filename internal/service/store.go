package service

import (
	"context"

	"github.com/geocoder89/userdesk/internal/domain/user"
)

// UserStore is the credential store both services read and write. The
// postgres and memory repos satisfy it.
type UserStore interface {
	Create(ctx context.Context, u user.User) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	List(ctx context.Context, f user.ListFilter) ([]user.User, int, error)
	ListAll(ctx context.Context, f user.ListFilter) ([]user.User, error)
	Update(ctx context.Context, u user.User) (user.User, error)
	Delete(ctx context.Context, id string) error
	DeleteMany(ctx context.Context, ids []string) (int, error)
}
