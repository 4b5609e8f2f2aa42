package gql

import (
	"context"
	"log/slog"

	"github.com/geocoder89/userdesk/internal/domain/user"
)

// Error is what resolvers hand back to the executor. The code ends up in the
// response under errors[].extensions.code.
type Error struct {
	Message string
	Code    user.Kind
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": string(e.Code)}
}

// toError classifies a service error. Internal failures are logged here and
// replaced with a generic message.
func toError(ctx context.Context, log *slog.Logger, op string, err error) error {
	kind := user.KindOf(err)
	if kind == user.KindInternal {
		log.ErrorContext(ctx, "graphql resolver failed", "op", op, "err", err)
	}

	return &Error{Message: user.PublicMessage(err), Code: kind}
}
