package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/geocoder89/userdesk/internal/domain/user"
	"github.com/gin-gonic/gin"
)

type APIError struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"requestId,omitempty"`
	Details   interface{} `json:"details,omitempty"`
}

func requestIDFrom(ctx *gin.Context) string {
	v, ok := ctx.Get("request_id")

	if ok {
		s, ok := v.(string)
		if ok && s != "" {
			return s
		}
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}

func RespondError(ctx *gin.Context, status int, code, message string, details interface{}) {
	ctx.JSON(status, gin.H{
		"error": APIError{
			Code:      code,
			Message:   message,
			RequestID: requestIDFrom(ctx),
			Details:   details,
		},
	})
}

func RespondBadRequest(ctx *gin.Context, message string, details interface{}) {
	RespondError(ctx, http.StatusBadRequest, string(user.KindInvalidInput), message, details)
}

func RespondUnAuthorized(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusUnauthorized, code, message, nil)
}

func RespondForbidden(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusForbidden, string(user.KindForbidden), message, nil)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, string(user.KindNotFound), message, nil)
}

func RespondInternal(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusInternalServerError, string(user.KindInternal), message, nil)
}

func RespondConflict(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusConflict, code, message, nil)
}

// RespondServiceError maps a service error onto the status and code for its
// kind. Internal errors are logged and never shown to the caller.
func RespondServiceError(ctx *gin.Context, err error) {
	kind := user.KindOf(err)

	switch kind {
	case user.KindUnauthenticated, user.KindInvalidCredentials:
		RespondUnAuthorized(ctx, string(kind), err.Error())
	case user.KindForbidden:
		RespondForbidden(ctx, err.Error())
	case user.KindInvalidInput:
		RespondBadRequest(ctx, "Invalid request", validationDetails(err))
	case user.KindNotFound:
		RespondNotFound(ctx, err.Error())
	case user.KindDuplicateEmail:
		RespondConflict(ctx, string(kind), err.Error())
	default:
		_ = ctx.Error(err)
		slog.Default().ErrorContext(ctx.Request.Context(), "request failed",
			"route", ctx.FullPath(),
			"request_id", requestIDFrom(ctx),
			"err", err,
		)
		RespondInternal(ctx, user.PublicMessage(err))
	}
}

// validationDetails reports per-field failures when the service produced
// them, and otherwise the wrapped reason as a single message.
func validationDetails(err error) interface{} {
	var ve *user.ValidationError
	if errors.As(err, &ve) {
		return gin.H{"fields": ve.Fields}
	}

	msg := err.Error()
	prefix := user.ErrInvalidInput.Error() + ": "

	if !strings.HasPrefix(msg, prefix) || errors.Unwrap(err) == nil {
		return nil
	}

	return gin.H{"messages": strings.Split(strings.TrimPrefix(msg, prefix), "; ")}
}
