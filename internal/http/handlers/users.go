package handlers

import (
	"context"
	"net/http"

	"github.com/geocoder89/userdesk/internal/auth"
	"github.com/geocoder89/userdesk/internal/domain/user"
	"github.com/geocoder89/userdesk/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type UserManager interface {
	List(ctx context.Context, actor *auth.Claims, in user.ListUsersInput) (user.Page, error)
	Export(ctx context.Context, actor *auth.Claims, in user.ExportUsersInput) ([]user.User, error)
	Get(ctx context.Context, actor *auth.Claims, id string) (user.User, error)
	Create(ctx context.Context, actor *auth.Claims, in user.CreateUserInput) (user.User, error)
	Update(ctx context.Context, actor *auth.Claims, id string, in user.UpdateUserInput) (user.User, error)
	Delete(ctx context.Context, actor *auth.Claims, id string) (bool, error)
	DeleteMany(ctx context.Context, actor *auth.Claims, ids []string) (user.BatchDeleteResult, error)
}

type UsersHandler struct {
	users UserManager
}

func NewUsersHandler(users UserManager) *UsersHandler {
	return &UsersHandler{users: users}
}

const (
	defaultPage  = 1
	defaultLimit = 10
)

func (h *UsersHandler) ListUsers(ctx *gin.Context) {
	in := user.ListUsersInput{Page: defaultPage, Limit: defaultLimit}

	if err := ctx.ShouldBindQuery(&in); err != nil {
		RespondBadRequest(ctx, "Invalid query parameters", gin.H{"reason": err.Error()})
		return
	}

	page, err := h.users.List(ctx.Request.Context(), middlewares.ClaimsFromContext(ctx), in)
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, page)
}

func (h *UsersHandler) ExportUsers(ctx *gin.Context) {
	var in user.ExportUsersInput

	if err := ctx.ShouldBindQuery(&in); err != nil {
		RespondBadRequest(ctx, "Invalid query parameters", gin.H{"reason": err.Error()})
		return
	}

	users, err := h.users.Export(ctx.Request.Context(), middlewares.ClaimsFromContext(ctx), in)
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{
		"users": users,
		"count": len(users),
	})
}

func (h *UsersHandler) GetUser(ctx *gin.Context) {
	u, err := h.users.Get(ctx.Request.Context(), middlewares.ClaimsFromContext(ctx), ctx.Param("id"))
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, u)
}

func (h *UsersHandler) CreateUser(ctx *gin.Context) {
	var req user.CreateUserInput

	if !BindJSON(ctx, &req) {
		return
	}

	u, err := h.users.Create(ctx.Request.Context(), middlewares.ClaimsFromContext(ctx), req)
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, u)
}

func (h *UsersHandler) UpdateUser(ctx *gin.Context) {
	var req user.UpdateUserInput

	if !BindJSON(ctx, &req) {
		return
	}

	u, err := h.users.Update(ctx.Request.Context(), middlewares.ClaimsFromContext(ctx), ctx.Param("id"), req)
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, u)
}

func (h *UsersHandler) DeleteUser(ctx *gin.Context) {
	if _, err := h.users.Delete(ctx.Request.Context(), middlewares.ClaimsFromContext(ctx), ctx.Param("id")); err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (h *UsersHandler) BatchDelete(ctx *gin.Context) {
	var req user.BatchDeleteInput

	if !BindJSON(ctx, &req) {
		return
	}

	res, err := h.users.DeleteMany(ctx.Request.Context(), middlewares.ClaimsFromContext(ctx), req.IDs)
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, res)
}
