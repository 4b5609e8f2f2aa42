package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/geocoder89/userdesk/internal/domain/user"
	"github.com/geocoder89/userdesk/internal/service"
	"github.com/gin-gonic/gin"
)

type Authenticator interface {
	Login(ctx context.Context, in user.LoginInput) (service.AuthResult, error)
	Signup(ctx context.Context, in user.CreateUserInput) (service.AuthResult, error)
}

type AuthHandler struct {
	auth Authenticator
}

func NewAuthHandler(auth Authenticator) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      user.User `json:"user"`
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req user.LoginInput

	if !BindJSON(ctx, &req) {
		return
	}

	res, err := h.auth.Login(ctx.Request.Context(), req)
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, loginResponse{
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt,
		User:      res.User,
	})
}

// SignUp registers a regular account. No token is issued; the client logs in
// afterwards.
func (h *AuthHandler) SignUp(ctx *gin.Context) {
	var req user.CreateUserInput

	if !BindJSON(ctx, &req) {
		return
	}

	res, err := h.auth.Signup(ctx.Request.Context(), req)
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"user": res.User})
}
