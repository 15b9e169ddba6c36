package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/speakwise/speakwise/internal/auth"
	"github.com/speakwise/speakwise/internal/config"
	"github.com/speakwise/speakwise/internal/domain/user"
	"github.com/speakwise/speakwise/internal/http/middlewares"
	"github.com/speakwise/speakwise/internal/security"
)

// CredentialStore is what signup and login need from the user store.
type CredentialStore interface {
	Create(ctx context.Context, email, username, passwordHash string) (user.User, error)
	GetByUsernameOrEmail(ctx context.Context, username, email string) (user.User, error)
}

type AuthHandler struct {
	users  CredentialStore
	tokens *auth.Manager
	cfg    config.Config
}

func NewAuthHandler(users CredentialStore, tokens *auth.Manager, cfg config.Config) *AuthHandler {
	return &AuthHandler{
		users:  users,
		tokens: tokens,
		cfg:    cfg,
	}
}

type SignUpRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email" binding:"omitempty,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) SignUp(ctx *gin.Context) {
	var req SignUpRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	// Fast-path existence check. The unique indexes are the actual
	// guarantee: a concurrent signup that slips past this still fails the
	// insert with the same ErrExists.
	_, err := h.users.GetByUsernameOrEmail(cctx, req.Username, req.Email)

	if err == nil {
		RespondBadRequest(ctx, "User already exists", nil)
		return
	}

	if !errors.Is(err, user.ErrNotFound) {
		RespondInternal(ctx, err.Error())
		return
	}

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		RespondInternal(ctx, "Could not create user")
		return
	}

	u, err := h.users.Create(cctx, req.Email, req.Username, hash)

	if err != nil {
		if errors.Is(err, user.ErrExists) {
			RespondBadRequest(ctx, "User already exists", nil)
			return
		}

		RespondInternal(ctx, err.Error())
		return
	}

	token, err := h.tokens.Issue(u.ID)

	if err != nil {
		RespondInternal(ctx, "Could not create session")
		return
	}

	h.setSessionCookie(ctx, token)

	ctx.JSON(http.StatusCreated, u.Public())
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	foundUser, err := h.users.GetByUsernameOrEmail(cctx, req.Username, req.Email)
	if err != nil {
		// unknown identifier and wrong password answer identically so the
		// response never reveals whether an account exists
		RespondBadRequest(ctx, "Invalid username or password", nil)
		return
	}

	err = security.CheckPassword(foundUser.PasswordHash, req.Password)

	if err != nil {
		RespondBadRequest(ctx, "Invalid username or password", nil)
		return
	}

	token, err := h.tokens.Issue(foundUser.ID)

	if err != nil {
		RespondInternal(ctx, "Could not create session")
		return
	}

	h.setSessionCookie(ctx, token)

	ctx.JSON(http.StatusOK, foundUser.Public())
}

// Logout clears the session cookie. There is no server-side session state,
// so this always succeeds, with or without an existing session.
func (h *AuthHandler) Logout(ctx *gin.Context) {
	h.clearSessionCookie(ctx)

	ctx.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// Cookie helpers

func (h *AuthHandler) setSessionCookie(ctx *gin.Context, token string) {
	secure := h.cfg.Env == "prod"

	maxAge := int(h.tokens.SessionTTL().Seconds())

	ctx.SetSameSite(http.SameSiteStrictMode)

	ctx.SetCookie(
		middlewares.SessionCookieName,
		token,
		maxAge,
		"/",
		"",
		secure,
		true, // HttpOnly.
	)
}

func (h *AuthHandler) clearSessionCookie(ctx *gin.Context) {
	secure := h.cfg.Env == "prod"
	ctx.SetSameSite(http.SameSiteStrictMode)
	ctx.SetCookie(
		middlewares.SessionCookieName,
		"",
		-1,
		"/",
		"",
		secure,
		true,
	)
}
