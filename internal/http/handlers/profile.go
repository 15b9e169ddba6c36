package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/speakwise/speakwise/internal/cache"
	"github.com/speakwise/speakwise/internal/config"
	"github.com/speakwise/speakwise/internal/domain/user"
	"github.com/speakwise/speakwise/internal/http/middlewares"
	"github.com/speakwise/speakwise/internal/security"
)

// ProfileStore is the user-store slice the profile endpoints need.
type ProfileStore interface {
	GetByID(ctx context.Context, id string) (user.User, error)
	GetByUsername(ctx context.Context, username string) (user.User, error)
	Update(ctx context.Context, id string, changes user.Changes) (user.User, error)
}

type ProfileHandler struct {
	users ProfileStore
	cache *cache.Cache
}

func NewProfileHandler(users ProfileStore, c *cache.Cache) *ProfileHandler {
	return &ProfileHandler{
		users: users,
		cache: c,
	}
}

type UpdateProfileRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email" binding:"omitempty,email"`
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword" binding:"omitempty,min=6"`
}

// GetProfile serves GET /profile/:query, where :query is either an id or
// a username. uuid-shaped queries are treated as ids.
func (h *ProfileHandler) GetProfile(ctx *gin.Context) {
	query := ctx.Param("query")

	cacheKey := "profile:" + query

	if h.cache != nil {
		if cached, ok := h.cache.Get(cacheKey); ok {
			if p, ok := cached.(user.Profile); ok {
				RespondJSONWithETag(ctx, http.StatusOK, p)
				return
			}
		}
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	var (
		u   user.User
		err error
	)

	if _, parseErr := uuid.Parse(query); parseErr == nil {
		u, err = h.users.GetByID(cctx, query)
	} else {
		u, err = h.users.GetByUsername(cctx, query)
	}

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		RespondInternal(ctx, err.Error())
		return
	}

	p := u.Profile()

	if h.cache != nil {
		h.cache.Set(cacheKey, p)
	}

	RespondJSONWithETag(ctx, http.StatusOK, p)
}

// UpdateProfile serves PUT /update/:id behind RequireSession.
//
// Authorization is coarse: any valid session may address any target id.
// A mismatch between the session's user and the target is logged so the
// permissiveness is at least visible.
func (h *ProfileHandler) UpdateProfile(ctx *gin.Context) {
	targetID := ctx.Param("id")

	var req UpdateProfileRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if actorID, ok := middlewares.SessionUserIDFromContext(ctx); ok && actorID != targetID {
		slog.Default().Warn("cross-user profile update",
			"actor_id", actorID, "target_id", targetID)
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	stored, err := h.users.GetByID(cctx, targetID)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		RespondInternal(ctx, err.Error())
		return
	}

	changes := user.Changes{
		Username: req.Username,
		Email:    req.Email,
	}

	// A password change needs both halves of the pair; a lone
	// currentPassword or newPassword is ignored.
	if req.CurrentPassword != "" && req.NewPassword != "" {
		if err := security.CheckPassword(stored.PasswordHash, req.CurrentPassword); err != nil {
			RespondBadRequest(ctx, "current password is wrong", nil)
			return
		}

		hash, err := security.HashPassword(req.NewPassword)

		if err != nil {
			RespondInternal(ctx, "Could not update password")
			return
		}

		changes.PasswordHash = hash
	}

	updated, err := h.users.Update(cctx, targetID, changes)

	if err != nil {
		switch {
		case errors.Is(err, user.ErrNotFound):
			RespondNotFound(ctx, "User not found")
		case errors.Is(err, user.ErrExists):
			RespondBadRequest(ctx, "User already exists", nil)
		default:
			RespondInternal(ctx, err.Error())
		}
		return
	}

	if h.cache != nil {
		h.cache.Delete("profile:" + targetID)
		h.cache.Delete("profile:" + stored.Username)
		h.cache.Delete("profile:" + updated.Username)
	}

	// hash never leaves the handler, even scrubbed copies
	updated.PasswordHash = ""

	ctx.JSON(http.StatusOK, updated)
}
