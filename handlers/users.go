package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gogotex/gogotex/backend/user-sync/internal/models"
	"github.com/gogotex/gogotex/backend/user-sync/pkg/logger"
)

// UserLookup reads synced users.
type UserLookup interface {
	GetByExternalID(ctx context.Context, externalID string) (*models.User, error)
}

// UsersHandler exposes synced records to authenticated callers.
type UsersHandler struct {
	users UserLookup
}

func NewUsersHandler(u UserLookup) *UsersHandler {
	return &UsersHandler{users: u}
}

// Register routes under /api/v1/users, guarded by auth.
func (h *UsersHandler) Register(rg *gin.RouterGroup, auth gin.HandlerFunc) {
	g := rg.Group("/api/v1/users", auth)
	g.GET("/:externalId", h.Get)
}

func (h *UsersHandler) Get(c *gin.Context) {
	u, err := h.users.GetByExternalID(c.Request.Context(), c.Param("externalId"))
	if err != nil {
		logger.WithContext(c.Request.Context()).Errorf("user lookup %s: %v", c.Param("externalId"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user lookup failed"})
		return
	}
	if u == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}
