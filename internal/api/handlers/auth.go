package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/openrange/backend/internal/admin"
	"github.com/openrange/backend/internal/config"
	"github.com/openrange/backend/internal/middleware"
)

// IssueToken exchanges an API client name and key for a bearer token.
func IssueToken(db *sqlx.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireDB(c, db) {
			return
		}
		var req struct {
			Client string `json:"client"`
			Key    string `json:"key"`
		}
		if err := c.BindJSON(&req); err != nil || strings.TrimSpace(req.Client) == "" || req.Key == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "client and key required"})
			return
		}

		client, err := admin.Authenticate(db, strings.TrimSpace(req.Client), req.Key)
		switch {
		case errors.Is(err, admin.ErrClientNotFound), errors.Is(err, admin.ErrInvalidKey):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		case errors.Is(err, admin.ErrClientDisabled):
			c.JSON(http.StatusForbidden, gin.H{"error": "client disabled"})
			return
		case err != nil:
			log.Printf("[AUTH] Failed to authenticate %s: %v", req.Client, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		token, exp, err := middleware.IssueToken(cfg, client.ID, client.Name, client.Scopes)
		if err != nil {
			log.Printf("[AUTH] Failed to sign token: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"token":      token,
			"expires_at": exp.Format(time.RFC3339),
			"client":     gin.H{"id": client.ID, "name": client.Name, "scopes": client.Scopes},
		})
	}
}
