package handlers

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/openrange/backend/internal/middleware"
)

// clientID returns the authenticated client, if any.
func clientID(c *gin.Context) sql.NullInt64 {
	id := c.GetInt(middleware.ClientIDKey)
	return sql.NullInt64{Int64: int64(id), Valid: id > 0}
}

// requireDB writes 503 and returns false when persistence is not configured.
func requireDB(c *gin.Context, db *sqlx.DB) bool {
	if db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "persistence is not configured"})
		return false
	}
	return true
}

func queryInt(c *gin.Context, key string, def int) int {
	if v, err := strconv.Atoi(c.Query(key)); err == nil {
		return v
	}
	return def
}
