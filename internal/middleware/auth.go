package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"

	"github.com/openrange/backend/internal/admin"
	"github.com/openrange/backend/internal/config"
)

// Context keys set by AuthMiddleware.
const (
	ClientIDKey = "client_id"
	ClientKey   = "client_name"
	ScopesKey   = "scopes"
)

// ClientClaims are the claims of an API access token.
type ClientClaims struct {
	ClientID int      `json:"client_id"`
	Client   string   `json:"client"`
	Scopes   []string `json:"scopes"`
	jwt.RegisteredClaims
}

// IssueToken signs an access token for an API client.
func IssueToken(cfg *config.Config, clientID int, name string, scopes []string) (string, time.Time, error) {
	ttl := time.Duration(cfg.TokenTTLMinutes) * time.Minute
	if ttl <= 0 {
		ttl = time.Hour
	}
	exp := time.Now().Add(ttl)
	claims := ClientClaims{
		ClientID: clientID,
		Client:   name,
		Scopes:   scopes,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   name,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// ParseToken validates a signed access token.
func ParseToken(cfg *config.Config, token string) (*ClientClaims, error) {
	claims := &ClientClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// AuthMiddleware validates a bearer token carrying scope and stores the
// client in the context.
func AuthMiddleware(cfg *config.Config, scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		claims, err := ParseToken(cfg, strings.TrimPrefix(auth, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		if scope != "" && !admin.HasScope(claims.Scopes, scope) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient scope"})
			return
		}

		c.Set(ClientIDKey, claims.ClientID)
		c.Set(ClientKey, claims.Client)
		c.Set(ScopesKey, claims.Scopes)
		c.Next()
	}
}
