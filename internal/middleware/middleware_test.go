package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/openrange/backend/internal/admin"
	"github.com/openrange/backend/internal/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testRouter(cfg *config.Config, scope string) *gin.Engine {
	r := gin.New()
	r.GET("/x", AuthMiddleware(cfg, scope), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"client": c.GetString(ClientKey), "id": c.GetInt(ClientIDKey)})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	cfg := &config.Config{JWTSecret: "secret", TokenTTLMinutes: 5}
	shotsToken, _, err := IssueToken(cfg, 7, "monitor", []string{admin.ScopeShots})
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	other := &config.Config{JWTSecret: "other", TokenTTLMinutes: 5}
	forged, _, _ := IssueToken(other, 7, "monitor", []string{admin.ScopeAdmin})

	tests := []struct {
		name   string
		scope  string
		header string
		want   int
	}{
		{"no header", admin.ScopeShots, "", http.StatusUnauthorized},
		{"not bearer", admin.ScopeShots, "Basic abc", http.StatusUnauthorized},
		{"valid", admin.ScopeShots, "Bearer " + shotsToken, http.StatusOK},
		{"wrong scope", admin.ScopeAdmin, "Bearer " + shotsToken, http.StatusForbidden},
		{"wrong secret", admin.ScopeShots, "Bearer " + forged, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			testRouter(cfg, tt.scope).ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestParseTokenClaims(t *testing.T) {
	cfg := &config.Config{JWTSecret: "secret"}
	tok, exp, err := IssueToken(cfg, 3, "sim-cli", []string{admin.ScopeJobs})
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	claims, err := ParseToken(cfg, tok)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.ClientID != 3 || claims.Client != "sim-cli" {
		t.Errorf("claims = %+v", claims)
	}
	if claims.ExpiresAt == nil || claims.ExpiresAt.Unix() != exp.Unix() {
		t.Errorf("expiry = %v, want %v", claims.ExpiresAt, exp)
	}
}

func TestOriginAllowed(t *testing.T) {
	dev := &config.Config{Environment: "development"}
	prod := &config.Config{Environment: "production", FrontendURL: "https://range.example.com"}

	if !OriginAllowed(dev, "http://localhost:3000") {
		t.Error("localhost should be allowed in development")
	}
	if OriginAllowed(prod, "http://localhost:3000") {
		t.Error("localhost should be rejected in production")
	}
	if !OriginAllowed(prod, "https://range.example.com") {
		t.Error("frontend origin should be allowed")
	}
	if !OriginAllowed(prod, "") {
		t.Error("non-browser clients send no origin")
	}
}
