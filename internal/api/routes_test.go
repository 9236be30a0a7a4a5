package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/openrange/backend/internal/admin"
	"github.com/openrange/backend/internal/config"
	"github.com/openrange/backend/internal/middleware"
	"github.com/openrange/backend/internal/shots"
	"github.com/openrange/backend/internal/ws"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	return &config.Config{
		Environment:        "development",
		Temperature:        59,
		EnvUnits:           "imperial",
		DefaultSurface:     "fairway",
		DragScale:          1,
		LiftScale:          1,
		DistanceUnit:       "yards",
		TimestepHz:         240,
		MaxSimSeconds:      60,
		RestSpeed:          0.05,
		SpinMemory:         true,
		SampleHz:           30,
		BatchWorkers:       2,
		MaxShotsPerRequest: 3,
		JWTSecret:          "test-secret",
		TokenTTLMinutes:    5,
	}
}

func testRouter(cfg *config.Config) *gin.Engine {
	r := gin.New()
	hub := ws.NewHub()
	go hub.Run()
	SetupRoutes(r, nil, nil, cfg, shots.NewService(nil, nil, cfg), hub)
	return r
}

func bearer(t *testing.T, cfg *config.Config, scopes ...string) string {
	t.Helper()
	tok, _, err := middleware.IssueToken(cfg, 1, "test-monitor", scopes)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	return "Bearer " + tok
}

func do(r http.Handler, method, path, auth string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPublicRoutes(t *testing.T) {
	r := testRouter(testConfig())

	tests := []struct {
		path string
		want int
	}{
		{"/api/v1/health", http.StatusOK},
		{"/api/v1/surfaces", http.StatusOK},
		{"/api/v1/conditions", http.StatusOK},
		{"/metrics", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if w := do(r, http.MethodGet, tt.path, "", nil); w.Code != tt.want {
				t.Errorf("GET %s = %d, want %d", tt.path, w.Code, tt.want)
			}
		})
	}
}

func TestHealthCountsFeedSubscribers(t *testing.T) {
	r := testRouter(testConfig())
	srv := httptest.NewServer(r)
	defer srv.Close()

	subscribers := func() float64 {
		w := do(r, http.MethodGet, "/api/v1/health", "", nil)
		var body struct {
			Status          string  `json:"status"`
			FeedSubscribers float64 `json:"feed_subscribers"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode health: %v", err)
		}
		if body.Status != "ok" {
			t.Fatalf("status = %q, want ok", body.Status)
		}
		return body.FeedSubscribers
	}

	if n := subscribers(); n != 0 {
		t.Fatalf("feed_subscribers = %v before any client, want 0", n)
	}

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/api/v1/ws/feed", nil)
	if err != nil {
		t.Fatalf("dial feed: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for subscribers() != 1 {
		if time.Now().After(deadline) {
			t.Fatal("feed client never showed up in health")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestSimulateShotRoute(t *testing.T) {
	cfg := testConfig()
	r := testRouter(cfg)
	shot := map[string]interface{}{
		"shot": map[string]interface{}{"Speed": 100, "VLA": 22, "TotalSpin": 6000, "SpinAxis": 0},
	}

	if w := do(r, http.MethodPost, "/api/v1/shots", "", shot); w.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated = %d, want 401", w.Code)
	}

	w := do(r, http.MethodPost, "/api/v1/shots", bearer(t, cfg, admin.ScopeShots), shot)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var out shots.Outcome
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.ShotToken == "" || w.Header().Get("X-Shot-Token") != out.ShotToken {
		t.Errorf("shot token header %q, body %q", w.Header().Get("X-Shot-Token"), out.ShotToken)
	}
	if out.Summary.Carry <= 0 || out.Summary.Total < out.Summary.Carry {
		t.Errorf("summary = %+v", out.Summary)
	}

	empty := map[string]interface{}{"shot": map[string]interface{}{"Speed": 0}}
	if w := do(r, http.MethodPost, "/api/v1/shots", bearer(t, cfg, admin.ScopeShots), empty); w.Code != http.StatusUnprocessableEntity {
		t.Errorf("empty shot = %d, want 422", w.Code)
	}
}

func TestSimulateBatchRoute(t *testing.T) {
	cfg := testConfig()
	r := testRouter(cfg)
	auth := bearer(t, cfg, admin.ScopeShots)
	req := func(n int) map[string]interface{} {
		reqs := make([]map[string]interface{}, n)
		for i := range reqs {
			reqs[i] = map[string]interface{}{"shot": map[string]interface{}{"Speed": 70, "VLA": 30, "BackSpin": 9000, "SideSpin": 0}}
		}
		return map[string]interface{}{"requests": reqs}
	}

	w := do(r, http.MethodPost, "/api/v1/shots/batch", auth, req(2))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var body struct {
		Results []struct {
			Outcome *shots.Outcome `json:"outcome"`
			Error   string         `json:"error"`
		} `json:"results"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Results) != 2 || body.Results[0].Outcome == nil {
		t.Fatalf("results = %+v", body.Results)
	}

	if w := do(r, http.MethodPost, "/api/v1/shots/batch", auth, req(4)); w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("oversized batch = %d, want 413", w.Code)
	}
}

func TestScopesAndPersistenceRoutes(t *testing.T) {
	cfg := testConfig()
	r := testRouter(cfg)
	shotsOnly := bearer(t, cfg, admin.ScopeShots)
	adminTok := bearer(t, cfg, admin.ScopeAdmin)

	if w := do(r, http.MethodGet, "/api/v1/admin/config", shotsOnly, nil); w.Code != http.StatusForbidden {
		t.Errorf("shots scope on admin = %d, want 403", w.Code)
	}
	// Without a database these answer 503 once past auth.
	for _, path := range []string{"/api/v1/admin/config", "/api/v1/shots/s_missing", "/api/v1/jobs/j_missing"} {
		if w := do(r, http.MethodGet, path, adminTok, nil); w.Code != http.StatusServiceUnavailable {
			t.Errorf("GET %s = %d, want 503", path, w.Code)
		}
	}
	if w := do(r, http.MethodPost, "/api/v1/auth/token", "", map[string]string{"client": "x", "key": "y"}); w.Code != http.StatusServiceUnavailable {
		t.Errorf("token without db = %d, want 503", w.Code)
	}
}
