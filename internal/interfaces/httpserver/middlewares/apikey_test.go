package middlewares

import (
	"bytes"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"kaizen-server/internal/config"
)

func guardedRouter(cfg *config.Config, guard gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(ClientPrincipal(zerolog.Nop()))
	router.GET("/guarded", guard, func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func TestRequireAPIKey(t *testing.T) {
	cases := []struct {
		name       string
		serverKey  string
		requestKey string
		wantStatus int
	}{
		{"valid key", "secret", "secret", http.StatusOK},
		{"wrong key", "secret", "guess", http.StatusUnauthorized},
		{"missing key", "secret", "", http.StatusUnauthorized},
		{"server key unset", "", "anything", http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &config.Config{APIKey: tc.serverKey}
			router := guardedRouter(cfg, RequireAPIKey(cfg, zerolog.Nop()))

			req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
			if tc.requestKey != "" {
				req.Header.Set("x-api-key", tc.requestKey)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Errorf("got status %d, want %d", rec.Code, tc.wantStatus)
			}
		})
	}
}

func TestRequireAPIKeyLogsMisconfiguration(t *testing.T) {
	var logBuf bytes.Buffer
	cfg := &config.Config{}
	router := guardedRouter(cfg, RequireAPIKey(cfg, zerolog.New(&logBuf)))

	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.Header.Set("x-api-key", "anything")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("got status %d, want %d", rec.Code, http.StatusInternalServerError)
	}
	if !strings.Contains(logBuf.String(), "API_KEY is not configured") {
		t.Errorf("misconfiguration not logged: %s", logBuf.String())
	}
}

func TestRequireAuthAcceptsKeyOrPrincipal(t *testing.T) {
	principal := base64.StdEncoding.EncodeToString([]byte(
		`{"userId":"u-1","userDetails":"jane@example.com"}`,
	))

	cases := []struct {
		name       string
		apiKey     string
		identity   string
		wantStatus int
	}{
		{"api key", "secret", "", http.StatusOK},
		{"platform identity", "", principal, http.StatusOK},
		{"both", "secret", principal, http.StatusOK},
		{"neither", "", "", http.StatusUnauthorized},
		{"wrong key no identity", "guess", "", http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &config.Config{APIKey: "secret"}
			router := guardedRouter(cfg, RequireAuth(cfg))

			req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
			if tc.apiKey != "" {
				req.Header.Set("x-api-key", tc.apiKey)
			}
			if tc.identity != "" {
				req.Header.Set("x-ms-client-principal", tc.identity)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Errorf("got status %d, want %d", rec.Code, tc.wantStatus)
			}
		})
	}
}
