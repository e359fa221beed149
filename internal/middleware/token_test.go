package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/examsentry/integrity-backend/internal/config"
	"github.com/examsentry/integrity-backend/internal/service"
)

func newGuardedRouter(t *testing.T, secret string) (*gin.Engine, *service.TokenService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens := service.NewTokenService(&config.Config{TokenSecret: secret, TokenExpiry: time.Hour})

	r := gin.New()
	r.GET("/client", RequireClientToken(tokens), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/proctor", RequireProctorToken(tokens), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r, tokens
}

func request(r *gin.Engine, path, authHeader, query string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path+query, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestTokenGuardDisabledPassesThrough(t *testing.T) {
	r, _ := newGuardedRouter(t, "")

	if w := request(r, "/client", "", ""); w.Code != http.StatusOK {
		t.Fatalf("no secret, no token: status %d", w.Code)
	}
	if w := request(r, "/proctor", "", ""); w.Code != http.StatusOK {
		t.Fatalf("no secret, proctor route: status %d", w.Code)
	}
}

func TestTokenGuardEnforcesTypeAndValidity(t *testing.T) {
	r, tokens := newGuardedRouter(t, "test-secret")

	clientToken, err := tokens.Mint(service.TokenTypeClient, 7)
	if err != nil {
		t.Fatalf("mint client token: %v", err)
	}
	proctorToken, err := tokens.Mint(service.TokenTypeProctor, 1)
	if err != nil {
		t.Fatalf("mint proctor token: %v", err)
	}

	// Missing token.
	if w := request(r, "/client", "", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("missing token: status %d", w.Code)
	}

	// Garbage token.
	if w := request(r, "/client", "Bearer not.a.jwt", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token: status %d", w.Code)
	}

	// Right token, right route.
	if w := request(r, "/client", "Bearer "+clientToken, ""); w.Code != http.StatusOK {
		t.Fatalf("valid client token: status %d, body %s", w.Code, w.Body.String())
	}

	// Client token on a proctor route is a type mismatch, not an auth failure.
	if w := request(r, "/proctor", "Bearer "+clientToken, ""); w.Code != http.StatusForbidden {
		t.Fatalf("client token on proctor route: status %d", w.Code)
	}

	// Proctor token via query param (the WebSocket path).
	if w := request(r, "/proctor", "", "?token="+proctorToken); w.Code != http.StatusOK {
		t.Fatalf("proctor token via query: status %d, body %s", w.Code, w.Body.String())
	}
}
