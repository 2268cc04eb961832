package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func signToken(t *testing.T, secret, username string, expiresAt time.Time) string {
	t.Helper()
	claims := &SessionClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "6a2f1c43-52a1-4b9d-9e83-1f0f8f1d2c3b",
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func sessionRouter(adminEmail string) *gin.Engine {
	m := NewAuthMiddleware("secret", adminEmail)
	router := gin.New()
	router.GET("/private", m.RequireSession(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"username": c.GetString("username"),
			"is_admin": c.GetBool("is_admin"),
		})
	})
	return router
}

func request(router *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRequireSessionWithoutCookie(t *testing.T) {
	w := request(sessionRouter("admin@example.com"), "")
	if w.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", w.Code)
	}
	if got := w.Header().Get("Location"); got != "/login?next=%2Fprivate" {
		t.Errorf("unexpected redirect target %q", got)
	}
}

func TestRequireSessionRejectsForgedToken(t *testing.T) {
	forged := signTokenWithSecret(t, "wrong-secret")
	if w := request(sessionRouter("admin@example.com"), forged); w.Code != http.StatusFound {
		t.Errorf("forged token should redirect, got %d", w.Code)
	}
}

func signTokenWithSecret(t *testing.T, secret string) string {
	return signToken(t, secret, "user@example.com", time.Now().Add(time.Hour))
}

func TestRequireSessionRejectsExpiredToken(t *testing.T) {
	expired := signToken(t, "secret", "user@example.com", time.Now().Add(-time.Minute))
	if w := request(sessionRouter("admin@example.com"), expired); w.Code != http.StatusFound {
		t.Errorf("expired token should redirect, got %d", w.Code)
	}
}

func TestRequireSessionDerivesAdminFromUsername(t *testing.T) {
	router := sessionRouter("admin@example.com")

	w := request(router, signToken(t, "secret", "admin@example.com", time.Now().Add(time.Hour)))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if body := w.Body.String(); body != `{"is_admin":true,"username":"admin@example.com"}` {
		t.Errorf("unexpected payload %s", body)
	}

	w = request(router, signToken(t, "secret", "user@example.com", time.Now().Add(time.Hour)))
	if body := w.Body.String(); body != `{"is_admin":false,"username":"user@example.com"}` {
		t.Errorf("unexpected payload %s", body)
	}
}

func TestSafeNext(t *testing.T) {
	cases := map[string]string{
		"":                    "/",
		"/":                   "/",
		"/supplier/4":         "/supplier/4",
		"//evil.example.com":  "/",
		`/\evil.example.com`:  "/",
		`/\/evil.example.com`: "/",
		"https://evil.com/a":  "/",
		"evil.com":            "/",
	}
	for input, want := range cases {
		if got := SafeNext(input); got != want {
			t.Errorf("SafeNext(%q) = %q, want %q", input, got, want)
		}
	}
}
