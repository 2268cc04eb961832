package middleware

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// SessionCookie is the name of the signed session cookie.
const SessionCookie = "session"

// SessionClaims is the payload of the session token. Admin status is
// never stored here: it is re-derived from Username on every request.
type SessionClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type AuthMiddleware struct {
	secret     string
	adminEmail string
}

func NewAuthMiddleware(secret, adminEmail string) *AuthMiddleware {
	return &AuthMiddleware{
		secret:     secret,
		adminEmail: adminEmail,
	}
}

// RequireSession resolves the session cookie into a user identity. An
// unauthenticated caller is redirected to the login page with a next
// parameter so they can be returned after logging in.
func (m *AuthMiddleware) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := c.Cookie(SessionCookie)
		if err != nil || tokenString == "" {
			m.redirectToLogin(c)
			return
		}

		token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(m.secret), nil
		})
		if err != nil || !token.Valid {
			m.redirectToLogin(c)
			return
		}

		claims, ok := token.Claims.(*SessionClaims)
		if !ok {
			m.redirectToLogin(c)
			return
		}

		c.Set("user_id", claims.Subject)
		c.Set("username", claims.Username)
		c.Set("is_admin", claims.Username == m.adminEmail)
		c.Next()
	}
}

// RequireAdmin terminates the request with 403 unless the session
// belongs to the configured admin identity. Must run after
// RequireSession.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		username, exists := c.Get("username")
		if !exists || username.(string) != m.adminEmail {
			c.JSON(http.StatusForbidden, gin.H{"error": "Accès réservé à l'administrateur"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// OptionalSession resolves the session when a valid cookie is present
// but never rejects the request. The registration route uses it: the
// bootstrap case has no session at all.
func (m *AuthMiddleware) OptionalSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := c.Cookie(SessionCookie)
		if err != nil || tokenString == "" {
			c.Next()
			return
		}

		token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(m.secret), nil
		})
		if err == nil && token.Valid {
			if claims, ok := token.Claims.(*SessionClaims); ok {
				c.Set("user_id", claims.Subject)
				c.Set("username", claims.Username)
				c.Set("is_admin", claims.Username == m.adminEmail)
			}
		}
		c.Next()
	}
}

func (m *AuthMiddleware) redirectToLogin(c *gin.Context) {
	next := c.Request.URL.Path
	c.Redirect(http.StatusFound, "/login?next="+url.QueryEscape(next))
	c.Abort()
}

// SafeNext validates a login return path. Only same-origin relative
// paths pass; absolute URLs and scheme-relative paths fall back to the
// index to prevent open redirects. Browsers treat a backslash after
// the leading slash as a second slash, so "/\" is scheme-relative too.
func SafeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") ||
		strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}
