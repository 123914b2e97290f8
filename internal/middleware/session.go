package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-units-api/internal/models"
)

// ContextUserKey is the gin context key storing session claims.
const ContextUserKey = "currentUser"

// TokenValidator checks a session token.
type TokenValidator interface {
	ValidateToken(token string) (*models.SessionClaims, error)
}

// SessionConfig configures the session guard.
type SessionConfig struct {
	CookieName string
	LoginPath  string
	// PublicPaths are reachable without a session. Each entry matches itself
	// and everything below it.
	PublicPaths []string
}

// Session redirects requests without a valid session to the login page,
// keeping the original query string. Valid claims are stored under ContextUserKey.
func Session(validator TokenValidator, cfg SessionConfig) gin.HandlerFunc {
	loginPath := cfg.LoginPath
	if loginPath == "" {
		loginPath = "/login"
	}
	public := append([]string{loginPath}, cfg.PublicPaths...)

	return func(c *gin.Context) {
		if isPublicPath(c.Request.URL.Path, public) {
			attachClaims(c, validator, cfg.CookieName)
			c.Next()
			return
		}

		if !attachClaims(c, validator, cfg.CookieName) {
			target := loginPath
			if raw := c.Request.URL.RawQuery; raw != "" {
				target += "?" + raw
			}
			c.Redirect(http.StatusFound, target)
			c.Abort()
			return
		}
		c.Next()
	}
}

// attachClaims validates the request token, if any, and stores its claims.
func attachClaims(c *gin.Context, validator TokenValidator, cookieName string) bool {
	token := TokenFromRequest(c, cookieName)
	if token == "" {
		return false
	}
	claims, err := validator.ValidateToken(token)
	if err != nil {
		return false
	}
	c.Set(ContextUserKey, claims)
	return true
}

// TokenFromRequest reads the session token from the cookie, falling back to a
// bearer Authorization header.
func TokenFromRequest(c *gin.Context, cookieName string) string {
	if cookieName != "" {
		if value, err := c.Cookie(cookieName); err == nil && value != "" {
			return value
		}
	}
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

func isPublicPath(path string, public []string) bool {
	for _, p := range public {
		p = strings.TrimSuffix(p, "/")
		if p == "" {
			continue
		}
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

// ClaimsFromContext returns the session claims stored by Session.
func ClaimsFromContext(c *gin.Context) *models.SessionClaims {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil
	}
	claims, _ := value.(*models.SessionClaims)
	return claims
}
