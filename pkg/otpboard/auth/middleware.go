package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	// SessionCookie holds the dashboard session token for browser clients
	SessionCookie = "auth_session"
	// ContextKeySubject is the key for the token subject in gin context
	ContextKeySubject = "subject"
)

// UnauthorizedMessage is the only body a rejected credential ever gets
const UnauthorizedMessage = "Unauthorized"

func unauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{"error": UnauthorizedMessage})
	c.Abort()
}

// sessionToken returns the bearer token, falling back to the session cookie
func sessionToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		return ExtractBearer(header)
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		return cookie
	}
	return ""
}

// AuthMiddleware validates dashboard session tokens sent as a bearer header or cookie
func AuthMiddleware(tokens *TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c)
		if token == "" {
			unauthorized(c)
			return
		}

		claims, err := tokens.ValidateToken(token)
		if err != nil {
			unauthorized(c)
			return
		}

		c.Set(ContextKeySubject, claims.Subject)
		c.Next()
	}
}

// GetSubject returns the authenticated subject from the gin context
func GetSubject(c *gin.Context) (string, bool) {
	subject, exists := c.Get(ContextKeySubject)
	if !exists {
		return "", false
	}
	return subject.(string), true
}

// APITokenMiddleware gates programmatic endpoints behind a static token.
// An unset token is a server misconfiguration, not an open door.
func APITokenMiddleware(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "API token not configured"})
			c.Abort()
			return
		}

		header := c.GetHeader("Authorization")
		if header == "" || !TokensEqual(ExtractBearer(header), token) {
			unauthorized(c)
			return
		}

		c.Next()
	}
}

// OptionalSecretMiddleware requires a bearer secret only when one is configured
func OptionalSecretMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}

		if !TokensEqual(ExtractBearer(c.GetHeader("Authorization")), secret) {
			unauthorized(c)
			return
		}

		c.Next()
	}
}
