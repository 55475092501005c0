package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Handler handles dashboard login against the shared secret key
type Handler struct {
	secretHash   string
	tokens       *TokenManager
	secureCookie bool
	logger       *slog.Logger
}

// NewHandler creates a new auth handler. An empty secretKey disables login.
func NewHandler(secretKey string, tokens *TokenManager, baseURL string, logger *slog.Logger) (*Handler, error) {
	h := &Handler{
		tokens:       tokens,
		secureCookie: strings.HasPrefix(baseURL, "https://"),
		logger:       logger,
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	if secretKey == "" {
		return h, nil
	}

	hash, err := HashPassword(secretKey)
	if err != nil {
		return nil, err
	}
	h.secretHash = hash
	return h, nil
}

// LoginRequest represents the login request body
type LoginRequest struct {
	SecretKey string `json:"secret_key" binding:"required"`
}

// AuthResponse represents the authentication response
type AuthResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

// SessionResponse describes the current session
type SessionResponse struct {
	Authenticated bool   `json:"authenticated"`
	Subject       string `json:"subject"`
}

// Login handles dashboard login
// @Summary Login
// @Description Exchange the shared secret key for a session token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Secret key"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Login not configured"
// @Router /auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	if h.secretHash == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login is not configured"})
		return
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !CheckPassword(req.SecretKey, h.secretHash) {
		h.logger.WarnContext(c.Request.Context(), "dashboard login rejected", "client_ip", c.ClientIP())
		c.JSON(http.StatusUnauthorized, gin.H{"error": UnauthorizedMessage})
		return
	}

	token, err := h.tokens.GenerateToken()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	maxAge := int(h.tokens.Duration().Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, token, maxAge, "/", "", h.secureCookie, true)

	c.JSON(http.StatusOK, AuthResponse{Token: token, ExpiresIn: maxAge})
}

// Logout clears the session cookie
// @Summary Logout
// @Description Clear the session cookie (bearer tokens expire on their own)
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]string "Logged out successfully"
// @Router /auth/logout [post]
func (h *Handler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, "", -1, "/", "", h.secureCookie, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// Me reports the current session
// @Summary Get current session
// @Tags auth
// @Produce json
// @Success 200 {object} SessionResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /auth/me [get]
func (h *Handler) Me(c *gin.Context) {
	subject, exists := GetSubject(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": UnauthorizedMessage})
		return
	}
	c.JSON(http.StatusOK, SessionResponse{Authenticated: true, Subject: subject})
}

// RegisterRoutes registers auth routes on the given router group
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/login", h.Login)
	rg.POST("/logout", h.Logout)
	rg.GET("/me", AuthMiddleware(h.tokens), h.Me)
}
