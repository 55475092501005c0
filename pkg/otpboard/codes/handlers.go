package codes

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/otpboard/pkg/otpboard/models"
	"github.com/mikepea/otpboard/pkg/otpboard/repository"
	"github.com/mikepea/otpboard/pkg/otpboard/totp"
)

// AccountFinder looks an account up by its issuer and optional account name
type AccountFinder interface {
	FindByIssuerAndAccount(ctx context.Context, issuer, account string) (*models.Account, error)
}

// Handler serves code generation requests
type Handler struct {
	accounts  AccountFinder
	generator *Generator
	logger    *slog.Logger
}

// NewHandler creates a new codes handler
func NewHandler(accounts AccountFinder, generator *Generator, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{accounts: accounts, generator: generator, logger: logger}
}

// CodeResponse is returned by the programmatic code endpoint
type CodeResponse struct {
	Issuer    string `json:"issuer"`
	Account   string `json:"account"`
	Code      string `json:"code"`
	Remaining int    `json:"remaining"`
	Period    int    `json:"period"`
}

// OneTimeRequest asks for the code of a secret that is not stored
type OneTimeRequest struct {
	Secret string `json:"secret" binding:"required"`
	Period int    `json:"period"`
}

// Generate returns the live code of a stored account
// @Summary Generate a code
// @Description Look up an account by issuer (and optionally account name) and return its current code
// @Tags codes
// @Produce json
// @Param issuer query string true "Issuer"
// @Param account query string false "Account name"
// @Success 200 {object} CodeResponse
// @Failure 400 {object} map[string]string "Issuer parameter is required"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Account not found"
// @Security APITokenAuth
// @Router /totp [get]
func (h *Handler) Generate(c *gin.Context) {
	issuer := c.Query("issuer")
	if issuer == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Issuer parameter is required"})
		return
	}

	acc, err := h.accounts.FindByIssuerAndAccount(c.Request.Context(), issuer, c.Query("account"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "account lookup failed", "issuer", issuer, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch account"})
		return
	}

	res, err := h.generator.ForAccount(acc)
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "code generation failed", "account_id", acc.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate code"})
		return
	}

	c.JSON(http.StatusOK, CodeResponse{
		Issuer:    acc.Issuer,
		Account:   acc.Name,
		Code:      res.Code,
		Remaining: res.Remaining,
		Period:    res.Period,
	})
}

// OneTime computes a code for an ad-hoc secret without storing anything
// @Summary One-time code
// @Description Compute the current code of a secret that is not stored
// @Tags codes
// @Accept json
// @Produce json
// @Param request body OneTimeRequest true "Secret"
// @Success 200 {object} Result
// @Failure 400 {object} map[string]string "Invalid secret"
// @Security BearerAuth
// @Router /onetime [post]
func (h *Handler) OneTime(c *gin.Context) {
	var req OneTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Period < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Period must be positive"})
		return
	}

	res, err := h.generator.ForSecret(req.Secret, req.Period)
	if err != nil {
		if errors.Is(err, totp.ErrInvalidSecret) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid secret"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate code"})
		return
	}

	c.JSON(http.StatusOK, res)
}

// RegisterRoutes registers the dashboard code routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/onetime", h.OneTime)
}

// RegisterAPIRoutes registers the token-gated programmatic routes
func (h *Handler) RegisterAPIRoutes(rg *gin.RouterGroup) {
	rg.GET("/totp", h.Generate)
}
