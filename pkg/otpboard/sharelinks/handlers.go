package sharelinks

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/otpboard/pkg/otpboard/codes"
	"github.com/mikepea/otpboard/pkg/otpboard/models"
	"github.com/mikepea/otpboard/pkg/otpboard/repository"
)

// Handler manages share links and serves the public share view
type Handler struct {
	store     *repository.Store
	generator *codes.Generator
	baseURL   string
	logger    *slog.Logger
}

// NewHandler creates a new share links handler
func NewHandler(store *repository.Store, generator *codes.Generator, baseURL string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		store:     store,
		generator: generator,
		baseURL:   strings.TrimRight(baseURL, "/"),
		logger:    logger,
	}
}

// ShareLinkResponse represents a share link in API responses
type ShareLinkResponse struct {
	AccountID uint      `json:"account_id"`
	ShortLink string    `json:"short_link"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

// SharedCodeResponse is what an unauthenticated holder of a share link sees
type SharedCodeResponse struct {
	Issuer    string  `json:"issuer"`
	Account   string  `json:"account"`
	Code      string  `json:"code"`
	Remaining int     `json:"remaining"`
	Period    int     `json:"period"`
	Progress  float64 `json:"progress"`
}

func (h *Handler) toResponse(link *models.ShareLink) ShareLinkResponse {
	return ShareLinkResponse{
		AccountID: link.AccountID,
		ShortLink: link.ShortLink,
		URL:       h.baseURL + "/s/" + link.ShortLink,
		CreatedAt: link.CreatedAt,
	}
}

func parseAccountID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid account ID"})
		return 0, false
	}
	return uint(id), true
}

// Create issues (or returns the existing) share link of an account
// @Summary Share an account
// @Description Create the public share link of an account; repeated calls return the same link
// @Tags share
// @Produce json
// @Param id path int true "Account ID"
// @Success 200 {object} ShareLinkResponse
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 503 {object} map[string]string "Share link generation exhausted"
// @Security BearerAuth
// @Router /accounts/{id}/share [post]
func (h *Handler) Create(c *gin.Context) {
	accountID, ok := parseAccountID(c)
	if !ok {
		return
	}

	link, err := h.store.ShareLinks.CreateForAccount(c.Request.Context(), accountID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		case errors.Is(err, repository.ErrShortLinkExhausted):
			c.Header("Retry-After", "1")
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Could not allocate a share link, please retry"})
		default:
			h.logger.ErrorContext(c.Request.Context(), "share link creation failed", "account_id", accountID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create share link"})
		}
		return
	}

	c.JSON(http.StatusOK, h.toResponse(link))
}

// Get returns the share link of an account
// @Summary Get an account's share link
// @Tags share
// @Produce json
// @Param id path int true "Account ID"
// @Success 200 {object} ShareLinkResponse
// @Failure 404 {object} map[string]string "Share link not found"
// @Security BearerAuth
// @Router /accounts/{id}/share [get]
func (h *Handler) Get(c *gin.Context) {
	accountID, ok := parseAccountID(c)
	if !ok {
		return
	}

	link, err := h.store.ShareLinks.FindByAccountID(c.Request.Context(), accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Share link not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch share link"})
		return
	}

	c.JSON(http.StatusOK, h.toResponse(link))
}

// Delete revokes the share link of an account
// @Summary Revoke an account's share link
// @Tags share
// @Produce json
// @Param id path int true "Account ID"
// @Success 200 {object} map[string]bool
// @Security BearerAuth
// @Router /accounts/{id}/share [delete]
func (h *Handler) Delete(c *gin.Context) {
	accountID, ok := parseAccountID(c)
	if !ok {
		return
	}

	deleted, err := h.store.ShareLinks.DeleteByAccountID(c.Request.Context(), accountID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete share link"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

// View serves the live code behind a share link.
// Malformed, unissued and revoked tokens all get the same 404.
// @Summary Shared code
// @Description Public, read-only view of one account's current code
// @Tags share
// @Produce json
// @Param token path string true "Share token"
// @Success 200 {object} SharedCodeResponse
// @Failure 404 {object} map[string]string "Link not found"
// @Router /s/{token} [get]
func (h *Handler) View(c *gin.Context) {
	ctx := c.Request.Context()

	link, err := h.store.ShareLinks.FindByShortLink(ctx, c.Param("token"))
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			h.logger.ErrorContext(ctx, "share link lookup failed", "error", err)
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "Link not found"})
		return
	}

	acc, err := h.store.Accounts.FindByID(ctx, link.AccountID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Link not found"})
		return
	}

	res, err := h.generator.ForAccount(acc)
	if err != nil {
		h.logger.ErrorContext(ctx, "shared code generation failed", "account_id", acc.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate code"})
		return
	}

	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, SharedCodeResponse{
		Issuer:    acc.Issuer,
		Account:   acc.Name,
		Code:      res.Code,
		Remaining: res.Remaining,
		Period:    res.Period,
		Progress:  res.Progress,
	})
}

// RegisterRoutes registers the authenticated share management routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/accounts/:id/share", h.Create)
	rg.GET("/accounts/:id/share", h.Get)
	rg.DELETE("/accounts/:id/share", h.Delete)
}

// RegisterPublicRoutes registers the unauthenticated share view on the root router
func (h *Handler) RegisterPublicRoutes(r *gin.Engine) {
	r.GET("/s/:token", h.View)
}
