// Package keepalive exercises the database on a schedule so hosted
// databases that pause on inactivity stay awake.
package keepalive

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mikepea/otpboard/pkg/otpboard/auth"
	"github.com/mikepea/otpboard/pkg/otpboard/models"
	"github.com/mikepea/otpboard/pkg/otpboard/repository"
)

const (
	// Count is how many throw-away accounts each run writes
	Count = 20
	// Issuer marks throw-away accounts; leftovers from failed runs are swept by it
	Issuer = "__keepalive__"
	// Secret is a fixed valid secret for throw-away accounts
	Secret = "JBSWY3DPEHPK3PXP"
)

// Accounts is the part of the account repository a keep-alive run needs
type Accounts interface {
	Create(ctx context.Context, in repository.NewAccount) (*models.Account, error)
	DeleteByIssuer(ctx context.Context, issuer string) (int64, error)
}

// Result reports one keep-alive run
type Result struct {
	Created int   `json:"created"`
	Deleted int64 `json:"deleted"`
}

// Run creates Count throw-away accounts and removes every keep-alive account.
// Created accounts are removed even when a later create fails.
func Run(ctx context.Context, accounts Accounts) (*Result, error) {
	batch := uuid.NewString()
	result := &Result{}

	var createErr error
	for i := 0; i < Count; i++ {
		_, err := accounts.Create(ctx, repository.NewAccount{
			Issuer: Issuer,
			Name:   fmt.Sprintf("temp_%s_%d", batch, i),
			Secret: Secret,
			Remark: "auto-generated for keep-alive",
		})
		if err != nil {
			createErr = fmt.Errorf("create keep-alive account: %w", err)
			break
		}
		result.Created++
	}

	deleted, err := accounts.DeleteByIssuer(ctx, Issuer)
	result.Deleted = deleted
	if createErr != nil {
		return result, createErr
	}
	if err != nil {
		return result, fmt.Errorf("delete keep-alive accounts: %w", err)
	}
	return result, nil
}

// Handler serves the keep-alive endpoint
type Handler struct {
	accounts   Accounts
	cronSecret string
	logger     *slog.Logger
	now        func() time.Time
}

// NewHandler creates a keep-alive handler. An empty cronSecret leaves the
// endpoint open.
func NewHandler(accounts Accounts, cronSecret string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{accounts: accounts, cronSecret: cronSecret, logger: logger, now: time.Now}
}

// Response is the body returned by a keep-alive run
type Response struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	Created   int    `json:"created"`
	Deleted   int64  `json:"deleted"`
	Timestamp string `json:"timestamp"`
}

// KeepAlive writes and deletes throw-away accounts
// @Summary Database keep-alive
// @Description Create and delete throw-away accounts. Requires Bearer CRON_SECRET when one is configured.
// @Tags cron
// @Produce json
// @Success 200 {object} Response
// @Failure 401 {object} map[string]string
// @Failure 500 {object} Response
// @Router /cron/keep-alive [get]
func (h *Handler) KeepAlive(c *gin.Context) {
	ctx := c.Request.Context()
	result, err := Run(ctx, h.accounts)
	resp := Response{
		Created:   result.Created,
		Deleted:   result.Deleted,
		Timestamp: h.now().UTC().Format(time.RFC3339),
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "keep-alive failed", "error", err, "created", result.Created)
		resp.Error = "Keep-alive failed"
		c.JSON(http.StatusInternalServerError, resp)
		return
	}

	h.logger.InfoContext(ctx, "keep-alive completed", "created", result.Created, "deleted", result.Deleted)
	resp.Success = true
	resp.Message = fmt.Sprintf("Keep-alive completed: created and deleted %d accounts", result.Created)
	c.JSON(http.StatusOK, resp)
}

// RegisterRoutes registers the keep-alive route on the router group
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/cron/keep-alive", auth.OptionalSecretMiddleware(h.cronSecret), h.KeepAlive)
}
