package accounts

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/otpboard/pkg/otpboard/codes"
	"github.com/mikepea/otpboard/pkg/otpboard/countdown"
	"github.com/mikepea/otpboard/pkg/otpboard/models"
	"github.com/mikepea/otpboard/pkg/otpboard/repository"
	"github.com/mikepea/otpboard/pkg/otpboard/totp"
)

// Handler handles account-related requests
type Handler struct {
	store     *repository.Store
	generator *codes.Generator
	logger    *slog.Logger
	tick      time.Duration
}

// NewHandler creates a new accounts handler
func NewHandler(store *repository.Store, generator *codes.Generator, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		store:     store,
		generator: generator,
		logger:    logger,
		tick:      countdown.DefaultTickInterval,
	}
}

// CreateAccountRequest represents the request to create an account.
// An empty secret asks the server to generate one.
type CreateAccountRequest struct {
	Issuer  string   `json:"issuer" binding:"required"`
	Account string   `json:"account"`
	Secret  string   `json:"secret"`
	Remark  string   `json:"remark"`
	Period  int      `json:"period" binding:"omitempty,min=1,max=3600"`
	TagIDs  []uint   `json:"tag_ids"`
	Tags    []string `json:"tags"`
}

// UpdateAccountRequest represents the request to update an account.
// Absent fields are left unchanged; a present tag_ids replaces all tags.
type UpdateAccountRequest struct {
	Issuer  *string `json:"issuer"`
	Account *string `json:"account"`
	Secret  *string `json:"secret"`
	Remark  *string `json:"remark"`
	Period  *int    `json:"period" binding:"omitempty,min=1,max=3600"`
	TagIDs  *[]uint `json:"tag_ids"`
}

// TagResponse represents a tag attached to an account
type TagResponse struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// AccountResponse represents an account in API responses
type AccountResponse struct {
	ID        uint          `json:"id"`
	Issuer    string        `json:"issuer"`
	Account   string        `json:"account"`
	Secret    string        `json:"secret"`
	Remark    string        `json:"remark"`
	Period    int           `json:"period"`
	Tags      []TagResponse `json:"tags"`
	ShortLink *string       `json:"short_link"`
	CreatedAt string        `json:"created_at"`
	UpdatedAt string        `json:"updated_at"`
}

func accountToResponse(acc models.Account) AccountResponse {
	resp := AccountResponse{
		ID:        acc.ID,
		Issuer:    acc.Issuer,
		Account:   acc.Name,
		Secret:    acc.Secret,
		Remark:    acc.Remark,
		Period:    acc.EffectivePeriod(),
		Tags:      make([]TagResponse, len(acc.Tags)),
		CreatedAt: acc.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: acc.UpdatedAt.UTC().Format(time.RFC3339),
	}
	for i, t := range acc.Tags {
		resp.Tags[i] = TagResponse{ID: t.ID, Name: t.Name, Color: t.Color}
	}
	if link := acc.ShortLink(); link != "" {
		resp.ShortLink = &link
	}
	return resp
}

func parseAccountID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid account ID"})
		return 0, false
	}
	return uint(id), true
}

// parseTagFilter accepts ?tag=1&tag=2 as well as ?tags=1,2
func parseTagFilter(c *gin.Context) ([]uint, error) {
	raw := c.QueryArray("tag")
	if tags := c.Query("tags"); tags != "" {
		raw = append(raw, strings.Split(tags, ",")...)
	}

	ids := make([]uint, 0, len(raw))
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		id, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			return nil, err
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}

// List returns accounts, newest first unless sorted by name
// @Summary List accounts
// @Description List accounts with optional issuer, tag (all must match) and text filters
// @Tags accounts
// @Produce json
// @Param issuer query string false "Exact issuer"
// @Param tags query string false "Comma separated tag IDs; accounts must carry all of them"
// @Param q query string false "Case-insensitive search over issuer and account"
// @Param sort query string false "time (default) or name"
// @Success 200 {array} AccountResponse
// @Failure 400 {object} map[string]string "Invalid filter"
// @Security BearerAuth
// @Router /accounts [get]
func (h *Handler) List(c *gin.Context) {
	tagIDs, err := parseTagFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tag ID"})
		return
	}

	sort := c.DefaultQuery("sort", repository.SortByTime)
	if sort != repository.SortByTime && sort != repository.SortByName {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Sort must be time or name"})
		return
	}

	accounts, err := h.store.Accounts.Search(c.Request.Context(), repository.AccountFilter{
		Issuer: c.Query("issuer"),
		TagIDs: tagIDs,
		Query:  c.Query("q"),
		Sort:   sort,
	})
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "list accounts failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch accounts"})
		return
	}

	resp := make([]AccountResponse, len(accounts))
	for i, acc := range accounts {
		resp[i] = accountToResponse(acc)
	}
	c.JSON(http.StatusOK, resp)
}

// Create creates a new account
// @Summary Create an account
// @Description Store a TOTP secret. Tags can be given by ID or by name; unknown names are created.
// @Tags accounts
// @Accept json
// @Produce json
// @Param request body CreateAccountRequest true "Account"
// @Success 201 {object} AccountResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Security BearerAuth
// @Router /accounts [post]
func (h *Handler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	secret := req.Secret
	if strings.TrimSpace(secret) == "" {
		generated, err := totp.GenerateSecret(req.Issuer, req.Account)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate secret"})
			return
		}
		secret = generated
	} else if err := totp.ValidateSecret(secret); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid secret"})
		return
	}

	tagIDs := req.TagIDs
	for _, name := range req.Tags {
		if strings.TrimSpace(name) == "" {
			continue
		}
		tag, err := h.store.Tags.FindOrCreateByName(ctx, name)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create tag"})
			return
		}
		tagIDs = append(tagIDs, tag.ID)
	}

	acc, err := h.store.Accounts.Create(ctx, repository.NewAccount{
		Issuer: req.Issuer,
		Name:   req.Account,
		Secret: secret,
		Remark: req.Remark,
		Period: req.Period,
		TagIDs: tagIDs,
	})
	if err != nil {
		if errors.Is(err, repository.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.ErrorContext(ctx, "create account failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}

	c.JSON(http.StatusCreated, accountToResponse(*acc))
}

// Get returns one account
// @Summary Get an account
// @Tags accounts
// @Produce json
// @Param id path int true "Account ID"
// @Success 200 {object} AccountResponse
// @Failure 404 {object} map[string]string "Account not found"
// @Security BearerAuth
// @Router /accounts/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	acc, ok := h.loadAccount(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, accountToResponse(*acc))
}

// Update changes the present fields of an account
// @Summary Update an account
// @Tags accounts
// @Accept json
// @Produce json
// @Param id path int true "Account ID"
// @Param request body UpdateAccountRequest true "Changes"
// @Success 200 {object} AccountResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 404 {object} map[string]string "Account not found"
// @Security BearerAuth
// @Router /accounts/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	id, ok := parseAccountID(c)
	if !ok {
		return
	}

	var req UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Secret != nil {
		if err := totp.ValidateSecret(*req.Secret); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid secret"})
			return
		}
	}

	acc, err := h.store.Accounts.Update(c.Request.Context(), id, repository.AccountUpdate{
		Issuer: req.Issuer,
		Name:   req.Account,
		Secret: req.Secret,
		Remark: req.Remark,
		Period: req.Period,
		TagIDs: req.TagIDs,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		case errors.Is(err, repository.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.logger.ErrorContext(c.Request.Context(), "update account failed", "account_id", id, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update account"})
		}
		return
	}

	c.JSON(http.StatusOK, accountToResponse(*acc))
}

// Delete removes an account, its tag links and its share link
// @Summary Delete an account
// @Tags accounts
// @Produce json
// @Param id path int true "Account ID"
// @Success 200 {object} map[string]string "Account deleted"
// @Failure 404 {object} map[string]string "Account not found"
// @Security BearerAuth
// @Router /accounts/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	id, ok := parseAccountID(c)
	if !ok {
		return
	}

	if err := h.store.Accounts.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "delete account failed", "account_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete account"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Account deleted"})
}

// Code returns the live code of an account
// @Summary Current code
// @Tags accounts
// @Produce json
// @Param id path int true "Account ID"
// @Success 200 {object} codes.Result
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 422 {object} map[string]string "Stored secret is invalid"
// @Security BearerAuth
// @Router /accounts/{id}/code [get]
func (h *Handler) Code(c *gin.Context) {
	acc, ok := h.loadAccount(c)
	if !ok {
		return
	}

	res, err := h.generator.ForAccount(acc)
	if err != nil {
		if errors.Is(err, totp.ErrInvalidSecret) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Stored secret is invalid"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate code"})
		return
	}

	c.JSON(http.StatusOK, res)
}

// QRCode renders the account as an otpauth:// QR code
// @Summary Account QR code
// @Description PNG QR code for authenticator apps, or the raw URI with format=uri
// @Tags accounts
// @Produce png
// @Produce json
// @Param id path int true "Account ID"
// @Param size query int false "Edge length in pixels"
// @Param format query string false "png (default) or uri"
// @Success 200 {file} binary
// @Failure 404 {object} map[string]string "Account not found"
// @Security BearerAuth
// @Router /accounts/{id}/qrcode [get]
func (h *Handler) QRCode(c *gin.Context) {
	acc, ok := h.loadAccount(c)
	if !ok {
		return
	}

	uri, err := totp.KeyURI(acc.Issuer, acc.Name, acc.Secret, acc.EffectivePeriod())
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Stored secret is invalid"})
		return
	}

	if c.Query("format") == "uri" {
		c.JSON(http.StatusOK, gin.H{"uri": uri})
		return
	}

	size, _ := strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(totp.DefaultQRSize)))
	if size < 64 || size > 1024 {
		size = totp.DefaultQRSize
	}

	png, err := totp.QRCode(uri, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render QR code"})
		return
	}

	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", png)
}

// AddTag attaches a tag to an account
// @Summary Tag an account
// @Tags accounts
// @Produce json
// @Param id path int true "Account ID"
// @Param tagId path int true "Tag ID"
// @Success 200 {object} AccountResponse
// @Failure 404 {object} map[string]string "Account or tag not found"
// @Security BearerAuth
// @Router /accounts/{id}/tags/{tagId} [post]
func (h *Handler) AddTag(c *gin.Context) {
	id, ok := parseAccountID(c)
	if !ok {
		return
	}
	tagID, err := strconv.ParseUint(c.Param("tagId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tag ID"})
		return
	}

	if err := h.store.Accounts.AddTag(c.Request.Context(), id, uint(tagID)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Account or tag not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add tag"})
		return
	}

	h.Get(c)
}

// RemoveTag detaches a tag from an account
// @Summary Untag an account
// @Tags accounts
// @Produce json
// @Param id path int true "Account ID"
// @Param tagId path int true "Tag ID"
// @Success 200 {object} map[string]string "Tag removed"
// @Failure 404 {object} map[string]string "Tag not on account"
// @Security BearerAuth
// @Router /accounts/{id}/tags/{tagId} [delete]
func (h *Handler) RemoveTag(c *gin.Context) {
	id, ok := parseAccountID(c)
	if !ok {
		return
	}
	tagID, err := strconv.ParseUint(c.Param("tagId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tag ID"})
		return
	}

	if err := h.store.Accounts.RemoveTag(c.Request.Context(), id, uint(tagID)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Tag not on account"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove tag"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Tag removed"})
}

// loadAccount resolves the :id parameter, writing the error response itself
func (h *Handler) loadAccount(c *gin.Context) (*models.Account, bool) {
	id, ok := parseAccountID(c)
	if !ok {
		return nil, false
	}

	acc, err := h.store.Accounts.FindByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch account"})
		return nil, false
	}
	return acc, true
}

// RegisterRoutes registers account routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/accounts", h.List)
	rg.POST("/accounts", h.Create)
	rg.GET("/accounts/stream", h.Stream)
	rg.GET("/accounts/:id", h.Get)
	rg.PUT("/accounts/:id", h.Update)
	rg.DELETE("/accounts/:id", h.Delete)
	rg.GET("/accounts/:id/code", h.Code)
	rg.GET("/accounts/:id/qrcode", h.QRCode)
	rg.POST("/accounts/:id/tags/:tagId", h.AddTag)
	rg.DELETE("/accounts/:id/tags/:tagId", h.RemoveTag)
}
