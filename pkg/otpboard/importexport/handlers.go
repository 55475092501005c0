package importexport

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/otpboard/pkg/otpboard/repository"
)

// MaxUploadSize caps the size of an import body
const MaxUploadSize = 5 << 20

// ExportFilename is the download name of an export
const ExportFilename = "2fa_accounts.csv"

// Handler handles CSV import and export requests
type Handler struct {
	store  *repository.Store
	logger *slog.Logger
}

// NewHandler creates a new import/export handler
func NewHandler(store *repository.Store, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{store: store, logger: logger}
}

// ImportResponse is the summary returned after an import
type ImportResponse struct {
	Result
	Message string `json:"message"`
}

// Import creates accounts from an uploaded CSV file
// @Summary Import accounts
// @Description Import accounts from CSV (issuer,account,secret,remark). Accepts a multipart "file" field or a raw text/csv body. Bad rows are skipped and reported.
// @Tags import-export
// @Accept multipart/form-data
// @Accept text/csv
// @Produce json
// @Param file formData file false "CSV file"
// @Success 200 {object} ImportResponse
// @Failure 400 {object} map[string]string
// @Failure 413 {object} map[string]string
// @Security BearerAuth
// @Router /import [post]
func (h *Handler) Import(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadSize)

	var body io.Reader
	if fh, err := c.FormFile("file"); err == nil {
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read uploaded file"})
			return
		}
		defer f.Close()
		body = f
	} else {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File too large"})
			return
		}
		if c.ContentType() == "multipart/form-data" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "CSV file is required"})
			return
		}
		body = c.Request.Body
	}

	result, err := Import(c.Request.Context(), h.store.Accounts, body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File too large"})
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "import failed", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read CSV"})
		return
	}

	h.logger.InfoContext(c.Request.Context(), "accounts imported",
		"imported", result.Imported, "skipped", result.Skipped)
	c.JSON(http.StatusOK, ImportResponse{
		Result:  *result,
		Message: fmt.Sprintf("Imported %d of %d accounts", result.Imported, result.Total),
	})
}

// Export downloads every account as CSV
// @Summary Export accounts
// @Description Download all accounts as CSV, newest first
// @Tags import-export
// @Produce text/csv
// @Success 200 {file} file
// @Security BearerAuth
// @Router /export [get]
func (h *Handler) Export(c *gin.Context) {
	accounts, err := h.store.Accounts.FindAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch accounts"})
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ExportFilename))
	c.Status(http.StatusOK)
	if err := Export(c.Writer, accounts); err != nil {
		h.logger.ErrorContext(c.Request.Context(), "export write failed", "error", err)
	}
}

// RegisterRoutes registers import/export routes on the router group
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/import", h.Import)
	rg.GET("/export", h.Export)
}
