package keepalive

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/otpboard/pkg/otpboard/database"
	"github.com/mikepea/otpboard/pkg/otpboard/logging"
	"github.com/mikepea/otpboard/pkg/otpboard/models"
	"github.com/mikepea/otpboard/pkg/otpboard/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *repository.Store {
	t.Helper()
	db, err := database.Open(database.Options{DSN: filepath.Join(t.TempDir(), "keepalive.db")})
	require.NoError(t, err, "Failed to connect to test database")
	require.NoError(t, models.AutoMigrate(db))
	return repository.New(db, repository.WithLogger(logging.Discard()))
}

func setupTestRouter(accounts Accounts, secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(accounts, secret, logging.Discard())
	h.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	h.RegisterRoutes(r.Group("/api"))
	return r
}

type failingAccounts struct {
	creates int
	failAt  int
	deleted bool
}

func (f *failingAccounts) Create(_ context.Context, in repository.NewAccount) (*models.Account, error) {
	if f.creates == f.failAt {
		return nil, errors.New("disk full")
	}
	f.creates++
	return &models.Account{Issuer: in.Issuer}, nil
}

func (f *failingAccounts) DeleteByIssuer(_ context.Context, issuer string) (int64, error) {
	f.deleted = true
	return int64(f.creates), nil
}

func TestRunLeavesNoAccounts(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	kept, err := store.Accounts.Create(ctx, repository.NewAccount{Issuer: "GitHub", Secret: Secret})
	require.NoError(t, err)

	result, err := Run(ctx, store.Accounts)
	require.NoError(t, err)
	assert.Equal(t, Count, result.Created)
	assert.Equal(t, int64(Count), result.Deleted)

	count, err := store.Accounts.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	_, err = store.Accounts.FindByID(ctx, kept.ID)
	assert.NoError(t, err)
}

func TestRunSweepsLeftovers(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	_, err := store.Accounts.Create(ctx, repository.NewAccount{Issuer: Issuer, Name: "stale", Secret: Secret})
	require.NoError(t, err)

	result, err := Run(ctx, store.Accounts)
	require.NoError(t, err)
	assert.Equal(t, int64(Count+1), result.Deleted)
}

func TestRunCleansUpAfterCreateFailure(t *testing.T) {
	accounts := &failingAccounts{failAt: 5}

	result, err := Run(context.Background(), accounts)
	require.Error(t, err)
	assert.Equal(t, 5, result.Created)
	assert.True(t, accounts.deleted)
}

func TestKeepAliveHandler(t *testing.T) {
	store := setupTestStore(t)
	router := setupTestRouter(store.Accounts, "")

	resp := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/cron/keep-alive", nil)
	router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var body Response
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, Count, body.Created)
	assert.Equal(t, "Keep-alive completed: created and deleted 20 accounts", body.Message)
	assert.Equal(t, "2026-01-02T03:04:05Z", body.Timestamp)
}

func TestKeepAliveHandlerSecret(t *testing.T) {
	store := setupTestStore(t)
	router := setupTestRouter(store.Accounts, "cron-secret")

	resp := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/cron/keep-alive", nil)
	router.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/api/cron/keep-alive", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	router.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/api/cron/keep-alive", nil)
	req.Header.Set("Authorization", "Bearer cron-secret")
	router.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestKeepAliveHandlerFailure(t *testing.T) {
	router := setupTestRouter(&failingAccounts{failAt: 0}, "")

	resp := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/cron/keep-alive", nil)
	router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusInternalServerError, resp.Code)

	var body Response
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "Keep-alive failed", body.Error)
}
