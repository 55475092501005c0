package accounts

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/otpboard/pkg/otpboard/codes"
	"github.com/mikepea/otpboard/pkg/otpboard/countdown"
	"github.com/mikepea/otpboard/pkg/otpboard/database"
	"github.com/mikepea/otpboard/pkg/otpboard/logging"
	"github.com/mikepea/otpboard/pkg/otpboard/models"
	"github.com/mikepea/otpboard/pkg/otpboard/repository"
	"github.com/mikepea/otpboard/pkg/otpboard/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rfcSecret = "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ"

func setupTestStore(t *testing.T) *repository.Store {
	t.Helper()
	db, err := database.Open(database.Options{DSN: filepath.Join(t.TempDir(), "accounts.db")})
	require.NoError(t, err, "Failed to connect to test database")
	require.NoError(t, models.AutoMigrate(db))
	return repository.New(db, repository.WithLogger(logging.Discard()))
}

func setupTestHandler(store *repository.Store) *Handler {
	sched := countdown.NewScheduler(30, countdown.FixedClock{T: time.Unix(59, 0)})
	h := NewHandler(store, codes.NewGenerator(sched), logging.Discard())
	h.tick = 10 * time.Millisecond
	return h
}

func setupTestRouter(store *repository.Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	setupTestHandler(store).RegisterRoutes(r.Group("/api"))
	return r
}

func jsonRequest(method, path string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func serve(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func createTestAccount(t *testing.T, store *repository.Store, issuer, name string, period int, tagIDs ...uint) *models.Account {
	t.Helper()
	acc, err := store.Accounts.Create(context.Background(), repository.NewAccount{
		Issuer: issuer, Name: name, Secret: rfcSecret, Period: period, TagIDs: tagIDs,
	})
	require.NoError(t, err)
	return acc
}

func TestCreateAccount(t *testing.T) {
	store := setupTestStore(t)
	router := setupTestRouter(store)

	resp := serve(router, jsonRequest("POST", "/api/accounts", CreateAccountRequest{
		Issuer:  "GitHub",
		Account: "alice@example.com",
		Secret:  "jbsw y3dp ehpk 3pxp",
		Remark:  "work laptop",
		Tags:    []string{"work", "work", ""},
	}))
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var acc AccountResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &acc))
	assert.Equal(t, "GitHub", acc.Issuer)
	assert.Equal(t, "alice@example.com", acc.Account)
	assert.Equal(t, "jbsw y3dp ehpk 3pxp", acc.Secret)
	assert.Equal(t, 30, acc.Period)
	assert.Nil(t, acc.ShortLink)
	require.Len(t, acc.Tags, 1)
	assert.Equal(t, "work", acc.Tags[0].Name)
	assert.Equal(t, repository.PaletteColor("work"), acc.Tags[0].Color)
}

func TestCreateAccountGeneratesSecret(t *testing.T) {
	store := setupTestStore(t)
	router := setupTestRouter(store)

	resp := serve(router, jsonRequest("POST", "/api/accounts", CreateAccountRequest{Issuer: "Internal"}))
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var acc AccountResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &acc))
	assert.NoError(t, totp.ValidateSecret(acc.Secret))
}

func TestCreateAccountValidation(t *testing.T) {
	store := setupTestStore(t)
	router := setupTestRouter(store)

	tests := []struct {
		name string
		body interface{}
	}{
		{"missing issuer", map[string]string{"secret": rfcSecret}},
		{"invalid secret", CreateAccountRequest{Issuer: "GitHub", Secret: "not-base32!"}},
		{"negative period", map[string]interface{}{"issuer": "GitHub", "secret": rfcSecret, "period": -5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := serve(router, jsonRequest("POST", "/api/accounts", tt.body))
			assert.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())
		})
	}
}

func TestListAccountsFilters(t *testing.T) {
	store := setupTestStore(t)
	router := setupTestRouter(store)
	ctx := context.Background()

	work, err := store.Tags.Create(ctx, "work", "")
	require.NoError(t, err)
	prod, err := store.Tags.Create(ctx, "prod", "")
	require.NoError(t, err)

	createTestAccount(t, store, "GitHub", "alice", 0, work.ID, prod.ID)
	createTestAccount(t, store, "GitLab", "bob", 0, work.ID)
	createTestAccount(t, store, "AWS", "root", 0)

	list := func(query string) []AccountResponse {
		resp := serve(router, jsonRequest("GET", "/api/accounts"+query, nil))
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
		var accounts []AccountResponse
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &accounts))
		return accounts
	}

	assert.Len(t, list(""), 3)
	assert.Len(t, list("?issuer=AWS"), 1)
	assert.Len(t, list("?tags=1,2"), 1)
	assert.Len(t, list("?tag=1"), 2)
	assert.Len(t, list("?q=BOB"), 1)

	byName := list("?sort=name")
	require.Len(t, byName, 3)
	assert.Equal(t, "AWS", byName[0].Issuer)

	assert.Equal(t, http.StatusBadRequest, serve(router, jsonRequest("GET", "/api/accounts?tags=x", nil)).Code)
	assert.Equal(t, http.StatusBadRequest, serve(router, jsonRequest("GET", "/api/accounts?sort=size", nil)).Code)
}

func TestGetAccountIncludesShortLink(t *testing.T) {
	store := setupTestStore(t)
	router := setupTestRouter(store)
	acc := createTestAccount(t, store, "GitHub", "alice", 0)
	link, err := store.ShareLinks.CreateForAccount(context.Background(), acc.ID)
	require.NoError(t, err)

	resp := serve(router, jsonRequest("GET", "/api/accounts/1", nil))
	require.Equal(t, http.StatusOK, resp.Code)

	var got AccountResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
	require.NotNil(t, got.ShortLink)
	assert.Equal(t, link.ShortLink, *got.ShortLink)

	assert.Equal(t, http.StatusNotFound, serve(router, jsonRequest("GET", "/api/accounts/2", nil)).Code)
	assert.Equal(t, http.StatusBadRequest, serve(router, jsonRequest("GET", "/api/accounts/abc", nil)).Code)
}

func TestUpdateAccount(t *testing.T) {
	store := setupTestStore(t)
	router := setupTestRouter(store)
	ctx := context.Background()

	a, _ := store.Tags.Create(ctx, "a", "")
	b, _ := store.Tags.Create(ctx, "b", "")
	c, _ := store.Tags.Create(ctx, "c", "")
	createTestAccount(t, store, "GitHub", "alice", 0, a.ID, b.ID)

	resp := serve(router, jsonRequest("PUT", "/api/accounts/1", map[string]interface{}{
		"remark":  "rotated",
		"tag_ids": []uint{b.ID, c.ID},
	}))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var got AccountResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
	assert.Equal(t, "GitHub", got.Issuer)
	assert.Equal(t, "alice", got.Account)
	assert.Equal(t, "rotated", got.Remark)
	require.Len(t, got.Tags, 2)
	assert.Equal(t, "b", got.Tags[0].Name)
	assert.Equal(t, "c", got.Tags[1].Name)

	resp = serve(router, jsonRequest("PUT", "/api/accounts/1", map[string]interface{}{"secret": "???"}))
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = serve(router, jsonRequest("PUT", "/api/accounts/1", map[string]interface{}{"tag_ids": []uint{999}}))
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = serve(router, jsonRequest("PUT", "/api/accounts/42", map[string]interface{}{"remark": "x"}))
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestDeleteAccount(t *testing.T) {
	store := setupTestStore(t)
	router := setupTestRouter(store)
	createTestAccount(t, store, "GitHub", "alice", 0)

	assert.Equal(t, http.StatusOK, serve(router, jsonRequest("DELETE", "/api/accounts/1", nil)).Code)
	assert.Equal(t, http.StatusNotFound, serve(router, jsonRequest("DELETE", "/api/accounts/1", nil)).Code)
}

func TestAccountCode(t *testing.T) {
	store := setupTestStore(t)
	router := setupTestRouter(store)
	createTestAccount(t, store, "RFC", "vector", 0)

	resp := serve(router, jsonRequest("GET", "/api/accounts/1/code", nil))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var res codes.Result
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &res))
	assert.Equal(t, "287082", res.Code)
	assert.Equal(t, 1, res.Remaining)
	assert.Equal(t, countdown.ModeGlobal, res.Mode)
}

func TestAccountQRCode(t *testing.T) {
	store := setupTestStore(t)
	router := setupTestRouter(store)
	createTestAccount(t, store, "RFC", "vector", 60)

	resp := serve(router, jsonRequest("GET", "/api/accounts/1/qrcode?size=128", nil))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "image/png", resp.Header().Get("Content-Type"))
	img, err := png.Decode(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, 128, img.Bounds().Dx())

	resp = serve(router, jsonRequest("GET", "/api/accounts/1/qrcode?format=uri", nil))
	require.Equal(t, http.StatusOK, resp.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.True(t, strings.HasPrefix(body["uri"], "otpauth://totp/"))
	assert.Contains(t, body["uri"], "period=60")
	assert.Contains(t, body["uri"], "issuer=RFC")
}

func TestAccountTags(t *testing.T) {
	store := setupTestStore(t)
	router := setupTestRouter(store)
	tag, err := store.Tags.Create(context.Background(), "work", "")
	require.NoError(t, err)
	createTestAccount(t, store, "GitHub", "alice", 0)

	resp := serve(router, jsonRequest("POST", "/api/accounts/1/tags/1", nil))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var got AccountResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
	require.Len(t, got.Tags, 1)
	assert.Equal(t, tag.ID, got.Tags[0].ID)

	assert.Equal(t, http.StatusNotFound, serve(router, jsonRequest("POST", "/api/accounts/1/tags/9", nil)).Code)
	assert.Equal(t, http.StatusOK, serve(router, jsonRequest("DELETE", "/api/accounts/1/tags/1", nil)).Code)
	assert.Equal(t, http.StatusNotFound, serve(router, jsonRequest("DELETE", "/api/accounts/1/tags/1", nil)).Code)
}

func TestStream(t *testing.T) {
	store := setupTestStore(t)
	router := setupTestRouter(store)
	global := createTestAccount(t, store, "RFC", "thirty", 30)
	local := createTestAccount(t, store, "RFC", "sixty", 60)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, "GET", "/api/accounts/stream", nil)
	resp := serve(router, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "text/event-stream", resp.Header().Get("Content-Type"))

	events := map[countdown.Mode]StreamEvent{}
	for _, line := range strings.Split(resp.Body.String(), "\n") {
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		var ev StreamEvent
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data:")), &ev))
		if ev.Regenerate {
			events[ev.Mode] = ev
		}
	}

	require.Contains(t, events, countdown.ModeGlobal)
	require.Contains(t, events, countdown.ModeLocal)

	g := events[countdown.ModeGlobal]
	assert.Equal(t, 30, g.Period)
	assert.Equal(t, 1, g.Remaining)
	require.Len(t, g.Codes, 1)
	assert.Equal(t, global.ID, g.Codes[0].ID)
	assert.Equal(t, "287082", g.Codes[0].Code)

	l := events[countdown.ModeLocal]
	assert.Equal(t, 60, l.Period)
	assert.Equal(t, 1, l.Remaining)
	require.Len(t, l.Codes, 1)
	assert.Equal(t, local.ID, l.Codes[0].ID)
}

func TestGroupByPeriod(t *testing.T) {
	groups := groupByPeriod([]models.Account{
		{ID: 1, Period: 30}, {ID: 2, Period: 0}, {ID: 3, Period: 60},
	}, 30)

	assert.Len(t, groups, 2)
	assert.Len(t, groups[30], 2)
	assert.Len(t, groups[60], 1)
	assert.Contains(t, groupByPeriod(nil, 30), 30)
}
