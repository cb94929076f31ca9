package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	glogger "gorm.io/gorm/logger"

	"github.com/AndresIzquierdoBrito/AppCacheAPI/internal/auth"
	"github.com/AndresIzquierdoBrito/AppCacheAPI/internal/config"
	"github.com/AndresIzquierdoBrito/AppCacheAPI/internal/db"
	"github.com/AndresIzquierdoBrito/AppCacheAPI/internal/idea"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: glogger.Default.LogMode(glogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	cfg := config.Config{
		FrontendOrigin:    "http://localhost:5173",
		SessionCookieName: "appcache_session",
	}
	sessions := auth.NewSessions("test-secret", cfg.SessionCookieName, time.Hour)
	google := auth.NewGoogleClient("client_id", "secret", "http://localhost:8080/account/signin-google")

	return NewRouter(cfg, gdb, sessions, google, zerolog.Nop())
}

func do(t *testing.T, h http.Handler, method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == "appcache_session" && c.Value != "" {
			return c
		}
	}
	t.Fatal("no session cookie in response")
	return nil
}

func register(t *testing.T, h http.Handler, email, username string) *http.Cookie {
	t.Helper()

	rec := do(t, h, http.MethodPost, "/account/register", map[string]string{
		"email": email, "username": username, "password": "hunter2",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodPost, "/account/login", map[string]string{
		"email": email, "password": "hunter2",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	return sessionCookie(t, rec)
}

func listIdeas(t *testing.T, h http.Handler, cookie *http.Cookie) []idea.Entry {
	t.Helper()
	rec := do(t, h, http.MethodGet, "/ideas", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	var entries []idea.Entry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	return entries
}

func TestHealth(t *testing.T) {
	h := newTestRouter(t)
	rec := do(t, h, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestIdeasRequireSession(t *testing.T) {
	h := newTestRouter(t)
	rec := do(t, h, http.MethodGet, "/ideas", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegisterValidationErrors(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/account/register", map[string]string{
		"email": "nope", "username": "", "password": "x",
	}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body struct {
		Errors []string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Errors, 3)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	h := newTestRouter(t)
	register(t, h, "a@x.com", "alex")

	rec := do(t, h, http.MethodPost, "/account/login", map[string]string{
		"email": "a@x.com", "password": "wrong",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestIdeaFlow(t *testing.T) {
	h := newTestRouter(t)
	cookie := register(t, h, "a@x.com", "alex")

	// Fresh account, empty default list.
	assert.Empty(t, listIdeas(t, h, cookie))

	rec := do(t, h, http.MethodPost, "/ideas", map[string]string{
		"title": "Buy milk", "description": "two liters",
	}, cookie)
	require.Equal(t, http.StatusCreated, rec.Code)
	var milk idea.Entry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &milk))
	assert.Equal(t, 0, milk.Order)
	assert.Equal(t, fmt.Sprintf("/ideas/%d", milk.IdeaID), rec.Header().Get("Location"))

	rec = do(t, h, http.MethodPost, "/ideas", map[string]string{"title": "Walk dog"}, cookie)
	require.Equal(t, http.StatusCreated, rec.Code)
	var dog idea.Entry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dog))
	assert.Equal(t, 1, dog.Order)

	entries := listIdeas(t, h, cookie)
	require.Len(t, entries, 2)
	assert.Equal(t, "Buy milk", entries[0].Title)
	assert.Equal(t, "Walk dog", entries[1].Title)

	// Reorder to [Walk dog, Buy milk].
	rec = do(t, h, http.MethodPut, "/ideas/reorder", []idea.OrderPair{
		{IdeaID: dog.IdeaID, Order: 0},
		{IdeaID: milk.IdeaID, Order: 1},
	}, cookie)
	require.Equal(t, http.StatusNoContent, rec.Code)

	entries = listIdeas(t, h, cookie)
	assert.Equal(t, "Walk dog", entries[0].Title)
	assert.Equal(t, "Buy milk", entries[1].Title)

	// Explicit category ordering back to the original.
	rec = do(t, h, http.MethodPut, fmt.Sprintf("/ideas/order/%d", milk.CategoryID),
		[]uint64{milk.IdeaID, dog.IdeaID}, cookie)
	require.Equal(t, http.StatusNoContent, rec.Code)
	entries = listIdeas(t, h, cookie)
	assert.Equal(t, "Buy milk", entries[0].Title)

	// Full replacement.
	rec = do(t, h, http.MethodPut, fmt.Sprintf("/ideas/%d", milk.IdeaID), map[string]any{
		"ideaId": milk.IdeaID, "title": "Buy oat milk", "description": "",
	}, cookie)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodGet, fmt.Sprintf("/ideas/%d", milk.IdeaID), nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	var got idea.Entry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Buy oat milk", got.Title)

	// Path/payload id mismatch.
	rec = do(t, h, http.MethodPut, fmt.Sprintf("/ideas/%d", milk.IdeaID), map[string]any{
		"ideaId": dog.IdeaID, "title": "x",
	}, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Delete and the idea disappears.
	rec = do(t, h, http.MethodDelete, fmt.Sprintf("/ideas/%d", milk.IdeaID), nil, cookie)
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, h, http.MethodGet, fmt.Sprintf("/ideas/%d", milk.IdeaID), nil, cookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(t, h, http.MethodDelete, fmt.Sprintf("/ideas/%d", milk.IdeaID), nil, cookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Another user cannot see or move A's ideas.
	other := register(t, h, "b@x.com", "blake")
	rec = do(t, h, http.MethodGet, fmt.Sprintf("/ideas/%d", dog.IdeaID), nil, other)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(t, h, http.MethodPut, "/ideas/reorder", []idea.OrderPair{
		{IdeaID: dog.IdeaID, Order: 0},
	}, other)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFromCategoryEndpoint(t *testing.T) {
	h := newTestRouter(t)
	cookie := register(t, h, "a@x.com", "alex")

	rec := do(t, h, http.MethodPost, "/ideas", map[string]string{"title": "Buy milk"}, cookie)
	require.Equal(t, http.StatusCreated, rec.Code)
	var e idea.Entry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))

	rec = do(t, h, http.MethodGet, fmt.Sprintf("/ideas/from-category/%d", e.CategoryID), nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	other := register(t, h, "b@x.com", "blake")
	rec = do(t, h, http.MethodGet, fmt.Sprintf("/ideas/from-category/%d", e.CategoryID), nil, other)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestLogoutClearsCookie(t *testing.T) {
	h := newTestRouter(t)
	cookie := register(t, h, "a@x.com", "alex")

	rec := do(t, h, http.MethodPost, "/account/logout", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	cleared := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == "appcache_session" && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared)
}

func TestMe(t *testing.T) {
	h := newTestRouter(t)
	cookie := register(t, h, "a@x.com", "alex")

	rec := do(t, h, http.MethodGet, "/account/me", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Username string   `json:"username"`
		Roles    []string `json:"roles"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "alex", body.Username)
	assert.Contains(t, body.Roles, auth.RoleUser)
}

func TestGoogleLoginRedirects(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/account/login-google", nil, nil)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Location"), "https://accounts.google.com/"))
}

func TestGoogleCallbackWithoutCode(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/account/signin-google?state=whatever", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
