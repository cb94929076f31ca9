package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSessions() *Sessions {
	return NewSessions("test-secret", "appcache_session", time.Hour)
}

func TestSessionRoundTrip(t *testing.T) {
	s := testSessions()

	in := Principal{UserID: 42, Username: "alex", Roles: []string{RoleUser}}
	token, err := s.Sign(in)
	require.NoError(t, err)

	out, err := s.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestVerifyRejectsForeignToken(t *testing.T) {
	s := testSessions()
	other := NewSessions("other-secret", "appcache_session", time.Hour)

	token, err := other.Sign(Principal{UserID: 1})
	require.NoError(t, err)

	_, err = s.Verify(token)
	require.Error(t, err)

	_, err = s.Verify("not-a-token")
	require.Error(t, err)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	s := NewSessions("test-secret", "appcache_session", -time.Minute)

	token, err := s.Sign(Principal{UserID: 1})
	require.NoError(t, err)

	_, err = s.Verify(token)
	require.Error(t, err)
}

func TestRequireAuth(t *testing.T) {
	s := testSessions()

	var seen Principal
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	protected := RequireAuth(s)(next)

	// No credentials.
	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Session cookie.
	issue := httptest.NewRecorder()
	require.NoError(t, s.Issue(issue, Principal{UserID: 7, Username: "alex", Roles: []string{RoleUser}}))
	cookies := issue.Result().Cookies()
	require.Len(t, cookies, 1)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint64(7), seen.UserID)
	assert.Equal(t, "alex", seen.Username)

	// Bearer header works too.
	token, err := s.Sign(Principal{UserID: 8})
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint64(8), seen.UserID)
}

func TestClearExpiresCookie(t *testing.T) {
	s := testSessions()

	rec := httptest.NewRecorder()
	s.Clear(rec)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "appcache_session", cookies[0].Name)
	assert.Less(t, cookies[0].MaxAge, 0)
}
