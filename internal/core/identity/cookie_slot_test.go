package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCookieSecret = "0123456789abcdef0123456789abcdef"

func resolveOnRequest(t *testing.T, r *http.Request) (Voter, *httptest.ResponseRecorder) {
	t.Helper()
	store, err := NewCookieStore(testCookieSecret, false, 24*time.Hour)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	p := NewProvider(NewRequestSlot(store, DefaultCookieName, w, r), nil, zerolog.Nop())
	return p.ResolveIdentity(context.Background(), ""), w
}

func TestNewCookieStore_ShortSecret(t *testing.T) {
	_, err := NewCookieStore("short", false, time.Hour)
	assert.Error(t, err)
}

func TestRequestSlot_IssuesAndPersistsCookie(t *testing.T) {
	first, w := resolveOnRequest(t, httptest.NewRequest(http.MethodGet, "/api/places/1/reactions", nil))
	require.Equal(t, KindAnonymous, first.Kind)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, DefaultCookieName, cookies[0].Name)

	repeat := httptest.NewRequest(http.MethodGet, "/api/places/1/reactions", nil)
	repeat.AddCookie(cookies[0])
	second, w2 := resolveOnRequest(t, repeat)

	assert.Equal(t, first, second)
	assert.Empty(t, w2.Result().Cookies(), "an existing id is not re-issued")
}

func TestRequestSlot_ExplicitClientIDWins(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/places/1/reactions", nil)
	r.Header.Set(ClientIDHeader, "browser-uuid-1")

	voter, w := resolveOnRequest(t, r)

	assert.Equal(t, Anonymous("browser-uuid-1"), voter)
	assert.Empty(t, w.Result().Cookies())
}

func TestRequestSlot_QueryParam(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/places/1/reactions?client_id=from-query", nil)
	voter, _ := resolveOnRequest(t, r)
	assert.Equal(t, Anonymous("from-query"), voter)
}

func TestRequestSlot_TamperedCookie(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: "not-a-signed-value"})

	voter, w := resolveOnRequest(t, r)

	assert.Equal(t, KindAnonymous, voter.Kind)
	require.Len(t, w.Result().Cookies(), 1, "a fresh cookie replaces the tampered one")
	assert.False(t, strings.Contains(w.Result().Cookies()[0].Value, "not-a-signed-value"))
}
