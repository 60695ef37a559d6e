package routes

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CapeTravel/internal/api/middleware"
	"CapeTravel/internal/auth"
	"CapeTravel/internal/core/catalogue"
	"CapeTravel/internal/core/identity"
	"CapeTravel/internal/core/reactions"
	"CapeTravel/internal/core/viewport"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type testServer struct {
	handler http.Handler
	tokens  *auth.TokenService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := zerolog.Nop()

	tokens, err := auth.NewTokenService(testSecret, "", time.Hour)
	require.NoError(t, err)
	store, err := identity.NewCookieStore(testSecret, false, time.Hour)
	require.NoError(t, err)

	gallery := []*catalogue.GalleryImage{{ID: 1, ImageURL: "https://example.com/1.jpg"}}
	catalogueService := catalogue.NewService(catalogue.NewMemoryRepository(catalogue.SeedPlaces(), gallery), viewport.NewFitter(), logger)
	reactionService := reactions.NewService(reactions.NewMemoryStore(), catalogue.NewSubjectValidator(catalogueService), logger)

	return &testServer{
		handler: NewRouter(Services{
			Reactions:      reactionService,
			Catalogue:      catalogueService,
			AuthMiddleware: middleware.NewAuthMiddleware(store, identity.DefaultCookieName, tokens, logger),
			Logger:         logger,
			CORSOrigins:    []string{"*"},
		}),
		tokens: tokens,
	}
}

func (s *testServer) do(t *testing.T, method, path, body string, mutate func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if mutate != nil {
		mutate(req)
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

func withClientID(id string) func(*http.Request) {
	return func(r *http.Request) { r.Header.Set(identity.ClientIDHeader, id) }
}

func withToken(token string) func(*http.Request) {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

func withCookies(cookies []*http.Cookie) func(*http.Request) {
	return func(r *http.Request) {
		for _, c := range cookies {
			r.AddCookie(c)
		}
	}
}

type aggregateBody struct {
	Mine     *int `json:"mine"`
	Likes    int  `json:"likes"`
	Dislikes int  `json:"dislikes"`
}

func decodeAggregate(t *testing.T, w *httptest.ResponseRecorder) aggregateBody {
	t.Helper()
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var body aggregateBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestReactions_AnonymousCookieIssuedAndReused(t *testing.T) {
	s := newTestServer(t)

	first := s.do(t, http.MethodGet, "/api/places/1/reactions", "", nil)
	agg := decodeAggregate(t, first)
	assert.Equal(t, aggregateBody{}, agg)
	assert.Contains(t, first.Body.String(), `"mine":null`)

	cookies := first.Result().Cookies()
	require.NotEmpty(t, cookies, "first visit issues a visitor cookie")

	agg = decodeAggregate(t, s.do(t, http.MethodPut, "/api/places/1/react", `{"value":1}`, withCookies(cookies)))
	assert.Equal(t, 1, agg.Likes)
	require.NotNil(t, agg.Mine)
	assert.Equal(t, 1, *agg.Mine)

	agg = decodeAggregate(t, s.do(t, http.MethodGet, "/api/places/1/reactions", "", withCookies(cookies)))
	require.NotNil(t, agg.Mine, "same cookie is the same voter")
	assert.Equal(t, 1, *agg.Mine)

	agg = decodeAggregate(t, s.do(t, http.MethodGet, "/api/places/1/reactions", "", nil))
	assert.Nil(t, agg.Mine, "a new visitor has no vote")
	assert.Equal(t, 1, agg.Likes)
}

func TestReactions_ToggleAndSwitch(t *testing.T) {
	s := newTestServer(t)
	client := withClientID("visitor-a")

	agg := decodeAggregate(t, s.do(t, http.MethodPut, "/api/gallery/1/react", `{"value":1}`, client))
	assert.Equal(t, aggregateBody{Mine: intPtr(1), Likes: 1}, agg)

	agg = decodeAggregate(t, s.do(t, http.MethodPut, "/api/gallery/1/react", `{"value":-1}`, client))
	assert.Equal(t, aggregateBody{Mine: intPtr(-1), Dislikes: 1}, agg)

	agg = decodeAggregate(t, s.do(t, http.MethodPut, "/api/gallery/1/react", `{"value":-1}`, client))
	assert.Equal(t, aggregateBody{}, agg)
}

func TestReactions_AuthenticatedAndAnonymousAreDistinct(t *testing.T) {
	s := newTestServer(t)
	token, err := s.tokens.Issue("42")
	require.NoError(t, err)

	decodeAggregate(t, s.do(t, http.MethodPut, "/api/places/2/react", `{"value":1}`, withToken(token)))
	agg := decodeAggregate(t, s.do(t, http.MethodPut, "/api/places/2/react", `{"value":1}`, withClientID("42")))
	assert.Equal(t, 2, agg.Likes)

	agg = decodeAggregate(t, s.do(t, http.MethodGet, "/api/places/2/reactions", "", withToken(token)))
	require.NotNil(t, agg.Mine)
	assert.Equal(t, 1, *agg.Mine)
}

func TestReactions_InvalidTokenFallsBackToAnonymous(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPut, "/api/places/3/react", `{"value":1}`, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer garbage")
		r.Header.Set(identity.ClientIDHeader, "visitor-b")
	})
	agg := decodeAggregate(t, w)
	assert.Equal(t, 1, agg.Likes)

	agg = decodeAggregate(t, s.do(t, http.MethodGet, "/api/places/3/reactions?client_id=visitor-b", "", nil))
	require.NotNil(t, agg.Mine)
}

func TestReactions_BodyClientIDMatchesQueryClientID(t *testing.T) {
	s := newTestServer(t)

	agg := decodeAggregate(t, s.do(t, http.MethodPut, "/api/places/4/react", `{"value":-1,"client_id":"abc-123"}`, nil))
	assert.Equal(t, 1, agg.Dislikes)

	agg = decodeAggregate(t, s.do(t, http.MethodGet, "/api/places/4/reactions?client_id=abc-123", "", nil))
	require.NotNil(t, agg.Mine)
	assert.Equal(t, -1, *agg.Mine)

	// the same id repeated through the body toggles the vote off
	agg = decodeAggregate(t, s.do(t, http.MethodPut, "/api/places/4/react", `{"value":-1,"client_id":"abc-123"}`, nil))
	assert.Equal(t, 0, agg.Dislikes)
	assert.Nil(t, agg.Mine)
}

func TestReactions_BodyClientIDIgnoredForAuthenticatedVoter(t *testing.T) {
	s := newTestServer(t)
	token, err := s.tokens.Issue("7")
	require.NoError(t, err)

	decodeAggregate(t, s.do(t, http.MethodPut, "/api/places/5/react", `{"value":1,"client_id":"abc-123"}`, withToken(token)))

	agg := decodeAggregate(t, s.do(t, http.MethodGet, "/api/places/5/reactions", "", withToken(token)))
	require.NotNil(t, agg.Mine)
	agg = decodeAggregate(t, s.do(t, http.MethodGet, "/api/places/5/reactions?client_id=abc-123", "", nil))
	assert.Nil(t, agg.Mine)
	assert.Equal(t, 1, agg.Likes)
}

func TestReactions_NumericIDsShareOneTally(t *testing.T) {
	s := newTestServer(t)

	decodeAggregate(t, s.do(t, http.MethodPut, "/api/places/01/react", `{"value":1}`, withClientID("visitor-d")))
	decodeAggregate(t, s.do(t, http.MethodPut, "/api/places/+1/react", `{"value":1}`, withClientID("visitor-e")))
	decodeAggregate(t, s.do(t, http.MethodPut, "/api/gallery/001/react", `{"value":-1}`, withClientID("visitor-d")))

	agg := decodeAggregate(t, s.do(t, http.MethodGet, "/api/places/1/reactions", "", withClientID("visitor-d")))
	assert.Equal(t, 2, agg.Likes)
	require.NotNil(t, agg.Mine)
	assert.Equal(t, 1, *agg.Mine)

	agg = decodeAggregate(t, s.do(t, http.MethodGet, "/api/gallery/1/reactions", "", withClientID("visitor-d")))
	assert.Equal(t, 1, agg.Dislikes)
}

func TestReactions_Errors(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name      string
		method    string
		path      string
		body      string
		wantCode  int
		wantError string
	}{
		{"invalid value", http.MethodPut, "/api/places/1/react", `{"value":2}`, http.StatusBadRequest, "InvalidVoteValue"},
		{"zero value", http.MethodPut, "/api/places/1/react", `{"value":0}`, http.StatusBadRequest, "InvalidVoteValue"},
		{"missing value", http.MethodPut, "/api/places/1/react", `{}`, http.StatusBadRequest, "InvalidRequest"},
		{"malformed body", http.MethodPut, "/api/places/1/react", `{"value":`, http.StatusBadRequest, "InvalidRequest"},
		{"stale place", http.MethodPut, "/api/places/999/react", `{"value":1}`, http.StatusNotFound, "SubjectNotFound"},
		{"stale image", http.MethodPut, "/api/gallery/999/react", `{"value":-1}`, http.StatusNotFound, "SubjectNotFound"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, tt.method, tt.path, tt.body, withClientID("visitor-err"))
			assert.Equal(t, tt.wantCode, w.Code, w.Body.String())

			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantError, body["error"])
		})
	}

	agg := decodeAggregate(t, s.do(t, http.MethodGet, "/api/places/1/reactions", "", withClientID("visitor-err")))
	assert.Equal(t, aggregateBody{}, agg, "rejected votes leave no trace")
}

func TestReactions_UnknownSubjectReadsAsZero(t *testing.T) {
	s := newTestServer(t)
	agg := decodeAggregate(t, s.do(t, http.MethodGet, "/api/places/999/reactions", "", withClientID("visitor-c")))
	assert.Equal(t, aggregateBody{}, agg)
}

func TestAuthMe(t *testing.T) {
	s := newTestServer(t)
	token, err := s.tokens.Issue("7")
	require.NoError(t, err)

	w := s.do(t, http.MethodGet, "/api/auth/me", "", withToken(token))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"7"}`, w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/auth/me", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/auth/me", "", withToken("nope")).Code)
}

func TestComments(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/comments/place/1", `{"author":"Ann","content":"first"}`, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = s.do(t, http.MethodPost, "/api/comments/place/1", `{"author":"Ben","content":"second"}`, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(t, http.MethodGet, "/api/comments/place/1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []catalogue.Comment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].Content)

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/comments/place/99", "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/api/comments/place/1", `{"author":"","content":"x"}`, nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/comments/place/abc", "", nil).Code)
}

func TestCatalogueListings(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/places/", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var places []catalogue.Place
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &places))
	assert.Len(t, places, 5)

	w = s.do(t, http.MethodGet, "/api/places/1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"comments":[]`)

	w = s.do(t, http.MethodGet, "/api/gallery/", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "https://example.com/1.jpg")
}

func TestViewport(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/map/viewport", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var view viewport.View
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.False(t, view.Default)
	require.NotNil(t, view.Bounds)
	for _, p := range catalogue.SeedPlaces() {
		assert.True(t, view.Bounds.Contains(viewport.LatLng{Lat: p.Latitude, Lng: p.Longitude}), p.Name)
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}

func intPtr(v int) *int { return &v }
