package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"CapeTravel/internal/core/catalogue"
	"CapeTravel/internal/core/identity"
	"CapeTravel/internal/core/reactions"
	"CapeTravel/internal/core/viewport"
	"CapeTravel/internal/logging"
)

// Caller carries the credentials a request is made with. Authenticated
// callers send their session token; anonymous callers send their id.
type Caller struct {
	SessionToken string
	Voter        identity.Voter
}

// BreakerFailureThreshold is the number of consecutive transport or 5xx
// failures that opens the client's circuit breaker
const BreakerFailureThreshold = 5

// errServerStatus marks a 5xx response as a breaker failure
var errServerStatus = errors.New("server error status")

type rawResponse struct {
	body   []byte
	status int
}

// HTTPClient talks to the reaction service over its JSON API. Calls go
// through a circuit breaker so an unreachable server fails fast.
type HTTPClient struct {
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[rawResponse]
	baseURL string
}

// NewHTTPClient creates a client for baseURL. httpClient may be nil.
func NewHTTPClient(baseURL string, httpClient *http.Client) *HTTPClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPClient{
		http:    httpClient,
		breaker: newBreaker("capetravel-api", 30*time.Second),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func newBreaker(name string, openFor time.Duration) *gobreaker.CircuitBreaker[rawResponse] {
	return gobreaker.NewCircuitBreaker[rawResponse](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     openFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= BreakerFailureThreshold
		},
		// an abandoned request says nothing about the server's health
		IsExcluded: isContextError,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger := logging.Component("client")
			logger.Info().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state change")
		},
	})
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func subjectPath(subject reactions.Subject) string {
	collection := "places"
	if subject.Kind == reactions.SubjectGallery {
		collection = "gallery"
	}
	return "/api/" + collection + "/" + url.PathEscape(subject.ID)
}

// GetAggregate fetches the tally and the caller's own vote
func (c *HTTPClient) GetAggregate(ctx context.Context, subject reactions.Subject, caller Caller) (*reactions.Aggregate, error) {
	var agg reactions.Aggregate
	if err := c.do(ctx, http.MethodGet, subjectPath(subject)+"/reactions", nil, caller, &agg); err != nil {
		return nil, err
	}
	return &agg, nil
}

// Vote casts, switches or clears the caller's vote
func (c *HTTPClient) Vote(ctx context.Context, subject reactions.Subject, caller Caller, value reactions.Vote) (*reactions.Aggregate, error) {
	if err := value.Validate(); err != nil {
		return nil, err
	}
	body := map[string]int{"value": int(value)}
	var agg reactions.Aggregate
	if err := c.do(ctx, http.MethodPut, subjectPath(subject)+"/react", body, caller, &agg); err != nil {
		return nil, err
	}
	return &agg, nil
}

// ListPlaces fetches the catalogue's places
func (c *HTTPClient) ListPlaces(ctx context.Context) ([]*catalogue.Place, error) {
	var places []*catalogue.Place
	if err := c.do(ctx, http.MethodGet, "/api/places/", nil, Caller{}, &places); err != nil {
		return nil, err
	}
	return places, nil
}

// ListGallery fetches the gallery images
func (c *HTTPClient) ListGallery(ctx context.Context) ([]*catalogue.GalleryImage, error) {
	var images []*catalogue.GalleryImage
	if err := c.do(ctx, http.MethodGet, "/api/gallery/", nil, Caller{}, &images); err != nil {
		return nil, err
	}
	return images, nil
}

// Viewport fetches the fitted map view over all places
func (c *HTTPClient) Viewport(ctx context.Context) (viewport.View, error) {
	var view viewport.View
	err := c.do(ctx, http.MethodGet, "/api/map/viewport", nil, Caller{}, &view)
	return view, err
}

// VerifySession implements identity.SessionVerifier through GET /api/auth/me.
// A 401 wraps identity.ErrInvalidSession; anything else that prevents an
// answer wraps identity.ErrIdentityUnavailable.
func (c *HTTPClient) VerifySession(ctx context.Context, token string) (string, error) {
	var me struct {
		ID string `json:"id"`
	}
	err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, Caller{SessionToken: token}, &me)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
			return "", fmt.Errorf("%w: %v", identity.ErrInvalidSession, err)
		}
		return "", fmt.Errorf("%w: %v", identity.ErrIdentityUnavailable, err)
	}
	if me.ID == "" {
		return "", identity.ErrInvalidSession
	}
	return me.ID, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body any, caller Caller, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	switch {
	case caller.SessionToken != "":
		req.Header.Set("Authorization", "Bearer "+caller.SessionToken)
	case caller.Voter.Kind == identity.KindAnonymous && caller.Voter.ID != "":
		req.Header.Set(identity.ClientIDHeader, caller.Voter.ID)
	}

	res, err := c.breaker.Execute(func() (rawResponse, error) {
		resp, err := c.http.Do(req)
		if err != nil {
			return rawResponse{}, err
		}
		defer func() { _ = resp.Body.Close() }()

		data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return rawResponse{}, err
		}
		res := rawResponse{body: data, status: resp.StatusCode}
		if res.status >= 500 {
			return res, errServerStatus
		}
		return res, nil
	})
	switch {
	case isContextError(err):
		return fmt.Errorf("%s %s: %w", method, path, err)
	case errors.Is(err, errServerStatus):
		return decodeAPIError(res.status, res.body)
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return fmt.Errorf("%w: %s %s: %w", ErrTransport, method, path, err)
	case err != nil:
		return fmt.Errorf("%w: %s %s: %v", ErrTransport, method, path, err)
	}

	if res.status < 200 || res.status > 299 {
		return decodeAPIError(res.status, res.body)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(res.body, out); err != nil {
		return fmt.Errorf("%w: decoding response: %v", ErrTransport, err)
	}
	return nil
}

// decodeAPIError maps a failed response back onto the service's sentinels
func decodeAPIError(status int, data []byte) error {
	apiErr := &APIError{StatusCode: status}
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &body) == nil {
		apiErr.Code = body.Error
		apiErr.Message = body.Message
	}

	switch {
	case apiErr.Code == "InvalidVoteValue":
		apiErr.wrapped = reactions.ErrInvalidVoteValue
	case apiErr.Code == "SubjectNotFound":
		apiErr.wrapped = reactions.ErrSubjectNotFound
	case apiErr.Code == "InvalidSubject":
		apiErr.wrapped = reactions.ErrInvalidSubject
	case status == http.StatusNotFound:
		apiErr.wrapped = catalogue.ErrNotFound
	case status >= 500:
		apiErr.wrapped = ErrTransport
	}
	return apiErr
}
