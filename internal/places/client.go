package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://maps.googleapis.com/maps/api/place"

// Remote status codes the client distinguishes. Any status other than OK and
// ZERO_RESULTS is surfaced as an *APIError.
const (
	StatusOK            = "OK"
	StatusZeroResults   = "ZERO_RESULTS"
	StatusRequestDenied = "REQUEST_DENIED"
)

// APIError is a non-OK status returned by the Places API.
type APIError struct {
	Status  string
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("places API status %s", e.Status)
	}
	return fmt.Sprintf("places API status %s: %s", e.Status, e.Message)
}

// IsCredentialError reports whether err indicates an invalid or rejected API
// key. The enrichment loop aborts entirely on these, since every further call
// would fail the same way.
func IsCredentialError(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status == StatusRequestDenied || strings.Contains(apiErr.Message, "API key")
	}
	return err != nil && strings.Contains(err.Error(), "API key")
}

// Client is the HTTP client for Places endpoints.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a Places HTTP client with rate limiting.
func NewClient(apiKey string, requestsPerMinute int, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	rps := float64(requestsPerMinute) / 60.0
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		logger:     logger,
	}
}

// SetBaseURL overrides the API base URL. Used by tests to point the client at
// a local server.
func (c *Client) SetBaseURL(u string) {
	c.baseURL = strings.TrimRight(u, "/")
}

// FindPlace performs a find-place-from-text lookup for a free-text query.
// ZERO_RESULTS is not an error: callers check resp.OK().
func (c *Client) FindPlace(ctx context.Context, input string) (*FindPlaceResponse, error) {
	params := url.Values{}
	params.Set("input", input)
	params.Set("inputtype", "textquery")
	params.Set("fields", "place_id,formatted_address,geometry,types")

	var resp FindPlaceResponse
	if err := c.get(ctx, "/findplacefromtext/json", params, &resp); err != nil {
		return nil, err
	}
	if resp.Status != StatusOK && resp.Status != StatusZeroResults {
		return nil, &APIError{Status: resp.Status, Message: resp.ErrorMessage}
	}
	return &resp, nil
}

// Details fetches the full address components for a place ID.
func (c *Client) Details(ctx context.Context, placeID string) (*DetailsResponse, error) {
	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("fields", "address_component,geometry,type,name")

	var resp DetailsResponse
	if err := c.get(ctx, "/details/json", params, &resp); err != nil {
		return nil, err
	}
	if resp.Status != StatusOK && resp.Status != StatusZeroResults {
		return nil, &APIError{Status: resp.Status, Message: resp.ErrorMessage}
	}
	return &resp, nil
}

// get performs a rate-limited GET request to a Places endpoint and decodes
// the JSON body into out.
func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	params.Set("key", c.apiKey)
	u := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("places %s returned %d: %s", path, resp.StatusCode, truncate(body, 200))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// truncate returns a truncated string representation for error messages.
func truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}
