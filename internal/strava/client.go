package strava

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the Strava v3 API root.
	DefaultBaseURL = "https://www.strava.com/api/v3"
	// DefaultTokenURL is the OAuth token endpoint.
	DefaultTokenURL = "https://www.strava.com/oauth/token"

	// PerPage is the activity page size; 200 is the service maximum.
	PerPage = 200
	// MaxPages caps a single sync at 20 pages (4000 activities).
	MaxPages = 20
)

// Sentinel errors for common HTTP error classes.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
)

// errEndOfFeed marks a response that terminates pagination without being a
// pipeline failure: a payload that is not a list where a list was expected.
var errEndOfFeed = errors.New("end of activity feed")

// Client is an HTTP client for the Strava API. One outbound request is in
// flight at a time and requests are paced by a rate limiter, keeping well
// inside Strava's 100-requests-per-15-minutes budget.
type Client struct {
	BaseURL     string
	TokenURL    string
	AccessToken string
	HTTP        *http.Client

	// Limiter paces outbound requests; tests may substitute a looser one.
	Limiter *rate.Limiter
}

// New creates a client authenticated with the given bearer token. Token
// validity is the caller's concern; the client never refreshes.
func New(accessToken string) *Client {
	return &Client{
		BaseURL:     DefaultBaseURL,
		TokenURL:    DefaultTokenURL,
		AccessToken: accessToken,
		HTTP:        &http.Client{Timeout: 30 * time.Second},
		Limiter:     rate.NewLimiter(rate.Every(500*time.Millisecond), 1),
	}
}

// ExchangeCode trades a one-time authorization code for a token pair.
func (c *Client) ExchangeCode(clientID, clientSecret, code string) (*TokenResponse, error) {
	return c.token(url.Values{
		"client_id":     {clientID},
		"client_secret": {clientSecret},
		"code":          {code},
		"grant_type":    {"authorization_code"},
	})
}

// RefreshToken exchanges a refresh token for a fresh token pair. Strava
// rotates the refresh token, so the caller must persist the returned one.
func (c *Client) RefreshToken(clientID, clientSecret, refreshToken string) (*TokenResponse, error) {
	return c.token(url.Values{
		"client_id":     {clientID},
		"client_secret": {clientSecret},
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	})
}

func (c *Client) token(form url.Values) (*TokenResponse, error) {
	if err := c.Limiter.Wait(context.Background()); err != nil {
		return nil, err
	}

	resp, err := c.HTTP.PostForm(c.TokenURL, form)
	if err != nil {
		return nil, fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read token response: %w", err)
	}

	var tok TokenResponse
	if err := json.Unmarshal(body, &tok); err != nil || tok.AccessToken == "" || tok.RefreshToken == "" {
		return nil, fmt.Errorf("%w: token exchange failed: HTTP %d: %s", ErrUnauthorized, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return &tok, nil
}

// Athlete fetches the authenticated athlete's profile.
func (c *Client) Athlete() (*Athlete, error) {
	var a Athlete
	if err := c.get("/athlete", nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// Gear fetches one equipment record by ID.
func (c *Client) Gear(id string) (*Gear, error) {
	var g Gear
	if err := c.get("/gear/"+id, nil, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// Activities returns every activity newer than the watermark, walking the
// paginated feed from page 1. A watermark of zero means no lower bound.
//
// The remote "after" filter is only approximately aligned with the local
// watermark, so a boundary activity may be re-fetched; the store's dedup
// absorbs that. An empty page or a payload that is not a list soft-stops
// pagination, returning everything accumulated so far. Auth failures abort.
func (c *Client) Activities(after int64) ([]Activity, error) {
	var all []Activity
	for page := 1; page <= MaxPages; page++ {
		batch, err := c.activityPage(page, after)
		if errors.Is(err, errEndOfFeed) {
			slog.Debug("activity feed ended early", "page", page)
			break
		}
		if err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			break
		}
		all = append(all, batch...)
	}
	return all, nil
}

func (c *Client) activityPage(page int, after int64) ([]Activity, error) {
	params := url.Values{}
	params.Set("per_page", strconv.Itoa(PerPage))
	params.Set("page", strconv.Itoa(page))
	if after > 0 {
		params.Set("after", strconv.FormatInt(after, 10))
	}

	status, body, err := c.getRaw("/athlete/activities", params)
	if err != nil {
		return nil, err
	}
	switch status {
	case http.StatusUnauthorized:
		return nil, fmt.Errorf("%w: %s", ErrUnauthorized, errorMessage(body))
	case http.StatusForbidden:
		return nil, fmt.Errorf("%w: %s", ErrForbidden, errorMessage(body))
	}

	var batch []Activity
	if err := json.Unmarshal(body, &batch); err != nil {
		// Error objects and other non-list payloads end the feed.
		return nil, errEndOfFeed
	}
	return batch, nil
}

// apiError is the standard error body from the API.
type apiError struct {
	Message string `json:"message"`
}

func errorMessage(body []byte) string {
	var apiErr apiError
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
		return apiErr.Message
	}
	return strings.TrimSpace(string(body))
}

// get executes an authenticated GET and decodes the response into result.
func (c *Client) get(path string, params url.Values, result any) error {
	status, body, err := c.getRaw(path, params)
	if err != nil {
		return err
	}

	if status >= 400 {
		msg := errorMessage(body)
		switch status {
		case http.StatusUnauthorized:
			return fmt.Errorf("%w: %s", ErrUnauthorized, msg)
		case http.StatusForbidden:
			return fmt.Errorf("%w: %s", ErrForbidden, msg)
		case http.StatusNotFound:
			return fmt.Errorf("%w: %s", ErrNotFound, msg)
		default:
			return fmt.Errorf("HTTP %d: %s", status, msg)
		}
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

// getRaw executes a paced, authenticated GET and returns the raw response.
func (c *Client) getRaw(path string, params url.Values) (int, []byte, error) {
	if err := c.Limiter.Wait(context.Background()); err != nil {
		return 0, nil, err
	}

	u := c.BaseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequest("GET", u, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.AccessToken)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, body, nil
}
