package strava

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/time/rate"
)

// newTestClient points a client at a fake API server with no request pacing.
func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := New("test-token")
	c.BaseURL = srv.URL
	c.TokenURL = srv.URL + "/oauth/token"
	c.Limiter = rate.NewLimiter(rate.Inf, 1)
	return c
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatalf("encode response: %v", err)
	}
}

func TestActivitiesPaginates(t *testing.T) {
	var pagesSeen []string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("auth header: got %q", got)
		}
		if got := r.URL.Query().Get("per_page"); got != "200" {
			t.Errorf("per_page: got %q, want 200", got)
		}
		page := r.URL.Query().Get("page")
		pagesSeen = append(pagesSeen, page)

		switch page {
		case "1":
			writeJSON(t, w, []Activity{{ID: 1}, {ID: 2}})
		case "2":
			writeJSON(t, w, []Activity{{ID: 3}})
		default:
			writeJSON(t, w, []Activity{})
		}
	}))

	acts, err := c.Activities(0)
	if err != nil {
		t.Fatalf("activities: %v", err)
	}
	if len(acts) != 3 {
		t.Fatalf("activities: got %d, want 3", len(acts))
	}
	if len(pagesSeen) != 3 {
		t.Fatalf("pages requested: got %v, want 3 pages", pagesSeen)
	}
}

func TestActivitiesAfterParam(t *testing.T) {
	var after []string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		after = append(after, r.URL.Query().Get("after"))
		writeJSON(t, w, []Activity{})
	}))

	if _, err := c.Activities(1700000000); err != nil {
		t.Fatalf("activities: %v", err)
	}
	if len(after) != 1 || after[0] != "1700000000" {
		t.Fatalf("after param: got %v, want [1700000000]", after)
	}

	after = nil
	if _, err := c.Activities(0); err != nil {
		t.Fatalf("activities without bound: %v", err)
	}
	if len(after) != 1 || after[0] != "" {
		t.Fatalf("after param on full fetch: got %v, want one empty", after)
	}
}

func TestActivitiesNonListSoftStops(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			writeJSON(t, w, []Activity{{ID: 1}})
			return
		}
		// Error object where a list is expected: end of feed, not a failure.
		w.WriteHeader(http.StatusTooManyRequests)
		writeJSON(t, w, map[string]string{"message": "Rate Limit Exceeded"})
	}))

	acts, err := c.Activities(0)
	if err != nil {
		t.Fatalf("activities: %v", err)
	}
	if len(acts) != 1 || acts[0].ID != 1 {
		t.Fatalf("accumulated activities: got %+v, want [1]", acts)
	}
}

func TestActivitiesUnauthorizedIsFatal(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		writeJSON(t, w, map[string]string{"message": "Authorization Error"})
	}))

	_, err := c.Activities(0)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("error: got %v, want ErrUnauthorized", err)
	}
}

func TestActivitiesPageCeiling(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Every page is full: the client must stop at MaxPages.
		batch := make([]Activity, PerPage)
		for i := range batch {
			batch[i] = Activity{ID: int64(i)}
		}
		writeJSON(t, w, batch)
	}))

	acts, err := c.Activities(0)
	if err != nil {
		t.Fatalf("activities: %v", err)
	}
	if len(acts) != PerPage*MaxPages {
		t.Fatalf("activities at ceiling: got %d, want %d", len(acts), PerPage*MaxPages)
	}
}

func TestGear(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/gear/g12345" {
			t.Errorf("path: got %q", r.URL.Path)
		}
		writeJSON(t, w, Gear{ID: "g12345", Name: "Pegasus 40", Retired: true})
	}))

	g, err := c.Gear("g12345")
	if err != nil {
		t.Fatalf("gear: %v", err)
	}
	if g.Name != "Pegasus 40" || !g.Retired || !g.IsShoe() {
		t.Fatalf("gear: got %+v", g)
	}
}

func TestGearNotFound(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		writeJSON(t, w, map[string]string{"message": "Record Not Found"})
	}))

	_, err := c.Gear("g0")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("error: got %v, want ErrNotFound", err)
	}
}

func TestRefreshToken(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/oauth/token" {
			t.Errorf("request: got %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if got := r.PostForm.Get("grant_type"); got != "refresh_token" {
			t.Errorf("grant_type: got %q", got)
		}
		if got := r.PostForm.Get("refresh_token"); got != "old-refresh" {
			t.Errorf("refresh_token: got %q", got)
		}
		writeJSON(t, w, TokenResponse{
			AccessToken:  "new-access",
			RefreshToken: "new-refresh",
			ExpiresAt:    1800000000,
		})
	}))

	tok, err := c.RefreshToken("id", "secret", "old-refresh")
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if tok.AccessToken != "new-access" || tok.RefreshToken != "new-refresh" {
		t.Fatalf("token pair: got %+v", tok)
	}
}

func TestExchangeCodeFailure(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"message":"Bad Request","errors":[{"field":"code","code":"invalid"}]}`)
	}))

	_, err := c.ExchangeCode("id", "secret", "bogus")
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("error: got %v, want ErrUnauthorized", err)
	}
}
