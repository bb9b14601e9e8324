package cmd

import (
	"fmt"
	"time"

	"github.com/mhewitt/strider/internal/config"
	"github.com/mhewitt/strider/internal/strava"
)

// newClient builds an API client for the given token, honoring the URL
// overrides used by tests.
func newClient(accessToken string) *strava.Client {
	c := strava.New(accessToken)
	if base := config.GetAPIBase(); base != "" {
		c.BaseURL = base
	}
	if tokenURL := config.GetTokenURL(); tokenURL != "" {
		c.TokenURL = tokenURL
	}
	return c
}

// ensureAccessToken returns a usable bearer token, refreshing and persisting
// the stored credentials when the access token has expired. An explicit
// STRIDER_ACCESS_TOKEN always wins.
func ensureAccessToken() (string, error) {
	if tok := config.EnvAccessToken(); tok != "" {
		return tok, nil
	}

	creds, err := config.LoadCredentials()
	if err != nil {
		return "", fmt.Errorf("load credentials: %w", err)
	}
	if creds == nil || (creds.AccessToken == "" && creds.RefreshToken == "") {
		return "", fmt.Errorf("not logged in (run: strider auth login)")
	}
	if creds.AccessToken != "" && !creds.Expired(time.Now()) {
		return creds.AccessToken, nil
	}
	if creds.RefreshToken == "" {
		return "", fmt.Errorf("access token expired and no refresh token stored (run: strider auth login)")
	}
	return refreshCredentials(creds)
}

// refreshCredentials rotates the token pair and persists the result.
func refreshCredentials(creds *config.Credentials) (string, error) {
	clientID := config.GetClientID()
	clientSecret := config.GetClientSecret()
	if clientID == "" || clientSecret == "" {
		return "", fmt.Errorf("client id/secret not configured (run: strider auth login)")
	}

	tok, err := newClient("").RefreshToken(clientID, clientSecret, creds.RefreshToken)
	if err != nil {
		return "", fmt.Errorf("refresh token: %w", err)
	}

	creds.AccessToken = tok.AccessToken
	creds.RefreshToken = tok.RefreshToken
	creds.ExpiresAt = tok.ExpiresAt
	if err := config.SaveCredentials(creds); err != nil {
		return "", fmt.Errorf("save credentials: %w", err)
	}
	return creds.AccessToken, nil
}
