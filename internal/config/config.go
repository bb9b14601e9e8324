// Package config manages the application settings and OAuth credentials
// stored under ~/.config/strider. Environment variables override file
// contents so no library code ever reads the process environment directly.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"
)

// Config is the application config stored at ~/.config/strider/config.json.
type Config struct {
	ClientID     string `json:"client_id,omitempty"`
	ClientSecret string `json:"client_secret,omitempty"`
	DataDir      string `json:"data_dir,omitempty"`
}

// Credentials stores the OAuth token state at ~/.config/strider/auth.json.
type Credentials struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"`
	AthleteID    int64  `json:"athlete_id,omitempty"`
}

// expirySlack refreshes tokens slightly before the server-side deadline.
const expirySlack = 60 * time.Second

// Expired reports whether the access token is past (or within a minute of)
// its expiry. A zero ExpiresAt means the expiry is unknown and the token is
// assumed valid.
func (c *Credentials) Expired(now time.Time) bool {
	if c.ExpiresAt == 0 {
		return false
	}
	return now.Add(expirySlack).Unix() >= c.ExpiresAt
}

// Dir returns ~/.config/strider, creating it if necessary.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	dir := filepath.Join(home, ".config", "strider")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create config dir: %w", err)
	}
	return dir, nil
}

// Load reads the application config; a missing file is an empty config.
func Load() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(dir, "config.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the application config atomically.
func Save(cfg *Config) error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	return writeAtomic(filepath.Join(dir, "config.json"), cfg, 0644)
}

// LoadCredentials reads the stored token state. Returns nil, nil when no
// credentials have been saved yet.
func LoadCredentials() (*Credentials, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(dir, "auth.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, err
	}
	return &creds, nil
}

// SaveCredentials writes the token state (0600 perms). Token rotation is
// serialized with a file lock so concurrent invocations cannot interleave
// a read-refresh-write cycle and lose the rotated refresh token.
func SaveCredentials(creds *Credentials) error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	return withLock(dir, func() error {
		return writeAtomic(filepath.Join(dir, "auth.json"), creds, 0600)
	})
}

// ClearCredentials removes the stored token state.
func ClearCredentials() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	err = os.Remove(filepath.Join(dir, "auth.json"))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// GetClientID returns the OAuth client ID.
// Priority: STRIDER_CLIENT_ID env > config.json.
func GetClientID() string {
	if v := os.Getenv("STRIDER_CLIENT_ID"); v != "" {
		return v
	}
	cfg, err := Load()
	if err == nil {
		return cfg.ClientID
	}
	return ""
}

// GetClientSecret returns the OAuth client secret.
// Priority: STRIDER_CLIENT_SECRET env > config.json.
func GetClientSecret() string {
	if v := os.Getenv("STRIDER_CLIENT_SECRET"); v != "" {
		return v
	}
	cfg, err := Load()
	if err == nil {
		return cfg.ClientSecret
	}
	return ""
}

// EnvAccessToken returns the STRIDER_ACCESS_TOKEN override, empty when the
// stored credentials should be used instead.
func EnvAccessToken() string {
	return os.Getenv("STRIDER_ACCESS_TOKEN")
}

// GetAPIBase returns the API base URL override, empty for production.
func GetAPIBase() string {
	return os.Getenv("STRIDER_API_URL")
}

// GetTokenURL returns the OAuth token URL override, empty for production.
func GetTokenURL() string {
	return os.Getenv("STRIDER_TOKEN_URL")
}

// GetDataDir resolves the directory holding the activity store, gear files
// and reports. Priority: flag value > STRIDER_DATA_DIR env > config.json >
// current directory.
func GetDataDir(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := os.Getenv("STRIDER_DATA_DIR"); v != "" {
		return v
	}
	cfg, err := Load()
	if err == nil && cfg.DataDir != "" {
		return cfg.DataDir
	}
	return "."
}

// writeAtomic writes v as indented JSON via temp file + rename.
func writeAtomic(path string, v any, perm os.FileMode) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}

// withLock serializes credential writes using flock.
func withLock(dir string, fn func() error) error {
	lockPath := filepath.Join(dir, "auth.json.lock")
	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX); err != nil {
		return err
	}
	defer syscall.Flock(int(f.Fd()), syscall.LOCK_UN)

	return fn()
}
