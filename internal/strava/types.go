package strava

import (
	"strings"
	"time"
)

// StampLayout is the portion of a Strava timestamp we rely on. Strava returns
// ISO-8601 with a zone suffix; we truncate to seconds and parse zone-less,
// matching how the watermark and first-use comparisons work.
const StampLayout = "2006-01-02T15:04:05"

// Activity is one recorded exercise session from the athlete activities feed.
// Only the fields the pipeline consumes are modelled.
type Activity struct {
	ID                 int64   `json:"id"`
	Name               string  `json:"name"`
	Type               string  `json:"type,omitempty"`
	StartDate          string  `json:"start_date,omitempty"`
	StartDateLocal     string  `json:"start_date_local,omitempty"`
	Distance           float64 `json:"distance,omitempty"`
	MovingTime         int64   `json:"moving_time,omitempty"`
	ElapsedTime        int64   `json:"elapsed_time,omitempty"`
	TotalElevationGain float64 `json:"total_elevation_gain,omitempty"`
	GearID             string  `json:"gear_id,omitempty"`
}

// StartStamp returns the preferred raw timestamp: local start time, falling
// back to the UTC start time, then the empty string.
func (a Activity) StartStamp() string {
	if a.StartDateLocal != "" {
		return a.StartDateLocal
	}
	return a.StartDate
}

// StartTime parses the activity's start timestamp, truncated to seconds and
// without a zone offset.
func (a Activity) StartTime() (time.Time, error) {
	return ParseStamp(a.StartStamp())
}

// ParseStamp parses the first 19 characters of an ISO-8601 timestamp.
func ParseStamp(stamp string) (time.Time, error) {
	if len(stamp) > len(StampLayout) {
		stamp = stamp[:len(StampLayout)]
	}
	return time.Parse(StampLayout, stamp)
}

// Gear is a piece of tracked equipment. The ID prefix encodes the class:
// "g" for shoes, "b" for bikes.
type Gear struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Nickname string  `json:"nickname,omitempty"`
	Retired  bool    `json:"retired"`
	Distance float64 `json:"distance,omitempty"`
}

// IsShoe reports whether the gear ID classifies as a running shoe.
func (g Gear) IsShoe() bool { return strings.HasPrefix(g.ID, "g") }

// IsBike reports whether the gear ID classifies as a bicycle.
func (g Gear) IsBike() bool { return strings.HasPrefix(g.ID, "b") }

// GearSummary is the abbreviated gear record embedded in an athlete profile.
type GearSummary struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Primary  bool    `json:"primary,omitempty"`
	Distance float64 `json:"distance,omitempty"`
}

// Athlete is the authenticated athlete's profile.
type Athlete struct {
	ID        int64         `json:"id"`
	Username  string        `json:"username,omitempty"`
	FirstName string        `json:"firstname"`
	LastName  string        `json:"lastname"`
	Bikes     []GearSummary `json:"bikes,omitempty"`
	Shoes     []GearSummary `json:"shoes,omitempty"`
}

// GearIDs returns the IDs of all gear registered on the profile, bikes first.
func (a *Athlete) GearIDs() []string {
	ids := make([]string, 0, len(a.Bikes)+len(a.Shoes))
	for _, b := range a.Bikes {
		ids = append(ids, b.ID)
	}
	for _, s := range a.Shoes {
		ids = append(ids, s.ID)
	}
	return ids
}

// TokenResponse is the body returned by the OAuth token endpoint for both
// the authorization-code exchange and the refresh grant.
type TokenResponse struct {
	TokenType    string `json:"token_type,omitempty"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"`
	ExpiresIn    int64  `json:"expires_in,omitempty"`
	Scope        string `json:"scope,omitempty"`
}
