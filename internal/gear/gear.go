// Package gear derives the distinct equipment set referenced by the activity
// store and fetches full equipment records for it.
package gear

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/mhewitt/strider/internal/strava"
)

const (
	// IDsFileName holds the distinct gear IDs extracted from the store.
	IDsFileName = "gear_ids.json"
	// DetailsFileName holds the fetched equipment records.
	DetailsFileName = "all_gear.json"
)

// Fetcher retrieves a single equipment record by ID.
type Fetcher interface {
	Gear(id string) (*strava.Gear, error)
}

// Result is the tagged outcome of one gear fetch. Exactly one of Gear and
// Err is set.
type Result struct {
	ID   string
	Gear *strava.Gear
	Err  error
}

// ExtractIDs collects the distinct non-empty gear references across the full
// activity collection, sorted for deterministic output.
func ExtractIDs(acts []strava.Activity) []string {
	set := make(map[string]struct{})
	for _, a := range acts {
		if a.GearID != "" {
			set[a.GearID] = struct{}{}
		}
	}
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// FetchAll fetches each equipment record sequentially, one request per ID.
// A failed fetch does not abort the batch; its error is captured in the
// corresponding Result.
func FetchAll(f Fetcher, ids []string) []Result {
	results := make([]Result, 0, len(ids))
	for _, id := range ids {
		g, err := f.Gear(id)
		if err != nil {
			slog.Warn("gear fetch failed", "id", id, "err", err)
			results = append(results, Result{ID: id, Err: err})
			continue
		}
		results = append(results, Result{ID: id, Gear: g})
	}
	return results
}

// Gears returns the successfully fetched equipment records in input order.
func Gears(results []Result) []strava.Gear {
	gears := make([]strava.Gear, 0, len(results))
	for _, r := range results {
		if r.Err == nil && r.Gear != nil {
			gears = append(gears, *r.Gear)
		}
	}
	return gears
}

// Failed returns the results whose fetch did not succeed.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, r)
		}
	}
	return failed
}

// SaveIDs writes the gear ID list as a JSON array.
func SaveIDs(path string, ids []string) error {
	return writeJSON(path, ids)
}

// LoadIDs reads a gear ID list; a missing file is an empty list.
func LoadIDs(path string) ([]string, error) {
	var ids []string
	if err := readJSON(path, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// SaveDetails writes the fetched equipment records as a JSON array.
func SaveDetails(path string, gears []strava.Gear) error {
	return writeJSON(path, gears)
}

// LoadDetails reads the equipment records; a missing file is an empty list.
func LoadDetails(path string) ([]strava.Gear, error) {
	var gears []strava.Gear
	if err := readJSON(path, &gears); err != nil {
		return nil, err
	}
	return gears, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// writeJSON persists v atomically, mirroring the activity store's
// temp-file-and-rename discipline.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
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
