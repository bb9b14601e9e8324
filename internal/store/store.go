// Package store maintains the durable, deduplicated activity collection.
// The store is a pretty-printed JSON array rewritten whole on every merge;
// entries are never deleted.
package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/mhewitt/strider/internal/strava"
)

// FileName is the activity store file within the data directory.
const FileName = "activities.json"

// Fetcher retrieves all remote activities newer than a watermark.
// A watermark of zero means "no lower bound, fetch everything".
type Fetcher interface {
	Activities(after int64) ([]strava.Activity, error)
}

// Load reads the activity collection from path. A missing file is an empty
// store, not an error.
func Load(path string) ([]strava.Activity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var acts []strava.Activity
	if err := json.Unmarshal(data, &acts); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return acts, nil
}

// Save writes the collection to path atomically: temp file in the same
// directory, then rename.
func Save(path string, acts []strava.Activity) error {
	data, err := json.MarshalIndent(acts, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "activities-*.json.tmp")
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

// Watermark returns the most recent start timestamp in the collection.
// The second return is false when no entry carries a parseable timestamp.
func Watermark(acts []strava.Activity) (time.Time, bool) {
	var max time.Time
	found := false
	for _, a := range acts {
		t, err := a.StartTime()
		if err != nil {
			continue
		}
		if !found || t.After(max) {
			max = t
			found = true
		}
	}
	return max, found
}

// Merge unions existing and fetched, deduplicated by activity ID, sorted by
// start timestamp descending. Duplicate IDs refer to the same remote record;
// the fetched copy wins.
func Merge(existing, fetched []strava.Activity) []strava.Activity {
	seen := make(map[int64]int, len(existing)+len(fetched))
	merged := make([]strava.Activity, 0, len(existing)+len(fetched))
	for _, a := range append(append([]strava.Activity{}, existing...), fetched...) {
		if i, ok := seen[a.ID]; ok {
			merged[i] = a
			continue
		}
		seen[a.ID] = len(merged)
		merged = append(merged, a)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].StartStamp() > merged[j].StartStamp()
	})
	return merged
}

// Sync performs one incremental fetch-and-merge against the store at path
// and returns the number of records fetched (before dedup). When nothing
// new arrives, the file is left untouched.
func Sync(path string, f Fetcher) (int, error) {
	existing, err := Load(path)
	if err != nil {
		return 0, err
	}

	var after int64
	if len(existing) > 0 {
		if wm, ok := Watermark(existing); ok {
			after = wm.Unix()
		}
	}

	fetched, err := f.Activities(after)
	if err != nil {
		return 0, err
	}
	if len(fetched) == 0 {
		slog.Debug("sync: no new activities", "store", path, "existing", len(existing))
		return 0, nil
	}

	merged := Merge(existing, fetched)
	if err := Save(path, merged); err != nil {
		return 0, err
	}
	slog.Info("sync: store updated", "store", path, "fetched", len(fetched), "total", len(merged))
	return len(fetched), nil
}
