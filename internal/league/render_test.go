package league

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/mhewitt/strider/internal/strava"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open csv: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	return rows
}

func TestPaceStringTruncatesSeconds(t *testing.T) {
	cases := []struct {
		pace float64
		want string
	}{
		{0, "-"},
		{5.0, "05:00"},
		{5.5, "05:30"},
		{4.999, "04:59"},
		{10.25, "10:15"},
	}
	for _, c := range cases {
		if got := PaceString(c.pace); got != c.want {
			t.Fatalf("pace %v: got %q, want %q", c.pace, got, c.want)
		}
	}
}

func TestFirstUseString(t *testing.T) {
	d := time.Date(2023, 11, 5, 0, 0, 0, 0, time.UTC)
	if got := FirstUseString(d); got != "Nov 2023" {
		t.Fatalf("first use: got %q, want Nov 2023", got)
	}
}

func TestWriteShoeCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), ShoeCSVFileName)
	ranked := Shoes(
		[]strava.Gear{{ID: "g1", Name: "Pegasus", Retired: true}},
		[]strava.Activity{
			{ID: 1, GearID: "g1", Distance: 5000, ElapsedTime: 1500, TotalElevationGain: 120, StartDateLocal: "2024-02-01T08:00:00Z"},
			{ID: 2, GearID: "g1", Distance: 6000, ElapsedTime: 1800, TotalElevationGain: 80, StartDateLocal: "2024-01-01T08:00:00Z"},
		},
	)
	if err := WriteShoeCSV(path, ranked); err != nil {
		t.Fatalf("write: %v", err)
	}

	rows := readCSV(t, path)
	wantHeader := []string{
		"Shoe", "Retired", "Runs", "First Use", "Longest Run (km)", "Total Distance (km)",
		"Total Elevation Gain (km)", "Average Run Length (km)", "Total Time (h)", "Average Pace (min/km)",
	}
	if !reflect.DeepEqual(rows[0], wantHeader) {
		t.Fatalf("header: got %v", rows[0])
	}
	want := []string{"Pegasus", "Yes", "2", "Jan 2024", "6.0", "11.0", "0.2", "5.5", "1", "05:00"}
	if !reflect.DeepEqual(rows[1], want) {
		t.Fatalf("row: got %v, want %v", rows[1], want)
	}
}

func TestWriteBikeCSVTotalRowLast(t *testing.T) {
	path := filepath.Join(t.TempDir(), BikeCSVFileName)
	ranked, total := Bikes(
		[]strava.Gear{{ID: "b1", Name: "Road"}, {ID: "b2", Name: "Gravel"}},
		[]strava.Activity{
			{ID: 1, GearID: "b1", Distance: 40000, MovingTime: 5000, StartDateLocal: "2024-01-01T08:00:00Z"},
			{ID: 2, GearID: "b2", Distance: 20000, MovingTime: 4000, StartDateLocal: "2024-01-02T08:00:00Z"},
		},
	)
	if err := WriteBikeCSV(path, ranked, total); err != nil {
		t.Fatalf("write: %v", err)
	}

	rows := readCSV(t, path)
	wantHeader := []string{
		"Bike", "Retired", "Rides", "Longest Ride (km)", "Total Distance (km)",
		"Total Elevation Gain (km)", "Average Ride Length (km)", "Total Time (h)", "Average Speed (km/h)",
	}
	if !reflect.DeepEqual(rows[0], wantHeader) {
		t.Fatalf("header: got %v", rows[0])
	}
	if len(rows) != 4 {
		t.Fatalf("rows: got %d, want 4", len(rows))
	}
	last := rows[len(rows)-1]
	if last[0] != "TOTAL" || last[1] != "" {
		t.Fatalf("total row: got %v", last)
	}
	if last[2] != "2" || last[4] != "60.0" {
		t.Fatalf("total sums: got %v", last)
	}
}

func TestRenderShoeTable(t *testing.T) {
	var sb strings.Builder
	ranked := Shoes(
		[]strava.Gear{{ID: "g1", Name: "A Shoe With A Really Very Long Name Indeed"}},
		[]strava.Activity{{ID: 1, GearID: "g1", Distance: 5000, ElapsedTime: 1500, StartDateLocal: "2024-01-01T08:00:00Z"}},
	)
	RenderShoeTable(&sb, ranked)

	out := sb.String()
	if !strings.Contains(out, "Avg Pace") {
		t.Fatalf("missing header in output:\n%s", out)
	}
	// Names are truncated to the column width.
	if strings.Contains(out, "Indeed") {
		t.Fatalf("name not truncated:\n%s", out)
	}
	if !strings.Contains(out, "05:00") {
		t.Fatalf("missing pace in output:\n%s", out)
	}
}

func TestRenderBikeTableHasTotal(t *testing.T) {
	var sb strings.Builder
	ranked, total := Bikes(
		[]strava.Gear{{ID: "b1", Name: "Road"}},
		[]strava.Activity{{ID: 1, GearID: "b1", Distance: 30000, MovingTime: 3600, StartDateLocal: "2024-01-01T08:00:00Z"}},
	)
	RenderBikeTable(&sb, ranked, total)

	out := sb.String()
	if !strings.Contains(out, "TOTAL") {
		t.Fatalf("missing TOTAL row:\n%s", out)
	}
	if !strings.Contains(out, "30.00") {
		t.Fatalf("missing speed in output:\n%s", out)
	}
}
