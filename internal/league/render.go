package league

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

const (
	// ShoeCSVFileName is the shoe league table within the data directory.
	ShoeCSVFileName = "shoe_league_table.csv"
	// BikeCSVFileName is the bike league table within the data directory.
	BikeCSVFileName = "bike_league_table.csv"
)

var headerStyle = lipgloss.NewStyle().Bold(true)

// PaceString renders a pace in minutes per kilometer as MM:SS, or "-" when
// no pace could be computed. Seconds are truncated, not rounded.
func PaceString(pace float64) string {
	if pace <= 0 {
		return "-"
	}
	mins := int(pace)
	secs := int((pace - float64(mins)) * 60)
	return fmt.Sprintf("%02d:%02d", mins, secs)
}

// FirstUseString renders a first-use date as "Jan 2006", or "-" when unknown.
func FirstUseString(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("Jan 2006")
}

func retiredString(retired bool) string {
	if retired {
		return "Yes"
	}
	return "No"
}

func truncName(name string, width int) string {
	if len(name) > width {
		return name[:width]
	}
	return name
}

// RenderShoeTable writes the ranked shoe league table to w.
func RenderShoeTable(w io.Writer, ranked []Stats) {
	header := fmt.Sprintf("%-30s %8s %5s %10s %12s %15s %15s %12s %12s %10s",
		"Shoe", "Retired", "Runs", "First Use", "Longest(km)", "Total Dist(km)", "Total Elev(km)", "Avg Run(km)", "Tot Time(h)", "Avg Pace")
	fmt.Fprintln(w, headerStyle.Render(header))
	fmt.Fprintln(w, strings.Repeat("-", 145))
	for _, s := range ranked {
		fmt.Fprintf(w, "%-30s %8s %5d %10s %12.2f %15.2f %15.2f %12.2f %12.2f %10s\n",
			truncName(s.Name, 30), retiredString(s.Retired), s.Activities, FirstUseString(s.FirstUse),
			s.Longest/1000, s.TotalDistance/1000, s.TotalElevation/1000,
			s.AvgLength/1000, float64(s.TotalTime)/3600, PaceString(s.AvgPace))
	}
}

// RenderBikeTable writes the ranked bike league table to w, with the TOTAL
// row below a separator.
func RenderBikeTable(w io.Writer, ranked []Stats, total Stats) {
	header := fmt.Sprintf("%-30s %8s %5s %12s %15s %15s %12s %12s %10s",
		"Bike", "Retired", "Rides", "Longest(km)", "Total Dist(km)", "Total Elev(km)", "Avg Ride(km)", "Tot Time(h)", "Avg Speed")
	fmt.Fprintln(w, headerStyle.Render(header))
	fmt.Fprintln(w, strings.Repeat("-", 130))
	for _, s := range ranked {
		fmt.Fprintf(w, "%-30s %8s %5d %12.2f %15.2f %15.2f %12.2f %12.2f %10.2f\n",
			truncName(s.Name, 30), retiredString(s.Retired), s.Activities,
			s.Longest/1000, s.TotalDistance/1000, s.TotalElevation/1000,
			s.AvgLength/1000, float64(s.TotalTime)/3600, s.AvgSpeed)
	}
	fmt.Fprintln(w, strings.Repeat("-", 130))
	fmt.Fprintf(w, "%-30s %8s %5d %12.2f %15.2f %15.2f %12.2f %12.2f %10.2f\n",
		total.Name, "", total.Activities,
		total.Longest/1000, total.TotalDistance/1000, total.TotalElevation/1000,
		total.AvgLength/1000, float64(total.TotalTime)/3600, total.AvgSpeed)
}

func km1(meters float64) string {
	return strconv.FormatFloat(meters/1000, 'f', 1, 64)
}

func hours(seconds int64) string {
	return strconv.Itoa(int(math.Round(float64(seconds) / 3600)))
}

// WriteShoeCSV writes the shoe league table to path.
func WriteShoeCSV(path string, ranked []Stats) error {
	rows := [][]string{{
		"Shoe", "Retired", "Runs", "First Use", "Longest Run (km)", "Total Distance (km)",
		"Total Elevation Gain (km)", "Average Run Length (km)", "Total Time (h)", "Average Pace (min/km)",
	}}
	for _, s := range ranked {
		rows = append(rows, []string{
			s.Name,
			retiredString(s.Retired),
			strconv.Itoa(s.Activities),
			FirstUseString(s.FirstUse),
			km1(s.Longest),
			km1(s.TotalDistance),
			km1(s.TotalElevation),
			km1(s.AvgLength),
			hours(s.TotalTime),
			PaceString(s.AvgPace),
		})
	}
	return writeCSV(path, rows)
}

// WriteBikeCSV writes the bike league table, TOTAL row last, to path.
func WriteBikeCSV(path string, ranked []Stats, total Stats) error {
	rows := [][]string{{
		"Bike", "Retired", "Rides", "Longest Ride (km)", "Total Distance (km)",
		"Total Elevation Gain (km)", "Average Ride Length (km)", "Total Time (h)", "Average Speed (km/h)",
	}}
	for _, s := range ranked {
		rows = append(rows, bikeRow(s, retiredString(s.Retired)))
	}
	rows = append(rows, bikeRow(total, ""))
	return writeCSV(path, rows)
}

func bikeRow(s Stats, retired string) []string {
	return []string{
		s.Name,
		retired,
		strconv.Itoa(s.Activities),
		km1(s.Longest),
		km1(s.TotalDistance),
		km1(s.TotalElevation),
		km1(s.AvgLength),
		hours(s.TotalTime),
		strconv.FormatFloat(s.AvgSpeed, 'f', 1, 64),
	}
}

// writeCSV persists rows atomically so a crash mid-report never leaves a
// truncated table behind.
func writeCSV(path string, rows [][]string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	w := csv.NewWriter(tmp)
	if err := w.WriteAll(rows); err != nil {
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
