package cmd

import (
	"os"
	"path/filepath"

	"github.com/mhewitt/strider/internal/gear"
	"github.com/mhewitt/strider/internal/league"
	"github.com/mhewitt/strider/internal/output"
	"github.com/mhewitt/strider/internal/store"
	"github.com/mhewitt/strider/internal/strava"
	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:     "report",
	Short:   "Render gear usage league tables",
	GroupID: "pipeline",
}

var reportShoesCmd = &cobra.Command{
	Use:   "shoes",
	Short: "Shoe league table (console + CSV)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runShoeReport()
	},
}

var reportBikesCmd = &cobra.Command{
	Use:   "bikes",
	Short: "Bike league table with TOTAL row (console + CSV)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBikeReport()
	},
}

// reportInputs reads the gear details and activity store files. Missing
// files mean empty inputs, so reports on a fresh data dir are empty tables
// rather than errors.
func reportInputs(dir string) ([]strava.Gear, []strava.Activity, error) {
	gears, err := gear.LoadDetails(filepath.Join(dir, gear.DetailsFileName))
	if err != nil {
		output.Error("load gear details: %v", err)
		return nil, nil, err
	}
	acts, err := store.Load(filepath.Join(dir, store.FileName))
	if err != nil {
		output.Error("load activities: %v", err)
		return nil, nil, err
	}
	return gears, acts, nil
}

func runShoeReport() error {
	dir := getDataDir()
	gears, acts, err := reportInputs(dir)
	if err != nil {
		return err
	}

	ranked := league.Shoes(gears, acts)
	league.RenderShoeTable(os.Stdout, ranked)

	csvPath := filepath.Join(dir, league.ShoeCSVFileName)
	if err := league.WriteShoeCSV(csvPath, ranked); err != nil {
		output.Error("write shoe csv: %v", err)
		return err
	}
	output.Subtle("\nLeague table saved to %s", csvPath)
	return nil
}

func runBikeReport() error {
	dir := getDataDir()
	gears, acts, err := reportInputs(dir)
	if err != nil {
		return err
	}

	ranked, total := league.Bikes(gears, acts)
	league.RenderBikeTable(os.Stdout, ranked, total)

	csvPath := filepath.Join(dir, league.BikeCSVFileName)
	if err := league.WriteBikeCSV(csvPath, ranked, total); err != nil {
		output.Error("write bike csv: %v", err)
		return err
	}
	output.Subtle("\nLeague table saved to %s", csvPath)
	return nil
}

func init() {
	reportCmd.AddCommand(reportShoesCmd)
	reportCmd.AddCommand(reportBikesCmd)
	rootCmd.AddCommand(reportCmd)
}
