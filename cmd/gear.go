package cmd

import (
	"path/filepath"

	"github.com/mhewitt/strider/internal/gear"
	"github.com/mhewitt/strider/internal/output"
	"github.com/mhewitt/strider/internal/store"
	"github.com/spf13/cobra"
)

var gearCmd = &cobra.Command{
	Use:     "gear",
	Short:   "Extract gear IDs from the store and fetch their details",
	GroupID: "pipeline",
	Long: `Scan the full activity store for distinct gear references, persist the ID
list, then fetch each equipment record from the API one request at a time.
Individual fetch failures are reported but do not abort the batch.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := ensureAccessToken()
		if err != nil {
			output.Error("%v", err)
			return err
		}
		return runGear(token)
	},
}

func runGear(token string) error {
	dir := getDataDir()

	acts, err := store.Load(filepath.Join(dir, store.FileName))
	if err != nil {
		output.Error("load activities: %v", err)
		return err
	}

	ids := gear.ExtractIDs(acts)
	if err := gear.SaveIDs(filepath.Join(dir, gear.IDsFileName), ids); err != nil {
		output.Error("save gear ids: %v", err)
		return err
	}
	output.Info("Extracted %d gear IDs from %d activities.", len(ids), len(acts))

	results := gear.FetchAll(newClient(token), ids)
	for _, r := range gear.Failed(results) {
		output.Warning("gear %s: %v", r.ID, r.Err)
	}

	gears := gear.Gears(results)
	detailsPath := filepath.Join(dir, gear.DetailsFileName)
	if err := gear.SaveDetails(detailsPath, gears); err != nil {
		output.Error("save gear details: %v", err)
		return err
	}

	if failed := len(results) - len(gears); failed > 0 {
		output.Warning("%d of %d gear fetches failed; report rows for those IDs will be missing", failed, len(results))
	}
	output.Success("Saved %d gear details to %s", len(gears), detailsPath)
	return nil
}

func init() {
	rootCmd.AddCommand(gearCmd)
}
