package cmd

import (
	"path/filepath"

	"github.com/mhewitt/strider/internal/output"
	"github.com/mhewitt/strider/internal/store"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:     "sync",
	Short:   "Fetch new activities and merge them into the local store",
	GroupID: "pipeline",
	Long: `Incrementally fetch activities newer than the most recent start timestamp
already in the local store and merge them in, deduplicated by activity ID
and sorted by start time descending. With no existing store the entire
history is fetched (up to 4000 activities per run).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := ensureAccessToken()
		if err != nil {
			output.Error("%v", err)
			return err
		}
		return runSync(token)
	},
}

func runSync(token string) error {
	path := filepath.Join(getDataDir(), store.FileName)

	count, err := store.Sync(path, newClient(token))
	if err != nil {
		output.Error("sync: %v", err)
		return err
	}
	if count == 0 {
		output.Info("No new activities to add.")
		return nil
	}

	total := count
	if acts, err := store.Load(path); err == nil {
		total = len(acts)
	}
	output.Success("Added %d new activities. Total now: %d", count, total)
	return nil
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
