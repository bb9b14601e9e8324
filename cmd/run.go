package cmd

import (
	"github.com/mhewitt/strider/internal/output"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:     "run",
	Short:   "Run the full pipeline: sync, gear, both reports",
	GroupID: "pipeline",
	Long: `Run every pipeline stage in order: refresh the access token if needed,
sync new activities into the store, extract and fetch gear details, then
render the shoe and bike league tables. Each stage persists its output, so
an interrupted run can simply be repeated.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := ensureAccessToken()
		if err != nil {
			output.Error("%v", err)
			return err
		}

		if err := runSync(token); err != nil {
			return err
		}
		if err := runGear(token); err != nil {
			return err
		}
		output.Info("")
		if err := runShoeReport(); err != nil {
			return err
		}
		output.Info("")
		return runBikeReport()
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
