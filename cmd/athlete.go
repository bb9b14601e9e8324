package cmd

import (
	"fmt"
	"strings"

	"github.com/mhewitt/strider/internal/output"
	"github.com/spf13/cobra"
)

var athleteJSON bool

var athleteCmd = &cobra.Command{
	Use:     "athlete",
	Short:   "Show the authenticated athlete and registered gear",
	GroupID: "system",
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := ensureAccessToken()
		if err != nil {
			output.Error("%v", err)
			return err
		}

		athlete, err := newClient(token).Athlete()
		if err != nil {
			output.Error("fetch athlete: %v", err)
			return err
		}

		if athleteJSON {
			return output.JSON(athlete)
		}

		name := strings.TrimSpace(athlete.FirstName + " " + athlete.LastName)
		fmt.Printf("Athlete: %s (id: %d)\n", name, athlete.ID)
		if len(athlete.Bikes) > 0 {
			fmt.Println("Bikes:")
			for _, b := range athlete.Bikes {
				fmt.Printf("  %-12s %s\n", b.ID, b.Name)
			}
		}
		if len(athlete.Shoes) > 0 {
			fmt.Println("Shoes:")
			for _, s := range athlete.Shoes {
				fmt.Printf("  %-12s %s\n", s.ID, s.Name)
			}
		}
		output.Subtle("%d pieces of gear registered on the profile", len(athlete.GearIDs()))
		return nil
	},
}

func init() {
	athleteCmd.Flags().BoolVar(&athleteJSON, "json", false, "print the raw profile as JSON")
	rootCmd.AddCommand(athleteCmd)
}
