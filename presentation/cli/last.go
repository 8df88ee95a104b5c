package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"seleniumacros/infrastructure/storage"

	"github.com/spf13/cobra"
)

func newLastCommand(a *app) *cobra.Command {
	var (
		history bool
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "last",
		Short: "Show the report of the last played macro",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.newStore()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if history {
				reports, err := store.LoadHistory()
				if err != nil {
					return err
				}
				if asJSON {
					return json.NewEncoder(out).Encode(reports)
				}
				if len(reports) == 0 {
					fmt.Fprintln(out, gray("no runs recorded"))
				}
				for _, r := range reports {
					printReport(out, r)
				}
				return nil
			}

			report, err := store.LoadReport()
			if errors.Is(err, storage.ErrNoReport) {
				fmt.Fprintln(out, gray("no runs recorded"))
				return nil
			}
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			printReport(out, report)
			return nil
		},
	}

	cmd.Flags().BoolVar(&history, "history", false, "Show all recorded runs, oldest first")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print raw JSON")
	return cmd
}
