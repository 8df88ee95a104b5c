package cli

import (
	"fmt"
	"io"
	"time"

	"seleniumacros/domain/entities"
	"seleniumacros/domain/interfaces"

	"github.com/spf13/cobra"
)

func newPlayCommand(a *app) *cobra.Command {
	var (
		varsFile string
		timeout  time.Duration
		report   bool
	)

	cmd := &cobra.Command{
		Use:   "play <macro>",
		Short: "Replay a macro file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var store interfaces.ReportStore
			if report {
				s, err := a.newStore()
				if err != nil {
					return err
				}
				store = s
			}

			facade, err := a.newFacade(nil, store)
			if err != nil {
				return err
			}
			defer facade.Exit()

			if err := setVariables(facade, varsFile); err != nil {
				return err
			}

			code := facade.Play(cmd.Context(), args[0], timeout)
			if last, ok := facade.LastReport(); ok {
				printReport(cmd.OutOrStdout(), last)
			}
			if code != entities.ReturnOK {
				return fmt.Errorf("macro %s failed with return code %d", args[0], code)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&varsFile, "vars", "", "YAML file of user variables (NAME: value)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Abort the macro after this long (0 = no limit)")
	cmd.Flags().BoolVar(&report, "report", true, "Save the run report to the report directory")
	return cmd
}

func printReport(w io.Writer, r entities.RunReport) {
	status := green("OK")
	switch r.ReturnCode {
	case entities.ReturnFail:
		status = red("FAIL")
	case entities.ReturnTimeout:
		status = yellow("TIMEOUT")
	}

	fmt.Fprintf(w, "%s %s %s\n", bold(r.Script), status, gray(fmt.Sprintf("(code %d, run %s, %s)",
		r.ReturnCode, r.RunID, r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond))))
	for _, e := range r.Errors {
		fmt.Fprintf(w, "  %s %s\n", red("error"), e.Message)
	}
	for i, v := range r.Extracts {
		fmt.Fprintf(w, "  extract[%d] %s\n", i, v)
	}
}
