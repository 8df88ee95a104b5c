package cli

import (
	"seleniumacros/application/iim"
	"seleniumacros/presentation/terminal"

	"github.com/spf13/cobra"
)

func newREPLCommand(a *app) *cobra.Command {
	var varsFile string

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Type macro lines and replay them one at a time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := a.newSession(nil)
			if err != nil {
				return err
			}
			if err := session.SetBrowser(a.cfg.Browser); err != nil {
				return err
			}
			if err := setVariables(iim.New(session, nil, a.logger), varsFile); err != nil {
				return err
			}

			term := terminal.NewTerminalInterface(session, a.logger, cmd.InOrStdin(), cmd.OutOrStdout())
			defer term.Close()
			return term.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&varsFile, "vars", "", "YAML file of user variables (NAME: value)")
	return cmd
}
