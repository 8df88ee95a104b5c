package cli

import (
	"context"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	gray   = color.New(color.FgHiBlack).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

// NewRootCommand - builds the seleniumacros command tree
func NewRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "seleniumacros",
		Short: "Replay iMacros-style browser macros through WebDriver",
		Long: `seleniumacros replays line-oriented browser macros (URL, TAG, SET, SIZE, WAIT, DS)
against Chrome or Firefox through selenium, playwright or chromedp.

Configuration comes from flags, then the environment (.env is loaded when present),
then built-in defaults.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}
	a.registerFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(
		newPlayCommand(a),
		newREPLCommand(a),
		newServeCommand(a),
		newScheduleCommand(a),
		newLastCommand(a),
	)
	return rootCmd
}

// Execute - runs the command line with ctx
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}
