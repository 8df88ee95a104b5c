package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Accepts standard 5-field specs, an optional leading seconds field and @every/@daily descriptors
var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

func newScheduleCommand(a *app) *cobra.Command {
	var (
		spec     string
		varsFile string
		timeout  time.Duration
		maxRuns  int
	)

	cmd := &cobra.Command{
		Use:   "schedule --cron <spec> <macro>",
		Short: "Replay a macro periodically",
		Example: `  seleniumacros schedule --cron "*/15 * * * *" login.iim
  seleniumacros schedule --cron "@every 1h" --max-runs 3 report.iim`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := cronParser.Parse(spec); err != nil {
				return fmt.Errorf("invalid cron spec %q: %w", spec, err)
			}
			store, err := a.newStore()
			if err != nil {
				return err
			}
			facade, err := a.newFacade(nil, store)
			if err != nil {
				return err
			}
			defer facade.Exit()

			if err := setVariables(facade, varsFile); err != nil {
				return err
			}

			return runSchedule(cmd.Context(), spec, maxRuns, a.logger, func(ctx context.Context) {
				code := facade.Play(ctx, args[0], timeout)
				if last, ok := facade.LastReport(); ok {
					printReport(cmd.OutOrStdout(), last)
				}
				a.logger.WithField("return_code", code).Infof("Scheduled run of %s finished", args[0])
			})
		},
	}

	cmd.Flags().StringVar(&spec, "cron", "", "Cron spec, e.g. \"0 */5 * * * *\" or \"@every 10m\"")
	cmd.Flags().StringVar(&varsFile, "vars", "", "YAML file of user variables (NAME: value)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Abort each run after this long (0 = no limit)")
	cmd.Flags().IntVar(&maxRuns, "max-runs", 0, "Stop after this many runs (0 = until interrupted)")
	_ = cmd.MarkFlagRequired("cron")
	return cmd
}

// runSchedule - fires job on spec until ctx is done or maxRuns runs completed.
// Overlapping runs are skipped.
func runSchedule(ctx context.Context, spec string, maxRuns int, logger *logrus.Logger, job func(context.Context)) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c := cron.New(
		cron.WithParser(cronParser),
		cron.WithChain(cron.Recover(cron.PrintfLogger(logger)), cron.SkipIfStillRunning(cron.PrintfLogger(logger))),
	)

	schedule, err := cronParser.Parse(spec)
	if err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", spec, err)
	}

	runs := 0
	_, err = c.AddFunc(spec, func() {
		job(ctx)
		runs++
		if maxRuns > 0 && runs >= maxRuns {
			cancel()
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule: %w", err)
	}

	c.Start()
	logger.Infof("Scheduled %q, next run at %s", spec, schedule.Next(time.Now()).Format(time.RFC3339))

	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}
