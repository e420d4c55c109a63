package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List the scheduled jobs enabled by the current configuration",
	Args:  cobra.NoArgs,
	RunE:  runJobs,
}

var jobsRunCmd = &cobra.Command{
	Use:   "run <job-name>",
	Short: "Run a scheduled job once, in the foreground",
	Long: `Run one of the jobs listed by "salesctl jobs" immediately, for example
to retry failed side effects after an outage:

  salesctl jobs run side_effect_retry`,
	Args: cobra.ExactArgs(1),
	RunE: runJobsRun,
}

func init() {
	jobsCmd.AddCommand(jobsRunCmd)
}

func runJobs(cmd *cobra.Command, args []string) error {
	a, log, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	scheduler, err := a.Scheduler()
	if err != nil {
		return err
	}
	if scheduler == nil {
		fmt.Println("No jobs are enabled")
		return nil
	}

	status := scheduler.Status()
	if jsonOutput {
		return printJSON(status)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSCHEDULE")
	for _, job := range status {
		fmt.Fprintf(w, "%s\t%s\n", job.Name, job.CronExpr)
	}
	return w.Flush()
}

func runJobsRun(cmd *cobra.Command, args []string) error {
	ctx := operatorContext(cmd.Context())
	a, log, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if err := a.LoadTiers(ctx); err != nil {
		return err
	}

	scheduler, err := a.Scheduler()
	if err != nil {
		return err
	}
	if scheduler == nil {
		return fmt.Errorf("job %s not found: no jobs are enabled", args[0])
	}

	if err := scheduler.RunNow(args[0]); err != nil {
		return err
	}
	fmt.Printf("Job %s completed\n", args[0])
	return nil
}
