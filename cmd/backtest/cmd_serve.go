package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourusername/digit-edge/internal/health"
	"github.com/yourusername/digit-edge/internal/scheduler"
)

const evaluationJob = "evaluation"

var (
	serveSchedule string
	serveRunNow   bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Re-run the evaluation on a cron schedule and expose health and metrics",
	Long: `Start the health and metrics server and re-run the full evaluation on the
schedule.evaluation cron spec (six fields, seconds first).

Examples:
  backtest serve
  backtest serve --schedule "0 */30 * * * *" --run-now`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveSchedule, "schedule", "", "Cron spec with seconds (overrides schedule.evaluation)")
	serveCmd.Flags().BoolVar(&serveRunNow, "run-now", false, "Run one evaluation before waiting for the schedule")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	spec := a.cfg.Schedule.Evaluation
	if serveSchedule != "" {
		spec = serveSchedule
	}
	if spec == "" {
		return fmt.Errorf("schedule.evaluation is required for serve")
	}

	healthCfg := health.Config{
		ServiceName:  a.cfg.App.Name,
		Port:         strconv.Itoa(a.cfg.Metrics.Port),
		Logger:       a.log,
		MaxStaleness: time.Duration(a.cfg.Schedule.MaxStalenessMinutes) * time.Minute,
		MetricsPath:  a.cfg.Metrics.Path,
	}
	if a.db != nil {
		healthCfg.DB = a.db
	}
	server := health.NewServer(healthCfg)
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("failed to start health server: %w", err)
	}

	job := func(jobCtx context.Context) error {
		ev := health.Evaluation{Started: time.Now()}
		report, err := a.evaluate(jobCtx)
		ev.Finished = time.Now()
		if err != nil {
			ev.Error = err.Error()
		} else {
			summary := report.Result.Summary
			ev.Periods = summary.Periods
			ev.BetPeriods = summary.BetPeriods
			ev.DroppedDraws = report.Dropped
			ev.ROI = summary.ROI
			ev.Recommendation = report.Recommendation
		}
		server.RecordEvaluation(ev)
		return err
	}

	sched := scheduler.NewScheduler(a.log, 2*time.Hour)
	if _, err := sched.AddJob(evaluationJob, spec, job); err != nil {
		return err
	}
	if serveRunNow {
		if err := sched.RunNow(evaluationJob, job); err != nil {
			a.log.WithError(err).Warn("Initial evaluation failed")
		}
	}
	if err := sched.Start(); err != nil {
		return err
	}
	server.SetReady(true)
	if next, ok := sched.NextRun(evaluationJob); ok {
		a.log.WithField("next_run", next.Format(time.RFC3339)).Info("Waiting for next evaluation")
	}

	<-ctx.Done()
	server.SetReady(false)
	sched.Stop()
	a.log.Info("Shutting down")
	return nil
}
