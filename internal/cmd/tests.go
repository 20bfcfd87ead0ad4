package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/orgforge/orgforge/internal/api"
	"github.com/orgforge/orgforge/internal/app"
	"github.com/orgforge/orgforge/internal/ux"
)

var testsCmd = &cobra.Command{
	Use:   "tests",
	Short: "Apex test health for the active org",
}

// testsClassesCmd lists runnable test classes
var testsClassesCmd = &cobra.Command{
	Use:   "classes",
	Short: "List runnable test classes",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, orgID, err := activeOrg(cmd)
		if err != nil {
			return err
		}

		classes, err := a.Client.GetTestClasses(cmd.Context(), orgID)
		if err != nil {
			return ux.FormatError(err, "listing test classes")
		}

		f, err := formatter(cmd)
		if err != nil {
			return err
		}
		if outputFlag != "text" {
			return f.Format(classes)
		}

		table := ux.NewTable("ID", "CLASS")
		for _, c := range classes {
			table.AddRow(c.ID, c.Name)
		}
		return f.Format(table)
	},
}

// testsRunCmd starts a test run and optionally follows progress
var testsRunCmd = &cobra.Command{
	Use:   "run [class...]",
	Short: "Run Apex tests",
	Long: `Start a test run for the given classes, or every class when none
are named. With --watch the command follows live progress over the
push channel until the run finishes.

Examples:
  orgforge tests run
  orgforge tests run AccountServiceTest OrderServiceTest --watch`,
	RunE: func(cmd *cobra.Command, args []string) error {
		watch, _ := cmd.Flags().GetBool("watch")

		a, orgID, err := activeOrg(cmd)
		if err != nil {
			return err
		}

		run, err := a.Client.RunTests(cmd.Context(), orgID, args)
		if err != nil {
			return ux.FormatError(err, "starting test run")
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Test run #%d started (%d tests)\n", run.ID, run.TotalTests)
		if !watch {
			fmt.Fprintln(cmd.OutOrStdout(), "Follow it with 'orgforge tests runs' or the dashboard.")
			return nil
		}
		return followProgress(cmd, a, run.ID)
	},
}

// followProgress subscribes to the push topic and prints progress
// lines until the run reaches a terminal state.
func followProgress(cmd *cobra.Command, a *app.App, runID int64) error {
	done := make(chan api.TestProgress, 1)

	a.Mux.Subscribe(api.TopicTestProgress, func(payload any) {
		raw, err := json.Marshal(payload)
		if err != nil {
			return
		}
		var p api.TestProgress
		if err := json.Unmarshal(raw, &p); err != nil {
			return
		}
		if p.DBRunID != 0 && p.DBRunID != runID {
			return
		}
		fmt.Fprintf(cmd.OutOrStdout(), "  %3.0f%%  %d/%d  %s\n",
			p.PercentComplete, p.CompletedTests, p.TotalTests, p.Status)
		if p.Status == "Completed" || p.Status == "Failed" || p.Status == "Aborted" {
			select {
			case done <- p:
			default:
			}
		}
	})
	defer a.Mux.Disconnect()

	select {
	case p := <-done:
		if p.FailCount > 0 {
			return fmt.Errorf("test run finished with %d failures", p.FailCount)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "All tests passed.")
		return nil
	case <-cmd.Context().Done():
		return cmd.Context().Err()
	}
}

// testsRunsCmd lists recent runs
var testsRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent test runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		page, _ := cmd.Flags().GetInt("page")

		a, orgID, err := activeOrg(cmd)
		if err != nil {
			return err
		}

		runs, err := a.Client.GetTestRuns(cmd.Context(), orgID, page, 20)
		if err != nil {
			return ux.FormatError(err, "listing test runs")
		}

		f, err := formatter(cmd)
		if err != nil {
			return err
		}
		if outputFlag != "text" {
			return f.Format(runs)
		}

		table := ux.NewTable("RUN", "STATUS", "PASSED", "FAILED", "STARTED")
		for _, run := range runs.Content {
			table.AddRow(
				strconv.FormatInt(run.ID, 10),
				run.Status,
				strconv.Itoa(run.PassCount),
				strconv.Itoa(run.FailCount),
				run.StartedAt.Format("2006-01-02 15:04"),
			)
		}
		return f.Format(table)
	},
}

// testsShowCmd shows one run with per-method results
var testsShowCmd = &cobra.Command{
	Use:   "show <runId>",
	Short: "Show one test run in detail",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid run id %q", args[0])
		}

		a, orgID, err := activeOrg(cmd)
		if err != nil {
			return err
		}

		run, err := a.Client.GetTestRunDetail(cmd.Context(), orgID, runID)
		if err != nil {
			return ux.FormatError(err, "fetching test run")
		}

		f, err := formatter(cmd)
		if err != nil {
			return err
		}
		if outputFlag != "text" {
			return f.Format(run)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Run #%d  %s  %d/%d passed\n\n", run.ID, run.Status, run.PassCount, run.TotalTests)
		for _, r := range run.Results {
			mark := "✓"
			if r.Outcome != "Pass" {
				mark = "✗"
			}
			fmt.Fprintf(out, "  %s %s.%s (%dms)\n", mark, r.ClassName, r.MethodName, r.RunTimeMs)
			if r.Message != "" {
				fmt.Fprintf(out, "      %s\n", r.Message)
			}
		}
		return nil
	},
}

// testsStatsCmd prints the aggregate health of the active org
var testsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate test health",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, orgID, err := activeOrg(cmd)
		if err != nil {
			return err
		}

		stats, err := a.Client.GetOrgTestStats(cmd.Context(), orgID)
		if err != nil {
			return ux.FormatError(err, "fetching test stats")
		}

		f, err := formatter(cmd)
		if err != nil {
			return err
		}
		if outputFlag != "text" {
			return f.Format(stats)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Pass rate:  %.1f%%\n", stats.PassRate)
		fmt.Fprintf(out, "Coverage:   %.1f%%\n", stats.AvgCoverage)
		fmt.Fprintf(out, "Total runs: %d\n", stats.TotalRuns)
		if stats.LastRunAt != "" {
			fmt.Fprintf(out, "Last run:   %s\n", stats.LastRunAt)
		}
		return nil
	},
}

// testsTrendsCmd prints pass-rate and coverage trends side by side
var testsTrendsCmd = &cobra.Command{
	Use:   "trends",
	Short: "Show pass-rate and coverage trends",
	RunE: func(cmd *cobra.Command, args []string) error {
		days, _ := cmd.Flags().GetInt("days")

		a, orgID, err := activeOrg(cmd)
		if err != nil {
			return err
		}

		passRate, err := a.Client.GetPassRateTrend(cmd.Context(), orgID, days)
		if err != nil {
			return ux.FormatError(err, "fetching pass-rate trend")
		}
		coverage, err := a.Client.GetCoverageTrend(cmd.Context(), orgID, days)
		if err != nil {
			return ux.FormatError(err, "fetching coverage trend")
		}

		f, err := formatter(cmd)
		if err != nil {
			return err
		}
		if outputFlag != "text" {
			return f.Format(map[string][]api.TrendPoint{
				"passRate": passRate,
				"coverage": coverage,
			})
		}

		coverageByDate := make(map[string]float64, len(coverage))
		for _, p := range coverage {
			coverageByDate[p.Date] = p.Value
		}

		table := ux.NewTable("DATE", "PASS RATE", "COVERAGE")
		for _, p := range passRate {
			table.AddRow(
				p.Date,
				fmt.Sprintf("%.1f%%", p.Value),
				fmt.Sprintf("%.1f%%", coverageByDate[p.Date]),
			)
		}
		return f.Format(table)
	},
}

func init() {
	testsRunCmd.Flags().Bool("watch", false, "follow live progress until the run finishes")
	testsRunsCmd.Flags().Int("page", 0, "result page")
	testsTrendsCmd.Flags().Int("days", 30, "number of days to include")

	testsCmd.AddCommand(testsClassesCmd, testsRunCmd, testsRunsCmd, testsShowCmd, testsStatsCmd, testsTrendsCmd)
	rootCmd.AddCommand(testsCmd)
}
