package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/orgforge/orgforge/internal/ux"
)

var flowsCmd = &cobra.Command{
	Use:   "flows",
	Short: "Flow monitoring for the active org",
}

// flowsStatsCmd prints the flow health summary
var flowsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show flow health summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, orgID, err := activeOrg(cmd)
		if err != nil {
			return err
		}

		stats, err := a.Client.GetFlowStats(cmd.Context(), orgID)
		if err != nil {
			return ux.FormatError(err, "fetching flow stats")
		}

		f, err := formatter(cmd)
		if err != nil {
			return err
		}
		if outputFlag != "text" {
			return f.Format(stats)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Active flows: %d\n", stats.ActiveFlows)
		fmt.Fprintf(out, "Total runs:   %d\n", stats.TotalRuns)
		fmt.Fprintf(out, "Error rate:   %.1f%%\n", stats.ErrorRate)
		fmt.Fprintf(out, "Avg duration: %.0fms\n", stats.AvgDuration)
		fmt.Fprintf(out, "Overlaps:     %d\n", stats.OverlapCount)
		return nil
	},
}

// flowsRunsCmd lists recorded flow executions
var flowsRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded flow runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetString("status")
		page, _ := cmd.Flags().GetInt("page")

		a, orgID, err := activeOrg(cmd)
		if err != nil {
			return err
		}

		runs, err := a.Client.GetFlowRuns(cmd.Context(), orgID, status, page)
		if err != nil {
			return ux.FormatError(err, "listing flow runs")
		}

		f, err := formatter(cmd)
		if err != nil {
			return err
		}
		if outputFlag != "text" {
			return f.Format(runs)
		}

		table := ux.NewTable("ID", "FLOW", "STATUS", "DURATION", "STARTED")
		for _, run := range runs.Content {
			table.AddRow(
				strconv.FormatInt(run.ID, 10),
				run.FlowName,
				run.Status,
				fmt.Sprintf("%dms", run.DurationMs),
				run.StartedAt,
			)
		}
		return f.Format(table)
	},
}

// flowsListCmd lists invocable flow definitions
var flowsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List autolaunched flows",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, orgID, err := activeOrg(cmd)
		if err != nil {
			return err
		}

		flows, err := a.Client.GetFlows(cmd.Context(), orgID)
		if err != nil {
			return ux.FormatError(err, "listing flows")
		}

		f, err := formatter(cmd)
		if err != nil {
			return err
		}
		if outputFlag != "text" {
			return f.Format(flows)
		}

		table := ux.NewTable("API NAME", "LABEL", "TYPE", "ACTIVE")
		for _, flow := range flows {
			table.AddRow(flow.APIName, flow.Label, flow.Type, strconv.FormatBool(flow.Active))
		}
		return f.Format(table)
	},
}

// flowsShowCmd shows one recorded run
var flowsShowCmd = &cobra.Command{
	Use:   "show <runId>",
	Short: "Show one flow run in detail",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid run id %q", args[0])
		}

		a, _, err := activeOrg(cmd)
		if err != nil {
			return err
		}

		run, err := a.Client.GetFlowRunDetail(cmd.Context(), id)
		if err != nil {
			return ux.FormatError(err, "fetching flow run")
		}

		f, err := formatter(cmd)
		if err != nil {
			return err
		}
		if outputFlag != "text" {
			return f.Format(run)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Run #%d  %s  %s\n", run.ID, run.FlowName, run.Status)
		if run.StartedAt != "" {
			fmt.Fprintf(out, "Started:  %s\n", run.StartedAt)
		}
		fmt.Fprintf(out, "Duration: %dms\n", run.DurationMs)
		if run.TriggeredBy != "" {
			fmt.Fprintf(out, "Trigger:  %s\n", run.TriggeredBy)
		}
		if run.RecordID != "" {
			fmt.Fprintf(out, "Record:   %s\n", run.RecordID)
		}
		if run.ErrorMessage != "" {
			fmt.Fprintf(out, "Error:    %s\n", run.ErrorMessage)
		}
		return nil
	},
}

// flowsInputsCmd describes the input variables of a flow
var flowsInputsCmd = &cobra.Command{
	Use:   "inputs <apiName>",
	Short: "List the input variables of a flow",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, orgID, err := activeOrg(cmd)
		if err != nil {
			return err
		}

		inputs, err := a.Client.GetFlowInputs(cmd.Context(), orgID, args[0])
		if err != nil {
			return ux.FormatError(err, "fetching flow inputs")
		}

		f, err := formatter(cmd)
		if err != nil {
			return err
		}
		if outputFlag != "text" {
			return f.Format(inputs)
		}

		table := ux.NewTable("NAME", "TYPE", "REQUIRED")
		for _, in := range inputs {
			table.AddRow(in.Name, in.DataType, strconv.FormatBool(in.Required))
		}
		return f.Format(table)
	},
}

// flowsLookupCmd finds record ids to pass as flow inputs
var flowsLookupCmd = &cobra.Command{
	Use:   "lookup <sobjectType> <query>",
	Short: "Look up records to use as flow inputs",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, orgID, err := activeOrg(cmd)
		if err != nil {
			return err
		}

		records, err := a.Client.LookupRecords(cmd.Context(), orgID, args[0], args[1])
		if err != nil {
			return ux.FormatError(err, "looking up records")
		}

		f, err := formatter(cmd)
		if err != nil {
			return err
		}
		if outputFlag != "text" {
			return f.Format(records)
		}

		table := ux.NewTable("ID", "NAME")
		for _, r := range records {
			table.AddRow(r.ID, r.Name)
		}
		return f.Format(table)
	},
}

// flowsAnalyticsCmd shows the daily error-rate trend
var flowsAnalyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Show the daily flow error-rate trend",
	RunE: func(cmd *cobra.Command, args []string) error {
		days, _ := cmd.Flags().GetInt("days")

		a, orgID, err := activeOrg(cmd)
		if err != nil {
			return err
		}

		points, err := a.Client.GetFlowAnalytics(cmd.Context(), orgID, days)
		if err != nil {
			return ux.FormatError(err, "fetching flow analytics")
		}

		f, err := formatter(cmd)
		if err != nil {
			return err
		}
		if outputFlag != "text" {
			return f.Format(points)
		}

		table := ux.NewTable("DATE", "ERROR RATE")
		for _, p := range points {
			table.AddRow(p.Date, fmt.Sprintf("%.1f%%", p.Value))
		}
		return f.Format(table)
	},
}

// flowsOverlapsCmd detects flows firing on the same trigger
var flowsOverlapsCmd = &cobra.Command{
	Use:   "overlaps",
	Short: "Detect flows that fire on the same object and trigger",
	RunE: func(cmd *cobra.Command, args []string) error {
		detect, _ := cmd.Flags().GetBool("detect")

		a, orgID, err := activeOrg(cmd)
		if err != nil {
			return err
		}

		fetch := a.Client.GetOverlaps
		if detect {
			fetch = a.Client.DetectOverlaps
		}
		overlaps, err := fetch(cmd.Context(), orgID)
		if err != nil {
			return ux.FormatError(err, "fetching overlaps")
		}

		f, err := formatter(cmd)
		if err != nil {
			return err
		}
		if outputFlag != "text" {
			return f.Format(overlaps)
		}

		table := ux.NewTable("OBJECT", "TRIGGER", "SEVERITY", "FLOWS")
		for _, o := range overlaps {
			table.AddRow(o.ObjectName, o.TriggerOn, o.Severity, strings.Join(o.FlowNames, ", "))
		}
		return f.Format(table)
	},
}

// flowsInvokeCmd runs an autolaunched flow with inputs
var flowsInvokeCmd = &cobra.Command{
	Use:   "invoke <apiName>",
	Short: "Invoke an autolaunched flow",
	Long: `Invoke an autolaunched flow, passing inputs as key=value pairs.

Examples:
  orgforge flows invoke Send_Welcome_Email
  orgforge flows invoke Escalate_Case --input caseId=500xx --input priority=High`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rawInputs, _ := cmd.Flags().GetStringSlice("input")
		label, _ := cmd.Flags().GetString("label")

		a, orgID, err := activeOrg(cmd)
		if err != nil {
			return err
		}

		inputs := map[string]interface{}{}
		for _, kv := range rawInputs {
			key, value, found := strings.Cut(kv, "=")
			if !found {
				return fmt.Errorf("invalid --input %q, expected key=value", kv)
			}
			inputs[key] = value
		}

		run, err := a.Client.InvokeFlow(cmd.Context(), orgID, args[0], label, inputs)
		if err != nil {
			return ux.FormatError(err, "invoking flow")
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Flow run #%d: %s\n", run.ID, run.Status)
		if run.ErrorMessage != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", run.ErrorMessage)
		}
		return nil
	},
}

func init() {
	flowsRunsCmd.Flags().String("status", "", "filter by status (SUCCESS, ERROR)")
	flowsRunsCmd.Flags().Int("page", 0, "result page")
	flowsOverlapsCmd.Flags().Bool("detect", false, "run a fresh detection instead of reading cached results")
	flowsInvokeCmd.Flags().StringSlice("input", nil, "flow input as key=value (repeatable)")
	flowsInvokeCmd.Flags().String("label", "", "label recorded for this run")
	flowsAnalyticsCmd.Flags().Int("days", 30, "number of days to include")

	flowsCmd.AddCommand(flowsStatsCmd, flowsListCmd, flowsRunsCmd, flowsShowCmd,
		flowsInputsCmd, flowsLookupCmd, flowsAnalyticsCmd, flowsOverlapsCmd, flowsInvokeCmd)
	rootCmd.AddCommand(flowsCmd)
}
