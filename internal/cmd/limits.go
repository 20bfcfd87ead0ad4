package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/orgforge/orgforge/internal/api"
	"github.com/orgforge/orgforge/internal/ux"
)

var limitsCmd = &cobra.Command{
	Use:   "limits",
	Short: "Governor limit usage for the active org",
}

// limitsListCmd shows current usage across all tracked limits
var limitsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show current limit usage",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, orgID, err := activeOrg(cmd)
		if err != nil {
			return err
		}

		limits, err := a.Client.GetLimits(cmd.Context(), orgID)
		if err != nil {
			return ux.FormatError(err, "fetching limits")
		}

		f, err := formatter(cmd)
		if err != nil {
			return err
		}
		if outputFlag != "text" {
			return f.Format(limits)
		}

		table := ux.NewTable("LIMIT", "USED", "TOTAL", "PCT", "STATUS")
		for _, l := range limits {
			table.AddRow(
				l.LimitName,
				strconv.FormatInt(l.Used, 10),
				strconv.FormatInt(l.Total, 10),
				fmt.Sprintf("%.1f%%", l.Percentage),
				l.Status,
			)
		}
		return f.Format(table)
	},
}

// limitsHistoryCmd shows usage samples for one limit
var limitsHistoryCmd = &cobra.Command{
	Use:   "history <limitName>",
	Short: "Show usage history for one limit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, orgID, err := activeOrg(cmd)
		if err != nil {
			return err
		}

		days, _ := cmd.Flags().GetInt("days")
		samples, err := a.Client.GetLimitHistory(cmd.Context(), orgID, args[0], days)
		if err != nil {
			return ux.FormatError(err, "fetching limit history")
		}

		f, err := formatter(cmd)
		if err != nil {
			return err
		}
		if outputFlag != "text" {
			return f.Format(samples)
		}

		table := ux.NewTable("CAPTURED", "USED", "TOTAL", "PCT")
		for _, s := range samples {
			table.AddRow(
				s.CapturedAt,
				strconv.FormatInt(s.Used, 10),
				strconv.FormatInt(s.Total, 10),
				fmt.Sprintf("%.1f%%", s.Percentage),
			)
		}
		return f.Format(table)
	},
}

// limitsAlertsCmd lists configured threshold alerts
var limitsAlertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "List configured limit alerts",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, orgID, err := activeOrg(cmd)
		if err != nil {
			return err
		}

		alerts, err := a.Client.GetLimitAlerts(cmd.Context(), orgID)
		if err != nil {
			return ux.FormatError(err, "fetching alerts")
		}

		f, err := formatter(cmd)
		if err != nil {
			return err
		}
		if outputFlag != "text" {
			return f.Format(alerts)
		}

		table := ux.NewTable("LIMIT", "THRESHOLD", "ENABLED", "EMAIL")
		for _, alert := range alerts {
			table.AddRow(
				alert.LimitName,
				fmt.Sprintf("%.0f%%", alert.ThresholdPercent),
				strconv.FormatBool(alert.Enabled),
				alert.NotifyEmail,
			)
		}
		return f.Format(table)
	},
}

// limitsWatchCmd creates a threshold alert
var limitsWatchCmd = &cobra.Command{
	Use:   "watch <limitName>",
	Short: "Create a threshold alert for a limit",
	Long: `Create an alert that fires when usage crosses a threshold.

Examples:
  orgforge limits watch DailyApiRequests --threshold 80
  orgforge limits watch DataStorageMB --threshold 90 --email ops@example.com`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		threshold, _ := cmd.Flags().GetFloat64("threshold")
		email, _ := cmd.Flags().GetString("email")

		a, orgID, err := activeOrg(cmd)
		if err != nil {
			return err
		}

		alert, err := a.Client.SaveLimitAlert(cmd.Context(), orgID, api.LimitAlert{
			LimitName:        args[0],
			ThresholdPercent: threshold,
			NotifyEmail:      email,
			Enabled:          true,
		})
		if err != nil {
			return ux.FormatError(err, "creating alert")
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Watching %s at %.0f%%\n", alert.LimitName, alert.ThresholdPercent)
		return nil
	},
}

func init() {
	limitsHistoryCmd.Flags().Int("days", 7, "number of days to include")
	limitsWatchCmd.Flags().Float64("threshold", 80, "usage percentage that triggers the alert")
	limitsWatchCmd.Flags().String("email", "", "notification address")

	limitsCmd.AddCommand(limitsListCmd, limitsHistoryCmd, limitsAlertsCmd, limitsWatchCmd)
	rootCmd.AddCommand(limitsCmd)
}
