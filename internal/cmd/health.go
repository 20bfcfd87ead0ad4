package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/orgforge/orgforge/internal/ux"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Org analysis for the active org",
}

// healthScoreCmd prints the latest health score breakdown
var healthScoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Show the latest org health score",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, orgID, err := activeOrg(cmd)
		if err != nil {
			return err
		}

		score, err := a.Client.GetOrgHealth(cmd.Context(), orgID)
		if err != nil {
			return ux.FormatError(err, "fetching health score")
		}

		f, err := formatter(cmd)
		if err != nil {
			return err
		}
		if outputFlag != "text" {
			return f.Format(score)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Overall:     %.0f\n", score.OverallScore)
		fmt.Fprintf(out, "  Apex:        %.0f\n", score.ApexScore)
		fmt.Fprintf(out, "  Flows:       %.0f\n", score.FlowScore)
		fmt.Fprintf(out, "  Permissions: %.0f\n", score.PermissionScore)
		fmt.Fprintf(out, "  Data:        %.0f\n", score.DataScore)
		fmt.Fprintf(out, "Components:  %d\n", score.MetadataCount)
		fmt.Fprintf(out, "Scored at:   %s\n", score.ScoredAt)
		return nil
	},
}

// healthHistoryCmd lists past health scores
var healthHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past health scores",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, orgID, err := activeOrg(cmd)
		if err != nil {
			return err
		}

		scores, err := a.Client.GetHealthHistory(cmd.Context(), orgID)
		if err != nil {
			return ux.FormatError(err, "fetching health history")
		}

		f, err := formatter(cmd)
		if err != nil {
			return err
		}
		if outputFlag != "text" {
			return f.Format(scores)
		}

		table := ux.NewTable("SCORED AT", "OVERALL", "APEX", "FLOWS", "PERMS", "DATA")
		for _, s := range scores {
			table.AddRow(
				s.ScoredAt,
				fmt.Sprintf("%.0f", s.OverallScore),
				fmt.Sprintf("%.0f", s.ApexScore),
				fmt.Sprintf("%.0f", s.FlowScore),
				fmt.Sprintf("%.0f", s.PermissionScore),
				fmt.Sprintf("%.0f", s.DataScore),
			)
		}
		return f.Format(table)
	},
}

// healthDeadCodeCmd lists unused metadata components
var healthDeadCodeCmd = &cobra.Command{
	Use:   "dead-code",
	Short: "List unused metadata components",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, orgID, err := activeOrg(cmd)
		if err != nil {
			return err
		}

		items, err := a.Client.GetDeadCode(cmd.Context(), orgID)
		if err != nil {
			return ux.FormatError(err, "fetching dead code")
		}

		f, err := formatter(cmd)
		if err != nil {
			return err
		}
		if outputFlag != "text" {
			return f.Format(items)
		}

		table := ux.NewTable("ID", "COMPONENT", "TYPE", "REVIEWED")
		for _, item := range items {
			table.AddRow(
				strconv.FormatInt(item.ID, 10),
				item.ComponentName,
				item.ComponentType,
				strconv.FormatBool(item.Reviewed),
			)
		}
		return f.Format(table)
	},
}

// healthReviewCmd marks a dead-code item as reviewed
var healthReviewCmd = &cobra.Command{
	Use:   "review <id>",
	Short: "Mark a dead-code item as reviewed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid item id %q", args[0])
		}

		a, orgID, err := activeOrg(cmd)
		if err != nil {
			return err
		}

		reviewer := ""
		if user := a.Auth.User(); user != nil {
			reviewer = user.Email
		}

		item, err := a.Client.MarkDeadCodeReviewed(cmd.Context(), orgID, id, reviewer)
		if err != nil {
			return ux.FormatError(err, "marking item reviewed")
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Reviewed %s (%s)\n", item.ComponentName, item.ComponentType)
		return nil
	},
}

// healthDepsCmd prints the metadata dependency edges
var healthDepsCmd = &cobra.Command{
	Use:   "deps",
	Short: "List metadata dependencies",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, orgID, err := activeOrg(cmd)
		if err != nil {
			return err
		}

		deps, err := a.Client.GetDependencies(cmd.Context(), orgID)
		if err != nil {
			return ux.FormatError(err, "fetching dependencies")
		}

		f, err := formatter(cmd)
		if err != nil {
			return err
		}
		if outputFlag != "text" {
			return f.Format(deps)
		}

		table := ux.NewTable("FROM", "TYPE", "TO", "TYPE")
		for _, d := range deps {
			table.AddRow(d.FromComponent, d.FromType, d.ToComponent, d.ToType)
		}
		return f.Format(table)
	},
}

func init() {
	healthCmd.AddCommand(healthScoreCmd, healthHistoryCmd, healthDeadCodeCmd, healthReviewCmd, healthDepsCmd)
	rootCmd.AddCommand(healthCmd)
}
