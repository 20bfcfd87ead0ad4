package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/orgforge/orgforge/internal/ux"
)

var deploysCmd = &cobra.Command{
	Use:   "deploys",
	Short: "Deployments for the active org",
}

// deploysListCmd lists recent deployments
var deploysListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent deployments",
	RunE: func(cmd *cobra.Command, args []string) error {
		page, _ := cmd.Flags().GetInt("page")

		a, orgID, err := activeOrg(cmd)
		if err != nil {
			return err
		}

		deployments, err := a.Client.GetDeployments(cmd.Context(), orgID, page)
		if err != nil {
			return ux.FormatError(err, "listing deployments")
		}

		f, err := formatter(cmd)
		if err != nil {
			return err
		}
		if outputFlag != "text" {
			return f.Format(deployments)
		}

		table := ux.NewTable("ID", "LABEL", "STATUS", "COMPONENTS", "STARTED")
		for _, d := range deployments.Content {
			table.AddRow(
				strconv.FormatInt(d.ID, 10),
				d.Label,
				d.Status,
				strconv.Itoa(d.ComponentCount),
				d.StartedAt.Format("2006-01-02 15:04"),
			)
		}
		return f.Format(table)
	},
}

// deploysShowCmd shows one deployment
var deploysShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one deployment in detail",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid deployment id %q", args[0])
		}

		a, orgID, err := activeOrg(cmd)
		if err != nil {
			return err
		}

		d, err := a.Client.GetDeployment(cmd.Context(), orgID, id)
		if err != nil {
			return ux.FormatError(err, "fetching deployment")
		}

		f, err := formatter(cmd)
		if err != nil {
			return err
		}
		if outputFlag != "text" {
			return f.Format(d)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Deployment #%d  %s\n", d.ID, d.Label)
		fmt.Fprintf(out, "Status:     %s\n", d.Status)
		fmt.Fprintf(out, "Components: %d\n", d.ComponentCount)
		if d.ValidationOnly {
			fmt.Fprintln(out, "Mode:       validation only")
		}
		if d.DeployedBy != "" {
			fmt.Fprintf(out, "By:         %s\n", d.DeployedBy)
		}
		fmt.Fprintf(out, "Started:    %s\n", d.StartedAt.Format("2006-01-02 15:04"))
		if d.CompletedAt != nil {
			fmt.Fprintf(out, "Completed:  %s\n", d.CompletedAt.Format("2006-01-02 15:04"))
		}
		if d.ErrorMessage != "" {
			fmt.Fprintf(out, "Error:      %s\n", d.ErrorMessage)
		}
		return nil
	},
}

// deploysSyncCmd pulls deployment history from the org
var deploysSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync deployment history from the org",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, orgID, err := activeOrg(cmd)
		if err != nil {
			return err
		}

		if err := a.Client.SyncDeployments(cmd.Context(), orgID); err != nil {
			return ux.FormatError(err, "syncing deployments")
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Deployment history synced.")
		return nil
	},
}

// deploysImpactCmd analyzes the blast radius of a component change
var deploysImpactCmd = &cobra.Command{
	Use:   "impact <component...>",
	Short: "Analyze the impact of changing components",
	Long: `Analyze which components are affected by a change before
deploying it.

Examples:
  orgforge deploys impact AccountService
  orgforge deploys impact AccountService OrderTrigger`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, orgID, err := activeOrg(cmd)
		if err != nil {
			return err
		}

		analysis, err := a.Client.AnalyzeImpact(cmd.Context(), orgID, args)
		if err != nil {
			return ux.FormatError(err, "analyzing impact")
		}

		f, err := formatter(cmd)
		if err != nil {
			return err
		}
		if outputFlag != "text" {
			return f.Format(analysis)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Risk level: %s\n", analysis.RiskLevel)
		fmt.Fprintf(out, "Affected components (%d):\n", len(analysis.AffectedComponents))
		for _, c := range analysis.AffectedComponents {
			fmt.Fprintf(out, "  %s\n", c)
		}
		for _, w := range analysis.Warnings {
			fmt.Fprintf(out, "⚠ %s\n", w)
		}
		return nil
	},
}

// deploysStartCmd starts a deployment or validation
var deploysStartCmd = &cobra.Command{
	Use:   "start <label>",
	Short: "Start a deployment",
	Long: `Start a deployment of the staged component set.

Examples:
  orgforge deploys start "Release 24.1"
  orgforge deploys start "Release 24.1" --validate-only`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		validateOnly, _ := cmd.Flags().GetBool("validate-only")

		a, orgID, err := activeOrg(cmd)
		if err != nil {
			return err
		}

		deployedBy := ""
		if user := a.Auth.User(); user != nil {
			deployedBy = user.Email
		}

		d, err := a.Client.StartDeployment(cmd.Context(), orgID, args[0], validateOnly, deployedBy)
		if err != nil {
			return ux.FormatError(err, "starting deployment")
		}

		verb := "Deployment"
		if d.ValidationOnly {
			verb = "Validation"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s #%d started (%s)\n", verb, d.ID, d.Status)
		return nil
	},
}

// deploysRollbackCmd rolls a deployment back
var deploysRollbackCmd = &cobra.Command{
	Use:   "rollback <id>",
	Short: "Roll back a deployment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reason, _ := cmd.Flags().GetString("reason")

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid deployment id %q", args[0])
		}

		a, orgID, err := activeOrg(cmd)
		if err != nil {
			return err
		}

		if !ux.Confirm(fmt.Sprintf("Roll back deployment #%d?", id), false) {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
			return nil
		}

		rolledBackBy := ""
		if user := a.Auth.User(); user != nil {
			rolledBackBy = user.Email
		}

		d, err := a.Client.RollbackDeployment(cmd.Context(), orgID, id, reason, rolledBackBy)
		if err != nil {
			return ux.FormatError(err, "rolling back deployment")
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Rollback of #%d is %s\n", d.ID, d.Status)
		return nil
	},
}

func init() {
	deploysListCmd.Flags().Int("page", 0, "result page")
	deploysStartCmd.Flags().Bool("validate-only", false, "validate without deploying")
	deploysRollbackCmd.Flags().String("reason", "", "why the deployment is being rolled back")

	deploysCmd.AddCommand(deploysListCmd, deploysShowCmd, deploysSyncCmd, deploysImpactCmd, deploysStartCmd, deploysRollbackCmd)
	rootCmd.AddCommand(deploysCmd)
}
