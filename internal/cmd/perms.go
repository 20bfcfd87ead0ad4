package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/orgforge/orgforge/internal/ux"
)

var permsCmd = &cobra.Command{
	Use:   "perms",
	Short: "Permission auditing for the active org",
}

// permsProfilesCmd lists profiles and permission sets
var permsProfilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List profiles and permission sets",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, orgID, err := activeOrg(cmd)
		if err != nil {
			return err
		}

		profiles, err := a.Client.GetPermissionProfiles(cmd.Context(), orgID)
		if err != nil {
			return ux.FormatError(err, "listing profiles")
		}

		f, err := formatter(cmd)
		if err != nil {
			return err
		}
		if outputFlag != "text" {
			return f.Format(profiles)
		}

		table := ux.NewTable("ID", "NAME", "TYPE", "USERS")
		for _, p := range profiles {
			table.AddRow(p.ID, p.Name, p.Type, strconv.Itoa(p.UserCnt))
		}
		return f.Format(table)
	},
}

// permsSnapshotCmd captures a point-in-time copy of a profile
var permsSnapshotCmd = &cobra.Command{
	Use:   "snapshot <profileId> <profileName>",
	Short: "Capture a profile snapshot",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, orgID, err := activeOrg(cmd)
		if err != nil {
			return err
		}

		snap, err := a.Client.SnapshotProfile(cmd.Context(), orgID, args[0], args[1])
		if err != nil {
			return ux.FormatError(err, "capturing snapshot")
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Snapshot #%d of %s captured at %s\n", snap.ID, snap.ProfileName, snap.CapturedAt)
		return nil
	},
}

// permsComparisonsCmd lists stored comparisons
var permsComparisonsCmd = &cobra.Command{
	Use:   "comparisons",
	Short: "List stored profile comparisons",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, orgID, err := activeOrg(cmd)
		if err != nil {
			return err
		}

		comparisons, err := a.Client.GetComparisons(cmd.Context(), orgID)
		if err != nil {
			return ux.FormatError(err, "listing comparisons")
		}

		f, err := formatter(cmd)
		if err != nil {
			return err
		}
		if outputFlag != "text" {
			return f.Format(comparisons)
		}

		table := ux.NewTable("ID", "PROFILE A", "PROFILE B", "DIFFS", "COMPARED AT")
		for _, c := range comparisons {
			table.AddRow(
				strconv.FormatInt(c.ID, 10),
				c.ProfileA,
				c.ProfileB,
				strconv.Itoa(len(c.Diffs)),
				c.ComparedAt,
			)
		}
		return f.Format(table)
	},
}

// permsCompareCmd diffs two profiles
var permsCompareCmd = &cobra.Command{
	Use:   "compare <profileA> <profileB>",
	Short: "Compare two profiles",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, orgID, err := activeOrg(cmd)
		if err != nil {
			return err
		}

		comparedBy := ""
		if user := a.Auth.User(); user != nil {
			comparedBy = user.Email
		}

		comparison, err := a.Client.CompareProfiles(cmd.Context(), orgID, args[0], args[1], comparedBy)
		if err != nil {
			return ux.FormatError(err, "comparing profiles")
		}

		f, err := formatter(cmd)
		if err != nil {
			return err
		}
		if outputFlag != "text" {
			return f.Format(comparison)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s vs %s: %d differences\n", comparison.ProfileA, comparison.ProfileB, len(comparison.Diffs))
		for _, d := range comparison.Diffs {
			fmt.Fprintf(out, "  %s\n", d)
		}
		return nil
	},
}

// permsViolationsCmd lists risky grants
var permsViolationsCmd = &cobra.Command{
	Use:   "violations",
	Short: "List risky permission grants",
	RunE: func(cmd *cobra.Command, args []string) error {
		detect, _ := cmd.Flags().GetBool("detect")

		a, orgID, err := activeOrg(cmd)
		if err != nil {
			return err
		}

		fetch := a.Client.GetViolations
		if detect {
			fetch = a.Client.DetectViolations
		}
		violations, err := fetch(cmd.Context(), orgID)
		if err != nil {
			return ux.FormatError(err, "fetching violations")
		}

		f, err := formatter(cmd)
		if err != nil {
			return err
		}
		if outputFlag != "text" {
			return f.Format(violations)
		}

		table := ux.NewTable("ID", "USER", "PERMISSION", "RISK", "ACK")
		for _, v := range violations {
			table.AddRow(
				strconv.FormatInt(v.ID, 10),
				v.Username,
				v.PermissionName,
				v.RiskLevel,
				strconv.FormatBool(v.Acknowledged),
			)
		}
		return f.Format(table)
	},
}

// permsAckCmd acknowledges one violation
var permsAckCmd = &cobra.Command{
	Use:   "ack <id>",
	Short: "Acknowledge a violation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid violation id %q", args[0])
		}

		a, _, err := activeOrg(cmd)
		if err != nil {
			return err
		}

		if err := a.Client.AcknowledgeViolation(cmd.Context(), id); err != nil {
			return ux.FormatError(err, "acknowledging violation")
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Violation #%d acknowledged\n", id)
		return nil
	},
}

func init() {
	permsViolationsCmd.Flags().Bool("detect", false, "run a fresh detection instead of reading cached results")

	permsCmd.AddCommand(permsProfilesCmd, permsSnapshotCmd, permsCompareCmd, permsComparisonsCmd, permsViolationsCmd, permsAckCmd)
	rootCmd.AddCommand(permsCmd)
}
