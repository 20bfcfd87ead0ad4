package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/orgforge/orgforge/internal/errors"
	"github.com/orgforge/orgforge/internal/ux"
)

var orgsCmd = &cobra.Command{
	Use:   "orgs",
	Short: "Manage connected organizations",
}

// orgsListCmd lists connected orgs
var orgsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List connected organizations",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp()
		if err != nil {
			return err
		}
		if err := a.RequireAuth(); err != nil {
			return err
		}

		a.Session.Start(cmd.Context())
		a.Session.Refresh(cmd.Context())

		orgs := a.Orgs.Orgs()
		f, err := formatter(cmd)
		if err != nil {
			return err
		}
		if outputFlag != "text" {
			return f.Format(orgs)
		}

		if len(orgs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No orgs connected. Run 'orgforge orgs connect'.")
			return nil
		}

		active := a.Orgs.ActiveOrgID()
		table := ux.NewTable("", "ORG ID", "NAME", "TYPE", "INSTANCE")
		for _, org := range orgs {
			marker := ""
			if org.OrgID == active {
				marker = "*"
			}
			table.AddRow(marker, org.OrgID, org.OrgName, string(org.OrgType), org.InstanceURL)
		}
		return f.Format(table)
	},
}

// orgsUseCmd switches the active org
var orgsUseCmd = &cobra.Command{
	Use:   "use <orgId>",
	Short: "Switch the active organization",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp()
		if err != nil {
			return err
		}
		if err := a.RequireAuth(); err != nil {
			return err
		}
		a.Session.Start(cmd.Context())

		orgID := args[0]
		if !a.Session.SelectOrg(cmd.Context(), orgID) {
			// The cached list may be stale; refresh once and retry.
			a.Session.Refresh(cmd.Context())
			if !a.Session.SelectOrg(cmd.Context(), orgID) {
				return errors.NewOrgNotFoundError(orgID)
			}
		}

		org, _ := a.Orgs.ActiveOrg()
		fmt.Fprintf(cmd.OutOrStdout(), "Active org: %s (%s)\n", org.OrgName, org.OrgID)
		return nil
	},
}

// orgsConnectCmd starts the OAuth connect flow
var orgsConnectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Connect a new organization",
	Long: `Request an OAuth authorization URL for connecting an org.
Open the printed URL in a browser, approve access, then re-run
'orgforge orgs list' to see the new org.

Examples:
  orgforge orgs connect
  orgforge orgs connect --sandbox`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sandbox, _ := cmd.Flags().GetBool("sandbox")

		a, err := getApp()
		if err != nil {
			return err
		}
		if err := a.RequireAuth(); err != nil {
			return err
		}

		connectURL, err := a.Client.GetConnectURL(cmd.Context(), sandbox)
		if err != nil {
			return ux.FormatError(err, "requesting connect URL")
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Open this URL in your browser to authorize the org:")
		fmt.Fprintln(out)
		fmt.Fprintf(out, "  %s\n", connectURL)
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Then run 'orgforge orgs list' to pick it up.")
		return nil
	},
}

// orgsStatusCmd checks connectivity of one org
var orgsStatusCmd = &cobra.Command{
	Use:   "status <orgId>",
	Short: "Check connectivity of an organization",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp()
		if err != nil {
			return err
		}
		if err := a.RequireAuth(); err != nil {
			return err
		}

		org, err := findOrg(cmd, args[0])
		if err != nil {
			return err
		}

		status, err := a.Client.GetOrgStatus(cmd.Context(), org.ID)
		if err != nil {
			return ux.FormatError(err, "checking org status")
		}

		f, err := formatter(cmd)
		if err != nil {
			return err
		}
		if outputFlag != "text" {
			return f.Format(status)
		}

		state := "unreachable"
		if status.Connected {
			state = "connected"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s (%s): %s\n", status.OrgName, status.OrgType, state)
		return nil
	},
}

// orgsDisconnectCmd removes an org
var orgsDisconnectCmd = &cobra.Command{
	Use:   "disconnect <orgId>",
	Short: "Disconnect an organization",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		a, err := getApp()
		if err != nil {
			return err
		}
		if err := a.RequireAuth(); err != nil {
			return err
		}
		a.Session.Start(cmd.Context())

		org, err := findOrg(cmd, args[0])
		if err != nil {
			return err
		}

		if !force && !ux.Confirm(fmt.Sprintf("Disconnect %s (%s)?", org.OrgName, org.OrgID), false) {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
			return nil
		}

		if err := a.Session.Disconnect(cmd.Context(), org.ID, org.OrgID); err != nil {
			return ux.FormatError(err, "disconnecting org")
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Disconnected %s\n", org.OrgID)
		if next, ok := a.Orgs.ActiveOrg(); ok {
			fmt.Fprintf(cmd.OutOrStdout(), "Active org: %s (%s)\n", next.OrgName, next.OrgID)
		}
		return nil
	},
}

// findOrg resolves an orgId against the cached list, refreshing once
// when it is missing.
func findOrg(cmd *cobra.Command, orgID string) (org orgRef, err error) {
	a, err := getApp()
	if err != nil {
		return org, err
	}

	lookup := func() (orgRef, bool) {
		for _, o := range a.Orgs.Orgs() {
			if o.OrgID == orgID || o.ID == orgID {
				return orgRef{ID: o.ID, OrgID: o.OrgID, OrgName: o.OrgName}, true
			}
		}
		return orgRef{}, false
	}

	if found, ok := lookup(); ok {
		return found, nil
	}
	a.Session.Refresh(cmd.Context())
	if found, ok := lookup(); ok {
		return found, nil
	}
	return org, errors.NewOrgNotFoundError(orgID)
}

// orgRef is the minimal org identity commands need
type orgRef struct {
	ID      string
	OrgID   string
	OrgName string
}

func init() {
	orgsConnectCmd.Flags().Bool("sandbox", false, "connect a sandbox org")
	orgsDisconnectCmd.Flags().Bool("force", false, "skip the confirmation prompt")

	orgsCmd.AddCommand(orgsListCmd, orgsUseCmd, orgsConnectCmd, orgsStatusCmd, orgsDisconnectCmd)
	rootCmd.AddCommand(orgsCmd)
}
