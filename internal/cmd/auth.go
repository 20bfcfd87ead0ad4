package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/orgforge/orgforge/internal/token"
	"github.com/orgforge/orgforge/internal/ux"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage your session",
}

// authLoginCmd authenticates and persists the session
var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the backend",
	Long: `Authenticate against the backend and persist the session locally.

Examples:
  orgforge auth login --email user@example.com
  orgforge auth login --email user@example.com --password secret`,
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")

		if email == "" {
			email = ux.PromptForString("Email", "")
		}
		if email == "" {
			return fmt.Errorf("--email is required")
		}
		if password == "" {
			var err error
			password, err = promptPassword("Password: ")
			if err != nil {
				return err
			}
		}

		a, err := getApp()
		if err != nil {
			return err
		}

		resp, err := a.Client.Login(cmd.Context(), email, password)
		if err != nil {
			return ux.FormatError(err, "login failed")
		}

		a.Auth.Login(resp.User, resp.Token)
		a.Session.Start(cmd.Context())

		fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", resp.User.Email)
		if org, ok := a.Orgs.ActiveOrg(); ok {
			fmt.Fprintf(cmd.OutOrStdout(), "Active org: %s (%s)\n", org.OrgName, org.OrgID)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "No orgs connected yet. Run 'orgforge orgs connect'.")
		}
		return nil
	},
}

// authRegisterCmd creates an account and logs in
var authRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a new account",
	Long: `Create a new account. After registration you are logged in.

Examples:
  orgforge auth register --name "Dana Scully" --email dana@example.com`,
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")

		if email == "" {
			return fmt.Errorf("--email is required")
		}
		if name == "" {
			name = email
		}
		if password == "" {
			var err error
			password, err = promptPassword("Password: ")
			if err != nil {
				return err
			}
		}

		a, err := getApp()
		if err != nil {
			return err
		}

		resp, err := a.Client.Register(cmd.Context(), name, email, password)
		if err != nil {
			return ux.FormatError(err, "registration failed")
		}

		a.Auth.Login(resp.User, resp.Token)
		a.Session.Start(cmd.Context())

		fmt.Fprintf(cmd.OutOrStdout(), "Registered and logged in as %s\n", resp.User.Email)
		return nil
	},
}

// authLogoutCmd clears the local session
var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and clear the local session",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp()
		if err != nil {
			return err
		}

		if !a.Auth.IsAuthenticated() {
			fmt.Fprintln(cmd.OutOrStdout(), "Not logged in.")
			return nil
		}

		a.Auth.Logout()
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
		return nil
	},
}

// authStatusCmd shows the current session
var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show session status",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		user := a.Auth.User()
		if user == nil {
			fmt.Fprintln(out, "Not logged in.")
			fmt.Fprintln(out, "Use 'orgforge auth login' to authenticate.")
			return nil
		}

		fmt.Fprintln(out, "Logged in")
		fmt.Fprintf(out, "User:  %s <%s>\n", user.Name, user.Email)
		if user.ActiveOrgID != "" {
			fmt.Fprintf(out, "Org:   %s\n", user.ActiveOrgID)
		}

		if raw := a.Auth.Token(); raw != "" {
			info, err := token.Inspect(raw)
			if err == nil {
				switch {
				case info.Expired(time.Now()):
					fmt.Fprintln(out, "Token: expired, re-run 'orgforge auth login'")
				case !info.ExpiresAt.IsZero():
					fmt.Fprintf(out, "Token: valid for %s\n", info.TimeLeft(time.Now()).Round(time.Minute))
				}
			}
		}
		return nil
	},
}

func promptPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(raw), nil
}

func init() {
	authLoginCmd.Flags().String("email", "", "account email")
	authLoginCmd.Flags().String("password", "", "account password (prompted when omitted)")

	authRegisterCmd.Flags().String("name", "", "display name")
	authRegisterCmd.Flags().String("email", "", "account email")
	authRegisterCmd.Flags().String("password", "", "account password (prompted when omitted)")

	authCmd.AddCommand(authLoginCmd, authRegisterCmd, authLogoutCmd, authStatusCmd)
	rootCmd.AddCommand(authCmd)
}
