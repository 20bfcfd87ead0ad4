// Package cmd defines the orgforge command tree. Every command runs
// over the shared application graph: config, persisted stores, the
// REST client, and the push multiplexer.
package cmd

import (
	"context"
	"sync"

	"github.com/spf13/cobra"

	"github.com/orgforge/orgforge/internal/app"
	"github.com/orgforge/orgforge/internal/ux"
)

var rootCmd = &cobra.Command{
	Use:   "orgforge",
	Short: "Org operations dashboard for your terminal",
	Long: `orgforge is a terminal client for the OrgForge platform.
It manages your session and connected organizations, and gives every
feature area a command: test health, governor limits, org analysis,
deployments, flows, permissions, bulk data loads, and chat.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	appOnce   sync.Once
	appShared *app.App
	appErr    error
)

// getApp wires the application graph once per process
func getApp() (*app.App, error) {
	appOnce.Do(func() {
		appShared, appErr = app.New()
	})
	return appShared, appErr
}

// activeOrg returns the wired app plus the active org id, starting
// the session controller so a rehydrated login refreshes its org list
func activeOrg(cmd *cobra.Command) (*app.App, string, error) {
	a, err := getApp()
	if err != nil {
		return nil, "", err
	}
	if err := a.RequireAuth(); err != nil {
		return nil, "", err
	}
	a.Session.Start(cmd.Context())

	orgID, err := a.RequireActiveOrg()
	if err != nil {
		return nil, "", err
	}
	return a, orgID, nil
}

// outputFlag is the shared --output value (text, json, yaml)
var outputFlag string

// formatter builds the output formatter for the current --output value
func formatter(cmd *cobra.Command) (ux.Formatter, error) {
	return ux.NewFormatter(outputFlag, &ux.FormatterOptions{Writer: cmd.OutOrStdout()})
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with a cancellable context
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&outputFlag, "output", "o", "text", "output format (text, json, yaml)")
}
