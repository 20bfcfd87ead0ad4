package cmd

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/orgforge/orgforge/internal/tui"
)

// dashboardCmd launches the interactive terminal dashboard
var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"dash"},
	Short:   "Open the interactive dashboard",
	Long: `Open the full-screen dashboard: org switcher, test health with
live run progress, governor limits, notifications, and appearance
settings.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp()
		if err != nil {
			return err
		}
		if err := a.RequireAuth(); err != nil {
			return err
		}

		a.Session.Start(cmd.Context())

		program := tea.NewProgram(tui.NewModel(a), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
		_, err = program.Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}
