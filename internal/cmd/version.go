package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/orgforge/orgforge/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")

		info := version.GetInfo()

		f, err := formatter(cmd)
		if err != nil {
			return err
		}
		if outputFlag != "text" {
			return f.Format(info)
		}

		if verbose {
			fmt.Fprintln(cmd.OutOrStdout(), info.String())
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "orgforge %s\n", info.Short())
		return nil
	},
}

func init() {
	versionCmd.Flags().BoolP("verbose", "v", false, "show commit, build date, and platform")

	rootCmd.AddCommand(versionCmd)
}
