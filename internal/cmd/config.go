package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/orgforge/orgforge/internal/config"
	"github.com/orgforge/orgforge/internal/ux"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and change client configuration",
}

// configShowCmd prints the effective configuration
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return ux.FormatError(err, "loading config")
		}

		f, err := formatter(cmd)
		if err != nil {
			return err
		}
		if outputFlag != "text" {
			return f.Format(cfg)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "api_url:    %s\n", cfg.APIURL)
		if cfg.WSURL != "" {
			fmt.Fprintf(out, "ws_url:     %s\n", cfg.WSURL)
		}
		fmt.Fprintf(out, "log_level:  %s\n", cfg.LogLevel)
		fmt.Fprintf(out, "log_format: %s\n", cfg.LogFormat)
		fmt.Fprintf(out, "state_dir:  %s\n", cfg.StateDir)
		return nil
	},
}

// configPathCmd prints the config file location
var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), config.Path())
		return nil
	},
}

// configSetCmd updates one key in the config file
var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set one configuration value and write the config file.

Keys: api_url, ws_url, log_level, log_format, state_dir

Examples:
  orgforge config set api_url https://orgforge.example.com
  orgforge config set log_level debug`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return ux.FormatError(err, "loading config")
		}

		key, value := args[0], args[1]
		switch key {
		case "api_url":
			cfg.APIURL = value
		case "ws_url":
			cfg.WSURL = value
		case "log_level":
			cfg.LogLevel = value
		case "log_format":
			cfg.LogFormat = value
		case "state_dir":
			cfg.StateDir = value
		default:
			return fmt.Errorf("unknown config key %q", key)
		}

		if err := config.Save(cfg); err != nil {
			return ux.FormatError(err, "saving config")
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configPathCmd, configSetCmd)
	rootCmd.AddCommand(configCmd)
}
