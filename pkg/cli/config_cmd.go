package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration profiles",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the current configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := LoadUserConfig()
			if err != nil {
				return err
			}
			if getOutputFormat(cmd) == formatJSON {
				return PrintJSON(cmd.OutOrStdout(), cfg)
			}
			names := make([]string, 0, len(cfg.Profiles))
			for name := range cfg.Profiles {
				names = append(names, name)
			}
			sort.Strings(names)
			rows := make([][]string, len(names))
			for i, name := range names {
				current := ""
				if name == cfg.CurrentProfile {
					current = "*"
				}
				p := cfg.Profiles[name]
				rows[i] = []string{current, name, p.Host, p.Output}
			}
			PrintTable(cmd.OutOrStdout(), []string{"current", "profile", "host", "output"}, rows)
			return nil
		},
	})

	var host, output string
	setProfile := &cobra.Command{
		Use:   "set-profile NAME",
		Short: "Create or update a named profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutputFormat(output); err != nil {
				return err
			}
			cfg, err := LoadUserConfig()
			if err != nil {
				return err
			}
			p := cfg.Profiles[args[0]]
			if cmd.Flags().Changed("server") {
				p.Host = host
			}
			if cmd.Flags().Changed("format") {
				p.Output = output
			}
			cfg.Profiles[args[0]] = p
			if err := SaveUserConfig(cfg); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Profile %q saved.\n", args[0])
			return nil
		},
	}
	setProfile.Flags().StringVar(&host, "server", "", "Server URL for this profile")
	setProfile.Flags().StringVar(&output, "format", "", "Default output format for this profile")
	configCmd.AddCommand(setProfile)

	configCmd.AddCommand(&cobra.Command{
		Use:   "use-profile NAME",
		Short: "Switch the active profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadUserConfig()
			if err != nil {
				return err
			}
			if _, ok := cfg.Profiles[args[0]]; !ok {
				return fmt.Errorf("profile %q not found", args[0])
			}
			cfg.CurrentProfile = args[0]
			if err := SaveUserConfig(cfg); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Switched to profile %q.\n", args[0])
			return nil
		},
	})

	return configCmd
}
