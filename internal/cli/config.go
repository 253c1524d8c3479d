package cli

import (
	"fmt"

	"github.com/harun/nanoboard/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the gateway configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration with secrets masked",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		data, err := yaml.Marshal(cfg.Redacted())
		if err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration and report every problem found",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		problems := config.NewValidator().ValidateConfig(cfg)
		if len(problems) == 0 {
			fmt.Fprintln(out, "Configuration is valid")
			return nil
		}
		for _, p := range problems {
			fmt.Fprintf(out, "- %v\n", p)
		}
		return fmt.Errorf("configuration has %d problem(s)", len(problems))
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file populated with defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		loader := config.NewLoader(cfgFile)
		cfg, err := loader.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := loader.Save(cfg); err != nil {
			return fmt.Errorf("failed to save configuration: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Configuration saved to: %s\n", loader.GetConfigPath())
		fmt.Fprintln(cmd.OutOrStdout(), "Set auth.password before running: nanoboard serve")
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configValidateCmd, configInitCmd)
	rootCmd.AddCommand(configCmd)
}
