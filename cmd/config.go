package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/misty-step/cerberus/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or validate reviewer roster configuration",
	Long: `Show or validate Cerberus's reviewer roster configuration.

Running bare 'cerberus config' shows the roster path and the active
settings with their sources.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowRun()
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate <roster.yaml>",
	Short: "Validate a roster document without loading it as the active config",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return configValidateRun(args[0])
	},
}

func init() {
	configCmd.AddCommand(configValidateCmd)
	rootCmd.AddCommand(configCmd)
}

var configKeys = []struct {
	Key    string
	EnvVar string
}{
	{Key: "roster_path", EnvVar: "CERBERUS_ROSTER_PATH"},
	{Key: "history_db_path", EnvVar: "CERBERUS_HISTORY_DB_PATH"},
	{Key: "anthropic.model", EnvVar: "CERBERUS_ANTHROPIC_MODEL"},
	{Key: "router.model", EnvVar: "CERBERUS_ROUTER_MODEL"},
	{Key: "runner.max_retries", EnvVar: "CERBERUS_RUNNER_MAX_RETRIES"},
	{Key: "runner.concurrency", EnvVar: "CERBERUS_RUNNER_CONCURRENCY"},
	{Key: "override.trusted_bot_login", EnvVar: "CERBERUS_OVERRIDE_TRUSTED_BOT_LOGIN"},
}

func configShowRun() error {
	rosterPath := viper.GetString("roster_path")
	if _, err := os.Stat(rosterPath); err == nil {
		ui.Info("Roster file: %s", rosterPath)
	} else {
		ui.Warning("Roster file: %s (not found)", rosterPath)
	}
	if doc != nil {
		ui.Success("%d reviewer(s) loaded", len(doc.Reviewers))
	}
	fmt.Fprintln(ui.Out)

	for _, k := range configKeys {
		val := viper.Get(k.Key)
		source := "(default)"
		if _, ok := os.LookupEnv(k.EnvVar); ok {
			source = fmt.Sprintf("(env: %s)", k.EnvVar)
		}
		fmt.Fprintf(ui.Out, "  %-32s %v  %s\n", k.Key, val, source)
	}

	return nil
}

func configValidateRun(path string) error {
	loaded, err := config.Load(path)
	if err != nil {
		ui.Error("invalid roster: %v", err)
		return err
	}

	ui.Success("roster valid: %d reviewer(s)", len(loaded.Reviewers))
	for _, r := range loaded.Reviewers {
		critical := ""
		if r.Critical {
			critical = " [critical]"
		}
		fmt.Fprintf(ui.Out, "  %-12s %-16s %s%s\n", r.Codename, r.Perspective, r.Model, critical)
	}
	return nil
}
