// Package cmd wires Cerberus's command tree: a root command with
// persistent flags plus one subcommand per pipeline stage.
//
// Grounded in the teacher's cmd/root.go: the cobra.OnInitialize(initConfig,
// initDeps) split, the viper env-prefix/config-file/defaults wiring, and
// the persistent --verbose/--config flags are kept, retargeted from the
// PM tool's SQLite-store bootstrap to Cerberus's roster-document bootstrap.
package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/misty-step/cerberus/internal/config"
	"github.com/misty-step/cerberus/internal/output"
)

// Package-level shared dependencies, initialized in cobra.OnInitialize.
var (
	ui  *output.UI
	doc *config.Document

	verbose bool

	buildVersion = "dev"
	buildCommit  = "none"
	buildDate    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "cerberus",
	Short: "Cerberus - multi-reviewer LLM pull request gate",
	Long: `Cerberus runs a panel of specialized LLM reviewers against a pull
request diff in parallel, parses their structured verdicts, and
aggregates them into a single pass/warn/fail/skip decision.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	DisableAutoGenTag: true,
}

// Execute is the main entry point called from main.go.
func Execute(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var cfgErr *config.ConfigError
		if errors.As(err, &cfgErr) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initDeps)

	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.config/cerberus/config.yaml)")
	rootCmd.PersistentFlags().String("roster", "", "Reviewer roster file (default ~/.config/cerberus/roster.yaml)")
}

func initConfig() {
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot find home directory: %v\n", err)
			os.Exit(1)
		}

		configDir := filepath.Join(home, ".config", "cerberus")
		viper.AddConfigPath(configDir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("CERBERUS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	home, _ := os.UserHomeDir()
	defaultConfigDir := filepath.Join(home, ".config", "cerberus")

	viper.SetDefault("roster_path", filepath.Join(defaultConfigDir, "roster.yaml"))
	viper.SetDefault("history_db_path", filepath.Join(defaultConfigDir, "history.db"))
	viper.SetDefault("anthropic.api_key", "")
	viper.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	viper.SetDefault("router.model", "claude-haiku-4-5-20251001")
	viper.SetDefault("runner.max_retries", 3)
	viper.SetDefault("runner.concurrency", 4)
	viper.SetDefault("override.trusted_bot_login", "cerberus-bot")

	_ = viper.ReadInConfig()
}

func initDeps() {
	ui = output.New(verbose)

	rosterPath := viper.GetString("roster_path")
	if rosterFlag, _ := rootCmd.PersistentFlags().GetString("roster"); rosterFlag != "" {
		rosterPath = rosterFlag
	}

	// Best-effort: commands that don't need the roster (e.g. `cerberus
	// config validate <path>` against an explicit file) still work
	// without one configured.
	if loaded, err := config.Load(rosterPath); err == nil {
		doc = loaded
	}
}

func requireRoster() (*config.Document, error) {
	if doc == nil {
		return nil, fmt.Errorf("no reviewer roster loaded (set --roster or CERBERUS_ROSTER_PATH)")
	}
	return doc, nil
}
