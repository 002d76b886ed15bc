package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/misty-step/cerberus/internal/router"
)

var routeDiffPath string

var routeCmd = &cobra.Command{
	Use:   "route",
	Short: "Select the reviewer panel and model tier for a diff",
	RunE: func(cmd *cobra.Command, args []string) error {
		return routeRun()
	},
}

func init() {
	routeCmd.Flags().StringVar(&routeDiffPath, "diff", "", "Path to the unified diff (default: read stdin)")
	rootCmd.AddCommand(routeCmd)
}

type routeOutput struct {
	Panel []string `json:"panel"`
	Tier  string   `json:"model_tier"`
}

func routeRun() error {
	d, err := requireRoster()
	if err != nil {
		return err
	}

	var data []byte
	if routeDiffPath == "" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(routeDiffPath)
	}
	if err != nil {
		return fmt.Errorf("read diff: %w", err)
	}
	diff := string(data)

	changes := router.ParseDiff(diff)
	tier := router.ClassifyModelTier(changes)

	apiKey := viper.GetString("anthropic.api_key")
	model := viper.GetString("router.model")
	log := slog.New(slog.NewTextHandler(ui.ErrOut, nil))

	client := router.NewClient(apiKey, model, log)
	panel, usedLLM := client.Route(context.Background(), d, diff)
	if !usedLLM {
		ui.VerboseLog("router: falling back to deterministic panel selection")
	}

	out := routeOutput{Panel: panel, Tier: string(tier)}
	encoded, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal route output: %w", err)
	}
	fmt.Fprintln(ui.Out, string(encoded))
	return nil
}
