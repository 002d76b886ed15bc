package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/misty-step/cerberus/internal/matrix"
	"github.com/misty-step/cerberus/internal/models"
	"github.com/misty-step/cerberus/internal/parser"
	"github.com/misty-step/cerberus/internal/runner"
)

var (
	reviewDiffPath   string
	reviewBase       string
	reviewHead       string
	reviewWave       string
	reviewPanel      []string
	reviewHomeBase   string
	reviewTimeoutMin int
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Run reviewers against a pull request diff",
}

var reviewRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full reviewer panel and print the per-reviewer verdicts as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		return reviewRun(cmd.Context())
	},
}

func init() {
	reviewRunCmd.Flags().StringVar(&reviewDiffPath, "diff", "", "Path to the unified diff (default: read stdin)")
	reviewRunCmd.Flags().StringVar(&reviewBase, "base", "main", "Base branch name")
	reviewRunCmd.Flags().StringVar(&reviewHead, "head", "HEAD", "Head branch name")
	reviewRunCmd.Flags().StringVar(&reviewWave, "wave", "", "Restrict to a named wave's reviewers")
	reviewRunCmd.Flags().StringSliceVar(&reviewPanel, "panel", nil, "Restrict to these perspectives (from cerberus route)")
	reviewRunCmd.Flags().StringVar(&reviewHomeBase, "home-base", "", "Base directory for isolated per-reviewer HOME dirs (default: a temp dir)")
	reviewRunCmd.Flags().IntVar(&reviewTimeoutMin, "timeout-minutes", 10, "Per-reviewer wall-clock timeout")

	reviewCmd.AddCommand(reviewRunCmd)
	rootCmd.AddCommand(reviewCmd)
}

func readDiff() (string, error) {
	if reviewDiffPath == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read diff from stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(reviewDiffPath)
	if err != nil {
		return "", fmt.Errorf("read diff file: %w", err)
	}
	return string(data), nil
}

func reviewRun(ctx context.Context) error {
	d, err := requireRoster()
	if err != nil {
		return err
	}

	diff, err := readDiff()
	if err != nil {
		return err
	}

	entries, err := matrix.Expand(d, matrix.Options{Wave: reviewWave, Panel: reviewPanel})
	if err != nil {
		return err
	}

	homeBase := reviewHomeBase
	if homeBase == "" {
		homeBase, err = os.MkdirTemp("", "cerberus-review-")
		if err != nil {
			return fmt.Errorf("create isolated home base dir: %w", err)
		}
		defer func() { _ = os.RemoveAll(homeBase) }()
	}

	reviewerCommand := viper.GetStringSlice("runner.command")
	if len(reviewerCommand) == 0 {
		reviewerCommand = []string{"claude", "-p"}
	}

	tasks := make([]runner.Task, 0, len(entries))
	byReviewer := make(map[string]matrix.Entry, len(entries))
	for _, e := range entries {
		profile := d.ReviewerFor(e.Perspective)
		primary := viper.GetString("anthropic.model")
		if profile != nil && profile.Model != "" {
			primary = profile.Model
		}

		prompt := runner.BuildReviewPrompt(runner.PromptInputs{
			Reviewer:      e.Reviewer,
			Perspective:   e.Perspective,
			ReviewerLabel: e.ReviewerLabel,
			Tagline:       e.ReviewerTagline,
			Diff:          diff,
			BaseBranch:    reviewBase,
			HeadBranch:    reviewHead,
		})

		command := make([]string, len(reviewerCommand)+1)
		copy(command, reviewerCommand)
		command[len(reviewerCommand)] = prompt

		tasks = append(tasks, runner.Task{
			Reviewer:      e.Reviewer,
			Perspective:   e.Perspective,
			Command:       command,
			Prompt:        prompt,
			PrimaryModel:  primary,
			FallbackModel: viper.GetString("anthropic.fallback_model"),
			Timeout:       time.Duration(reviewTimeoutMin) * time.Minute,
			HomeBaseDir:   homeBase,
			MaxRetries:    viper.GetInt("runner.max_retries"),
		})
		byReviewer[e.Reviewer] = e
	}

	artifacts, runErr := runner.RunAll(ctx, tasks, viper.GetInt("runner.concurrency"))
	if runErr != nil {
		ui.Warning("one or more reviewers failed to complete: %v", runErr)
	}

	verdicts := make([]models.ReviewerVerdict, 0, len(artifacts))
	for _, art := range artifacts {
		if art == nil {
			continue
		}
		entry := byReviewer[art.Reviewer]
		verdicts = append(verdicts, *parser.Parse(art, entry, diff))
	}

	data, err := json.MarshalIndent(verdicts, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal verdicts: %w", err)
	}
	fmt.Fprintln(ui.Out, string(data))
	return nil
}
