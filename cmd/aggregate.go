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

	"github.com/misty-step/cerberus/internal/aggregator"
	"github.com/misty-step/cerberus/internal/config"
	"github.com/misty-step/cerberus/internal/models"
	"github.com/misty-step/cerberus/internal/prstate"
	"github.com/misty-step/cerberus/internal/qualityreport"
	"github.com/misty-step/cerberus/internal/render"
)

var (
	aggregateVerdictsPath string
	aggregatePRNumber     int
	aggregatePRAuthor     string
	aggregateRepo         string
	aggregateComment      bool
	aggregateRecordDB     bool
	aggregateWave         string
	aggregateModelTier    string
)

var aggregateCmd = &cobra.Command{
	Use:   "aggregate",
	Short: "Combine per-reviewer verdicts into a final decision",
	RunE: func(cmd *cobra.Command, args []string) error {
		return aggregateRun(cmd.Context())
	},
}

func init() {
	aggregateCmd.Flags().StringVar(&aggregateVerdictsPath, "verdicts", "", "Path to reviewer verdicts JSON (default: read stdin)")
	aggregateCmd.Flags().IntVar(&aggregatePRNumber, "pr", 0, "Pull request number (enables override/comment lookup via gh)")
	aggregateCmd.Flags().StringVar(&aggregatePRAuthor, "pr-author", "", "Pull request author login (for override authorization)")
	aggregateCmd.Flags().StringVar(&aggregateRepo, "repo", "", "owner/repo (for gh CLI lookups; default: current directory's origin)")
	aggregateCmd.Flags().BoolVar(&aggregateComment, "comment", false, "Print the rendered PR comment instead of raw JSON")
	aggregateCmd.Flags().BoolVar(&aggregateRecordDB, "record", false, "Record this run in the quality-report history cache")
	aggregateCmd.Flags().StringVar(&aggregateWave, "wave", "", "Current wave name (enables wave-gate evaluation)")
	aggregateCmd.Flags().StringVar(&aggregateModelTier, "model-tier", "", "Model tier in effect for this run, for wave max-tier caps")
	rootCmd.AddCommand(aggregateCmd)
}

func readVerdicts() ([]models.ReviewerVerdict, error) {
	var data []byte
	var err error
	if aggregateVerdictsPath == "" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(aggregateVerdictsPath)
	}
	if err != nil {
		return nil, fmt.Errorf("read verdicts: %w", err)
	}

	var verdicts []models.ReviewerVerdict
	if err := json.Unmarshal(data, &verdicts); err != nil {
		return nil, fmt.Errorf("parse verdicts JSON: %w", err)
	}
	return verdicts, nil
}

// strictestOverridePolicy folds the override policies of this run's FAILing
// reviewers into one, since a single PR-level override command must satisfy
// whichever failing reviewer's policy is hardest to meet. Reviewers that
// passed this run don't constrain the override, even if their configured
// policy is stricter.
func strictestOverridePolicy(d *config.Document, verdicts []models.ReviewerVerdict) config.OverridePolicy {
	policy := config.PolicyPRAuthor
	for _, v := range verdicts {
		if v.Verdict != models.VerdictFail {
			continue
		}
		policy = config.Stricter(policy, d.OverridePolicyFor(v.Perspective))
	}
	return policy
}

func aggregateRun(ctx context.Context) error {
	d, err := requireRoster()
	if err != nil {
		return err
	}

	verdicts, err := readVerdicts()
	if err != nil {
		return err
	}

	criticalOf := func(reviewer string) bool {
		for _, r := range d.Reviewers {
			if r.Codename == reviewer {
				return r.Critical
			}
		}
		return false
	}

	var override *models.AppliedOverride
	var headSHA string

	if aggregatePRNumber > 0 {
		state := &prstate.CLIState{Repo: aggregateRepo}
		headSHA, _ = state.HeadSHA(ctx)

		comments, cerr := state.Comments(ctx, aggregatePRNumber)
		if cerr != nil {
			ui.Warning("failed to fetch PR comments for override resolution: %v", cerr)
		} else if headSHA != "" {
			policy := strictestOverridePolicy(d, verdicts)
			override = aggregator.ResolveOverrides(comments, headSHA, aggregatePRAuthor, policy, func(actor string) aggregator.ActorPermission {
				perm, perr := state.ActorPermission(ctx, actor)
				if perr != nil {
					return aggregator.PermissionNone
				}
				return perm
			})
		}
	}

	cv := aggregator.Aggregate(verdicts, criticalOf, override)
	cv.GeneratedAt = time.Now().UTC()

	if aggregateWave != "" {
		cv.Wave = aggregator.ResolveWaveGate(d.Waves, aggregateWave, verdicts, aggregateModelTier)
	}

	if aggregateRecordDB {
		dbPath := viper.GetString("history_db_path")
		store, oerr := qualityreport.Open(ctx, dbPath)
		if oerr != nil {
			ui.Warning("failed to open quality-report cache: %v", oerr)
		} else {
			if rerr := store.Record(ctx, aggregatePRNumber, headSHA, cv); rerr != nil {
				ui.Warning("failed to record quality-report entry: %v", rerr)
			}
			_ = store.Close()
		}
	}

	if aggregateComment {
		rc := render.LoadRepoContext()
		fmt.Fprintln(ui.Out, render.RenderComment(cv, rc))
		return nil
	}

	data, err := json.MarshalIndent(cv, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal verdict: %w", err)
	}
	fmt.Fprintln(ui.Out, string(data))

	ui.VerdictTable(cv)
	return nil
}
