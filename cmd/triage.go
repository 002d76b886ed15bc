package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/misty-step/cerberus/internal/models"
	"github.com/misty-step/cerberus/internal/prstate"
	"github.com/misty-step/cerberus/internal/triage"
)

var (
	triagePRNumber   int
	triageRepo       string
	triageRepoDir    string
	triageMaxAttempt int
	triageStaleHours float64
	triageTrigger    string
)

var triageCmd = &cobra.Command{
	Use:   "triage",
	Short: "Decide whether a pull request should be diagnosed or fixed by another automated pass",
	RunE: func(cmd *cobra.Command, args []string) error {
		return triageRun(cmd.Context())
	},
}

func init() {
	triageCmd.Flags().IntVar(&triagePRNumber, "pr", 0, "Pull request number")
	triageCmd.Flags().StringVar(&triageRepo, "repo", "", "owner/repo (default: current directory's origin)")
	triageCmd.Flags().StringVar(&triageRepoDir, "repo-dir", ".", "Local working tree to inspect for the git-checkout check")
	triageCmd.Flags().IntVar(&triageMaxAttempt, "max-attempts", 3, "Maximum triage retries per head SHA")
	triageCmd.Flags().Float64Var(&triageStaleHours, "stale-hours", 24, "Hours before a posted verdict is considered stale")
	triageCmd.Flags().StringVar(&triageTrigger, "trigger", string(triage.TriggerAutomatic), "What invoked this run: automatic, manual, or scheduled")
	_ = triageCmd.MarkFlagRequired("pr")
	rootCmd.AddCommand(triageCmd)
}

// latestTrustedVerdict finds the most recent comment, authored by the
// trusted bot, carrying Cerberus's verdict marker, and returns its verdict
// and posting time. Comments from anyone else — including the PR author —
// never influence the guard's decision.
func latestTrustedVerdict(comments []models.Comment, trustedBotLogin string) (models.Verdict, *time.Time, bool) {
	sorted := make([]models.Comment, len(comments))
	copy(sorted, comments)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].CreatedAt.After(sorted[j].CreatedAt) })

	for _, c := range sorted {
		if c.Author != trustedBotLogin {
			continue
		}
		if v, ok := triage.ExtractCouncilVerdict(c.Body); ok {
			at := c.CreatedAt
			return v, &at, true
		}
	}
	return "", nil, false
}

// isGitCheckout reports whether dir looks like a real git working tree,
// rather than e.g. a tarball extraction or a shallow export with no .git.
func isGitCheckout(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil && (info.IsDir() || info.Mode().IsRegular())
}

func triageRun(ctx context.Context) error {
	state := &prstate.CLIState{Repo: triageRepo}

	sha, err := state.HeadSHA(ctx)
	if err != nil {
		return fmt.Errorf("resolve head sha: %w", err)
	}
	shortSHA := sha
	if len(shortSHA) > 8 {
		shortSHA = shortSHA[:8]
	}

	commitMsg, err := state.CommitMessage(ctx, sha)
	if err != nil {
		ui.Warning("failed to read commit message: %v", err)
	}

	comments, err := state.Comments(ctx, triagePRNumber)
	if err != nil {
		return fmt.Errorf("fetch pr comments: %w", err)
	}

	trustedBot := viper.GetString("override.trusted_bot_login")
	verdict, verdictAt, hasVerdict := latestTrustedVerdict(comments, trustedBot)
	attempts := triage.CountAttemptsForSHA(comments, sha, trustedBot)

	trigger := triage.Trigger(triageTrigger)
	requestedMode := triage.RequestedModeFix
	for _, c := range comments {
		requestedMode = triage.ParseTriageCommandMode(c.Body, requestedMode)
	}

	isFork := false
	if triagePRNumber > 0 {
		isFork, err = state.IsForkHead(ctx, triagePRNumber)
		if err != nil {
			ui.Warning("failed to resolve fork status: %v", err)
		}
	}

	var stale bool
	if verdictAt != nil {
		stale = time.Now().UTC().Sub(*verdictAt) >= time.Duration(triageStaleHours*float64(time.Hour))
	}

	decision := triage.Decide(triage.DecideInput{
		Trigger:           trigger,
		RequestedMode:     requestedMode,
		HasVerdict:        hasVerdict,
		Verdict:           verdict,
		VerdictIsStale:    stale,
		HeadCommitMessage: commitMsg,
		AttemptsForSHA:    attempts,
		MaxAttempts:       triageMaxAttempt,
		IsForkHead:        isFork,
		IsGitCheckout:     isGitCheckout(triageRepoDir),
		KillSwitch:        viper.GetBool("triage.disabled"),
	})

	switch decision {
	case triage.DecisionDisabled:
		ui.Info("triage is disabled")
	case triage.DecisionSkip:
		ui.Info("no triage needed for %s (attempt %d/%d)", shortSHA, attempts, triageMaxAttempt)
	case triage.DecisionDiagnose:
		ui.Success("diagnosing %s without writing (trigger=%s, fork=%v)", shortSHA, trigger, isFork)
	case triage.DecisionFix:
		// Running the configured fix command, committing, and pushing is the
		// workflow's responsibility once it owns a writable checkout; this
		// command only renders the decision the guard reached.
		ui.Success("authorized to fix %s (attempt %d/%d)", shortSHA, attempts+1, triageMaxAttempt)
	}
	return nil
}
