// Package prstate exposes the narrow view of a pull request's live state
// that the aggregator and triage guard need: its head commit, its
// comments, and a commenter's repository permission.
//
// Grounded in the teacher's internal/git/git.go and internal/git/github.go
// — the exec.Command("git", ...)/exec.Command("gh", ...) wrapping idiom is
// kept, narrowed to the PRState surface SPEC_FULL.md §4.9 needs.
package prstate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"github.com/misty-step/cerberus/internal/aggregator"
	"github.com/misty-step/cerberus/internal/models"
)

// PRState is the capability the aggregator/triage guard consume.
type PRState interface {
	HeadSHA(ctx context.Context) (string, error)
	CommitMessage(ctx context.Context, sha string) (string, error)
	Comments(ctx context.Context, prNumber int) ([]models.Comment, error)
	ActorPermission(ctx context.Context, actor string) (aggregator.ActorPermission, error)
	IsForkHead(ctx context.Context, prNumber int) (bool, error)
}

// CLIState implements PRState by shelling out to the git and gh CLIs,
// mirroring the teacher's gitCmd/ghCmd helpers.
type CLIState struct {
	RepoDir string
	Repo    string // "owner/name", passed to `gh --repo`
}

func (s *CLIState) gitCmd(ctx context.Context, args ...string) (string, error) {
	full := append([]string{"-C", s.RepoDir}, args...)
	cmd := exec.CommandContext(ctx, "git", full...)
	var out, errOut bytes.Buffer
	cmd.Stdout, cmd.Stderr = &out, &errOut
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, errOut.String())
	}
	return strings.TrimSpace(out.String()), nil
}

func (s *CLIState) ghCmd(ctx context.Context, args ...string) (string, error) {
	full := args
	if s.Repo != "" {
		full = append([]string{args[0], "--repo", s.Repo}, args[1:]...)
	}
	cmd := exec.CommandContext(ctx, "gh", full...)
	var out, errOut bytes.Buffer
	cmd.Stdout, cmd.Stderr = &out, &errOut
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("gh %s: %w: %s", strings.Join(args, " "), err, errOut.String())
	}
	return out.String(), nil
}

// HeadSHA returns the current HEAD commit hash.
func (s *CLIState) HeadSHA(ctx context.Context) (string, error) {
	return s.gitCmd(ctx, "rev-parse", "HEAD")
}

// CommitMessage returns the full commit message for sha.
func (s *CLIState) CommitMessage(ctx context.Context, sha string) (string, error) {
	return s.gitCmd(ctx, "log", "-1", "--format=%B", sha)
}

type ghComment struct {
	Author    struct{ Login string } `json:"author"`
	Body      string                 `json:"body"`
	CreatedAt string                 `json:"createdAt"`
}

// Comments lists issue comments on the pull request.
func (s *CLIState) Comments(ctx context.Context, prNumber int) ([]models.Comment, error) {
	out, err := s.ghCmd(ctx, "pr", "view", fmt.Sprintf("%d", prNumber), "--json", "comments")
	if err != nil {
		return nil, err
	}
	var wrapper struct {
		Comments []ghComment `json:"comments"`
	}
	if err := json.Unmarshal([]byte(out), &wrapper); err != nil {
		return nil, fmt.Errorf("prstate: parsing pr comments: %w", err)
	}
	result := make([]models.Comment, 0, len(wrapper.Comments))
	for _, c := range wrapper.Comments {
		t, _ := parseGHTime(c.CreatedAt)
		result = append(result, models.Comment{Author: c.Author.Login, Body: c.Body, CreatedAt: t})
	}
	return result, nil
}

// ActorPermission resolves actor's permission level on the repository via
// the GitHub collaborator-permission API.
func (s *CLIState) ActorPermission(ctx context.Context, actor string) (aggregator.ActorPermission, error) {
	out, err := s.ghCmd(ctx, "api", fmt.Sprintf("repos/{owner}/{repo}/collaborators/%s/permission", actor), "--jq", ".permission")
	if err != nil {
		return aggregator.PermissionNone, err
	}
	switch strings.TrimSpace(out) {
	case "admin":
		return aggregator.PermissionAdmin, nil
	case "maintain":
		return aggregator.PermissionMaintain, nil
	case "write":
		return aggregator.PermissionWrite, nil
	case "read", "triage":
		return aggregator.PermissionRead, nil
	default:
		return aggregator.PermissionNone, nil
	}
}

// IsForkHead reports whether the PR's head branch lives in a fork.
func (s *CLIState) IsForkHead(ctx context.Context, prNumber int) (bool, error) {
	out, err := s.ghCmd(ctx, "pr", "view", fmt.Sprintf("%d", prNumber), "--json", "headRepositoryOwner,headRepository")
	if err != nil {
		return false, err
	}
	var wrapper struct {
		HeadRepositoryOwner struct{ Login string } `json:"headRepositoryOwner"`
	}
	if err := json.Unmarshal([]byte(out), &wrapper); err != nil {
		return false, fmt.Errorf("prstate: parsing pr head repo: %w", err)
	}
	owner := strings.SplitN(s.Repo, "/", 2)
	if len(owner) != 2 {
		return false, nil
	}
	return wrapper.HeadRepositoryOwner.Login != "" && wrapper.HeadRepositoryOwner.Login != owner[0], nil
}
