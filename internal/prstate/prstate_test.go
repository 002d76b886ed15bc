package prstate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/misty-step/cerberus/internal/aggregator"
	"github.com/misty-step/cerberus/internal/models"
)

func TestParseGHTime_Empty(t *testing.T) {
	tm, err := parseGHTime("")
	require.NoError(t, err)
	assert.True(t, tm.IsZero())
}

func TestParseGHTime_RFC3339(t *testing.T) {
	tm, err := parseGHTime("2026-01-15T10:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, 2026, tm.Year())
	assert.Equal(t, time.Month(1), tm.Month())
}

func TestParseGHTime_Malformed(t *testing.T) {
	_, err := parseGHTime("not-a-time")
	assert.Error(t, err)
}

func TestFake_ImplementsPRState(t *testing.T) {
	var _ PRState = (*Fake)(nil)
}

func TestFake_HeadSHAAndCommitMessage(t *testing.T) {
	f := &Fake{SHA: "abc123", Messages: map[string]string{"abc123": "fix: thing [triage]"}}

	sha, err := f.HeadSHA(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc123", sha)

	msg, err := f.CommitMessage(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, "fix: thing [triage]", msg)
}

func TestFake_Comments(t *testing.T) {
	comments := []models.Comment{{Author: "octocat", Body: "/cerberus override sha=abc123"}}
	f := &Fake{CommentList: comments}

	got, err := f.Comments(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, comments, got)
}

func TestFake_ActorPermissionDefaultsToNone(t *testing.T) {
	f := &Fake{Permissions: map[string]aggregator.ActorPermission{"octocat": aggregator.PermissionAdmin}}

	perm, err := f.ActorPermission(context.Background(), "octocat")
	require.NoError(t, err)
	assert.Equal(t, aggregator.PermissionAdmin, perm)

	perm, err = f.ActorPermission(context.Background(), "mallory")
	require.NoError(t, err)
	assert.Equal(t, aggregator.PermissionNone, perm)
}

func TestFake_IsForkHead(t *testing.T) {
	f := &Fake{ForkHeads: map[int]bool{42: true}}

	isFork, err := f.IsForkHead(context.Background(), 42)
	require.NoError(t, err)
	assert.True(t, isFork)

	isFork, err = f.IsForkHead(context.Background(), 7)
	require.NoError(t, err)
	assert.False(t, isFork)
}

func TestCLIState_ImplementsPRState(t *testing.T) {
	var _ PRState = (*CLIState)(nil)
}
