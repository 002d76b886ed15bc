package qualityreport

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/misty-step/cerberus/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")

	s, err := Open(context.Background(), dbPath)
	require.NoError(t, err)

	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpen_CreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "subdir", "test.db")

	s, err := Open(context.Background(), dbPath)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	_, err = os.Stat(filepath.Join(dir, "subdir"))
	assert.NoError(t, err, "should create parent directory")
}

func TestMigrate_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.migrate(ctx)
	assert.NoError(t, err)
}

func TestRecordAndForPR(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	cv := models.CerberusVerdict{
		RunID:   "run-1",
		Verdict: models.VerdictWarn,
		Summary: "one reviewer warned",
		Reviewers: []models.ReviewerVerdict{
			{Reviewer: "apollo", Verdict: models.VerdictPass},
			{Reviewer: "trace", Verdict: models.VerdictWarn},
			{Reviewer: "ghost", Verdict: models.VerdictSkip},
		},
		GeneratedAt: time.Now().UTC().Truncate(time.Second),
	}

	err := s.Record(ctx, 42, "deadbeef", cv)
	require.NoError(t, err)

	entries, err := s.ForPR(ctx, 42)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	got := entries[0]
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, 42, got.PRNumber)
	assert.Equal(t, "deadbeef", got.SHA)
	assert.Equal(t, models.VerdictWarn, got.Verdict)
	assert.Equal(t, 3, got.ReviewerCount)
	assert.Equal(t, 0, got.FailCount)
	assert.Equal(t, 1, got.WarnCount)
	assert.Equal(t, 1, got.SkipCount)
}

func TestForPR_OrdersMostRecentFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	older := models.CerberusVerdict{Verdict: models.VerdictPass, GeneratedAt: time.Now().Add(-time.Hour).UTC()}
	newer := models.CerberusVerdict{Verdict: models.VerdictFail, GeneratedAt: time.Now().UTC()}

	require.NoError(t, s.Record(ctx, 7, "sha-old", older))
	require.NoError(t, s.Record(ctx, 7, "sha-new", newer))

	entries, err := s.ForPR(ctx, 7)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "sha-new", entries[0].SHA)
	assert.Equal(t, "sha-old", entries[1].SHA)
}

func TestForPR_NoEntries(t *testing.T) {
	s := newTestStore(t)
	entries, err := s.ForPR(context.Background(), 999)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
