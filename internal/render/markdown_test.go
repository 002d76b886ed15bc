package render

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/misty-step/cerberus/internal/models"
)

func TestSeverityIcon_KnownAndUnknown(t *testing.T) {
	assert.Equal(t, "🔴", SeverityIcon(models.SeverityCritical))
	assert.Equal(t, "🔵", SeverityIcon(models.SeverityInfo))
	assert.Equal(t, "⚪", SeverityIcon(models.Severity("bogus")))
}

func TestVerdictIcon_KnownAndUnknown(t *testing.T) {
	assert.Equal(t, "✅", VerdictIcon(models.VerdictPass))
	assert.Equal(t, "❌", VerdictIcon(models.VerdictFail))
	assert.Equal(t, "❔", VerdictIcon(models.Verdict("bogus")))
}

func TestLoadRepoContext_ReadsEnvWithDefaultServerURL(t *testing.T) {
	t.Setenv("GITHUB_SERVER_URL", "")
	t.Setenv("GITHUB_REPOSITORY", "acme/widgets")
	t.Setenv("GH_HEAD_SHA", "deadbeef")

	rc := LoadRepoContext()
	assert.Equal(t, "https://github.com", rc.ServerURL)
	assert.Equal(t, "acme/widgets", rc.Repo)
	assert.Equal(t, "deadbeef", rc.SHA)
}

func TestBlobURL_WithLine(t *testing.T) {
	rc := RepoContext{ServerURL: "https://github.com", Repo: "acme/widgets", SHA: "deadbeef"}
	assert.Equal(t, "https://github.com/acme/widgets/blob/deadbeef/main.go#L10", rc.BlobURL("main.go", 10))
}

func TestBlobURL_WithoutLine(t *testing.T) {
	rc := RepoContext{ServerURL: "https://github.com", Repo: "acme/widgets", SHA: "deadbeef"}
	assert.Equal(t, "https://github.com/acme/widgets/blob/deadbeef/main.go", rc.BlobURL("main.go", 0))
}

func TestBlobURL_EmptyWithoutContext(t *testing.T) {
	rc := RepoContext{}
	assert.Empty(t, rc.BlobURL("main.go", 10))
}

func TestLocationLabel(t *testing.T) {
	assert.Equal(t, "N/A", LocationLabel("", 0))
	assert.Equal(t, "main.go", LocationLabel("main.go", 0))
	assert.Equal(t, "main.go:10", LocationLabel("main.go", 10))
}

func TestLocationLink_WithoutRepoContextFallsBackToPlainCode(t *testing.T) {
	link := LocationLink(RepoContext{}, "main.go", 10)
	assert.Equal(t, "`main.go:10`", link)
}

func TestLocationLink_WithRepoContextIsAnchorLink(t *testing.T) {
	rc := RepoContext{ServerURL: "https://github.com", Repo: "acme/widgets", SHA: "deadbeef"}
	link := LocationLink(rc, "main.go", 10)
	assert.Equal(t, "[`main.go:10`](https://github.com/acme/widgets/blob/deadbeef/main.go#L10)", link)
}

func TestLocationLink_NoFileIsPlainNA(t *testing.T) {
	assert.Equal(t, "`N/A`", LocationLink(RepoContext{}, "", 0))
}

func TestDetailsBlock_WrapsSummaryAndBody(t *testing.T) {
	block := DetailsBlock("my summary", "my body")
	assert.Contains(t, block, "<summary>my summary</summary>")
	assert.Contains(t, block, "my body")
	assert.Contains(t, block, "</details>")
}
