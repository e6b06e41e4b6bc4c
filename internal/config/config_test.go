package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TRACKER_BACKEND", "")
	t.Setenv("SAVE_DEBOUNCE", "")
	t.Setenv("DATA_FILE", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, BackendFile, cfg.Backend)
	assert.Equal(t, "inventory.json", cfg.DataFile)
	assert.Equal(t, 1500*time.Millisecond, cfg.SaveDebounce)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORSOrigins)
}

func TestLoad_GitHubRequiresCredentials(t *testing.T) {
	t.Setenv("TRACKER_BACKEND", "github")
	t.Setenv("GITHUB_TOKEN", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GITHUB_TOKEN")

	t.Setenv("GITHUB_TOKEN", "ghp_x")
	t.Setenv("GITHUB_OWNER", "acme")
	t.Setenv("GITHUB_REPO", "books")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "main", cfg.GitHubBranch)
}

func TestLoad_RejectsBadValues(t *testing.T) {
	t.Setenv("TRACKER_BACKEND", "s3")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("TRACKER_BACKEND", "memory")
	t.Setenv("DATA_FILE", "inventory.yaml")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("DATA_FILE", "inventory.json")
	t.Setenv("SAVE_DEBOUNCE", "soon")
	_, err = Load()
	assert.Error(t, err)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList(" a, ,b "))
	assert.Nil(t, splitList(""))
}

func TestGetGitHubConfig(t *testing.T) {
	cfg := &Config{
		GitHubToken:      "t",
		GitHubOwner:      "acme",
		GitHubRepo:       "books",
		GitHubBranch:     "data",
		DataDir:          "ledger",
		CommitAuthorName: "Bot",
	}
	gh := cfg.GetGitHubConfig()
	assert.Equal(t, "acme", gh.Owner)
	assert.Equal(t, "books", gh.Repo)
	assert.Equal(t, "data", gh.Branch)
	assert.Equal(t, "ledger", gh.Dir)
	assert.Equal(t, "Bot", gh.CommitName)
}

func TestStoreOptions(t *testing.T) {
	cfg := &Config{SaveDebounce: time.Second}
	assert.Len(t, cfg.StoreOptions(), 1)
}
