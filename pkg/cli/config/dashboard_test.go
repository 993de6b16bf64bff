package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/secmon-lab/copilot-dash/pkg/cli/config"
)

func writeAgentsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "agents.toml")
	gt.NoError(t, os.WriteFile(path, []byte(content), 0600)).Required()
	return path
}

func TestLoadAgents(t *testing.T) {
	t.Run("valid registry", func(t *testing.T) {
		path := writeAgentsFile(t, `
[[agent]]
tag = "refactor-bot"
name = "Refactor Bot"

[[agent]]
tag = "doc-writer"
name = "Doc Writer"
`)
		cfg := config.NewDashboardForTest(300, 10*time.Second, path)

		names, err := cfg.LoadAgents()
		gt.NoError(t, err).Required()
		gt.Value(t, len(names)).Equal(2)
		gt.Value(t, names["refactor-bot"]).Equal("Refactor Bot")
		gt.Value(t, names["doc-writer"]).Equal("Doc Writer")
	})

	t.Run("no file configured yields empty map", func(t *testing.T) {
		cfg := config.NewDashboardForTest(300, 10*time.Second, "")

		names, err := cfg.LoadAgents()
		gt.NoError(t, err)
		gt.Value(t, len(names)).Equal(0)
	})

	t.Run("missing file", func(t *testing.T) {
		cfg := config.NewDashboardForTest(300, 10*time.Second, "/nonexistent/agents.toml")

		_, err := cfg.LoadAgents()
		gt.Value(t, err).NotNil()
	})

	t.Run("duplicate tag rejected", func(t *testing.T) {
		path := writeAgentsFile(t, `
[[agent]]
tag = "refactor-bot"
name = "Refactor Bot"

[[agent]]
tag = "refactor-bot"
name = "Other Name"
`)
		cfg := config.NewDashboardForTest(300, 10*time.Second, path)

		_, err := cfg.LoadAgents()
		gt.Value(t, err).NotNil()
	})

	t.Run("missing name rejected", func(t *testing.T) {
		path := writeAgentsFile(t, `
[[agent]]
tag = "refactor-bot"
`)
		cfg := config.NewDashboardForTest(300, 10*time.Second, path)

		_, err := cfg.LoadAgents()
		gt.Value(t, err).NotNil()
	})

	t.Run("malformed TOML rejected", func(t *testing.T) {
		path := writeAgentsFile(t, `[[agent]`)
		cfg := config.NewDashboardForTest(300, 10*time.Second, path)

		_, err := cfg.LoadAgents()
		gt.Value(t, err).NotNil()
	})
}

func TestDashboardDurations(t *testing.T) {
	cfg := config.NewDashboardForTest(300, 10*time.Second, "")
	gt.Value(t, cfg.CacheTTL()).Equal(5 * time.Minute)
	gt.Value(t, cfg.Cooldown()).Equal(10 * time.Second)
}

func TestGitHubConfig(t *testing.T) {
	t.Run("returns flags", func(t *testing.T) {
		cfg := config.NewGitHubForTest("", "", "", "")
		gt.Value(t, len(cfg.Flags())).Equal(4)
	})

	t.Run("accessors", func(t *testing.T) {
		cfg := config.NewGitHubForTest("", "acme", "token", "app/copilot-swe-agent")
		gt.Value(t, cfg.Org()).Equal("acme")
		gt.Value(t, cfg.Author()).Equal("app/copilot-swe-agent")
	})

	t.Run("token is hidden from log attributes", func(t *testing.T) {
		cfg := config.NewGitHubForTest("https://ghe.example.com/api/v3", "acme", "super-secret", "app/copilot-swe-agent")
		for _, attr := range cfg.LogAttrs() {
			gt.Value(t, attr.Value.String()).NotEqual("super-secret")
		}
	})
}
