package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/secmon-lab/copilot-dash/pkg/service/github"
)

// GitHub holds configuration for the GitHub API integration
type GitHub struct {
	baseURL string
	org     string
	token   string
	author  string
}

// Flags returns CLI flags for GitHub configuration
func (g *GitHub) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "github-base-url",
			Usage:       "GitHub API base URL (empty for github.com, e.g. https://ghe.example.com/api/v3 for Enterprise)",
			Sources:     cli.EnvVars("COPILOT_DASH_GITHUB_BASE_URL"),
			Destination: &g.baseURL,
		},
		&cli.StringFlag{
			Name:        "github-org",
			Usage:       "GitHub organization to watch",
			Required:    true,
			Sources:     cli.EnvVars("COPILOT_DASH_GITHUB_ORG"),
			Destination: &g.org,
		},
		&cli.StringFlag{
			Name:        "github-token",
			Usage:       "GitHub bearer token (needs Copilot billing read scope)",
			Required:    true,
			Sources:     cli.EnvVars("COPILOT_DASH_GITHUB_TOKEN"),
			Destination: &g.token,
		},
		&cli.StringFlag{
			Name:        "tracked-author",
			Usage:       "Author filter for the PR search query",
			Value:       "app/copilot-swe-agent",
			Sources:     cli.EnvVars("COPILOT_DASH_TRACKED_AUTHOR"),
			Destination: &g.author,
		},
	}
}

// LogAttrs returns log attributes for the GitHub configuration (token hidden)
func (g *GitHub) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("base_url", g.baseURL),
		slog.String("org", g.org),
		slog.String("tracked_author", g.author),
	}
}

// Org returns the configured organization
func (g *GitHub) Org() string {
	return g.org
}

// Author returns the tracked-author filter
func (g *GitHub) Author() string {
	return g.author
}

// Configure creates the GitHub service from the configured flags
func (g *GitHub) Configure() (github.Service, error) {
	svc, err := github.New(g.baseURL, g.token)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create GitHub service")
	}
	return svc, nil
}
