package config

import "time"

// NewDashboardForTest creates a Dashboard config for testing purposes
func NewDashboardForTest(cacheTTLSeconds int, cooldown time.Duration, agentsFile string) *Dashboard {
	return &Dashboard{
		cacheTTLSeconds: cacheTTLSeconds,
		cooldown:        cooldown,
		agentsFile:      agentsFile,
	}
}

// NewGitHubForTest creates a GitHub config for testing purposes
func NewGitHubForTest(baseURL, org, token, author string) *GitHub {
	return &GitHub{
		baseURL: baseURL,
		org:     org,
		token:   token,
		author:  author,
	}
}
