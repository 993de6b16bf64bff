package config

import (
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
)

// Dashboard holds aggregation and delivery tuning
type Dashboard struct {
	cacheTTLSeconds int
	cooldown        time.Duration
	agentsFile      string
}

// Flags returns CLI flags for dashboard configuration
func (d *Dashboard) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:        "cache-ttl",
			Usage:       "Default cache TTL in seconds",
			Value:       300,
			Sources:     cli.EnvVars("COPILOT_DASH_CACHE_TTL"),
			Destination: &d.cacheTTLSeconds,
		},
		&cli.DurationFlag{
			Name:        "refresh-cooldown",
			Usage:       "Per-subscriber cooldown between manual refreshes",
			Value:       10 * time.Second,
			Sources:     cli.EnvVars("COPILOT_DASH_REFRESH_COOLDOWN"),
			Destination: &d.cooldown,
		},
		&cli.StringFlag{
			Name:        "agents-config",
			Usage:       "TOML file declaring custom agent display names",
			Sources:     cli.EnvVars("COPILOT_DASH_AGENTS_CONFIG"),
			Destination: &d.agentsFile,
		},
	}
}

// CacheTTL returns the default cache TTL
func (d *Dashboard) CacheTTL() time.Duration {
	return time.Duration(d.cacheTTLSeconds) * time.Second
}

// Cooldown returns the manual refresh cooldown window
func (d *Dashboard) Cooldown() time.Duration {
	return d.cooldown
}

// AgentsConfig is the agents registry file layout
type AgentsConfig struct {
	Agents []Agent `toml:"agent"`
}

// Agent declares one known custom agent tag and its display name
type Agent struct {
	Tag  string `toml:"tag"`
	Name string `toml:"name"`
}

// Validate checks if the Agent is valid
func (a *Agent) Validate() error {
	if a.Tag == "" {
		return goerr.New("agent tag is required")
	}
	if a.Name == "" {
		return goerr.New("agent name is required", goerr.V("tag", a.Tag))
	}
	return nil
}

// Validate checks if the AgentsConfig is valid
func (c *AgentsConfig) Validate() error {
	seen := make(map[string]bool)
	for _, agent := range c.Agents {
		if err := agent.Validate(); err != nil {
			return goerr.Wrap(err, "invalid agent")
		}
		if seen[agent.Tag] {
			return goerr.New("duplicate agent tag", goerr.V("tag", agent.Tag))
		}
		seen[agent.Tag] = true
	}
	return nil
}

// LoadAgents loads the agents registry from the configured TOML file and
// returns the tag → display name mapping. Returns an empty map when no
// file is configured.
func (d *Dashboard) LoadAgents() (map[string]string, error) {
	names := make(map[string]string)
	if d.agentsFile == "" {
		return names, nil
	}

	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(d.agentsFile)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read agents config", goerr.V("path", d.agentsFile))
	}

	var cfg AgentsConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, goerr.Wrap(err, "failed to parse agents config", goerr.V("path", d.agentsFile))
	}
	if err := cfg.Validate(); err != nil {
		return nil, goerr.Wrap(err, "agents config validation failed", goerr.V("path", d.agentsFile))
	}

	for _, agent := range cfg.Agents {
		names[agent.Tag] = agent.Name
	}
	return names, nil
}
