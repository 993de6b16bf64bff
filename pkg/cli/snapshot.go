package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/secmon-lab/copilot-dash/pkg/cli/config"
	"github.com/secmon-lab/copilot-dash/pkg/domain/model"
	"github.com/secmon-lab/copilot-dash/pkg/usecase"
)

func cmdSnapshot() *cli.Command {
	var githubCfg config.GitHub
	var dashCfg config.Dashboard
	var asJSON bool

	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:        "json",
			Usage:       "Print the full snapshot as JSON",
			Destination: &asJSON,
		},
	}
	flags = append(flags, githubCfg.Flags()...)
	flags = append(flags, dashCfg.Flags()...)

	return &cli.Command{
		Name:  "snapshot",
		Usage: "Run the fetch and aggregation pipeline once and print the result",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ghSvc, err := githubCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to configure GitHub service")
			}

			agentNames, err := dashCfg.LoadAgents()
			if err != nil {
				return goerr.Wrap(err, "failed to load agents config")
			}

			uc := usecase.New(ghSvc, githubCfg.Org(),
				usecase.WithAuthorFilter(githubCfg.Author()),
				usecase.WithAgentNames(agentNames),
			)

			data, err := uc.FetchDashboardData(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to build snapshot")
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(data)
			}

			printSnapshot(data)
			return nil
		},
	}
}

func printSnapshot(data *model.DashboardData) {
	title := color.New(color.FgCyan, color.Bold)
	label := color.New(color.FgWhite)
	value := color.New(color.FgGreen, color.Bold)

	title.Printf("Copilot dashboard (%s)\n\n", data.Metadata.LastUpdated)

	seats := data.SeatsStats
	title.Println("Seats")
	label.Printf("  total: ")
	value.Printf("%d\n", seats.TotalSeats)
	label.Printf("  with activity: ")
	value.Printf("%d (%.1f%%)\n", seats.WithActivity, seats.AdoptionRate)
	label.Printf("  active last 7d: ")
	value.Printf("%d (%.1f%%)\n", seats.Active7d, seats.ActiveRate7d)

	prs := data.PRStats
	title.Println("\nPull requests")
	label.Printf("  total: ")
	value.Printf("%d\n", prs.Total)
	label.Printf("  open / merged / rejected: ")
	value.Printf("%d / %d / %d\n", prs.Open, prs.Merged, prs.Rejected)
	label.Printf("  merge rate: ")
	value.Printf("%.1f%%\n", prs.MergeRate)

	if len(prs.TopAgents) > 0 {
		title.Println("\nTop agents")
		for _, item := range prs.TopAgents {
			fmt.Printf("  %-30s %d\n", item.Name, item.Count)
		}
	}
	if len(prs.TopRepositories) > 0 {
		title.Println("\nTop repositories")
		for _, item := range prs.TopRepositories {
			fmt.Printf("  %-30s %d\n", item.Name, item.Count)
		}
	}
}
