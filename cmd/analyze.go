package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/employeepulse/internal/llm"
	"github.com/employeepulse/pkg/models"
)

// AnalyzeCommand scores a JSON array of messages from a file and prints the
// AnalysisSummary.
func AnalyzeCommand() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "Analyze sentiment and burnout risk for a JSON array of messages",
		ArgsUsage: "<messages.json>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "heuristic",
				Usage: "Skip the language model and use the offline scorer",
			},
		},
		Action: runAnalyze,
	}
}

func runAnalyze(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one messages file")
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(c.Args().First())
	if err != nil {
		return fmt.Errorf("failed to read messages: %w", err)
	}
	var messages []models.Message
	if err := json.Unmarshal(data, &messages); err != nil {
		return fmt.Errorf("failed to parse messages: %w", err)
	}

	client := llm.New(nil, llm.Options{})
	if !c.Bool("heuristic") {
		if client, err = llm.NewFromConfig(cfg.LLM); err != nil {
			return fmt.Errorf("failed to create LLM client: %w", err)
		}
	}

	summary := client.Analyze(c.Context, messages)
	out, err := json.MarshalIndent(summary.Rounded(), "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, string(out))
	return nil
}
