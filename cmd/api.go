package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/employeepulse/internal/api"
)

// APICommand returns the CLI command for starting the API server
func APICommand() *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Start the Employee Pulse API server",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port for the API server (overrides server.port)",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			if c.IsSet("port") {
				cfg.Server.Port = c.Int("port")
			}

			svc, err := buildServices(c.Context, cfg)
			if err != nil {
				return err
			}
			defer svc.close()

			server := api.NewServer(cfg.Server.Port, cfg.Server.CORSOrigins, api.Deps{
				Provider:  svc.provider,
				Dashboard: svc.dashboard,
				Metrics:   svc.metrics,
				Insights:  svc.insights,
				Analyzer:  svc.llm,
			})
			return server.Start(c.Context)
		},
	}
}
