package main

import "github.com/urfave/cli/v2"

func (s *srv) loadApp() {
	app := cli.NewApp()
	app.Action = cli.ShowAppHelp
	app.Name = "Rondo Mundi"
	app.Usage = ""
	app.Commands = []*cli.Command{
		{
			Action:      s.startApi,
			Name:        "api",
			Usage:       "Start the lottery api",
			Category:    "Api",
			Description: `Starts the HTTP api serving lottery creation, ticket purchase, close, draw and audit routes.`,
		},
		{
			Action:      s.migrate,
			Name:        "migrate",
			Usage:       "Migrate the database schema",
			Category:    "Database",
			Description: `Creates or updates the lottery, ticket and audit event tables.`,
		},
	}

	s.app = app
}
