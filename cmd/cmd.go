// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// tuiCommand returns the top-level TUI command for the interactive form.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive download form",
		Action:  r.TUI,
	}
}

// getCommand runs one download without the form
func getCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Download a song and push it to the device",
		ArgsUsage: "<song name>",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "query"},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Local folder to download into (default: output.local_dir)",
			},
			&cli.StringFlag{
				Name:    "device-dir",
				Aliases: []string{"d"},
				Usage:   "Folder on the device (default: output.device_dir)",
			},
			&cli.BoolFlag{
				Name:  "open",
				Usage: "Open the output folder when done",
			},
		},
		Action: r.Get,
	}
}

// similarCommand prints suggestions only
func similarCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "similar",
		Usage:     "Suggest songs similar to a query",
		ArgsUsage: "<song name>",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "query"},
		},
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "count",
				Aliases: []string{"n"},
				Usage:   "Number of suggestions",
				Value:   2,
			},
			&cli.StringFlag{
				Name:    "provider",
				Aliases: []string{"p"},
				Usage:   "Suggestion provider: openai, lastfm, search or none (default: suggest.provider)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Similar,
	}
}

// deviceCommand handles adb operations
func deviceCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "device",
		Aliases: []string{"adb"},
		Usage:   "Android device operations",
		Commands: []*cli.Command{
			{
				Name:  "status",
				Usage: "List attached devices and the one transfers will use",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.DeviceStatus,
			},
			{
				Name:      "push",
				Usage:     "Push a local file to the device and rescan media",
				ArgsUsage: "<file>",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "file"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "device-dir",
						Aliases: []string{"d"},
						Usage:   "Folder on the device (default: output.device_dir)",
					},
				},
				Action: r.DevicePush,
			},
		},
	}
}

// historyCommand lists and prunes previous downloads
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show previous downloads",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Maximum number of downloads to show",
				Value:   20,
			},
			&cli.StringFlag{
				Name:  "status",
				Usage: "Filter by status (completed or failed)",
			},
			&cli.StringFlag{
				Name:    "query",
				Aliases: []string{"q"},
				Usage:   "Filter by song name substring",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, csv, markdown or json",
				Value:   "text",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON (same as --format json)",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the export to a file instead of stdout",
			},
		},
		Action: r.History,
		Commands: []*cli.Command{
			{
				Name:      "rm",
				Aliases:   []string{"delete"},
				Usage:     "Remove a download from history",
				ArgsUsage: "<id>",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.HistoryRemove,
			},
		},
	}
}

// setupCommand writes the config file and prepares the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Create config.toml, run database migrations and check external tools",
		Action: r.Setup,
	}
}
