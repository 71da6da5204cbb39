// Command courtside is the operator console for the scoreboard server. It
// mirrors the server state, auto-fills short codes and brand colors, and
// pushes every edit straight back.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/mkraus12/courtside/internal/api"
	"github.com/mkraus12/courtside/internal/colorsample"
	"github.com/mkraus12/courtside/internal/config"
	"github.com/mkraus12/courtside/internal/controller"
	"github.com/mkraus12/courtside/internal/models"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})

	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file loaded")
	}

	app := &cli.App{
		Name:  "courtside",
		Usage: "operator console for the scoreboard server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server",
				Usage:   "scoreboard server base URL",
				EnvVars: []string{"COURTSIDE_SERVER_URL"},
			},
			&cli.StringFlag{
				Name:  "config",
				Value: "config.yaml",
				Usage: "config file path",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "log at debug level",
			},
		},
		Before: func(c *cli.Context) error {
			if !c.Bool("verbose") {
				zerolog.SetGlobalLevel(zerolog.InfoLevel)
			}
			return nil
		},
		Commands: []*cli.Command{
			statusCommand(),
			teamCommands(),
			matchCommands(),
			timerCommands(),
			transferCommands(),
			savesCommands(),
			watchCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("command failed")
	}
}

// session builds the transport and the reconciliation controller, already
// loaded from the server.
func session(c *cli.Context) (*controller.Controller, *api.Client, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, nil, err
	}
	url := cfg.Console.ServerURL
	if s := c.String("server"); s != "" {
		url = s
	}
	client := api.New(url)
	client.SetTimeout(time.Duration(cfg.Console.RequestTimeout) * time.Second)

	ctl := controller.New(client, colorsample.New())
	if err := ctl.Load(c.Context); err != nil {
		return nil, nil, fmt.Errorf("failed to load state from %s: %w", url, err)
	}
	return ctl, client, nil
}

// finish waits out detached color sampling and prints the snapshot.
func finish(ctl *controller.Controller) error {
	ctl.Wait()
	printState(ctl)
	return nil
}

func printState(ctl *controller.Controller) {
	s := ctl.Snapshot()
	fmt.Printf("%s (%s) %d : %d (%s) %s\n", s.HomeName, s.HomeShort, s.HomeScore, s.AwayScore, s.AwayShort, s.AwayName)
	fmt.Printf("  fouls %d : %d   timer %s (half %d, running %v)\n", s.HomeFouls, s.AwayFouls, s.Timer, s.Half, s.Running)
	fmt.Printf("  shorts: home %s, away %s\n", ctl.Mode(models.Home), ctl.Mode(models.Away))
	if s.PrimaryColor != "" || s.SecondaryColor != "" {
		fmt.Printf("  colors: %s / %s\n", s.PrimaryColor, s.SecondaryColor)
	}
}

func parseSide(raw string) (models.Side, error) {
	switch raw {
	case "home":
		return models.Home, nil
	case "away":
		return models.Away, nil
	default:
		return "", fmt.Errorf("side must be 'home' or 'away', got %q", raw)
	}
}

// sideAction wraps commands of the shape "<cmd> <side> [value]".
func sideAction(withValue bool, fn func(c *cli.Context, ctl *controller.Controller, side models.Side, value string) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		want := 1
		if withValue {
			want = 2
		}
		if c.NArg() < want {
			return fmt.Errorf("expected %d argument(s)", want)
		}
		side, err := parseSide(c.Args().Get(0))
		if err != nil {
			return err
		}
		ctl, _, err := session(c)
		if err != nil {
			return err
		}
		if err := fn(c, ctl, side, c.Args().Get(1)); err != nil {
			return err
		}
		return finish(ctl)
	}
}

func statusCommand() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "show the current scoreboard state",
		Action: func(c *cli.Context) error {
			ctl, _, err := session(c)
			if err != nil {
				return err
			}
			return finish(ctl)
		},
	}
}

func teamCommands() *cli.Command {
	return &cli.Command{
		Name:  "team",
		Usage: "edit team identity and visuals",
		Subcommands: []*cli.Command{
			{
				Name:      "name",
				Usage:     "set a team name (re-derives an auto short code)",
				ArgsUsage: "SIDE NAME",
				Action: sideAction(true, func(c *cli.Context, ctl *controller.Controller, side models.Side, value string) error {
					return ctl.SetName(c.Context, side, value)
				}),
			},
			{
				Name:      "short",
				Usage:     "override the short code; an empty value returns it to auto",
				ArgsUsage: "SIDE [CODE]",
				Action: sideAction(false, func(c *cli.Context, ctl *controller.Controller, side models.Side, value string) error {
					return ctl.SetShort(c.Context, side, c.Args().Get(1))
				}),
			},
			{
				Name:      "logo",
				Usage:     "set a logo URL (samples a brand color from it)",
				ArgsUsage: "SIDE URL",
				Action: sideAction(true, func(c *cli.Context, ctl *controller.Controller, side models.Side, value string) error {
					return ctl.SetLogo(c.Context, side, value)
				}),
			},
			{
				Name:      "color",
				Usage:     "set a brand color explicitly",
				ArgsUsage: "SIDE #RRGGBB",
				Action: sideAction(true, func(c *cli.Context, ctl *controller.Controller, side models.Side, value string) error {
					return ctl.SetBrandColor(c.Context, side, value)
				}),
			},
		},
	}
}

func matchCommands() *cli.Command {
	return &cli.Command{
		Name:  "match",
		Usage: "score, fouls and match settings",
		Subcommands: []*cli.Command{
			{
				Name:      "goal",
				Usage:     "add a goal",
				ArgsUsage: "SIDE",
				Action: sideAction(false, func(c *cli.Context, ctl *controller.Controller, side models.Side, _ string) error {
					return ctl.AddGoal(c.Context, side)
				}),
			},
			{
				Name:      "undo-goal",
				Usage:     "remove a goal",
				ArgsUsage: "SIDE",
				Action: sideAction(false, func(c *cli.Context, ctl *controller.Controller, side models.Side, _ string) error {
					return ctl.RemoveGoal(c.Context, side)
				}),
			},
			{
				Name:  "reset-scores",
				Usage: "zero both scores",
				Action: func(c *cli.Context) error {
					ctl, _, err := session(c)
					if err != nil {
						return err
					}
					if err := ctl.ResetScores(c.Context); err != nil {
						return err
					}
					return finish(ctl)
				},
			},
			{
				Name:      "foul",
				Usage:     "add a foul (capped at 5)",
				ArgsUsage: "SIDE",
				Action: sideAction(false, func(c *cli.Context, ctl *controller.Controller, side models.Side, _ string) error {
					return ctl.AddFoul(c.Context, side)
				}),
			},
			{
				Name:      "undo-foul",
				Usage:     "remove a foul",
				ArgsUsage: "SIDE",
				Action: sideAction(false, func(c *cli.Context, ctl *controller.Controller, side models.Side, _ string) error {
					return ctl.RemoveFoul(c.Context, side)
				}),
			},
			{
				Name:      "theme",
				Usage:     "switch the overlay theme",
				ArgsUsage: "THEME",
				Action: func(c *cli.Context) error {
					ctl, _, err := session(c)
					if err != nil {
						return err
					}
					if err := ctl.SetTheme(c.Context, c.Args().First()); err != nil {
						return err
					}
					return finish(ctl)
				},
			},
			{
				Name:      "half-length",
				Usage:     "set the half length in minutes",
				ArgsUsage: "MINUTES",
				Action: func(c *cli.Context) error {
					ctl, _, err := session(c)
					if err != nil {
						return err
					}
					if err := ctl.SetHalfLength(c.Context, c.Args().First()); err != nil {
						return err
					}
					return finish(ctl)
				},
			},
			{
				Name:  "qr",
				Usage: "set the QR display cadence",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "every", Usage: "minutes between appearances"},
					&cli.StringFlag{Name: "duration", Usage: "seconds on screen"},
				},
				Action: func(c *cli.Context) error {
					ctl, _, err := session(c)
					if err != nil {
						return err
					}
					if v := c.String("every"); v != "" {
						if err := ctl.SetQREvery(c.Context, v); err != nil {
							return err
						}
					}
					if v := c.String("duration"); v != "" {
						if err := ctl.SetQRDuration(c.Context, v); err != nil {
							return err
						}
					}
					return finish(ctl)
				},
			},
		},
	}
}

func timerCommands() *cli.Command {
	simple := func(action api.TimerAction) cli.ActionFunc {
		return func(c *cli.Context) error {
			_, client, err := session(c)
			if err != nil {
				return err
			}
			return client.Timer(c.Context, action)
		}
	}
	return &cli.Command{
		Name:  "timer",
		Usage: "control the match clock",
		Subcommands: []*cli.Command{
			{Name: "start", Usage: "start or resume the clock", Action: simple(api.TimerStart)},
			{Name: "pause", Usage: "pause the clock", Action: simple(api.TimerPause)},
			{Name: "reset", Usage: "back to 00:00, first half", Action: simple(api.TimerReset)},
			{
				Name:  "second-half",
				Usage: "swap sides and start the second half",
				Action: func(c *cli.Context) error {
					ctl, _, err := session(c)
					if err != nil {
						return err
					}
					if err := ctl.SecondHalf(c.Context); err != nil {
						return err
					}
					return finish(ctl)
				},
			},
			{
				Name:  "swap",
				Usage: "swap the displayed sides",
				Action: func(c *cli.Context) error {
					ctl, _, err := session(c)
					if err != nil {
						return err
					}
					if err := ctl.Swap(c.Context); err != nil {
						return err
					}
					return finish(ctl)
				},
			},
		},
	}
}

func transferCommands() *cli.Command {
	return &cli.Command{
		Name:  "state",
		Usage: "move snapshots in and out",
		Subcommands: []*cli.Command{
			{
				Name:  "export",
				Usage: "download the snapshot to a file",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output path (default: timestamped name)"},
				},
				Action: func(c *cli.Context) error {
					_, client, err := session(c)
					if err != nil {
						return err
					}
					payload, err := client.Export(c.Context)
					if err != nil {
						return err
					}
					out := c.String("out")
					if out == "" {
						out = api.ExportFilename(time.Now())
					}
					if err := os.WriteFile(out, payload, 0o644); err != nil {
						return fmt.Errorf("failed to write %s: %w", out, err)
					}
					fmt.Println(out)
					return nil
				},
			},
			{
				Name:      "import",
				Usage:     "upload a snapshot file and reload",
				ArgsUsage: "FILE",
				Action: func(c *cli.Context) error {
					path := c.Args().First()
					if path == "" {
						return fmt.Errorf("expected a file argument")
					}
					f, err := os.Open(path)
					if err != nil {
						return err
					}
					defer f.Close()
					ctl, _, err := session(c)
					if err != nil {
						return err
					}
					if err := ctl.ImportFile(c.Context, f.Name(), f); err != nil {
						return err
					}
					return finish(ctl)
				},
			},
		},
	}
}

func savesCommands() *cli.Command {
	return &cli.Command{
		Name:  "saves",
		Usage: "named snapshot slots on the server",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list slots, newest first",
				Action: func(c *cli.Context) error {
					_, client, err := session(c)
					if err != nil {
						return err
					}
					names, err := client.ListSaves(c.Context)
					if err != nil {
						return err
					}
					for _, name := range names {
						fmt.Println(name)
					}
					return nil
				},
			},
			{
				Name:      "store",
				Usage:     "save the current state to a slot",
				ArgsUsage: "[NAME]",
				Action: func(c *cli.Context) error {
					_, client, err := session(c)
					if err != nil {
						return err
					}
					return client.SaveSlot(c.Context, c.Args().First())
				},
			},
			{
				Name:      "load",
				Usage:     "restore a slot and reload",
				ArgsUsage: "NAME",
				Action: func(c *cli.Context) error {
					name := c.Args().First()
					if name == "" {
						return fmt.Errorf("expected a slot name")
					}
					ctl, _, err := session(c)
					if err != nil {
						return err
					}
					if err := ctl.LoadSlot(c.Context, name); err != nil {
						return err
					}
					return finish(ctl)
				},
			},
		},
	}
}

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "follow the live state stream",
		Action: func(c *cli.Context) error {
			cfg, err := config.Load(c.String("config"))
			if err != nil {
				return err
			}
			url := cfg.Console.ServerURL
			if s := c.String("server"); s != "" {
				url = s
			}
			client := api.New(url)
			log.Info().Str("server", url).Msg("following state stream, ctrl-c to stop")
			return client.Stream(c.Context, func(s models.Scoreboard) {
				fmt.Printf("%s %s %d:%d %s  fouls %d:%d  half %d\n",
					s.Timer, s.HomeShort, s.HomeScore, s.AwayScore, s.AwayShort,
					s.HomeFouls, s.AwayFouls, s.Half)
			})
		},
	}
}
