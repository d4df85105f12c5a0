package main

import (
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/shunt-sh/shunt/config"
	"github.com/shunt-sh/shunt/supervisor"
)

func main() {
	app := &cli.App{
		Name:      "shunt",
		Usage:     "run several long-lived commands side by side from one terminal",
		ArgsUsage: "[config file]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level for shunt's own diagnostics. One of [debug,info,warn,error].",
				Value: "warn",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "Disable colored output prefixes.",
			},
		},
		Action: func(ctx *cli.Context) error {
			if ctx.Args().Len() > 1 {
				return fmt.Errorf("expected at most one configuration file, got %d arguments", ctx.Args().Len())
			}

			path := ctx.Args().First()
			if path == "" {
				wd, err := os.Getwd()
				if err != nil {
					return fmt.Errorf("getting working directory: %w", err)
				}
				path, err = config.FindFile(wd)
				if err != nil {
					return err
				}
			}

			cfg, err := config.Load(path)
			if err != nil {
				return err
			}

			// Everything should happen relative to the config dir.
			if err := os.Chdir(cfg.Dir); err != nil {
				return fmt.Errorf("entering config directory %q: %w", cfg.Dir, err)
			}

			level, err := zapcore.ParseLevel(ctx.String("log-level"))
			if err != nil {
				return fmt.Errorf("parsing log level: %w", err)
			}
			logCfg := zap.NewDevelopmentConfig()
			logCfg.Level = zap.NewAtomicLevelAt(level)
			logger, err := logCfg.Build()
			if err != nil {
				return fmt.Errorf("building logger: %w", err)
			}
			defer logger.Sync()

			opts := []supervisor.Option{supervisor.WithLogger(logger)}
			if ctx.Bool("no-color") {
				opts = append(opts, supervisor.WithColor(false))
			}

			sup, err := supervisor.New(opts...)
			if err != nil {
				return fmt.Errorf("building supervisor: %w", err)
			}
			return sup.Run(cfg.Commands)
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
