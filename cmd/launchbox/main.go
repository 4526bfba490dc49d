package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fxnlabs/launchbox/internal/app"
	"github.com/fxnlabs/launchbox/internal/config"
	"github.com/fxnlabs/launchbox/pkg/launch"
	"github.com/urfave/cli/v2"
	"go.uber.org/fx"
	"go.uber.org/multierr"
)

// version is set at link time.
var version = "dev"

// env is filled by the app's Before hook and shared by every command.
type env struct {
	cfg   *config.Config
	c     app.Components
	fxApp *fx.App
}

func archFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "arch",
		Aliases: []string{"a"},
		Usage:   "Resolve for architecture `ARCH` (sm_75, 7.5 or 75)",
		EnvVars: []string{"LAUNCHBOX_ARCH"},
	}
}

func newApp(stdout, stderr io.Writer) *cli.App {
	e := &env{}
	return &cli.App{
		Name:      "launchbox",
		Usage:     "Resolve per-architecture GPU kernel launch params at build time",
		Version:   version,
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Load configuration from `FILE`",
				EnvVars: []string{"LAUNCHBOX_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "verbosity",
				Usage: "Log `LEVEL`, overrides logger.verbosity",
			},
		},
		Before: func(c *cli.Context) error {
			cfg, err := loadConfig(c.String("config"))
			if err != nil {
				return err
			}
			if c.IsSet("verbosity") {
				cfg.Logger.Verbosity = c.String("verbosity")
			}
			e.cfg = cfg

			fxApp := app.New(cfg, &e.c)
			if err := fxApp.Err(); err != nil {
				return err
			}
			if err := fxApp.Start(c.Context); err != nil {
				return err
			}
			e.fxApp = fxApp
			return nil
		},
		After: func(c *cli.Context) error {
			if e.fxApp == nil {
				return nil
			}
			return e.fxApp.Stop(context.Background())
		},
		Commands: []*cli.Command{
			resolveCommand(e),
			checkCommand(e),
			generateCommand(e),
			targetsCommand(),
			initCommand(),
			versionCommand(),
		},
	}
}

// loadConfig reads path, or launchbox.yaml in the working directory when it
// exists, or falls back to the defaults.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadConfig(path)
	}
	if _, err := os.Stat(config.DefaultConfigFile); err == nil {
		return config.LoadConfig(config.DefaultConfigFile)
	}
	return config.Default(), nil
}

// activeTarget returns the --arch value, or build.arch from the config.
func (e *env) activeTarget(c *cli.Context) (launch.Target, error) {
	cfg := *e.cfg
	if arch := c.String("arch"); arch != "" {
		cfg.Build.Arch = arch
	}
	if cfg.Build.Arch == "" {
		return 0, errors.New("no target architecture: pass --arch, set LAUNCHBOX_ARCH or build.arch")
	}
	return cfg.Target()
}

func declarationFiles(c *cli.Context) ([]string, error) {
	if c.NArg() == 0 {
		return nil, errors.New("no declaration files given")
	}
	return c.Args().Slice(), nil
}

func run(args []string, stdout, stderr io.Writer) int {
	if err := newApp(stdout, stderr).Run(args); err != nil {
		for _, e := range multierr.Errors(err) {
			fmt.Fprintf(stderr, "launchbox: %v\n", e)
		}
		return 1
	}
	return 0
}

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}
