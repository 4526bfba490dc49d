package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/fxnlabs/launchbox/internal/build"
	"github.com/fxnlabs/launchbox/pkg/launch"
	"github.com/goccy/go-json"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

type resolveReport struct {
	Target  launch.Target      `json:"target"`
	Kernels []build.Resolution `json:"kernels"`
}

// resolveFiles loads and resolves every kernel declared in the command's
// arguments.
func (e *env) resolveFiles(c *cli.Context) (launch.Target, []build.Resolution, error) {
	active, err := e.activeTarget(c)
	if err != nil {
		return 0, nil, err
	}
	files, err := declarationFiles(c)
	if err != nil {
		return 0, nil, err
	}

	boxes, err := e.c.Loader.LoadAll(files)
	if err != nil {
		return 0, nil, err
	}
	resolutions, err := e.c.Resolver.ResolveAll(c.Context, boxes, active)
	if err != nil {
		return 0, nil, err
	}
	return active, resolutions, nil
}

func resolveCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:      "resolve",
		Usage:     "Print the launch params every kernel resolves to",
		ArgsUsage: "FILE|DIR...",
		Flags: []cli.Flag{
			archFlag(),
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the result as JSON",
			},
		},
		Action: func(c *cli.Context) error {
			active, resolutions, err := e.resolveFiles(c)
			if err != nil {
				return err
			}

			if c.Bool("json") {
				out, err := json.MarshalIndent(resolveReport{Target: active, Kernels: resolutions}, "", "  ")
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(c.App.Writer, string(out))
				return err
			}

			w := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "KERNEL\tRECORD\tGRID\tBLOCK\tSHARED MEM\tSOURCE")
			for _, res := range resolutions {
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%s\n",
					res.Kernel, res.Record.Target, res.Record.GridDims, res.Record.BlockDims, res.Record.SharedMemoryBytes, res.Source)
			}
			return w.Flush()
		},
	}
}

func checkCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "Fail unless every kernel resolves for the target",
		ArgsUsage: "FILE|DIR...",
		Flags:     []cli.Flag{archFlag()},
		Action: func(c *cli.Context) error {
			active, resolutions, err := e.resolveFiles(c)
			if err != nil {
				return err
			}
			fallbacks := 0
			for _, res := range resolutions {
				if res.Fallback() {
					fallbacks++
				}
			}
			e.c.Log.Named("cli").Info("declarations ok",
				zap.Stringer("target", active),
				zap.Int("kernels", len(resolutions)),
				zap.Int("fallbacks", fallbacks))
			return nil
		},
	}
}
