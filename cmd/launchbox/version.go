package main

import (
	"fmt"
	"runtime"

	"github.com/common-nighthawk/go-figure"
	"github.com/urfave/cli/v2"
)

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print the launchbox version",
		Action: func(c *cli.Context) error {
			fmt.Fprint(c.App.Writer, figure.NewFigure("launchbox", "", true).String())
			fmt.Fprintf(c.App.Writer, "\nlaunchbox %s (%s %s/%s)\n", version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
			return nil
		},
	}
}
