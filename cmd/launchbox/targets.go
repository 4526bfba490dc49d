package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/fxnlabs/launchbox/pkg/launch"
	"github.com/urfave/cli/v2"
)

func targetsCommand() *cli.Command {
	return &cli.Command{
		Name:  "targets",
		Usage: "List the named GPU architectures",
		Action: func(c *cli.Context) error {
			w := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TARGET\tCOMPUTE CAPABILITY\tFAMILY")
			for _, t := range launch.KnownTargets() {
				fmt.Fprintf(w, "%s\t%d.%d\t%s\n", t, t.Major(), t.Minor(), t.Family())
			}
			return w.Flush()
		},
	}
}
