package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fxnlabs/launchbox/fixtures"
	"github.com/fxnlabs/launchbox/internal/config"
	"github.com/urfave/cli/v2"
)

func initCommand() *cli.Command {
	return &cli.Command{
		Name:      "init",
		Usage:     "Write a starter launchbox.yaml and kernels.yaml",
		ArgsUsage: "[DIR]",
		Action: func(c *cli.Context) error {
			dir := "."
			if c.NArg() > 0 {
				dir = c.Args().First()
			}
			if err := os.MkdirAll(dir, 0755); err != nil {
				return err
			}

			files := []struct {
				name string
				data []byte
			}{
				{config.DefaultConfigFile, fixtures.ConfigTemplate},
				{"kernels.yaml", fixtures.KernelsTemplate},
			}
			for _, f := range files {
				path := filepath.Join(dir, f.name)
				if err := writeNew(path, f.data); err != nil {
					return err
				}
				fmt.Fprintf(c.App.Writer, "wrote %s\n", path)
			}
			return nil
		},
	}
}

// writeNew writes data to path, failing if path already exists.
func writeNew(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if errors.Is(err, os.ErrExist) {
		return fmt.Errorf("%s already exists", path)
	}
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
