package main

import (
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/fxnlabs/launchbox/internal/manifest"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

func generateCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "Write the resolved launch params as Go constants",
		Description: "Meant to run from a go:generate directive:\n\n" +
			"   //go:generate launchbox generate --arch $LAUNCHBOX_ARCH kernels.yaml\n\n" +
			"Any kernel that cannot be resolved fails the command and nothing is written.",
		ArgsUsage: "FILE|DIR...",
		Flags: []cli.Flag{
			archFlag(),
			&cli.StringFlag{
				Name:    "package",
				Aliases: []string{"p"},
				Usage:   "Package `NAME` of the generated file, overrides build.package (defaults to $GOPACKAGE)",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write to `FILE`, overrides build.output",
			},
			&cli.BoolFlag{
				Name:  "watch",
				Usage: "Regenerate whenever a declaration file changes",
			},
		},
		Action: func(c *cli.Context) error {
			if !c.Bool("watch") {
				return e.generate(c)
			}
			return e.watch(c)
		},
	}
}

func (e *env) generateTarget(c *cli.Context) (pkg, output string) {
	pkg, output = e.cfg.Build.Package, e.cfg.Build.Output
	if gopkg := os.Getenv("GOPACKAGE"); gopkg != "" {
		pkg = gopkg
	}
	if c.IsSet("package") {
		pkg = c.String("package")
	}
	if c.IsSet("output") {
		output = c.String("output")
	}
	return pkg, output
}

func (e *env) generate(c *cli.Context) error {
	active, resolutions, err := e.resolveFiles(c)
	if err != nil {
		return err
	}

	pkg, output := e.generateTarget(c)
	src, err := e.c.Generator.Render(pkg, active, resolutions)
	if err != nil {
		return err
	}
	if _, err := e.c.Generator.WriteFile(output, src); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}
	return nil
}

// watch generates once, then again on every change to the declaration
// files, until interrupted. Failures are reported and watching continues.
func (e *env) watch(c *cli.Context) error {
	log := e.c.Log.Named("watch")
	files, err := declarationFiles(c)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	for _, dir := range watchDirs(files) {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
	defer stop()

	regenerate := func() {
		if err := e.generate(c); err != nil {
			for _, err := range multierr.Errors(err) {
				fmt.Fprintf(c.App.ErrWriter, "launchbox: %v\n", err)
			}
		}
	}

	regenerate()
	_, output := e.generateTarget(c)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(event, output) {
				continue
			}
			log.Debug("declaration changed", zap.String("path", event.Name), zap.Stringer("op", event.Op))
			regenerate()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error", zap.Error(err))
		}
	}
}

// watchDirs returns the directories to watch for paths: the parent of each
// file and every directory below each directory argument. Watching
// directories instead of files keeps working across editors that save by
// renaming.
func watchDirs(paths []string) []string {
	seen := make(map[string]bool)
	var dirs []string
	add := func(dir string) {
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	for _, p := range paths {
		if info, err := os.Stat(p); err != nil || !info.IsDir() {
			add(filepath.Dir(p))
			continue
		}
		_ = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err == nil && d.IsDir() {
				add(path)
			}
			return nil
		})
	}
	return dirs
}

func relevant(event fsnotify.Event, output string) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	if filepath.Clean(event.Name) == filepath.Clean(output) {
		return false
	}
	_, ok := manifest.FormatOf(event.Name)
	return ok
}
