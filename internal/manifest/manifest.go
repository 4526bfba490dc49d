// Package manifest loads kernel launch declarations from YAML and HCL files.
package manifest

import (
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/fxnlabs/launchbox/internal/metrics"
	"github.com/fxnlabs/launchbox/pkg/launch"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Format is the syntax a declaration file is written in.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatHCL  Format = "hcl"
)

// FormatOf returns the declaration format for path based on its extension.
func FormatOf(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, true
	case ".hcl":
		return FormatHCL, true
	}
	return "", false
}

// rawKernel is a kernel as written in a file, before validation. Integers
// are kept wide so that negative and oversized values can be reported.
type rawKernel struct {
	Name    string
	Configs []rawConfig
}

type rawConfig struct {
	Target            string
	BlockDims         int64
	GridDims          int64
	SharedMemoryBytes int64
}

// Loader turns declaration files into launch boxes.
type Loader struct {
	log     *zap.Logger
	metrics *metrics.Metrics
	opts    []launch.Option
}

// NewLoader returns a Loader that declares every box with opts. m may be nil.
func NewLoader(log *zap.Logger, m *metrics.Metrics, opts ...launch.Option) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{
		log:     log.Named("manifest"),
		metrics: m,
		opts:    opts,
	}
}

// Load reads and validates a single declaration file.
func (l *Loader) Load(path string) ([]*launch.Box, error) {
	format, ok := FormatOf(path)
	if !ok {
		return nil, fmt.Errorf("%s: unsupported declaration file extension", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var kernels []rawKernel
	switch format {
	case FormatYAML:
		kernels, err = parseYAML(path, data)
	case FormatHCL:
		kernels, err = parseHCL(path, data)
	}
	if err == nil {
		var boxes []*launch.Box
		boxes, err = l.declare(path, kernels)
		if err == nil {
			l.log.Debug("loaded declarations", zap.String("path", path), zap.String("format", string(format)), zap.Int("kernels", len(boxes)))
			return boxes, nil
		}
	}

	if l.metrics != nil {
		l.metrics.DeclarationErrors.WithLabelValues(string(format)).Inc()
	}
	return nil, err
}

// LoadAll loads every path, expanding directories to the declaration files
// they contain. Kernel names must be unique across all files. Every error
// found is returned.
func (l *Loader) LoadAll(paths []string) ([]*launch.Box, error) {
	files, err := Find(paths)
	if err != nil {
		return nil, err
	}

	var boxes []*launch.Box
	declaredIn := make(map[string]string)
	for _, file := range files {
		loaded, loadErr := l.Load(file)
		if loadErr != nil {
			err = multierr.Append(err, loadErr)
			continue
		}
		for _, box := range loaded {
			if first, dup := declaredIn[box.Kernel()]; dup {
				err = multierr.Append(err, &launch.ValidationError{
					Kernel: box.Kernel(),
					Index:  -1,
					Reason: fmt.Sprintf("already declared in %s", first),
					Source: file,
				})
				continue
			}
			declaredIn[box.Kernel()] = file
			boxes = append(boxes, box)
		}
	}
	if err != nil {
		return nil, err
	}
	return boxes, nil
}

// configFile is the launchbox config file name, skipped when walking
// directories.
const configFile = "launchbox.yaml"

// Find expands paths into the declaration files they name. Directories are
// walked recursively, skipping launchbox.yaml; files are returned in lexical
// order per directory.
func Find(paths []string) ([]string, error) {
	var files []string
	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, root)
			continue
		}

		var found []string
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if _, ok := FormatOf(path); ok && !d.IsDir() && d.Name() != configFile {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		slices.Sort(found)
		files = append(files, found...)
	}
	return files, nil
}

func (l *Loader) declare(path string, kernels []rawKernel) ([]*launch.Box, error) {
	var err error
	boxes := make([]*launch.Box, 0, len(kernels))
	seen := make(map[string]bool, len(kernels))

	for _, k := range kernels {
		if seen[k.Name] {
			err = multierr.Append(err, &launch.ValidationError{Kernel: k.Name, Index: -1, Reason: "declared twice", Source: path})
			continue
		}
		seen[k.Name] = true

		records, convErr := toRecords(path, k)
		if convErr != nil {
			err = multierr.Append(err, convErr)
			continue
		}

		opts := append([]launch.Option{launch.WithSource(path)}, l.opts...)
		box, declErr := launch.Declare(k.Name, records, opts...)
		if declErr != nil {
			err = multierr.Append(err, declErr)
			continue
		}
		boxes = append(boxes, box)
	}
	if err != nil {
		return nil, err
	}
	return boxes, nil
}

func toRecords(path string, k rawKernel) ([]launch.Record, error) {
	var err error
	records := make([]launch.Record, 0, len(k.Configs))
	for i, c := range k.Configs {
		invalid := func(field, reason string) {
			err = multierr.Append(err, &launch.ValidationError{Kernel: k.Name, Index: i, Field: field, Reason: reason, Source: path})
		}

		var target launch.Target
		if strings.TrimSpace(c.Target) == "" {
			invalid("target", `is required, use "fallback" for the default record`)
		} else if t, parseErr := launch.ParseTarget(c.Target); parseErr != nil {
			invalid("target", parseErr.Error())
		} else {
			target = t
		}

		block, ok := dim(c.BlockDims)
		if !ok {
			invalid("block_dims", fmt.Sprintf("must be a non-negative 32-bit value, got %d", c.BlockDims))
		}
		grid, ok := dim(c.GridDims)
		if !ok {
			invalid("grid_dims", fmt.Sprintf("must be a non-negative 32-bit value, got %d", c.GridDims))
		}
		smem, ok := dim(c.SharedMemoryBytes)
		if !ok {
			invalid("shared_memory_bytes", fmt.Sprintf("must be a non-negative 32-bit value, got %d", c.SharedMemoryBytes))
		}

		records = append(records, launch.SM(target, launch.Params{
			BlockDims:         block,
			GridDims:          grid,
			SharedMemoryBytes: smem,
		}))
	}
	if err != nil {
		return nil, err
	}
	return records, nil
}

func dim(v int64) (uint32, bool) {
	if v < 0 || v > math.MaxUint32 {
		return 0, false
	}
	return uint32(v), true
}
