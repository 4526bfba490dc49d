package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

type yamlFile struct {
	Kernels []yamlKernel `yaml:"kernels"`
}

type yamlKernel struct {
	Name    string       `yaml:"name"`
	Configs []yamlConfig `yaml:"configs"`
}

type yamlConfig struct {
	Target            string `yaml:"target"`
	BlockDims         int64  `yaml:"block_dims"`
	GridDims          int64  `yaml:"grid_dims"`
	SharedMemoryBytes int64  `yaml:"shared_memory_bytes"`
}

func parseYAML(path string, data []byte) ([]rawKernel, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var file yamlFile
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	kernels := make([]rawKernel, 0, len(file.Kernels))
	for _, k := range file.Kernels {
		raw := rawKernel{Name: k.Name, Configs: make([]rawConfig, 0, len(k.Configs))}
		for _, c := range k.Configs {
			raw.Configs = append(raw.Configs, rawConfig(c))
		}
		kernels = append(kernels, raw)
	}
	return kernels, nil
}
