package manifest

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

type hclFile struct {
	Kernels []*hclKernel `hcl:"kernel,block"`
}

type hclKernel struct {
	Name    string       `hcl:"name,label"`
	Configs []*hclConfig `hcl:"config,block"`
}

// Target is decoded as a string so both `target = 75` and
// `target = "sm_75"` are accepted.
type hclConfig struct {
	Target            string `hcl:"target"`
	BlockDims         int64  `hcl:"block_dims"`
	GridDims          int64  `hcl:"grid_dims"`
	SharedMemoryBytes int64  `hcl:"shared_memory_bytes,optional"`
}

func parseHCL(path string, data []byte) ([]rawKernel, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}

	var parsed hclFile
	diags = gohcl.DecodeBody(file.Body, nil, &parsed)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", path, diags)
	}

	kernels := make([]rawKernel, 0, len(parsed.Kernels))
	for _, k := range parsed.Kernels {
		raw := rawKernel{Name: k.Name, Configs: make([]rawConfig, 0, len(k.Configs))}
		for _, c := range k.Configs {
			raw.Configs = append(raw.Configs, rawConfig{
				Target:            c.Target,
				BlockDims:         c.BlockDims,
				GridDims:          c.GridDims,
				SharedMemoryBytes: c.SharedMemoryBytes,
			})
		}
		kernels = append(kernels, raw)
	}
	return kernels, nil
}
