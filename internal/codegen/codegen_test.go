package codegen

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fxnlabs/launchbox/internal/build"
	"github.com/fxnlabs/launchbox/internal/metrics"
	"github.com/fxnlabs/launchbox/pkg/launch"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const wantSource = `// Code generated by launchbox. DO NOT EDIT.

package kernels

// ActiveTarget is the architecture the launch params below were resolved for.
const ActiveTarget = 75 // sm_75

// advance uses its sm_75 params.
// Declared in decl/kernels.yaml.
const (
	AdvanceBlockDims         = 128
	AdvanceGridDims          = 64
	AdvanceSharedMemoryBytes = 0
)

// filter_frontier has no params for sm_75 and uses its fallback.
const (
	FilterFrontierBlockDims         = 256
	FilterFrontierGridDims          = 32
	FilterFrontierSharedMemoryBytes = 4096
)
`

func resolutions() []build.Resolution {
	return []build.Resolution{
		{
			Kernel: "advance",
			Source: "decl/kernels.yaml",
			Active: launch.SM75,
			Record: launch.SM(launch.SM75, launch.Params{BlockDims: 128, GridDims: 64}),
		},
		{
			Kernel: "filter_frontier",
			Active: launch.SM75,
			Record: launch.Default(launch.Params{BlockDims: 256, GridDims: 32, SharedMemoryBytes: 4096}),
		},
	}
}

func TestGenerator_Render(t *testing.T) {
	g := NewGenerator(zaptest.NewLogger(t), nil)

	src, err := g.Render("kernels", launch.SM75, resolutions())
	require.NoError(t, err)
	assert.Equal(t, wantSource, string(src))

	again, err := g.Render("kernels", launch.SM75, resolutions())
	require.NoError(t, err)
	assert.Equal(t, src, again, "output must be deterministic")
}

func TestGenerator_RenderErrors(t *testing.T) {
	g := NewGenerator(nil, nil)

	t.Run("invalid package", func(t *testing.T) {
		_, err := g.Render("my-kernels", launch.SM75, resolutions())
		assert.ErrorContains(t, err, `invalid package name "my-kernels"`)
	})

	t.Run("identifier collision", func(t *testing.T) {
		res := resolutions()
		res[1].Kernel = "Advance"
		_, err := g.Render("kernels", launch.SM75, res)
		assert.ErrorContains(t, err, "both map to identifier Advance")
	})

	t.Run("newline in kernel name", func(t *testing.T) {
		res := resolutions()
		res[0].Kernel = "foo\nvar Evil = 1 //"
		src, err := g.Render("kernels", launch.SM75, res)
		assert.ErrorContains(t, err, "control characters")
		assert.Nil(t, src)
	})

	t.Run("newline in source", func(t *testing.T) {
		res := resolutions()
		res[0].Source = "kernels.yaml\nvar Evil = 1"
		_, err := g.Render("kernels", launch.SM75, res)
		assert.ErrorContains(t, err, "control characters")
	})

	t.Run("kernel name without identifier", func(t *testing.T) {
		res := resolutions()
		res[0].Kernel = "2d"
		_, err := g.Render("kernels", launch.SM75, res)
		assert.Error(t, err)
	})
}

func TestGenerator_RenderNoKernels(t *testing.T) {
	src, err := NewGenerator(nil, nil).Render("kernels", launch.SM80, nil)
	require.NoError(t, err)
	assert.Contains(t, string(src), "const ActiveTarget = 80 // sm_80")
}

func TestGenerator_WriteFile(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)
	g := NewGenerator(zaptest.NewLogger(t), m)
	path := filepath.Join(t.TempDir(), "launch_gen.go")

	changed, err := g.WriteFile(path, []byte(wantSource))
	require.NoError(t, err)
	assert.True(t, changed)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, wantSource, string(data))

	changed, err = g.WriteFile(path, []byte(wantSource))
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.GeneratedFiles))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must be cleaned up")
}

func TestGenerator_WriteFileMissingDir(t *testing.T) {
	_, err := NewGenerator(nil, nil).WriteFile(filepath.Join(t.TempDir(), "missing", "launch_gen.go"), []byte(wantSource))
	assert.Error(t, err)
}

func TestIdentifier(t *testing.T) {
	testCases := map[string]string{
		"advance":         "Advance",
		"filter_frontier": "FilterFrontier",
		"spmv-csr":        "SpmvCsr",
		"bfs.push":        "BfsPush",
		"SSSP":            "SSSP",
		"k2":              "K2",
	}
	for in, want := range testCases {
		got, err := Identifier(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{"", "__", "2d", "-"} {
		_, err := Identifier(bad)
		assert.Error(t, err, bad)
	}
}
