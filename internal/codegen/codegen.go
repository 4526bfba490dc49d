// Package codegen renders resolved launch params as Go constants.
package codegen

import (
	"bytes"
	"fmt"
	"go/format"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"unicode"

	"github.com/fxnlabs/launchbox/internal/build"
	"github.com/fxnlabs/launchbox/internal/metrics"
	"github.com/fxnlabs/launchbox/pkg/launch"
	"go.uber.org/zap"
)

const header = "// Code generated by launchbox. DO NOT EDIT."

var fileTemplate = template.Must(template.New("launch").Parse(header + `

package {{.Package}}

// ActiveTarget is the architecture the launch params below were resolved for.
const ActiveTarget = {{.ActiveValue}} // {{.Active}}
{{range .Kernels}}
// {{.Kernel}} {{if .Fallback}}has no params for {{$.Active}} and uses its fallback{{else}}uses its {{.Record.Target}} params{{end}}.{{if .Source}}
// Declared in {{.Source}}.{{end}}
const (
	{{.Ident}}BlockDims         = {{.Record.BlockDims}}
	{{.Ident}}GridDims          = {{.Record.GridDims}}
	{{.Ident}}SharedMemoryBytes = {{.Record.SharedMemoryBytes}}
)
{{end}}`))

type kernelData struct {
	build.Resolution
	Ident string
}

type fileData struct {
	Package     string
	Active      launch.Target
	ActiveValue uint32
	Kernels     []kernelData
}

// Generator writes resolved kernels as a Go source file.
type Generator struct {
	log     *zap.Logger
	metrics *metrics.Metrics
}

// NewGenerator returns a Generator. m may be nil.
func NewGenerator(log *zap.Logger, m *metrics.Metrics) *Generator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Generator{log: log.Named("codegen"), metrics: m}
}

// Render returns gofmt-ed source declaring package pkg with one constant
// block per resolution.
func (g *Generator) Render(pkg string, active launch.Target, resolutions []build.Resolution) ([]byte, error) {
	if !token.IsIdentifier(pkg) {
		return nil, fmt.Errorf("invalid package name %q", pkg)
	}

	data := fileData{
		Package:     pkg,
		Active:      active,
		ActiveValue: uint32(active),
		Kernels:     make([]kernelData, 0, len(resolutions)),
	}
	owners := make(map[string]string, len(resolutions))
	for _, res := range resolutions {
		// Kernel and source end up in line comments.
		if strings.ContainsFunc(res.Kernel, unicode.IsControl) || strings.ContainsFunc(res.Source, unicode.IsControl) {
			return nil, fmt.Errorf("kernel %q: name and source must not contain control characters", res.Kernel)
		}
		ident, err := Identifier(res.Kernel)
		if err != nil {
			return nil, err
		}
		if other, taken := owners[ident]; taken {
			return nil, fmt.Errorf("kernels %q and %q both map to identifier %s", other, res.Kernel, ident)
		}
		owners[ident] = res.Kernel
		res.Source = filepath.ToSlash(res.Source)
		data.Kernels = append(data.Kernels, kernelData{Resolution: res, Ident: ident})
	}

	var buf bytes.Buffer
	if err := fileTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render launch params: %w", err)
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to format generated source: %w", err)
	}
	return src, nil
}

// WriteFile writes src to path through a temporary file in the same
// directory, so a failed run never leaves a partial file behind. It reports
// whether the file changed.
func (g *Generator) WriteFile(path string, src []byte) (bool, error) {
	if existing, err := os.ReadFile(path); err == nil && bytes.Equal(existing, src) {
		g.log.Debug("generated file unchanged", zap.String("path", path))
		return false, nil
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return false, err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(src); err != nil {
		tmp.Close()
		return false, err
	}
	if err := tmp.Close(); err != nil {
		return false, err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return false, err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return false, err
	}

	if g.metrics != nil {
		g.metrics.GeneratedFiles.Inc()
	}
	g.log.Info("wrote launch params", zap.String("path", path))
	return true, nil
}

// Identifier turns a kernel name such as "filter_frontier" or "spmv-csr"
// into the exported Go identifier prefix "FilterFrontier" or "SpmvCsr".
func Identifier(kernel string) (string, error) {
	parts := strings.FieldsFunc(kernel, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	var sb strings.Builder
	for _, part := range parts {
		runes := []rune(part)
		runes[0] = unicode.ToUpper(runes[0])
		sb.WriteString(string(runes))
	}

	ident := sb.String()
	if ident == "" || !unicode.IsLetter([]rune(ident)[0]) || !token.IsIdentifier(ident) {
		return "", fmt.Errorf("kernel %q does not map to a Go identifier", kernel)
	}
	return ident, nil
}
