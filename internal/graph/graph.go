// Package graph holds the storage layouts that graph kernels read. Layouts
// form a closed set, so Graph dispatches on its Format with a switch rather
// than through an interface.
package graph

import (
	"fmt"

	"github.com/fxnlabs/launchbox/pkg/launch"
)

type (
	VertexID = int32
	EdgeID   = int32
)

// Format names a storage layout.
type Format uint8

const (
	FormatCSR Format = iota + 1
	FormatCOO
)

func (f Format) String() string {
	switch f {
	case FormatCSR:
		return "csr"
	case FormatCOO:
		return "coo"
	}
	return fmt.Sprintf("Format(%d)", uint8(f))
}

// Properties describe the graph independent of its layout.
type Properties struct {
	Directed bool
}

// CSR stores, for each vertex v, its outgoing edges at
// ColumnIndices[RowOffsets[v]:RowOffsets[v+1]].
type CSR struct {
	RowOffsets    []EdgeID
	ColumnIndices []VertexID
	Values        []float64
}

// COO stores edge e as the pair (RowIndices[e], ColumnIndices[e]), sorted by
// row.
type COO struct {
	RowIndices    []VertexID
	ColumnIndices []VertexID
	Values        []float64
}

// Graph is a graph in exactly one storage layout.
type Graph struct {
	format     Format
	vertices   VertexID
	edges      EdgeID
	properties Properties

	csr *CSR
	coo *COO
}

// NewCSR wraps csr, which must describe len(RowOffsets)-1 vertices.
func NewCSR(csr *CSR, props Properties) (*Graph, error) {
	if len(csr.RowOffsets) == 0 {
		return nil, fmt.Errorf("csr: row offsets must hold at least one entry")
	}
	if csr.RowOffsets[0] != 0 {
		return nil, fmt.Errorf("csr: first row offset must be 0, got %d", csr.RowOffsets[0])
	}
	n := len(csr.RowOffsets) - 1
	m := csr.RowOffsets[n]
	if int(m) != len(csr.ColumnIndices) {
		return nil, fmt.Errorf("csr: last row offset %d does not match %d column indices", m, len(csr.ColumnIndices))
	}
	if csr.Values != nil && len(csr.Values) != len(csr.ColumnIndices) {
		return nil, fmt.Errorf("csr: %d values for %d edges", len(csr.Values), len(csr.ColumnIndices))
	}
	for v := 0; v < n; v++ {
		if csr.RowOffsets[v] > csr.RowOffsets[v+1] {
			return nil, fmt.Errorf("csr: row offsets decrease at vertex %d", v)
		}
	}
	for e, u := range csr.ColumnIndices {
		if u < 0 || int(u) >= n {
			return nil, fmt.Errorf("csr: edge %d references a vertex outside [0, %d)", e, n)
		}
	}
	return &Graph{format: FormatCSR, vertices: VertexID(n), edges: m, properties: props, csr: csr}, nil
}

// NewCOO wraps coo for a graph of n vertices.
func NewCOO(coo *COO, n VertexID, props Properties) (*Graph, error) {
	if len(coo.RowIndices) != len(coo.ColumnIndices) {
		return nil, fmt.Errorf("coo: %d row indices for %d column indices", len(coo.RowIndices), len(coo.ColumnIndices))
	}
	if coo.Values != nil && len(coo.Values) != len(coo.RowIndices) {
		return nil, fmt.Errorf("coo: %d values for %d edges", len(coo.Values), len(coo.RowIndices))
	}
	for e, row := range coo.RowIndices {
		if row < 0 || row >= n || coo.ColumnIndices[e] < 0 || coo.ColumnIndices[e] >= n {
			return nil, fmt.Errorf("coo: edge %d references a vertex outside [0, %d)", e, n)
		}
		if e > 0 && row < coo.RowIndices[e-1] {
			return nil, fmt.Errorf("coo: edges are not sorted by row at edge %d", e)
		}
	}
	return &Graph{format: FormatCOO, vertices: n, edges: EdgeID(len(coo.RowIndices)), properties: props, coo: coo}, nil
}

func (g *Graph) Format() Format { return g.format }
func (g *Graph) NumberOfVertices() VertexID { return g.vertices }
func (g *Graph) NumberOfEdges() EdgeID { return g.edges }
func (g *Graph) IsDirected() bool { return g.properties.Directed }
func (g *Graph) Properties() Properties { return g.properties }

// NeighborListLength returns the number of outgoing edges of v.
func (g *Graph) NeighborListLength(v VertexID) EdgeID {
	switch g.format {
	case FormatCSR:
		return g.csr.RowOffsets[v+1] - g.csr.RowOffsets[v]
	case FormatCOO:
		return g.cooRowEnd(v) - g.cooRowStart(v)
	}
	panic(fmt.Sprintf("graph: unknown format %s", g.format))
}

// SourceVertex returns the vertex edge e leaves from.
func (g *Graph) SourceVertex(e EdgeID) VertexID {
	switch g.format {
	case FormatCSR:
		// Last row whose offset is <= e; rows with no edges share an offset.
		offsets := g.csr.RowOffsets
		lo, hi := 0, len(offsets)-1
		for lo < hi {
			mid := (lo + hi + 1) / 2
			if offsets[mid] <= e {
				lo = mid
			} else {
				hi = mid - 1
			}
		}
		return VertexID(lo)
	case FormatCOO:
		return g.coo.RowIndices[e]
	}
	panic(fmt.Sprintf("graph: unknown format %s", g.format))
}

// DestinationVertex returns the vertex edge e points to.
func (g *Graph) DestinationVertex(e EdgeID) VertexID {
	switch g.format {
	case FormatCSR:
		return g.csr.ColumnIndices[e]
	case FormatCOO:
		return g.coo.ColumnIndices[e]
	}
	panic(fmt.Sprintf("graph: unknown format %s", g.format))
}

// cooRowStart returns the first edge with row >= v.
func (g *Graph) cooRowStart(v VertexID) EdgeID {
	rows := g.coo.RowIndices
	lo, hi := 0, len(rows)
	for lo < hi {
		mid := (lo + hi) / 2
		if rows[mid] < v {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return EdgeID(lo)
}

func (g *Graph) cooRowEnd(v VertexID) EdgeID {
	return g.cooRowStart(v + 1)
}

// Passes returns how many grid-stride passes a launch with p needs to give
// every vertex of g a thread.
func (g *Graph) Passes(p launch.Params) int {
	threads := p.Threads()
	if threads == 0 || g.vertices == 0 {
		return 0
	}
	return int((uint64(g.vertices) + threads - 1) / threads)
}
