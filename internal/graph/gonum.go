package graph

import (
	"fmt"
	"slices"

	gonumgraph "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/mat"
)

// FromGonum builds a CSR graph from g. Node IDs must be the dense range
// [0, n). Undirected graphs store every edge in both directions. Weights are
// taken from g when it implements graph.Weighted.
func FromGonum(g gonumgraph.Graph) (*Graph, error) {
	nodes := gonumgraph.NodesOf(g.Nodes())
	n := len(nodes)
	for _, node := range nodes {
		if node.ID() < 0 || node.ID() >= int64(n) {
			return nil, fmt.Errorf("gonum: node id %d outside dense range [0, %d)", node.ID(), n)
		}
	}

	_, directed := g.(gonumgraph.Directed)
	weighted, hasWeights := g.(gonumgraph.Weighted)

	csr := &CSR{RowOffsets: make([]EdgeID, n+1)}
	if hasWeights {
		csr.Values = []float64{}
	}
	for v := 0; v < n; v++ {
		neighbors := gonumgraph.NodesOf(g.From(int64(v)))
		ids := make([]int64, len(neighbors))
		for i, u := range neighbors {
			ids[i] = u.ID()
		}
		slices.Sort(ids)

		for _, u := range ids {
			csr.ColumnIndices = append(csr.ColumnIndices, VertexID(u))
			if hasWeights {
				w, _ := weighted.Weight(int64(v), u)
				csr.Values = append(csr.Values, w)
			}
		}
		csr.RowOffsets[v+1] = EdgeID(len(csr.ColumnIndices))
	}
	return NewCSR(csr, Properties{Directed: directed})
}

// FromAdjacency builds a CSR graph from a square adjacency matrix. Every
// non-zero entry a(i, j) becomes an edge i->j weighted a(i, j).
func FromAdjacency(a mat.Matrix, props Properties) (*Graph, error) {
	rows, cols := a.Dims()
	if rows != cols {
		return nil, fmt.Errorf("adjacency matrix must be square, got %dx%d", rows, cols)
	}

	csr := &CSR{RowOffsets: make([]EdgeID, rows+1), Values: []float64{}}
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if w := a.At(i, j); w != 0 {
				csr.ColumnIndices = append(csr.ColumnIndices, VertexID(j))
				csr.Values = append(csr.Values, w)
			}
		}
		csr.RowOffsets[i+1] = EdgeID(len(csr.ColumnIndices))
	}
	return NewCSR(csr, props)
}

// ToCOO returns g in COO layout. A COO graph is returned unchanged.
func (g *Graph) ToCOO() (*Graph, error) {
	if g.format == FormatCOO {
		return g, nil
	}
	coo := &COO{
		RowIndices:    make([]VertexID, 0, g.edges),
		ColumnIndices: make([]VertexID, 0, g.edges),
	}
	if g.csr.Values != nil {
		coo.Values = append([]float64{}, g.csr.Values...)
	}
	for v := VertexID(0); v < g.vertices; v++ {
		for e := g.csr.RowOffsets[v]; e < g.csr.RowOffsets[v+1]; e++ {
			coo.RowIndices = append(coo.RowIndices, v)
			coo.ColumnIndices = append(coo.ColumnIndices, g.csr.ColumnIndices[e])
		}
	}
	return NewCOO(coo, g.vertices, g.properties)
}
