package graph

import (
	"testing"

	"github.com/fxnlabs/launchbox/pkg/launch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/mat"
)

// 0 -> 1, 0 -> 2, 2 -> 0, 2 -> 3; vertex 1 and 3 have no outgoing edges.
func testCSR(t *testing.T) *Graph {
	t.Helper()
	g, err := NewCSR(&CSR{
		RowOffsets:    []EdgeID{0, 2, 2, 4, 4},
		ColumnIndices: []VertexID{1, 2, 0, 3},
	}, Properties{Directed: true})
	require.NoError(t, err)
	return g
}

func TestGraph_Capabilities(t *testing.T) {
	csr := testCSR(t)
	coo, err := csr.ToCOO()
	require.NoError(t, err)

	for _, g := range []*Graph{csr, coo} {
		t.Run(g.Format().String(), func(t *testing.T) {
			assert.Equal(t, VertexID(4), g.NumberOfVertices())
			assert.Equal(t, EdgeID(4), g.NumberOfEdges())
			assert.True(t, g.IsDirected())

			assert.Equal(t, []EdgeID{2, 0, 2, 0}, []EdgeID{
				g.NeighborListLength(0),
				g.NeighborListLength(1),
				g.NeighborListLength(2),
				g.NeighborListLength(3),
			})
			assert.Equal(t, []VertexID{0, 0, 2, 2}, []VertexID{
				g.SourceVertex(0),
				g.SourceVertex(1),
				g.SourceVertex(2),
				g.SourceVertex(3),
			})
			assert.Equal(t, VertexID(3), g.DestinationVertex(3))
		})
	}
}

func TestNewCSR_Invalid(t *testing.T) {
	testCases := map[string]*CSR{
		"no offsets":          {},
		"edge count":          {RowOffsets: []EdgeID{0, 2}, ColumnIndices: []VertexID{1}},
		"decreasing offsets":  {RowOffsets: []EdgeID{0, 2, 1, 2}, ColumnIndices: []VertexID{1, 2}},
		"values length":       {RowOffsets: []EdgeID{0, 1}, ColumnIndices: []VertexID{0}, Values: []float64{1, 2}},
		"nonzero first":       {RowOffsets: []EdgeID{1, 2}, ColumnIndices: []VertexID{0, 0}},
		"column out of range": {RowOffsets: []EdgeID{0, 1, 2}, ColumnIndices: []VertexID{1, 2}},
		"negative column":     {RowOffsets: []EdgeID{0, 1}, ColumnIndices: []VertexID{-1}},
	}
	for name, csr := range testCases {
		t.Run(name, func(t *testing.T) {
			_, err := NewCSR(csr, Properties{})
			assert.Error(t, err)
		})
	}
}

func TestNewCOO_Invalid(t *testing.T) {
	testCases := map[string]*COO{
		"length mismatch": {RowIndices: []VertexID{0, 1}, ColumnIndices: []VertexID{1}},
		"out of range":    {RowIndices: []VertexID{0}, ColumnIndices: []VertexID{5}},
		"unsorted":        {RowIndices: []VertexID{1, 0}, ColumnIndices: []VertexID{0, 1}},
	}
	for name, coo := range testCases {
		t.Run(name, func(t *testing.T) {
			_, err := NewCOO(coo, 2, Properties{})
			assert.Error(t, err)
		})
	}
}

func TestFromGonum(t *testing.T) {
	t.Run("directed", func(t *testing.T) {
		dg := simple.NewDirectedGraph()
		dg.SetEdge(dg.NewEdge(simple.Node(0), simple.Node(2)))
		dg.SetEdge(dg.NewEdge(simple.Node(0), simple.Node(1)))
		dg.SetEdge(dg.NewEdge(simple.Node(2), simple.Node(0)))
		dg.AddNode(simple.Node(3))

		g, err := FromGonum(dg)
		require.NoError(t, err)
		assert.Equal(t, FormatCSR, g.Format())
		assert.True(t, g.IsDirected())
		assert.Equal(t, VertexID(4), g.NumberOfVertices())
		assert.Equal(t, EdgeID(3), g.NumberOfEdges())
		assert.Equal(t, EdgeID(2), g.NeighborListLength(0))
		assert.Equal(t, EdgeID(0), g.NeighborListLength(3))
		assert.Equal(t, VertexID(1), g.DestinationVertex(0), "neighbors are sorted")
		assert.Equal(t, VertexID(2), g.SourceVertex(2))
	})

	t.Run("undirected weighted", func(t *testing.T) {
		ug := simple.NewWeightedUndirectedGraph(0, 0)
		ug.SetWeightedEdge(ug.NewWeightedEdge(simple.Node(0), simple.Node(1), 2.5))

		g, err := FromGonum(ug)
		require.NoError(t, err)
		assert.False(t, g.IsDirected())
		assert.Equal(t, EdgeID(2), g.NumberOfEdges())
		assert.Equal(t, []float64{2.5, 2.5}, g.csr.Values)
	})

	t.Run("sparse ids", func(t *testing.T) {
		dg := simple.NewDirectedGraph()
		dg.SetEdge(dg.NewEdge(simple.Node(0), simple.Node(7)))
		_, err := FromGonum(dg)
		assert.Error(t, err)
	})
}

func TestFromAdjacency(t *testing.T) {
	a := mat.NewDense(3, 3, []float64{
		0, 1, 0,
		0, 0, 0,
		4, 0, 2,
	})
	g, err := FromAdjacency(a, Properties{Directed: true})
	require.NoError(t, err)
	assert.Equal(t, EdgeID(3), g.NumberOfEdges())
	assert.Equal(t, EdgeID(2), g.NeighborListLength(2))
	assert.Equal(t, VertexID(2), g.SourceVertex(1))
	assert.Equal(t, []float64{1, 4, 2}, g.csr.Values)

	_, err = FromAdjacency(mat.NewDense(2, 3, nil), Properties{})
	assert.Error(t, err)
}

func TestGraph_Passes(t *testing.T) {
	g, err := NewCOO(&COO{}, 10000, Properties{})
	require.NoError(t, err)

	assert.Equal(t, 1, g.Passes(launch.Params{BlockDims: 128, GridDims: 80}))
	assert.Equal(t, 3, g.Passes(launch.Params{BlockDims: 128, GridDims: 32}))
	assert.Equal(t, 0, g.Passes(launch.Params{}))
}
