package launch

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(block, grid, smem uint32, target Target) Record {
	return Record{Target: target, Params: Params{BlockDims: block, GridDims: grid, SharedMemoryBytes: smem}}
}

func TestResolve_Scenarios(t *testing.T) {
	testCases := []struct {
		name    string
		records []Record
		active  Target
		want    Record
		wantErr bool
	}{
		{
			name:    "exact match",
			records: []Record{rec(128, 64, 0, 75), rec(256, 32, 0, 0)},
			active:  75,
			want:    rec(128, 64, 0, 75),
		},
		{
			name:    "fallback when target not listed",
			records: []Record{rec(128, 64, 0, 61), rec(256, 32, 0, 0)},
			active:  75,
			want:    rec(256, 32, 0, 0),
		},
		{
			name:    "no match and no fallback",
			records: []Record{rec(128, 64, 0, 61)},
			active:  75,
			wantErr: true,
		},
		{
			name:    "empty box",
			records: nil,
			active:  75,
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			box, err := Declare("advance", tc.records)
			require.NoError(t, err)

			got, err := Resolve(box, tc.active)
			if tc.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrUnresolved))

				var resErr *ResolutionError
				require.ErrorAs(t, err, &resErr)
				assert.Equal(t, "advance", resErr.Kernel)
				assert.Equal(t, tc.active, resErr.Target)
				assert.Contains(t, err.Error(), "sm_75")
				assert.Contains(t, err.Error(), `"advance"`)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestResolve_ExactMatchIgnoresOrder(t *testing.T) {
	match := rec(128, 64, 512, SM80)
	others := []Record{rec(64, 8, 0, SM61), rec(256, 32, 0, Fallback), rec(32, 4, 0, SM90)}

	for pos := 0; pos <= len(others); pos++ {
		records := append([]Record{}, others[:pos]...)
		records = append(records, match)
		records = append(records, others[pos:]...)

		box := MustDeclare("filter", records)
		got, err := box.Resolve(SM80)
		require.NoError(t, err)
		assert.Equal(t, match, got, "match at position %d", pos)
	}
}

func TestResolve_ExactMatchBeatsFallback(t *testing.T) {
	t.Run("fallback declared first", func(t *testing.T) {
		box := MustDeclare("k", []Record{Default(Params{BlockDims: 256, GridDims: 1}), SM(SM75, Params{BlockDims: 128, GridDims: 2})})
		got, err := box.Resolve(SM75)
		require.NoError(t, err)
		assert.Equal(t, SM75, got.Target)
		assert.Equal(t, uint32(128), got.BlockDims)
	})

	t.Run("fallback declared last", func(t *testing.T) {
		box := MustDeclare("k", []Record{SM(SM75, Params{BlockDims: 128, GridDims: 2}), Default(Params{BlockDims: 256, GridDims: 1})})
		got, err := box.Resolve(SM75)
		require.NoError(t, err)
		assert.Equal(t, SM75, got.Target)
	})
}

func TestResolve_FallbackOnly(t *testing.T) {
	fallback := Default(Params{BlockDims: 256, GridDims: 32})
	box := MustDeclare("k", []Record{fallback})

	for _, target := range KnownTargets() {
		got, err := box.Resolve(target)
		require.NoError(t, err)
		assert.Equal(t, fallback, got, target.String())
	}
}

func TestResolve_FirstDeclaredWins(t *testing.T) {
	box := MustDeclare("k", []Record{
		rec(64, 1, 0, SM86),
		rec(128, 1, 0, SM86),
		rec(256, 1, 0, Fallback),
		rec(512, 1, 0, Fallback),
	})

	got, err := box.Resolve(SM86)
	require.NoError(t, err)
	assert.Equal(t, uint32(64), got.BlockDims)

	got, err = box.Resolve(SM70)
	require.NoError(t, err)
	assert.Equal(t, uint32(256), got.BlockDims)
}

func TestResolve_Idempotent(t *testing.T) {
	box := MustDeclare("k", []Record{rec(128, 64, 0, 61), rec(256, 32, 0, 0)})

	first, err := box.Resolve(SM75)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := box.Resolve(SM75)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	assert.Len(t, box.Records(), 2, "resolution must not change the box")
}

func TestResolve_NilBox(t *testing.T) {
	_, err := Resolve(nil, SM75)
	assert.ErrorIs(t, err, ErrUnresolved)
}

func TestMustResolve(t *testing.T) {
	t.Run("resolvable", func(t *testing.T) {
		box := MustDeclare("k", []Record{rec(128, 64, 1024, 75)})
		assert.Equal(t, Params{BlockDims: 128, GridDims: 64, SharedMemoryBytes: 1024}, MustResolve(box, SM75))
	})

	t.Run("unresolvable panics with diagnostic", func(t *testing.T) {
		box := MustDeclare("bfs", []Record{rec(128, 64, 0, 61)})
		assert.PanicsWithError(t, `kernel "bfs": no launch params for sm_75 and no fallback declared`, func() {
			MustResolve(box, SM75)
		})
	})
}
