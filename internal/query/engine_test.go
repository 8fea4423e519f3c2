package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/pyroscope-mcp/pkg/client"
)

func profileInput(t *testing.T) any {
	t.Helper()
	out := client.RenderOutput{
		Timeline: client.Timeline{StartTime: 1700000000, Samples: []uint64{4, 0, 9}, DurationDelta: 10},
		Profile: client.Profile{
			Flamebearer: map[string]any{
				"names":    []string{"total", "main", "work", "work"},
				"numTicks": 13,
				"maxSelf":  9,
			},
			Metadata: map[string]any{"units": "samples", "spyName": "gospy"},
		},
	}
	in, err := Normalize(out)
	require.NoError(t, err)
	return in
}

func TestQuery_Paths(t *testing.T) {
	engine := NewEngine()
	in := profileInput(t)

	tests := []struct {
		expr string
		want []any
	}{
		{".profile.metadata.units", []any{"samples"}},
		{".timeline.samples[]", []any{float64(4), float64(0), float64(9)}},
		{".timeline.samples | add", []any{float64(13)}},
		{`.profile.flamebearer.names[] | select(startswith("w"))`, []any{"work", "work"}},
		{".profile.flamebearer | keys", []any{[]any{"maxSelf", "names", "numTicks"}}},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			result, err := engine.Query(context.Background(), in, tt.expr, Options{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.Values)
			assert.Empty(t, result.Errors)
			assert.False(t, result.Truncated)
		})
	}
}

func TestQuery_Deduplicate(t *testing.T) {
	result, err := NewEngine().Query(context.Background(), profileInput(t), ".profile.flamebearer.names[]", Options{Deduplicate: true})
	require.NoError(t, err)
	assert.Equal(t, []any{"total", "main", "work"}, result.Values)
	assert.Equal(t, 4, result.RawCount)
}

func TestQuery_MaxResults(t *testing.T) {
	result, err := NewEngine().Query(context.Background(), profileInput(t), ".profile.flamebearer.names[]", Options{MaxResults: 2})
	require.NoError(t, err)
	assert.Equal(t, []any{"total", "main"}, result.Values)
	assert.True(t, result.Truncated)
}

func TestQuery_MaxResultsExact(t *testing.T) {
	result, err := NewEngine().Query(context.Background(), profileInput(t), ".timeline.samples[]", Options{MaxResults: 3})
	require.NoError(t, err)
	assert.Len(t, result.Values, 3)
	assert.False(t, result.Truncated)
}

func TestQuery_RuntimeErrorsCollected(t *testing.T) {
	result, err := NewEngine().Query(context.Background(), profileInput(t), ".profile.missing[]", Options{})
	require.NoError(t, err)
	assert.Empty(t, result.Values)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "may not exist")
}

func TestQuery_NilValuesSkipped(t *testing.T) {
	result, err := NewEngine().Query(context.Background(), profileInput(t), ".profile.absent", Options{})
	require.NoError(t, err)
	assert.Empty(t, result.Values)
	assert.Zero(t, result.RawCount)
}

func TestQuery_InvalidExpression(t *testing.T) {
	engine := NewEngine()
	_, err := engine.Query(context.Background(), map[string]any{}, ".name[", Options{})
	assert.ErrorContains(t, err, "invalid jq expression")

	assert.Error(t, engine.ValidateExpression("$undefined"))
	assert.NoError(t, engine.ValidateExpression(".timeline.samples | max"))
}

func TestQuery_Canceled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := NewEngine().Query(ctx, nil, "[range(1e12)] | length", Options{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestEngine_CachesCompiled(t *testing.T) {
	engine := NewEngine()
	require.NoError(t, engine.ValidateExpression(".a"))
	require.NoError(t, engine.ValidateExpression(".a"))
	assert.Equal(t, 1, engine.compiled.Len())
}
