package sources

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/eccnsync/pkg/records"
)

func TestMemorySource(t *testing.T) {
	set := records.FromRows([]string{"a"}, [][]string{{"1"}})
	src := NewMemorySource(set)
	assert.Equal(t, MemoryID, src.ID())

	got, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, set, got)

	src.Err = errors.New("boom")
	_, err = src.Fetch(context.Background())
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewMemorySource(set).Fetch(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryDestination(t *testing.T) {
	ctx := context.Background()

	empty, err := NewMemoryDestination().Read(ctx)
	require.NoError(t, err)
	assert.True(t, empty.IsEmpty())

	dst := NewMemoryDestination([]string{"a", "b"}, []string{"1", ""})
	set, err := dst.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, set.Columns)
	assert.True(t, set.Records[0]["b"].IsNull())

	require.NoError(t, dst.Clear(ctx))
	assert.Empty(t, dst.Rows())
	require.NoError(t, dst.Write(ctx, [][]string{{"a"}, {"2"}}))
	assert.Equal(t, [][]string{{"a"}, {"2"}}, dst.Rows())
	assert.Equal(t, []string{"read", "clear", "write"}, dst.Calls())
}
