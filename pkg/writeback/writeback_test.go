package writeback_test

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/eccnsync/pkg/errors"
	"github.com/agentstation/eccnsync/pkg/records"
	"github.com/agentstation/eccnsync/pkg/sources"
	"github.com/agentstation/eccnsync/pkg/writeback"
)

func sampleSet() records.RecordSet {
	return records.RecordSet{
		Columns: []string{"key", "eccn"},
		Records: []records.Record{
			{"key": records.String("A1"), "eccn": records.String("EAR99")},
			{"key": records.String("B2"), "eccn": records.Null()},
		},
	}
}

func TestWriteFullReplace(t *testing.T) {
	dst := sources.NewMemoryDestination([]string{"old"}, []string{"x"}, []string{"y"})

	out, err := writeback.New(dst).Write(context.Background(), sampleSet())
	require.NoError(t, err)

	assert.Equal(t, writeback.StatusWritten, out.Status)
	assert.Equal(t, 2, out.Rows)
	assert.Equal(t, []string{"clear", "write"}, dst.Calls())
	assert.Equal(t, [][]string{
		{"key", "eccn"},
		{"A1", "EAR99"},
		{"B2", ""},
	}, dst.Rows())
}

func TestWriteEmptyIsNoOp(t *testing.T) {
	dst := sources.NewMemoryDestination([]string{"key"}, []string{"A1"})

	out, err := writeback.New(dst).Write(context.Background(), records.New("key"))
	require.NoError(t, err)

	assert.Equal(t, writeback.StatusNoOp, out.Status)
	assert.Empty(t, dst.Calls(), "destination must not be cleared")
	assert.Len(t, dst.Rows(), 2)
}

func TestWriteDryRun(t *testing.T) {
	dst := sources.NewMemoryDestination()
	out, err := writeback.New(dst, writeback.WithDryRun(true)).Write(context.Background(), sampleSet())
	require.NoError(t, err)
	assert.Equal(t, writeback.StatusSkipped, out.Status)
	assert.Empty(t, dst.Calls())
}

func TestWriteClearFails(t *testing.T) {
	dst := sources.NewMemoryDestination([]string{"key"}, []string{"A1"})
	dst.ClearErr = &errors.AccessError{Resource: "worksheet", StatusCode: 403, Message: "denied"}

	_, err := writeback.New(dst).Write(context.Background(), sampleSet())
	require.Error(t, err)
	assert.True(t, errors.IsAccess(err))
	assert.Equal(t, []string{"clear"}, dst.Calls())
	assert.Len(t, dst.Rows(), 2, "content untouched")
}

func TestWriteFailsAfterClear(t *testing.T) {
	t.Run("write error", func(t *testing.T) {
		dst := sources.NewMemoryDestination()
		dst.WriteErr = errors.NewWriteError("worksheet", "write", stderrors.New("payload too large"))

		_, err := writeback.New(dst).Write(context.Background(), sampleSet())
		require.Error(t, err)

		var writeErr *errors.WriteError
		require.ErrorAs(t, err, &writeErr)
		assert.True(t, writeErr.Cleared)
	})

	t.Run("other error", func(t *testing.T) {
		dst := sources.NewMemoryDestination()
		dst.WriteErr = &errors.AccessError{Resource: "worksheet", StatusCode: 404}

		_, err := writeback.New(dst).Write(context.Background(), sampleSet())
		require.Error(t, err)
		assert.True(t, errors.IsWrite(err))
		assert.True(t, errors.IsAccess(err))
		assert.Contains(t, err.Error(), "destination was cleared")
	})
}

func TestRender(t *testing.T) {
	assert.Equal(t, [][]string{{"key", "eccn"}}, writeback.Render(records.New("key", "eccn")))
}
