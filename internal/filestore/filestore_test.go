package filestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/eccnsync/pkg/errors"
	"github.com/agentstation/eccnsync/pkg/sources"
)

const exportXML = `<?xml version="1.0" encoding="UTF-8"?>
<response uri="/api/owner/ws/view" action="EXPORT">
<result>
<rows>
<row><column name="Subform_id">S1</column><column name="Date of Order Received">05/03/2024</column></row>
<row><column name="Subform_id">S2</column><column name="Date of Order Received">06/03/2024</column></row>
</rows>
</result>
</response>`

func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestSourceXML(t *testing.T) {
	path := write(t, t.TempDir(), "export.xml", exportXML)
	src := NewSource(path)
	assert.Equal(t, sources.XMLFileID, src.ID())

	set, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Subform_id", "Date of Order Received"}, set.Columns)
	assert.Equal(t, 2, set.Len())
	assert.Equal(t, "S2", set.Records[1].Get("Subform_id").Text())
}

func TestSourceCSV(t *testing.T) {
	path := write(t, t.TempDir(), "export.CSV", "Subform_id,ECCN\nS1,EAR99\n,\nS2,\n")
	src := NewSource(path)
	assert.Equal(t, sources.CSVFileID, src.ID())

	set, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, set.Len(), "blank rows are skipped")
	assert.True(t, set.Records[1].Get("ECCN").IsNull())
}

func TestSourceErrors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		_, err := NewSource(filepath.Join(dir, "nope.xml")).Fetch(context.Background())
		require.Error(t, err)
		assert.True(t, errors.IsFetch(err))
		assert.True(t, errors.Is(err, os.ErrNotExist))
		var ioErr *errors.IOError
		require.True(t, errors.As(err, &ioErr))
		assert.Equal(t, "open", ioErr.Operation)
	})

	t.Run("malformed csv", func(t *testing.T) {
		path := write(t, dir, "bad.csv", "a,b\n\"unterminated,1\n")
		_, err := NewSource(path).Fetch(context.Background())
		require.Error(t, err)
		assert.True(t, errors.IsFetch(err))
		var perr *errors.ParseError
		require.True(t, errors.As(err, &perr))
		assert.Equal(t, "csv", perr.Format)
	})
}

func TestDestinationReadMissingIsEmpty(t *testing.T) {
	d := NewDestination(filepath.Join(t.TempDir(), "sheet.csv"), "")
	set, err := d.Read(context.Background())
	require.NoError(t, err)
	assert.True(t, set.IsEmpty())
	assert.Empty(t, set.Columns)
}

func TestDestinationRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := write(t, dir, "sheet.csv", "Subform_id,Remarks\nS1,keep me\n")
	d := NewDestination(path, "")
	ctx := context.Background()

	set, err := d.Read(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, set.Len())
	assert.Equal(t, "keep me", set.Records[0].Get("Remarks").Text())

	rows := [][]string{{"Subform_id", "Remarks"}, {"S2", ""}, {"S1", "keep me, really"}}
	require.NoError(t, d.Clear(ctx))
	require.NoError(t, d.Write(ctx, rows))

	got, err := d.Read(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, got.Len())
	assert.Equal(t, "keep me, really", got.Records[1].Get("Remarks").Text())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files left behind")
}

func TestDestinationSeparateOutput(t *testing.T) {
	dir := t.TempDir()
	in := write(t, dir, "sheet.csv", "Subform_id\nS1\n")
	out := filepath.Join(dir, "out", "result.csv")
	d := NewDestination(in, out)
	ctx := context.Background()

	require.NoError(t, d.Clear(ctx))
	require.NoError(t, d.Write(ctx, [][]string{{"Subform_id"}, {"S9"}}))

	original, err := os.ReadFile(in)
	require.NoError(t, err)
	assert.Equal(t, "Subform_id\nS1\n", string(original))

	written, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "Subform_id\nS9\n", string(written))
}

func TestDestinationWriteFailureReportsCleared(t *testing.T) {
	dir := t.TempDir()
	d := NewDestination(filepath.Join(dir, "sheet.csv"), "")
	require.NoError(t, d.Clear(context.Background()))

	d.Output = filepath.Join(dir, "missing-dir", "sheet.csv")
	err := d.Write(context.Background(), [][]string{{"a"}})
	require.Error(t, err)
	var werr *errors.WriteError
	require.True(t, errors.As(err, &werr))
	assert.True(t, werr.Cleared)
	var ioErr *errors.IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, "create", ioErr.Operation)
	assert.Equal(t, filepath.Join(dir, "missing-dir"), ioErr.Path)
}

func TestDestinationReadUnreadable(t *testing.T) {
	dir := t.TempDir()
	d := NewDestination(dir, "")

	_, err := d.Read(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsAccess(err))
	var ioErr *errors.IOError
	require.True(t, errors.As(err, &ioErr))
}
