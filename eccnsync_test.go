package eccnsync_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/eccnsync"
	"github.com/agentstation/eccnsync/internal/jobs"
	"github.com/agentstation/eccnsync/internal/sheets"
	"github.com/agentstation/eccnsync/pkg/differ"
	"github.com/agentstation/eccnsync/pkg/errors"
	"github.com/agentstation/eccnsync/pkg/keys"
	"github.com/agentstation/eccnsync/pkg/records"
	"github.com/agentstation/eccnsync/pkg/schema"
	"github.com/agentstation/eccnsync/pkg/sources"
	"github.com/agentstation/eccnsync/pkg/writeback"
)

var header = []string{"Subform_id", "Date of Order Received", "Raptor Invoice", "ECCN", "Remarks"}

func testJob(name string) jobs.Job {
	return jobs.Job{
		Name:      name,
		ExportURL: "https://analytics.example.test/export",
		Sheet:     sheets.Config{SpreadsheetTitle: "Invoices", Worksheet: "MCM_3"},
		Schema: schema.Schema{
			Columns: header,
			Key:     keys.Single("Subform_id"),
			Date: schema.DateSpec{
				Column:        "Date of Order Received",
				SourceFormats: []string{"%d/%m/%Y"},
			},
			TieBreak: "Raptor Invoice",
			Blank:    []string{"Remarks"},
		},
	}
}

func sourceSet() records.RecordSet {
	return records.FromRows(
		[]string{"Subform_id", "Date of Order Received", "Raptor Invoice", "ECCN", "Remarks"},
		[][]string{
			{"A1", "01/02/2024", "INV1", "EAR99", "from export"},
			{"B2", "05/02/2024", "INV2", "", ""},
		},
	)
}

func destinationRows() [][]string {
	return [][]string{
		header,
		{"A1", "01/02/2024", "INV1", "", "checked by hand"},
		{"C3", "bad-date", "INV3", "5A992", ""},
	}
}

type fixture struct {
	client eccnsync.Client
	src    *sources.MemorySource
	dst    *sources.MemoryDestination
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		src: sources.NewMemorySource(sourceSet()),
		dst: sources.NewMemoryDestination(destinationRows()...),
	}
	client, err := eccnsync.New(
		eccnsync.WithSourceFactory(func(context.Context, jobs.Job) (sources.Source, error) { return f.src, nil }),
		eccnsync.WithDestinationFactory(func(context.Context, jobs.Job) (sources.Destination, error) { return f.dst, nil }),
	)
	require.NoError(t, err)
	f.client = client
	return f
}

func TestSync(t *testing.T) {
	f := newFixture(t)

	var added []string
	var updated []string
	f.client.OnRowAdded(func(job, key string, rec records.Record) {
		assert.Equal(t, "mcm", job)
		added = append(added, key)
	})
	f.client.OnRowUpdated(func(job, key string, changes []differ.FieldChange) {
		updated = append(updated, key)
		require.Len(t, changes, 1)
		assert.Equal(t, "ECCN", changes[0].Column)
		assert.Equal(t, "EAR99", changes[0].NewValue)
	})

	report, err := f.client.Sync(context.Background(), testJob("mcm"))
	require.NoError(t, err)

	assert.Equal(t, []string{"read", "clear", "write"}, f.dst.Calls())
	assert.Equal(t, [][]string{
		header,
		{"B2", "05/02/2024", "INV2", "", ""},
		{"A1", "01/02/2024", "INV1", "EAR99", "checked by hand"},
		{"C3", "bad-date", "INV3", "5A992", ""},
	}, f.dst.Rows())

	assert.Equal(t, "mcm", report.Job)
	assert.NotEmpty(t, report.RunID)
	assert.Empty(t, report.Error)
	assert.Equal(t, writeback.StatusWritten, report.Outcome.Status)
	assert.Equal(t, 3, report.Outcome.Rows)
	assert.Equal(t, 1, report.Stats.Added)
	assert.Equal(t, 1, report.Stats.Updated)
	assert.Equal(t, 1, report.Stats.Preserved)
	assert.Equal(t, 1, report.Stats.InvalidDates)
	assert.Equal(t, "field-authority", report.Strategy)

	assert.Equal(t, []string{"B2"}, added)
	assert.Equal(t, []string{"A1"}, updated)
}

func TestSyncIsIdempotent(t *testing.T) {
	f := newFixture(t)
	_, err := f.client.Sync(context.Background(), testJob("mcm"))
	require.NoError(t, err)
	first := f.dst.Rows()

	report, err := f.client.Sync(context.Background(), testJob("mcm"))
	require.NoError(t, err)
	assert.Equal(t, first, f.dst.Rows())
	assert.False(t, report.Changeset.HasChanges())
}

func TestSyncDryRun(t *testing.T) {
	f := newFixture(t)
	fired := false
	f.client.OnRowAdded(func(string, string, records.Record) { fired = true })

	report, err := f.client.Sync(context.Background(), testJob("mcm"), eccnsync.WithDryRun(true))
	require.NoError(t, err)
	assert.Equal(t, []string{"read"}, f.dst.Calls())
	assert.Equal(t, destinationRows(), f.dst.Rows())
	assert.Equal(t, writeback.StatusSkipped, report.Outcome.Status)
	assert.True(t, report.Changeset.HasChanges())
	assert.False(t, fired)
}

func TestSyncFailuresLeaveDestinationUntouched(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *fixture)
		check func(t *testing.T, err error)
		calls []string
	}{
		{
			name: "fetch error",
			setup: func(f *fixture) {
				f.src.Err = errors.NewFetchError("zoho", 500, "internal error", nil)
			},
			check: func(t *testing.T, err error) { assert.True(t, errors.IsFetch(err)) },
			calls: nil,
		},
		{
			name: "auth error",
			setup: func(f *fixture) {
				f.src.Err = &errors.AuthError{Provider: "zoho", StatusCode: 401}
			},
			check: func(t *testing.T, err error) { assert.True(t, errors.IsAuth(err)) },
			calls: nil,
		},
		{
			name: "read error",
			setup: func(f *fixture) {
				f.dst.ReadErr = &errors.AccessError{Resource: "spreadsheet", StatusCode: 403}
			},
			check: func(t *testing.T, err error) { assert.True(t, errors.IsAccess(err)) },
			calls: []string{"read"},
		},
		{
			name: "key column missing from source",
			setup: func(f *fixture) {
				f.src.Set = records.FromRows([]string{"Invoice_ID"}, [][]string{{"1"}})
			},
			check: func(t *testing.T, err error) { assert.True(t, errors.IsConfig(err)) },
			calls: []string{"read"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setup(f)

			report, err := f.client.Sync(context.Background(), testJob("mcm"))
			require.Error(t, err)
			tt.check(t, err)
			require.NotNil(t, report)
			assert.NotEmpty(t, report.Error)
			assert.Equal(t, tt.calls, f.dst.Calls())
			assert.Equal(t, destinationRows(), f.dst.Rows())
		})
	}
}

func TestSyncWriteFailureAfterClear(t *testing.T) {
	f := newFixture(t)
	f.dst.WriteErr = &errors.WriteError{Resource: "worksheet MCM_3", Operation: "write", StatusCode: 413}
	fired := false
	f.client.OnRowUpdated(func(string, string, []differ.FieldChange) { fired = true })

	_, err := f.client.Sync(context.Background(), testJob("mcm"))
	require.Error(t, err)
	var writeErr *errors.WriteError
	require.True(t, errors.As(err, &writeErr))
	assert.True(t, writeErr.Cleared)
	assert.False(t, fired)
}

func TestSyncEmptyIsNoOp(t *testing.T) {
	f := newFixture(t)
	f.src.Set = records.RecordSet{}
	f.dst = sources.NewMemoryDestination()

	report, err := f.client.Sync(context.Background(), testJob("mcm"))
	require.NoError(t, err)
	assert.Equal(t, writeback.StatusNoOp, report.Outcome.Status)
	assert.Equal(t, []string{"read"}, f.dst.Calls())
}

func TestSyncInvalidJob(t *testing.T) {
	f := newFixture(t)
	job := testJob("broken")
	job.Schema.TieBreak = "Not a column"

	_, err := f.client.Sync(context.Background(), job)
	require.Error(t, err)
	assert.True(t, errors.IsConfig(err))
	assert.Empty(t, f.dst.Calls())
}

func TestSyncAll(t *testing.T) {
	f := newFixture(t)
	bad := testJob("bad")
	bad.ExportURL = ""

	reports, err := f.client.SyncAll(context.Background(), []jobs.Job{bad, testJob("mcm")})
	require.Error(t, err)
	assert.True(t, errors.IsConfig(err))
	require.Len(t, reports, 2)
	assert.NotEmpty(t, reports[0].Error)
	assert.Empty(t, reports[1].Error)
	assert.Equal(t, reports[0].RunID, reports[1].RunID, "jobs of one run share the run ID")
	assert.Equal(t, writeback.StatusWritten, reports[1].Outcome.Status)
}

func TestNewRejectsNilFactories(t *testing.T) {
	_, err := eccnsync.New(eccnsync.WithSourceFactory(nil))
	assert.True(t, errors.IsValidationError(err))

	_, err = eccnsync.New(eccnsync.WithDestinationFactory(nil))
	assert.True(t, errors.IsValidationError(err))
}

func TestDefaultDestinationNeedsGoogleCredentials(t *testing.T) {
	client, err := eccnsync.New(
		eccnsync.WithSourceFactory(func(context.Context, jobs.Job) (sources.Source, error) {
			return sources.NewMemorySource(sourceSet()), nil
		}),
	)
	require.NoError(t, err)

	_, err = client.Sync(context.Background(), testJob("mcm"))
	require.Error(t, err)
	assert.True(t, errors.IsConfig(err))
}

func TestReconcile(t *testing.T) {
	s := testJob("mcm").Schema
	src := sourceSet()
	dst := records.FromRows(destinationRows()[0], destinationRows()[1:])

	out, err := eccnsync.Reconcile(context.Background(), src, dst, s)
	require.NoError(t, err)
	assert.Equal(t, header, out.Set.Columns)
	require.Equal(t, 3, out.Set.Len())

	got := make([]string, out.Set.Len())
	for i, r := range out.Set.Records {
		got[i] = r.Get("Subform_id").Text()
	}
	assert.Equal(t, []string{"B2", "A1", "C3"}, got)
	assert.Equal(t, 2, src.Len(), "inputs are not modified")
	assert.Equal(t, "", dst.Records[0].Get("ECCN").Text())

	t.Run("self reconciliation is a fixed point", func(t *testing.T) {
		again, err := eccnsync.Reconcile(context.Background(), out.Set, out.Set, s)
		require.NoError(t, err)
		assert.Equal(t, out.Set.Rows(), again.Set.Rows())
	})
}
