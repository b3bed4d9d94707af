package services

import (
	"bytes"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/triggerNode/BuxTax/src/database"
	"github.com/triggerNode/BuxTax/src/models"
	"github.com/triggerNode/BuxTax/src/parsers"
	"github.com/triggerNode/BuxTax/src/processors"
	"github.com/triggerNode/BuxTax/src/rates"
)

const summaryCSV = `Date,Gross Robux,Net Robux,Ad Spend
2025-01-01,1000,,100
2025-01-02,2000,,
bad-date,500,,
`

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestUploadService(t *testing.T, db *sql.DB) *uploadServiceImpl {
	t.Helper()
	r := rates.Default()
	svc := NewUploadService(
		db,
		parsers.NewCSVParser(r, nil),
		processors.NewPulseProcessor(r),
		processors.NewGoalProcessor(),
		cache.New(DefaultCacheExpiration, CacheCleanupInterval),
	).(*uploadServiceImpl)
	svc.now = func() time.Time { return time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestPreviewHeaders(t *testing.T) {
	svc := newTestUploadService(t, openTestDB(t))

	preview, err := svc.PreviewHeaders(strings.NewReader(summaryCSV))
	require.NoError(t, err)
	assert.Equal(t, []string{"Date", "Gross Robux", "Net Robux", "Ad Spend"}, preview.Headers)
	assert.Equal(t, "Gross Robux", preview.SuggestedMapping.GrossAmount)
	assert.Equal(t, "Ad Spend", preview.SuggestedMapping.AdSpend)
	assert.Equal(t, models.FormatSummary, preview.Format)
	assert.Empty(t, preview.Problems)

	_, err = svc.PreviewHeaders(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrParsingFailed)
}

func TestProcessUploadStoresLatest(t *testing.T) {
	db := openTestDB(t)
	svc := newTestUploadService(t, db)

	res, err := svc.ProcessUpload(strings.NewReader(summaryCSV), "payouts.csv", "user-1", nil)
	require.NoError(t, err)
	require.NotNil(t, res.Upload)
	assert.NotEmpty(t, res.Upload.ID)
	assert.Equal(t, 3, res.Upload.TotalRows)
	assert.Equal(t, 2, res.Upload.ValidRows)
	assert.Equal(t, []string{"Row 3: Invalid date 'bad-date'"}, res.Upload.Errors)
	assert.Equal(t, "1 rows had issues, 2 processed successfully", res.Message)

	latest, err := svc.GetLatestUpload("user-1")
	require.NoError(t, err)
	assert.Equal(t, res.Upload.ID, latest.ID)
	require.Len(t, latest.Records, 2)
	assert.Equal(t, 900.0, latest.Records[0].NetAmount)
	assert.Equal(t, models.DateRange{Start: "2025-01-01", End: "2025-01-02"}, latest.DateRange)

	_, err = svc.GetLatestUpload("someone-else")
	assert.ErrorIs(t, err, ErrNoUploadData)
}

func TestProcessUploadRejectsBadMapping(t *testing.T) {
	svc := newTestUploadService(t, openTestDB(t))

	mapping := &models.ColumnMapping{Date: "Date", GrossAmount: "Revenue"}
	_, err := svc.ProcessUpload(strings.NewReader(summaryCSV), "payouts.csv", "user-1", mapping)
	require.ErrorIs(t, err, ErrInvalidMapping)
	assert.Equal(t, []string{"Column 'Revenue' mapped to grossAmount does not exist in the file"}, ErrorDetails(err))

	_, err = svc.GetLatestUpload("user-1")
	assert.ErrorIs(t, err, ErrNoUploadData)
}

func TestProcessUploadWithoutValidRows(t *testing.T) {
	svc := newTestUploadService(t, openTestDB(t))

	_, err := svc.ProcessUpload(strings.NewReader("Date,Gross Robux\nnope,10\n"), "bad.csv", "user-1", nil)
	require.ErrorIs(t, err, ErrParsingFailed)
	details := ErrorDetails(err)
	require.Len(t, details, 2)
	assert.Equal(t, "No valid payout rows found", details[0])

	_, err = svc.ProcessUpload(strings.NewReader(""), "empty.csv", "user-1", nil)
	assert.True(t, errors.Is(err, ErrParsingFailed))
}

func TestUploadInvalidatesCachedReports(t *testing.T) {
	svc := newTestUploadService(t, openTestDB(t))

	_, err := svc.ProcessUpload(strings.NewReader(summaryCSV), "first.csv", "user-1", nil)
	require.NoError(t, err)

	pulse, err := svc.GetPulse("user-1", processors.WindowAll)
	require.NoError(t, err)
	assert.Equal(t, 3000.0, pulse.TotalGross)
	assert.Equal(t, 2900.0, pulse.TotalNet)

	_, err = svc.ProcessUpload(strings.NewReader("Date,Gross Robux\n2025-01-05,500\n"), "second.csv", "user-1", nil)
	require.NoError(t, err)

	pulse, err = svc.GetPulse("user-1", processors.WindowAll)
	require.NoError(t, err)
	assert.Equal(t, 500.0, pulse.TotalGross)
	assert.Equal(t, 1, pulse.Records)

	latest, err := svc.GetLatestUpload("user-1")
	require.NoError(t, err)
	assert.Equal(t, "second.csv", latest.Filename)
}

func TestGetPulseInvalidWindow(t *testing.T) {
	svc := newTestUploadService(t, openTestDB(t))
	_, err := svc.ProcessUpload(strings.NewReader(summaryCSV), "payouts.csv", "user-1", nil)
	require.NoError(t, err)

	_, err = svc.GetPulse("user-1", "7y")
	assert.ErrorIs(t, err, processors.ErrInvalidWindow)
}

func TestGetGoalProgress(t *testing.T) {
	svc := newTestUploadService(t, openTestDB(t))
	_, err := svc.ProcessUpload(strings.NewReader(summaryCSV), "payouts.csv", "user-1", nil)
	require.NoError(t, err)

	progress, err := svc.GetGoalProgress("user-1", 100, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 100.0, progress.TargetUSD)
	assert.InDelta(t, 11.01, progress.EarnedUSD, 0.01)
	assert.False(t, progress.HasProjection)

	_, err = svc.GetGoalProgress("user-1", 0, time.Time{})
	assert.ErrorIs(t, err, processors.ErrInvalidTarget)

	_, err = svc.GetGoalProgress("nobody", 100, time.Time{})
	assert.ErrorIs(t, err, ErrNoUploadData)
}

func TestExportLatestRoundTrip(t *testing.T) {
	svc := newTestUploadService(t, openTestDB(t))
	_, err := svc.ProcessUpload(strings.NewReader(summaryCSV), "payouts.csv", "user-1", nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportLatest(&buf, "user-1"))
	assert.True(t, strings.HasPrefix(buf.String(), strings.Join(parsers.ExportHeaders, ",")))

	mapping := parsers.ExportMapping()
	res, err := svc.ProcessUpload(&buf, "export.csv", "user-2", &mapping)
	require.NoError(t, err)
	require.Len(t, res.Upload.Records, 2)
	assert.Equal(t, 900.0, res.Upload.Records[0].NetAmount)
	assert.Equal(t, 100.0, res.Upload.Records[0].AdSpend)

	assert.ErrorIs(t, svc.ExportLatest(&buf, "nobody"), ErrNoUploadData)
}

func TestDeleteUploads(t *testing.T) {
	svc := newTestUploadService(t, openTestDB(t))
	_, err := svc.ProcessUpload(strings.NewReader(summaryCSV), "payouts.csv", "user-1", nil)
	require.NoError(t, err)
	_, err = svc.GetLatestUpload("user-1")
	require.NoError(t, err)

	n, err := svc.DeleteUploads("user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = svc.GetLatestUpload("user-1")
	assert.ErrorIs(t, err, ErrNoUploadData)
}
