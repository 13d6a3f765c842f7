package report

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"customer-segmentation/internal/customer"
	"customer-segmentation/internal/tier"
)

func labelled() *customer.Table {
	mk := func(id string, recency int64, monetary float64, seg int, t customer.Tier) customer.Record {
		return customer.Record{
			CustomerID: id,
			Raw: map[string]string{
				customer.ColCustomerID:       id,
				"Name":                       "n-" + id,
				customer.ColTotalSpend:       "raw",
				customer.ColTotalOrders:      "2",
				customer.ColAvgOrderValue:    "1",
				customer.ColLastPurchaseDate: "2025-08-01",
			},
			Recency:   recency,
			Frequency: 2,
			Monetary:  monetary,
			Segment:   seg,
			Tier:      t,
		}
	}
	return &customer.Table{
		Header: []string{customer.ColCustomerID, "Name", customer.ColTotalSpend, customer.ColTotalOrders, customer.ColAvgOrderValue, customer.ColLastPurchaseDate},
		Records: []customer.Record{
			mk("A", 14, 120.5, 2, customer.TierLow),
			mk("B", -3, 9000, 0, customer.TierHigh),
			mk("C", 40, 800, 1, customer.TierMedium),
			mk("D", 10, 9500, 0, customer.TierHigh),
		},
	}
}

func testPaths(dir string) Paths {
	return Paths{
		TierDistribution:  filepath.Join(dir, "tier_distribution.png"),
		SpendDistribution: filepath.Join(dir, "spend_distribution.png"),
		RecencyVsMonetary: filepath.Join(dir, "recency_vs_monetary.png"),
	}
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "customer_segments.csv")
	require.NoError(t, WriteCSV(path, labelled()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 5)
	assert.Equal(t, []string{
		"CustomerID", "Name", "TotalSpend", "TotalOrders", "AvgOrderValue", "LastPurchaseDate",
		"Recency", "Frequency", "Monetary", "Segment", "Tier",
	}, rows[0])
	assert.Equal(t, []string{"A", "n-A", "raw", "2", "1", "2025-08-01", "14", "2", "120.5", "2", "Low Value"}, rows[1])
	assert.Equal(t, "-3", rows[2][6])
	assert.Equal(t, "High Value", rows[2][10])
}

func TestWriteCSV_Unwritable(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	err := WriteCSV(filepath.Join(blocker, "out.csv"), labelled())
	assert.ErrorIs(t, err, customer.ErrIO)
}

func TestBuildCharts(t *testing.T) {
	charts := BuildCharts(labelled(), testPaths("charts"))
	require.Len(t, charts, 3)

	bar := charts[0]
	assert.Equal(t, Bar, bar.Kind)
	assert.Equal(t, "Tier Distribution", bar.Title)
	assert.Equal(t, []string{"High Value", "Medium Value", "Low Value"}, bar.Categories)
	assert.Equal(t, []float64{2, 1, 1}, bar.Counts)

	box := charts[1]
	assert.Equal(t, Box, box.Kind)
	assert.Equal(t, [][]float64{{9000, 9500}, {800}, {120.5}}, box.Groups)

	scatter := charts[2]
	assert.Equal(t, Scatter, scatter.Kind)
	require.Len(t, scatter.Series, 3)
	assert.Equal(t, "High Value", scatter.Series[0].Name)
	assert.Equal(t, []Point{{X: -3, Y: 9000}, {X: 10, Y: 9500}}, scatter.Series[0].Points)
}

func TestPNGSink(t *testing.T) {
	dir := t.TempDir()
	paths := testPaths(dir)

	require.NoError(t, RenderAll(context.Background(), NewPNGSink(), BuildCharts(labelled(), paths)))

	for _, p := range paths.List() {
		info, err := os.Stat(p)
		require.NoError(t, err, p)
		assert.Greater(t, info.Size(), int64(0))
	}
}

func TestPNGSink_Unwritable(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	err := RenderAll(context.Background(), NewPNGSink(), BuildCharts(labelled(), testPaths(blocker)))
	assert.ErrorIs(t, err, customer.ErrIO)
}

func TestMemorySink(t *testing.T) {
	sink := &MemorySink{}
	require.NoError(t, RenderAll(context.Background(), sink, BuildCharts(labelled(), testPaths("x"))))
	require.Len(t, sink.Charts, 3)
	assert.Equal(t, filepath.Join("x", "recency_vs_monetary.png"), sink.Charts[2].Path)
}

func TestRenderAll_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sink := &MemorySink{}
	err := RenderAll(ctx, sink, BuildCharts(labelled(), testPaths("x")))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, sink.Charts)
}

func TestWriteWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "segments.xlsx")
	summaries := []tier.Summary{
		{Segment: 0, Tier: customer.TierHigh, Customers: 2, MeanMonetary: 9250},
		{Segment: 1, Tier: customer.TierMedium, Customers: 1, MeanMonetary: 800},
		{Segment: 2, Tier: customer.TierLow, Customers: 1, MeanMonetary: 120.5},
	}
	require.NoError(t, WriteWorkbook(path, labelled(), summaries))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SegmentsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, "Tier", rows[0][10])
	assert.Equal(t, "A", rows[1][0])
	assert.Equal(t, "Low Value", rows[1][10])

	tiers, err := f.GetRows(TiersSheet)
	require.NoError(t, err)
	require.Len(t, tiers, 4)
	assert.Equal(t, "High Value", tiers[1][0])
	assert.Equal(t, "2", tiers[1][2])
}

func TestAddSheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, addSheet(f, TiersSheet))
	assert.Error(t, addSheet(f, "bad:name"))
	assert.Error(t, addSheet(f, "a sheet name longer than thirty-one characters"))
}
