package synth

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"customer-segmentation/internal/loader"
)

var ref = time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC)

func TestGenerate_Deterministic(t *testing.T) {
	opts := Options{Rows: 30, Seed: 9, ReferenceDate: ref, Duplicates: 2, Missing: 1}

	a := Generate(opts)
	b := Generate(opts)

	require.Equal(t, 33, a.Len())
	for i := range a.Records {
		assert.Equal(t, a.Records[i].Raw, b.Records[i].Raw)
	}
	assert.Nil(t, a.Records[32].TotalSpend)
}

func TestGenerate_DuplicatesReuseIDs(t *testing.T) {
	table := Generate(Options{Rows: 10, Seed: 1, ReferenceDate: ref, Duplicates: 3})

	ids := map[string]int{}
	for _, r := range table.Records {
		ids[r.CustomerID]++
	}
	assert.Len(t, ids, 10)
}

func TestWriteCSV_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "customers.csv")
	table := Generate(Options{Rows: 12, Seed: 3, ReferenceDate: ref, Missing: 1})
	require.NoError(t, WriteCSV(path, table))

	loaded, err := loader.Load(path)
	require.NoError(t, err)
	require.Equal(t, table.Len(), loaded.Len())

	for i := range table.Records {
		want, got := table.Records[i], loaded.Records[i]
		assert.Equal(t, want.CustomerID, got.CustomerID)
		assert.Equal(t, want.Complete(), got.Complete())
		if want.Complete() {
			assert.Equal(t, *want.TotalSpend, *got.TotalSpend)
			assert.Equal(t, *want.TotalOrders, *got.TotalOrders)
			assert.True(t, want.LastPurchaseDate.Equal(*got.LastPurchaseDate))
		}
	}
}
