package database

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"customer-segmentation/internal/customer"
)

func segmentedTable(n int) *customer.Table {
	table := &customer.Table{Header: customer.RequiredColumns}
	for i := 0; i < n; i++ {
		table.Records = append(table.Records, customer.Record{
			CustomerID: fmt.Sprintf("C%04d", i),
			Recency:    int64(i),
			Frequency:  int64(i % 7),
			Monetary:   float64(i) * 1.5,
			Segment:    i % 3,
			Tier:       customer.Tiers[i%3],
		})
	}
	return table
}

func TestOpen(t *testing.T) {
	for _, kind := range []string{"postgres", "mysql", "sqlite", "mongo"} {
		d, err := Open(kind)
		require.NoError(t, err, kind)
		assert.NotNil(t, d)
	}

	_, err := Open("oracle")
	assert.Error(t, err)
}

func TestInsertStatement(t *testing.T) {
	stmt := insertStatement(2)
	assert.True(t, strings.HasPrefix(stmt, "INSERT INTO customer_segments (run_id, customer_id, recency, frequency, monetary, segment, tier, created_at) VALUES "))
	assert.Equal(t, 16, strings.Count(stmt, "?"))
	assert.Equal(t, 1, strings.Count(stmt, "),("))
}

func TestSegmentDocuments(t *testing.T) {
	created := time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC)
	docs := segmentDocuments(segmentRows("run-1", segmentedTable(2), created))
	require.Len(t, docs, 2)

	doc := docs[1].(bson.M)
	assert.Equal(t, "run-1/C0001", doc["_id"])
	assert.Equal(t, "C0001", doc["customer_id"])
	assert.Equal(t, int64(1), doc["recency"])
	assert.Equal(t, 1, doc["segment"])
	assert.Equal(t, "Medium Value", doc["tier"])
	assert.Equal(t, created, doc["created_at"])
}

func TestWriteBatch_UnsupportedTx(t *testing.T) {
	err := writeBatch(context.Background(), "not a tx", nil)
	assert.ErrorContains(t, err, "unsupported transaction type")
}

func TestSQLiteDriver_SaveSegments(t *testing.T) {
	ctx := context.Background()
	d := &SQLiteDriver{}
	require.NoError(t, d.Connect(filepath.Join(t.TempDir(), "segments.db")))
	defer d.Close()

	require.NoError(t, d.Reset(ctx))
	require.NoError(t, d.EnsureSchema(ctx))

	runID := uuid.NewString()
	table := segmentedTable(batchSize + 25)
	n, err := d.SaveSegments(ctx, runID, table)
	require.NoError(t, err)
	assert.Equal(t, int64(table.Len()), n)

	var count int
	require.NoError(t, d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM customer_segments WHERE run_id = ?", runID).Scan(&count))
	assert.Equal(t, table.Len(), count)

	var tier string
	var monetary float64
	require.NoError(t, d.db.QueryRowContext(ctx,
		"SELECT tier, monetary FROM customer_segments WHERE run_id = ? AND customer_id = ?", runID, "C0004").Scan(&tier, &monetary))
	assert.Equal(t, "Medium Value", tier)
	assert.Equal(t, 6.0, monetary)

	// A second save of the same run violates the primary key and rolls back.
	_, err = d.SaveSegments(ctx, runID, segmentedTable(1))
	assert.Error(t, err)
	require.NoError(t, d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM customer_segments").Scan(&count))
	assert.Equal(t, table.Len(), count)
}

func TestSQLiteDriver_EmptyTable(t *testing.T) {
	ctx := context.Background()
	d := &SQLiteDriver{}
	require.NoError(t, d.Connect(filepath.Join(t.TempDir(), "segments.db")))
	defer d.Close()
	require.NoError(t, d.EnsureSchema(ctx))

	n, err := d.SaveSegments(ctx, uuid.NewString(), &customer.Table{})
	require.NoError(t, err)
	assert.Zero(t, n)
}
