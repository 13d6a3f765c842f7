package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"customer-segmentation/internal/customer"
)

const (
	DatabaseName = "segmentation"
	batchSize    = 500
)

var segmentColumns = []string{"run_id", "customer_id", "recency", "frequency", "monetary", "segment", "tier", "created_at"}

func segmentRows(runID string, table *customer.Table, createdAt time.Time) [][]interface{} {
	rows := make([][]interface{}, table.Len())
	for i, r := range table.Records {
		rows[i] = []interface{}{
			runID,
			r.CustomerID,
			r.Recency,
			r.Frequency,
			r.Monetary,
			r.Segment,
			string(r.Tier),
			createdAt,
		}
	}
	return rows
}

func insertStatement(rows int) string {
	placeholder := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(segmentColumns)), ", ") + ")"
	valueStrings := make([]string, rows)
	for i := range valueStrings {
		valueStrings[i] = placeholder
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES %s", SegmentsTable, strings.Join(segmentColumns, ", "), strings.Join(valueStrings, ","))
}

func segmentDocuments(rows [][]interface{}) []interface{} {
	docs := make([]interface{}, len(rows))
	for i, row := range rows {
		docs[i] = bson.M{
			"_id":         fmt.Sprintf("%s/%s", row[0], row[1]),
			"run_id":      row[0],
			"customer_id": row[1],
			"recency":     row[2],
			"frequency":   row[3],
			"monetary":    row[4],
			"segment":     row[5],
			"tier":        row[6],
			"created_at":  row[7],
		}
	}
	return docs
}

// writeBatch inserts rows through whichever transaction handle the driver
// handed to its ExecuteTx callback.
func writeBatch(ctx context.Context, tx interface{}, rows [][]interface{}) error {
	switch tx := tx.(type) {
	case pgx.Tx:
		_, err := tx.CopyFrom(
			ctx,
			pgx.Identifier{SegmentsTable},
			segmentColumns,
			pgx.CopyFromRows(rows),
		)
		return err
	case *sql.Tx:
		valueArgs := make([]interface{}, 0, len(rows)*len(segmentColumns))
		for _, row := range rows {
			valueArgs = append(valueArgs, row...)
		}
		_, err := tx.ExecContext(ctx, insertStatement(len(rows)), valueArgs...)
		return err
	case mongo.SessionContext:
		_, err := tx.Client().Database(DatabaseName).Collection(SegmentsTable).InsertMany(tx, segmentDocuments(rows))
		return err
	default:
		return fmt.Errorf("unsupported transaction type: %T", tx)
	}
}

// saveSegments writes the table in batches inside a single transaction.
func saveSegments(ctx context.Context, db Driver, runID string, table *customer.Table) (int64, error) {
	rows := segmentRows(runID, table, time.Now().UTC())
	if len(rows) == 0 {
		return 0, nil
	}

	err := db.ExecuteTx(ctx, func(tx interface{}) error {
		for start := 0; start < len(rows); start += batchSize {
			end := start + batchSize
			if end > len(rows) {
				end = len(rows)
			}
			if err := writeBatch(ctx, tx, rows[start:end]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return int64(len(rows)), nil
}
