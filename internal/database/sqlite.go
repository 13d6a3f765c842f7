package database

import (
	"context"

	_ "modernc.org/sqlite"

	"customer-segmentation/internal/customer"
)

// SQLiteDriver stores segments in a local SQLite file; the DSN is the
// file path.
type SQLiteDriver struct {
	sqlDriver
}

func (sd *SQLiteDriver) Connect(dsn string) error {
	if err := sd.open("sqlite", dsn); err != nil {
		return err
	}
	sd.db.SetMaxOpenConns(1)
	return nil
}

func (sd *SQLiteDriver) EnsureSchema(ctx context.Context) error {
	_, err := sd.db.ExecContext(ctx, GetSQLiteSegmentsSchema())
	return err
}

func (sd *SQLiteDriver) SaveSegments(ctx context.Context, runID string, table *customer.Table) (int64, error) {
	return saveSegments(ctx, sd, runID, table)
}
