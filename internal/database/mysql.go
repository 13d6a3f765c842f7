package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"

	"customer-segmentation/internal/customer"
)

// sqlDriver is shared by the database/sql backed drivers.
type sqlDriver struct {
	db *sql.DB
}

func (sd *sqlDriver) open(driverName, dsn string) error {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return err
	}
	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		return err
	}
	sd.db = db
	return nil
}

func (sd *sqlDriver) Close() error {
	if sd.db == nil {
		return nil
	}
	return sd.db.Close()
}

func (sd *sqlDriver) Reset(ctx context.Context) error {
	_, err := sd.db.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", SegmentsTable))
	return err
}

func (sd *sqlDriver) ExecuteTx(ctx context.Context, txFunc func(interface{}) error) error {
	tx, err := sd.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if err := txFunc(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

type MySQLDriver struct {
	sqlDriver
}

func (md *MySQLDriver) Connect(dsn string) error {
	return md.open("mysql", dsn)
}

func (md *MySQLDriver) EnsureSchema(ctx context.Context) error {
	_, err := md.db.ExecContext(ctx, GetMySQLSegmentsSchema())
	return err
}

func (md *MySQLDriver) SaveSegments(ctx context.Context, runID string, table *customer.Table) (int64, error) {
	return saveSegments(ctx, md, runID, table)
}
