package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"customer-segmentation/internal/customer"
)

type PostgresDriver struct {
	conn *pgx.Conn
}

func (pd *PostgresDriver) Connect(dsn string) error {
	conn, err := pgx.Connect(context.Background(), dsn)
	if err != nil {
		return err
	}
	pd.conn = conn
	return nil
}

func (pd *PostgresDriver) Close() error {
	if pd.conn == nil {
		return nil
	}
	return pd.conn.Close(context.Background())
}

func (pd *PostgresDriver) Reset(ctx context.Context) error {
	_, err := pd.conn.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", SegmentsTable))
	return err
}

func (pd *PostgresDriver) EnsureSchema(ctx context.Context) error {
	_, err := pd.conn.Exec(ctx, GetPostgresSegmentsSchema())
	return err
}

func (pd *PostgresDriver) ExecuteTx(ctx context.Context, txFunc func(interface{}) error) (err error) {
	tx, err := pd.conn.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback(ctx)
			panic(p) // re-panic after rollback
		} else if err != nil {
			tx.Rollback(ctx) // err is non-nil; don't change it
		} else {
			err = tx.Commit(ctx) // err is nil; if Commit returns error, update err
		}
	}()

	err = txFunc(tx)
	return err
}

func (pd *PostgresDriver) SaveSegments(ctx context.Context, runID string, table *customer.Table) (int64, error) {
	return saveSegments(ctx, pd, runID, table)
}
