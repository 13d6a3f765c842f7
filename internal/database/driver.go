package database

import (
	"context"
	"fmt"

	"customer-segmentation/internal/customer"
)

// Driver persists labelled customers to a database.
type Driver interface {
	Connect(dsn string) error
	Close() error
	// Reset drops the segments table or collection.
	Reset(ctx context.Context) error
	EnsureSchema(ctx context.Context) error
	ExecuteTx(ctx context.Context, txFunc func(interface{}) error) error
	SaveSegments(ctx context.Context, runID string, table *customer.Table) (int64, error)
}

// Open returns an unconnected driver for kind.
func Open(kind string) (Driver, error) {
	dbs := map[string]func() Driver{
		"postgres": func() Driver { return &PostgresDriver{} },
		"mysql":    func() Driver { return &MySQLDriver{} },
		"sqlite":   func() Driver { return &SQLiteDriver{} },
		"mongo":    func() Driver { return &MongoDriver{} },
	}

	newDriver, ok := dbs[kind]
	if !ok {
		return nil, fmt.Errorf("unsupported database type: %s", kind)
	}
	return newDriver(), nil
}
