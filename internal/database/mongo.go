package database

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"customer-segmentation/internal/customer"
)

type MongoDriver struct {
	client *mongo.Client
}

func (md *MongoDriver) Connect(dsn string) error {
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(dsn))
	if err != nil {
		return err
	}
	md.client = client
	return nil
}

func (md *MongoDriver) Close() error {
	if md.client == nil {
		return nil
	}
	return md.client.Disconnect(context.Background())
}

func (md *MongoDriver) collection() *mongo.Collection {
	return md.client.Database(DatabaseName).Collection(SegmentsTable)
}

func (md *MongoDriver) Reset(ctx context.Context) error {
	return md.collection().Drop(ctx)
}

// EnsureSchema adds the run/customer index; collections are created
// implicitly.
func (md *MongoDriver) EnsureSchema(ctx context.Context) error {
	_, err := md.collection().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "run_id", Value: 1}, {Key: "customer_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (md *MongoDriver) ExecuteTx(ctx context.Context, txFunc func(interface{}) error) error {
	session, err := md.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		if err := txFunc(sessCtx); err != nil {
			return nil, err
		}
		return nil, nil
	})

	return err
}

func (md *MongoDriver) SaveSegments(ctx context.Context, runID string, table *customer.Table) (int64, error) {
	return saveSegments(ctx, md, runID, table)
}
