package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/davicafu/hexatasks/shared/platform/persistence"
)

// SlotRepoMongoDB guarda el hueco como un documento de la colección 'slots'.
type SlotRepoMongoDB struct {
	coll *mongo.Collection
	key  string
}

var _ persistence.Slot = (*SlotRepoMongoDB)(nil)

// NewSlotRepoMongoDB es el constructor del repositorio.
func NewSlotRepoMongoDB(ctx context.Context, client *mongo.Client, dbName, key string) (*SlotRepoMongoDB, error) {
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("could not ping mongoDB: %w", err)
	}
	return &SlotRepoMongoDB{
		coll: client.Database(dbName).Collection("slots"),
		key:  key,
	}, nil
}

// mongoSlot es el documento BSON. El valor se guarda como string para conservar el contenido original.
type mongoSlot struct {
	Key       string    `bson:"_id"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

func (r *SlotRepoMongoDB) Read(ctx context.Context) ([]byte, bool, error) {
	var doc mongoSlot
	err := r.coll.FindOne(ctx, bson.M{"_id": r.key}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return []byte(doc.Value), true, nil
}

// Write reemplaza el documento entero (upsert), una única operación atómica.
func (r *SlotRepoMongoDB) Write(ctx context.Context, data []byte) error {
	doc := mongoSlot{Key: r.key, Value: string(data), UpdatedAt: time.Now().UTC()}
	opts := options.Replace().SetUpsert(true)
	if _, err := r.coll.ReplaceOne(ctx, bson.M{"_id": r.key}, doc, opts); err != nil {
		return fmt.Errorf("mongo replace: %w", err)
	}
	return nil
}
