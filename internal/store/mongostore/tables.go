package mongostore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"diningroom/internal/models"
	"diningroom/internal/store"
)

type tableRepo struct {
	coll *mongo.Collection
}

func (r tableRepo) Insert(ctx context.Context, t *models.Table) error {
	if t.ID.IsZero() {
		t.ID = primitive.NewObjectID()
	}
	_, err := r.coll.InsertOne(ctx, t)
	return translate(err)
}

func (r tableRepo) FindByID(ctx context.Context, id primitive.ObjectID) (models.Table, error) {
	var t models.Table
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&t)
	return t, translate(err)
}

func (r tableRepo) List(ctx context.Context) ([]models.Table, error) {
	opts := options.Find().SetSort(bson.D{{Key: "number", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	tables := make([]models.Table, 0)
	if err := cursor.All(ctx, &tables); err != nil {
		return nil, err
	}
	return tables, nil
}

func (r tableRepo) Replace(ctx context.Context, t models.Table) error {
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": t.ID}, t)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r tableRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
