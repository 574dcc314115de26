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

type orderRepo struct {
	coll *mongo.Collection
}

func (r orderRepo) Insert(ctx context.Context, o *models.Order) error {
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	_, err := r.coll.InsertOne(ctx, o)
	return translate(err)
}

func (r orderRepo) FindByID(ctx context.Context, id primitive.ObjectID) (models.Order, error) {
	var o models.Order
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&o)
	return o, translate(err)
}

func (r orderRepo) FindByItemID(ctx context.Context, itemID primitive.ObjectID) (models.Order, error) {
	var o models.Order
	err := r.coll.FindOne(ctx, bson.M{"items._id": itemID}).Decode(&o)
	return o, translate(err)
}

func (r orderRepo) FindOpenByTable(ctx context.Context, tableID primitive.ObjectID) (models.Order, error) {
	var o models.Order
	err := r.coll.FindOne(ctx, bson.M{"tableId": tableID, "status": models.OrderOpen}).Decode(&o)
	return o, translate(err)
}

func (r orderRepo) List(ctx context.Context, filter store.OrderFilter) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := r.coll.Find(ctx, orderFilterDocument(filter), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	orders := make([]models.Order, 0)
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r orderRepo) Replace(ctx context.Context, o models.Order) error {
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": o.ID}, o)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r orderRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r orderRepo) OpenOrderUsesProduct(ctx context.Context, productID primitive.ObjectID) (bool, error) {
	count, err := r.coll.CountDocuments(
		ctx,
		bson.M{"status": models.OrderOpen, "items.productId": productID},
		options.Count().SetLimit(1),
	)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func orderFilterDocument(filter store.OrderFilter) bson.M {
	doc := bson.M{}
	if filter.Status != "" {
		doc["status"] = filter.Status
	}
	if !filter.TableID.IsZero() {
		doc["tableId"] = filter.TableID
	}
	createdAt := bson.M{}
	if !filter.From.IsZero() {
		createdAt["$gte"] = filter.From
	}
	if !filter.To.IsZero() {
		createdAt["$lt"] = filter.To
	}
	if len(createdAt) > 0 {
		doc["createdAt"] = createdAt
	}
	return doc
}
