package database

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	TablesCollection   = "tables"
	ProductsCollection = "products"
	OrdersCollection   = "orders"
	UsersCollection    = "users"
)

func EnsureTableIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection(TablesCollection).Indexes()

	numberIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "number", Value: 1}},
		Options: options.Index().
			SetName("number_unique").
			SetUnique(true),
	}

	log.Println("EnsureTableIndexes: creating number_unique index")
	if _, err := indexes.CreateOne(ctx, numberIndex); err != nil {
		log.Println("EnsureTableIndexes: number index error:", err)
		return err
	}
	log.Println("EnsureTableIndexes: number_unique index created")
	return nil
}

func EnsureProductIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection(ProductsCollection).Indexes()

	nameCategoryIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "name", Value: 1}, {Key: "category", Value: 1}},
		Options: options.Index().
			SetName("name_category_unique").
			SetUnique(true),
	}

	log.Println("EnsureProductIndexes: creating name_category_unique index")
	if _, err := indexes.CreateOne(ctx, nameCategoryIndex); err != nil {
		log.Println("EnsureProductIndexes: name/category index error:", err)
		return err
	}
	log.Println("EnsureProductIndexes: name_category_unique index created")
	return nil
}

func EnsureUserIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection(UsersCollection).Indexes()

	emailIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}},
		Options: options.Index().
			SetName("email_unique").
			SetUnique(true),
	}

	log.Println("EnsureUserIndexes: creating email_unique index")
	if _, err := indexes.CreateOne(ctx, emailIndex); err != nil {
		log.Println("EnsureUserIndexes: email index error:", err)
		return err
	}
	log.Println("EnsureUserIndexes: email_unique index created")
	return nil
}

// EnsureOrderIndexes creates the partial unique index that allows a single
// OPEN order per table, plus the lookups used by the kitchen and reports.
func EnsureOrderIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection(OrdersCollection).Indexes()

	models := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "tableId", Value: 1}},
			Options: options.Index().
				SetName("tableId_open_unique").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": "OPEN"}),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: 1}},
			Options: options.Index().SetName("status_createdAt_index"),
		},
		{
			Keys:    bson.D{{Key: "items._id", Value: 1}},
			Options: options.Index().SetName("items_id_index"),
		},
	}

	log.Println("EnsureOrderIndexes: creating order indexes")
	if _, err := indexes.CreateMany(ctx, models); err != nil {
		log.Println("EnsureOrderIndexes: index error:", err)
		return err
	}
	log.Println("EnsureOrderIndexes: tableId_open_unique, status_createdAt_index, items_id_index created")
	return nil
}

type indexBootstrap struct {
	name   string
	ensure func(*mongo.Database) error
}

var indexBootstraps = []indexBootstrap{
	{"table", EnsureTableIndexes},
	{"product", EnsureProductIndexes},
	{"user", EnsureUserIndexes},
	{"order", EnsureOrderIndexes},
}

// EnsureIndexes runs every index bootstrap in order and returns the first failure.
func EnsureIndexes(db *mongo.Database) error {
	var firstErr error
	for _, step := range indexBootstraps {
		if err := step.ensure(db); err != nil {
			log.Printf("⚠️ %s index warning: %v", step.name, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
