// Package mongostore implements store.Store on MongoDB. Uniqueness rules are
// backed by the indexes created in internal/database.
package mongostore

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"diningroom/internal/database"
	"diningroom/internal/store"
)

type Store struct {
	db *mongo.Database
}

var _ store.Store = (*Store)(nil)

func New(db *mongo.Database) *Store {
	return &Store{db: db}
}

// InTx runs fn inside a session transaction. The session context is passed to
// fn so every repo call made through it joins the transaction.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, r store.Repos) error) error {
	session, err := s.db.Client().StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx, s)
	})
	return err
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.Client().Ping(ctx, readpref.Primary())
}

func (s *Store) Tables() store.TableRepo {
	return tableRepo{coll: s.db.Collection(database.TablesCollection)}
}

func (s *Store) Products() store.ProductRepo {
	return productRepo{coll: s.db.Collection(database.ProductsCollection)}
}

func (s *Store) Orders() store.OrderRepo {
	return orderRepo{coll: s.db.Collection(database.OrdersCollection)}
}

func (s *Store) Users() store.UserRepo {
	return userRepo{coll: s.db.Collection(database.UsersCollection)}
}

// translate maps driver errors onto the store sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return store.ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return store.ErrDuplicate
	}
	return err
}
