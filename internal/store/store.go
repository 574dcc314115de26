// Package store declares the persistence boundary used by the services.
// Implementations must enforce the uniqueness constraints listed on each repo
// and report violations as ErrDuplicate.
package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"diningroom/internal/models"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("duplicate key")
)

// Repos gives access to the collections. Inside InTx every call joins the
// surrounding transaction.
type Repos interface {
	Tables() TableRepo
	Products() ProductRepo
	Orders() OrderRepo
	Users() UserRepo
}

type Store interface {
	Repos
	// InTx runs fn atomically. If fn returns an error nothing it wrote persists.
	InTx(ctx context.Context, fn func(ctx context.Context, r Repos) error) error
	Ping(ctx context.Context) error
}

// TableRepo: number is unique.
type TableRepo interface {
	Insert(ctx context.Context, t *models.Table) error
	FindByID(ctx context.Context, id primitive.ObjectID) (models.Table, error)
	List(ctx context.Context) ([]models.Table, error)
	Replace(ctx context.Context, t models.Table) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// ProductRepo: (name, category) is unique.
type ProductRepo interface {
	Insert(ctx context.Context, p *models.Product) error
	FindByID(ctx context.Context, id primitive.ObjectID) (models.Product, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Product, error)
	List(ctx context.Context, category string) ([]models.Product, error)
	Replace(ctx context.Context, p models.Product) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// OrderFilter narrows List. Zero values match everything.
type OrderFilter struct {
	Status  models.OrderStatus
	TableID primitive.ObjectID
	From    time.Time
	To      time.Time
}

// OrderRepo: at most one OPEN order per tableId.
type OrderRepo interface {
	Insert(ctx context.Context, o *models.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (models.Order, error)
	FindByItemID(ctx context.Context, itemID primitive.ObjectID) (models.Order, error)
	FindOpenByTable(ctx context.Context, tableID primitive.ObjectID) (models.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]models.Order, error)
	Replace(ctx context.Context, o models.Order) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	OpenOrderUsesProduct(ctx context.Context, productID primitive.ObjectID) (bool, error)
}

// UserRepo: email is unique.
type UserRepo interface {
	Insert(ctx context.Context, u *models.User) error
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (models.User, error)
}
