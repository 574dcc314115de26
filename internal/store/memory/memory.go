// Package memory is a process-local store. A single mutex serializes every
// transaction, which gives the same guarantees as the MongoDB unique indexes
// and transactions for a single instance.
package memory

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"diningroom/internal/models"
	"diningroom/internal/store"
)

type data struct {
	tables   map[primitive.ObjectID]models.Table
	products map[primitive.ObjectID]models.Product
	orders   map[primitive.ObjectID]models.Order
	users    map[primitive.ObjectID]models.User
}

func newData() *data {
	return &data{
		tables:   map[primitive.ObjectID]models.Table{},
		products: map[primitive.ObjectID]models.Product{},
		orders:   map[primitive.ObjectID]models.Order{},
		users:    map[primitive.ObjectID]models.User{},
	}
}

func (d *data) clone() *data {
	out := newData()
	for id, t := range d.tables {
		out.tables[id] = copyTable(t)
	}
	for id, p := range d.products {
		out.products[id] = p
	}
	for id, o := range d.orders {
		out.orders[id] = copyOrder(o)
	}
	for id, u := range d.users {
		out.users[id] = u
	}
	return out
}

type Store struct {
	mu sync.Mutex
	d  *data
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{d: newData()}
}

func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, r store.Repos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.d.clone()
	if err := fn(ctx, repos{s: s, inTx: true}); err != nil {
		s.d = snapshot
		return err
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) Tables() store.TableRepo     { return tableRepo{repos{s: s}} }
func (s *Store) Products() store.ProductRepo { return productRepo{repos{s: s}} }
func (s *Store) Orders() store.OrderRepo     { return orderRepo{repos{s: s}} }
func (s *Store) Users() store.UserRepo       { return userRepo{repos{s: s}} }

// repos is handed to InTx callbacks; it does not take the lock again.
type repos struct {
	s    *Store
	inTx bool
}

func (r repos) lock() func() {
	if r.inTx {
		return func() {}
	}
	r.s.mu.Lock()
	return r.s.mu.Unlock
}

func (r repos) Tables() store.TableRepo     { return tableRepo{r} }
func (r repos) Products() store.ProductRepo { return productRepo{r} }
func (r repos) Orders() store.OrderRepo     { return orderRepo{r} }
func (r repos) Users() store.UserRepo       { return userRepo{r} }

func copyTable(t models.Table) models.Table {
	if t.Reservation != nil {
		res := *t.Reservation
		t.Reservation = &res
	}
	return t
}

func copyOrder(o models.Order) models.Order {
	if o.ClosedAt != nil {
		closed := *o.ClosedAt
		o.ClosedAt = &closed
	}
	items := make([]models.OrderItem, len(o.Items))
	for i, item := range o.Items {
		if item.StartedAt != nil {
			started := *item.StartedAt
			item.StartedAt = &started
		}
		if item.ReadyAt != nil {
			ready := *item.ReadyAt
			item.ReadyAt = &ready
		}
		items[i] = item
	}
	o.Items = items
	return o
}
