package memory

import (
	"context"
	"sort"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"diningroom/internal/models"
	"diningroom/internal/store"
)

type orderRepo struct{ repos }

func (r orderRepo) Insert(ctx context.Context, o *models.Order) error {
	defer r.lock()()
	if o.Status == models.OrderOpen && r.openExists(o.TableID, primitive.NilObjectID) {
		return store.ErrDuplicate
	}
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	r.s.d.orders[o.ID] = copyOrder(*o)
	return nil
}

func (r orderRepo) FindByID(ctx context.Context, id primitive.ObjectID) (models.Order, error) {
	defer r.lock()()
	o, ok := r.s.d.orders[id]
	if !ok {
		return models.Order{}, store.ErrNotFound
	}
	return copyOrder(o), nil
}

func (r orderRepo) FindByItemID(ctx context.Context, itemID primitive.ObjectID) (models.Order, error) {
	defer r.lock()()
	for _, o := range r.s.d.orders {
		if o.ItemIndex(itemID) >= 0 {
			return copyOrder(o), nil
		}
	}
	return models.Order{}, store.ErrNotFound
}

func (r orderRepo) FindOpenByTable(ctx context.Context, tableID primitive.ObjectID) (models.Order, error) {
	defer r.lock()()
	for _, o := range r.s.d.orders {
		if o.TableID == tableID && o.Status == models.OrderOpen {
			return copyOrder(o), nil
		}
	}
	return models.Order{}, store.ErrNotFound
}

func (r orderRepo) List(ctx context.Context, filter store.OrderFilter) ([]models.Order, error) {
	defer r.lock()()
	out := make([]models.Order, 0)
	for _, o := range r.s.d.orders {
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		if !filter.TableID.IsZero() && o.TableID != filter.TableID {
			continue
		}
		if !filter.From.IsZero() && o.CreatedAt.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && !o.CreatedAt.Before(filter.To) {
			continue
		}
		out = append(out, copyOrder(o))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.Hex() < out[j].ID.Hex()
	})
	return out, nil
}

func (r orderRepo) Replace(ctx context.Context, o models.Order) error {
	defer r.lock()()
	if _, ok := r.s.d.orders[o.ID]; !ok {
		return store.ErrNotFound
	}
	if o.Status == models.OrderOpen && r.openExists(o.TableID, o.ID) {
		return store.ErrDuplicate
	}
	r.s.d.orders[o.ID] = copyOrder(o)
	return nil
}

func (r orderRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	defer r.lock()()
	if _, ok := r.s.d.orders[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.s.d.orders, id)
	return nil
}

func (r orderRepo) OpenOrderUsesProduct(ctx context.Context, productID primitive.ObjectID) (bool, error) {
	defer r.lock()()
	for _, o := range r.s.d.orders {
		if o.Status == models.OrderOpen && o.UsesProduct(productID) {
			return true, nil
		}
	}
	return false, nil
}

func (r orderRepo) openExists(tableID, except primitive.ObjectID) bool {
	for id, o := range r.s.d.orders {
		if id != except && o.TableID == tableID && o.Status == models.OrderOpen {
			return true
		}
	}
	return false
}
