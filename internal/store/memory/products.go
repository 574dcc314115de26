package memory

import (
	"context"
	"sort"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"diningroom/internal/models"
	"diningroom/internal/store"
)

type productRepo struct{ repos }

func (r productRepo) Insert(ctx context.Context, p *models.Product) error {
	defer r.lock()()
	if r.nameTaken(p.Name, p.Category, primitive.NilObjectID) {
		return store.ErrDuplicate
	}
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	r.s.d.products[p.ID] = *p
	return nil
}

func (r productRepo) FindByID(ctx context.Context, id primitive.ObjectID) (models.Product, error) {
	defer r.lock()()
	p, ok := r.s.d.products[id]
	if !ok {
		return models.Product{}, store.ErrNotFound
	}
	return p, nil
}

func (r productRepo) FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Product, error) {
	defer r.lock()()
	out := make(map[primitive.ObjectID]models.Product, len(ids))
	for _, id := range ids {
		if p, ok := r.s.d.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (r productRepo) List(ctx context.Context, category string) ([]models.Product, error) {
	defer r.lock()()
	out := make([]models.Product, 0, len(r.s.d.products))
	for _, p := range r.s.d.products {
		if category != "" && p.Category != category {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r productRepo) Replace(ctx context.Context, p models.Product) error {
	defer r.lock()()
	if _, ok := r.s.d.products[p.ID]; !ok {
		return store.ErrNotFound
	}
	if r.nameTaken(p.Name, p.Category, p.ID) {
		return store.ErrDuplicate
	}
	r.s.d.products[p.ID] = p
	return nil
}

func (r productRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	defer r.lock()()
	if _, ok := r.s.d.products[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.s.d.products, id)
	return nil
}

func (r productRepo) nameTaken(name, category string, except primitive.ObjectID) bool {
	for id, p := range r.s.d.products {
		if id != except && p.Name == name && p.Category == category {
			return true
		}
	}
	return false
}
