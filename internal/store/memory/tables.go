package memory

import (
	"context"
	"sort"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"diningroom/internal/models"
	"diningroom/internal/store"
)

type tableRepo struct{ repos }

func (r tableRepo) Insert(ctx context.Context, t *models.Table) error {
	defer r.lock()()
	if r.numberTaken(t.Number, primitive.NilObjectID) {
		return store.ErrDuplicate
	}
	if t.ID.IsZero() {
		t.ID = primitive.NewObjectID()
	}
	r.s.d.tables[t.ID] = copyTable(*t)
	return nil
}

func (r tableRepo) FindByID(ctx context.Context, id primitive.ObjectID) (models.Table, error) {
	defer r.lock()()
	t, ok := r.s.d.tables[id]
	if !ok {
		return models.Table{}, store.ErrNotFound
	}
	return copyTable(t), nil
}

func (r tableRepo) List(ctx context.Context) ([]models.Table, error) {
	defer r.lock()()
	out := make([]models.Table, 0, len(r.s.d.tables))
	for _, t := range r.s.d.tables {
		out = append(out, copyTable(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (r tableRepo) Replace(ctx context.Context, t models.Table) error {
	defer r.lock()()
	if _, ok := r.s.d.tables[t.ID]; !ok {
		return store.ErrNotFound
	}
	if r.numberTaken(t.Number, t.ID) {
		return store.ErrDuplicate
	}
	r.s.d.tables[t.ID] = copyTable(t)
	return nil
}

func (r tableRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	defer r.lock()()
	if _, ok := r.s.d.tables[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.s.d.tables, id)
	return nil
}

func (r tableRepo) numberTaken(number int, except primitive.ObjectID) bool {
	for id, t := range r.s.d.tables {
		if id != except && t.Number == number {
			return true
		}
	}
	return false
}
