package memory

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"diningroom/internal/models"
	"diningroom/internal/store"
)

type userRepo struct{ repos }

func (r userRepo) Insert(ctx context.Context, u *models.User) error {
	defer r.lock()()
	for _, existing := range r.s.d.users {
		if existing.Email == u.Email {
			return store.ErrDuplicate
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	r.s.d.users[u.ID] = *u
	return nil
}

func (r userRepo) FindByEmail(ctx context.Context, email string) (models.User, error) {
	defer r.lock()()
	for _, u := range r.s.d.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, store.ErrNotFound
}

func (r userRepo) FindByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	defer r.lock()()
	u, ok := r.s.d.users[id]
	if !ok {
		return models.User{}, store.ErrNotFound
	}
	return u, nil
}
