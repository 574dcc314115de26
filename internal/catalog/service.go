// Package catalog manages the product definitions orders are taken from.
package catalog

import (
	"context"
	"errors"
	"log"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"diningroom/internal/apperror"
	"diningroom/internal/models"
	"diningroom/internal/store"
)

type ProductInput struct {
	Name     string
	Price    float64
	Category string
}

// ProductUpdate carries only the fields being changed.
type ProductUpdate struct {
	Name     *string
	Price    *float64
	Category *string
}

// CategoryGroup is a menu section for display.
type CategoryGroup struct {
	Category  string           `json:"category"`
	Canonical bool             `json:"canonical"`
	Products  []models.Product `json:"products"`
}

type Service struct {
	store store.Store
	now   func() time.Time
}

func NewService(st store.Store) *Service {
	return &Service{store: st, now: time.Now}
}

func (s *Service) List(ctx context.Context, category string) ([]models.Product, error) {
	products, err := s.store.Products().List(ctx, strings.TrimSpace(category))
	if err != nil {
		return nil, apperror.FromStore(err, "product")
	}
	return products, nil
}

func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (models.Product, error) {
	p, err := s.store.Products().FindByID(ctx, id)
	if err != nil {
		return models.Product{}, apperror.FromStore(err, "product")
	}
	return p, nil
}

func (s *Service) Create(ctx context.Context, in ProductInput) (models.Product, error) {
	name, category, err := validateProduct(in.Name, in.Price, in.Category)
	if err != nil {
		return models.Product{}, err
	}

	now := s.now()
	p := models.Product{
		Name:      name,
		Price:     in.Price,
		Category:  category,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Products().Insert(ctx, &p); err != nil {
		return models.Product{}, productStoreError(err, name, category)
	}

	log.Printf("[CATALOG] [INFO] product created: %s (%s)", name, category)
	return p, nil
}

func (s *Service) Update(ctx context.Context, id primitive.ObjectID, in ProductUpdate) (models.Product, error) {
	if in.Name == nil && in.Price == nil && in.Category == nil {
		return models.Product{}, apperror.Validation("no fields to update")
	}

	var updated models.Product
	err := s.store.InTx(ctx, func(ctx context.Context, r store.Repos) error {
		p, err := r.Products().FindByID(ctx, id)
		if err != nil {
			return apperror.FromStore(err, "product")
		}
		used, err := r.Orders().OpenOrderUsesProduct(ctx, id)
		if err != nil {
			return apperror.FromStore(err, "order")
		}
		if used {
			return apperror.Conflict("product %s is on an open order and cannot be changed", p.Name)
		}
		if in.Name != nil {
			p.Name = *in.Name
		}
		if in.Price != nil {
			p.Price = *in.Price
		}
		if in.Category != nil {
			p.Category = *in.Category
		}

		name, category, err := validateProduct(p.Name, p.Price, p.Category)
		if err != nil {
			return err
		}
		p.Name, p.Category = name, category
		p.UpdatedAt = s.now()

		if err := r.Products().Replace(ctx, p); err != nil {
			return productStoreError(err, name, category)
		}
		updated = p
		return nil
	})
	if err != nil {
		return models.Product{}, err
	}
	return updated, nil
}

// Delete removes a product unless an OPEN order still references it.
func (s *Service) Delete(ctx context.Context, id primitive.ObjectID) error {
	return s.store.InTx(ctx, func(ctx context.Context, r store.Repos) error {
		p, err := r.Products().FindByID(ctx, id)
		if err != nil {
			return apperror.FromStore(err, "product")
		}

		inUse, err := r.Orders().OpenOrderUsesProduct(ctx, id)
		if err != nil {
			return apperror.FromStore(err, "order")
		}
		if inUse {
			return apperror.Conflict("product %q is used by an open order", p.Name)
		}

		if err := r.Products().Delete(ctx, id); err != nil {
			return apperror.FromStore(err, "product")
		}
		log.Printf("[CATALOG] [INFO] product deleted: %s (%s)", p.Name, p.Category)
		return nil
	})
}

// Categories returns the canonical categories followed by any other category
// in use, alphabetically.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	products, err := s.List(ctx, "")
	if err != nil {
		return nil, err
	}

	out := append([]string(nil), models.CanonicalCategories...)
	seen := map[string]struct{}{}
	extra := make([]string, 0)
	for _, p := range products {
		if models.IsCanonicalCategory(p.Category) {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		extra = append(extra, p.Category)
	}
	sort.Strings(extra)
	return append(out, extra...), nil
}

// GroupByCategory splits products into menu sections: canonical categories in
// their fixed order (empty ones omitted), then the rest alphabetically.
// Products keep their relative order inside a section.
func GroupByCategory(products []models.Product) []CategoryGroup {
	byCategory := make(map[string][]models.Product)
	for _, p := range products {
		byCategory[p.Category] = append(byCategory[p.Category], p)
	}

	groups := make([]CategoryGroup, 0, len(byCategory))
	for _, name := range models.CanonicalCategories {
		if items, ok := byCategory[name]; ok {
			groups = append(groups, CategoryGroup{Category: name, Canonical: true, Products: items})
			delete(byCategory, name)
		}
	}

	rest := make([]string, 0, len(byCategory))
	for name := range byCategory {
		rest = append(rest, name)
	}
	sort.Strings(rest)
	for _, name := range rest {
		groups = append(groups, CategoryGroup{Category: name, Products: byCategory[name]})
	}
	return groups
}

func validateProduct(name string, price float64, category string) (string, string, error) {
	name = strings.TrimSpace(name)
	category = strings.TrimSpace(category)
	if name == "" {
		return "", "", apperror.Validation("name required")
	}
	if category == "" {
		return "", "", apperror.Validation("category required")
	}
	if price < 0 {
		return "", "", apperror.Validation("price must be zero or greater")
	}
	return name, category, nil
}

func productStoreError(err error, name, category string) error {
	if errors.Is(err, store.ErrDuplicate) {
		return apperror.Conflict("product %q already exists in category %q", name, category)
	}
	return apperror.FromStore(err, "product")
}
