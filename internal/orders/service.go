// Package orders is the order engine: order lifecycle against a table and the
// kitchen workflow of individual items. Every cross-entity change runs inside
// one store transaction.
package orders

import (
	"context"
	"errors"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"diningroom/internal/apperror"
	"diningroom/internal/models"
	"diningroom/internal/store"
)

// ItemInput is one requested line. Quantities below 1 are taken as 1.
type ItemInput struct {
	ProductID primitive.ObjectID
	Quantity  int
}

type Service struct {
	store store.Store
	now   func() time.Time
}

func NewService(st store.Store) *Service {
	return &Service{store: st, now: time.Now}
}

func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (models.Order, error) {
	o, err := s.store.Orders().FindByID(ctx, id)
	if err != nil {
		return models.Order{}, apperror.FromStore(err, "order")
	}
	return o, nil
}

func (s *Service) List(ctx context.Context, filter store.OrderFilter) ([]models.Order, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apperror.Validation("invalid order status %q", filter.Status)
	}
	orders, err := s.store.Orders().List(ctx, filter)
	if err != nil {
		return nil, apperror.FromStore(err, "order")
	}
	return orders, nil
}

// CreateOrder opens an order on a FREE or OCCUPIED table and marks the table
// OCCUPIED in the same transaction.
func (s *Service) CreateOrder(ctx context.Context, by models.Principal, tableID primitive.ObjectID, items []ItemInput) (models.Order, error) {
	if len(items) == 0 {
		return models.Order{}, apperror.Validation("at least one item is required")
	}

	var created models.Order
	err := s.store.InTx(ctx, func(ctx context.Context, r store.Repos) error {
		now := s.now()

		lines, err := s.buildItems(ctx, r, items, now)
		if err != nil {
			return err
		}

		table, err := r.Tables().FindByID(ctx, tableID)
		if err != nil {
			return apperror.FromStore(err, "table")
		}

		_, err = r.Orders().FindOpenByTable(ctx, tableID)
		if err == nil {
			return apperror.Conflict("table %d already has an open order", table.Number)
		}
		if !errors.Is(err, store.ErrNotFound) {
			return apperror.FromStore(err, "order")
		}

		if table.Status != models.TableFree && table.Status != models.TableOccupied {
			return apperror.Conflict("table %d is %s and cannot take orders", table.Number, table.Status)
		}

		order := models.Order{
			TableID:   tableID,
			UserID:    by.ID,
			Status:    models.OrderOpen,
			Items:     lines,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := r.Orders().Insert(ctx, &order); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return apperror.Conflict("table %d already has an open order", table.Number)
			}
			return apperror.FromStore(err, "order")
		}

		table.Status = models.TableOccupied
		table.Reservation = nil
		table.ClosedReason = ""
		table.UpdatedAt = now
		if err := r.Tables().Replace(ctx, table); err != nil {
			return apperror.FromStore(err, "table")
		}

		created = order
		log.Printf("[ORDER] [INFO] order %s opened on table %d by %s", order.ID.Hex(), table.Number, by.ID.Hex())
		return nil
	})
	if err != nil {
		return models.Order{}, err
	}
	return created, nil
}

// SetOrderStatus closes an OPEN order as PAID or CANCELLED and frees its
// table. Only the table status changes; reservation and closure fields are
// left alone.
func (s *Service) SetOrderStatus(ctx context.Context, id primitive.ObjectID, status models.OrderStatus) (models.Order, error) {
	if !status.Valid() {
		return models.Order{}, apperror.Validation("invalid order status %q", status)
	}

	var updated models.Order
	err := s.store.InTx(ctx, func(ctx context.Context, r store.Repos) error {
		order, err := r.Orders().FindByID(ctx, id)
		if err != nil {
			return apperror.FromStore(err, "order")
		}
		if !models.CanTransitionOrder(order.Status, status) {
			return apperror.Validation("cannot change order from %s to %s", order.Status, status)
		}

		now := s.now()
		order.Status = status
		order.ClosedAt = &now
		order.UpdatedAt = now
		if err := r.Orders().Replace(ctx, order); err != nil {
			return apperror.FromStore(err, "order")
		}

		if err := freeTable(ctx, r, order.TableID, now); err != nil {
			return err
		}

		updated = order
		log.Printf("[ORDER] [INFO] order %s -> %s", order.ID.Hex(), status)
		return nil
	})
	if err != nil {
		return models.Order{}, err
	}
	return updated, nil
}

func (s *Service) Pay(ctx context.Context, id primitive.ObjectID) (models.Order, error) {
	return s.SetOrderStatus(ctx, id, models.OrderPaid)
}

func (s *Service) Cancel(ctx context.Context, id primitive.ObjectID) (models.Order, error) {
	return s.SetOrderStatus(ctx, id, models.OrderCancelled)
}

// AddItems appends ORDERED items to an OPEN order.
func (s *Service) AddItems(ctx context.Context, id primitive.ObjectID, items []ItemInput) (models.Order, error) {
	if len(items) == 0 {
		return models.Order{}, apperror.Validation("at least one item is required")
	}

	var updated models.Order
	err := s.store.InTx(ctx, func(ctx context.Context, r store.Repos) error {
		order, err := r.Orders().FindByID(ctx, id)
		if err != nil {
			return apperror.FromStore(err, "order")
		}
		if order.Status != models.OrderOpen {
			return apperror.Conflict("order is %s; items can only be added to open orders", order.Status)
		}

		now := s.now()
		lines, err := s.buildItems(ctx, r, items, now)
		if err != nil {
			return err
		}
		order.Items = append(order.Items, lines...)
		order.UpdatedAt = now
		if err := r.Orders().Replace(ctx, order); err != nil {
			return apperror.FromStore(err, "order")
		}

		updated = order
		log.Printf("[ORDER] [INFO] %d items added to order %s", len(lines), order.ID.Hex())
		return nil
	})
	if err != nil {
		return models.Order{}, err
	}
	return updated, nil
}

// DeleteOrder removes the order with its items. Deleting an OPEN order frees
// the table; closed orders leave the table as it is.
func (s *Service) DeleteOrder(ctx context.Context, id primitive.ObjectID) error {
	return s.store.InTx(ctx, func(ctx context.Context, r store.Repos) error {
		order, err := r.Orders().FindByID(ctx, id)
		if err != nil {
			return apperror.FromStore(err, "order")
		}
		if err := r.Orders().Delete(ctx, id); err != nil {
			return apperror.FromStore(err, "order")
		}
		if order.Status == models.OrderOpen {
			if err := freeTable(ctx, r, order.TableID, s.now()); err != nil {
				return err
			}
		}
		log.Printf("[ORDER] [INFO] order %s deleted (was %s)", order.ID.Hex(), order.Status)
		return nil
	})
}

// SetItemStatus moves an item along the kitchen workflow.
func (s *Service) SetItemStatus(ctx context.Context, itemID primitive.ObjectID, status models.ItemStatus) (models.OrderItem, error) {
	return s.transitionItem(ctx, itemID, status, "")
}

// StartPreparation requires the item to be exactly ORDERED.
func (s *Service) StartPreparation(ctx context.Context, itemID primitive.ObjectID) (models.OrderItem, error) {
	return s.transitionItem(ctx, itemID, models.ItemPreparing, models.ItemOrdered)
}

// MarkReady requires the item to be exactly PREPARING.
func (s *Service) MarkReady(ctx context.Context, itemID primitive.ObjectID) (models.OrderItem, error) {
	return s.transitionItem(ctx, itemID, models.ItemReady, models.ItemPreparing)
}

// MarkServed requires the item to be exactly READY.
func (s *Service) MarkServed(ctx context.Context, itemID primitive.ObjectID) (models.OrderItem, error) {
	return s.transitionItem(ctx, itemID, models.ItemServed, models.ItemReady)
}

func (s *Service) CancelItem(ctx context.Context, itemID primitive.ObjectID) (models.OrderItem, error) {
	return s.transitionItem(ctx, itemID, models.ItemCancelled, "")
}

func (s *Service) transitionItem(ctx context.Context, itemID primitive.ObjectID, to, requiredFrom models.ItemStatus) (models.OrderItem, error) {
	if !to.Valid() {
		return models.OrderItem{}, apperror.Validation("invalid item status %q", to)
	}

	var updated models.OrderItem
	err := s.store.InTx(ctx, func(ctx context.Context, r store.Repos) error {
		order, idx, err := loadOpenItem(ctx, r, itemID)
		if err != nil {
			return err
		}
		item := &order.Items[idx]

		if requiredFrom != "" && item.Status != requiredFrom {
			return apperror.Validation("item must be %s to move to %s, it is %s", requiredFrom, to, item.Status)
		}
		if !models.CanTransitionItem(item.Status, to) {
			return apperror.Validation("cannot change item from %s to %s", item.Status, to)
		}

		now := s.now()
		item.Status = to
		item.UpdatedAt = now
		switch to {
		case models.ItemPreparing:
			item.StartedAt = &now
		case models.ItemReady:
			item.ReadyAt = &now
		}
		order.UpdatedAt = now

		if err := r.Orders().Replace(ctx, order); err != nil {
			return apperror.FromStore(err, "order")
		}
		updated = *item
		log.Printf("[KITCHEN] [INFO] item %s (%s) -> %s", item.ID.Hex(), item.Name, to)
		return nil
	})
	if err != nil {
		return models.OrderItem{}, err
	}
	return updated, nil
}

func (s *Service) UpdateItemQuantity(ctx context.Context, itemID primitive.ObjectID, quantity int) (models.OrderItem, error) {
	if quantity <= 0 {
		return models.OrderItem{}, apperror.Validation("quantity must be greater than zero")
	}

	var updated models.OrderItem
	err := s.store.InTx(ctx, func(ctx context.Context, r store.Repos) error {
		order, idx, err := loadOpenItem(ctx, r, itemID)
		if err != nil {
			return err
		}
		item := &order.Items[idx]
		if item.Status == models.ItemCancelled {
			return apperror.Validation("cannot change the quantity of a cancelled item")
		}

		now := s.now()
		item.Quantity = quantity
		item.UpdatedAt = now
		order.UpdatedAt = now
		if err := r.Orders().Replace(ctx, order); err != nil {
			return apperror.FromStore(err, "order")
		}
		updated = *item
		return nil
	})
	if err != nil {
		return models.OrderItem{}, err
	}
	return updated, nil
}

// loadOpenItem re-reads the owning order inside the transaction so a
// concurrently closed order is never mutated.
func loadOpenItem(ctx context.Context, r store.Repos, itemID primitive.ObjectID) (models.Order, int, error) {
	order, err := r.Orders().FindByItemID(ctx, itemID)
	if err != nil {
		return models.Order{}, -1, apperror.FromStore(err, "order item")
	}
	if order.Status != models.OrderOpen {
		return models.Order{}, -1, apperror.Validation("order is %s; its items can no longer change", order.Status)
	}
	idx := order.ItemIndex(itemID)
	if idx < 0 {
		return models.Order{}, -1, apperror.NotFound("order item not found")
	}
	return order, idx, nil
}

func (s *Service) buildItems(ctx context.Context, r store.Repos, items []ItemInput, now time.Time) ([]models.OrderItem, error) {
	ids := make([]primitive.ObjectID, 0, len(items))
	for _, in := range items {
		if in.ProductID.IsZero() {
			return nil, apperror.Validation("productId is required")
		}
		ids = append(ids, in.ProductID)
	}

	products, err := r.Products().FindByIDs(ctx, ids)
	if err != nil {
		return nil, apperror.FromStore(err, "product")
	}

	lines := make([]models.OrderItem, 0, len(items))
	for _, in := range items {
		p, ok := products[in.ProductID]
		if !ok {
			return nil, apperror.Validation("product %s not found", in.ProductID.Hex())
		}
		qty := in.Quantity
		if qty < 1 {
			qty = 1
		}
		lines = append(lines, models.OrderItem{
			ID:        primitive.NewObjectID(),
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Category:  p.Category,
			Quantity:  qty,
			Status:    models.ItemOrdered,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	return lines, nil
}

func freeTable(ctx context.Context, r store.Repos, tableID primitive.ObjectID, now time.Time) error {
	table, err := r.Tables().FindByID(ctx, tableID)
	if errors.Is(err, store.ErrNotFound) {
		log.Printf("[ORDER] [WARN] table %s no longer exists, nothing to free", tableID.Hex())
		return nil
	}
	if err != nil {
		return apperror.FromStore(err, "table")
	}

	table.Status = models.TableFree
	table.UpdatedAt = now
	if err := r.Tables().Replace(ctx, table); err != nil {
		return apperror.FromStore(err, "table")
	}
	return nil
}
