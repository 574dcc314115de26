package orders

import (
	"context"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"diningroom/internal/apperror"
	"diningroom/internal/models"
	"diningroom/internal/store"
)

type Urgency string

const (
	UrgencyNormal  Urgency = "normal"
	UrgencyWarning Urgency = "warning"
	UrgencyUrgent  Urgency = "urgent"
)

const (
	warningAfter = 5 * time.Minute
	urgentAfter  = 15 * time.Minute
)

// UrgencyFor bands the age of an order for display. It never affects the
// queue order.
func UrgencyFor(age time.Duration) Urgency {
	switch {
	case age < warningAfter:
		return UrgencyNormal
	case age <= urgentAfter:
		return UrgencyWarning
	default:
		return UrgencyUrgent
	}
}

// KitchenTicket is one item waiting in the kitchen.
type KitchenTicket struct {
	OrderID        primitive.ObjectID `json:"orderId"`
	ItemID         primitive.ObjectID `json:"itemId"`
	TableID        primitive.ObjectID `json:"tableId"`
	TableNumber    int                `json:"tableNumber"`
	ProductName    string             `json:"productName"`
	Category       string             `json:"category"`
	Quantity       int                `json:"quantity"`
	Status         models.ItemStatus  `json:"status"`
	OrderedAt      time.Time          `json:"orderedAt"`
	StartedAt      *time.Time         `json:"startedAt,omitempty"`
	WaitingMinutes int                `json:"waitingMinutes"`
	Urgency        Urgency            `json:"urgency"`
}

// KitchenQueue lists ORDERED and PREPARING items of OPEN orders, oldest order
// first. Ties fall back to order id, then item position.
func (s *Service) KitchenQueue(ctx context.Context) ([]KitchenTicket, error) {
	open, err := s.store.Orders().List(ctx, store.OrderFilter{Status: models.OrderOpen})
	if err != nil {
		return nil, apperror.FromStore(err, "order")
	}
	tables, err := s.store.Tables().List(ctx)
	if err != nil {
		return nil, apperror.FromStore(err, "table")
	}
	return BuildKitchenQueue(open, tables, s.now()), nil
}

// BuildKitchenQueue is the pure part of KitchenQueue.
func BuildKitchenQueue(open []models.Order, tables []models.Table, now time.Time) []KitchenTicket {
	numbers := make(map[primitive.ObjectID]int, len(tables))
	for _, t := range tables {
		numbers[t.ID] = t.Number
	}

	sorted := append([]models.Order(nil), open...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
		}
		return sorted[i].ID.Hex() < sorted[j].ID.Hex()
	})

	tickets := make([]KitchenTicket, 0)
	for _, o := range sorted {
		if o.Status != models.OrderOpen {
			continue
		}
		age := now.Sub(o.CreatedAt)
		if age < 0 {
			age = 0
		}
		for _, item := range o.Items {
			if item.Status != models.ItemOrdered && item.Status != models.ItemPreparing {
				continue
			}
			tickets = append(tickets, KitchenTicket{
				OrderID:        o.ID,
				ItemID:         item.ID,
				TableID:        o.TableID,
				TableNumber:    numbers[o.TableID],
				ProductName:    item.Name,
				Category:       item.Category,
				Quantity:       item.Quantity,
				Status:         item.Status,
				OrderedAt:      o.CreatedAt,
				StartedAt:      item.StartedAt,
				WaitingMinutes: int(age / time.Minute),
				Urgency:        UrgencyFor(age),
			})
		}
	}
	return tickets
}
