// Package dashboard assembles the floor overview shown to staff.
package dashboard

import (
	"context"

	"golang.org/x/sync/errgroup"

	"diningroom/internal/models"
	"diningroom/internal/orders"
	"diningroom/internal/stats"
	"diningroom/internal/store"
	"diningroom/internal/tables"
)

var openOrders = store.OrderFilter{Status: models.OrderOpen}

type Summary struct {
	Tables       map[models.TableStatus]int `json:"tables"`
	OpenOrders   int                        `json:"openOrders"`
	KitchenQueue int                        `json:"kitchenQueue"`
	UrgentItems  int                        `json:"urgentItems"`
	Today        stats.Report               `json:"today"`
}

type Service struct {
	tables *tables.Service
	orders *orders.Service
	stats  *stats.Service
}

func NewService(t *tables.Service, o *orders.Service, s *stats.Service) *Service {
	return &Service{tables: t, orders: o, stats: s}
}

// Summary loads table counts, the kitchen queue and today's revenue
// concurrently. The first failure cancels the rest.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	g, ctx := errgroup.WithContext(ctx)

	var (
		all    []models.Table
		open   []models.Order
		queue  []orders.KitchenTicket
		report stats.Report
	)

	g.Go(func() error {
		var err error
		all, err = s.tables.List(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		open, err = s.orders.List(ctx, openOrders)
		return err
	})
	g.Go(func() error {
		var err error
		queue, err = s.orders.KitchenQueue(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		report, err = s.stats.Today(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	out := Summary{
		Tables:       countByStatus(all),
		OpenOrders:   len(open),
		KitchenQueue: len(queue),
		Today:        report,
	}
	for _, ticket := range queue {
		if ticket.Urgency == orders.UrgencyUrgent {
			out.UrgentItems++
		}
	}
	return out, nil
}

func countByStatus(all []models.Table) map[models.TableStatus]int {
	counts := map[models.TableStatus]int{
		models.TableFree:     0,
		models.TableOccupied: 0,
		models.TableReserved: 0,
		models.TableClosed:   0,
	}
	for _, t := range all {
		counts[t.Status]++
	}
	return counts
}
