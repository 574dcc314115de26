// Package stats derives revenue reports from paid orders.
package stats

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"diningroom/internal/models"
)

const (
	dateLayout     = "2006-01-02"
	topProductsMax = 10
)

type ProductStat struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Revenue  float64 `json:"revenue"`
	Share    float64 `json:"share"`
}

type DayStat struct {
	Date    string  `json:"date"`
	Revenue float64 `json:"revenue"`
	Orders  int     `json:"orders"`
}

type CategoryStat struct {
	Category string  `json:"category"`
	Quantity int     `json:"quantity"`
	Revenue  float64 `json:"revenue"`
	Share    float64 `json:"share"`
}

type Report struct {
	From              string         `json:"from"`
	To                string         `json:"to"`
	TotalOrders       int            `json:"totalOrders"`
	TotalRevenue      float64        `json:"totalRevenue"`
	AverageOrderValue float64        `json:"averageOrderValue"`
	TopProducts       []ProductStat  `json:"topProducts"`
	RevenueByDay      []DayStat      `json:"revenueByDay"`
	CategoryStats     []CategoryStat `json:"categoryStats"`
}

type groupAcc struct {
	key      string
	quantity int
	revenue  decimal.Decimal
}

// accumulator keeps groups in the order their key was first seen.
type accumulator struct {
	index  map[string]int
	groups []*groupAcc
}

func newAccumulator() *accumulator {
	return &accumulator{index: map[string]int{}}
}

func (a *accumulator) add(key string, quantity int, revenue decimal.Decimal) {
	i, ok := a.index[key]
	if !ok {
		i = len(a.groups)
		a.index[key] = i
		a.groups = append(a.groups, &groupAcc{key: key})
	}
	g := a.groups[i]
	g.quantity += quantity
	g.revenue = g.revenue.Add(revenue)
}

// byRevenue returns the groups sorted by revenue descending. Equal revenue
// keeps discovery order.
func (a *accumulator) byRevenue() []*groupAcc {
	out := append([]*groupAcc(nil), a.groups...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].revenue.GreaterThan(out[j].revenue)
	})
	return out
}

type dayAcc struct {
	revenue decimal.Decimal
	orders  int
}

// Compute builds the report for PAID orders whose UTC creation date falls in
// [from, to]. Only the calendar date of from and to is used.
func Compute(orders []models.Order, from, to time.Time) Report {
	fromDay := truncateDay(from)
	toDay := truncateDay(to)

	selected := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		if o.Status != models.OrderPaid {
			continue
		}
		day := truncateDay(o.CreatedAt)
		if day.Before(fromDay) || day.After(toDay) {
			continue
		}
		selected = append(selected, o)
	}
	sort.SliceStable(selected, func(i, j int) bool {
		if !selected[i].CreatedAt.Equal(selected[j].CreatedAt) {
			return selected[i].CreatedAt.Before(selected[j].CreatedAt)
		}
		return selected[i].ID.Hex() < selected[j].ID.Hex()
	})

	products := newAccumulator()
	categories := newAccumulator()
	days := map[string]*dayAcc{}
	total := decimal.Zero

	for _, o := range selected {
		orderRevenue := decimal.Zero
		for _, item := range o.Items {
			if item.Status == models.ItemCancelled {
				continue
			}
			revenue := decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity)))
			orderRevenue = orderRevenue.Add(revenue)
			products.add(item.Name, item.Quantity, revenue)
			categories.add(item.Category, item.Quantity, revenue)
		}

		key := o.CreatedAt.UTC().Format(dateLayout)
		d, ok := days[key]
		if !ok {
			d = &dayAcc{}
			days[key] = d
		}
		d.revenue = d.revenue.Add(orderRevenue)
		d.orders++

		total = total.Add(orderRevenue)
	}

	report := Report{
		From:          fromDay.Format(dateLayout),
		To:            toDay.Format(dateLayout),
		TotalOrders:   len(selected),
		TotalRevenue:  money(total),
		TopProducts:   make([]ProductStat, 0),
		RevenueByDay:  make([]DayStat, 0, len(days)),
		CategoryStats: make([]CategoryStat, 0),
	}
	if len(selected) > 0 {
		report.AverageOrderValue = money(total.Div(decimal.NewFromInt(int64(len(selected)))))
	}

	for _, g := range products.byRevenue() {
		if len(report.TopProducts) == topProductsMax {
			break
		}
		report.TopProducts = append(report.TopProducts, ProductStat{
			Name:     g.key,
			Quantity: g.quantity,
			Revenue:  money(g.revenue),
			Share:    share(g.revenue, total),
		})
	}

	for _, g := range categories.byRevenue() {
		report.CategoryStats = append(report.CategoryStats, CategoryStat{
			Category: g.key,
			Quantity: g.quantity,
			Revenue:  money(g.revenue),
			Share:    share(g.revenue, total),
		})
	}

	dayKeys := make([]string, 0, len(days))
	for key := range days {
		dayKeys = append(dayKeys, key)
	}
	sort.Strings(dayKeys)
	for _, key := range dayKeys {
		report.RevenueByDay = append(report.RevenueByDay, DayStat{
			Date:    key,
			Revenue: money(days[key].revenue),
			Orders:  days[key].orders,
		})
	}

	return report
}

// share is part/total × 100, or 0 when total is zero.
func share(part, total decimal.Decimal) float64 {
	if total.IsZero() {
		return 0
	}
	return money(part.Div(total).Mul(decimal.NewFromInt(100)))
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func truncateDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
