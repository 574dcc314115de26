package stats

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"diningroom/internal/models"
)

func item(name, category string, price float64, qty int) models.OrderItem {
	return models.OrderItem{ID: primitive.NewObjectID(), Name: name, Category: category, Price: price, Quantity: qty, Status: models.ItemServed}
}

func paidOrder(at time.Time, items ...models.OrderItem) models.Order {
	return models.Order{ID: primitive.NewObjectID(), Status: models.OrderPaid, CreatedAt: at, Items: items}
}

func day(s string) time.Time {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestComputeEmpty(t *testing.T) {
	r := Compute(nil, day("2024-01-01"), day("2024-01-31"))
	if r.TotalOrders != 0 || r.TotalRevenue != 0 || r.AverageOrderValue != 0 {
		t.Fatalf("expected zero totals, got %+v", r)
	}
	if r.TopProducts == nil || r.RevenueByDay == nil || r.CategoryStats == nil {
		t.Fatal("expected empty, non-nil slices so JSON renders []")
	}
	if len(r.TopProducts)+len(r.RevenueByDay)+len(r.CategoryStats) != 0 {
		t.Fatalf("expected empty collections, got %+v", r)
	}
}

func TestComputeTwoOrdersSameDay(t *testing.T) {
	morning := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	orders := []models.Order{
		paidOrder(morning, item("ProductA", "Mains", 5, 2), item("ProductB", "Drinks", 10, 1)),
		paidOrder(morning.Add(3*time.Hour), item("ProductA", "Mains", 5, 1)),
	}

	r := Compute(orders, day("2024-01-01"), day("2024-01-01"))

	if r.TotalOrders != 2 || r.TotalRevenue != 25 || r.AverageOrderValue != 12.5 {
		t.Fatalf("unexpected totals: %+v", r)
	}
	if len(r.RevenueByDay) != 1 {
		t.Fatalf("expected one day, got %+v", r.RevenueByDay)
	}
	if got := r.RevenueByDay[0]; got.Date != "2024-01-01" || got.Revenue != 25 || got.Orders != 2 {
		t.Fatalf("unexpected day stat: %+v", got)
	}
	if len(r.TopProducts) != 2 {
		t.Fatalf("expected 2 products, got %+v", r.TopProducts)
	}
	if p := r.TopProducts[0]; p.Name != "ProductA" || p.Revenue != 15 || p.Quantity != 3 || p.Share != 60 {
		t.Fatalf("unexpected first product: %+v", p)
	}
	if p := r.TopProducts[1]; p.Name != "ProductB" || p.Revenue != 10 || p.Quantity != 1 || p.Share != 40 {
		t.Fatalf("unexpected second product: %+v", p)
	}
	if c := r.CategoryStats[0]; c.Category != "Mains" || c.Revenue != 15 || c.Quantity != 3 {
		t.Fatalf("unexpected first category: %+v", c)
	}
}

func TestComputeFiltersStatusAndRange(t *testing.T) {
	inRange := time.Date(2024, 3, 10, 23, 59, 0, 0, time.UTC)
	orders := []models.Order{
		paidOrder(inRange, item("Soup", "Starters", 4, 1)),
		paidOrder(time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), item("Soup", "Starters", 4, 1)),
		paidOrder(time.Date(2024, 3, 8, 23, 59, 59, 0, time.UTC), item("Soup", "Starters", 4, 1)),
		{ID: primitive.NewObjectID(), Status: models.OrderOpen, CreatedAt: inRange, Items: []models.OrderItem{item("Soup", "Starters", 4, 1)}},
		{ID: primitive.NewObjectID(), Status: models.OrderCancelled, CreatedAt: inRange, Items: []models.OrderItem{item("Soup", "Starters", 4, 1)}},
	}

	r := Compute(orders, day("2024-03-09"), time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC))
	if r.TotalOrders != 1 || r.TotalRevenue != 4 {
		t.Fatalf("expected one paid order in range, got %+v", r)
	}
	if r.From != "2024-03-09" || r.To != "2024-03-10" {
		t.Fatalf("unexpected range labels: %s..%s", r.From, r.To)
	}
}

func TestComputeUsesUTCDate(t *testing.T) {
	plus5 := time.FixedZone("UTC+5", 5*3600)
	// 2024-02-02 02:00 local is 2024-02-01 21:00 UTC.
	orders := []models.Order{paidOrder(time.Date(2024, 2, 2, 2, 0, 0, 0, plus5), item("Tea", "Drinks", 3, 1))}

	r := Compute(orders, day("2024-02-01"), day("2024-02-01"))
	if len(r.RevenueByDay) != 1 || r.RevenueByDay[0].Date != "2024-02-01" {
		t.Fatalf("expected the UTC date, got %+v", r.RevenueByDay)
	}
}

func TestComputeRevenueByDaySortedAscending(t *testing.T) {
	orders := []models.Order{
		paidOrder(time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC), item("A", "Mains", 1, 1)),
		paidOrder(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), item("A", "Mains", 1, 1)),
		paidOrder(time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC), item("A", "Mains", 1, 1)),
	}
	r := Compute(orders, day("2024-01-01"), day("2024-01-31"))
	want := []string{"2024-01-01", "2024-01-02", "2024-01-03"}
	for i, d := range r.RevenueByDay {
		if d.Date != want[i] {
			t.Fatalf("expected %v, got %+v", want, r.RevenueByDay)
		}
	}
}

func TestComputeTopProductsTruncatedAndStable(t *testing.T) {
	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	items := make([]models.OrderItem, 0, 12)
	names := []string{"P01", "P02", "P03", "P04", "P05", "P06", "P07", "P08", "P09", "P10", "P11", "P12"}
	for _, name := range names {
		items = append(items, item(name, "Mains", 2, 1))
	}
	// P12 earns the most; the rest tie and keep discovery order.
	items = append(items, item("P12", "Mains", 2, 1))

	r := Compute([]models.Order{paidOrder(at, items...)}, at, at)
	if len(r.TopProducts) != topProductsMax {
		t.Fatalf("expected %d products, got %d", topProductsMax, len(r.TopProducts))
	}
	if r.TopProducts[0].Name != "P12" || r.TopProducts[0].Quantity != 2 {
		t.Fatalf("expected P12 first, got %+v", r.TopProducts[0])
	}
	for i := 1; i < topProductsMax; i++ {
		if r.TopProducts[i].Name != names[i-1] {
			t.Fatalf("position %d: expected %s, got %s", i, names[i-1], r.TopProducts[i].Name)
		}
	}
}

func TestComputeSkipsCancelledItems(t *testing.T) {
	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	cancelled := item("Steak", "Mains", 30, 1)
	cancelled.Status = models.ItemCancelled

	r := Compute([]models.Order{paidOrder(at, item("Tea", "Drinks", 3, 2), cancelled)}, at, at)
	if r.TotalRevenue != 6 || len(r.TopProducts) != 1 {
		t.Fatalf("expected cancelled item excluded, got %+v", r)
	}
}

func TestComputeDecimalSums(t *testing.T) {
	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	orders := []models.Order{
		paidOrder(at, item("Gum", "Sides", 0.1, 1)),
		paidOrder(at, item("Gum", "Sides", 0.2, 1)),
	}
	r := Compute(orders, at, at)
	if r.TotalRevenue != 0.3 {
		t.Fatalf("expected exact 0.30, got %v", r.TotalRevenue)
	}
	if r.AverageOrderValue != 0.15 {
		t.Fatalf("expected 0.15 average, got %v", r.AverageOrderValue)
	}
}

func TestShareZeroTotal(t *testing.T) {
	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	r := Compute([]models.Order{paidOrder(at, item("Water", "Drinks", 0, 3))}, at, at)
	if r.TotalRevenue != 0 || r.TopProducts[0].Share != 0 || r.CategoryStats[0].Share != 0 {
		t.Fatalf("expected zero share with zero revenue, got %+v", r)
	}
	if r.AverageOrderValue != 0 {
		t.Fatalf("expected zero average, got %v", r.AverageOrderValue)
	}
}
