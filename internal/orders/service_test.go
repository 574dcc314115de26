package orders

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"diningroom/internal/apperror"
	"diningroom/internal/models"
	"diningroom/internal/store"
	"diningroom/internal/store/memory"
)

type fixture struct {
	svc      *Service
	st       *memory.Store
	table    models.Table
	productA models.Product
	productB models.Product
	waiter   models.Principal
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	st := memory.New()

	table := models.Table{Number: 1, Status: models.TableFree}
	if err := st.Tables().Insert(ctx, &table); err != nil {
		t.Fatalf("insert table: %v", err)
	}
	a := models.Product{Name: "ProductA", Price: 5, Category: "Mains"}
	b := models.Product{Name: "ProductB", Price: 10, Category: "Drinks"}
	for _, p := range []*models.Product{&a, &b} {
		if err := st.Products().Insert(ctx, p); err != nil {
			t.Fatalf("insert product: %v", err)
		}
	}

	return fixture{
		svc:      NewService(st),
		st:       st,
		table:    table,
		productA: a,
		productB: b,
		waiter:   models.Principal{ID: primitive.NewObjectID(), Name: "Sam", Role: models.RoleWaiter},
	}
}

func (f fixture) open(t *testing.T) models.Order {
	t.Helper()
	order, err := f.svc.CreateOrder(context.Background(), f.waiter, f.table.ID, []ItemInput{
		{ProductID: f.productA.ID, Quantity: 2},
		{ProductID: f.productB.ID, Quantity: 1},
	})
	if err != nil {
		t.Fatalf("CreateOrder returned error: %v", err)
	}
	return order
}

func (f fixture) tableStatus(t *testing.T) models.Table {
	t.Helper()
	table, err := f.st.Tables().FindByID(context.Background(), f.table.ID)
	if err != nil {
		t.Fatalf("find table: %v", err)
	}
	return table
}

func TestCreateOrderOccupiesTable(t *testing.T) {
	f := newFixture(t)
	order := f.open(t)

	if order.Status != models.OrderOpen {
		t.Fatalf("expected OPEN, got %s", order.Status)
	}
	if order.UserID != f.waiter.ID {
		t.Fatalf("expected order stamped with waiter id")
	}
	if len(order.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(order.Items))
	}
	for _, item := range order.Items {
		if item.Status != models.ItemOrdered {
			t.Fatalf("expected ORDERED item, got %s", item.Status)
		}
	}
	if order.Items[0].Price != 5 || order.Items[0].Name != "ProductA" {
		t.Fatalf("expected catalog snapshot on item, got %+v", order.Items[0])
	}
	if got := f.tableStatus(t).Status; got != models.TableOccupied {
		t.Fatalf("expected table OCCUPIED, got %s", got)
	}
}

func TestCreateOrderCoercesQuantity(t *testing.T) {
	f := newFixture(t)
	order, err := f.svc.CreateOrder(context.Background(), f.waiter, f.table.ID, []ItemInput{
		{ProductID: f.productA.ID, Quantity: 0},
		{ProductID: f.productB.ID, Quantity: -3},
	})
	if err != nil {
		t.Fatalf("CreateOrder returned error: %v", err)
	}
	for _, item := range order.Items {
		if item.Quantity != 1 {
			t.Fatalf("expected quantity coerced to 1, got %d", item.Quantity)
		}
	}
}

func TestCreateOrderValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.CreateOrder(ctx, f.waiter, f.table.ID, nil); !apperror.Is(err, apperror.KindValidation) {
		t.Fatalf("expected validation error for empty items, got %v", err)
	}
	_, err := f.svc.CreateOrder(ctx, f.waiter, f.table.ID, []ItemInput{{ProductID: primitive.NewObjectID(), Quantity: 1}})
	if !apperror.Is(err, apperror.KindValidation) {
		t.Fatalf("expected validation error for unknown product, got %v", err)
	}
	_, err = f.svc.CreateOrder(ctx, f.waiter, primitive.NewObjectID(), []ItemInput{{ProductID: f.productA.ID, Quantity: 1}})
	if !apperror.Is(err, apperror.KindNotFound) {
		t.Fatalf("expected not found for missing table, got %v", err)
	}
	if got := f.tableStatus(t).Status; got != models.TableFree {
		t.Fatalf("expected table untouched after failed creates, got %s", got)
	}
}

func TestSecondOpenOrderConflicts(t *testing.T) {
	f := newFixture(t)
	f.open(t)

	_, err := f.svc.CreateOrder(context.Background(), f.waiter, f.table.ID, []ItemInput{{ProductID: f.productA.ID, Quantity: 1}})
	if !apperror.Is(err, apperror.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestCreateOrderOnReservedOrClosedTableConflicts(t *testing.T) {
	for _, status := range []models.TableStatus{models.TableReserved, models.TableClosed} {
		f := newFixture(t)
		table := f.table
		table.Status = status
		if err := f.st.Tables().Replace(context.Background(), table); err != nil {
			t.Fatalf("replace table: %v", err)
		}
		_, err := f.svc.CreateOrder(context.Background(), f.waiter, f.table.ID, []ItemInput{{ProductID: f.productA.ID}})
		if !apperror.Is(err, apperror.KindConflict) {
			t.Fatalf("expected conflict on %s table, got %v", status, err)
		}
	}
}

func TestCreateOrderOnManuallyOccupiedTable(t *testing.T) {
	f := newFixture(t)
	table := f.table
	table.Status = models.TableOccupied
	if err := f.st.Tables().Replace(context.Background(), table); err != nil {
		t.Fatalf("replace table: %v", err)
	}
	f.open(t)
}

func TestConcurrentCreateOrderSingleWinner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const attempts = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.CreateOrder(ctx, f.waiter, f.table.ID, []ItemInput{{ProductID: f.productA.ID, Quantity: 1}})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case apperror.Is(err, apperror.KindConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if successes != 1 || conflicts != attempts-1 {
		t.Fatalf("expected 1 success and %d conflicts, got %d and %d", attempts-1, successes, conflicts)
	}
	open, _ := f.st.Orders().List(ctx, store.OrderFilter{Status: models.OrderOpen, TableID: f.table.ID})
	if len(open) != 1 {
		t.Fatalf("expected exactly one OPEN order, got %d", len(open))
	}
}

type failingTableStore struct{ *memory.Store }

func (s failingTableStore) InTx(ctx context.Context, fn func(ctx context.Context, r store.Repos) error) error {
	return s.Store.InTx(ctx, func(ctx context.Context, r store.Repos) error {
		return fn(ctx, failingRepos{r})
	})
}

type failingRepos struct{ store.Repos }

func (r failingRepos) Tables() store.TableRepo { return failingTables{r.Repos.Tables()} }

type failingTables struct{ store.TableRepo }

func (failingTables) Replace(ctx context.Context, t models.Table) error {
	return errors.New("write failed")
}

func TestCreateOrderRollsBackWhenTableUpdateFails(t *testing.T) {
	f := newFixture(t)
	svc := NewService(failingTableStore{f.st})

	_, err := svc.CreateOrder(context.Background(), f.waiter, f.table.ID, []ItemInput{{ProductID: f.productA.ID, Quantity: 1}})
	if !apperror.Is(err, apperror.KindInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}

	orders, _ := f.st.Orders().List(context.Background(), store.OrderFilter{})
	if len(orders) != 0 {
		t.Fatalf("expected order creation rolled back, found %d orders", len(orders))
	}
	if got := f.tableStatus(t).Status; got != models.TableFree {
		t.Fatalf("expected table FREE, got %s", got)
	}
}

func TestPayAndCancelFreeTableKeepingFields(t *testing.T) {
	for _, status := range []models.OrderStatus{models.OrderPaid, models.OrderCancelled} {
		f := newFixture(t)
		order := f.open(t)

		// Fields only change through explicit table operations.
		table := f.tableStatus(t)
		table.ClosedReason = "left over"
		if err := f.st.Tables().Replace(context.Background(), table); err != nil {
			t.Fatalf("replace table: %v", err)
		}

		closed, err := f.svc.SetOrderStatus(context.Background(), order.ID, status)
		if err != nil {
			t.Fatalf("SetOrderStatus(%s) returned error: %v", status, err)
		}
		if closed.Status != status || closed.ClosedAt == nil {
			t.Fatalf("unexpected closed order: %+v", closed)
		}

		got := f.tableStatus(t)
		if got.Status != models.TableFree {
			t.Fatalf("expected table FREE after %s, got %s", status, got.Status)
		}
		if got.ClosedReason != "left over" {
			t.Fatalf("expected table fields untouched, got %q", got.ClosedReason)
		}
	}
}

func TestSetOrderStatusIllegalTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.open(t)

	if _, err := f.svc.SetOrderStatus(ctx, order.ID, models.OrderOpen); !apperror.Is(err, apperror.KindValidation) {
		t.Fatalf("expected validation for OPEN -> OPEN, got %v", err)
	}
	if _, err := f.svc.Pay(ctx, order.ID); err != nil {
		t.Fatalf("Pay returned error: %v", err)
	}
	if _, err := f.svc.SetOrderStatus(ctx, order.ID, models.OrderOpen); !apperror.Is(err, apperror.KindValidation) {
		t.Fatalf("expected validation for PAID -> OPEN, got %v", err)
	}
	if _, err := f.svc.Cancel(ctx, order.ID); !apperror.Is(err, apperror.KindValidation) {
		t.Fatalf("expected validation for PAID -> CANCELLED, got %v", err)
	}
	if _, err := f.svc.SetOrderStatus(ctx, order.ID, "REFUNDED"); !apperror.Is(err, apperror.KindValidation) {
		t.Fatalf("expected validation for unknown status, got %v", err)
	}
	if _, err := f.svc.Pay(ctx, primitive.NewObjectID()); !apperror.Is(err, apperror.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAddItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.open(t)

	updated, err := f.svc.AddItems(ctx, order.ID, []ItemInput{{ProductID: f.productB.ID, Quantity: 3}})
	if err != nil {
		t.Fatalf("AddItems returned error: %v", err)
	}
	if len(updated.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(updated.Items))
	}
	last := updated.Items[2]
	if last.Status != models.ItemOrdered || last.Quantity != 3 {
		t.Fatalf("unexpected appended item: %+v", last)
	}

	if _, err := f.svc.AddItems(ctx, order.ID, []ItemInput{{ProductID: primitive.NewObjectID()}}); !apperror.Is(err, apperror.KindValidation) {
		t.Fatalf("expected validation for unknown product, got %v", err)
	}

	if _, err := f.svc.Pay(ctx, order.ID); err != nil {
		t.Fatalf("Pay returned error: %v", err)
	}
	if _, err := f.svc.AddItems(ctx, order.ID, []ItemInput{{ProductID: f.productA.ID}}); !apperror.Is(err, apperror.KindConflict) {
		t.Fatalf("expected conflict adding to a paid order, got %v", err)
	}
}

func TestDeleteOrder(t *testing.T) {
	ctx := context.Background()

	f := newFixture(t)
	order := f.open(t)
	if err := f.svc.DeleteOrder(ctx, order.ID); err != nil {
		t.Fatalf("DeleteOrder returned error: %v", err)
	}
	if got := f.tableStatus(t).Status; got != models.TableFree {
		t.Fatalf("expected deleting an OPEN order to free the table, got %s", got)
	}
	if _, err := f.svc.Get(ctx, order.ID); !apperror.Is(err, apperror.KindNotFound) {
		t.Fatalf("expected order gone, got %v", err)
	}
	if _, err := f.svc.SetItemStatus(ctx, order.Items[0].ID, models.ItemPreparing); !apperror.Is(err, apperror.KindNotFound) {
		t.Fatalf("expected items deleted with the order, got %v", err)
	}

	f = newFixture(t)
	order = f.open(t)
	if _, err := f.svc.Pay(ctx, order.ID); err != nil {
		t.Fatalf("Pay returned error: %v", err)
	}
	table := f.tableStatus(t)
	table.Status = models.TableOccupied
	if err := f.st.Tables().Replace(ctx, table); err != nil {
		t.Fatalf("replace table: %v", err)
	}
	if err := f.svc.DeleteOrder(ctx, order.ID); err != nil {
		t.Fatalf("DeleteOrder returned error: %v", err)
	}
	if got := f.tableStatus(t).Status; got != models.TableOccupied {
		t.Fatalf("expected deleting a PAID order to leave the table alone, got %s", got)
	}
}

func TestItemWorkflow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.open(t)
	itemID := order.Items[0].ID

	if _, err := f.svc.MarkReady(ctx, itemID); !apperror.Is(err, apperror.KindValidation) {
		t.Fatalf("expected MarkReady on ORDERED item to fail, got %v", err)
	}

	started, err := f.svc.StartPreparation(ctx, itemID)
	if err != nil {
		t.Fatalf("StartPreparation returned error: %v", err)
	}
	if started.Status != models.ItemPreparing || started.StartedAt == nil {
		t.Fatalf("unexpected item after start: %+v", started)
	}
	if _, err := f.svc.StartPreparation(ctx, itemID); !apperror.Is(err, apperror.KindValidation) {
		t.Fatalf("expected second StartPreparation to fail, got %v", err)
	}

	ready, err := f.svc.MarkReady(ctx, itemID)
	if err != nil {
		t.Fatalf("MarkReady returned error: %v", err)
	}
	if ready.Status != models.ItemReady || ready.ReadyAt == nil {
		t.Fatalf("unexpected item after ready: %+v", ready)
	}

	if _, err := f.svc.SetItemStatus(ctx, itemID, models.ItemPreparing); !apperror.Is(err, apperror.KindValidation) {
		t.Fatalf("expected READY -> PREPARING to fail, got %v", err)
	}
	if _, err := f.svc.CancelItem(ctx, itemID); !apperror.Is(err, apperror.KindValidation) {
		t.Fatalf("expected READY -> CANCELLED to fail, got %v", err)
	}
	if _, err := f.svc.MarkServed(ctx, itemID); err != nil {
		t.Fatalf("MarkServed returned error: %v", err)
	}

	cancelled, err := f.svc.CancelItem(ctx, order.Items[1].ID)
	if err != nil {
		t.Fatalf("CancelItem returned error: %v", err)
	}
	if cancelled.Status != models.ItemCancelled {
		t.Fatalf("expected CANCELLED, got %s", cancelled.Status)
	}
	if _, err := f.svc.SetItemStatus(ctx, primitive.NewObjectID(), models.ItemPreparing); !apperror.Is(err, apperror.KindNotFound) {
		t.Fatalf("expected not found for unknown item, got %v", err)
	}
}

func TestItemMutationsRequireOpenOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.open(t)
	itemID := order.Items[0].ID

	if _, err := f.svc.Cancel(ctx, order.ID); err != nil {
		t.Fatalf("Cancel returned error: %v", err)
	}
	if _, err := f.svc.StartPreparation(ctx, itemID); !apperror.Is(err, apperror.KindValidation) {
		t.Fatalf("expected validation on closed order, got %v", err)
	}
	if _, err := f.svc.UpdateItemQuantity(ctx, itemID, 4); !apperror.Is(err, apperror.KindValidation) {
		t.Fatalf("expected validation on closed order, got %v", err)
	}
}

func TestUpdateItemQuantity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.open(t)
	itemID := order.Items[0].ID

	for _, qty := range []int{0, -2} {
		if _, err := f.svc.UpdateItemQuantity(ctx, itemID, qty); !apperror.Is(err, apperror.KindValidation) {
			t.Fatalf("expected validation for quantity %d, got %v", qty, err)
		}
	}
	item, err := f.svc.UpdateItemQuantity(ctx, itemID, 5)
	if err != nil {
		t.Fatalf("UpdateItemQuantity returned error: %v", err)
	}
	if item.Quantity != 5 {
		t.Fatalf("expected quantity 5, got %d", item.Quantity)
	}

	stored, _ := f.svc.Get(ctx, order.ID)
	if stored.Items[0].Quantity != 5 {
		t.Fatalf("expected stored quantity 5, got %d", stored.Items[0].Quantity)
	}
}

func TestListRejectsUnknownStatus(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.List(context.Background(), store.OrderFilter{Status: "LOST"}); !apperror.Is(err, apperror.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestClockIsUsedForTimestamps(t *testing.T) {
	f := newFixture(t)
	fixed := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return fixed }

	order := f.open(t)
	if !order.CreatedAt.Equal(fixed) {
		t.Fatalf("expected createdAt %v, got %v", fixed, order.CreatedAt)
	}
}
