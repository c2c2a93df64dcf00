package kitchen

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pedinu/api/internal/database"
)

func order(name string, status database.KitchenOrderStatus, minutesAgo int) database.KitchenOrder {
	return database.KitchenOrder{
		ID:           uuid.New(),
		CustomerName: name,
		Status:       status,
		OrderTime:    time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC).Add(-time.Duration(minutesAgo) * time.Minute),
	}
}

func TestBoard_GroupsAndSorts(t *testing.T) {
	orders := []database.KitchenOrder{
		order("Ana", database.KitchenOrderStatusReceived, 30),
		order("Bruno", database.KitchenOrderStatusReceived, 5),
		order("Carla", database.KitchenOrderStatusPreparing, 10),
		order("Davi", database.KitchenOrderStatusCancelled, 1),
		order("Eva", database.KitchenOrderStatusCompleted, 60),
		order("Ghost", "unknown", 1),
	}

	view := Board(orders, "")

	if len(view.Columns) != 4 {
		t.Fatalf("columns: got %d, want 4", len(view.Columns))
	}
	received := view.Columns[0]
	if received.Stage.Title != "Em análise" {
		t.Errorf("first column title: got %q", received.Stage.Title)
	}
	if len(received.Orders) != 2 || received.Orders[0].CustomerName != "Bruno" {
		t.Errorf("received column should be newest first, got %+v", received.Orders)
	}
	if len(view.Columns[2].Orders) != 0 {
		t.Errorf("ready column: got %d orders, want 0", len(view.Columns[2].Orders))
	}
	if len(view.Cancelled) != 1 || view.Cancelled[0].CustomerName != "Davi" {
		t.Errorf("cancelled archive: got %+v", view.Cancelled)
	}
	for _, c := range view.Columns {
		for _, o := range c.Orders {
			if o.Status == database.KitchenOrderStatusCancelled {
				t.Errorf("cancelled order in live column %s", c.Stage.Status)
			}
		}
	}
}

func TestBoard_Query(t *testing.T) {
	target := order("Fernanda Costa", database.KitchenOrderStatusReady, 3)
	orders := []database.KitchenOrder{
		target,
		order("Lucas Martins", database.KitchenOrderStatusReady, 2),
	}

	view := Board(orders, "FERNANDA")
	if got := len(view.Columns[2].Orders); got != 1 {
		t.Fatalf("name query: got %d orders, want 1", got)
	}

	view = Board(orders, OrderNumber(target.ID))
	if got := view.Columns[2].Orders; len(got) != 1 || got[0].ID != target.ID {
		t.Errorf("id query: got %+v", got)
	}
}

func TestNewView(t *testing.T) {
	o := order("Ana", database.KitchenOrderStatusReceived, 0)
	o.Items = []byte(`[{"name":"X-Tudo","quantity":2,"price":"28.5"}]`)
	o.Total = database.ToNumeric(decimal.RequireFromString("57"))
	o.PaymentMethod = database.PaymentMethodCash
	o.Notes = database.Text("sem cebola")

	v := NewView(o)
	if v.Total != "57.00" {
		t.Errorf("total: got %q, want 57.00", v.Total)
	}
	if len(v.Items) != 1 || v.Items[0].Quantity != 2 || v.Items[0].Name != "X-Tudo" {
		t.Errorf("items: got %+v", v.Items)
	}
	if v.PaymentLabel != "Dinheiro" {
		t.Errorf("label: got %q", v.PaymentLabel)
	}
	if v.Notes == nil || *v.Notes != "sem cebola" {
		t.Errorf("notes: got %v", v.Notes)
	}
	if v.DeliveryAddress != nil {
		t.Errorf("address: got %v, want nil", *v.DeliveryAddress)
	}
	if v.OrderNumber != OrderNumber(o.ID) {
		t.Errorf("order number: got %q", v.OrderNumber)
	}
}
