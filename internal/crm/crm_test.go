package crm

import (
	"os"
	"path/filepath"
	"testing"

	"casedesk/internal/domain"
)

func writeTestData(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	orders := `[
		{"order_id": "ORD-1", "customer_id": "CUST-1", "status": "delivered", "policy": "30-day returns", "stock_available": true},
		{"order_id": "ORD-2", "customer_id": "CUST-404", "status": "shipped", "policy": "final sale", "stock_available": false},
		{"order_id": "ORD-3", "status": "processing"}
	]`
	customers := `[
		{"customer_id": "CUST-1", "name": "Dana Smith", "email": "dana@example.com"}
	]`
	if err := os.WriteFile(filepath.Join(dir, "orders.json"), []byte(orders), 0644); err != nil {
		t.Fatalf("write orders.json: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "customers.json"), []byte(customers), 0644); err != nil {
		t.Fatalf("write customers.json: %v", err)
	}
	return dir
}

func TestLookupFullSnapshot(t *testing.T) {
	s := NewStore(writeTestData(t))

	snap := s.Lookup("ORD-1")
	if snap.Policy != "30-day returns" {
		t.Fatalf("policy = %q", snap.Policy)
	}
	if snap.OrderStatus != "delivered" {
		t.Fatalf("order status = %q", snap.OrderStatus)
	}
	if snap.StockAvailable == nil || !*snap.StockAvailable {
		t.Fatalf("expected stock_available=true, got %v", snap.StockAvailable)
	}
	if snap.Customer == nil || snap.Customer.Name != "Dana Smith" {
		t.Fatalf("customer snapshot = %+v", snap.Customer)
	}
}

func TestLookupUnknownCustomerLeavesCustomerAbsent(t *testing.T) {
	s := NewStore(writeTestData(t))

	snap := s.Lookup("ORD-2")
	if snap.Customer != nil {
		t.Fatalf("expected absent customer, got %+v", snap.Customer)
	}
	if snap.StockAvailable == nil || *snap.StockAvailable {
		t.Fatalf("expected stock_available=false, got %v", snap.StockAvailable)
	}
}

func TestLookupMissingOptionalFields(t *testing.T) {
	s := NewStore(writeTestData(t))

	snap := s.Lookup("ORD-3")
	if snap.Policy != "" || snap.StockAvailable != nil || snap.Customer != nil {
		t.Fatalf("expected sparse snapshot, got %+v", snap)
	}
	if snap.OrderStatus != "processing" {
		t.Fatalf("order status = %q", snap.OrderStatus)
	}
}

func TestLookupEmptyAndUnknownOrder(t *testing.T) {
	s := NewStore(writeTestData(t))

	if snap := s.Lookup(""); snap != (domain.CRMSnapshot{}) {
		t.Fatalf("expected empty snapshot for empty id, got %+v", snap)
	}
	if snap := s.Lookup("ORD-999"); snap != (domain.CRMSnapshot{}) {
		t.Fatalf("expected empty snapshot for unknown id, got %+v", snap)
	}
}

func TestLookupMissingDataDir(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "nope"))
	if snap := s.Lookup("ORD-1"); snap != (domain.CRMSnapshot{}) {
		t.Fatalf("expected empty snapshot when data dir missing, got %+v", snap)
	}
}
