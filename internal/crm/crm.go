// Package crm provides read-only enrichment lookups against order and
// customer reference data. The backing files are loaded once per process
// and cached for its lifetime; staleness is accepted.
package crm

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sync"

	"casedesk/internal/domain"
)

type order struct {
	OrderID        string `json:"order_id"`
	CustomerID     string `json:"customer_id"`
	Status         string `json:"status"`
	Policy         string `json:"policy"`
	StockAvailable *bool  `json:"stock_available"`
}

type customer struct {
	CustomerID string `json:"customer_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
}

// Store caches order and customer reference data keyed by id.
// Inject one Store per process; Lookup is safe for concurrent use.
type Store struct {
	dataDir string

	once      sync.Once
	orders    map[string]order
	customers map[string]customer
}

// NewStore returns a Store reading orders.json and customers.json from
// dataDir. Files are not touched until the first Lookup.
func NewStore(dataDir string) *Store {
	return &Store{dataDir: dataDir}
}

func (s *Store) load() {
	s.orders = make(map[string]order)
	s.customers = make(map[string]customer)

	var orders []order
	if err := readJSONFile(filepath.Join(s.dataDir, "orders.json"), &orders); err != nil {
		log.Printf("crm orders load skipped dir=%s err=%v", s.dataDir, err)
	}
	for _, o := range orders {
		s.orders[o.OrderID] = o
	}

	var customers []customer
	if err := readJSONFile(filepath.Join(s.dataDir, "customers.json"), &customers); err != nil {
		log.Printf("crm customers load skipped dir=%s err=%v", s.dataDir, err)
	}
	for _, c := range customers {
		s.customers[c.CustomerID] = c
	}

	log.Printf("crm reference data loaded orders=%d customers=%d", len(s.orders), len(s.customers))
}

func readJSONFile(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

// Lookup resolves the CRM snapshot for an order id: exactly one order lookup
// and, when the order names a customer, exactly one customer lookup. An
// empty or unknown id leaves every field absent.
func (s *Store) Lookup(orderID string) domain.CRMSnapshot {
	if orderID == "" {
		return domain.CRMSnapshot{}
	}
	s.once.Do(s.load)

	o, ok := s.orders[orderID]
	if !ok {
		return domain.CRMSnapshot{}
	}

	snap := domain.CRMSnapshot{
		Policy:         o.Policy,
		OrderStatus:    o.Status,
		StockAvailable: o.StockAvailable,
	}
	if o.CustomerID != "" {
		if c, ok := s.customers[o.CustomerID]; ok {
			snap.Customer = &domain.CustomerSnapshot{
				CustomerID: c.CustomerID,
				Name:       c.Name,
				Email:      c.Email,
			}
		}
	}
	return snap
}
