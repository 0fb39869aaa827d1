package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"sweets-app-go/internal/docstore"
)

// EventScrubber is the event store's side of the cascade delete: it
// plans the saved-event rewrites for the batch and applies them locally
// once the batch committed.
type EventScrubber interface {
	ProductRemovalOps(productID string) ([]docstore.Op, error)
	ApplyProductRemoval(productID string)
}

// Service owns the canonical product list. Mutations push to the remote
// collection first and apply locally on success; remote snapshots replace
// the list wholesale.
type Service struct {
	mu       sync.Mutex
	remote   docstore.Writer
	events   EventScrubber
	products []Product
}

func NewService(remote docstore.Writer) *Service {
	return &Service{
		remote:   remote,
		products: []Product{},
	}
}

// BindEvents wires the event store in after construction; the two stores
// reference each other, so one side attaches late.
func (s *Service) BindEvents(events EventScrubber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = events
}

func (s *Service) ListProducts() []Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Product{}, s.products...)
}

func (s *Service) ProductByID(id string) (Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, product := range s.products {
		if product.ID == id {
			return product, true
		}
	}
	return Product{}, false
}

// AddProduct assigns a fresh id and appends to the catalog. Field
// preconditions are the caller's concern; the store accepts any values.
func (s *Service) AddProduct(ctx context.Context, name string, costPrice, sellPrice float64) (Product, error) {
	product := Product{
		ID:        uuid.NewString(),
		Name:      name,
		CostPrice: costPrice,
		SellPrice: sellPrice,
	}

	if err := s.remote.Put(ctx, docstore.CollectionProducts, product.ID, product); err != nil {
		return Product{}, fmt.Errorf("save product: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = append(s.products, product)
	return product, nil
}

// DeleteProduct removes the product and cascades into every saved event
// and the draft. The product delete and the saved-event rewrites commit
// as one batch; nothing is applied locally unless the batch succeeds.
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	if _, ok := s.ProductByID(id); !ok {
		return ErrProductNotFound
	}

	ops, err := s.events.ProductRemovalOps(id)
	if err != nil {
		return fmt.Errorf("plan cascade: %w", err)
	}
	ops = append(ops, docstore.DeleteOp(docstore.CollectionProducts, id))

	if err := s.remote.BatchCommit(ctx, ops); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	s.mu.Lock()
	kept := make([]Product, 0, len(s.products))
	for _, product := range s.products {
		if product.ID != id {
			kept = append(kept, product)
		}
	}
	s.products = kept
	s.mu.Unlock()

	s.events.ApplyProductRemoval(id)
	return nil
}

// ApplySnapshot replaces the catalog wholesale with a remote snapshot.
// Undecodable documents are dropped rather than surfaced.
func (s *Service) ApplySnapshot(docs []docstore.Document) {
	items := make([]Product, 0, len(docs))
	for _, doc := range docs {
		var product Product
		if err := json.Unmarshal(doc.Data, &product); err != nil {
			continue
		}
		if product.ID == "" {
			product.ID = doc.ID
		}
		items = append(items, product)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = items
}
