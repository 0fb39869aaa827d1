package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"sweets-app-go/internal/docstore"
)

// Service owns the draft event and the list of finalized events. Local
// mutations are pushed through the remote writer before they are applied;
// the synchronization layer feeds remote snapshots back in wholesale, so
// optimistic local state only lives until the next snapshot.
type Service struct {
	mu      sync.Mutex
	remote  docstore.Writer
	source  ProductSource
	draft   Event
	saved   []Event
	editing bool
}

func NewService(remote docstore.Writer, source ProductSource) *Service {
	return &Service{
		remote: remote,
		source: source,
		draft:  NewDraft(),
		saved:  []Event{},
	}
}

// Summary is the live financial preview of an event.
type Summary struct {
	Costs
	TotalSales float64 `json:"totalSales"`
	Profit     float64 `json:"profit"`
}

func Summarize(event Event) Summary {
	costs := ComputeCosts(event)
	sales := TotalSales(event)
	return Summary{
		Costs:      costs,
		TotalSales: sales,
		Profit:     sales - costs.Total,
	}
}

func (s *Service) Draft() Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneEvent(s.draft)
}

func (s *Service) IsEditing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editing
}

func (s *Service) SavedEvents() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]Event, 0, len(s.saved))
	for _, event := range s.saved {
		items = append(items, cloneEvent(event))
	}
	return items
}

// UpdateDraftField replaces one draft field by key. Numeric fields accept
// whatever string the form produced; they are parsed at read time.
func (s *Service) UpdateDraftField(field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch field {
	case FieldName:
		s.draft.Name = value
	case FieldDate:
		s.draft.Date = value
	case FieldLocation:
		s.draft.Location = value
	case FieldEventAddress:
		s.draft.EventAddress = value
	case FieldStartAddress:
		s.draft.StartAddress = value
	case FieldDistance:
		s.draft.Distance = RawNumber(value)
	case FieldConsumption:
		s.draft.Consumption = RawNumber(value)
	case FieldFuelPrice:
		s.draft.FuelPrice = RawNumber(value)
	case FieldHelpers:
		s.draft.Helpers = RawNumber(value)
	case FieldHelperPayment:
		s.draft.HelperPayment = RawNumber(value)
	case FieldExtraCosts:
		s.draft.ExtraCosts = RawNumber(value)
	default:
		return ErrUnknownField
	}
	return nil
}

// UpdateDraftProduct upserts one quantity field of a draft product,
// synthesizing the event product from its catalog template on first
// reference. Unknown product ids are absorbed as a no-op.
func (s *Service) UpdateDraftProduct(productID, field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated, err := upsertProduct(s.draft.Products, s.source, productID, field, RawNumber(value))
	if err != nil {
		return err
	}
	s.draft.Products = updated
	return nil
}

// IncrementSale records one more unit sold, bounded by the quantity
// taken. Products the draft never referenced are ignored.
func (s *Service) IncrementSale(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, product := range s.draft.Products {
		if product.ID != productID {
			continue
		}
		sold := product.QuantitySold.Int()
		if sold < product.QuantityTaken.Int() {
			s.draft.Products[i].QuantitySold = RawFromInt(sold + 1)
		}
		return
	}
}

// DecrementSale undoes one recorded sale, bounded at zero.
func (s *Service) DecrementSale(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, product := range s.draft.Products {
		if product.ID != productID {
			continue
		}
		sold := product.QuantitySold.Int()
		if sold > 0 {
			s.draft.Products[i].QuantitySold = RawFromInt(sold - 1)
		}
		return
	}
}

// FinalizeDraft freezes the draft's financial snapshot, commits it to the
// remote collection keyed by the draft id (overwriting a re-saved event,
// appending a new one) and resets the draft. The no-name precondition is
// the transport layer's to enforce.
func (s *Service) FinalizeDraft(ctx context.Context) (Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := cloneEvent(s.draft)
	summary := Summarize(snapshot)
	snapshot.TotalSales = &summary.TotalSales
	snapshot.TotalCosts = &summary.Total
	snapshot.Profit = &summary.Profit

	if err := s.remote.Put(ctx, docstore.CollectionSavedEvents, snapshot.ID, snapshot); err != nil {
		return Event{}, fmt.Errorf("save event: %w", err)
	}

	replaced := false
	for i, event := range s.saved {
		if event.ID == snapshot.ID {
			s.saved[i] = snapshot
			replaced = true
			break
		}
	}
	if !replaced {
		s.saved = append(s.saved, snapshot)
	}

	s.draft = NewDraft()
	s.editing = false

	return cloneEvent(snapshot), nil
}

// LoadForEditing copies a saved event into the draft slot and flags
// editing mode. The saved record stays until the draft is re-finalized.
func (s *Service) LoadForEditing(id string) (Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, event := range s.saved {
		if event.ID == id {
			s.draft = cloneEvent(event)
			s.editing = true
			return cloneEvent(event), nil
		}
	}
	return Event{}, ErrEventNotFound
}

func (s *Service) DeleteSaved(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	index := -1
	for i, event := range s.saved {
		if event.ID == id {
			index = i
			break
		}
	}
	if index == -1 {
		return ErrEventNotFound
	}

	if err := s.remote.Delete(ctx, docstore.CollectionSavedEvents, id); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}

	s.saved = append(s.saved[:index], s.saved[index+1:]...)
	return nil
}

func (s *Service) ResetDraft() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = NewDraft()
	s.editing = false
}

// SeedDraft restores a previously persisted draft, keeping its id so a
// later finalize updates rather than duplicates.
func (s *Service) SeedDraft(event Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if event.Products == nil {
		event.Products = []EventProduct{}
	}
	s.draft = event
}

// ProductRemovalOps returns the re-put operations for every saved event
// referencing the product, for the catalog's cascade batch.
func (s *Service) ProductRemovalOps(productID string) ([]docstore.Op, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ops []docstore.Op
	for _, event := range s.saved {
		scrubbed, changed := withoutProduct(event, productID)
		if !changed {
			continue
		}
		op, err := docstore.PutOp(docstore.CollectionSavedEvents, event.ID, scrubbed)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}

// ApplyProductRemoval drops the product from the draft and every saved
// event after the cascade batch committed.
func (s *Service) ApplyProductRemoval(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if scrubbed, changed := withoutProduct(s.draft, productID); changed {
		s.draft = scrubbed
	}
	for i, event := range s.saved {
		if scrubbed, changed := withoutProduct(event, productID); changed {
			s.saved[i] = scrubbed
		}
	}
}

// ApplySnapshot replaces the saved list wholesale with a remote snapshot.
// Undecodable documents are dropped rather than surfaced.
func (s *Service) ApplySnapshot(docs []docstore.Document) {
	items := make([]Event, 0, len(docs))
	for _, doc := range docs {
		var event Event
		if err := json.Unmarshal(doc.Data, &event); err != nil {
			continue
		}
		if event.ID == "" {
			event.ID = doc.ID
		}
		if event.Products == nil {
			event.Products = []EventProduct{}
		}
		items = append(items, event)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = items
}

func withoutProduct(event Event, productID string) (Event, bool) {
	kept := make([]EventProduct, 0, len(event.Products))
	for _, product := range event.Products {
		if product.ID != productID {
			kept = append(kept, product)
		}
	}
	if len(kept) == len(event.Products) {
		return event, false
	}

	scrubbed := cloneEvent(event)
	scrubbed.Products = kept
	return scrubbed, true
}
