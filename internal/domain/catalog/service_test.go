package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"sweets-app-go/internal/docstore"
)

type fakeWriter struct {
	puts    map[string]json.RawMessage
	batches [][]docstore.Op
	failErr error
}

func newFakeWriter() *fakeWriter {
	return &fakeWriter{puts: make(map[string]json.RawMessage)}
}

func (w *fakeWriter) Put(ctx context.Context, collection, id string, doc any) error {
	if w.failErr != nil {
		return w.failErr
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	w.puts[collection+"/"+id] = data
	return nil
}

func (w *fakeWriter) Delete(ctx context.Context, collection, id string) error {
	if w.failErr != nil {
		return w.failErr
	}
	delete(w.puts, collection+"/"+id)
	return nil
}

func (w *fakeWriter) BatchCommit(ctx context.Context, ops []docstore.Op) error {
	if w.failErr != nil {
		return w.failErr
	}
	w.batches = append(w.batches, ops)
	return nil
}

type fakeScrubber struct {
	ops     []docstore.Op
	applied []string
}

func (s *fakeScrubber) ProductRemovalOps(productID string) ([]docstore.Op, error) {
	return s.ops, nil
}

func (s *fakeScrubber) ApplyProductRemoval(productID string) {
	s.applied = append(s.applied, productID)
}

func newTestService() (*Service, *fakeWriter, *fakeScrubber) {
	writer := newFakeWriter()
	scrubber := &fakeScrubber{}
	svc := NewService(writer)
	svc.BindEvents(scrubber)
	return svc, writer, scrubber
}

func TestAddProductPushesRemoteFirst(t *testing.T) {
	svc, writer, _ := newTestService()

	product, err := svc.AddProduct(context.Background(), "Brownie", 1.50, 3.00)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if product.ID == "" {
		t.Fatalf("no id assigned")
	}
	if writer.puts[docstore.CollectionProducts+"/"+product.ID] == nil {
		t.Fatalf("product not pushed to remote")
	}
	if len(svc.ListProducts()) != 1 {
		t.Fatalf("product not in local list")
	}
}

func TestAddProductRemoteFailureKeepsCatalog(t *testing.T) {
	svc, writer, _ := newTestService()
	writer.failErr = errors.New("remote down")

	if _, err := svc.AddProduct(context.Background(), "Brownie", 1.50, 3.00); err == nil {
		t.Fatalf("expected error")
	}
	if len(svc.ListProducts()) != 0 {
		t.Fatalf("product added despite remote failure")
	}
}

func TestDeleteProductNotFound(t *testing.T) {
	svc, _, scrubber := newTestService()

	if err := svc.DeleteProduct(context.Background(), "ghost"); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
	if len(scrubber.applied) != 0 {
		t.Fatalf("cascade applied for unknown product")
	}
}

func TestDeleteProductCascadesInOneBatch(t *testing.T) {
	svc, writer, scrubber := newTestService()
	product, err := svc.AddProduct(context.Background(), "Brownie", 1.50, 3.00)
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	rewrite, err := docstore.PutOp(docstore.CollectionSavedEvents, "evt-1", map[string]string{"id": "evt-1"})
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	scrubber.ops = []docstore.Op{rewrite}

	if err := svc.DeleteProduct(context.Background(), product.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if len(writer.batches) != 1 {
		t.Fatalf("expected one batch, got %d", len(writer.batches))
	}
	batch := writer.batches[0]
	if len(batch) != 2 {
		t.Fatalf("batch = %d ops, want rewrite plus delete", len(batch))
	}
	last := batch[len(batch)-1]
	if last.Kind != docstore.OpDelete || last.Collection != docstore.CollectionProducts || last.ID != product.ID {
		t.Fatalf("final op is not the product delete: %+v", last)
	}

	if len(svc.ListProducts()) != 0 {
		t.Fatalf("product still in catalog")
	}
	if len(scrubber.applied) != 1 || scrubber.applied[0] != product.ID {
		t.Fatalf("cascade not applied locally: %v", scrubber.applied)
	}
}

func TestDeleteProductBatchFailureKeepsState(t *testing.T) {
	svc, writer, scrubber := newTestService()
	product, err := svc.AddProduct(context.Background(), "Brownie", 1.50, 3.00)
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	writer.failErr = errors.New("remote down")
	if err := svc.DeleteProduct(context.Background(), product.ID); err == nil {
		t.Fatalf("expected error")
	}
	if len(svc.ListProducts()) != 1 {
		t.Fatalf("product dropped despite failed batch")
	}
	if len(scrubber.applied) != 0 {
		t.Fatalf("cascade applied despite failed batch")
	}
}

func TestApplySnapshotReplacesCatalog(t *testing.T) {
	svc, _, _ := newTestService()
	if _, err := svc.AddProduct(context.Background(), "Stale", 1, 2); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	svc.ApplySnapshot([]docstore.Document{
		{ID: "prod-remote", Data: json.RawMessage(`{"name":"Truffle","costPrice":2,"sellPrice":4.5}`)},
		{ID: "prod-bad", Data: json.RawMessage(`not json`)},
	})

	list := svc.ListProducts()
	if len(list) != 1 {
		t.Fatalf("catalog = %d entries, want 1", len(list))
	}
	if list[0].ID != "prod-remote" || list[0].Name != "Truffle" {
		t.Fatalf("id not backfilled from document id: %+v", list[0])
	}
}
