package sync

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"sweets-app-go/internal/docstore"
	"sweets-app-go/internal/domain/catalog"
	"sweets-app-go/internal/domain/events"
	"sweets-app-go/internal/repository/inmemory"
	"sweets-app-go/pkg/logger"
)

type emptySource struct{}

func (emptySource) Product(id string) (events.ProductInfo, bool) {
	return events.ProductInfo{}, false
}

func newTestSyncer() (*Syncer, *inmemory.DocStore, *catalog.Service, *events.Service) {
	store := inmemory.NewDocStore()
	catalogSvc := catalog.NewService(store)
	eventsSvc := events.NewService(store, emptySource{})
	catalogSvc.BindEvents(eventsSvc)

	log := logger.New(io.Discard, slog.LevelError, "text")
	return New(store, catalogSvc, eventsSvc, log), store, catalogSvc, eventsSvc
}

func writeLegacyFile(t *testing.T, dir, name string, contents string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(contents), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestMigrateLegacyImportsExports(t *testing.T) {
	syncer, store, _, _ := newTestSyncer()
	dir := t.TempDir()
	writeLegacyFile(t, dir, "products.json", `[{"id":"prod-1","name":"Brownie","costPrice":1.5,"sellPrice":3}]`)
	writeLegacyFile(t, dir, "saved_events.json", `[{"id":"evt-1","name":"Spring market"}]`)

	if err := syncer.MigrateLegacy(context.Background(), dir); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	products, err := store.List(context.Background(), docstore.CollectionProducts)
	if err != nil {
		t.Fatalf("list products: %v", err)
	}
	if len(products) != 1 || products[0].ID != "prod-1" {
		t.Fatalf("products not imported: %+v", products)
	}

	saved, err := store.List(context.Background(), docstore.CollectionSavedEvents)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(saved) != 1 || saved[0].ID != "evt-1" {
		t.Fatalf("events not imported: %+v", saved)
	}

	meta, err := store.List(context.Background(), docstore.CollectionMeta)
	if err != nil {
		t.Fatalf("list meta: %v", err)
	}
	if len(meta) != 1 || meta[0].ID != migrationDocID {
		t.Fatalf("marker not written: %+v", meta)
	}
}

func TestMigrateLegacyRunsOnce(t *testing.T) {
	syncer, store, _, _ := newTestSyncer()
	dir := t.TempDir()
	writeLegacyFile(t, dir, "products.json", `[{"id":"prod-1","name":"Brownie"}]`)

	if err := syncer.MigrateLegacy(context.Background(), dir); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	if err := store.Delete(context.Background(), docstore.CollectionProducts, "prod-1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if err := syncer.MigrateLegacy(context.Background(), dir); err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	products, err := store.List(context.Background(), docstore.CollectionProducts)
	if err != nil {
		t.Fatalf("list products: %v", err)
	}
	if len(products) != 0 {
		t.Fatalf("migration re-imported after marker: %+v", products)
	}
}

func TestMigrateLegacySkipsImportWhenRemotePopulated(t *testing.T) {
	syncer, store, _, _ := newTestSyncer()
	dir := t.TempDir()
	writeLegacyFile(t, dir, "products.json", `[{"id":"prod-legacy","name":"Old brownie"}]`)

	existing := map[string]string{"id": "prod-live", "name": "Truffle"}
	if err := store.Put(context.Background(), docstore.CollectionProducts, "prod-live", existing); err != nil {
		t.Fatalf("seed remote: %v", err)
	}

	if err := syncer.MigrateLegacy(context.Background(), dir); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	products, err := store.List(context.Background(), docstore.CollectionProducts)
	if err != nil {
		t.Fatalf("list products: %v", err)
	}
	if len(products) != 1 || products[0].ID != "prod-live" {
		t.Fatalf("legacy data imported over live remote: %+v", products)
	}

	meta, err := store.List(context.Background(), docstore.CollectionMeta)
	if err != nil {
		t.Fatalf("list meta: %v", err)
	}
	if len(meta) != 1 {
		t.Fatalf("marker not written: %+v", meta)
	}
	var marker migrationMarker
	if err := json.Unmarshal(meta[0].Data, &marker); err != nil {
		t.Fatalf("decode marker: %v", err)
	}
	if marker.Products != 0 || marker.Events != 0 {
		t.Fatalf("marker counts = %d/%d, want 0/0", marker.Products, marker.Events)
	}
}

func TestMigrateLegacyNoDirConfigured(t *testing.T) {
	syncer, store, _, _ := newTestSyncer()

	if err := syncer.MigrateLegacy(context.Background(), ""); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	meta, err := store.List(context.Background(), docstore.CollectionMeta)
	if err != nil {
		t.Fatalf("list meta: %v", err)
	}
	if len(meta) != 0 {
		t.Fatalf("marker written without a legacy dir: %+v", meta)
	}
}

func TestMigrateLegacyMissingFilesStillMarks(t *testing.T) {
	syncer, store, _, _ := newTestSyncer()

	if err := syncer.MigrateLegacy(context.Background(), t.TempDir()); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	meta, err := store.List(context.Background(), docstore.CollectionMeta)
	if err != nil {
		t.Fatalf("list meta: %v", err)
	}
	if len(meta) != 1 {
		t.Fatalf("marker not written for empty dir: %+v", meta)
	}
}

func TestRestoreLegacyDraft(t *testing.T) {
	syncer, _, _, eventsSvc := newTestSyncer()
	dir := t.TempDir()
	writeLegacyFile(t, dir, "current_event.json", `{"id":"evt-draft","name":"In progress"}`)

	syncer.RestoreLegacyDraft(dir)

	draft := eventsSvc.Draft()
	if draft.ID != "evt-draft" || draft.Name != "In progress" {
		t.Fatalf("draft not restored: %+v", draft)
	}
}

func TestRestoreLegacyDraftIgnoresBlankExport(t *testing.T) {
	syncer, _, _, eventsSvc := newTestSyncer()
	dir := t.TempDir()
	writeLegacyFile(t, dir, "current_event.json", `{"name":"no id"}`)

	before := eventsSvc.Draft().ID
	syncer.RestoreLegacyDraft(dir)

	if eventsSvc.Draft().ID != before {
		t.Fatalf("draft replaced by export without an id")
	}
}

func TestRunFeedsSnapshotsIntoStores(t *testing.T) {
	syncer, store, catalogSvc, eventsSvc := newTestSyncer()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go syncer.Run(ctx)

	product := map[string]any{"id": "prod-1", "name": "Brownie", "costPrice": 1.5, "sellPrice": 3.0}
	if err := store.Put(context.Background(), docstore.CollectionProducts, "prod-1", product); err != nil {
		t.Fatalf("put product: %v", err)
	}
	event := map[string]any{"id": "evt-1", "name": "Spring market"}
	if err := store.Put(context.Background(), docstore.CollectionSavedEvents, "evt-1", event); err != nil {
		t.Fatalf("put event: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		if len(catalogSvc.ListProducts()) == 1 && len(eventsSvc.SavedEvents()) == 1 {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("snapshots not applied: %d products, %d events",
				len(catalogSvc.ListProducts()), len(eventsSvc.SavedEvents()))
		case <-time.After(10 * time.Millisecond):
		}
	}
}
