package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"sweets-app-go/internal/docstore"
	"sweets-app-go/internal/domain/catalog"
	"sweets-app-go/internal/domain/events"
)

const (
	legacyProductsFile = "products.json"
	legacyEventsFile   = "saved_events.json"
	legacyDraftFile    = "current_event.json"

	migrationDocID = "legacy_migration"
)

type migrationMarker struct {
	CompletedAt time.Time `json:"completedAt"`
	Products    int       `json:"products"`
	Events      int       `json:"events"`
}

// MigrateLegacy bulk-copies pre-sync JSON exports into the remote
// collections as one atomic batch, marker included, so it never re-runs.
// It is skipped when the marker exists or the remote collections already
// hold data. A failed batch is reported, not retried.
func (s *Syncer) MigrateLegacy(ctx context.Context, dir string) error {
	if dir == "" {
		return nil
	}

	migrated, err := s.migrationDone(ctx)
	if err != nil {
		return fmt.Errorf("check migration marker: %w", err)
	}
	if migrated {
		return nil
	}

	var products []catalog.Product
	if err := readLegacyFile(filepath.Join(dir, legacyProductsFile), &products); err != nil {
		return fmt.Errorf("read legacy products: %w", err)
	}
	var saved []events.Event
	if err := readLegacyFile(filepath.Join(dir, legacyEventsFile), &saved); err != nil {
		return fmt.Errorf("read legacy events: %w", err)
	}

	empty, err := s.remoteEmpty(ctx)
	if err != nil {
		return fmt.Errorf("inspect remote collections: %w", err)
	}

	marker := migrationMarker{CompletedAt: time.Now().UTC()}

	// Remote collections already populated by another client: only the
	// marker is dropped so the check never runs again.
	var ops []docstore.Op
	if empty {
		for _, product := range products {
			op, err := docstore.PutOp(docstore.CollectionProducts, product.ID, product)
			if err != nil {
				return err
			}
			ops = append(ops, op)
		}
		for _, event := range saved {
			op, err := docstore.PutOp(docstore.CollectionSavedEvents, event.ID, event)
			if err != nil {
				return err
			}
			ops = append(ops, op)
		}
		marker.Products = len(products)
		marker.Events = len(saved)
	}

	markerOp, err := docstore.PutOp(docstore.CollectionMeta, migrationDocID, marker)
	if err != nil {
		return err
	}
	ops = append(ops, markerOp)

	if err := s.store.BatchCommit(ctx, ops); err != nil {
		return fmt.Errorf("commit migration batch: %w", err)
	}

	s.log.Info("sync: legacy migration complete", "products", marker.Products, "events", marker.Events)
	return nil
}

// RestoreLegacyDraft seeds the draft slot from the legacy in-progress
// event, if one was exported. The draft is local-only state and is never
// synced, so this runs on every start until the file is removed.
func (s *Syncer) RestoreLegacyDraft(dir string) {
	if dir == "" {
		return
	}

	var draft events.Event
	if err := readLegacyFile(filepath.Join(dir, legacyDraftFile), &draft); err != nil {
		s.log.Warn("sync: legacy draft unreadable", "err", err)
		return
	}
	if draft.ID == "" {
		return
	}

	s.events.SeedDraft(draft)
	s.log.Info("sync: legacy draft restored", "event_id", draft.ID)
}

func (s *Syncer) migrationDone(ctx context.Context) (bool, error) {
	docs, err := s.store.List(ctx, docstore.CollectionMeta)
	if err != nil {
		return false, err
	}
	for _, doc := range docs {
		if doc.ID == migrationDocID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Syncer) remoteEmpty(ctx context.Context) (bool, error) {
	products, err := s.store.List(ctx, docstore.CollectionProducts)
	if err != nil {
		return false, err
	}
	saved, err := s.store.List(ctx, docstore.CollectionSavedEvents)
	if err != nil {
		return false, err
	}
	return len(products) == 0 && len(saved) == 0, nil
}

func readLegacyFile(path string, dst any) error {
	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return json.Unmarshal(contents, dst)
}
