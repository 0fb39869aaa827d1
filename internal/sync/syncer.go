// Package sync keeps the in-memory stores eventually consistent with the
// shared document collections: remote snapshots flow in wholesale, local
// mutations were already pushed by the stores themselves. Ordering is
// last-writer-wins per document id.
package sync

import (
	"context"
	"time"

	"sweets-app-go/internal/docstore"
	"sweets-app-go/internal/domain/events"
	"sweets-app-go/pkg/logger"
)

const resubscribeDelay = time.Second

type CatalogStore interface {
	ApplySnapshot(docs []docstore.Document)
}

type EventStore interface {
	ApplySnapshot(docs []docstore.Document)
	SeedDraft(event events.Event)
}

type Syncer struct {
	store   docstore.Store
	catalog CatalogStore
	events  EventStore
	log     logger.Logger
}

func New(store docstore.Store, catalog CatalogStore, events EventStore, log logger.Logger) *Syncer {
	return &Syncer{
		store:   store,
		catalog: catalog,
		events:  events,
		log:     log,
	}
}

// Run subscribes to both collections and blocks until ctx is done. A
// dropped subscription is re-established after a short delay.
func (s *Syncer) Run(ctx context.Context) {
	done := make(chan struct{}, 2)

	go func() {
		s.subscribeLoop(ctx, docstore.CollectionProducts, s.catalog.ApplySnapshot)
		done <- struct{}{}
	}()
	go func() {
		s.subscribeLoop(ctx, docstore.CollectionSavedEvents, s.events.ApplySnapshot)
		done <- struct{}{}
	}()

	<-done
	<-done
}

func (s *Syncer) subscribeLoop(ctx context.Context, collection string, apply func([]docstore.Document)) {
	for {
		err := s.store.Subscribe(ctx, collection, func(docs []docstore.Document) {
			s.log.Debug("sync: snapshot received", "collection", collection, "docs", len(docs))
			apply(docs)
		})
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			s.log.Error("sync: subscription dropped", "collection", collection, "err", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(resubscribeDelay):
		}
	}
}
