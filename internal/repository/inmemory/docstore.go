package inmemory

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"sweets-app-go/internal/docstore"
)

type record struct {
	data json.RawMessage
	seq  int64
}

type watcher struct {
	collection string
	ch         chan []docstore.Document
}

// DocStore is an in-memory document collection with live subscriptions.
// It backs the sync layer in tests and mirrors the persistent store's
// contract, including all-or-nothing batches.
type DocStore struct {
	mu          sync.Mutex
	seq         int64
	collections map[string]map[string]record
	watchers    []*watcher
	failErr     error
}

func NewDocStore() *DocStore {
	return &DocStore{
		collections: make(map[string]map[string]record),
	}
}

// FailWith makes every subsequent write fail with err. Pass nil to heal.
func (s *DocStore) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failErr = err
}

func (s *DocStore) Put(ctx context.Context, collection, id string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.failErr != nil {
		err := s.failErr
		s.mu.Unlock()
		return err
	}
	s.put(collection, id, data)
	s.mu.Unlock()

	s.notify(collection)
	return nil
}

func (s *DocStore) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	if s.failErr != nil {
		err := s.failErr
		s.mu.Unlock()
		return err
	}
	delete(s.collections[collection], id)
	s.mu.Unlock()

	s.notify(collection)
	return nil
}

func (s *DocStore) BatchCommit(ctx context.Context, ops []docstore.Op) error {
	s.mu.Lock()
	if s.failErr != nil {
		err := s.failErr
		s.mu.Unlock()
		return err
	}

	touched := make(map[string]struct{})
	for _, op := range ops {
		switch op.Kind {
		case docstore.OpPut:
			s.put(op.Collection, op.ID, op.Data)
		case docstore.OpDelete:
			delete(s.collections[op.Collection], op.ID)
		}
		touched[op.Collection] = struct{}{}
	}
	s.mu.Unlock()

	for collection := range touched {
		s.notify(collection)
	}
	return nil
}

func (s *DocStore) List(ctx context.Context, collection string) ([]docstore.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot(collection), nil
}

func (s *DocStore) Subscribe(ctx context.Context, collection string, onChange func([]docstore.Document)) error {
	w := &watcher{
		collection: collection,
		ch:         make(chan []docstore.Document, 16),
	}

	s.mu.Lock()
	s.watchers = append(s.watchers, w)
	w.ch <- s.snapshot(collection)
	s.mu.Unlock()

	defer s.unsubscribe(w)

	for {
		select {
		case <-ctx.Done():
			return nil
		case docs := <-w.ch:
			onChange(docs)
		}
	}
}

func (s *DocStore) put(collection, id string, data json.RawMessage) {
	docs, ok := s.collections[collection]
	if !ok {
		docs = make(map[string]record)
		s.collections[collection] = docs
	}

	seq := s.seq
	if existing, ok := docs[id]; ok {
		seq = existing.seq
	} else {
		s.seq++
		seq = s.seq
	}
	docs[id] = record{data: append(json.RawMessage{}, data...), seq: seq}
}

func (s *DocStore) snapshot(collection string) []docstore.Document {
	type entry struct {
		doc docstore.Document
		seq int64
	}

	entries := make([]entry, 0, len(s.collections[collection]))
	for id, rec := range s.collections[collection] {
		entries = append(entries, entry{
			doc: docstore.Document{ID: id, Data: append(json.RawMessage{}, rec.data...)},
			seq: rec.seq,
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })

	docs := make([]docstore.Document, 0, len(entries))
	for _, e := range entries {
		docs = append(docs, e.doc)
	}
	return docs
}

func (s *DocStore) notify(collection string) {
	s.mu.Lock()
	docs := s.snapshot(collection)
	watchers := append([]*watcher{}, s.watchers...)
	s.mu.Unlock()

	for _, w := range watchers {
		if w.collection != collection {
			continue
		}
		// Replace a pending snapshot instead of blocking the writer.
		select {
		case w.ch <- docs:
		default:
			select {
			case <-w.ch:
			default:
			}
			w.ch <- docs
		}
	}
}

func (s *DocStore) unsubscribe(target *watcher) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.watchers[:0]
	for _, w := range s.watchers {
		if w != target {
			kept = append(kept, w)
		}
	}
	s.watchers = kept
}
