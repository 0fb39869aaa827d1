// Package docstore defines the document-collection contract between the
// in-memory stores and the persistent backing store. Per-document writes
// are last-writer-wins; BatchCommit is all-or-nothing.
package docstore

import (
	"context"
	"encoding/json"
	"fmt"
)

const (
	CollectionProducts    = "products"
	CollectionSavedEvents = "saved_events"
	CollectionMeta        = "meta"
)

type Document struct {
	ID   string
	Data json.RawMessage
}

type OpKind string

const (
	OpPut    OpKind = "put"
	OpDelete OpKind = "delete"
)

type Op struct {
	Kind       OpKind
	Collection string
	ID         string
	Data       json.RawMessage
}

func PutOp(collection, id string, doc any) (Op, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return Op{}, fmt.Errorf("encode %s/%s: %w", collection, id, err)
	}
	return Op{Kind: OpPut, Collection: collection, ID: id, Data: data}, nil
}

func DeleteOp(collection, id string) Op {
	return Op{Kind: OpDelete, Collection: collection, ID: id}
}

// Writer is the mutation half of the contract; the stores push every
// local mutation through it.
type Writer interface {
	Put(ctx context.Context, collection, id string, doc any) error
	Delete(ctx context.Context, collection, id string) error
	BatchCommit(ctx context.Context, ops []Op) error
}

// Store adds reads and the live change feed. Subscribe delivers the full
// collection snapshot on every change (including the initial state) and
// blocks until ctx is done.
type Store interface {
	Writer
	List(ctx context.Context, collection string) ([]Document, error)
	Subscribe(ctx context.Context, collection string, onChange func([]Document)) error
}
