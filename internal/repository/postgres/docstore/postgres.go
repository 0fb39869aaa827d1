package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	store "sweets-app-go/internal/docstore"
)

const defaultPollInterval = 2 * time.Second

type Document struct {
	Collection string          `gorm:"primaryKey;column:collection"`
	DocID      string          `gorm:"primaryKey;column:doc_id"`
	Data       json.RawMessage `gorm:"type:jsonb;not null"`
	CreatedAt  time.Time       `gorm:"autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"autoUpdateTime"`
}

func (Document) TableName() string {
	return "documents"
}

// PostgresStore keeps each collection as rows in the documents table.
// Change detection for subscriptions is a poll over row count and the
// newest updated_at, which covers puts, overwrites and deletes.
type PostgresStore struct {
	db           *gorm.DB
	pollInterval time.Duration
}

func NewPostgres(db *gorm.DB, pollInterval time.Duration) *PostgresStore {
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	return &PostgresStore{db: db, pollInterval: pollInterval}
}

func (s *PostgresStore) Put(ctx context.Context, collection, id string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", collection, id, err)
	}
	return putTx(s.db.WithContext(ctx), collection, id, data)
}

func (s *PostgresStore) Delete(ctx context.Context, collection, id string) error {
	return s.db.WithContext(ctx).
		Delete(&Document{}, "collection = ? AND doc_id = ?", collection, id).Error
}

func (s *PostgresStore) BatchCommit(ctx context.Context, ops []store.Op) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, op := range ops {
			switch op.Kind {
			case store.OpPut:
				if err := putTx(tx, op.Collection, op.ID, op.Data); err != nil {
					return err
				}
			case store.OpDelete:
				if err := tx.Delete(&Document{}, "collection = ? AND doc_id = ?", op.Collection, op.ID).Error; err != nil {
					return err
				}
			default:
				return fmt.Errorf("unsupported op kind %q", op.Kind)
			}
		}
		return nil
	})
}

func (s *PostgresStore) List(ctx context.Context, collection string) ([]store.Document, error) {
	var rows []Document
	if err := s.db.WithContext(ctx).
		Where("collection = ?", collection).
		Order("created_at asc, doc_id asc").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	docs := make([]store.Document, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, store.Document{ID: row.DocID, Data: row.Data})
	}
	return docs, nil
}

func (s *PostgresStore) Subscribe(ctx context.Context, collection string, onChange func([]store.Document)) error {
	var last fingerprint
	deliver := func() error {
		current, err := s.fingerprint(ctx, collection)
		if err != nil {
			return err
		}
		if current == last {
			return nil
		}
		docs, err := s.List(ctx, collection)
		if err != nil {
			return err
		}
		last = current
		onChange(docs)
		return nil
	}

	// First delivery carries the initial state even when empty.
	docs, err := s.List(ctx, collection)
	if err != nil {
		return err
	}
	if last, err = s.fingerprint(ctx, collection); err != nil {
		return err
	}
	onChange(docs)

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := deliver(); err != nil {
				return err
			}
		}
	}
}

type fingerprint struct {
	Count     int64
	UpdatedAt time.Time
}

func (s *PostgresStore) fingerprint(ctx context.Context, collection string) (fingerprint, error) {
	var fp fingerprint
	err := s.db.WithContext(ctx).
		Raw(`SELECT COUNT(*) AS count, COALESCE(MAX(updated_at), 'epoch'::timestamptz) AS updated_at
		     FROM documents WHERE collection = ?`, collection).
		Scan(&fp).Error
	return fp, err
}

func putTx(tx *gorm.DB, collection, id string, data json.RawMessage) error {
	doc := Document{
		Collection: collection,
		DocID:      id,
		Data:       data,
		UpdatedAt:  time.Now().UTC(),
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "collection"}, {Name: "doc_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&doc).Error
}
