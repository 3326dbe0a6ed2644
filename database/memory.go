package database

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-memdb"

	"github.com/rpupo63/aether-backend/errs"
	"github.com/rpupo63/aether-backend/models"
)

const documentsTable = "documents"

// memDocument keeps the body serialized so callers never share memory with
// the store.
type memDocument struct {
	ID         string
	Collection string
	Body       []byte
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func memorySchema() *memdb.DBSchema {
	return &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			documentsTable: {
				Name: documentsTable,
				Indexes: map[string]*memdb.IndexSchema{
					"id": {
						Name:    "id",
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "ID"},
					},
					"collection": {
						Name:    "collection",
						Indexer: &memdb.StringFieldIndex{Field: "Collection"},
					},
				},
			},
		},
	}
}

// MemoryStore is a process-local document store backed by go-memdb. Used for
// DB_TYPE=memory and in tests.
type MemoryStore struct {
	db *memdb.MemDB
}

func NewMemoryStore() (*MemoryStore, error) {
	db, err := memdb.NewMemDB(memorySchema())
	if err != nil {
		return nil, err
	}
	return &MemoryStore{db}, nil
}

func (s *MemoryStore) Insert(ctx context.Context, collection string, project models.Project) (string, error) {
	body, err := json.Marshal(project)
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	doc := &memDocument{
		ID:         uuid.NewString(),
		Collection: collection,
		Body:       body,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	txn := s.db.Txn(true)
	defer txn.Abort()
	if err := txn.Insert(documentsTable, doc); err != nil {
		return "", err
	}
	txn.Commit()

	return doc.ID, nil
}

func (s *MemoryStore) Find(ctx context.Context, collection string, filter Filter, limit int64) ([]models.ProjectRecord, error) {
	records := []models.ProjectRecord{}
	if limit <= 0 {
		return records, nil
	}

	want, err := normalize(filter)
	if err != nil {
		return nil, err
	}

	txn := s.db.Txn(false)
	defer txn.Abort()

	it, err := txn.Get(documentsTable, "collection", collection)
	if err != nil {
		return nil, err
	}

	for obj := it.Next(); obj != nil && int64(len(records)) < limit; obj = it.Next() {
		doc := obj.(*memDocument)

		ok, err := matches(doc.Body, want)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		record, err := doc.record()
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func (s *MemoryStore) FindByID(ctx context.Context, collection string, id string) (*models.ProjectRecord, error) {
	parsed, err := parseDocumentID(id)
	if err != nil {
		return nil, err
	}

	txn := s.db.Txn(false)
	defer txn.Abort()

	obj, err := txn.First(documentsTable, "id", parsed.String())
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, nil
	}

	doc := obj.(*memDocument)
	if doc.Collection != collection {
		return nil, nil
	}

	record, err := doc.record()
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *MemoryStore) Name() string {
	return "memory"
}

func (s *MemoryStore) ListCollections(ctx context.Context) ([]string, error) {
	txn := s.db.Txn(false)
	defer txn.Abort()

	it, err := txn.Get(documentsTable, "id")
	if err != nil {
		return nil, err
	}

	seen := map[string]struct{}{}
	for obj := it.Next(); obj != nil; obj = it.Next() {
		seen[obj.(*memDocument).Collection] = struct{}{}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}

func (d *memDocument) record() (models.ProjectRecord, error) {
	var project models.Project
	if err := json.Unmarshal(d.Body, &project); err != nil {
		return models.ProjectRecord{}, fmt.Errorf("%w: document %s: %v", errs.ErrMalformedRecord, d.ID, err)
	}
	return models.ProjectRecord{
		ID:        d.ID,
		Project:   project,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}, nil
}

// normalize puts filter values into the form json.Unmarshal produces so they
// compare equal to decoded bodies (ints become float64 and so on).
func normalize(filter Filter) (map[string]any, error) {
	if len(filter) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(filter)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func matches(body []byte, want map[string]any) (bool, error) {
	if len(want) == 0 {
		return true, nil
	}
	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		return false, fmt.Errorf("%w: %v", errs.ErrMalformedRecord, err)
	}
	for k, v := range want {
		if !reflect.DeepEqual(fields[k], v) {
			return false, nil
		}
	}
	return true, nil
}
