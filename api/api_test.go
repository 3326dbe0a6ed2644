package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rpupo63/aether-backend/database"
	"github.com/rpupo63/aether-backend/models"
)

// failingStore fails every call; ListCollections can panic instead.
type failingStore struct {
	err         error
	panicOnList bool
}

func (s failingStore) Insert(ctx context.Context, collection string, project models.Project) (string, error) {
	return "", s.err
}

func (s failingStore) Find(ctx context.Context, collection string, filter database.Filter, limit int64) ([]models.ProjectRecord, error) {
	return nil, s.err
}

func (s failingStore) FindByID(ctx context.Context, collection string, id string) (*models.ProjectRecord, error) {
	return nil, s.err
}

func (s failingStore) Name() string { return "broken" }

func (s failingStore) ListCollections(ctx context.Context) ([]string, error) {
	if s.panicOnList {
		panic("collection listing exploded")
	}
	return nil, s.err
}

func (s failingStore) Close(ctx context.Context) error { return nil }

var errStoreDown = errors.New("connection refused by the document store while writing the record")

func newTestStore(t *testing.T) *database.MemoryStore {
	t.Helper()
	store, err := database.NewMemoryStore()
	require.NoError(t, err)
	return store
}

// setupTestRouter builds the full router. A nil store runs it without a database.
func setupTestRouter(t *testing.T, store database.Store, extra map[string]string) http.Handler {
	t.Helper()
	c := map[string]string{"DATABASE_URL": "memory://test"}
	for k, v := range extra {
		c[k] = v
	}
	return newRouter(database.New(store), withConfig(c))
}

func doRequest(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func doRequestWithHeaders(t *testing.T, h http.Handler, method, target string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}
