package api

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpupo63/aether-backend/models"
)

func createProject(t *testing.T, h http.Handler, body any) string {
	t.Helper()
	rec := doRequest(t, h, http.MethodPost, "/api/projects", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	created := decodeBody[CreatedResponse](t, rec)
	require.NotEmpty(t, created.ID)
	return created.ID
}

func TestCreateThenGetRoundTrip(t *testing.T) {
	t.Run("full payload", func(t *testing.T) {
		h := setupTestRouter(t, newTestStore(t), nil)

		payload := map[string]any{
			"title":       "Orbit",
			"summary":     "An n-body sim",
			"description": "Runs in the browser",
			"tags":        []string{"go", "wasm"},
			"year":        2024,
			"featured":    true,
			"cover_image": "https://cdn.example/orbit.png",
			"demo_url":    "https://orbit.example",
			"media_url":   "https://cdn.example/orbit.mp4",
		}
		id := createProject(t, h, payload)

		rec := doRequest(t, h, http.MethodGet, "/api/projects/"+id, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		expected := fmt.Sprintf(`{
			"id": %q,
			"title": "Orbit",
			"summary": "An n-body sim",
			"description": "Runs in the browser",
			"tags": ["go", "wasm"],
			"year": 2024,
			"featured": true,
			"cover_image": "https://cdn.example/orbit.png",
			"demo_url": "https://orbit.example",
			"media_url": "https://cdn.example/orbit.mp4"
		}`, id)
		assert.JSONEq(t, expected, rec.Body.String())
	})

	t.Run("defaults for omitted fields", func(t *testing.T) {
		h := setupTestRouter(t, newTestStore(t), nil)
		id := createProject(t, h, `{"title":"Orbit","summary":"An n-body sim"}`)

		rec := doRequest(t, h, http.MethodGet, "/api/projects/"+id, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		out := decodeBody[models.ProjectOut](t, rec)
		assert.Equal(t, id, out.ID)
		assert.Equal(t, []string{}, out.Tags)
		assert.False(t, out.Featured)
		assert.Nil(t, out.Description)
		assert.Nil(t, out.Year)
		assert.Nil(t, out.CoverImage)
		assert.Nil(t, out.DemoURL)
		assert.Nil(t, out.MediaURL)
	})

	t.Run("client supplied id is ignored", func(t *testing.T) {
		h := setupTestRouter(t, newTestStore(t), nil)
		id := createProject(t, h, `{"id":"mine","title":"Orbit","summary":"An n-body sim"}`)
		assert.NotEqual(t, "mine", id)
	})
}

func TestListProjects(t *testing.T) {
	h := setupTestRouter(t, newTestStore(t), nil)
	for i := 0; i < 15; i++ {
		createProject(t, h, map[string]any{
			"title":    fmt.Sprintf("project %d", i),
			"summary":  "s",
			"featured": i%3 == 0,
		})
	}

	list := func(t *testing.T, query string) []models.ProjectOut {
		rec := doRequest(t, h, http.MethodGet, "/api/projects"+query, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		return decodeBody[[]models.ProjectOut](t, rec)
	}

	t.Run("default limit is 12", func(t *testing.T) {
		assert.Len(t, list(t, ""), 12)
	})

	t.Run("featured true", func(t *testing.T) {
		projects := list(t, "?featured=true&limit=100")
		assert.Len(t, projects, 5)
		for _, p := range projects {
			assert.True(t, p.Featured)
			assert.NotEmpty(t, p.ID)
		}
	})

	t.Run("featured false", func(t *testing.T) {
		projects := list(t, "?featured=false&limit=100")
		assert.Len(t, projects, 10)
		for _, p := range projects {
			assert.False(t, p.Featured)
		}
	})

	t.Run("no featured param returns both", func(t *testing.T) {
		assert.Len(t, list(t, "?limit=100"), 15)
	})

	t.Run("limit caps results", func(t *testing.T) {
		for _, n := range []int{0, 1, 7, 15, 40} {
			assert.LessOrEqual(t, len(list(t, fmt.Sprintf("?limit=%d", n))), n)
		}
	})

	t.Run("limit zero is an empty array", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodGet, "/api/projects?limit=0", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})

	t.Run("bad query values are schema violations", func(t *testing.T) {
		for _, query := range []string{"?limit=abc", "?limit=-1", "?featured=maybe", "?featured="} {
			rec := doRequest(t, h, http.MethodGet, "/api/projects"+query, nil)
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, query)
		}
	})

	t.Run("store failure is 500", func(t *testing.T) {
		broken := setupTestRouter(t, failingStore{err: errStoreDown}, nil)
		rec := doRequest(t, broken, http.MethodGet, "/api/projects", nil)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)

		body := decodeBody[ErrorResponse](t, rec)
		assert.Equal(t, "Failed to find projects", body.Detail)
		assert.Contains(t, body.Cause, errStoreDown.Error())
	})
}

func TestListProjectsEmptyStore(t *testing.T) {
	h := setupTestRouter(t, newTestStore(t), nil)

	rec := doRequest(t, h, http.MethodGet, "/api/projects", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestGetProjectFailureKinds(t *testing.T) {
	h := setupTestRouter(t, newTestStore(t), nil)

	t.Run("malformed id is 400", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodGet, "/api/projects/not-an-id", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid id", decodeBody[ErrorResponse](t, rec).Detail)
	})

	t.Run("well-formed but absent id is 404", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodGet, "/api/projects/"+uuid.NewString(), nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Project not found", decodeBody[ErrorResponse](t, rec).Detail)
	})

	t.Run("store failure is 400", func(t *testing.T) {
		broken := setupTestRouter(t, failingStore{err: errStoreDown}, nil)
		rec := doRequest(t, broken, http.MethodGet, "/api/projects/"+uuid.NewString(), nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid id", decodeBody[ErrorResponse](t, rec).Detail)
	})
}

func TestCreateProjectValidation(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"missing title", `{"summary":"s"}`, "title"},
		{"missing summary", `{"title":"t"}`, "summary"},
		{"null title", `{"title":null,"summary":"s"}`, "title"},
		{"null tags", `{"title":"t","summary":"s","tags":null}`, "tags"},
		{"null featured", `{"title":"t","summary":"s","featured":null}`, "featured"},
		{"wrong year type", `{"title":"t","summary":"s","year":"soon"}`, "year"},
		{"wrong tags type", `{"title":"t","summary":"s","tags":"go"}`, "tags"},
		{"wrong featured type", `{"title":"t","summary":"s","featured":"yes"}`, "featured"},
		{"malformed json", `{"title":`, "body"},
		{"empty body", ``, "body"},
		{"array body", `[]`, "body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := setupTestRouter(t, newTestStore(t), nil)

			rec := doRequest(t, h, http.MethodPost, "/api/projects", tt.body)
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
			assert.Equal(t, tt.field, decodeBody[ErrorResponse](t, rec).Field)

			list := doRequest(t, h, http.MethodGet, "/api/projects", nil)
			assert.JSONEq(t, `[]`, list.Body.String(), "no record may be created")
		})
	}
}

func TestCreateProjectStoreFailure(t *testing.T) {
	h := setupTestRouter(t, failingStore{err: errStoreDown}, nil)

	rec := doRequest(t, h, http.MethodPost, "/api/projects", `{"title":"t","summary":"s"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, errStoreDown.Error(), decodeBody[ErrorResponse](t, rec).Detail)
}

func TestCreateProjectBodyTooLarge(t *testing.T) {
	h := setupTestRouter(t, newTestStore(t), map[string]string{"MAX_BODY_BYTES": "64"})

	body := fmt.Sprintf(`{"title":"t","summary":%q}`, strings.Repeat("x", 128))
	rec := doRequest(t, h, http.MethodPost, "/api/projects", body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestProjectsWithoutStore(t *testing.T) {
	h := setupTestRouter(t, nil, nil)

	t.Run("list", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodGet, "/api/projects", nil)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Database not available", decodeBody[ErrorResponse](t, rec).Detail)
	})

	t.Run("create", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodPost, "/api/projects", `{"title":"t","summary":"s"}`)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("create validates before touching the store", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodPost, "/api/projects", `{"summary":"s"}`)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("get", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodGet, "/api/projects/"+uuid.NewString(), nil)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
