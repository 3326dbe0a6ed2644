package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/aether-backend/database"
	"github.com/rpupo63/aether-backend/errs"
	"github.com/rpupo63/aether-backend/models"
)

const defaultProjectLimit = 12

type projectHandler struct {
	responder    Responder
	logger       zerolog.Logger
	projectRepo  *database.ProjectRepo
	maxBodyBytes int64
}

func newProjectHandler(projectRepo *database.ProjectRepo, maxBodyBytes int64) projectHandler {
	logger := log.With().Str("handlerName", "projectHandler").Logger()

	return projectHandler{
		responder:    NewResponder(logger),
		logger:       logger,
		projectRepo:  projectRepo,
		maxBodyBytes: maxBodyBytes,
	}
}

// listProjects returns up to `limit` projects, optionally filtered on `featured`.
// GET /api/projects?featured=<bool>&limit=<int>
func (h projectHandler) listProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		featured, err := parseOptionalBool(query, "featured")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		limit, err := parseLimit(query, "limit", defaultProjectLimit)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		records, err := h.projectRepo.FindAll(r.Context(), featured, limit)
		if err != nil {
			if errs.IsStoreUnavailable(err) {
				h.responder.WriteError(w, errs.NewStoreUnavailableError())
				return
			}
			h.responder.WriteError(w, errs.NewInternalErrorWithCause("Failed to find projects", err))
			return
		}

		projects := make([]models.ProjectOut, 0, len(records))
		for _, record := range records {
			project, err := models.NewProjectOut(record)
			if err != nil {
				h.responder.WriteError(w, errs.NewMalformedRecordError("project", err))
				return
			}
			projects = append(projects, project)
		}

		h.responder.WriteJSON(w, projects)
	}
}

// createProject validates the body and stores it as a new project.
// POST /api/projects
func (h projectHandler) createProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)

		bodyBytes, err := io.ReadAll(r.Body)
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				h.responder.WriteError(w, errs.NewMaxBodySizeExceededError(maxErr.Limit))
				return
			}
			h.logger.Error().Err(err).Msg("Failed to read request body")
			h.responder.WriteError(w, errs.NewBadRequestError("failed to read request body"))
			return
		}

		var payload models.ProjectPayload
		if err := json.Unmarshal(bodyBytes, &payload); err != nil {
			h.logger.Warn().Err(err).Msg("Failed to decode project request body")
			h.responder.WriteError(w, decodeError("project", err))
			return
		}

		if err := payload.Validate(); err != nil {
			h.responder.WriteError(w, validationError(err))
			return
		}

		id, err := h.projectRepo.Add(r.Context(), payload.Project())
		if err != nil {
			if errs.IsStoreUnavailable(err) {
				h.responder.WriteError(w, errs.NewStoreUnavailableError())
				return
			}
			h.logger.Warn().Err(err).Msg("store rejected project")
			h.responder.WriteError(w, errs.NewStoreInsertError("project", err))
			return
		}

		h.responder.WriteJSONWithStatus(w, http.StatusCreated, CreatedResponse{ID: id})
	}
}

// getProject answers 400 for an id the store cannot parse or any lookup
// failure, and 404 only when a well-formed id matches nothing.
// GET /api/projects/{projectID}
func (h projectHandler) getProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID := chi.URLParam(r, "projectID")

		record, err := h.projectRepo.FindByID(r.Context(), projectID)
		if err != nil {
			if errs.IsStoreUnavailable(err) {
				h.responder.WriteError(w, errs.NewStoreUnavailableError())
				return
			}
			if errs.IsInvalidIdentifier(err) {
				h.logger.Debug().Err(err).Str("projectID", projectID).Msg("unparseable project id")
			} else {
				h.logger.Error().Err(err).Str("projectID", projectID).Msg("project lookup failed")
			}
			h.responder.WriteError(w, errs.NewInvalidIdentifierError(err))
			return
		}

		if record == nil {
			h.responder.WriteError(w, errs.NewNotFoundError("Project not found"))
			return
		}

		project, err := models.NewProjectOut(*record)
		if err != nil {
			h.responder.WriteError(w, errs.NewInvalidIdentifierError(err))
			return
		}

		h.responder.WriteJSON(w, project)
	}
}
