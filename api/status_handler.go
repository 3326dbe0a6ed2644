package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/aether-backend/config"
	"github.com/rpupo63/aether-backend/database"
)

const (
	rootMessage  = "ÆTHER backend is running"
	helloMessage = "Hello from ÆTHER API"

	maxDiagnosticCollections = 10
	maxDiagnosticMessage     = 50
	diagnosticsTimeout       = 5 * time.Second
)

type statusHandler struct {
	responder Responder
	logger    zerolog.Logger
	db        database.Database
	config    map[string]string
}

func newStatusHandler(db database.Database, c map[string]string) statusHandler {
	logger := log.With().Str("handlerName", "statusHandler").Logger()

	return statusHandler{
		responder: NewResponder(logger),
		logger:    logger,
		db:        db,
		config:    c,
	}
}

func (h statusHandler) root() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.responder.WriteJSON(w, MessageResponse{Message: rootMessage})
	}
}

func (h statusHandler) hello() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.responder.WriteJSON(w, MessageResponse{Message: helloMessage})
	}
}

// diagnostics always answers 200; failures are reported inside the body.
func (h statusHandler) diagnostics() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := DiagnosticsResponse{
			Backend:          "✅ Running",
			Database:         "❌ Not Available",
			ConnectionStatus: "Not Connected",
			Collections:      []string{},
		}

		h.inspectStore(r.Context(), &response)

		h.responder.WriteJSON(w, response)
	}
}

func (h statusHandler) inspectStore(ctx context.Context, response *DiagnosticsResponse) {
	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error().Interface("panic", rec).Msg("diagnostics failed")
			response.Database = "❌ Error: " + truncate(fmt.Sprint(rec), maxDiagnosticMessage)
		}
	}()

	if !h.db.Available() {
		response.Database = "⚠️  Available but not initialized"
		return
	}

	response.Database = "✅ Available"

	urlStatus := "❌ Not Set"
	if config.IsSet(h.config, "DATABASE_URL") {
		urlStatus = "✅ Set"
	}
	response.DatabaseURL = &urlStatus

	name := h.db.Store().Name()
	if name == "" {
		name = "✅ Connected"
	}
	response.DatabaseName = &name
	response.ConnectionStatus = "Connected"

	collections, err := h.listCollections(ctx)
	if err != nil {
		h.logger.Warn().Err(err).Msg("listing collections failed")
		response.Database = "⚠️  Connected but Error: " + truncate(err.Error(), maxDiagnosticMessage)
		return
	}

	if len(collections) > maxDiagnosticCollections {
		collections = collections[:maxDiagnosticCollections]
	}
	if collections == nil {
		collections = []string{}
	}
	response.Collections = collections
	response.Database = "✅ Connected & Working"
}

func (h statusHandler) listCollections(ctx context.Context) (collections []string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%v", rec)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, diagnosticsTimeout)
	defer cancel()

	return h.db.Store().ListCollections(ctx)
}

// truncate cuts s to at most n characters.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
