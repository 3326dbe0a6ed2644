package api

import (
	"github.com/rpupo63/aether-backend/database"
)

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(database database.Database, c map[string]string, maxBodyBytes int64) *routeHandlers {
	return &routeHandlers{
		statusHandler:  newStatusHandler(database, c),
		projectHandler: newProjectHandler(database.ProjectRepo(), maxBodyBytes),
	}
}
