package api

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	statusHandler  statusHandler
	projectHandler projectHandler
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Detail string `json:"detail"`
	Status string `json:"status"`
	Field  string `json:"field,omitempty"`
	Cause  string `json:"cause,omitempty"`
}

// MessageResponse is returned by the static endpoints.
type MessageResponse struct {
	Message string `json:"message"`
}

// CreatedResponse carries the id assigned to a new record.
type CreatedResponse struct {
	ID string `json:"id"`
}

// DiagnosticsResponse reports backend and store health. Every field is filled
// even when the store is unreachable.
type DiagnosticsResponse struct {
	Backend          string   `json:"backend"`
	Database         string   `json:"database"`
	DatabaseURL      *string  `json:"database_url"`
	DatabaseName     *string  `json:"database_name"`
	ConnectionStatus string   `json:"connection_status"`
	Collections      []string `json:"collections"`
}
