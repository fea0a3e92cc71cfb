package api

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	intakeHandler intakeHandler
	healthHandler healthHandler
}

// ErrorResponse represents an error response from the API
// @Description Error response structure
type ErrorResponse struct {
	Detail string `json:"detail" example:"Contact email is required"`
	Field  string `json:"field,omitempty" example:"contactEmail"`
	Status string `json:"status" example:"error"`
}

// HealthResponse reports liveness and how long the process has been serving.
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
	Uptime string `json:"uptime" example:"3h12m4s"`
}
