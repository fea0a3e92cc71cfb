package api

import (
	"time"
)

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(submitter Submitter, startupTime time.Time) *routeHandlers {
	return &routeHandlers{
		intakeHandler: newIntakeHandler(submitter),
		healthHandler: newHealthHandler(startupTime),
	}
}
