package errs

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrDatabaseQuery      = errors.New("database query failed")
	ErrDatabaseConnection = errors.New("database connection failed")
	ErrNotConnected       = errors.New("database not connected")
	ErrNoInsertedID       = errors.New("insert reported no assigned identifier")
)

func NewNotFound(entity string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusNotFound,
		err:        fmt.Errorf("%s %w", entity, ErrNotFound),
	}
}

// NewStoreError is returned when a submission could not be written. The cause stays server-side.
func NewStoreError(entity string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrDatabaseQuery,
		Details:    fmt.Sprintf("Failed to store %s details", entity),
		Cause:      cause,
	}
}

func NewDatabaseConnectionError(attempts int, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusServiceUnavailable,
		err:        ErrDatabaseConnection,
		Details:    fmt.Sprintf("Unable to connect to database after %d attempt(s)", attempts),
		Cause:      cause,
	}
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsDatabaseConnectionError(err error) bool {
	return errors.Is(err, ErrDatabaseConnection)
}

func IsStoreError(err error) bool {
	return errors.Is(err, ErrDatabaseQuery)
}
