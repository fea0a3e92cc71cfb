package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Third-Party Provider Errors
var (
	ErrEmailProvider = errors.New("email provider error")
	ErrSMSProvider   = errors.New("sms provider error")
)

// Configuration & Environment Errors
var (
	ErrConfigMissing = errors.New("configuration missing")
	ErrConfigInvalid = errors.New("configuration invalid")
)

func NewEmailProviderError(statusCode int, message string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadGateway,
		err:        ErrEmailProvider,
		Details:    fmt.Sprintf("provider responded %d: %s", statusCode, message),
	}
}

func NewSMSProviderError(cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadGateway,
		err:        ErrSMSProvider,
		Details:    "sms provider rejected the message",
		Cause:      cause,
	}
}

func NewConfigMissingError(key string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrConfigMissing,
		Details:    fmt.Sprintf("%s is not set in environment variables", key),
		Field:      key,
	}
}

func NewConfigInvalidError(key, reason string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrConfigInvalid,
		Details:    fmt.Sprintf("%s: %s", key, reason),
		Field:      key,
	}
}

func IsEmailProviderError(err error) bool {
	return errors.Is(err, ErrEmailProvider)
}

func IsConfigMissing(err error) bool {
	return errors.Is(err, ErrConfigMissing)
}
