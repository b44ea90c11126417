package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies a failed upstream lookup. Handlers map kinds to HTTP
// statuses; callers branch on kinds instead of inspecting message strings.
type ErrorKind string

const (
	KindMissingCredential ErrorKind = "missing_credential"
	KindTimeout           ErrorKind = "timeout"
	KindAPIStatus         ErrorKind = "api_status"
	KindInvalidResponse   ErrorKind = "invalid_response"
	KindModelLoading      ErrorKind = "model_loading"
)

// ModelLoadingMessage is surfaced verbatim when the inference endpoint
// answers 503 while the hosted model is still warming up.
const ModelLoadingMessage = "Model is currently loading. Please try again in a moment."

type RequestError struct {
	Kind       ErrorKind
	StatusCode int // upstream status code, zero when not applicable
	Message    string
	Err        error
}

func (e *RequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

func NewMissingCredentialError(name string) error {
	return &RequestError{
		Kind:    KindMissingCredential,
		Message: fmt.Sprintf("%s is missing", name),
	}
}

func NewTimeoutError(target string, err error) error {
	return &RequestError{
		Kind:    KindTimeout,
		Message: fmt.Sprintf("request to %s timed out", target),
		Err:     err,
	}
}

// NewAPIStatusError classifies a non-2xx upstream answer. 400 and 403 carry
// credential-oriented hints because they are almost always key problems.
func NewAPIStatusError(target string, statusCode int, err error) error {
	var msg string
	switch statusCode {
	case http.StatusBadRequest:
		msg = fmt.Sprintf("%s error (400): bad request (check API key?)", target)
	case http.StatusForbidden:
		msg = fmt.Sprintf("%s error (403): forbidden (check API enabled/permissions?)", target)
	default:
		msg = fmt.Sprintf("%s error (%d)", target, statusCode)
	}
	return &RequestError{
		Kind:       KindAPIStatus,
		StatusCode: statusCode,
		Message:    msg,
		Err:        err,
	}
}

func NewModelLoadingError() error {
	return &RequestError{
		Kind:       KindModelLoading,
		StatusCode: http.StatusServiceUnavailable,
		Message:    ModelLoadingMessage,
	}
}

func NewInvalidResponseError(target string, err error) error {
	return &RequestError{
		Kind:    KindInvalidResponse,
		Message: fmt.Sprintf("unexpected response from %s", target),
		Err:     err,
	}
}

// AsRequestError unwraps err into a *RequestError when it carries one.
func AsRequestError(err error) (*RequestError, bool) {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr, true
	}
	return nil, false
}

// HTTPStatus maps a classified error to the status the API answers with.
// Unclassified errors are treated as internal.
func HTTPStatus(err error) int {
	reqErr, ok := AsRequestError(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch reqErr.Kind {
	case KindMissingCredential:
		return http.StatusBadRequest
	case KindTimeout:
		return http.StatusGatewayTimeout
	case KindModelLoading:
		return http.StatusServiceUnavailable
	case KindAPIStatus, KindInvalidResponse:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
