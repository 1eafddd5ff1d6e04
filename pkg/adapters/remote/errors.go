package remote

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/aretw0/jotter/pkg/api"
	"github.com/aretw0/jotter/pkg/core"
)

// StatusError is returned when the server answers with a non-2xx status.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("remote store: %d %s", e.Code, http.StatusText(e.Code))
	}
	return fmt.Sprintf("remote store: %d %s: %s", e.Code, http.StatusText(e.Code), e.Message)
}

// Unwrap maps well-known statuses back to the core sentinel errors,
// so errors.Is works the same against local and remote stores.
func (e *StatusError) Unwrap() error {
	switch e.Code {
	case http.StatusForbidden:
		return core.ErrReadOnly
	case http.StatusNotFound:
		return core.ErrNotFound
	default:
		return nil
	}
}

func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var payload api.ErrorResponse
	msg := ""
	if json.Unmarshal(body, &payload) == nil {
		msg = payload.Error
	}
	return &StatusError{Code: resp.StatusCode, Message: msg}
}
