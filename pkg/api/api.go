// Package api defines the HTTP and websocket wire format shared by the store
// server and the remote store client.
package api

import (
	"net/url"

	"github.com/aretw0/jotter/pkg/core"
)

// Route templates, in gorilla/mux syntax.
const (
	RouteDocuments = "/v1/collections/{collection}/documents"
	RouteDocument  = "/v1/collections/{collection}/documents/{id}"
	RouteLive      = "/v1/collections/{collection}/live"
	RouteHealth    = "/healthz"
	RouteMetrics   = "/metrics"
)

// Frame types sent on the live websocket.
const (
	FrameSnapshot = "snapshot"
	FrameError    = "error"
)

// Frame is one server-to-client message on the live websocket.
type Frame struct {
	Type      string        `json:"type"`
	Documents core.Snapshot `json:"documents,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// DocumentsResponse is the body of a collection listing.
type DocumentsResponse struct {
	Documents core.Snapshot `json:"documents"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the body of the health check.
type HealthResponse struct {
	Status string `json:"status"`
}

// DocumentsPath returns the escaped listing path for collection.
func DocumentsPath(collection string) string {
	return "/v1/collections/" + url.PathEscape(collection) + "/documents"
}

// DocumentPath returns the escaped path of a single document.
func DocumentPath(collection, id string) string {
	return DocumentsPath(collection) + "/" + url.PathEscape(id)
}

// LivePath returns the escaped websocket path for collection.
func LivePath(collection string) string {
	return "/v1/collections/" + url.PathEscape(collection) + "/live"
}
