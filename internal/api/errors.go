package api

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"
)

// Error is the JSON error body: {"code", "message", "data": {"status"}}.
type Error struct {
	Code    string    `json:"code"`
	Message string    `json:"message"`
	Data    ErrorData `json:"data"`
}

// ErrorData carries the HTTP status and, for validation errors, the
// offending parameters.
type ErrorData struct {
	Status int               `json:"status"`
	Params map[string]string `json:"params,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Code + ": " + e.Message
}

// Generic error codes shared by every brand.
const (
	CodeNoRoute      = "rest_no_route"
	CodeInvalidParam = "rest_invalid_param"
)

const noRouteMessage = "No route was found matching the URL and request method."

func noRoute() *Error {
	return &Error{Code: CodeNoRoute, Message: noRouteMessage, Data: ErrorData{Status: http.StatusNotFound}}
}

func invalidParams(params map[string]string) *Error {
	names := make([]string, 0, len(params))
	for k := range params {
		names = append(names, k)
	}
	sort.Strings(names)
	return &Error{
		Code:    CodeInvalidParam,
		Message: "Invalid parameter(s): " + strings.Join(names, ", "),
		Data:    ErrorData{Status: http.StatusBadRequest, Params: params},
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, e *Error) {
	writeJSON(w, e.Data.Status, e)
}
