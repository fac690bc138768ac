// Package apperr defines the cafe's error taxonomy. Every domain error
// carries a Kind used to pick the reply text and the admin HTTP status.
package apperr

import (
	"context"
	"errors"
	"net/http"
)

type kindError struct {
	kind string
	msg  string
}

func (e kindError) Error() string { return e.msg }
func (e kindError) Kind() string  { return e.kind }

var (
	ErrEmptyName       = kindError{kind: "empty_name", msg: "customer name is empty"}
	ErrNameInUse       = kindError{kind: "name_in_use", msg: "customer name already in use"}
	ErrInvalidCommand  = kindError{kind: "invalid_command", msg: "invalid command"}
	ErrMalformedOrder  = kindError{kind: "malformed_order", msg: "malformed order"}
	ErrUnknownItem     = kindError{kind: "unknown_item", msg: "unknown item"}
	ErrNotReady        = kindError{kind: "not_ready", msg: "nothing ready for collection"}
	ErrUnknownCustomer = kindError{kind: "unknown_customer", msg: "no active orders"}
)

// kinder is satisfied by errors that carry a classification kind.
type kinder interface {
	Kind() string
}

// Kind returns the classification of err.
func Kind(err error) string {
	if err == nil {
		return ""
	}
	var k kinder
	if errors.As(err, &k) {
		return k.Kind()
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "internal"
	}
}

var kindToStatus = map[string]int{
	"empty_name":       http.StatusBadRequest,
	"name_in_use":      http.StatusConflict,
	"invalid_command":  http.StatusBadRequest,
	"malformed_order":  http.StatusBadRequest,
	"unknown_item":     http.StatusBadRequest,
	"not_ready":        http.StatusNotFound,
	"unknown_customer": http.StatusNotFound,
	"timeout":          http.StatusGatewayTimeout,
	"canceled":         http.StatusRequestTimeout,
}

// HTTPStatus maps err to the status the admin surface replies with.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if s, ok := kindToStatus[Kind(err)]; ok {
		return s
	}
	return http.StatusInternalServerError
}
