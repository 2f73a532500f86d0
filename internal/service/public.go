// Package service implements the per-request authorization protocol over the
// User and Event resources: resolve grants for the caller's role, verify
// ownership when only an own-scope grant applies, whitelist-filter written
// attributes, and scope list reads to the caller's own records.
package service

import (
	"errors"

	"github.com/colibie/events-app-api/internal/model"
	"github.com/colibie/events-app-api/internal/repository/query"
)

// Caller is the authenticated identity a request runs as.
type Caller struct {
	Id   string
	Role string
}

// Status is the terminal state of one authorized operation. The transport
// layer maps it to a protocol status code.
type Status int

const (
	// StatusOKAny: allowed through an any-scope grant.
	StatusOKAny Status = iota
	// StatusOKOwn: allowed through an own-scope grant after an ownership check.
	StatusOKOwn
	StatusNotFound
	StatusForbidden
	StatusClientError
	StatusServerError
)

func (s Status) OK() bool {
	return s == StatusOKAny || s == StatusOKOwn
}

// Outcome carries the terminal state of an operation plus its payload.
// Record is set for single-record operations, Page for lists.
type Outcome[T any] struct {
	Status  Status
	Record  T
	Page    *query.Page[T]
	Message string
}

func okAny[T any](record T) Outcome[T] {
	return Outcome[T]{Status: StatusOKAny, Record: record}
}

func okOwn[T any](record T) Outcome[T] {
	return Outcome[T]{Status: StatusOKOwn, Record: record}
}

func okAnyPage[T any](page *query.Page[T]) Outcome[T] {
	return Outcome[T]{Status: StatusOKAny, Page: page}
}

func okOwnPage[T any](page *query.Page[T]) Outcome[T] {
	return Outcome[T]{Status: StatusOKOwn, Page: page}
}

func notFound[T any](resource string) Outcome[T] {
	return Outcome[T]{Status: StatusNotFound, Message: resource + " not found"}
}

func forbidden[T any]() Outcome[T] {
	return Outcome[T]{Status: StatusForbidden, Message: "operation not allowed"}
}

// failure classifies a store-layer error: validation rejections carry their
// message to the caller, anything else is a generic internal failure.
func failure[T any](err error, fallback string) Outcome[T] {
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		return Outcome[T]{Status: StatusClientError, Message: verr.Error()}
	}
	return Outcome[T]{Status: StatusServerError, Message: fallback}
}
