// Package apperr is the error taxonomy of the cart/order core. Every error
// crossing a handler boundary is either one of these kinds or an unexpected
// storage failure, which is reported as a plain 500 with no detail leaked.
package apperr

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Kind int

const (
	KindValidation Kind = iota // missing or invalid caller input
	KindNotFound               // referenced row absent or not owned by caller
	KindEmptyCart              // checkout attempted with no lines
	KindConflict               // concurrent mutation invalidated an expected previous state
)

type Error struct {
	Kind  Kind
	Field string // set for validation errors, field-level detail
	Msg   string
}

func (e *Error) Error() string {
	if e.Field != "" {
		return e.Field + ": " + e.Msg
	}
	return e.Msg
}

func Validation(field, msg string) *Error {
	return &Error{Kind: KindValidation, Field: field, Msg: msg}
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Msg: msg}
}

func EmptyCart() *Error {
	return &Error{Kind: KindEmptyCart, Msg: "cart is empty"}
}

func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Msg: msg}
}

// IsKind reports whether err is an app error of the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// Respond translates err into the caller-visible JSON result.
func Respond(c *gin.Context, err error) {
	var appErr *Error
	if !errors.As(err, &appErr) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	status := http.StatusInternalServerError
	switch appErr.Kind {
	case KindValidation, KindEmptyCart:
		status = http.StatusBadRequest
	case KindNotFound:
		status = http.StatusNotFound
	case KindConflict:
		status = http.StatusConflict
	}

	body := gin.H{"error": appErr.Msg}
	if appErr.Field != "" {
		body["field"] = appErr.Field
	}
	c.JSON(status, body)
}
