// internal/model/error.go
// Package: model
package model

import (
	"errors"
	"fmt"
)

// Error is one entry of a variant's error stack: the failure of the
// subject's own execution.
type Error struct {
	Class   string `json:"class"`
	Message string `json:"message"`
	Code    int    `json:"code"`
	File    string `json:"file"`
	Line    int    `json:"line"`
}

func (e *Error) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s: %s (%s:%d)", e.Class, e.Message, e.File, e.Line)
	}
	return fmt.Sprintf("%s: %s", e.Class, e.Message)
}

// ErrorFrom converts err into an error stack entry, keeping *Error values
// found in the chain.
func ErrorFrom(err error) Error {
	var e *Error
	if errors.As(err, &e) {
		return *e
	}
	return Error{Class: fmt.Sprintf("%T", err), Message: err.Error()}
}

// ErrorStack is the ordered list of errors captured for a variant.
type ErrorStack []Error

// Failure is a violated assertion.
type Failure struct {
	Message string
}
