//
// Copyright (C) 2024 Dmitry Kolesnikov
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/fogfish/dynarec
//

//
// The file declares errors returned by the library. Input validation errors
// are raised before any request is sent to the storage.
//

package dynarec

import (
	"fmt"

	"github.com/fogfish/faults"
)

const (
	errInvalidSchema      = faults.Type("invalid schema")
	errUndeclaredSchema   = faults.Type("schema is not declared")
	errInvalidNumber      = faults.Type("invalid number")
	errInvalidTarget      = faults.Type("cannot decode into target")
	errInvalidCondition   = faults.Type("invalid condition")
	errPlaceholderCollide = faults.Type("placeholder collision")
)

// MissingRequiredField is returned by the builder when the required
// attribute is not defined.
type MissingRequiredField struct {
	Attribute string
}

func (e *MissingRequiredField) Error() string {
	return fmt.Sprintf("missing required field %q", e.Attribute)
}

// InvalidKey is returned when partition (or sort) key resolves to empty value.
type InvalidKey struct {
	Attribute string
	Reason    string
}

func (e *InvalidKey) Error() string {
	return fmt.Sprintf("invalid key %q: %s", e.Attribute, e.Reason)
}

// UnknownAttribute is returned when attribute is not declared by the schema.
type UnknownAttribute struct {
	Attribute string
	Table     string
}

func (e *UnknownAttribute) Error() string {
	return fmt.Sprintf("unknown attribute %q at %s", e.Attribute, e.Table)
}

// TypeMismatch is returned by codec when the wire tag is not the expected one.
type TypeMismatch struct {
	Attribute string
	Expected  Kind
	Actual    Kind
	Err       error
}

func (e *TypeMismatch) Error() string {
	msg := fmt.Sprintf("type mismatch: expected %s, got %s", e.Expected, e.Actual)
	if e.Attribute != "" {
		msg = fmt.Sprintf("type mismatch at %q: expected %s, got %s", e.Attribute, e.Expected, e.Actual)
	}
	if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *TypeMismatch) Unwrap() error { return e.Err }

// ConditionalCheckFailed is returned when storage rejects the conditional
// write. The write did not happen. The message is the one reported by storage.
type ConditionalCheckFailed struct {
	Table   string
	Message string
	Err     error
}

func (e *ConditionalCheckFailed) Error() string {
	return fmt.Sprintf("conditional check failed at %s: %s", e.Table, e.Message)
}

func (e *ConditionalCheckFailed) Unwrap() error { return e.Err }

func (e *ConditionalCheckFailed) PreConditionFailed() bool { return true }

// TransportError is any other failure reported by the storage or network.
type TransportError struct {
	Table string
	Err   error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("service i/o failed at %s: %s", e.Table, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
