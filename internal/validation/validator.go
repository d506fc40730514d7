// AceGrocer - E-Commerce Storefront and Admin Back-Office
// Copyright 2026 AceGrocer Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acegrocer/acegrocer

// Package validation provides struct validation using go-playground/validator v10.
//
// A thread-safe singleton validator instance is shared process-wide; the
// library caches struct metadata so a shared instance is the recommended
// usage. Handlers declare constraints with `validate` tags and call
// ValidateStruct on decoded request bodies.
//
//	type cartAddRequest struct {
//	    ProductID int64 `json:"productId" validate:"required,gt=0"`
//	    Qty       int64 `json:"qty"       validate:"required,min=1,max=100"`
//	}
//
//	if err := validation.ValidateStruct(&req); err != nil {
//	    // err.Fields() maps field names to human-readable problems
//	}
package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// getValidator returns the singleton validator instance.
func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// RequestValidationError is a collection of field validation failures.
type RequestValidationError struct {
	fields map[string]string
}

// Error implements the error interface with a combined message.
func (ve *RequestValidationError) Error() string {
	if len(ve.fields) == 0 {
		return "validation failed"
	}
	messages := make([]string, 0, len(ve.fields))
	for field, msg := range ve.fields {
		messages = append(messages, field+": "+msg)
	}
	return strings.Join(messages, "; ")
}

// Fields maps each failing field to a human-readable problem description.
func (ve *RequestValidationError) Fields() map[string]string {
	return ve.fields
}

// ValidateStruct validates a struct using its `validate` tags.
// Returns nil when validation passes.
func ValidateStruct(v interface{}) *RequestValidationError {
	err := getValidator().Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		// InvalidValidationError means the caller passed a non-struct;
		// that is a programmer error, surface it loudly.
		return &RequestValidationError{fields: map[string]string{"_": err.Error()}}
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = describeFailure(fe)
	}
	return &RequestValidationError{fields: fields}
}

// describeFailure renders one tag failure as a short human-readable message.
func describeFailure(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}
