package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates that the operation is not valid for the resource's current state.
var ErrConflict = errors.New("conflicting state")

// ErrVersionConflict indicates that an append to an event stream failed the
// expected-version check. Callers may reload the aggregate and retry.
var ErrVersionConflict = errors.New("stream version conflict")

// ErrNoMatch indicates that reconciliation found no matching bank transaction.
// This is a recoverable outcome requiring manual reconciliation, not a fault.
var ErrNoMatch = errors.New("no matching bank transaction")

// ErrOverpayment indicates that recording a payment would drive an invoice
// balance below zero.
var ErrOverpayment = errors.New("payment exceeds invoice balance")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")
