package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrForbidden indicates the caller is not allowed to perform the operation.
var ErrForbidden = errors.New("forbidden")

// ErrConflict indicates a requested booking interval overlaps an existing
// non-cancelled reservation for the same staff member.
var ErrConflict = errors.New("slot no longer available")

// ErrInvalidState indicates the operation is not valid for the entity's
// current state, e.g. initiating a deposit on a cancelled reservation.
var ErrInvalidState = errors.New("operation not valid for current state")

// ErrSignature indicates a webhook payload failed authenticity verification.
// Requests failing this check are always rejected and never retried.
var ErrSignature = errors.New("signature verification failed")

// ErrProvider indicates the payment provider rejected a request.
var ErrProvider = errors.New("payment provider error")
