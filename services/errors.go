package services

import "fmt"

// ValidationError covers missing or malformed input (no dates chosen,
// unknown property, check-out not after check-in).
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ConflictError is returned when a requested range overlaps occupied dates.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// CapacityError is returned when the guest count exceeds the listing maximum.
type CapacityError struct {
	GuestCount int
	MaxGuests  int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("guest count %d exceeds the maximum of %d for this property", e.GuestCount, e.MaxGuests)
}

// AuthError is returned when the action requires a signed-in identity.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string { return e.Message }

// TransportError wraps a failure of the data store or realtime layer itself.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *TransportError) Unwrap() error { return e.Err }
