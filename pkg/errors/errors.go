package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrLeaseNotFound     = errors.New("lease not found")
	ErrEntryNotFound     = errors.New("ledger entry not found")
	ErrEntryAlreadyPaid  = errors.New("ledger entry is already paid")
	ErrInvalidAmount     = errors.New("invalid payment amount")
	ErrInvalidLeaseTerms = errors.New("invalid lease terms")
	ErrLeaseNotActive    = errors.New("lease is not active")
	ErrNotOnboarded      = errors.New("landlord has not completed payment onboarding")
	ErrSignatureInvalid  = errors.New("webhook signature verification failed")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeLeaseNotFound     = "LEASE_NOT_FOUND"
	ErrCodeEntryNotFound     = "ENTRY_NOT_FOUND"
	ErrCodeEntryAlreadyPaid  = "ENTRY_ALREADY_PAID"
	ErrCodeInvalidAmount     = "INVALID_AMOUNT"
	ErrCodeInvalidLeaseTerms = "INVALID_LEASE_TERMS"
	ErrCodeLeaseNotActive    = "LEASE_NOT_ACTIVE"
	ErrCodeNotOnboarded      = "ONBOARDING_INCOMPLETE"
	ErrCodeSignatureInvalid  = "SIGNATURE_INVALID"
	ErrCodeDatabaseError     = "DATABASE_ERROR"
	ErrCodeCacheError        = "CACHE_ERROR"
)

// Wrap common errors with business context
func WrapLeaseNotFound(leaseID string) *BusinessError {
	return NewBusinessError(
		ErrCodeLeaseNotFound,
		fmt.Sprintf("Lease with ID %s not found", leaseID),
		ErrLeaseNotFound,
	)
}

func WrapEntryNotFound(entryID string) *BusinessError {
	return NewBusinessError(
		ErrCodeEntryNotFound,
		fmt.Sprintf("Ledger entry with ID %s not found", entryID),
		ErrEntryNotFound,
	)
}

func WrapEntryAlreadyPaid(entryID string) *BusinessError {
	return NewBusinessError(
		ErrCodeEntryAlreadyPaid,
		fmt.Sprintf("Ledger entry %s is already fully paid", entryID),
		ErrEntryAlreadyPaid,
	)
}

func WrapInvalidAmount(amount string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidAmount,
		fmt.Sprintf("Invalid payment amount: %s", amount),
		ErrInvalidAmount,
	)
}

func WrapInvalidLeaseTerms(reason string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidLeaseTerms,
		reason,
		ErrInvalidLeaseTerms,
	)
}

func WrapLeaseNotActive(leaseID string) *BusinessError {
	return NewBusinessError(
		ErrCodeLeaseNotActive,
		fmt.Sprintf("Lease with ID %s is not active", leaseID),
		ErrLeaseNotActive,
	)
}

func WrapNotOnboarded(landlordID string) *BusinessError {
	return NewBusinessError(
		ErrCodeNotOnboarded,
		fmt.Sprintf("Landlord %s has not connected a payment account", landlordID),
		ErrNotOnboarded,
	)
}

func WrapSignatureInvalid(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeSignatureInvalid,
		"webhook signature verification failed",
		err,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"Cache operation failed",
		err,
	)
}
