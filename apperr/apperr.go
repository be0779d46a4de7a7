package apperr

import (
	"errors"
	"fmt"
)

// ValidationError input tidak lengkap / di luar range, jangan di-retry
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func Validation(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// InvalidStateError operasi tidak legal di status sekarang, caller harus refetch
type InvalidStateError struct {
	Message string
}

func (e *InvalidStateError) Error() string { return e.Message }

func InvalidState(format string, args ...interface{}) error {
	return &InvalidStateError{Message: fmt.Sprintf(format, args...)}
}

// ConflictError field terkunci beda nilai / version mismatch, retry dengan state baru
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

func Conflict(format string, args ...interface{}) error {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// InsufficientStockError stok tidak cukup dan debt tidak diizinkan
type InsufficientStockError struct {
	MaterialID int64
	Shortfall  float64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for material %d, shortfall %.4f", e.MaterialID, e.Shortfall)
}

// CyclicBOMError data BOM rusak, komponen mereferensikan ancestor-nya sendiri
type CyclicBOMError struct {
	Path []string
}

func (e *CyclicBOMError) Error() string {
	return fmt.Sprintf("cyclic BOM detected: %v", e.Path)
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsInvalidState(err error) bool {
	var target *InvalidStateError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}

func IsInsufficientStock(err error) bool {
	var target *InsufficientStockError
	return errors.As(err, &target)
}

func IsCyclicBOM(err error) bool {
	var target *CyclicBOMError
	return errors.As(err, &target)
}
