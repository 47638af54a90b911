package persistence

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidFormat     = errors.New("invalid import format")
	ErrNothingToExport   = errors.New("nothing to export")
	ErrResetNotConfirmed = errors.New("reset requires confirmation")
	ErrStorageWrite      = errors.New("storage write failed")
	ErrCorruptSnapshot   = errors.New("stored snapshot is not valid JSON")
)

// FormatError explains why an import payload was rejected. It matches ErrInvalidFormat.
type FormatError struct {
	Reason string
	Cause  error
}

func (e *FormatError) Error() string {
	if e == nil {
		return ErrInvalidFormat.Error()
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", ErrInvalidFormat, e.Reason, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrInvalidFormat, e.Reason)
}

func (e *FormatError) Is(target error) bool { return target == ErrInvalidFormat }

func (e *FormatError) Unwrap() error { return e.Cause }

// StorageError wraps a failed write to the backing store. It matches ErrStorageWrite.
type StorageError struct {
	Op    string
	Key   string
	Cause error
}

func (e *StorageError) Error() string {
	if e == nil {
		return ErrStorageWrite.Error()
	}
	return fmt.Sprintf("%s (op=%s key=%q): %v", ErrStorageWrite, e.Op, e.Key, e.Cause)
}

func (e *StorageError) Is(target error) bool { return target == ErrStorageWrite }

func (e *StorageError) Unwrap() error { return e.Cause }
