package registry

import "errors"

// ErrStorage marks failures of the backing store, as opposed to a missing code.
var ErrStorage = errors.New("registry: storage failure")

// StorageError wraps a backend failure with the operation that hit it.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return "registry: " + e.Op + ": " + e.Err.Error()
}

// Unwrap returns the backend error.
func (e *StorageError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrStorage) hold for every StorageError.
func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// Code is the stable err_code used in handler logs.
func (e *StorageError) Code() string { return "STORAGE_FAILURE" }
