package errors

import (
	"errors"
	"fmt"
	"sync"
)

// FileError is a failure tied to one component source file.
type FileError struct {
	Path string
	Err  error
}

// Error implements the error interface
func (fe *FileError) Error() string {
	return fmt.Sprintf("%s: %v", fe.Path, fe.Err)
}

// Unwrap returns the underlying error.
func (fe *FileError) Unwrap() error {
	return fe.Err
}

// ErrorCollector collects errors from concurrent work such as a folder scan.
type ErrorCollector struct {
	errors []error
	mutex  sync.RWMutex
}

// NewErrorCollector creates a new error collector
func NewErrorCollector() *ErrorCollector {
	return &ErrorCollector{
		errors: make([]error, 0),
	}
}

// Add records an error for a file.
func (ec *ErrorCollector) Add(path string, err error) {
	if err == nil {
		return
	}
	ec.AddError(&FileError{Path: path, Err: err})
}

// AddError adds a general error to the collector
func (ec *ErrorCollector) AddError(err error) {
	if err == nil {
		return
	}
	ec.mutex.Lock()
	defer ec.mutex.Unlock()
	ec.errors = append(ec.errors, err)
}

// GetErrors returns a copy of all collected errors
func (ec *ErrorCollector) GetErrors() []error {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	result := make([]error, len(ec.errors))
	copy(result, ec.errors)
	return result
}

// Len returns the number of collected errors.
func (ec *ErrorCollector) Len() int {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	return len(ec.errors)
}

// HasErrors returns true if there are any errors
func (ec *ErrorCollector) HasErrors() bool {
	return ec.Len() > 0
}

// Clear clears all errors
func (ec *ErrorCollector) Clear() {
	ec.mutex.Lock()
	defer ec.mutex.Unlock()
	ec.errors = ec.errors[:0]
}

// Join returns every collected error as one, or nil when there are none.
func (ec *ErrorCollector) Join() error {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	return errors.Join(ec.errors...)
}
