package workbench

import (
	"errors"
	"fmt"
)

// ErrEmptyInput is returned when a dispatch is attempted with blank code
var ErrEmptyInput = errors.New("empty submission")

// FileReadError reports an upload that could not be decoded as text
type FileReadError struct {
	Name string
	Err  error
}

func (e *FileReadError) Error() string {
	return fmt.Sprintf("read %s as text: %v", e.Name, e.Err)
}

func (e *FileReadError) Unwrap() error { return e.Err }

// LogicalError is an application error reported by the backend over a
// successful transport call.
type LogicalError struct {
	Message string
}

func (e *LogicalError) Error() string { return e.Message }

// TransportError wraps any failure to complete or decode the HTTP exchange
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
