package qvectors

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by conditions providers when no object is valid
// for the requested run.
var ErrNotFound = errors.New("conditions object not found")

// ErrOpenFile represents an error when opening a file.
type ErrOpenFile struct {
	Filename string
	Err      error
}

func (e *ErrOpenFile) Error() string {
	return fmt.Sprintf("error opening file %q: %v", e.Filename, e.Err)
}

func (e *ErrOpenFile) Unwrap() error {
	return e.Err
}

// ErrCreateGroup represents an error when creating a group.
type ErrCreateGroup struct {
	GroupName string
	Err       error
}

func (e *ErrCreateGroup) Error() string {
	return fmt.Sprintf("error creating group %q: %v", e.GroupName, e.Err)
}

func (e *ErrCreateGroup) Unwrap() error {
	return e.Err
}

// ErrCreateTable represents an error when creating a table.
type ErrCreateTable struct {
	TableName string
	Err       error
}

func (e *ErrCreateTable) Error() string {
	return fmt.Sprintf("error creating table %q: %v", e.TableName, e.Err)
}

func (e *ErrCreateTable) Unwrap() error {
	return e.Err
}

// ErrMissingAlignment is fatal: without alignment offsets no channel azimuth
// can be computed for the detector family.
type ErrMissingAlignment struct {
	Run    int
	Family DetectorFamily
	Err    error
}

func (e *ErrMissingAlignment) Error() string {
	return fmt.Sprintf("run %d: missing alignment for %v: %v", e.Run, e.Family, e.Err)
}

func (e *ErrMissingAlignment) Unwrap() error {
	return e.Err
}

// ErrMissingGeometry is fatal for the same reason as ErrMissingAlignment.
type ErrMissingGeometry struct {
	Run    int
	Family DetectorFamily
	Err    error
}

func (e *ErrMissingGeometry) Error() string {
	return fmt.Sprintf("run %d: missing channel geometry for %v: %v", e.Run, e.Family, e.Err)
}

func (e *ErrMissingGeometry) Unwrap() error {
	return e.Err
}
