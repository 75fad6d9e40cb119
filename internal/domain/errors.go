package domain

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrToolNotFound   = errors.New("conversion tool not found")
	ErrEmptyLocalized = errors.New("localized mapping has no entries")
	ErrUnknownCommand = errors.New("command not found")
)

// UpstreamError is returned when the catalog answers with a result other than "ok".
type UpstreamError struct {
	Endpoint string
	Result   string
	Body     []byte
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("unacceptable response from %s: result %q: %s", e.Endpoint, e.Result, e.Body)
}

// NamingError means a file in a chapter working directory does not follow
// the <volume>-<page>-<token>.<ext> convention.
type NamingError struct {
	File   string
	Reason string
}

func (e *NamingError) Error() string {
	return fmt.Sprintf("file %q does not match page naming pattern: %s", e.File, e.Reason)
}

// RangeError is a user selection that is out of bounds or unparsable.
type RangeError struct {
	Input string
	Min   int
	Max   int
	Err   error
}

func (e *RangeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid selection %q: %v", e.Input, e.Err)
	}
	return fmt.Sprintf("selection %q not available, range goes from %d to %d", e.Input, e.Min, e.Max)
}

func (e *RangeError) Unwrap() error {
	return e.Err
}

// ConvertError is a conversion tool run that exited non-zero.
type ConvertError struct {
	Tool     string
	ExitCode int
	Output   string
}

func (e *ConvertError) Error() string {
	return fmt.Sprintf("%s exited with code %d: %s", e.Tool, e.ExitCode, e.Output)
}
