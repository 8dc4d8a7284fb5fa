package model

import "fmt"

// UnknownGenreError reports a genre absent from the pattern library.
type UnknownGenreError struct {
	Genre string
}

func (e *UnknownGenreError) Error() string {
	return fmt.Sprintf("invalid genre: %s", e.Genre)
}

// UnknownStyleError reports a style absent from a known genre.
type UnknownStyleError struct {
	Genre string
	Style string
}

func (e *UnknownStyleError) Error() string {
	return fmt.Sprintf("invalid style %q for genre %q", e.Style, e.Genre)
}

// NoVoicesSelectedError means no role had both a usable pattern and a sample.
type NoVoicesSelectedError struct {
	Genre   string
	Style   string
	EntryID string
}

func (e *NoVoicesSelectedError) Error() string {
	return fmt.Sprintf("no instruments could be selected for %s/%s (pattern %q)", e.Genre, e.Style, e.EntryID)
}

// SampleReadError is recorded when a clip cannot be decoded. The voice is
// dropped and rendering continues.
type SampleReadError struct {
	Role  Role
	Path  string
	Cause error
}

func (e *SampleReadError) Error() string {
	return fmt.Sprintf("read sample %s for %s: %v", e.Path, e.Role, e.Cause)
}

func (e *SampleReadError) Unwrap() error {
	return e.Cause
}

// ArchiveWriteError is logged when the stems archive cannot be written.
type ArchiveWriteError struct {
	Path  string
	Cause error
}

func (e *ArchiveWriteError) Error() string {
	return fmt.Sprintf("write archive %s: %v", e.Path, e.Cause)
}

func (e *ArchiveWriteError) Unwrap() error {
	return e.Cause
}
