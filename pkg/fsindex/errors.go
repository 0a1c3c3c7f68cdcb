package fsindex

import "errors"

var (
	// ErrPathTraversal is returned when a resolved path escapes the data root.
	ErrPathTraversal = errors.New("path escapes data root")
	// ErrNotFound is returned when the target does not exist.
	ErrNotFound = errors.New("path not found")
	// ErrNotAFile is returned when a file operation targets a non-regular file.
	ErrNotAFile = errors.New("not a regular file")
	// ErrNotADirectory is returned when a directory operation targets a file.
	ErrNotADirectory = errors.New("not a directory")
)
