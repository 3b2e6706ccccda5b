package domain

import "errors"

var (
	ErrEmptyFile    = errors.New("empty_file")
	ErrFileTooLarge = errors.New("file_too_large")
	ErrTooManyRows  = errors.New("too_many_rows")
	ErrMalformedCSV = errors.New("malformed_csv")
	ErrTimeout      = errors.New("processing_timeout")
)
