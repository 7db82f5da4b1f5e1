package types

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidTransition   = errors.New("invalid document status transition")
	ErrVendorRequired      = errors.New("vendor is required")
	ErrUnsupportedType     = errors.New("unsupported document type")
	ErrUnparseableResponse = errors.New("could not extract structured data from AI response")
	ErrInvalidDraft        = errors.New("invalid draft data")
	ErrAlreadyProcessing   = errors.New("document is already being processed")
	ErrPollTimeout         = errors.New("timed out waiting for document")
	ErrInvalidDate         = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidInput        = errors.New("invalid input")
)
