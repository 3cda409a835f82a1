package document

import "errors"

// Sentinel errors for the document service layer.
var (
	ErrNotFound = errors.New("document not found")
	ErrNotPDF   = errors.New("only PDF uploads are accepted")
)
