package site

import "fmt"

// ContentLoadError reports a source document that could not be read.
type ContentLoadError struct {
	Path string
	Err  error
}

func (e *ContentLoadError) Error() string {
	return fmt.Sprintf("load content from %s: %v", e.Path, e.Err)
}

func (e *ContentLoadError) Unwrap() error { return e.Err }

// ParseError reports a document the Markdown converter rejected. No HTML is
// written for it.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("convert %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// WriteError reports a rendered page that could not be persisted.
type WriteError struct {
	Path   string // source path of the page
	Output string // output location
	Err    error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s (from %s): %v", e.Output, e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
