package loader

import "fmt"

// NotFoundError reports an input that does not exist, locally or remotely.
type NotFoundError struct {
	Path string
	Err  error
}

func (e *NotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("loader: %s not found: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("loader: %s not found", e.Path)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// ParseError reports malformed tabular input. Row is the 1-based data row
// (blank rows not counted); 0 means the header.
type ParseError struct {
	Path   string
	Row    int
	Column string
	Msg    string
}

func (e *ParseError) Error() string {
	switch {
	case e.Row == 0 && e.Column != "":
		return fmt.Sprintf("loader: parse %s: header: column %q: %s", e.Path, e.Column, e.Msg)
	case e.Column != "":
		return fmt.Sprintf("loader: parse %s: row %d: column %q: %s", e.Path, e.Row, e.Column, e.Msg)
	default:
		return fmt.Sprintf("loader: parse %s: row %d: %s", e.Path, e.Row, e.Msg)
	}
}
