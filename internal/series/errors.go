package series

import "fmt"

// FetchError is returned when the CSV resource could not be downloaded.
// Status is the HTTP status code, or 0 when the request never got a response.
type FetchError struct {
	Path   string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("Failed to fetch CSV: %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("Failed to fetch CSV (%d): %s", e.Status, e.Path)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ParseError carries the first structural error reported by the CSV reader
type ParseError struct {
	Path    string
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("CSV parse error: %s", e.Message)
}

// EmptyResultError is returned when no row of the CSV survived validation
type EmptyResultError struct {
	Path string
}

func (e *EmptyResultError) Error() string {
	return fmt.Sprintf("No valid rows in CSV: %s", e.Path)
}
